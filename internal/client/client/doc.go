// Package client contains the client-side building blocks that talk to the
// classification backend.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface): credential
//     exchange, profile lookup and update, session CRUD, session detail and
//     image attachment.
//  2. A concrete HTTP/JSON implementation (see HTTPClient) that injects the
//     provider token as a bearer credential, tags every call with a request
//     id, and maps HTTP failures to sentinel errors.
//  3. Local persistence bootstrap utilities (InitDatabase, RunMigrations,
//     OpenStore) wiring an SQLite database with embedded goose migrations,
//     or a Redis hash, behind metadata.Repository.
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers can match with
// errors.Is: ErrUnavailable, ErrUnauthorized, ErrNotFound. Other 4xx answers
// are returned as *APIError. Every transport failure also matches
// common.ErrTransport.
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept
// context.Context and honor cancellation.
package client
