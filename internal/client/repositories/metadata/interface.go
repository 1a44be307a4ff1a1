// Package metadata is the client's durable key/value store. The identity
// cache keeps its single "user" entry here; everything else the client shows
// is fetched from the backend on demand.
package metadata

import (
	"context"
)

// Repository is a small key/value store. Get returns (nil, nil) for a
// missing key; Delete of a missing key is not an error. Clear drops every
// entry and runs on sign-out.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
