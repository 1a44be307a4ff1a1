// Package cli provides the interactive skincare command-line client.
//
// It wires configuration, the local identity store, the backend and image
// host clients, and an interactive REPL. Typical flow: restore a saved
// sign-in, greet the user, list their sessions, then open one and upload an
// image for classification.
//
// Key features:
//   - Login / Logout with a provider token
//   - Name collection when the backend has no usable name
//   - List / New / Delete / Open sessions
//   - Upload a JPG and show the classification
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See NewApp and runREPL for details.
package cli
