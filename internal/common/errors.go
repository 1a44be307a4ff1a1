// Package common defines shared constants and the error taxonomy used across
// the client layers. Callers should use errors.Is / errors.As to match these
// values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Identity errors.
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrAuthExchangeFailed = errors.New("auth exchange failed")
	ErrMissingIdentity    = errors.New("user id not found, please log in again")

	// Validation errors never reach the network.
	ErrValidation      = errors.New("validation error")
	ErrInvalidFileType = fmt.Errorf("%w: only JPG images are allowed", ErrValidation)

	// Collaborator errors.
	ErrTransport                = errors.New("transport error")
	ErrIncompleteUploadResponse = errors.New("incomplete upload data from image host")

	// Pipeline guards.
	ErrUploadInProgress     = errors.New("upload already in progress")
	ErrImageAlreadyAttached = errors.New("only 1 image per session is allowed")
	ErrNotReady             = errors.New("session is not loaded")
)

// ValidationError reports a locally rejected input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// AuthExchangeError is returned when the backend refuses to recognise a
// provider credential.
type AuthExchangeError struct {
	Reason string
	Err    error
}

func (e *AuthExchangeError) Error() string {
	return fmt.Sprintf("auth exchange failed: %s", e.Reason)
}

func (e *AuthExchangeError) Is(target error) bool {
	return target == ErrAuthExchangeFailed
}

func (e *AuthExchangeError) Unwrap() error {
	return e.Err
}
