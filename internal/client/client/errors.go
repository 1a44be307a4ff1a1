package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/skincare/internal/common"
)

var (
	ErrUnavailable  = fmt.Errorf("%w: server unavailable", common.ErrTransport)
	ErrUnauthorized = fmt.Errorf("%w: unauthorized", common.ErrTransport)
	ErrNotFound     = fmt.Errorf("%w: not found", common.ErrTransport)
)

// APIError is a 4xx answer that has no sentinel of its own.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend error: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("backend error: %d %s", e.StatusCode, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == common.ErrTransport
}

// parseError turns a non-2xx response into an error. The backend answers
// with {"error": "..."} or {"message": "..."}; anything else is kept raw.
func parseError(statusCode int, body []byte) error {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	msg := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.Error != "":
			msg = payload.Error
		case payload.Message != "":
			msg = payload.Message
		}
	}

	switch {
	case statusCode == http.StatusUnauthorized, statusCode == http.StatusForbidden:
		return withMessage(ErrUnauthorized, msg)
	case statusCode == http.StatusNotFound:
		return withMessage(ErrNotFound, msg)
	case statusCode == http.StatusRequestTimeout,
		statusCode == http.StatusTooManyRequests,
		statusCode >= 500:
		return withMessage(ErrUnavailable, msg)
	default:
		return &APIError{StatusCode: statusCode, Message: msg}
	}
}

func withMessage(sentinel error, msg string) error {
	if msg == "" {
		return sentinel
	}
	return fmt.Errorf("%w: %s", sentinel, msg)
}

// mapError classifies a failure of http.Client.Do. Caller cancellation is
// passed through so it can be told apart from an outage.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}
