package taskapi

import (
	"errors"
	"fmt"
	"strings"
)

// ErrRequestFailed reports a non-success HTTP status from the Task API.
var ErrRequestFailed = errors.New("task api request failed")

// StatusError carries the failing response's status and a trimmed body excerpt.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

// Error implements error.
func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: status %d", e.Method, e.URL, e.StatusCode)
	if body := strings.TrimSpace(e.Body); body != "" {
		msg += ": " + body
	}
	return msg
}

// Unwrap lets callers match ErrRequestFailed.
func (e *StatusError) Unwrap() error {
	return ErrRequestFailed
}
