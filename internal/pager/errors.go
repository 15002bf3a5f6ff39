package pager

import (
	"errors"
	"fmt"
)

// Fetch failure taxonomy
var (
	// ErrNetwork indicates the request never produced a usable HTTP response
	ErrNetwork = errors.New("network error")

	// ErrShapeMismatch indicates a successful response without the expected
	// items array. The fetch unit treats it as an empty final page.
	ErrShapeMismatch = errors.New("unexpected response shape")
)

// RejectedError is returned when the remote API answers with a non-success
// status or an explicit failure payload. Message is the remote text as-is.
type RejectedError struct {
	Status  int
	Message string
	// Err optionally classifies the rejection (for example an auth failure)
	Err error
}

func (e *RejectedError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("server rejected request (status %d)", e.Status)
}

func (e *RejectedError) Unwrap() error {
	return e.Err
}

// IsRejected reports whether err carries a RejectedError
func IsRejected(err error) bool {
	var rejected *RejectedError
	return errors.As(err, &rejected)
}
