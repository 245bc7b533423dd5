// SPDX-License-Identifier: MIT

package sources

import (
	"errors"
	"fmt"
)

var (
	// Sentinel errors for errors.Is checks at the pipeline boundary.
	ErrUnavailable = errors.New("source: host unreachable or transport failure")
	ErrBadResponse = errors.New("source: invalid response format or malformed data")
	ErrRateLimited = errors.New("source: rate limited by upstream")
	ErrForbidden   = errors.New("source: access forbidden")
	ErrTimeout     = errors.New("source: request timed out")
)

// Error is a rich error type that wraps the sentinel errors with context.
type Error struct {
	Sentinel  error
	Source    string
	Operation string
	Status    int
	Body      string
	Err       error // Nested lower-level error (e.g. net.Error)
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s: %v", e.Source, e.Operation, e.Sentinel)
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Body != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Body)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Sentinel
}
