// Package errors provides error classification for the client SDK.
// This enables different retry and fallback policies based on how an
// error should be handled: retried, treated as missing data, or surfaced.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Category determines how errors should be handled by retry and read-fallback logic.
type Category int

const (
	// Transient errors should be retried with exponential backoff.
	// Examples: 500 Internal Server Error, network timeouts, connection failures.
	Transient Category = iota

	// NotFound means the remote store has no data for the key. It is not a
	// failure: reads fall back to the local cache or a synthesized default,
	// and it must never feed the retry loop.
	NotFound

	// Permanent errors should fail immediately without retry.
	// Examples: 401 Unauthorized, 403 Forbidden, 400 Bad Request.
	Permanent
)

// String returns a human-readable representation of the category.
func (c Category) String() string {
	switch c {
	case Transient:
		return "Transient"
	case NotFound:
		return "NotFound"
	case Permanent:
		return "Permanent"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// ClassifiedError wraps an error with categorization metadata for retry policies.
type ClassifiedError struct {
	Category   Category
	StatusCode int    // HTTP status code (0 for non-HTTP errors)
	Body       string // Response body for debugging
	Underlying error  // The original error
}

// Error implements the error interface.
func (e *ClassifiedError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("[%s] HTTP %d: %v", e.Category, e.StatusCode, e.Underlying)
	}
	return fmt.Sprintf("[%s] %v", e.Category, e.Underlying)
}

// Unwrap returns the underlying error for error chain compatibility.
func (e *ClassifiedError) Unwrap() error {
	return e.Underlying
}

func categoryOf(err error) (Category, bool) {
	var classified *ClassifiedError
	if stderrors.As(err, &classified) {
		return classified.Category, true
	}
	return 0, false
}

// IsTransient reports whether err should be retried. Unclassified errors are
// treated as transient so plain network failures still enter the retry loop.
func IsTransient(err error) bool {
	if c, ok := categoryOf(err); ok {
		return c == Transient
	}
	return err != nil
}

// IsNotFound reports whether err means "no remote data yet".
func IsNotFound(err error) bool {
	c, ok := categoryOf(err)
	return ok && c == NotFound
}

// IsPermanent reports whether err should fail fast without retry.
func IsPermanent(err error) bool {
	c, ok := categoryOf(err)
	return ok && c == Permanent
}
