package errors

import "fmt"

// ClassifyHTTPError maps an HTTP failure onto the retry taxonomy:
// 404 is reclassified as "no remote data yet", other 4xx (except 408/429)
// are permanent, 5xx and network-level failures are transient.
func ClassifyHTTPError(statusCode int, body string, underlyingErr error) *ClassifiedError {
	return &ClassifiedError{
		Category:   httpCategory(statusCode),
		StatusCode: statusCode,
		Body:       body,
		Underlying: underlyingErr,
	}
}

func httpCategory(statusCode int) Category {
	switch {
	case statusCode == 404:
		return NotFound
	case statusCode >= 400 && statusCode < 500:
		switch statusCode {
		case 408: // Request Timeout - can retry
			return Transient
		case 429: // Too Many Requests - should retry with backoff
			return Transient
		default:
			// 400 Bad Request, 401 Unauthorized, 403 Forbidden, etc.
			return Permanent
		}
	case statusCode >= 500 && statusCode < 600:
		return Transient
	default:
		// Unexpected status codes - be conservative and retry.
		return Transient
	}
}

// NewHTTPError creates a classified error for HTTP failures.
// Convenience function for the remote store layer.
func NewHTTPError(statusCode int, body string, operation string) *ClassifiedError {
	underlyingErr := fmt.Errorf("%s failed: HTTP %d", operation, statusCode)
	return ClassifyHTTPError(statusCode, body, underlyingErr)
}

// NewNetworkError creates a classified error for network-level failures.
// Network errors are always transient as they may clear on their own.
func NewNetworkError(operation string, err error) *ClassifiedError {
	return &ClassifiedError{
		Category:   Transient,
		Underlying: fmt.Errorf("%s network error: %w", operation, err),
	}
}
