package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestHTTPCategory(t *testing.T) {
	cases := []struct {
		status int
		want   Category
	}{
		{404, NotFound},
		{400, Permanent},
		{401, Permanent},
		{403, Permanent},
		{422, Permanent},
		{408, Transient},
		{429, Transient},
		{500, Transient},
		{502, Transient},
		{503, Transient},
		{302, Transient}, // unexpected codes stay retryable
	}
	for _, c := range cases {
		if got := httpCategory(c.status); got != c.want {
			t.Errorf("httpCategory(%d) = %s, want %s", c.status, got, c.want)
		}
	}
}

func TestHelpers_WrappedErrors(t *testing.T) {
	base := NewHTTPError(404, "", "read listing")
	wrapped := fmt.Errorf("fetch: %w", base)

	if !IsNotFound(wrapped) {
		t.Fatal("wrapped 404 should classify as NotFound")
	}
	if IsTransient(wrapped) || IsPermanent(wrapped) {
		t.Fatal("404 must not be transient or permanent")
	}
}

func TestIsTransient_UnclassifiedDefaultsRetryable(t *testing.T) {
	if !IsTransient(errors.New("connection reset")) {
		t.Fatal("plain errors should be treated as transient")
	}
	if IsTransient(nil) {
		t.Fatal("nil is not an error")
	}
}

func TestNetworkError_IsTransientAndUnwraps(t *testing.T) {
	cause := errors.New("dial tcp: i/o timeout")
	err := NewNetworkError("update ticket", cause)

	if !IsTransient(err) {
		t.Fatal("network errors must be transient")
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected unwrap chain to reach the cause")
	}
}
