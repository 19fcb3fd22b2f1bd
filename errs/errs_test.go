package errs

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorConstants(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "ErrBadCredentials",
			err:      ErrBadCredentials,
			expected: "could not login, please check your credentials",
		},
		{
			name:     "ErrLoginPageChanged",
			err:      ErrLoginPageChanged,
			expected: "csrf token not found on login page",
		},
		{
			name:     "ErrVideoUnavailable",
			err:      ErrVideoUnavailable,
			expected: "video unavailable",
		},
		{
			name:     "ErrCourseNotFound",
			err:      ErrCourseNotFound,
			expected: "course not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.expected {
				t.Errorf("Expected error message '%s', got '%s'", tt.expected, tt.err.Error())
			}
		})
	}
}

func TestStatusError(t *testing.T) {
	err := &StatusError{URL: "https://example.com/x", StatusCode: 503}
	if err.Error() != "HTTP 503: https://example.com/x" {
		t.Errorf("got %q", err.Error())
	}
}

func TestIsStatus(t *testing.T) {
	base := &StatusError{URL: "u", StatusCode: 429}
	wrapped := fmt.Errorf("video detail: %w", base)

	if !IsStatus(base) {
		t.Error("IsStatus should match a bare StatusError")
	}
	if !IsStatus(wrapped) {
		t.Error("IsStatus should match a wrapped StatusError")
	}
	if IsStatus(errors.New("plain")) {
		t.Error("IsStatus should not match a plain error")
	}
	if IsStatus(ErrVideoUnavailable) {
		t.Error("IsStatus should not match a sentinel")
	}
}
