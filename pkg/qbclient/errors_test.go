package qbclient

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestNewAPIError_Classification(t *testing.T) {
	tests := []struct {
		status int
		code   string
		want   error
	}{
		{401, ErrCodeAuth, ErrAuth},
		{404, ErrCodeNotFound, ErrNotFound},
		{429, ErrCodeRateLimit, ErrRateLimit},
		{500, ErrCodeAPI, ErrAPI},
		{400, ErrCodeAPI, ErrAPI},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("HTTP %d", tt.status), func(t *testing.T) {
			err := newAPIError(tt.status, "body", 0)
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("errors.Is(%v) = false", tt.want)
			}
		})
	}
}

func TestAPIError_SurvivesWrapping(t *testing.T) {
	inner := newAPIError(404, "table not found", 0)
	wrapped := fmt.Errorf("resolve table %q: %w", "Projects", inner)

	if !errors.Is(wrapped, ErrNotFound) {
		t.Error("errors.Is(ErrNotFound) через обёртку = false")
	}
	var apiErr *APIError
	if !errors.As(wrapped, &apiErr) {
		t.Fatal("errors.As(*APIError) = false")
	}
	if apiErr.StatusCode != 404 {
		t.Errorf("StatusCode = %d", apiErr.StatusCode)
	}
}

func TestAPIError_RetryAfter(t *testing.T) {
	err := newAPIError(429, "slow down", 2*time.Second)
	if err.RetryAfter != 2*time.Second {
		t.Errorf("RetryAfter = %v", err.RetryAfter)
	}
	if !errors.Is(err, ErrRateLimit) {
		t.Error("errors.Is(ErrRateLimit) = false")
	}
}

func TestValidationError(t *testing.T) {
	err := validationError("bad argument %d", 7)
	if !errors.Is(err, ErrValidation) {
		t.Error("errors.Is(ErrValidation) = false")
	}
	if ErrorCode(err) != ErrCodeValidation {
		t.Errorf("ErrorCode = %q", ErrorCode(err))
	}
}
