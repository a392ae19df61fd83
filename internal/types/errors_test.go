package types

import (
	"errors"
	"net/http"
	"testing"
)

func TestErrorCodeHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		code ErrorCode
		want int
	}{
		{"validation missing field", ErrCodeValidationMissingField, http.StatusBadRequest},
		{"validation invalid peril", ErrCodeValidationInvalidPeril, http.StatusBadRequest},
		{"validation lookback range", ErrCodeValidationLookbackRange, http.StatusBadRequest},
		{"auth key missing", ErrCodeAuthKeyMissing, http.StatusUnauthorized},
		{"auth key invalid", ErrCodeAuthKeyInvalid, http.StatusUnauthorized},
		{"coverage not supported", ErrCodeCoverageNotSupported, http.StatusUnprocessableEntity},
		{"not found policy", ErrCodeNotFoundPolicy, http.StatusNotFound},
		{"not found station", ErrCodeNotFoundStation, http.StatusNotFound},
		{"conflict policy inactive", ErrCodeConflictPolicyInactive, http.StatusConflict},
		{"payment declined", ErrCodePaymentDeclined, http.StatusPaymentRequired},
		{"upstream rate limited", ErrCodeUpstreamRateLimited, http.StatusTooManyRequests},
		{"upstream weather", ErrCodeUpstreamWeather, http.StatusBadGateway},
		{"upstream stripe", ErrCodeUpstreamStripe, http.StatusBadGateway},
		{"internal database", ErrCodeInternalDB, http.StatusInternalServerError},
		{"unknown code falls back to 500", ErrorCode("something_new"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.code.HTTPStatus(); got != tt.want {
				t.Errorf("HTTPStatus(%q) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}

func TestAppErrorError(t *testing.T) {
	err := NewAppError(ErrCodeNotFoundPolicy, "policy pol_123 not found", nil)
	want := "not_found_policy: policy pol_123 not found"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewAppError(ErrCodeInternalDB, "query failed", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}

	var appErr *AppError
	if !errors.As(error(err), &appErr) {
		t.Fatal("errors.As should match *AppError")
	}
	if appErr.Code != ErrCodeInternalDB {
		t.Errorf("unwrapped code = %q, want %q", appErr.Code, ErrCodeInternalDB)
	}
}

func TestAppErrorHTTPStatus(t *testing.T) {
	err := NewAppError(ErrCodeConflictPolicyInactive, "policy is cancelled", nil)
	if got := err.HTTPStatus(); got != http.StatusConflict {
		t.Errorf("HTTPStatus() = %d, want %d", got, http.StatusConflict)
	}
}

func TestAppErrorWithDetails(t *testing.T) {
	base := NewAppErrorWithDetails(ErrCodeValidationLookbackRange, "lookback out of range", nil,
		map[string]any{"lookback_days": 120})

	enriched := base.WithDetails(map[string]any{"max": 90})

	if len(base.Details) != 1 {
		t.Errorf("original details mutated: %v", base.Details)
	}
	if enriched.Details["lookback_days"] != 120 {
		t.Errorf("enriched lost original detail: %v", enriched.Details)
	}
	if enriched.Details["max"] != 90 {
		t.Errorf("enriched missing new detail: %v", enriched.Details)
	}
	if enriched.Code != base.Code || enriched.Message != base.Message {
		t.Error("WithDetails must preserve code and message")
	}
}
