package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perilwatch/internal/types"
)

func TestJSON_WritesBodyAndContentType(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	JSON(w, r, http.StatusCreated, APIResponse{Data: map[string]string{"id": "p-1"}})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"data":{"id":"p-1"}}`, w.Body.String())
}

func TestError_AppErrorMapsStatusAndCode(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r = r.WithContext(types.WithRequestID(r.Context(), "req-42"))

	appErr := types.NewAppErrorWithDetails(
		types.ErrCodeNotFoundPolicy, "policy not found", nil,
		map[string]any{"policy_id": "p-9"},
	)
	Error(w, r, appErr)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp APIErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "not_found_policy", resp.Error.Code)
	assert.Equal(t, "policy not found", resp.Error.Message)
	assert.Equal(t, "req-42", resp.Error.RequestID)
	assert.Equal(t, "p-9", resp.Error.Details["policy_id"])
}

func TestError_WrappedAppErrorStillRecognized(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	inner := types.NewAppError(types.ErrCodePaymentDeclined, "card declined", nil)
	Error(w, r, errors.Join(errors.New("charging premium"), inner))

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Contains(t, w.Body.String(), "payment_declined")
}

func TestError_GenericErrorHidesDetails(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	Error(w, r, errors.New("pq: connection refused to db.internal:5432"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal_unexpected_error")
	assert.NotContains(t, w.Body.String(), "db.internal")
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name        string
		body        string
		wantMessage string
	}{
		{
			name:        "unknown field",
			body:        `{"name":"x","bogus":1}`,
			wantMessage: "unknown field",
		},
		{
			name:        "malformed",
			body:        `{"name":`,
			wantMessage: "malformed JSON",
		},
		{
			name:        "empty body",
			body:        ``,
			wantMessage: "must not be empty",
		},
		{
			name:        "multiple values",
			body:        `{"name":"a"}{"name":"b"}`,
			wantMessage: "single JSON object",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))

			var dst payload
			err := DecodeJSON(w, r, &dst)

			var appErr *types.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, errCodeValidationInvalidJSON, appErr.Code)
			assert.Contains(t, appErr.Message, tt.wantMessage)
		})
	}
}

func TestDecodeJSON_TypeMismatchNamesField(t *testing.T) {
	type payload struct {
		Lookback int `json:"lookback_days"`
	}

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"lookback_days":"thirty"}`))

	var dst payload
	err := DecodeJSON(w, r, &dst)

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "lookback_days", appErr.Details["field"])
}

func TestDecodeJSON_RejectsOversizedBody(t *testing.T) {
	type payload struct {
		Blob string `json:"blob"`
	}

	big := bytes.Repeat([]byte("a"), maxRequestBodySize+1024)
	body := `{"blob":"` + string(big) + `"}`

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))

	var dst payload
	err := DecodeJSON(w, r, &dst)

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Message, "1MB")
}

func TestDecodeJSON_ValidBody(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"station-1"}`))

	var dst payload
	require.NoError(t, DecodeJSON(w, r, &dst))
	assert.Equal(t, "station-1", dst.Name)
}
