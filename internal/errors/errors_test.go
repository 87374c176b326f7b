package errors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_Error(t *testing.T) {
	err := New(http.StatusBadRequest, "INVALID_REQUEST", "bad input")
	assert.Equal(t, "bad input", err.Error())
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Equal(t, "INVALID_REQUEST", err.ErrorCode)
	assert.Nil(t, err.Details)
}

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *APIError
		wantStatus int
		wantCode   string
	}{
		{"invalid request", ErrInvalidRequest, http.StatusBadRequest, "INVALID_REQUEST"},
		{"validation failed", ErrValidationFailed, http.StatusBadRequest, "VALIDATION_FAILED"},
		{"missing file", ErrMissingFile, http.StatusBadRequest, "MISSING_FILE"},
		{"not found", ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"download not found", ErrDownloadNotFound, http.StatusNotFound, "DOWNLOAD_NOT_FOUND"},
		{"payload too large", ErrPayloadTooLarge, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE"},
		{"unsupported media type", ErrUnsupportedMediaType, http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE"},
		{"rate limit", ErrRateLimitExceeded, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED"},
		{"internal", ErrInternalServer, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
		{"unavailable", ErrServiceUnavailable, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, tt.err.StatusCode)
			assert.Equal(t, tt.wantCode, tt.err.ErrorCode)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}

func TestErrorConstructors(t *testing.T) {
	t.Run("validation", func(t *testing.T) {
		err := ErrValidation("month", "month is required")
		require.IsType(t, ValidationError{}, err.Details)
		assert.Equal(t, "month", err.Details.(ValidationError).Field)
	})

	t.Run("validation errors", func(t *testing.T) {
		err := NewValidationErrors([]ValidationError{{Field: "month", Message: "m"}, {Field: "id", Message: "i"}})
		details, ok := err.Details.(ValidationErrors)
		require.True(t, ok)
		assert.Len(t, details.Errors, 2)
	})

	t.Run("not found", func(t *testing.T) {
		err := NotFoundError("download")
		assert.Equal(t, "download not found", err.Message)
		assert.Equal(t, http.StatusNotFound, err.StatusCode)
	})

	t.Run("payload too large", func(t *testing.T) {
		err := PayloadTooLargeError(1024)
		assert.Equal(t, map[string]int64{"max_bytes": 1024}, err.Details)
	})

	t.Run("panic", func(t *testing.T) {
		err := ErrPanic("boom")
		assert.Equal(t, "boom", err.Details.(PanicRecovery).Message)
	})
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, ErrDownloadNotFound)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "DOWNLOAD_NOT_FOUND", resp.Error.ErrorCode)
}
