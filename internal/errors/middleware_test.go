package errors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"sustainers/internal/shared/testutil"
)

func TestRecoveryMiddleware(t *testing.T) {
	logger, logHandler := testutil.NewTestLogger(t)
	eh := NewErrorHandler(logger, false)

	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("table index out of range")
	})

	w := httptest.NewRecorder()
	RecoveryMiddleware(eh)(panicking).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), TypeInternal)
	assert.NotContains(t, w.Body.String(), "table index out of range")
	assert.True(t, logHandler.ContainsMessage("panic recovered"))
}

func TestRecoveryMiddleware_PassThrough(t *testing.T) {
	eh := NewErrorHandler(nil, false)
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	RecoveryMiddleware(eh)(ok).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRecoveryMiddleware_AbortHandler(t *testing.T) {
	eh := NewErrorHandler(nil, false)
	aborting := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	})

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		RecoveryMiddleware(eh)(aborting).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}
