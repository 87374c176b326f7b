package http

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"sustainers/internal/dataprocessing"
	apierrors "sustainers/internal/errors"
	"sustainers/internal/exporter"
	"sustainers/internal/middleware"
	"sustainers/internal/services"
	"sustainers/internal/shared/testutil"
	"sustainers/pkg/contracts/domain"
)

// MockDonorProcessor is a mock implementation of DonorProcessor
type MockDonorProcessor struct {
	mock.Mock
}

func (m *MockDonorProcessor) Process(ctx context.Context, r io.Reader, name string, month domain.Month) (*services.Result, error) {
	args := m.Called(name, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Result), args.Error(1)
}

func (m *MockDonorProcessor) Export(result *services.Result) ([]byte, error) {
	args := m.Called(result)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockDownloadStore is a mock implementation of DownloadStore
type MockDownloadStore struct {
	mock.Mock
}

func (m *MockDownloadStore) Put(filename string, month domain.Month, records int, data []byte) string {
	args := m.Called(filename, month, records, data)
	return args.String(0)
}

func (m *MockDownloadStore) Get(id string) (*services.Download, bool) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*services.Download), args.Bool(1)
}

// handlerDeps are the collaborators shared by the form and API handlers
type handlerDeps struct {
	service DonorProcessor
	store   DownloadStore
	logger  *slog.Logger
}

// realDeps wires the actual pipeline and download cache
func realDeps(t *testing.T) (*handlerDeps, *services.ResultCache) {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	writer := exporter.NewCSVWriter(nil, false, logger)
	cache := services.NewResultCache(time.Minute, 10)
	return &handlerDeps{
		service: services.NewDonorService(writer, dataprocessing.LoadOptions{}, logger),
		store:   cache,
		logger:  logger,
	}, cache
}

// newTestRouter mounts both handlers the way the application does
func newTestRouter(t *testing.T, deps *handlerDeps) chi.Router {
	t.Helper()
	logger := deps.logger
	if logger == nil {
		logger, _ = testutil.NewTestLogger(t)
	}
	validator := middleware.NewValidator(logger)
	errorHandler := apierrors.NewErrorHandler(logger, false)

	form := NewFormHandler(deps.service, deps.store, validator, errorHandler, nil, logger)
	donorAPI := NewAPIHandler(deps.service, deps.store, validator, errorHandler, nil, logger)

	r := chi.NewRouter()
	r.Get("/", form.Index)
	r.Post("/process", form.Process)
	r.Get(DownloadPath+"{id}", form.Download)
	r.Route("/api", func(r chi.Router) {
		r.Get("/months", donorAPI.Months)
		r.Post("/process", donorAPI.Process)
	})
	return r
}

// uploadRequest builds a multipart POST carrying file and month. An empty
// filename omits the file part.
func uploadRequest(t *testing.T, target, filename string, data []byte, month string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.WriteField("month", month))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
