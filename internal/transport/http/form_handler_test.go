package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apierrors "sustainers/internal/errors"
	"sustainers/internal/exporter"
	"sustainers/internal/services"
	"sustainers/internal/shared/testutil"
	"sustainers/pkg/contracts/domain"
)

var downloadLink = regexp.MustCompile(`href="/download/([0-9a-f-]{36})"`)

func TestFormHandler_Index(t *testing.T) {
	deps, _ := realDeps(t)
	r := newTestRouter(t, deps)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.Contains(t, body, "<h1>EN New Sustainers by Month</h1>")
	assert.Contains(t, body, "Download the report from the Job monitor and upload below")
	assert.Contains(t, body, "Choose a CSV file")
	assert.Contains(t, body, "Select Month")
	assert.Contains(t, body, `<option value="1" selected>1 - January</option>`)
	assert.Contains(t, body, `<option value="12">12 - December</option>`)
	assert.NotContains(t, body, "Preview of filtered data:")
}

func TestFormHandler_ProcessAndDownload(t *testing.T) {
	deps, cache := realDeps(t)
	r := newTestRouter(t, deps)

	data := testutil.DonorCSV(t, testutil.March2024Donors()...)
	w := serve(r, uploadRequest(t, "/process", "export.csv", data, "3"))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Found 2 records for March")
	assert.Contains(t, body, "Preview of filtered data:")
	assert.Contains(t, body, "<td>03/05/2024</td>")
	assert.Contains(t, body, "<td>03/20/2024</td>")
	assert.NotContains(t, body, "<td>102</td>")
	assert.Contains(t, body, `<option value="3" selected>3 - March</option>`)
	assert.Contains(t, body, "Download Filtered CSV")
	assert.Equal(t, 1, cache.Len())

	match := downloadLink.FindStringSubmatch(body)
	require.Len(t, match, 2, "download link missing from result page")

	dl := serve(r, httptest.NewRequest(http.MethodGet, "/download/"+match[1], nil))
	require.Equal(t, http.StatusOK, dl.Code)
	assert.Equal(t, exporter.ContentType, dl.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="March New EN Monthly Donors.csv"`, dl.Header().Get("Content-Disposition"))

	lines := strings.Split(strings.TrimSpace(dl.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(domain.OutputColumns(), ","), strings.TrimSpace(lines[0]))
	assert.True(t, strings.HasPrefix(lines[1], "103,"))
	assert.True(t, strings.HasPrefix(lines[2], "101,"))
}

func TestFormHandler_ProcessNoMatches(t *testing.T) {
	deps, cache := realDeps(t)
	r := newTestRouter(t, deps)

	data := testutil.DonorCSV(t, testutil.March2024Donors()...)
	w := serve(r, uploadRequest(t, "/process", "export.csv", data, "6"))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "No records found for June")
	assert.NotContains(t, body, "Found 0 records")
	assert.NotContains(t, body, "Download Filtered CSV")
	assert.Equal(t, 0, cache.Len())
}

func TestFormHandler_ProcessErrors(t *testing.T) {
	withoutDate := testutil.DonorCSVWithHeader(t,
		[]string{domain.ColumnSupporterID, domain.ColumnSupporterEmail},
		testutil.Donor("101", "20/3/2024"))

	tests := []struct {
		name           string
		filename       string
		data           []byte
		month          string
		expectedStatus int
		expectedText   string
	}{
		{
			name:           "missing file",
			month:          "3",
			expectedStatus: http.StatusBadRequest,
			expectedText:   "Error: No CSV file was uploaded",
		},
		{
			name:           "non numeric month",
			filename:       "export.csv",
			data:           []byte("a,b\n"),
			month:          "March",
			expectedStatus: http.StatusBadRequest,
			expectedText:   "Error: month must be a number between 1-12",
		},
		{
			name:           "month out of range",
			filename:       "export.csv",
			data:           []byte("a,b\n"),
			month:          "13",
			expectedStatus: http.StatusBadRequest,
			expectedText:   "Error: ",
		},
		{
			name:           "missing date column",
			filename:       "export.csv",
			data:           withoutDate,
			month:          "3",
			expectedStatus: http.StatusUnprocessableEntity,
			expectedText:   "Error: Error processing CSV: Column",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps, cache := realDeps(t)
			r := newTestRouter(t, deps)

			w := serve(r, uploadRequest(t, "/process", tt.filename, tt.data, tt.month))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
			assert.Contains(t, w.Body.String(), tt.expectedText)
			assert.Contains(t, w.Body.String(), "Choose a CSV file")
			assert.Equal(t, 0, cache.Len())
		})
	}
}

func TestFormHandler_ProcessServiceFailure(t *testing.T) {
	service := new(MockDonorProcessor)
	store := new(MockDownloadStore)
	service.On("Process", "export.csv", domain.May).
		Return(nil, apierrors.NewProcessingError(errors.New("unexpected end of file")))

	r := newTestRouter(t, &handlerDeps{service: service, store: store})
	w := serve(r, uploadRequest(t, "/process", "export.csv", []byte("x"), "5"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Error: Error processing CSV: unexpected end of file")
	assert.Contains(t, w.Body.String(), `<option value="5" selected>5 - May</option>`)
	service.AssertExpectations(t)
	store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFormHandler_EmptyResultIsNotStored(t *testing.T) {
	service := new(MockDonorProcessor)
	store := new(MockDownloadStore)
	empty := &services.Result{
		Month:    domain.July,
		Table:    domain.NewTable(domain.OutputColumns(), nil),
		Filename: exporter.MonthlyFileName(domain.July),
	}
	service.On("Process", "export.xlsx", domain.July).Return(empty, nil)

	r := newTestRouter(t, &handlerDeps{service: service, store: store})
	w := serve(r, uploadRequest(t, "/process", "export.xlsx", []byte("x"), "7"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No records found for July")
	service.AssertNotCalled(t, "Export", mock.Anything)
	store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFormHandler_Download(t *testing.T) {
	const id = "5b0d3a56-4c8e-4d8a-9f1e-2a7d6c3b9e10"

	tests := []struct {
		name           string
		id             string
		setupMock      func(*MockDownloadStore)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "stored",
			id:   id,
			setupMock: func(m *MockDownloadStore) {
				m.On("Get", id).Return(&services.Download{
					ID:       id,
					Filename: "April New EN Monthly Donors.csv",
					Month:    domain.April,
					Records:  1,
					Data:     []byte("Supporter ID\n102\n"),
				}, true)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   "Supporter ID\n102\n",
		},
		{
			name: "expired",
			id:   id,
			setupMock: func(m *MockDownloadStore) {
				m.On("Get", id).Return(nil, false)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   "/errors/download-expired",
		},
		{
			name:           "malformed id",
			id:             "not-a-uuid",
			setupMock:      func(m *MockDownloadStore) {},
			expectedStatus: http.StatusNotFound,
			expectedBody:   "DOWNLOAD_NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MockDownloadStore)
			tt.setupMock(store)
			r := newTestRouter(t, &handlerDeps{service: new(MockDonorProcessor), store: store})

			w := serve(r, httptest.NewRequest(http.MethodGet, "/download/"+tt.id, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			store.AssertExpectations(t)
		})
	}
}
