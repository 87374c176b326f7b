package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sustainers/internal/dataprocessing"
	apierrors "sustainers/internal/errors"
	"sustainers/internal/exporter"
	"sustainers/internal/infrastructure"
	"sustainers/internal/shared/testutil"
	"sustainers/internal/validation"
	"sustainers/pkg/contracts/domain"
)

func newTestDonorService(t *testing.T, opts ...DonorServiceOption) (*DonorService, *testutil.BufferedSlogHandler) {
	t.Helper()
	logger, logs := testutil.NewTestLogger(t)
	writer := exporter.NewCSVWriter(nil, false, logger)
	return NewDonorService(writer, dataprocessing.LoadOptions{}, logger, opts...), logs
}

func column(t *testing.T, table *domain.Table, name string) []string {
	t.Helper()
	idx := table.ColumnIndex(name)
	require.GreaterOrEqual(t, idx, 0, "column %q", name)
	values := make([]string, 0, table.Len())
	for _, row := range table.Rows {
		values = append(values, row[idx])
	}
	return values
}

func TestDonorService_Process(t *testing.T) {
	svc, _ := newTestDonorService(t)
	data := testutil.DonorCSV(t, testutil.March2024Donors()...)

	result, err := svc.Process(context.Background(), bytes.NewReader(data), "export.csv", domain.March)
	require.NoError(t, err)

	assert.False(t, result.Empty())
	assert.Equal(t, infrastructure.OutcomeSuccess, result.Outcome())
	assert.Equal(t, "March New EN Monthly Donors.csv", result.Filename)
	assert.Empty(t, result.OutputPath)
	assert.Equal(t, domain.OutputColumns(), result.Table.Columns)
	assert.Equal(t, []string{"103", "101"}, column(t, result.Table, domain.ColumnSupporterID))
	assert.Equal(t, []string{"03/05/2024", "03/20/2024"}, column(t, result.Table, domain.ColumnMonthlyStartDate))
	assert.Equal(t, dataprocessing.FilterStats{InputRows: 3, Matched: 2}, result.Stats)
	assert.Equal(t, "Found 2 records for March", result.String())
}

func TestDonorService_ProcessNoMatches(t *testing.T) {
	svc, _ := newTestDonorService(t)
	data := testutil.DonorCSV(t, testutil.March2024Donors()...)

	result, err := svc.Process(context.Background(), bytes.NewReader(data), "export.csv", domain.June)
	require.NoError(t, err)

	assert.True(t, result.Empty())
	assert.Equal(t, infrastructure.OutcomeEmpty, result.Outcome())
	assert.Equal(t, domain.OutputColumns(), result.Table.Columns)
	assert.Equal(t, "Found 0 records for June", result.String())
}

func TestDonorService_ProcessWorkbook(t *testing.T) {
	svc, _ := newTestDonorService(t)
	path := testutil.WriteDonorWorkbook(t, t.TempDir(), "", testutil.March2024Donors()...)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	result, err := svc.Process(context.Background(), f, filepath.Base(path), domain.April)
	require.NoError(t, err)
	assert.Equal(t, []string{"102"}, column(t, result.Table, domain.ColumnSupporterID))
	assert.Equal(t, []string{"04/01/2024"}, column(t, result.Table, domain.ColumnMonthlyStartDate))
}

func TestDonorService_ProcessErrors(t *testing.T) {
	header := []string{domain.ColumnSupporterID, domain.ColumnCity}

	tests := []struct {
		name     string
		data     func(t *testing.T) []byte
		filename string
		month    domain.Month
		wantIs   error
		wantMsg  string
		wantType apierrors.ErrorType
	}{
		{
			name:     "missing date column",
			data:     func(t *testing.T) []byte { return testutil.DonorCSVWithHeader(t, header, testutil.Donor("1", "5/3/2024")) },
			filename: "export.csv",
			month:    domain.March,
			wantIs:   dataprocessing.ErrMissingColumn,
			wantMsg:  "Error processing CSV: Column 'Campaign Data 16' not found in CSV file",
			wantType: apierrors.ErrTypeValidation,
		},
		{
			name:     "empty upload",
			data:     func(t *testing.T) []byte { return nil },
			filename: "export.csv",
			month:    domain.March,
			wantIs:   dataprocessing.ErrNoHeader,
			wantType: apierrors.ErrTypeParsing,
		},
		{
			name:     "unsupported extension",
			data:     func(t *testing.T) []byte { return []byte("x") },
			filename: "export.pdf",
			month:    domain.March,
			wantIs:   dataprocessing.ErrUnsupportedFormat,
			wantType: apierrors.ErrTypeParsing,
		},
		{
			name:     "month out of range",
			data:     func(t *testing.T) []byte { return testutil.DonorCSV(t) },
			filename: "export.csv",
			month:    domain.Month(13),
			wantIs:   validation.ErrMonthOutOfRange,
			wantType: apierrors.ErrTypeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, logs := newTestDonorService(t)

			result, err := svc.Process(context.Background(), bytes.NewReader(tt.data(t)), tt.filename, tt.month)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, tt.wantIs)

			var appErr *apierrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.wantType, appErr.Type)
			assert.Equal(t, apierrors.ProcessingMessage, appErr.Message)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, err.Error())
			}
			assert.True(t, logs.ContainsMessage("donor export failed"))
		})
	}
}

func TestDonorService_ProcessCanceled(t *testing.T) {
	svc, _ := newTestDonorService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Process(ctx, bytes.NewReader(testutil.DonorCSV(t, testutil.March2024Donors()...)), "export.csv", domain.March)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDonorService_ProcessStrictMismatchWarning(t *testing.T) {
	svc, logs := newTestDonorService(t)
	data := testutil.DonorCSV(t, testutil.Donor("7", "2024-03-05"), testutil.Donor("8", "6/3/2024"))

	result, err := svc.Process(context.Background(), bytes.NewReader(data), "export.csv", domain.March)
	require.NoError(t, err)

	assert.Equal(t, []string{"", "03/06/2024"}, column(t, result.Table, domain.ColumnMonthlyStartDate))
	assert.Equal(t, 1, result.Stats.StrictMismatch)
	assert.True(t, logs.ContainsMessage("matched rows have an empty start date after reformatting"))
}

func TestDonorService_ProcessFile(t *testing.T) {
	svc, logs := newTestDonorService(t)
	input := testutil.WriteDonorCSV(t, t.TempDir(), testutil.March2024Donors()...)
	outDir := t.TempDir()

	result, err := svc.ProcessFile(context.Background(), input, domain.March, outDir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(outDir, "March New EN Monthly Donors.csv"), result.OutputPath)

	raw, err := os.ReadFile(result.OutputPath)
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(raw)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, domain.OutputColumns(), records[0])
	assert.True(t, logs.ContainsMessage("donor export processed"))
	assert.True(t, logs.ContainsAttr("records", int64(2)))
}

func TestDonorService_ProcessFileHeaderOnly(t *testing.T) {
	svc, _ := newTestDonorService(t)
	input := testutil.WriteDonorCSV(t, t.TempDir(), testutil.March2024Donors()...)
	outDir := t.TempDir()

	result, err := svc.ProcessFile(context.Background(), input, domain.December, outDir)
	require.NoError(t, err)
	assert.True(t, result.Empty())

	raw, err := os.ReadFile(filepath.Join(outDir, "December New EN Monthly Donors.csv"))
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(raw)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{domain.OutputColumns()}, records)
}

func TestDonorService_ProcessFileMissingInput(t *testing.T) {
	svc, _ := newTestDonorService(t)

	_, err := svc.ProcessFile(context.Background(), filepath.Join(t.TempDir(), "absent.csv"), domain.March, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Error processing CSV: ")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDonorService_ProcessFileUnwritableOutput(t *testing.T) {
	svc, _ := newTestDonorService(t)
	input := testutil.WriteDonorCSV(t, t.TempDir(), testutil.March2024Donors()...)

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	_, err := svc.ProcessFile(context.Background(), input, domain.March, filepath.Join(blocker, "out"))
	require.Error(t, err)

	var appErr *apierrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apierrors.ErrTypeStorage, appErr.Type)
}

func TestDonorService_Export(t *testing.T) {
	svc, _ := newTestDonorService(t)
	result, err := svc.Process(context.Background(), bytes.NewReader(testutil.DonorCSV(t, testutil.March2024Donors()...)), "export.csv", domain.March)
	require.NoError(t, err)

	data, err := svc.Export(result)
	require.NoError(t, err)

	want, err := exporter.EncodeCSV(result.Table, false)
	require.NoError(t, err)
	assert.Equal(t, want, data)
}

func TestDonorService_RecordsMetrics(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	cfg := infrastructure.DefaultOTelConfig()
	cfg.TraceExporter = "none"
	cfg.MetricExporter = "prometheus"
	providers, err := infrastructure.InitializeOTel(cfg, logger)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := infrastructure.CreatePipelineMetrics(providers.Meter)
	require.NoError(t, err)

	svc, _ := newTestDonorService(t, WithMetrics(metrics), WithTracer(providers.Tracer))
	data := testutil.DonorCSV(t, testutil.March2024Donors()...)

	_, err = svc.Process(context.Background(), bytes.NewReader(data), "export.csv", domain.March)
	require.NoError(t, err)
	_, err = svc.Process(context.Background(), bytes.NewReader(data), "export.csv", domain.June)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	body := w.Body.String()
	assert.Contains(t, body, "pipeline_runs_total")
	assert.Contains(t, body, `outcome="success"`)
	assert.Contains(t, body, `outcome="empty"`)
	assert.Contains(t, body, `stage="matched"`)
}
