package exporter

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"sustainers/internal/config"
	"sustainers/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ContentType is served with every CSV download
const ContentType = "text/csv; charset=utf-8"

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	paths  *config.Paths
	bom    bool
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance. paths supplies the output
// directory used when a call passes none; bom prefixes files with a UTF-8
// byte order mark for Excel.
func NewCSVWriter(paths *config.Paths, bom bool, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{
		paths:  paths,
		bom:    bom,
		logger: logger.With(slog.String("component", "csv_writer")),
	}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// writeTo renders header and records to w, flushing before returning
func writeTo(w io.Writer, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteCSV writes to filePath, creating its directory and truncating any
// existing file. The file is flushed and closed before WriteCSV returns.
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) (err error) {
	w.logger.Info("Writing CSV file",
		slog.String("file_path", filePath),
		slog.Int("record_count", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close file: %w", cerr)
		}
	}()

	return writeTo(file, options)
}

// WriteMonthlyCSV writes table to "<MonthName> New EN Monthly Donors.csv"
// inside outputDir, or the configured output directory when outputDir is
// empty. An existing file is overwritten. It returns the path written.
func (w *CSVWriter) WriteMonthlyCSV(table *domain.Table, month domain.Month, outputDir string) (string, error) {
	if !month.Valid() {
		return "", fmt.Errorf("cannot name output for %s: %w", month, domain.ErrInvalidMonth)
	}
	if table == nil {
		return "", errors.New("no table to write")
	}

	if outputDir == "" {
		outputDir = config.DefaultOutputDir
		if w.paths != nil {
			outputDir = w.paths.OutputDir
		}
	}
	path := filepath.Join(outputDir, MonthlyFileName(month))

	if err := w.WriteCSV(path, WriteOptions{
		Headers:   table.Columns,
		Records:   table.Rows,
		BOMPrefix: w.bom,
	}); err != nil {
		return "", err
	}

	return path, nil
}

// EncodeCSV renders table exactly as WriteMonthlyCSV would write it
func EncodeCSV(table *domain.Table, bom bool) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeTo(&buf, WriteOptions{
		Headers:   table.Columns,
		Records:   table.Rows,
		BOMPrefix: bom,
	}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode renders table with the writer's BOM setting
func (w *CSVWriter) Encode(table *domain.Table) ([]byte, error) {
	return EncodeCSV(table, w.bom)
}
