package dataprocessing

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"sustainers/pkg/contracts/domain"
)

// Input formats recognised by Load
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// LoadOptions controls how an input export is decoded
type LoadOptions struct {
	// Encoding of CSV input: "utf-8" (default), "windows-1252" or "iso-8859-1"
	Encoding string
	// Sheet to read from a workbook; empty selects the first sheet
	Sheet string
}

func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return unicode.UTF8, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	case "iso-8859-1", "latin1", "latin-1":
		return charmap.ISO8859_1, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEncoding, name)
	}
}

// FormatFor returns the input format implied by a file name
func FormatFor(name string) (string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt", "":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(name))
	}
}

// LoadCSV reads a header row and data rows. Blank lines are skipped,
// ragged rows are aligned to the header and a leading UTF-8 BOM is dropped.
func LoadCSV(r io.Reader, opts LoadOptions) (*domain.Table, error) {
	enc, err := lookupEncoding(opts.Encoding)
	if err != nil {
		return nil, err
	}

	br := bufio.NewReader(transform.NewReader(r, enc.NewDecoder()))
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	table := domain.NewTable(header, nil)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", table.Len()+2, err)
		}
		table.AppendRow(record)
	}

	slog.Debug("CSV input loaded",
		slog.Int("columns", len(table.Columns)),
		slog.Int("rows", table.Len()))

	return table, nil
}

// LoadXLSX reads the selected worksheet of a workbook. The first row is the
// header; rows with no content are skipped.
func LoadXLSX(r io.Reader, opts LoadOptions) (*domain.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrNoHeader
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	var table *domain.Table
	for _, row := range rows {
		if isBlankRow(row) {
			continue
		}
		if table == nil {
			table = domain.NewTable(row, nil)
			continue
		}
		table.AppendRow(row)
	}
	if table == nil {
		return nil, ErrNoHeader
	}

	slog.Debug("Workbook input loaded",
		slog.String("sheet", sheet),
		slog.Int("columns", len(table.Columns)),
		slog.Int("rows", table.Len()))

	return table, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// Load reads r in the given format
func Load(r io.Reader, format string, opts LoadOptions) (*domain.Table, error) {
	switch format {
	case FormatCSV:
		return LoadCSV(r, opts)
	case FormatXLSX:
		return LoadXLSX(r, opts)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// LoadFile opens path, picks the format from its extension and loads it.
// The file is closed before returning.
func LoadFile(path string, opts LoadOptions) (*domain.Table, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return Load(f, format, opts)
}
