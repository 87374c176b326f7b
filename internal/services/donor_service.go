package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"sustainers/internal/dataprocessing"
	apierrors "sustainers/internal/errors"
	"sustainers/internal/exporter"
	"sustainers/internal/infrastructure"
	"sustainers/internal/validation"
	"sustainers/pkg/contracts/domain"
)

// Result is the outcome of one pipeline run
type Result struct {
	Month domain.Month
	Table *domain.Table
	Stats dataprocessing.FilterStats
	// Filename is "<MonthName> New EN Monthly Donors.csv"
	Filename string
	// OutputPath is set when the run wrote a file
	OutputPath string
}

// Empty reports whether no row matched the month
func (r *Result) Empty() bool {
	return r == nil || r.Table.Len() == 0
}

// String summarizes a result the way both front ends report it
func (r *Result) String() string {
	return fmt.Sprintf("Found %d records for %s", r.Table.Len(), r.Month.Name())
}

// Outcome labels the run for metrics
func (r *Result) Outcome() string {
	if r.Empty() {
		return infrastructure.OutcomeEmpty
	}
	return infrastructure.OutcomeSuccess
}

// DonorService runs the load, filter and export pipeline
type DonorService struct {
	writer   *exporter.CSVWriter
	loadOpts dataprocessing.LoadOptions
	tracer   trace.Tracer
	metrics  *infrastructure.PipelineMetrics
	logger   *slog.Logger
}

// DonorServiceOption configures a DonorService
type DonorServiceOption func(*DonorService)

// WithTracer sets the tracer used for pipeline spans
func WithTracer(tracer trace.Tracer) DonorServiceOption {
	return func(s *DonorService) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithMetrics sets the pipeline instruments
func WithMetrics(metrics *infrastructure.PipelineMetrics) DonorServiceOption {
	return func(s *DonorService) {
		s.metrics = metrics
	}
}

// NewDonorService creates a donor pipeline service
func NewDonorService(writer *exporter.CSVWriter, loadOpts dataprocessing.LoadOptions, logger *slog.Logger, opts ...DonorServiceOption) *DonorService {
	if logger == nil {
		logger = slog.Default()
	}
	if writer == nil {
		writer = exporter.NewCSVWriter(nil, false, logger)
	}

	s := &DonorService{
		writer:   writer,
		loadOpts: loadOpts,
		tracer:   otel.Tracer(infrastructure.InstrumentationName),
		logger:   logger.With(slog.String("component", "donor_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Process reads an uploaded export and filters it to month. name picks the
// input format by extension. Nothing is written to disk.
func (s *DonorService) Process(ctx context.Context, r io.Reader, name string, month domain.Month) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "donor.process",
		trace.WithAttributes(
			attribute.String("file.name", name),
			attribute.Int("month", int(month)),
		))
	defer span.End()

	start := time.Now()
	result, err := s.run(ctx, month, func(ctx context.Context) (*domain.Table, error) {
		format, err := dataprocessing.FormatFor(name)
		if err != nil {
			return nil, err
		}
		return dataprocessing.Load(r, format, s.loadOpts)
	})
	s.finish(ctx, result, err, month, start)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ProcessFile reads the export at path, filters it to month and writes the
// monthly CSV into outputDir. A header-only file is written when no row
// matches.
func (s *DonorService) ProcessFile(ctx context.Context, path string, month domain.Month, outputDir string) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "donor.process_file",
		trace.WithAttributes(
			attribute.String("file.path", path),
			attribute.Int("month", int(month)),
		))
	defer span.End()

	start := time.Now()
	result, err := s.run(ctx, month, func(ctx context.Context) (*domain.Table, error) {
		return dataprocessing.LoadFile(path, s.loadOpts)
	})
	if err == nil {
		err = s.write(ctx, result, outputDir)
	}
	s.finish(ctx, result, err, month, start)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Export renders a result as CSV bytes with the configured BOM setting
func (s *DonorService) Export(result *Result) ([]byte, error) {
	data, err := s.writer.Encode(result.Table)
	if err != nil {
		return nil, apierrors.NewProcessingError(apierrors.NewStorageError("failed to encode monthly CSV", err))
	}
	return data, nil
}

func (s *DonorService) run(ctx context.Context, month domain.Month, load func(context.Context) (*domain.Table, error)) (*Result, error) {
	if !month.Valid() {
		return nil, apierrors.NewProcessingError(validation.ErrMonthOutOfRange)
	}

	table, err := s.load(ctx, load)
	if err != nil {
		return nil, apierrors.NewProcessingError(err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	filtered, stats, err := s.filter(ctx, table, month)
	if err != nil {
		return nil, apierrors.NewProcessingError(err)
	}

	s.metrics.RecordRows(ctx, "input", stats.InputRows)
	s.metrics.RecordRows(ctx, "unparseable", stats.Unparseable)
	s.metrics.RecordRows(ctx, "matched", stats.Matched)
	s.metrics.RecordRows(ctx, "strict_mismatch", stats.StrictMismatch)

	if stats.StrictMismatch > 0 {
		s.logger.WarnContext(ctx, "matched rows have an empty start date after reformatting",
			slog.Int("rows", stats.StrictMismatch),
			slog.String("column", domain.DonationStartDateColumn),
			slog.String("month", month.Name()))
	}

	return &Result{
		Month:    month,
		Table:    filtered,
		Stats:    *stats,
		Filename: exporter.MonthlyFileName(month),
	}, nil
}

func (s *DonorService) filter(ctx context.Context, table *domain.Table, month domain.Month) (*domain.Table, *dataprocessing.FilterStats, error) {
	ctx, span := s.tracer.Start(ctx, "donor.filter")
	defer span.End()

	filtered, stats, err := dataprocessing.FilterAndProject(table, month)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, nil, err
	}
	span.SetAttributes(
		attribute.Int("rows.input", stats.InputRows),
		attribute.Int("rows.matched", stats.Matched),
		attribute.Int("rows.unparseable", stats.Unparseable),
	)
	return filtered, stats, nil
}

func (s *DonorService) load(ctx context.Context, load func(context.Context) (*domain.Table, error)) (*domain.Table, error) {
	ctx, span := s.tracer.Start(ctx, "donor.load")
	defer span.End()

	table, err := load(ctx)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("columns", len(table.Columns)),
		attribute.Int("rows", table.Len()),
	)
	return table, nil
}

func (s *DonorService) write(ctx context.Context, result *Result, outputDir string) error {
	ctx, span := s.tracer.Start(ctx, "donor.write")
	defer span.End()

	path, err := s.writer.WriteMonthlyCSV(result.Table, result.Month, outputDir)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return apierrors.NewProcessingError(apierrors.NewStorageError("failed to write monthly CSV", err))
	}
	result.OutputPath = path
	span.SetAttributes(attribute.String("file.output", path))
	return nil
}

func (s *DonorService) finish(ctx context.Context, result *Result, err error, month domain.Month, start time.Time) {
	duration := time.Since(start)

	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.metrics.RecordRun(ctx, infrastructure.OutcomeFailure, int(month), duration)
		s.logger.ErrorContext(ctx, "donor export failed",
			slog.Int("month", int(month)),
			slog.String("error", err.Error()),
			slog.Duration("duration", duration))
		return
	}

	s.metrics.RecordRun(ctx, result.Outcome(), int(month), duration)
	s.logger.InfoContext(ctx, "donor export processed",
		slog.String("month", month.Name()),
		slog.String("outcome", result.Outcome()),
		slog.Int("records", result.Table.Len()),
		slog.Int("input_rows", result.Stats.InputRows),
		slog.Int("unparseable", result.Stats.Unparseable),
		slog.Duration("duration", duration))
}
