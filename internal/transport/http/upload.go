package http

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	apierrors "sustainers/internal/errors"
	"sustainers/internal/infrastructure"
	"sustainers/internal/middleware"
	"sustainers/internal/services"
	api "sustainers/pkg/contracts/api/v1"
	"sustainers/pkg/contracts/domain"
)

// multipartMemory is the part of an upload kept in memory before spilling
// to a temporary file
const multipartMemory = 8 << 20

// DownloadPath is the URL prefix of stored monthly CSVs
const DownloadPath = "/download/"

// upload is a parsed process request
type upload struct {
	file     multipart.File
	filename string
	size     int64
	month    domain.Month
}

// processed is the outcome of running one upload through the pipeline
type processed struct {
	result     *services.Result
	downloadID string
}

// uploadProcessor parses process requests and runs them through the pipeline
type uploadProcessor struct {
	service   DonorProcessor
	store     DownloadStore
	validator *middleware.Validator
	metrics   *infrastructure.PipelineMetrics
	logger    *slog.Logger
}

// parse reads the "file" part and the "month" field of a multipart request
func (p *uploadProcessor) parse(r *http.Request) (*upload, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, apierrors.ErrUnsupportedMediaType
		}
		return nil, apierrors.InvalidRequestWithError(err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, apierrors.ErrMissingFile
		}
		return nil, apierrors.InvalidRequestWithError(err)
	}

	month, err := strconv.Atoi(strings.TrimSpace(r.FormValue("month")))
	if err != nil {
		file.Close()
		return nil, apierrors.ErrValidation("month", "month must be a number between 1-12")
	}

	req := api.ProcessRequest{
		Month:    month,
		Filename: filepath.Base(header.Filename),
	}
	if err := p.validator.ValidateStruct(req); err != nil {
		file.Close()
		return nil, err
	}

	p.metrics.RecordUpload(r.Context(), header.Size)

	return &upload{
		file:     file,
		filename: req.Filename,
		size:     header.Size,
		month:    domain.Month(req.Month),
	}, nil
}

// run processes u and stores the rendered CSV when rows matched
func (p *uploadProcessor) run(ctx context.Context, u *upload) (*processed, error) {
	defer u.file.Close()

	result, err := p.service.Process(ctx, u.file, u.filename, u.month)
	if err != nil {
		return nil, err
	}

	out := &processed{result: result}
	if result.Empty() {
		return out, nil
	}

	data, err := p.service.Export(result)
	if err != nil {
		return nil, err
	}
	out.downloadID = p.store.Put(result.Filename, result.Month, result.Table.Len(), data)
	if out.downloadID == "" {
		p.logger.WarnContext(ctx, "download cache has no capacity", slog.String("filename", result.Filename))
	}
	return out, nil
}

// downloadURL returns the link for a stored CSV, or "" when none was stored
func downloadURL(id string) string {
	if id == "" {
		return ""
	}
	return DownloadPath + id
}

// validationMessage flattens validation details into one line for display
func validationMessage(err error) string {
	var apiErr *apierrors.APIError
	if !errors.As(err, &apiErr) {
		return err.Error()
	}
	switch details := apiErr.Details.(type) {
	case apierrors.ValidationErrors:
		msgs := make([]string, 0, len(details.Errors))
		for _, e := range details.Errors {
			msgs = append(msgs, e.Message)
		}
		return strings.Join(msgs, "; ")
	case apierrors.ValidationError:
		return details.Message
	default:
		return apiErr.Message
	}
}
