package http

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"sustainers/internal/config"
	apierrors "sustainers/internal/errors"
	"sustainers/internal/exporter"
	"sustainers/internal/infrastructure"
	"sustainers/internal/middleware"
	api "sustainers/pkg/contracts/api/v1"
	"sustainers/pkg/contracts/domain"
)

// PageTitle heads the upload form
const PageTitle = "EN New Sustainers by Month"

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// formPage is the data rendered by templates/index.html
type formPage struct {
	Title    string
	Months   []api.MonthOption
	Selected int
	Result   *formResult
	Error    string
}

// formResult is the result section shown after an upload
type formResult struct {
	Message     string
	MonthName   string
	Empty       bool
	Columns     []string
	Rows        [][]string
	Filename    string
	DownloadURL string
}

// FormHandler serves the upload form, its result page and stored downloads
type FormHandler struct {
	uploads      *uploadProcessor
	store        DownloadStore
	validator    *middleware.Validator
	errorHandler *apierrors.ErrorHandler
	metrics      *infrastructure.PipelineMetrics
	logger       *slog.Logger
}

// NewFormHandler creates a new form handler
func NewFormHandler(
	service DonorProcessor,
	store DownloadStore,
	validator *middleware.Validator,
	errorHandler *apierrors.ErrorHandler,
	metrics *infrastructure.PipelineMetrics,
	logger *slog.Logger,
) *FormHandler {
	logger = infrastructure.WithComponent(logger, "form_handler")
	return &FormHandler{
		uploads: &uploadProcessor{
			service:   service,
			store:     store,
			validator: validator,
			metrics:   metrics,
			logger:    logger,
		},
		store:        store,
		validator:    validator,
		errorHandler: errorHandler,
		metrics:      metrics,
		logger:       logger,
	}
}

// Index handles GET /
func (h *FormHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, h.page(int(domain.January)))
}

// Process handles POST /process
func (h *FormHandler) Process(w http.ResponseWriter, r *http.Request) {
	u, err := h.uploads.parse(r)
	page := h.page(selectedMonth(r))
	if err != nil {
		h.renderError(w, r, page, err)
		return
	}

	out, err := h.uploads.run(r.Context(), u)
	if err != nil {
		h.renderError(w, r, page, err)
		return
	}

	result := out.result
	preview := result.Table.Head(config.PreviewRows)
	page.Result = &formResult{
		Message:     result.String(),
		MonthName:   result.Month.Name(),
		Empty:       result.Empty(),
		Columns:     preview.Columns,
		Rows:        preview.Rows,
		Filename:    result.Filename,
		DownloadURL: downloadURL(out.downloadID),
	}
	h.render(w, r, http.StatusOK, page)
}

// Download handles GET /download/{id}
func (h *FormHandler) Download(w http.ResponseWriter, r *http.Request) {
	req := api.DownloadRequest{ID: chi.URLParam(r, "id")}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrDownloadNotFound)
		return
	}

	download, ok := h.store.Get(req.ID)
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.ErrDownloadNotFound)
		return
	}

	w.Header().Set("Content-Type", exporter.ContentType)
	w.Header().Set("Content-Disposition", exporter.ContentDisposition(download.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(download.Data)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(download.Data); err != nil {
		h.logger.WarnContext(r.Context(), "download interrupted",
			slog.String("id", download.ID),
			slog.String("error", err.Error()))
		return
	}

	h.metrics.RecordDownload(r.Context())
	h.logger.InfoContext(r.Context(), "download served",
		slog.String("id", download.ID),
		slog.String("filename", download.Filename),
		slog.Int("records", download.Records))
}

// selectedMonth keeps the posted month selected, defaulting to January
func selectedMonth(r *http.Request) int {
	if r.MultipartForm == nil {
		return int(domain.January)
	}
	values := r.MultipartForm.Value["month"]
	if len(values) == 0 {
		return int(domain.January)
	}
	m, err := strconv.Atoi(strings.TrimSpace(values[0]))
	if err != nil || !domain.Month(m).Valid() {
		return int(domain.January)
	}
	return m
}

func (h *FormHandler) page(selected int) *formPage {
	return &formPage{
		Title:    PageTitle,
		Months:   api.MonthOptions(),
		Selected: selected,
	}
}

// renderError shows err on the form with the status the JSON API would use
func (h *FormHandler) renderError(w http.ResponseWriter, r *http.Request, page *formPage, err error) {
	problem := h.errorHandler.ErrorToProblem(err, r)

	level := slog.LevelWarn
	if problem.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, "form upload failed",
		slog.Int("status", problem.Status),
		slog.String("error", err.Error()))

	page.Error = formErrorMessage(err)
	h.render(w, r, problem.Status, page)
}

func (h *FormHandler) render(w http.ResponseWriter, r *http.Request, status int, page *formPage) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, page); err != nil {
		h.errorHandler.HandleError(w, r, fmt.Errorf("failed to render form: %w", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// formErrorMessage is the text shown after "Error: "
func formErrorMessage(err error) string {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return "File exceeds the upload limit of " + strconv.FormatInt(tooLarge.Limit, 10) + " bytes"
	}
	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		return validationMessage(err)
	}
	return err.Error()
}
