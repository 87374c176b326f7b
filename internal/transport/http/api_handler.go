package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"sustainers/internal/config"
	apierrors "sustainers/internal/errors"
	"sustainers/internal/infrastructure"
	"sustainers/internal/middleware"
	"sustainers/internal/services"
	api "sustainers/pkg/contracts/api/v1"
)

// APIHandler serves the JSON API for the monthly export
type APIHandler struct {
	uploads      *uploadProcessor
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewAPIHandler creates a new API handler
func NewAPIHandler(
	service DonorProcessor,
	store DownloadStore,
	validator *middleware.Validator,
	errorHandler *apierrors.ErrorHandler,
	metrics *infrastructure.PipelineMetrics,
	logger *slog.Logger,
) *APIHandler {
	logger = infrastructure.WithComponent(logger, "api_handler")
	return &APIHandler{
		uploads: &uploadProcessor{
			service:   service,
			store:     store,
			validator: validator,
			metrics:   metrics,
			logger:    logger,
		},
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// Months handles GET /api/months
func (h *APIHandler) Months(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, api.MonthOptions())
}

// Process handles POST /api/process
func (h *APIHandler) Process(w http.ResponseWriter, r *http.Request) {
	u, err := h.uploads.parse(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	out, err := h.uploads.run(r.Context(), u)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, processResponse(out.result, out.downloadID))
}

func processResponse(result *services.Result, downloadID string) api.ProcessResponse {
	status := api.StatusSuccess
	if result.Empty() {
		status = api.StatusEmpty
	}
	preview := result.Table.Head(config.PreviewRows)
	return api.ProcessResponse{
		Status:      status,
		Month:       int(result.Month),
		MonthName:   result.Month.Name(),
		Records:     result.Table.Len(),
		Filename:    result.Filename,
		Columns:     preview.Columns,
		Preview:     preview.Records(),
		DownloadURL: downloadURL(downloadID),
		Stats: api.ProcessStats{
			InputRows:      result.Stats.InputRows,
			Unparseable:    result.Stats.Unparseable,
			Matched:        result.Stats.Matched,
			StrictMismatch: result.Stats.StrictMismatch,
		},
	}
}
