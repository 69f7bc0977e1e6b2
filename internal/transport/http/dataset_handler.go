package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "marksight/internal/errors"
	"marksight/internal/validation"
	"marksight/pkg/contracts/domain"
)

// DatasetHandler handles dataset upload, metadata, and configuration
// requests with RFC 7807 compliance.
type DatasetHandler struct {
	service        ResultsServiceInterface
	validator      *validation.ConfigValidator
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
	maxUploadBytes int64
}

// NewDatasetHandler creates a new dataset handler with RFC 7807 error handling
func NewDatasetHandler(service ResultsServiceInterface, validator *validation.ConfigValidator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler, maxUploadBytes int64) *DatasetHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 16 << 20
	}
	return &DatasetHandler{
		service:        service,
		validator:      validator,
		logger:         logger.With(slog.String("component", "dataset_handler")),
		errorHandler:   errorHandler,
		maxUploadBytes: maxUploadBytes,
	}
}

// rowsRequest carries a dataset posted directly as JSON.
type rowsRequest struct {
	Columns []string        `json:"columns"`
	Rows    []domain.RawRow `json:"rows"`
}

// UploadDataset handles POST /api/dataset. A multipart body is treated
// as a workbook or CSV upload; a JSON body supplies columns plus rows.
func (h *DatasetHandler) UploadDataset(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		h.uploadFile(w, r, reqID)
		return
	}

	var req rowsRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if len(req.Columns) == 0 {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("columns", "At least one column is required"))
		return
	}

	h.logger.InfoContext(r.Context(), "loading dataset rows",
		slog.String("request_id", reqID),
		slog.Int("columns", len(req.Columns)),
		slog.Int("rows", len(req.Rows)),
	)

	meta, err := h.service.LoadRows(r.Context(), req.Columns, req.Rows)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to load dataset rows",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   meta,
	})
}

func (h *DatasetHandler) uploadFile(w http.ResponseWriter, r *http.Request, reqID string) {
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusRequestEntityTooLarge,
			"PAYLOAD_TOO_LARGE",
			"Upload exceeds the maximum allowed size",
			map[string]interface{}{
				"max_bytes": h.maxUploadBytes,
			},
		))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "Multipart field 'file' is required"))
		return
	}
	defer file.Close()

	h.logger.InfoContext(r.Context(), "uploading dataset file",
		slog.String("request_id", reqID),
		slog.String("filename", header.Filename),
		slog.Int64("size", header.Size),
	)

	meta, err := h.service.LoadUpload(r.Context(), file, header.Filename)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to load dataset upload",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
			slog.String("filename", header.Filename),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   meta,
	})
}

// GetDatasetMeta handles GET /api/dataset
func (h *DatasetHandler) GetDatasetMeta(w http.ResponseWriter, r *http.Request) {
	meta, err := h.service.Meta(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   meta,
	})
}

// PutSections handles PUT /api/config/sections
func (h *DatasetHandler) PutSections(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	var cfg domain.SectionConfig
	if err := render.DecodeJSON(r.Body, &cfg); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	if err := h.validator.ValidateSections(cfg); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("sections", err.Error()))
		return
	}

	if err := h.service.SetSections(r.Context(), cfg); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to replace section config",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":   "success",
		"ranges":   len(cfg.Ranges),
		"explicit": len(cfg.Explicit),
	})
}

// PutCredits handles PUT /api/config/credits
func (h *DatasetHandler) PutCredits(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	var cfg domain.CreditConfig
	if err := render.DecodeJSON(r.Body, &cfg); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	if err := h.validator.ValidateCredits(cfg); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("credits", err.Error()))
		return
	}

	if err := h.service.SetCredits(r.Context(), cfg); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to replace credit config",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":   "success",
		"subjects": len(cfg),
		"credits":  cfg.TotalCredits(),
	})
}
