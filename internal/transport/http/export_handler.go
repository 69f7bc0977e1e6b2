package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	apierrors "marksight/internal/errors"
	"marksight/internal/exporter"
	"marksight/internal/infrastructure"
)

// ExportHandler streams result snapshots as CSV or xlsx downloads
type ExportHandler struct {
	service      ResultsServiceInterface
	csv          *exporter.CSVExporter
	workbook     *exporter.WorkbookExporter
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewExportHandler creates a new export handler with RFC 7807 error handling
func NewExportHandler(service ResultsServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ExportHandler {
	return &ExportHandler{
		service:      service,
		csv:          exporter.NewCSVExporter(logger),
		workbook:     exporter.NewWorkbookExporter(logger),
		logger:       logger.With(slog.String("component", "export_handler")),
		errorHandler: errorHandler,
	}
}

// ExportCSV handles GET /api/export/csv
func (h *ExportHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	result, err := h.service.Snapshot(r.Context(), queryOptions(r))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	filename := fmt.Sprintf("results_%s.csv", time.Now().Format("20060102"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	start := time.Now()
	if err := h.csv.WriteRecords(w, result); err != nil {
		// Headers are already sent; log and abandon the stream.
		h.logger.ErrorContext(r.Context(), "csv export failed mid-stream",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		return
	}

	infrastructure.RecordExport(r.Context(), infrastructure.BusinessMetricsFromContext(r.Context()),
		"csv", time.Since(start))
	h.logger.InfoContext(r.Context(), "csv export complete",
		slog.String("request_id", reqID),
		slog.Int("records", len(result.Records)),
	)
}

// ExportWorkbook handles GET /api/export/xlsx
func (h *ExportHandler) ExportWorkbook(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	result, err := h.service.Snapshot(r.Context(), queryOptions(r))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	filename := fmt.Sprintf("results_%s.xlsx", time.Now().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	start := time.Now()
	if err := h.workbook.WriteCategoryWorkbook(w, result); err != nil {
		h.logger.ErrorContext(r.Context(), "workbook export failed mid-stream",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		return
	}

	infrastructure.RecordExport(r.Context(), infrastructure.BusinessMetricsFromContext(r.Context()),
		"xlsx", time.Since(start))
	h.logger.InfoContext(r.Context(), "workbook export complete",
		slog.String("request_id", reqID),
		slog.Int("records", len(result.Records)),
	)
}
