package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "marksight/internal/errors"
	"marksight/internal/services"
	"marksight/pkg/contracts/domain"
)

// ResultsHandler handles result and report queries with RFC 7807 compliance
type ResultsHandler struct {
	service      ResultsServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewResultsHandler creates a new results handler with RFC 7807 error handling
func NewResultsHandler(service ResultsServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ResultsHandler {
	return &ResultsHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "results_handler")),
		errorHandler: errorHandler,
	}
}

// StudentCtx middleware validates the studentID parameter
func (h *ResultsHandler) StudentCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		studentID := chi.URLParam(r, "studentID")
		if studentID == "" {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("studentID", "Student identifier is required"))
			return
		}
		if len(studentID) > 32 {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("studentID", "Invalid student identifier format"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// queryOptions parses the view selectors shared by all read endpoints.
// Unknown metric or mode values fall back to the defaults.
func queryOptions(r *http.Request) services.QueryOptions {
	opts := services.QueryOptions{
		Metric: domain.ParseRankMetric(r.URL.Query().Get("metric")),
		Mode:   domain.ParseResultMode(r.URL.Query().Get("mode")),
	}

	if raw := r.URL.Query().Get("subjects"); raw != "" {
		for _, code := range strings.Split(raw, ",") {
			if code = strings.TrimSpace(code); code != "" {
				opts.Subjects = append(opts.Subjects, code)
			}
		}
	}

	return opts
}

// GetResults handles GET /api/results
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())
	opts := queryOptions(r)

	h.logger.InfoContext(r.Context(), "fetching results",
		slog.String("request_id", reqID),
		slog.String("metric", string(opts.Metric)),
		slog.String("mode", string(opts.Mode)),
		slog.Int("subject_filter", len(opts.Subjects)),
	)

	records, warnings, err := h.service.Results(r.Context(), opts)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to get results",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":   "success",
		"data":     records,
		"count":    len(records),
		"warnings": warnings,
	})
}

// GetResult handles GET /api/results/{studentID}
func (h *ResultsHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())
	studentID := chi.URLParam(r, "studentID")

	h.logger.InfoContext(r.Context(), "fetching student result",
		slog.String("request_id", reqID),
		slog.String("student_id", studentID),
	)

	record, err := h.service.Result(r.Context(), studentID, queryOptions(r))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to get student result",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
			slog.String("student_id", studentID),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   record,
	})
}

// GetReport handles GET /api/report
func (h *ResultsHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())
	opts := queryOptions(r)

	h.logger.InfoContext(r.Context(), "fetching class report",
		slog.String("request_id", reqID),
		slog.String("metric", string(opts.Metric)),
		slog.String("mode", string(opts.Mode)),
	)

	report, warnings, err := h.service.Report(r.Context(), opts)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to get class report",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":   "success",
		"data":     report,
		"warnings": warnings,
	})
}

// GetSubjectDifficulty handles GET /api/report/subjects
func (h *ResultsHandler) GetSubjectDifficulty(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	subjects, err := h.service.SubjectDifficulty(r.Context(), queryOptions(r))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to get subject difficulty",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   subjects,
		"count":  len(subjects),
	})
}
