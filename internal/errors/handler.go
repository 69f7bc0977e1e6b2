package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"marksight/internal/infrastructure"
)

// RFC 7807 problem type URIs.
const (
	TypeValidation      = "/errors/validation"
	TypeNotFound        = "/errors/not-found"
	TypeRateLimit       = "/errors/rate-limit"
	TypeInternal        = "/errors/internal"
	TypeServiceDown     = "/errors/service-unavailable"
	TypeTimeout         = "/errors/timeout"
	TypePayloadTooLarge = "/errors/payload-too-large"

	TypeNoDataset         = "/errors/dataset/not-loaded"
	TypeDatasetEmpty      = "/errors/dataset/empty"
	TypeDatasetDecode     = "/errors/dataset/decode-failed"
	TypeUnsupportedUpload = "/errors/dataset/unsupported-upload"
	TypeEngineFailure     = "/errors/engine/computation-failed"
)

// codeToType maps APIError codes onto problem type URIs.
var codeToType = map[string]string{
	"VALIDATION_FAILED":     TypeValidation,
	"INVALID_REQUEST":       TypeValidation,
	"INVALID_JSON":          TypeValidation,
	"PAYLOAD_TOO_LARGE":     TypePayloadTooLarge,
	"DATASET_DECODE_FAILED": TypeDatasetDecode,
}

// ErrorHandler turns errors raised anywhere in the request path into
// RFC 7807 responses. Stack traces are attached only in development.
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates an error handler.
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}
}

// HandleError logs the failure and renders its problem response.
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	reqID := middleware.GetReqID(r.Context())
	h.logger.ErrorContext(r.Context(), "request failed",
		slog.String("error", err.Error()),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	pd := h.ErrorToProblem(err, r)
	pd.WithExtension("trace_id", reqID)
	if h.includeStack {
		pd.WithExtension("stack", stackTrace())
	}

	if pd.Status >= http.StatusInternalServerError {
		infrastructure.RecordSystemFailure(r.Context(), "request_error", "http")
	}

	_ = render.Render(w, r, pd)
}

// ErrorToProblem resolves any error to problem details. Precedence:
// context cancellation, APIError, dataset sentinels, then message
// heuristics, then a generic 500.
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewProblemDetails(http.StatusGatewayTimeout, TypeTimeout,
			"Request Timeout", "The request took too long to process and was cancelled", r.URL.Path)
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return h.problemFromAPIError(apiErr, r)
	}

	if errors.Is(err, ErrNoDatasetLoaded) || errors.Is(err, ErrDatasetEmpty) ||
		errors.Is(err, ErrStudentMissing) || errors.Is(err, ErrUnsupportedFileType) {
		return MapResultError(err, middleware.GetReqID(r.Context()), r.URL.Path).(*ProblemDetails)
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "decode upload"):
		return NewProblemDetails(http.StatusUnprocessableEntity, TypeDatasetDecode,
			"Upload Decode Failed", msg, r.URL.Path)
	case strings.Contains(msg, "not found"):
		return NewProblemDetails(http.StatusNotFound, TypeNotFound,
			"Resource Not Found", msg, r.URL.Path)
	case strings.Contains(msg, "rate limit"):
		return NewProblemDetails(http.StatusTooManyRequests, TypeRateLimit,
			"Rate Limit Exceeded", "Too many requests. Please try again later.", r.URL.Path).
			WithExtension("retry_after", 60)
	case strings.Contains(msg, "payload too large"):
		return NewProblemDetails(http.StatusRequestEntityTooLarge, TypePayloadTooLarge,
			"Payload Too Large", "The request body exceeds the maximum allowed size", r.URL.Path)
	default:
		return NewProblemDetails(http.StatusInternalServerError, TypeInternal,
			"Internal Server Error", "An unexpected error occurred while processing your request", r.URL.Path)
	}
}

func (h *ErrorHandler) problemFromAPIError(apiErr *APIError, r *http.Request) *ProblemDetails {
	problemType, ok := codeToType[apiErr.ErrorCode]
	if !ok {
		problemType = TypeInternal
	}

	pd := NewProblemDetails(apiErr.StatusCode, problemType,
		http.StatusText(apiErr.StatusCode), apiErr.Message, r.URL.Path).
		WithExtension("error_code", apiErr.ErrorCode)
	if apiErr.Details != nil {
		pd.WithExtension("details", apiErr.Details)
	}
	return pd
}

// HandlePanic renders a 500 for a recovered panic.
func (h *ErrorHandler) HandlePanic(w http.ResponseWriter, r *http.Request, recovered interface{}) {
	reqID := middleware.GetReqID(r.Context())
	h.logger.ErrorContext(r.Context(), "panic recovered",
		slog.Any("panic", recovered),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("stack", string(debug.Stack())),
	)

	pd := NewProblemDetails(http.StatusInternalServerError, TypeInternal,
		"Internal Server Error", "An unexpected error occurred", r.URL.Path).
		WithExtension("trace_id", reqID)
	if h.includeStack {
		pd.WithExtension("panic", fmt.Sprintf("%v", recovered))
		pd.WithExtension("stack", stackTrace())
	}

	infrastructure.RecordSystemFailure(r.Context(), "panic", "http")
	_ = render.Render(w, r, pd)
}

// NotFound serves the router's 404 fallback.
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	pd := NewProblemDetails(http.StatusNotFound, TypeNotFound,
		"Not Found", "The requested resource was not found", r.URL.Path).
		WithExtension("trace_id", middleware.GetReqID(r.Context()))
	_ = render.Render(w, r, pd)
}

// MethodNotAllowed serves the router's 405 fallback.
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	pd := NewProblemDetails(http.StatusMethodNotAllowed, TypeInternal,
		"Method Not Allowed", fmt.Sprintf("Method %s is not allowed for this endpoint", r.Method), r.URL.Path).
		WithExtension("trace_id", middleware.GetReqID(r.Context()))
	_ = render.Render(w, r, pd)
}

// Middleware catches panics escaping the handler chain.
func (h *ErrorHandler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				h.HandlePanic(w, r, rec)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func stackTrace() string {
	buf := make([]byte, 8<<10)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}
