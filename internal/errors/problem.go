package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// Dataset-domain sentinel errors. The services layer returns these; the
// transport layer maps them to problem details with MapResultError.
var (
	ErrNoDatasetLoaded     = errors.New("no dataset loaded")
	ErrDatasetEmpty        = errors.New("dataset has no rows")
	ErrStudentMissing      = errors.New("student not found")
	ErrUnsupportedFileType = errors.New("invalid file type")
)

// ProblemDetails implements RFC 7807 Problem Details for HTTP APIs
type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	// Additional fields for extensibility
	Extensions map[string]interface{} `json:"-"`
}

// Render implements the render.Renderer interface
func (pd *ProblemDetails) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, pd.Status)
	return nil
}

// MarshalJSON custom marshaler to include extensions
func (pd *ProblemDetails) MarshalJSON() ([]byte, error) {
	data := make(map[string]interface{})

	data["type"] = pd.Type
	data["title"] = pd.Title
	data["status"] = pd.Status

	if pd.Detail != "" {
		data["detail"] = pd.Detail
	}
	if pd.Instance != "" {
		data["instance"] = pd.Instance
	}

	for k, v := range pd.Extensions {
		data[k] = v
	}

	return json.Marshal(data)
}

// NewProblemDetails creates a new RFC 7807 compliant error
func NewProblemDetails(status int, problemType, title, detail, instance string) *ProblemDetails {
	return &ProblemDetails{
		Type:       problemType,
		Title:      title,
		Status:     status,
		Detail:     detail,
		Instance:   instance,
		Extensions: make(map[string]interface{}),
	}
}

// WithExtension adds an extension field to the problem details
func (pd *ProblemDetails) WithExtension(key string, value interface{}) *ProblemDetails {
	pd.Extensions[key] = value
	return pd
}

// MapResultError maps dataset-domain errors to HTTP problem details
func MapResultError(err error, traceID, instance string) render.Renderer {
	switch {
	case errors.Is(err, ErrNoDatasetLoaded):
		return NewProblemDetails(
			http.StatusNotFound,
			TypeNoDataset,
			"No Dataset Loaded",
			"No dataset has been uploaded yet. Upload a mark sheet to compute results.",
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "NO_DATASET")

	case errors.Is(err, ErrDatasetEmpty):
		return NewProblemDetails(
			http.StatusUnprocessableEntity,
			TypeDatasetEmpty,
			"Empty Dataset",
			"The uploaded file contains no data rows.",
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "EMPTY_DATASET")

	case errors.Is(err, ErrStudentMissing):
		return NewProblemDetails(
			http.StatusNotFound,
			TypeNotFound,
			"Student Not Found",
			err.Error(),
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "STUDENT_NOT_FOUND")

	case errors.Is(err, ErrUnsupportedFileType):
		return NewProblemDetails(
			http.StatusUnsupportedMediaType,
			TypeUnsupportedUpload,
			"Unsupported Upload",
			fmt.Sprintf("%v. Supported formats: xlsx, csv.", err),
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "UNSUPPORTED_UPLOAD")

	default:
		return NewProblemDetails(
			http.StatusInternalServerError,
			TypeInternal,
			"Internal Server Error",
			"An unexpected error occurred while processing your request.",
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "INTERNAL_ERROR")
	}
}
