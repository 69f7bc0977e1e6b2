package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "marksight/internal/errors"
)

// Handlers bundles everything the API router serves.
type Handlers struct {
	Dataset *DatasetHandler
	Results *ResultsHandler
	Export  *ExportHandler
	Health  *HealthHandler

	// Errors supplies the 404/405 fallbacks; nil keeps chi's defaults.
	Errors *apierrors.ErrorHandler

	// Prometheus is the metrics scrape handler; nil disables /metrics.
	Prometheus http.Handler
}

// NewRouter assembles the API surface. Application-level middleware is
// attached by the caller so tests can exercise the bare routes.
func NewRouter(h Handlers) chi.Router {
	r := chi.NewRouter()

	r.Route("/api", func(api chi.Router) {
		api.Post("/dataset", h.Dataset.UploadDataset)
		api.Get("/dataset", h.Dataset.GetDatasetMeta)

		api.Route("/config", func(cfg chi.Router) {
			cfg.Use(render.SetContentType(render.ContentTypeJSON))
			cfg.Put("/sections", h.Dataset.PutSections)
			cfg.Put("/credits", h.Dataset.PutCredits)
		})

		api.Group(func(reads chi.Router) {
			reads.Use(render.SetContentType(render.ContentTypeJSON))
			reads.Get("/results", h.Results.GetResults)
			reads.With(h.Results.StudentCtx).Get("/results/{studentID}", h.Results.GetResult)
			reads.Get("/report", h.Results.GetReport)
			reads.Get("/report/subjects", h.Results.GetSubjectDifficulty)
		})

		api.Get("/export/csv", h.Export.ExportCSV)
		api.Get("/export/xlsx", h.Export.ExportWorkbook)

		if h.Health != nil {
			api.Get("/version", h.Health.Version)
		}
	})

	if h.Health != nil {
		r.Get("/healthz", h.Health.HealthCheck)
	}
	if h.Prometheus != nil {
		r.Method(http.MethodGet, "/metrics", h.Prometheus)
	}
	if h.Errors != nil {
		r.NotFound(h.Errors.NotFound)
		r.MethodNotAllowed(h.Errors.MethodNotAllowed)
	}

	return r
}
