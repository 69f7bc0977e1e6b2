package http

import (
	"context"
	"io"

	"marksight/internal/dataprocessing"
	"marksight/internal/services"
	"marksight/pkg/contracts/domain"
)

// ResultsServiceInterface defines the results operations the handlers
// depend on. It is satisfied by *services.ResultsService.
type ResultsServiceInterface interface {
	LoadUpload(ctx context.Context, src io.Reader, filename string) (services.DatasetMeta, error)
	LoadRows(ctx context.Context, columns []string, rows []domain.RawRow) (services.DatasetMeta, error)
	Meta(ctx context.Context) (services.DatasetMeta, error)
	SetSections(ctx context.Context, cfg domain.SectionConfig) error
	SetCredits(ctx context.Context, cfg domain.CreditConfig) error
	Results(ctx context.Context, opts services.QueryOptions) ([]*domain.StudentRecord, []string, error)
	Result(ctx context.Context, studentID string, opts services.QueryOptions) (*domain.StudentRecord, error)
	Report(ctx context.Context, opts services.QueryOptions) (*domain.ClassReport, []string, error)
	SubjectDifficulty(ctx context.Context, opts services.QueryOptions) ([]domain.SubjectDifficulty, error)
	Snapshot(ctx context.Context, opts services.QueryOptions) (*dataprocessing.Result, error)
}
