package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"marksight/internal/cache"
	"marksight/internal/config"
	"marksight/internal/dataprocessing"
	apierrors "marksight/internal/errors"
	"marksight/internal/infrastructure"
	"marksight/internal/ingest"
	"marksight/internal/store"
	"marksight/pkg/contracts/domain"
)

// ResultsService owns the dataset lifecycle and serves derived result
// snapshots to the transport layer. Every read goes through the LRU
// cache; every write replaces the store snapshot and leaves stale cache
// entries to age out by key change.
type ResultsService struct {
	store    *store.Store
	cache    *cache.Cache[*dataprocessing.Result]
	pipeline *dataprocessing.Pipeline
	reader   *ingest.Reader
	logger   *slog.Logger

	// last published cache counters, for delta metrics
	countersMu    sync.Mutex
	lastHits      int64
	lastMisses    int64
	lastEvictions int64
}

// NewResultsService creates a results service using the default logger.
func NewResultsService(cfg *config.Config) *ResultsService {
	return NewResultsServiceWithLogger(cfg, slog.Default())
}

// NewResultsServiceWithLogger creates a results service with a specific logger.
func NewResultsServiceWithLogger(cfg *config.Config, logger *slog.Logger) *ResultsService {
	if logger == nil {
		logger = slog.Default()
	}

	cacheSize := config.DefaultSnapshotCacheSize
	if cfg != nil && cfg.Engine.SnapshotCacheSize > 0 {
		cacheSize = cfg.Engine.SnapshotCacheSize
	}

	logger.Info("ResultsService initialized",
		slog.Int("snapshot_cache_size", cacheSize))

	return &ResultsService{
		store:    store.New(),
		cache:    cache.New[*dataprocessing.Result](cacheSize),
		pipeline: dataprocessing.NewPipeline(logger),
		reader:   ingest.NewReader(logger),
		logger:   logger,
	}
}

// QueryOptions selects the view of the active dataset for one read.
type QueryOptions struct {
	Metric   domain.RankMetric
	Mode     domain.ResultMode
	Subjects []string
}

// DatasetMeta describes the active dataset snapshot.
type DatasetMeta struct {
	ID       string   `json:"id"`
	Hash     string   `json:"hash"`
	Rows     int      `json:"rows"`
	Columns  int      `json:"columns"`
	Subjects []string `json:"subjects"`
	Version  int64    `json:"version"`
}

// LoadUpload decodes an uploaded file (xlsx or csv, by extension) and
// installs it as the active dataset.
func (s *ResultsService) LoadUpload(ctx context.Context, src io.Reader, filename string) (DatasetMeta, error) {
	datasetID := uuid.NewString()
	start := time.Now()

	var dataset domain.Dataset
	var err error
	source := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	switch source {
	case "xlsx", "xlsm":
		dataset, err = s.reader.ReadWorkbook(src, datasetID)
	case "csv":
		dataset, err = s.reader.ReadCSV(src, datasetID)
	default:
		return DatasetMeta{}, fmt.Errorf("%w: %s", ErrInvalidFileType, filename)
	}
	if err != nil {
		infrastructure.RecordDatasetLoad(ctx, infrastructure.BusinessMetricsFromContext(ctx),
			source, 0, time.Since(start), err)
		return DatasetMeta{}, apierrors.DatasetDecodeError(err)
	}

	meta, err := s.install(ctx, dataset)
	infrastructure.RecordDatasetLoad(ctx, infrastructure.BusinessMetricsFromContext(ctx),
		source, meta.Rows, time.Since(start), err)
	return meta, err
}

// LoadRows installs a dataset supplied directly as columns plus rows.
func (s *ResultsService) LoadRows(ctx context.Context, columns []string, rows []domain.RawRow) (DatasetMeta, error) {
	start := time.Now()
	dataset := domain.Dataset{
		ID:      uuid.NewString(),
		Columns: columns,
		Rows:    rows,
	}

	meta, err := s.install(ctx, dataset)
	infrastructure.RecordDatasetLoad(ctx, infrastructure.BusinessMetricsFromContext(ctx),
		"rows", meta.Rows, time.Since(start), err)
	return meta, err
}

func (s *ResultsService) install(ctx context.Context, dataset domain.Dataset) (DatasetMeta, error) {
	if len(dataset.Rows) == 0 {
		return DatasetMeta{}, ErrEmptyDataset
	}

	dataset.Hash = cache.Fingerprint(dataset.Columns, dataset.Rows)
	version := s.store.ReplaceDataset(dataset)

	s.logger.InfoContext(ctx, "dataset installed",
		slog.String("dataset_id", dataset.ID),
		slog.String("hash", dataset.Hash[:12]),
		slog.Int("rows", len(dataset.Rows)),
		slog.Int64("version", version))

	return s.Meta(ctx)
}

// Meta returns metadata for the active dataset, including the detected
// subject codes under the current configuration.
func (s *ResultsService) Meta(ctx context.Context) (DatasetMeta, error) {
	state, ok := s.store.Snapshot()
	if !ok {
		return DatasetMeta{}, ErrNoDataset
	}

	result, err := s.compute(ctx, state, QueryOptions{})
	if err != nil {
		return DatasetMeta{}, err
	}

	return DatasetMeta{
		ID:       state.Dataset.ID,
		Hash:     state.Dataset.Hash,
		Rows:     len(state.Dataset.Rows),
		Columns:  len(state.Dataset.Columns),
		Subjects: result.Schema.Codes,
		Version:  state.Version,
	}, nil
}

// SetSections replaces the section configuration.
func (s *ResultsService) SetSections(ctx context.Context, cfg domain.SectionConfig) error {
	version := s.store.SetSections(cfg)
	s.logger.InfoContext(ctx, "section config replaced",
		slog.Int("ranges", len(cfg.Ranges)),
		slog.Int("explicit", len(cfg.Explicit)),
		slog.Int64("version", version))
	return nil
}

// SetCredits replaces the credit configuration. Nil clears it.
func (s *ResultsService) SetCredits(ctx context.Context, cfg domain.CreditConfig) error {
	version := s.store.SetCredits(cfg)
	s.logger.InfoContext(ctx, "credit config replaced",
		slog.Int("subjects", len(cfg)),
		slog.Int64("version", version))
	return nil
}

// Results returns every student record for the requested view.
func (s *ResultsService) Results(ctx context.Context, opts QueryOptions) ([]*domain.StudentRecord, []string, error) {
	result, err := s.snapshot(ctx, opts)
	if err != nil {
		return nil, nil, err
	}
	return result.Records, result.Warnings, nil
}

// Result returns one student record by identifier.
func (s *ResultsService) Result(ctx context.Context, studentID string, opts QueryOptions) (*domain.StudentRecord, error) {
	result, err := s.snapshot(ctx, opts)
	if err != nil {
		return nil, err
	}

	for _, record := range result.Records {
		if strings.EqualFold(record.StudentID, studentID) {
			return record, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrStudentNotFound, studentID)
}

// Report returns the aggregated class report for the requested view.
func (s *ResultsService) Report(ctx context.Context, opts QueryOptions) (*domain.ClassReport, []string, error) {
	result, err := s.snapshot(ctx, opts)
	if err != nil {
		return nil, nil, err
	}
	return result.Report, result.Warnings, nil
}

// SubjectDifficulty returns the per-subject difficulty table.
func (s *ResultsService) SubjectDifficulty(ctx context.Context, opts QueryOptions) ([]domain.SubjectDifficulty, error) {
	report, _, err := s.Report(ctx, opts)
	if err != nil {
		return nil, err
	}
	return report.Subjects, nil
}

// Snapshot returns the full pipeline result for the requested view. The
// exporter consumes this directly.
func (s *ResultsService) Snapshot(ctx context.Context, opts QueryOptions) (*dataprocessing.Result, error) {
	return s.snapshot(ctx, opts)
}

// CacheStats exposes cache statistics for health reporting.
func (s *ResultsService) CacheStats() map[string]interface{} {
	return s.cache.Stats()
}

func (s *ResultsService) snapshot(ctx context.Context, opts QueryOptions) (*dataprocessing.Result, error) {
	state, ok := s.store.Snapshot()
	if !ok {
		return nil, ErrNoDataset
	}
	return s.compute(ctx, state, opts)
}

// compute memoizes pipeline runs on the structural key of everything
// that can change the output.
func (s *ResultsService) compute(ctx context.Context, state *store.State, opts QueryOptions) (*dataprocessing.Result, error) {
	key := cache.Fingerprint(
		state.Dataset.Hash,
		state.Sections,
		state.Credits,
		string(opts.Metric),
		string(opts.Mode),
		opts.Subjects,
	)

	result, err := s.cache.GetOrCompute(key, func() (*dataprocessing.Result, error) {
		runStart := time.Now()
		result, runErr := s.pipeline.Run(ctx, *state.Dataset, dataprocessing.Options{
			Sections: state.Sections,
			Credits:  state.Credits,
			Metric:   opts.Metric,
			Mode:     opts.Mode,
			Subjects: opts.Subjects,
		})

		warnings := 0
		if result != nil {
			warnings = len(result.Warnings)
		}
		infrastructure.RecordPipelineRun(ctx, infrastructure.BusinessMetricsFromContext(ctx),
			string(opts.Mode), warnings, time.Since(runStart), runErr)

		if runErr != nil {
			return result, apierrors.NewEngineError("pipeline run", runErr)
		}
		return result, nil
	})

	s.publishCacheCounters(ctx)
	return result, err
}

// publishCacheCounters emits the cache counter movement since the last
// publish as OTel deltas.
func (s *ResultsService) publishCacheCounters(ctx context.Context) {
	hits, misses, evictions := s.cache.Counters()

	s.countersMu.Lock()
	dHits := hits - s.lastHits
	dMisses := misses - s.lastMisses
	dEvictions := evictions - s.lastEvictions
	s.lastHits, s.lastMisses, s.lastEvictions = hits, misses, evictions
	s.countersMu.Unlock()

	infrastructure.RecordSnapshotCache(ctx, dHits, dMisses, dEvictions)
}
