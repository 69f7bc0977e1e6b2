package dataprocessing

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"marksight/pkg/contracts/domain"
)

// Pipeline runs the full normalization flow: schema detection, section
// assignment, classification, metrics, optional SGPA, ranking and report
// aggregation. It holds no mutable state; Run is safe for concurrent use.
type Pipeline struct {
	logger *slog.Logger
}

// NewPipeline creates a pipeline with the given logger.
func NewPipeline(logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{logger: logger}
}

// Options selects the configuration for one pipeline run.
type Options struct {
	Sections domain.SectionConfig
	Credits  domain.CreditConfig
	Metric   domain.RankMetric
	Mode     domain.ResultMode
	// Subjects optionally restricts the run to a subset of detected
	// subject codes (empty means all).
	Subjects []string
}

// Result is the pipeline output for one dataset snapshot.
type Result struct {
	Schema   domain.SubjectSchema    `json:"schema"`
	Records  []*domain.StudentRecord `json:"records"`
	Report   *domain.ClassReport     `json:"report"`
	Warnings []string                `json:"warnings,omitempty"`
}

// Run executes the pipeline over an immutable dataset. Identical inputs
// always produce identical output; messy input degrades to zeroed fields
// instead of failing.
func (p *Pipeline) Run(ctx context.Context, dataset domain.Dataset, opts Options) (*Result, error) {
	if opts.Metric == "" {
		opts.Metric = domain.MetricTotalMarks
	}
	if opts.Mode == "" {
		opts.Mode = domain.ModeMarks
	}

	schema := DetectSchema(dataset.Columns, dataset.Rows)
	schema = filterSchema(schema, opts.Subjects)

	p.logger.InfoContext(ctx, "schema detected",
		slog.String("dataset_id", dataset.ID),
		slog.Int("subject_count", len(schema.Codes)),
		slog.Int("row_count", len(dataset.Rows)))

	result := &Result{Schema: schema}

	idColumn, nameColumn := identityColumns(dataset.Columns)
	sgpaWanted := opts.Credits != nil
	sgpaAvailable := sgpaWanted

	if sgpaWanted && opts.Credits.TotalCredits() == 0 {
		sgpaAvailable = false
		result.Warnings = append(result.Warnings, ErrNoCreditedSubjects.Error())
	}

	records := make([]*domain.StudentRecord, 0, len(dataset.Rows))
	for i, row := range dataset.Rows {
		record := p.buildRecord(row, i, idColumn, nameColumn, schema, opts)

		if sgpaAvailable {
			sgpa, label, err := ComputeSGPA(record.Subjects, schema, opts.Credits, record.OverallResult)
			if err == nil {
				record.SGPA = &sgpa
				record.SGPAResult = &label
			}
		}

		records = append(records, record)
	}

	mode := opts.Mode
	if mode == domain.ModeSGPA && !sgpaAvailable {
		mode = domain.ModeMarks
		result.Warnings = append(result.Warnings, "SGPA mode requested without usable credit configuration; ranking on marks")
	}

	AssignRanks(records, opts.Metric, mode)

	result.Records = records
	result.Report = BuildReport(records, schema, opts.Metric, mode)

	p.logger.InfoContext(ctx, "pipeline complete",
		slog.String("dataset_id", dataset.ID),
		slog.Int("students", len(records)),
		slog.Int("passed", result.Report.KPI.PassedStudents))

	return result, nil
}

// buildRecord normalizes one row into a StudentRecord.
func (p *Pipeline) buildRecord(row domain.RawRow, rowIndex int, idColumn, nameColumn string, schema domain.SubjectSchema, opts Options) *domain.StudentRecord {
	record := &domain.StudentRecord{
		StudentID: row.Get(idColumn),
		Name:      row.Get(nameColumn),
		Section:   AssignSection(row.Get(idColumn), opts.Sections),
		Subjects:  make(map[string]domain.SubjectOutcome, len(schema.Codes)),
		RowIndex:  rowIndex,
	}

	statuses := make([]domain.SubjectStatus, 0, len(schema.Codes))
	for _, code := range schema.Codes {
		marks := readSubjectMarks(row, schema, code)
		status := ClassifySubject(marks)
		statuses = append(statuses, status)

		record.Subjects[code] = domain.SubjectOutcome{
			Internal:  marks.Internal,
			External:  marks.External,
			Total:     marks.Total,
			ResultRaw: marks.ResultRaw,
			Status:    status,
		}

		switch status {
		case domain.SubjectFail:
			record.FailedSubjectCount++
			record.FailedSubjectNames = append(record.FailedSubjectNames, code)
		case domain.SubjectAbsent:
			record.AbsentSubjectCount++
		}
	}
	sort.Strings(record.FailedSubjectNames)

	record.OverallResult = AggregateResult(statuses)

	metrics := ComputeMetrics(record.Subjects)
	record.TotalMarks = metrics.TotalMarks
	record.TotalInternal = metrics.TotalInternal
	record.TotalExternal = metrics.TotalExternal
	record.Percentage = metrics.Percentage
	record.Category = Categorize(record.OverallResult, record.Percentage)

	return record
}

// readSubjectMarks pulls one subject group off a row with tolerant
// numeric coercion (non-numeric cells become zero).
func readSubjectMarks(row domain.RawRow, schema domain.SubjectSchema, code string) domain.SubjectMarks {
	marks := domain.SubjectMarks{Code: code}

	if header := schema.Header(code, domain.SuffixInternal); header != "" {
		marks.Internal = numericOrZero(row.Get(header))
	}
	if header := schema.Header(code, domain.SuffixExternal); header != "" {
		marks.External = numericOrZero(row.Get(header))
	}
	if header := schema.Header(code, domain.SuffixTotal); header != "" {
		marks.Total = numericOrZero(row.Get(header))
		marks.HasTotal = true
	}
	if header := schema.Header(code, domain.SuffixResult); header != "" {
		marks.ResultRaw = row.Get(header)
	}

	return marks
}

// filterSchema restricts a schema to a subset of codes.
func filterSchema(schema domain.SubjectSchema, subjects []string) domain.SubjectSchema {
	if len(subjects) == 0 {
		return schema
	}

	keep := make(map[string]bool, len(subjects))
	for _, code := range subjects {
		keep[strings.TrimSpace(code)] = true
	}

	filtered := domain.SubjectSchema{
		Columns: make(map[string]map[domain.ColumnSuffix]string),
	}
	for _, code := range schema.Codes {
		if keep[code] {
			filtered.Codes = append(filtered.Codes, code)
			filtered.Columns[code] = schema.Columns[code]
		}
	}
	return filtered
}

// identityColumns resolves the student identifier column (always the
// first) and the optional Name column.
func identityColumns(columns []string) (idColumn, nameColumn string) {
	if len(columns) > 0 {
		idColumn = columns[0]
	}
	for _, c := range columns {
		if strings.EqualFold(strings.TrimSpace(c), "Name") {
			nameColumn = c
			break
		}
	}
	return idColumn, nameColumn
}
