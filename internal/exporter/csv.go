package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"marksight/internal/dataprocessing"
	"marksight/pkg/contracts/domain"
)

// CSVExporter writes student records as a flat CSV table.
type CSVExporter struct {
	logger *slog.Logger
}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter(logger *slog.Logger) *CSVExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVExporter{logger: logger}
}

// WriteRecords writes the full record table: identity and section,
// per-subject totals and statuses, then the aggregate columns. A UTF-8
// BOM is emitted first so Excel recognizes the encoding.
func (e *CSVExporter) WriteRecords(w io.Writer, result *dataprocessing.Result) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(recordHeaders(result.Schema)); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for i, record := range result.Records {
		if err := writer.Write(recordRow(record, result.Schema)); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	e.logger.Info("records exported",
		slog.Int("record_count", len(result.Records)),
		slog.Int("subject_count", len(result.Schema.Codes)))

	return writer.Error()
}

func recordHeaders(schema domain.SubjectSchema) []string {
	headers := []string{"Student ID", "Name", "Section"}
	for _, code := range schema.Codes {
		headers = append(headers, code+" Total", code+" Result")
	}
	return append(headers,
		"Total Internal", "Total External", "Total Marks", "Percentage",
		"Overall Result", "Category", "SGPA", "Class Rank", "Section Rank",
		"Failed Subjects")
}

func recordRow(record *domain.StudentRecord, schema domain.SubjectSchema) []string {
	row := []string{record.StudentID, record.Name, record.Section}

	for _, code := range schema.Codes {
		outcome := record.Subjects[code]
		row = append(row, formatFloat(subjectScore(code, outcome, schema)), string(outcome.Status))
	}

	return append(row,
		formatFloat(record.TotalInternal),
		formatFloat(record.TotalExternal),
		formatFloat(record.TotalMarks),
		formatFloat(record.Percentage),
		string(record.OverallResult),
		string(record.Category),
		formatFloatPtr(record.SGPA),
		formatIntPtr(record.ClassRank),
		formatIntPtr(record.SectionRank),
		strings.Join(record.FailedSubjectNames, "; "),
	)
}

// subjectScore mirrors the engine's score resolution so exported totals
// match what SGPA and difficulty were computed from.
func subjectScore(code string, outcome domain.SubjectOutcome, schema domain.SubjectSchema) float64 {
	if schema.HasColumn(code, domain.SuffixTotal) {
		return outcome.Total
	}
	return outcome.Internal + outcome.External
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatIntPtr(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
