// Package ingest decodes uploaded mark sheets into the raw dataset
// contract. It understands xlsx workbooks (including the common
// two-row merged header layout) and plain CSV files.
package ingest

import (
	"encoding/csv"
	"io"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	apierrors "marksight/internal/errors"
	"marksight/pkg/contracts/domain"
)

// suffixLabels are the per-subject column labels that identify a header
// row during sheet probing and two-row flattening.
var suffixLabels = []string{"Internal", "External", "Total", "Result"}

// Reader decodes uploads into datasets.
type Reader struct {
	logger *slog.Logger
}

// NewReader creates a reader with the given logger.
func NewReader(logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{logger: logger}
}

// ReadWorkbook decodes an xlsx workbook into a dataset. The sheet with
// the most mark-sheet-shaped headers wins; merged two-row headers are
// flattened into "CODE Suffix" columns.
func (r *Reader) ReadWorkbook(src io.Reader, datasetID string) (domain.Dataset, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return domain.Dataset{}, apierrors.NewIngestError("open workbook", err)
	}
	defer f.Close()

	sheet, rows, err := pickSheet(f)
	if err != nil {
		return domain.Dataset{}, err
	}

	columns, dataStart := flattenHeader(rows)
	dataset := buildDataset(datasetID, columns, rows[dataStart:])

	r.logger.Info("workbook decoded",
		slog.String("dataset_id", datasetID),
		slog.String("sheet", sheet),
		slog.Int("columns", len(dataset.Columns)),
		slog.Int("rows", len(dataset.Rows)))

	return dataset, nil
}

// ReadCSV decodes a CSV file into a dataset. Ragged rows are tolerated;
// missing trailing cells read as empty.
func (r *Reader) ReadCSV(src io.Reader, datasetID string) (domain.Dataset, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return domain.Dataset{}, apierrors.NewIngestError("read csv", err)
	}
	if len(records) == 0 {
		return domain.Dataset{}, apierrors.NewIngestError("csv has no header row", nil)
	}

	columns, dataStart := flattenHeader(records)
	dataset := buildDataset(datasetID, columns, records[dataStart:])

	r.logger.Info("csv decoded",
		slog.String("dataset_id", datasetID),
		slog.Int("columns", len(dataset.Columns)),
		slog.Int("rows", len(dataset.Rows)))

	return dataset, nil
}

// pickSheet probes every sheet's header and returns the best candidate.
func pickSheet(f *excelize.File) (string, [][]string, error) {
	var bestSheet string
	var bestRows [][]string
	bestScore := 0

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) == 0 {
			continue
		}
		score := headerScore(rows)
		if bestSheet == "" || score > bestScore {
			bestSheet, bestRows, bestScore = sheet, rows, score
		}
	}

	if bestSheet == "" {
		return "", nil, apierrors.NewIngestError("workbook has no usable sheet", nil)
	}
	return bestSheet, bestRows, nil
}

// headerScore counts mark-sheet-shaped header cells in the first two
// rows: flat "CODE Suffix" headers or bare suffix labels on row two.
func headerScore(rows [][]string) int {
	score := 0
	for _, cell := range rows[0] {
		if _, ok := trailingSuffix(cell); ok {
			score++
		}
	}
	if len(rows) > 1 {
		for _, cell := range rows[1] {
			if isSuffixLabel(cell) {
				score++
			}
		}
	}
	return score
}

// flattenHeader resolves the column names and the index of the first
// data row. A two-row header has suffix labels on the second row under
// merged subject-code cells on the first; the code carries forward
// across the blank continuation cells.
func flattenHeader(rows [][]string) ([]string, int) {
	if len(rows) == 0 {
		return nil, 0
	}

	first := rows[0]
	if len(rows) > 1 && isSuffixRow(rows[1]) {
		second := rows[1]
		width := len(first)
		if len(second) > width {
			width = len(second)
		}

		columns := make([]string, 0, width)
		carry := ""
		for i := 0; i < width; i++ {
			top := cellAt(first, i)
			bottom := cellAt(second, i)
			if top != "" {
				carry = top
			}
			switch {
			case bottom != "" && carry != "":
				columns = append(columns, carry+" "+bottom)
			case bottom != "":
				columns = append(columns, bottom)
			default:
				columns = append(columns, carry)
			}
		}
		return columns, 2
	}

	columns := make([]string, 0, len(first))
	for _, c := range first {
		columns = append(columns, strings.TrimSpace(c))
	}
	return columns, 1
}

// isSuffixRow reports whether a row looks like the second line of a
// two-row header: at least two bare suffix labels.
func isSuffixRow(row []string) bool {
	count := 0
	for _, cell := range row {
		if isSuffixLabel(cell) {
			count++
		}
	}
	return count >= 2
}

func isSuffixLabel(cell string) bool {
	cell = strings.TrimSpace(cell)
	for _, label := range suffixLabels {
		if strings.EqualFold(cell, label) {
			return true
		}
	}
	return false
}

// trailingSuffix extracts the suffix from a flat "CODE Suffix" header.
func trailingSuffix(header string) (string, bool) {
	header = strings.TrimSpace(header)
	idx := strings.LastIndexFunc(header, func(r rune) bool { return r == ' ' || r == '\t' })
	if idx < 0 {
		return "", false
	}
	tail := strings.TrimSpace(header[idx+1:])
	if isSuffixLabel(tail) {
		return tail, true
	}
	return "", false
}

// buildDataset maps data rows onto the flattened columns, skipping rows
// with no content at all.
func buildDataset(id string, columns []string, rows [][]string) domain.Dataset {
	dataset := domain.Dataset{ID: id, Columns: columns}

	for _, raw := range rows {
		if isEmptyRow(raw) {
			continue
		}
		cells := make(map[string]string, len(columns))
		for i, column := range columns {
			if column == "" {
				continue
			}
			cells[column] = cellAt(raw, i)
		}
		dataset.Rows = append(dataset.Rows, domain.RawRow{Cells: cells})
	}

	return dataset
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}
