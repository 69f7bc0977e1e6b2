package domain

import "strings"

// ColumnSuffix identifies the role a spreadsheet column plays inside a
// subject group. Wide-format mark sheets carry four columns per subject,
// named "<CODE> Internal", "<CODE> External", "<CODE> Total" and
// "<CODE> Result".
type ColumnSuffix string

const (
	SuffixInternal ColumnSuffix = "Internal"
	SuffixExternal ColumnSuffix = "External"
	SuffixTotal    ColumnSuffix = "Total"
	SuffixResult   ColumnSuffix = "Result"
)

// KnownSuffixes lists the recognized column suffixes in canonical order.
var KnownSuffixes = []ColumnSuffix{SuffixInternal, SuffixExternal, SuffixTotal, SuffixResult}

// RawRow is one decoded spreadsheet row: an ordered header list plus the
// cell value for each header. The first column is treated as the student
// identifier; a "Name" column is optional. Cell values are kept as raw
// strings so the engine owns all numeric coercion policy.
type RawRow struct {
	Cells map[string]string `json:"cells"`
}

// Get returns the trimmed cell value for a column, or "" when absent.
func (r RawRow) Get(column string) string {
	return trimCell(r.Cells[column])
}

// Dataset is an immutable snapshot of decoded rows plus the ordered
// column headers they were decoded from.
type Dataset struct {
	ID      string   `json:"id"`
	Columns []string `json:"columns"`
	Rows    []RawRow `json:"rows"`

	// Hash is the structural content hash, set at ingestion. It keys
	// derived-snapshot memoization.
	Hash string `json:"hash,omitempty"`
}

// SubjectColumn is one inferred subject-group column.
type SubjectColumn struct {
	Code   string       `json:"code"`
	Suffix ColumnSuffix `json:"suffix"`
	Header string       `json:"header"`
}

// SubjectSchema is the inferred shape of a mark sheet: the sorted subject
// codes and the concrete column header backing each (code, suffix) pair.
type SubjectSchema struct {
	Codes   []string                          `json:"codes"`
	Columns map[string]map[ColumnSuffix]string `json:"columns"`
}

// Header returns the column header for a (code, suffix) pair, or "" when
// the sheet has no such column.
func (s SubjectSchema) Header(code string, suffix ColumnSuffix) string {
	if cols, ok := s.Columns[code]; ok {
		return cols[suffix]
	}
	return ""
}

// HasColumn reports whether the sheet carries a column for the pair.
func (s SubjectSchema) HasColumn(code string, suffix ColumnSuffix) bool {
	return s.Header(code, suffix) != ""
}

// SubjectMarks is one student's raw standing in one subject, as read off
// the row before any classification.
type SubjectMarks struct {
	Code      string  `json:"code"`
	Internal  float64 `json:"internal"`
	External  float64 `json:"external"`
	Total     float64 `json:"total"`
	HasTotal  bool    `json:"has_total"`
	ResultRaw string  `json:"result_raw"`
}

func trimCell(s string) string {
	return strings.TrimSpace(s)
}
