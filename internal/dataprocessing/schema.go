package dataprocessing

import (
	"sort"
	"strconv"
	"strings"

	"marksight/pkg/contracts/domain"
)

// DetectSchema infers the subject schema from the ordered column headers
// and the dataset rows. Inference runs in two passes: the first registers
// candidate (code, suffix) pairs from headers of the form
// "<label> <Internal|External|Total|Result>", the second drops phantom
// codes such as aggregate "Grand Total" columns that never carry a
// positive Total value or subject-shaped code.
func DetectSchema(columns []string, rows []domain.RawRow) domain.SubjectSchema {
	candidates := make(map[string]map[domain.ColumnSuffix]string)

	// Pass 1: collect candidate subject-group columns.
	for _, header := range columns {
		code, suffix, ok := splitHeader(header)
		if !ok {
			continue
		}
		if candidates[code] == nil {
			candidates[code] = make(map[domain.ColumnSuffix]string)
		}
		candidates[code][suffix] = header
	}

	// Pass 2: keep only codes that pass the real-subject predicate.
	schema := domain.SubjectSchema{
		Columns: make(map[string]map[domain.ColumnSuffix]string),
	}
	for code, cols := range candidates {
		if !isRealSubject(code, cols, rows) {
			continue
		}
		schema.Columns[code] = cols
		schema.Codes = append(schema.Codes, code)
	}
	sort.Strings(schema.Codes)

	return schema
}

// splitHeader splits a column header on its last whitespace run and
// reports whether the trailing token is a recognized subject suffix.
func splitHeader(header string) (code string, suffix domain.ColumnSuffix, ok bool) {
	trimmed := strings.TrimSpace(header)
	idx := strings.LastIndexAny(trimmed, " \t")
	if idx < 0 {
		return "", "", false
	}

	prefix := strings.TrimSpace(trimmed[:idx])
	tail := strings.TrimSpace(trimmed[idx+1:])
	if prefix == "" {
		return "", "", false
	}

	for _, known := range domain.KnownSuffixes {
		if strings.EqualFold(tail, string(known)) {
			return prefix, known, true
		}
	}
	return "", "", false
}

// isRealSubject is the explicit filter between candidate codes and real
// subjects: the code must have a Total column whose maximum numeric value
// across all rows is positive, and either an Internal/External sibling
// column or a digit in the code itself. Aggregate columns like
// "Grand Total" fail both sibling and digit checks.
func isRealSubject(code string, cols map[domain.ColumnSuffix]string, rows []domain.RawRow) bool {
	totalHeader, hasTotal := cols[domain.SuffixTotal]
	if !hasTotal {
		return false
	}
	if maxNumeric(rows, totalHeader) <= 0 {
		return false
	}

	_, hasInternal := cols[domain.SuffixInternal]
	_, hasExternal := cols[domain.SuffixExternal]
	if hasInternal || hasExternal {
		return true
	}
	return matchesCodeShape(code) || containsDigit(code)
}

// matchesCodeShape reports whether a label looks like a subject code:
// one or more letters followed by digits, with optional trailing
// letters (e.g. "CS301", "CS301A"). Digit-leading codes like "18MAT11"
// fall back to the containsDigit check in isRealSubject.
func matchesCodeShape(label string) bool {
	if label == "" {
		return false
	}
	i := 0
	for i < len(label) && isLetter(label[i]) {
		i++
	}
	if i == 0 {
		// All-digit labels like "301" are not subject codes.
		return false
	}
	digits := 0
	for i < len(label) && isDigit(label[i]) {
		i++
		digits++
	}
	if digits == 0 {
		return false
	}
	// Optional trailing letters after the digit run.
	for i < len(label) && isLetter(label[i]) {
		i++
	}
	return i == len(label)
}

// maxNumeric returns the maximum coercible numeric value of a column
// across all rows. Non-numeric cells are ignored.
func maxNumeric(rows []domain.RawRow, column string) float64 {
	max := 0.0
	for _, row := range rows {
		if v, ok := parseNumeric(row.Get(column)); ok && v > max {
			max = v
		}
	}
	return max
}

// parseNumeric coerces a raw cell to a float. Thousands separators are
// tolerated; anything else non-numeric reports false.
func parseNumeric(cell string) (float64, bool) {
	s := strings.ReplaceAll(strings.TrimSpace(cell), ",", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// numericOrZero coerces a raw cell to a float, defaulting to 0.
func numericOrZero(cell string) float64 {
	v, ok := parseNumeric(cell)
	if !ok {
		return 0
	}
	return v
}

func containsDigit(s string) bool {
	for i := 0; i < len(s); i++ {
		if isDigit(s[i]) {
			return true
		}
	}
	return false
}

func isDigit(b byte) bool  { return b >= '0' && b <= '9' }
func isLetter(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') }
