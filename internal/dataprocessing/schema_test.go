package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marksight/pkg/contracts/domain"
)

func row(cells map[string]string) domain.RawRow {
	return domain.RawRow{Cells: cells}
}

func TestDetectSchema(t *testing.T) {
	columns := []string{
		"USN", "Name",
		"CS301 Internal", "CS301 External", "CS301 Total", "CS301 Result",
		"CS302 Total", "CS302 Result",
		"Grand Total",
	}
	rows := []domain.RawRow{
		row(map[string]string{
			"USN": "1RV21CS001", "Name": "Asha",
			"CS301 Internal": "20", "CS301 External": "45", "CS301 Total": "65", "CS301 Result": "P",
			"CS302 Total": "70", "CS302 Result": "P",
			"Grand Total": "135",
		}),
	}

	schema := DetectSchema(columns, rows)

	assert.Equal(t, []string{"CS301", "CS302"}, schema.Codes)
	assert.Equal(t, "CS301 Internal", schema.Header("CS301", domain.SuffixInternal))
	assert.Equal(t, "CS302 Total", schema.Header("CS302", domain.SuffixTotal))
	assert.False(t, schema.HasColumn("CS302", domain.SuffixInternal))
	assert.False(t, schema.HasColumn("Grand", domain.SuffixTotal), "aggregate column must not register as a subject")
}

func TestDetectSchemaPhantomZeroTotal(t *testing.T) {
	columns := []string{"USN", "CS301 Total", "CS301 Result", "CS999 Total", "CS999 Result"}
	rows := []domain.RawRow{
		row(map[string]string{"USN": "101", "CS301 Total": "80", "CS301 Result": "P", "CS999 Total": "0", "CS999 Result": ""}),
		row(map[string]string{"USN": "102", "CS301 Total": "55", "CS301 Result": "P", "CS999 Total": "0", "CS999 Result": ""}),
	}

	schema := DetectSchema(columns, rows)

	assert.Equal(t, []string{"CS301"}, schema.Codes, "uniformly zero Total columns are phantom subjects")
}

func TestDetectSchemaSiblingWithoutDigit(t *testing.T) {
	// A digit-free code still registers when Internal/External siblings exist.
	columns := []string{"Roll", "LAB Internal", "LAB External", "LAB Total", "LAB Result"}
	rows := []domain.RawRow{
		row(map[string]string{"Roll": "7", "LAB Internal": "22", "LAB External": "50", "LAB Total": "72", "LAB Result": "P"}),
	}

	schema := DetectSchema(columns, rows)

	assert.Equal(t, []string{"LAB"}, schema.Codes)
}

func TestSplitHeader(t *testing.T) {
	tests := []struct {
		header string
		code   string
		suffix domain.ColumnSuffix
		ok     bool
	}{
		{"CS301 Internal", "CS301", domain.SuffixInternal, true},
		{"CS301 Total", "CS301", domain.SuffixTotal, true},
		{"Grand Total", "Grand", domain.SuffixTotal, true},
		{"18MAT11  Result", "18MAT11", domain.SuffixResult, true},
		{"Name", "", "", false},
		{"CS301 Marks", "", "", false},
		{"", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			code, suffix, ok := splitHeader(tt.header)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.code, code)
				assert.Equal(t, tt.suffix, suffix)
			}
		})
	}
}

func TestMatchesCodeShape(t *testing.T) {
	tests := []struct {
		label string
		want  bool
	}{
		{"CS301", true},
		{"18MAT11", false}, // leading digits, not letters-then-digits
		{"CS301A", true},
		{"Grand", false},
		{"", false},
		{"301", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, matchesCodeShape(tt.label), tt.label)
	}
}

func TestParseNumeric(t *testing.T) {
	v, ok := parseNumeric("1,234")
	require.True(t, ok)
	assert.Equal(t, 1234.0, v)

	_, ok = parseNumeric("AB")
	assert.False(t, ok)

	_, ok = parseNumeric("")
	assert.False(t, ok)

	assert.Equal(t, 0.0, numericOrZero("absent"))
	assert.Equal(t, 42.5, numericOrZero(" 42.5 "))
}
