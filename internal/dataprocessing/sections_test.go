package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marksight/pkg/contracts/domain"
)

func TestAssignSectionExplicitWinsOverRanges(t *testing.T) {
	cfg := domain.SectionConfig{
		Ranges: map[string]domain.SectionRange{
			"A": {Start: "1RV21CS001", End: "1RV21CS060"},
		},
		Explicit: map[string]string{
			"1rv21cs 042": "C",
		},
	}

	assert.Equal(t, "C", AssignSection("1RV21CS042", cfg), "explicit mapping has priority")
	assert.Equal(t, "A", AssignSection("1RV21CS041", cfg))
}

func TestAssignSectionExplicitDuplicateKeysDeterministic(t *testing.T) {
	// Two distinct keys normalize to the same identifier; the sorted
	// first key must win on every call.
	cfg := domain.SectionConfig{
		Explicit: map[string]string{
			"1RV21CS042": "B",
			"1rv21cs042": "C",
		},
	}

	for i := 0; i < 50; i++ {
		assert.Equal(t, "B", AssignSection("1RV21CS042", cfg))
	}
}

func TestAssignSectionRangeContainment(t *testing.T) {
	cfg := domain.SectionConfig{
		Ranges: map[string]domain.SectionRange{
			"A": {Start: "1RV21CS001", End: "1RV21CS060"},
			"B": {Start: "1RV21CS061", End: "1RV21CS120"},
		},
	}

	tests := []struct {
		id   string
		want string
	}{
		{"1RV21CS001", "A"},
		{"1RV21CS060", "A"},
		{"1RV21CS061", "B"},
		{"1RV21CS120", "B"},
		{"1RV21CS121", domain.UnassignedSection},
		{"NO-DIGITS", domain.UnassignedSection},
		{"", domain.UnassignedSection},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, AssignSection(tt.id, cfg), tt.id)
	}
}

func TestAssignSectionReversedBounds(t *testing.T) {
	cfg := domain.SectionConfig{
		Ranges: map[string]domain.SectionRange{
			"A": {Start: "60", End: "1"},
		},
	}

	assert.Equal(t, "A", AssignSection("STU030", cfg))
}

func TestAssignSectionNoConfig(t *testing.T) {
	assert.Equal(t, domain.UnassignedSection, AssignSection("1RV21CS001", domain.SectionConfig{}))
}

func TestLastDigitRun(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"1RV21CS042", 42, true},
		{"STU-007", 7, true},
		{"123", 123, true},
		{"A1B2C3", 3, true},
		{"ABC", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		n, ok := lastDigitRun(tt.in)
		require.Equal(t, tt.ok, ok, tt.in)
		if ok {
			assert.Equal(t, tt.want, n, tt.in)
		}
	}
}
