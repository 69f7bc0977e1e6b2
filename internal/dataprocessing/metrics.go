package dataprocessing

import (
	"math"

	"marksight/internal/config"
	"marksight/pkg/contracts/domain"
)

// Metrics holds the per-student mark aggregates.
type Metrics struct {
	TotalMarks    float64
	TotalInternal float64
	TotalExternal float64
	Percentage    float64
	Attempted     int
}

// ComputeMetrics sums marks across all detected subjects and derives the
// attempted-only percentage. A subject counts as attempted when its Total
// is a positive number; a student attempting nothing gets 0.0 percent.
func ComputeMetrics(subjects map[string]domain.SubjectOutcome) Metrics {
	var m Metrics
	for _, outcome := range subjects {
		m.TotalMarks += outcome.Total
		m.TotalInternal += outcome.Internal
		m.TotalExternal += outcome.External
		if outcome.Total > 0 {
			m.Attempted++
		}
	}

	if m.Attempted > 0 {
		m.Percentage = round2(m.TotalMarks / (float64(m.Attempted) * config.MaxSubjectMarks) * 100)
	}

	return m
}

// Categorize assigns the VTU category. Only passing students get a
// percentage tier; others carry their result code.
func Categorize(result domain.OverallResult, percentage float64) domain.Category {
	switch result {
	case domain.ResultAbsent:
		return domain.CategoryAbsent
	case domain.ResultFail:
		return domain.CategoryFail
	}

	switch {
	case percentage >= config.CategoryFCDThreshold:
		return domain.CategoryFCD
	case percentage >= config.CategoryFCThreshold:
		return domain.CategoryFC
	case percentage >= config.CategorySCThreshold:
		return domain.CategorySC
	default:
		return domain.CategoryPassClass
	}
}

// round2 rounds to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
