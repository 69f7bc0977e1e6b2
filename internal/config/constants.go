package config

// Application constants for the marksight result engine.
const (
	AppName    = "marksight"
	AppVersion = "1.0.0"

	// SubjectPassMark is the absolute pass threshold used as the
	// textual-result fallback when a Result cell is empty. Independent
	// from the category thresholds below; do not unify them.
	SubjectPassMark = 35.0

	// MaxSubjectMarks is the per-subject full-mark denominator used for
	// attempted-only percentage computation.
	MaxSubjectMarks = 100.0

	// Category thresholds over attempted-only percentage.
	CategoryFCDThreshold = 70.0
	CategoryFCThreshold  = 60.0
	CategorySCThreshold  = 50.0

	// Credit weights outside [MinCreditWeight, MaxCreditWeight] are
	// rejected at the configuration boundary.
	MinCreditWeight = 0
	MaxCreditWeight = 4

	// TopListSize bounds the report's top/bottom student lists.
	TopListSize = 5

	// DefaultSnapshotCacheSize bounds the derived-snapshot LRU cache.
	DefaultSnapshotCacheSize = 32

	// Rate limiting defaults.
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50
)

// SGPA grade-point bands, highest first. Score is the resolved subject
// score on a 0-100 scale.
type GradeBand struct {
	MinScore float64
	Points   float64
}

// GradeBands is the VTU grade-point table: [90,100] -> 10 down to
// [40,50) -> 4, anything below 40 -> 0.
var GradeBands = []GradeBand{
	{MinScore: 90, Points: 10},
	{MinScore: 80, Points: 9},
	{MinScore: 70, Points: 8},
	{MinScore: 60, Points: 7},
	{MinScore: 55, Points: 6},
	{MinScore: 50, Points: 5},
	{MinScore: 40, Points: 4},
}

// GradePoints resolves a score to its grade points.
func GradePoints(score float64) float64 {
	for _, band := range GradeBands {
		if score >= band.MinScore {
			return band.Points
		}
	}
	return 0
}
