package domain

// UnassignedSection is the sentinel section for identifiers no rule matches.
const UnassignedSection = "Unassigned"

// SectionRange is a numeric-range rule: any identifier whose trailing
// digit run falls inside [Start, End] (compared by their own trailing
// digit runs) belongs to the section.
type SectionRange struct {
	Start string `json:"start" validate:"required"`
	End   string `json:"end" validate:"required"`
}

// SectionConfig resolves student identifiers to sections. Explicit
// entries always win over range rules.
type SectionConfig struct {
	Ranges   map[string]SectionRange `json:"ranges,omitempty" validate:"dive"`
	Explicit map[string]string       `json:"explicit,omitempty"`
}

// IsZero reports whether no rules are configured at all.
func (c SectionConfig) IsZero() bool {
	return len(c.Ranges) == 0 && len(c.Explicit) == 0
}

// CreditConfig maps subject codes to credit weights. Subjects with
// weight 0 are excluded from SGPA.
type CreditConfig map[string]int

// TotalCredits sums the positive weights.
func (c CreditConfig) TotalCredits() int {
	total := 0
	for _, credit := range c {
		if credit > 0 {
			total += credit
		}
	}
	return total
}

// RankMetric selects the value students are ranked on.
type RankMetric string

const (
	MetricTotalMarks    RankMetric = "total_marks"
	MetricTotalInternal RankMetric = "total_internal"
	MetricTotalExternal RankMetric = "total_external"
	MetricSGPA          RankMetric = "sgpa"
)

// ResultMode selects which pass/fail classification gates ranking.
type ResultMode string

const (
	ModeMarks ResultMode = "marks"
	ModeSGPA  ResultMode = "sgpa"
)

// ParseRankMetric maps a query value to a RankMetric, defaulting to
// total marks for unknown input.
func ParseRankMetric(s string) RankMetric {
	switch RankMetric(s) {
	case MetricTotalInternal, MetricTotalExternal, MetricSGPA:
		return RankMetric(s)
	default:
		return MetricTotalMarks
	}
}

// ParseResultMode maps a query value to a ResultMode, defaulting to marks.
func ParseResultMode(s string) ResultMode {
	if ResultMode(s) == ModeSGPA {
		return ModeSGPA
	}
	return ModeMarks
}
