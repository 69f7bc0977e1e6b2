package domain

// SubjectStatus is the per-subject classification outcome.
type SubjectStatus string

const (
	SubjectPass   SubjectStatus = "Pass"
	SubjectFail   SubjectStatus = "Fail"
	SubjectAbsent SubjectStatus = "Absent"
)

// OverallResult is the per-student aggregate of all subject statuses.
type OverallResult string

const (
	ResultPass   OverallResult = "P"
	ResultFail   OverallResult = "F"
	ResultAbsent OverallResult = "A"
)

// Category is the VTU performance tier. Passing students get a
// percentage-derived tier; non-passing students carry their result code.
type Category string

const (
	CategoryFCD       Category = "FCD"
	CategoryFC        Category = "FC"
	CategorySC        Category = "SC"
	CategoryPassClass Category = "Pass Class"
	CategoryFail      Category = "F"
	CategoryAbsent    Category = "A"
)

// SubjectOutcome is a student's normalized standing in one subject.
type SubjectOutcome struct {
	Internal  float64       `json:"internal"`
	External  float64       `json:"external"`
	Total     float64       `json:"total"`
	ResultRaw string        `json:"result_raw"`
	Status    SubjectStatus `json:"status"`
}

// StudentRecord is the engine output for one input row.
type StudentRecord struct {
	StudentID string                    `json:"student_id"`
	Name      string                    `json:"name,omitempty"`
	Section   string                    `json:"section"`
	Subjects  map[string]SubjectOutcome `json:"subjects"`

	OverallResult      OverallResult `json:"overall_result"`
	AbsentSubjectCount int           `json:"absent_subject_count"`
	FailedSubjectCount int           `json:"failed_subject_count"`
	FailedSubjectNames []string      `json:"failed_subject_names,omitempty"`

	TotalMarks    float64  `json:"total_marks"`
	TotalInternal float64  `json:"total_internal"`
	TotalExternal float64  `json:"total_external"`
	Percentage    float64  `json:"percentage"`
	Category      Category `json:"category"`

	SGPA       *float64       `json:"sgpa,omitempty"`
	SGPAResult *SubjectStatus `json:"sgpa_result,omitempty"`

	ClassRank   *int `json:"class_rank,omitempty"`
	SectionRank *int `json:"section_rank,omitempty"`

	// RowIndex preserves original sheet order for deterministic tie breaks.
	RowIndex int `json:"-"`
}

// Passed reports whether the student passed under marks mode.
func (r *StudentRecord) Passed() bool {
	return r.OverallResult == ResultPass
}

// RankedMetric returns the record's value for a rank metric.
func (r *StudentRecord) RankedMetric(metric RankMetric) float64 {
	switch metric {
	case MetricTotalInternal:
		return r.TotalInternal
	case MetricTotalExternal:
		return r.TotalExternal
	case MetricSGPA:
		if r.SGPA != nil {
			return *r.SGPA
		}
		return 0
	default:
		return r.TotalMarks
	}
}
