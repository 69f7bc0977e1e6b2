package domain

// SectionBreakdown is the per-section category tally. Counts follow the
// percentage tiers for passing students plus Failed/Absent buckets.
type SectionBreakdown struct {
	Section   string `json:"section"`
	FCD       int    `json:"fcd"`
	FC        int    `json:"fc"`
	SC        int    `json:"sc"`
	PassClass int    `json:"pass_class"`
	Failed    int    `json:"failed"`
	Absent    int    `json:"absent"`
	Total     int    `json:"total"`
}

// PassPercent returns the section pass rate over its total strength.
func (b SectionBreakdown) PassPercent() float64 {
	if b.Total == 0 {
		return 0
	}
	passed := b.FCD + b.FC + b.SC + b.PassClass
	return float64(passed) / float64(b.Total) * 100
}

// RankedStudent is a compact (student, metric value) pair for top/bottom
// lists and toppers.
type RankedStudent struct {
	StudentID string  `json:"student_id"`
	Name      string  `json:"name,omitempty"`
	Section   string  `json:"section"`
	Value     float64 `json:"value"`
}

// SubjectDifficulty is the per-subject outcome distribution.
type SubjectDifficulty struct {
	Code      string  `json:"code"`
	Attempted int     `json:"attempted"`
	Passed    int     `json:"passed"`
	Failed    int     `json:"failed"`
	Absent    int     `json:"absent"`
	FailRate  float64 `json:"fail_rate"`
}

// KPISummary is the headline dashboard numbers.
type KPISummary struct {
	TotalStudents   int     `json:"total_students"`
	PresentStudents int     `json:"present_students"`
	PassedStudents  int     `json:"passed_students"`
	ResultPercent   float64 `json:"result_percent"`
}

// ClassReport is the Report Aggregator output: per-section and overall
// category breakdowns plus derived lists.
type ClassReport struct {
	Metric   RankMetric `json:"metric"`
	Mode     ResultMode `json:"mode"`
	KPI      KPISummary `json:"kpi"`

	Sections []SectionBreakdown `json:"sections"`
	Overall  SectionBreakdown   `json:"overall"`

	Top     []RankedStudent          `json:"top"`
	Bottom  []RankedStudent          `json:"bottom"`
	Toppers map[string]RankedStudent `json:"toppers"`

	Subjects       []SubjectDifficulty `json:"subjects"`
	HardestSubject string              `json:"hardest_subject,omitempty"`
	EasiestSubject string              `json:"easiest_subject,omitempty"`

	BestSection    string `json:"best_section,omitempty"`
	WeakestSection string `json:"weakest_section,omitempty"`
}
