package dataprocessing

import (
	"sort"

	"marksight/internal/config"
	"marksight/pkg/contracts/domain"
)

// BuildReport produces the per-section and overall category breakdowns,
// the KPI summary, top/bottom lists, per-section toppers, subject
// difficulty table and section intelligence for one ranked record set.
func BuildReport(records []*domain.StudentRecord, schema domain.SubjectSchema, metric domain.RankMetric, mode domain.ResultMode) *domain.ClassReport {
	report := &domain.ClassReport{
		Metric:  metric,
		Mode:    mode,
		Toppers: make(map[string]domain.RankedStudent),
	}

	bySection := make(map[string]*domain.SectionBreakdown)
	overall := domain.SectionBreakdown{Section: "Overall"}

	for _, r := range records {
		b := bySection[r.Section]
		if b == nil {
			b = &domain.SectionBreakdown{Section: r.Section}
			bySection[r.Section] = b
		}
		tally(b, r)
		tally(&overall, r)
	}

	sections := make([]domain.SectionBreakdown, 0, len(bySection))
	for _, b := range bySection {
		sections = append(sections, *b)
	}
	sort.Slice(sections, func(i, j int) bool { return sections[i].Section < sections[j].Section })
	report.Sections = sections
	report.Overall = overall

	report.KPI = buildKPI(records)
	report.Top = topStudents(records, metric, config.TopListSize, true)
	report.Bottom = topStudents(records, metric, config.TopListSize, false)
	report.Toppers = sectionToppers(records, metric)
	report.Subjects = subjectDifficulty(records, schema)
	report.HardestSubject, report.EasiestSubject = extremeSubjects(report.Subjects)
	report.BestSection, report.WeakestSection = extremeSections(sections)

	return report
}

// tally adds one student to a breakdown bucket.
func tally(b *domain.SectionBreakdown, r *domain.StudentRecord) {
	b.Total++
	switch r.Category {
	case domain.CategoryFCD:
		b.FCD++
	case domain.CategoryFC:
		b.FC++
	case domain.CategorySC:
		b.SC++
	case domain.CategoryPassClass:
		b.PassClass++
	case domain.CategoryAbsent:
		b.Absent++
	default:
		b.Failed++
	}
}

// buildKPI derives the headline numbers. Present counts students who
// attempted at least one subject.
func buildKPI(records []*domain.StudentRecord) domain.KPISummary {
	kpi := domain.KPISummary{TotalStudents: len(records)}
	for _, r := range records {
		if r.OverallResult != domain.ResultAbsent {
			kpi.PresentStudents++
		}
		if r.OverallResult == domain.ResultPass {
			kpi.PassedStudents++
		}
	}
	if kpi.TotalStudents > 0 {
		kpi.ResultPercent = round2(float64(kpi.PassedStudents) / float64(kpi.TotalStudents) * 100)
	}
	return kpi
}

// topStudents returns the n best (or worst) students by metric, ties
// broken by original row order.
func topStudents(records []*domain.StudentRecord, metric domain.RankMetric, n int, best bool) []domain.RankedStudent {
	sorted := make([]*domain.StudentRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		vi, vj := sorted[i].RankedMetric(metric), sorted[j].RankedMetric(metric)
		if vi != vj {
			if best {
				return vi > vj
			}
			return vi < vj
		}
		return sorted[i].RowIndex < sorted[j].RowIndex
	})

	if n > len(sorted) {
		n = len(sorted)
	}
	list := make([]domain.RankedStudent, 0, n)
	for _, r := range sorted[:n] {
		list = append(list, domain.RankedStudent{
			StudentID: r.StudentID,
			Name:      r.Name,
			Section:   r.Section,
			Value:     r.RankedMetric(metric),
		})
	}
	return list
}

// sectionToppers picks the single best student of each section.
func sectionToppers(records []*domain.StudentRecord, metric domain.RankMetric) map[string]domain.RankedStudent {
	toppers := make(map[string]domain.RankedStudent)
	best := make(map[string]*domain.StudentRecord)

	for _, r := range records {
		cur, ok := best[r.Section]
		if !ok || r.RankedMetric(metric) > cur.RankedMetric(metric) {
			best[r.Section] = r
		}
	}
	for section, r := range best {
		toppers[section] = domain.RankedStudent{
			StudentID: r.StudentID,
			Name:      r.Name,
			Section:   section,
			Value:     r.RankedMetric(metric),
		}
	}
	return toppers
}

// subjectDifficulty tallies per-subject outcomes across all students.
// Attempted counts non-absent statuses; fail rate is failed over attempted.
func subjectDifficulty(records []*domain.StudentRecord, schema domain.SubjectSchema) []domain.SubjectDifficulty {
	stats := make([]domain.SubjectDifficulty, 0, len(schema.Codes))
	for _, code := range schema.Codes {
		d := domain.SubjectDifficulty{Code: code}
		for _, r := range records {
			outcome, ok := r.Subjects[code]
			if !ok {
				continue
			}
			switch outcome.Status {
			case domain.SubjectAbsent:
				d.Absent++
			case domain.SubjectFail:
				d.Failed++
				d.Attempted++
			default:
				d.Passed++
				d.Attempted++
			}
		}
		if d.Attempted > 0 {
			d.FailRate = round2(float64(d.Failed) / float64(d.Attempted))
		}
		stats = append(stats, d)
	}
	return stats
}

// extremeSubjects names the hardest (highest fail rate) and easiest
// (lowest) subjects; ties resolve to the first code in sorted order.
func extremeSubjects(stats []domain.SubjectDifficulty) (hardest, easiest string) {
	for _, d := range stats {
		if d.Attempted == 0 {
			continue
		}
		if hardest == "" || d.FailRate > failRateOf(stats, hardest) {
			hardest = d.Code
		}
		if easiest == "" || d.FailRate < failRateOf(stats, easiest) {
			easiest = d.Code
		}
	}
	return hardest, easiest
}

func failRateOf(stats []domain.SubjectDifficulty, code string) float64 {
	for _, d := range stats {
		if d.Code == code {
			return d.FailRate
		}
	}
	return 0
}

// extremeSections names the best and weakest sections by pass percent.
func extremeSections(sections []domain.SectionBreakdown) (best, weakest string) {
	for _, b := range sections {
		if b.Total == 0 {
			continue
		}
		if best == "" || b.PassPercent() > passPercentOf(sections, best) {
			best = b.Section
		}
		if weakest == "" || b.PassPercent() < passPercentOf(sections, weakest) {
			weakest = b.Section
		}
	}
	return best, weakest
}

func passPercentOf(sections []domain.SectionBreakdown, name string) float64 {
	for _, b := range sections {
		if b.Section == name {
			return b.PassPercent()
		}
	}
	return 0
}
