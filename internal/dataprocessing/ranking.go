package dataprocessing

import (
	"sort"

	"marksight/pkg/contracts/domain"
)

// AssignRanks computes class-wide and per-section ranks in place. Only
// students whose active-mode result is Pass receive a rank; everyone
// else keeps nil. Ties share a rank and the next distinct value skips
// ahead by the tie-group size (competition ranking, "min" method).
func AssignRanks(records []*domain.StudentRecord, metric domain.RankMetric, mode domain.ResultMode) {
	for _, r := range records {
		r.ClassRank = nil
		r.SectionRank = nil
	}

	eligible := make([]*domain.StudentRecord, 0, len(records))
	for _, r := range records {
		if passedInMode(r, mode) {
			eligible = append(eligible, r)
		}
	}

	rankGroup(eligible, metric, func(r *domain.StudentRecord, rank int) {
		v := rank
		r.ClassRank = &v
	})

	bySection := make(map[string][]*domain.StudentRecord)
	for _, r := range eligible {
		bySection[r.Section] = append(bySection[r.Section], r)
	}
	for _, group := range bySection {
		rankGroup(group, metric, func(r *domain.StudentRecord, rank int) {
			v := rank
			r.SectionRank = &v
		})
	}
}

// rankGroup sorts one scope descending by metric and applies competition
// ranks: equal values share a rank, the next distinct value's rank is
// 1 + the count ranked strictly above it.
func rankGroup(group []*domain.StudentRecord, metric domain.RankMetric, set func(*domain.StudentRecord, int)) {
	sorted := make([]*domain.StudentRecord, len(group))
	copy(sorted, group)
	sort.SliceStable(sorted, func(i, j int) bool {
		vi, vj := sorted[i].RankedMetric(metric), sorted[j].RankedMetric(metric)
		if vi != vj {
			return vi > vj
		}
		return sorted[i].RowIndex < sorted[j].RowIndex
	})

	rank := 0
	prev := 0.0
	for i, r := range sorted {
		value := r.RankedMetric(metric)
		if i == 0 || value != prev {
			rank = i + 1
			prev = value
		}
		set(r, rank)
	}
}

// passedInMode reports whether a student passes under the active mode.
func passedInMode(r *domain.StudentRecord, mode domain.ResultMode) bool {
	if mode == domain.ModeSGPA {
		return r.SGPAResult != nil && *r.SGPAResult == domain.SubjectPass
	}
	return r.OverallResult == domain.ResultPass
}
