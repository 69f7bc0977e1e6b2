package dataprocessing

import (
	"sort"
	"strconv"
	"strings"

	"marksight/pkg/contracts/domain"
)

// AssignSection resolves a student identifier to a section name.
// Priority: exact (case/space-normalized) match in the explicit table,
// then numeric containment of the identifier's trailing digit run inside
// a range rule, then the "Unassigned" sentinel. Unmatched identifiers
// are not an error.
func AssignSection(studentID string, cfg domain.SectionConfig) string {
	normalized := normalizeID(studentID)

	if len(cfg.Explicit) > 0 {
		// Iterate in sorted key order so two entries that normalize to
		// the same identifier always resolve to the same section.
		ids := make([]string, 0, len(cfg.Explicit))
		for id := range cfg.Explicit {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		for _, id := range ids {
			if normalizeID(id) == normalized {
				return cfg.Explicit[id]
			}
		}
	}

	if n, ok := lastDigitRun(studentID); ok {
		// Range rules are evaluated in section-name order so the first
		// containing range is deterministic.
		names := make([]string, 0, len(cfg.Ranges))
		for name := range cfg.Ranges {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			r := cfg.Ranges[name]
			start, okStart := lastDigitRun(r.Start)
			end, okEnd := lastDigitRun(r.End)
			if !okStart || !okEnd {
				continue
			}
			if start > end {
				start, end = end, start
			}
			if n >= start && n <= end {
				return name
			}
		}
	}

	return domain.UnassignedSection
}

// normalizeID upper-cases an identifier and strips all whitespace.
func normalizeID(id string) string {
	return strings.ToUpper(strings.Join(strings.Fields(id), ""))
}

// lastDigitRun extracts the last contiguous run of digits in a string
// as an integer ("1RV21CS042" -> 42).
func lastDigitRun(s string) (int64, bool) {
	end := -1
	for i := len(s) - 1; i >= 0; i-- {
		if isDigit(s[i]) {
			end = i + 1
			break
		}
	}
	if end < 0 {
		return 0, false
	}
	start := end - 1
	for start > 0 && isDigit(s[start-1]) {
		start--
	}
	n, err := strconv.ParseInt(s[start:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
