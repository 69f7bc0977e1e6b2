package dataprocessing

import (
	"strings"

	"marksight/internal/config"
	"marksight/pkg/contracts/domain"
)

// ClassifySubject computes the Pass/Fail/Absent status of a single
// subject from its raw marks and result text.
//
// An empty result cell counts as absent only when the external mark is
// also zero; with marks on the sheet it instead falls back to the
// absolute pass threshold.
func ClassifySubject(m domain.SubjectMarks) domain.SubjectStatus {
	result := strings.ToUpper(strings.TrimSpace(m.ResultRaw))

	if m.External == 0 && (result == "A" || result == "ABSENT" || result == "") {
		return domain.SubjectAbsent
	}

	switch result {
	case "F", "FAIL":
		return domain.SubjectFail
	case "":
		if m.Internal+m.External < config.SubjectPassMark {
			return domain.SubjectFail
		}
	}

	return domain.SubjectPass
}

// AggregateResult reduces a student's subject statuses to the overall
// result code. A student with no subjects passes; a student absent in
// every subject is absent; any single failure or absence among attempted
// subjects fails the student.
func AggregateResult(statuses []domain.SubjectStatus) domain.OverallResult {
	if len(statuses) == 0 {
		return domain.ResultPass
	}

	absent := 0
	failedOrAbsent := 0
	for _, status := range statuses {
		switch status {
		case domain.SubjectAbsent:
			absent++
			failedOrAbsent++
		case domain.SubjectFail:
			failedOrAbsent++
		}
	}

	if absent == len(statuses) {
		return domain.ResultAbsent
	}
	if failedOrAbsent > 0 {
		return domain.ResultFail
	}
	return domain.ResultPass
}
