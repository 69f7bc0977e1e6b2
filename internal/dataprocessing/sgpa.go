package dataprocessing

import (
	"strings"

	"marksight/internal/config"
	"marksight/pkg/contracts/domain"
)

// ErrNoCreditedSubjects rejects SGPA computation when the credit
// configuration carries no positive weights. Surfaced to the caller as a
// warning, never as a pipeline failure.
var ErrNoCreditedSubjects = &CreditConfigError{Message: "credit configuration has no positive weights"}

// CreditConfigError describes an unusable credit configuration.
type CreditConfigError struct {
	Message string
}

func (e *CreditConfigError) Error() string { return e.Message }

// ComputeSGPA derives the credit-weighted grade-point average over the
// credited subjects of one student and the SGPA-mode result label.
//
// The returned result label mirrors the marks-mode overall result:
// Absent stays Absent, Fail stays Fail, Pass stays Pass. The per-subject
// fail flag computed here decides only when the overall result is
// inconclusive, so a marks-mode Pass is reported Pass even when a
// credited subject's flag was set.
func ComputeSGPA(
	subjects map[string]domain.SubjectOutcome,
	schema domain.SubjectSchema,
	credits domain.CreditConfig,
	overall domain.OverallResult,
) (float64, domain.SubjectStatus, error) {
	if credits.TotalCredits() == 0 {
		return 0, "", ErrNoCreditedSubjects
	}

	var weightedPoints float64
	var totalCredits int
	anyFailFlag := false

	for code, credit := range credits {
		if credit <= 0 {
			continue
		}
		outcome, ok := subjects[code]
		if !ok {
			continue
		}

		score := resolveScore(code, outcome, schema)
		if subjectFailFlag(outcome.ResultRaw, score) {
			anyFailFlag = true
		}

		weightedPoints += config.GradePoints(score) * float64(credit)
		totalCredits += credit
	}

	sgpa := 0.0
	if totalCredits > 0 {
		sgpa = round2(weightedPoints / float64(totalCredits))
	}

	return sgpa, reconcileResult(overall, anyFailFlag), nil
}

// resolveScore picks the score for a credited subject: the Total column
// when the sheet has one, else internal+external when both columns
// exist, else whichever half is nonzero.
func resolveScore(code string, outcome domain.SubjectOutcome, schema domain.SubjectSchema) float64 {
	if schema.HasColumn(code, domain.SuffixTotal) {
		return outcome.Total
	}

	hasInternal := schema.HasColumn(code, domain.SuffixInternal)
	hasExternal := schema.HasColumn(code, domain.SuffixExternal)
	switch {
	case hasInternal && hasExternal:
		return outcome.Internal + outcome.External
	case outcome.Internal != 0:
		return outcome.Internal
	case outcome.External != 0:
		return outcome.External
	default:
		return 0
	}
}

// subjectFailFlag trusts the Result text first; only when the text is
// absent or unrecognized does the score threshold decide.
func subjectFailFlag(resultRaw string, score float64) bool {
	switch strings.ToUpper(strings.TrimSpace(resultRaw)) {
	case "P", "PASS":
		return false
	case "F", "FAIL", "A", "ABSENT":
		return true
	default:
		return score < config.SubjectPassMark
	}
}

// reconcileResult forces the SGPA-mode label to follow the marks-mode
// overall result; the fail flag applies only to an unrecognized overall.
func reconcileResult(overall domain.OverallResult, failFlag bool) domain.SubjectStatus {
	switch overall {
	case domain.ResultAbsent:
		return domain.SubjectAbsent
	case domain.ResultFail:
		return domain.SubjectFail
	case domain.ResultPass:
		return domain.SubjectPass
	default:
		if failFlag {
			return domain.SubjectFail
		}
		return domain.SubjectPass
	}
}
