package dataprocessing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marksight/pkg/contracts/domain"
)

func sampleDataset() domain.Dataset {
	columns := []string{
		"USN", "Name",
		"CS301 Internal", "CS301 External", "CS301 Total", "CS301 Result",
		"CS302 Internal", "CS302 External", "CS302 Total", "CS302 Result",
	}
	return domain.Dataset{
		ID:      "sem5-odd",
		Columns: columns,
		Rows: []domain.RawRow{
			row(map[string]string{
				"USN": "1RV21CS001", "Name": "Asha",
				"CS301 Internal": "25", "CS301 External": "65", "CS301 Total": "90", "CS301 Result": "P",
				"CS302 Internal": "24", "CS302 External": "66", "CS302 Total": "90", "CS302 Result": "P",
			}),
			row(map[string]string{
				"USN": "1RV21CS002", "Name": "Binod",
				"CS301 Internal": "20", "CS301 External": "70", "CS301 Total": "90", "CS301 Result": "P",
				"CS302 Internal": "22", "CS302 External": "68", "CS302 Total": "90", "CS302 Result": "P",
			}),
			row(map[string]string{
				"USN": "1RV21CS061", "Name": "Chitra",
				"CS301 Internal": "20", "CS301 External": "45", "CS301 Total": "65", "CS301 Result": "P",
				"CS302 Internal": "25", "CS302 External": "95", "CS302 Total": "120", "CS302 Result": "P",
			}),
			row(map[string]string{
				"USN": "1RV21CS003", "Name": "Divya",
				"CS301 Internal": "10", "CS301 External": "15", "CS301 Total": "25", "CS301 Result": "F",
				"CS302 Internal": "20", "CS302 External": "40", "CS302 Total": "60", "CS302 Result": "P",
			}),
			row(map[string]string{
				"USN": "1RV21CS004", "Name": "Esha",
				"CS301 Internal": "18", "CS301 External": "0", "CS301 Result": "A",
				"CS302 Internal": "15", "CS302 External": "0", "CS302 Result": "A",
			}),
		},
	}
}

func sampleSections() domain.SectionConfig {
	return domain.SectionConfig{
		Ranges: map[string]domain.SectionRange{
			"A": {Start: "1RV21CS001", End: "1RV21CS060"},
			"B": {Start: "1RV21CS061", End: "1RV21CS120"},
		},
	}
}

func TestPipelineRunEndToEnd(t *testing.T) {
	p := NewPipeline(nil)

	result, err := p.Run(context.Background(), sampleDataset(), Options{Sections: sampleSections()})
	require.NoError(t, err)

	require.Len(t, result.Records, 5)
	assert.Equal(t, []string{"CS301", "CS302"}, result.Schema.Codes)

	byID := make(map[string]*domain.StudentRecord)
	for _, r := range result.Records {
		byID[r.StudentID] = r
	}

	asha := byID["1RV21CS001"]
	require.NotNil(t, asha)
	assert.Equal(t, "Asha", asha.Name)
	assert.Equal(t, "A", asha.Section)
	assert.Equal(t, domain.ResultPass, asha.OverallResult)
	assert.Equal(t, 180.0, asha.TotalMarks)
	assert.Equal(t, 90.0, asha.Percentage)
	assert.Equal(t, domain.CategoryFCD, asha.Category)

	// 90, 90, 92.5 averaged totals: Chitra's 185 leads the class.
	chitra := byID["1RV21CS061"]
	assert.Equal(t, "B", chitra.Section)
	require.NotNil(t, chitra.ClassRank)
	assert.Equal(t, 1, *chitra.ClassRank)
	assert.Equal(t, 1, *chitra.SectionRank)

	require.NotNil(t, asha.ClassRank)
	assert.Equal(t, 2, *asha.ClassRank, "180 ties rank 2 after Chitra")
	assert.Equal(t, 2, *byID["1RV21CS002"].ClassRank)

	divya := byID["1RV21CS003"]
	assert.Equal(t, domain.ResultFail, divya.OverallResult)
	assert.Equal(t, 1, divya.FailedSubjectCount)
	assert.Equal(t, []string{"CS301"}, divya.FailedSubjectNames)
	assert.Nil(t, divya.ClassRank)

	esha := byID["1RV21CS004"]
	assert.Equal(t, domain.ResultAbsent, esha.OverallResult)
	assert.Equal(t, 2, esha.AbsentSubjectCount)
	assert.Equal(t, domain.CategoryAbsent, esha.Category)

	require.NotNil(t, result.Report)
	assert.Equal(t, 5, result.Report.KPI.TotalStudents)
	assert.Equal(t, 4, result.Report.KPI.PresentStudents)
	assert.Equal(t, 3, result.Report.KPI.PassedStudents)
}

func TestPipelineRunDeterministic(t *testing.T) {
	p := NewPipeline(nil)
	opts := Options{Sections: sampleSections()}

	first, err := p.Run(context.Background(), sampleDataset(), opts)
	require.NoError(t, err)
	second, err := p.Run(context.Background(), sampleDataset(), opts)
	require.NoError(t, err)

	require.Equal(t, len(first.Records), len(second.Records))
	for i := range first.Records {
		assert.Equal(t, *first.Records[i], *second.Records[i])
	}
	assert.Equal(t, first.Report, second.Report)
}

func TestPipelineRunSubjectFilter(t *testing.T) {
	p := NewPipeline(nil)

	result, err := p.Run(context.Background(), sampleDataset(), Options{Subjects: []string{"CS302"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"CS302"}, result.Schema.Codes)
	for _, r := range result.Records {
		assert.NotContains(t, r.Subjects, "CS301")
	}

	// Divya passes CS302, so the filtered run passes her outright.
	byID := make(map[string]*domain.StudentRecord)
	for _, r := range result.Records {
		byID[r.StudentID] = r
	}
	assert.Equal(t, domain.ResultPass, byID["1RV21CS003"].OverallResult)
}

func TestPipelineRunSGPA(t *testing.T) {
	p := NewPipeline(nil)
	credits := domain.CreditConfig{"CS301": 4, "CS302": 3}

	result, err := p.Run(context.Background(), sampleDataset(), Options{
		Sections: sampleSections(),
		Credits:  credits,
		Metric:   domain.MetricSGPA,
		Mode:     domain.ModeSGPA,
	})
	require.NoError(t, err)

	byID := make(map[string]*domain.StudentRecord)
	for _, r := range result.Records {
		byID[r.StudentID] = r
	}

	asha := byID["1RV21CS001"]
	require.NotNil(t, asha.SGPA)
	// Both totals are 90 -> 10 points each.
	assert.Equal(t, 10.0, *asha.SGPA)
	require.NotNil(t, asha.SGPAResult)
	assert.Equal(t, domain.SubjectPass, *asha.SGPAResult)

	divya := byID["1RV21CS003"]
	require.NotNil(t, divya.SGPA)
	assert.Nil(t, divya.ClassRank, "fail stays unranked in SGPA mode")
}

func TestPipelineRunSGPAModeFallsBackWithoutCredits(t *testing.T) {
	p := NewPipeline(nil)

	result, err := p.Run(context.Background(), sampleDataset(), Options{
		Credits: domain.CreditConfig{"CS301": 0},
		Mode:    domain.ModeSGPA,
	})
	require.NoError(t, err)

	require.Len(t, result.Warnings, 2)
	assert.Contains(t, result.Warnings[0], "credit")
	for _, r := range result.Records {
		assert.Nil(t, r.SGPA)
	}
	assert.Equal(t, domain.ModeMarks, result.Report.Mode)
}

func TestPipelineRunEmptyDataset(t *testing.T) {
	p := NewPipeline(nil)

	result, err := p.Run(context.Background(), domain.Dataset{ID: "empty"}, Options{})
	require.NoError(t, err)

	assert.Empty(t, result.Schema.Codes)
	assert.Empty(t, result.Records)
	require.NotNil(t, result.Report)
	assert.Zero(t, result.Report.KPI.TotalStudents)
}
