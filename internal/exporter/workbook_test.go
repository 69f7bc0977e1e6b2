package exporter

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"marksight/pkg/contracts/domain"
)

func TestWriteCategoryWorkbook(t *testing.T) {
	result := exportFixture()
	result.Report = &domain.ClassReport{
		KPI: domain.KPISummary{TotalStudents: 2, PresentStudents: 2, PassedStudents: 1, ResultPercent: 50},
		Sections: []domain.SectionBreakdown{
			{Section: "A", FCD: 1, Failed: 1, Total: 2},
		},
		Overall:        domain.SectionBreakdown{Section: "Overall", FCD: 1, Failed: 1, Total: 2},
		BestSection:    "A",
		WeakestSection: "A",
	}

	var buf bytes.Buffer
	err := NewWorkbookExporter(nil).WriteCategoryWorkbook(&buf, result)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Equal(t, []string{"Summary", "FCD", "First Class", "Second Class", "Pass Class", "Failed", "Absent"}, sheets)

	fcd, err := f.GetRows("FCD")
	require.NoError(t, err)
	require.Len(t, fcd, 2, "header plus one FCD student")
	assert.Equal(t, "1RV21CS001", fcd[1][0])

	failed, err := f.GetRows("Failed")
	require.NoError(t, err)
	require.Len(t, failed, 2)
	assert.Equal(t, "Failed Subjects", failed[0][len(failed[0])-1])
	assert.Equal(t, "CS301; CS302", failed[1][len(failed[1])-1])

	absent, err := f.GetRows("Absent")
	require.NoError(t, err)
	require.Len(t, absent, 1, "empty category keeps its header")

	summary, err := f.GetRows("Summary")
	require.NoError(t, err)
	assert.Equal(t, "Total Students", summary[0][0])
	assert.Equal(t, "2", summary[0][1])
}
