package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"marksight/internal/dataprocessing"
	"marksight/pkg/contracts/domain"
)

// categorySheets maps result categories to workbook sheet names, in
// sheet order.
var categorySheets = []struct {
	category domain.Category
	sheet    string
}{
	{domain.CategoryFCD, "FCD"},
	{domain.CategoryFC, "First Class"},
	{domain.CategorySC, "Second Class"},
	{domain.CategoryPassClass, "Pass Class"},
	{domain.CategoryFail, "Failed"},
	{domain.CategoryAbsent, "Absent"},
}

const summarySheet = "Summary"

// WorkbookExporter builds the category workbook download.
type WorkbookExporter struct {
	logger *slog.Logger
}

// NewWorkbookExporter creates a new workbook exporter.
func NewWorkbookExporter(logger *slog.Logger) *WorkbookExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookExporter{logger: logger}
}

// WriteCategoryWorkbook writes one sheet per result category plus a
// summary sheet. Every sheet is present even when empty so readers can
// rely on the layout.
func (e *WorkbookExporter) WriteCategoryWorkbook(w io.Writer, result *dataprocessing.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := e.writeSummary(f, result.Report); err != nil {
		return err
	}

	byCategory := make(map[domain.Category][]*domain.StudentRecord)
	for _, record := range result.Records {
		byCategory[record.Category] = append(byCategory[record.Category], record)
	}

	for _, cs := range categorySheets {
		if _, err := f.NewSheet(cs.sheet); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", cs.sheet, err)
		}
		if err := e.writeCategorySheet(f, cs.sheet, cs.category, byCategory[cs.category]); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	e.logger.Info("category workbook exported",
		slog.Int("record_count", len(result.Records)),
		slog.Int("sheet_count", len(categorySheets)+1))

	return nil
}

func (e *WorkbookExporter) writeSummary(f *excelize.File, report *domain.ClassReport) error {
	rows := [][]interface{}{
		{"Total Students", report.KPI.TotalStudents},
		{"Present Students", report.KPI.PresentStudents},
		{"Passed Students", report.KPI.PassedStudents},
		{"Result Percent", report.KPI.ResultPercent},
		{},
		{"Section", "FCD", "First Class", "Second Class", "Pass Class", "Failed", "Absent", "Total", "Pass %"},
	}

	for _, b := range report.Sections {
		rows = append(rows, sectionRow(b))
	}
	rows = append(rows, sectionRow(report.Overall))

	if report.BestSection != "" {
		rows = append(rows, []interface{}{},
			[]interface{}{"Best Section", report.BestSection},
			[]interface{}{"Weakest Section", report.WeakestSection})
	}
	if report.HardestSubject != "" {
		rows = append(rows,
			[]interface{}{"Hardest Subject", report.HardestSubject},
			[]interface{}{"Easiest Subject", report.EasiestSubject})
	}

	return writeRows(f, summarySheet, rows)
}

func sectionRow(b domain.SectionBreakdown) []interface{} {
	return []interface{}{
		b.Section, b.FCD, b.FC, b.SC, b.PassClass, b.Failed, b.Absent, b.Total, b.PassPercent(),
	}
}

func (e *WorkbookExporter) writeCategorySheet(f *excelize.File, sheet string, category domain.Category, records []*domain.StudentRecord) error {
	headers := []interface{}{"Student ID", "Name", "Section", "Total Marks", "Percentage", "SGPA", "Class Rank"}
	if category == domain.CategoryFail {
		headers = append(headers, "Failed Subjects")
	}

	rows := [][]interface{}{headers}
	for _, r := range records {
		row := []interface{}{
			r.StudentID, r.Name, r.Section, r.TotalMarks, r.Percentage,
			formatFloatPtr(r.SGPA), formatIntPtr(r.ClassRank),
		}
		if category == domain.CategoryFail {
			row = append(row, strings.Join(r.FailedSubjectNames, "; "))
		}
		rows = append(rows, row)
	}

	return writeRows(f, sheet, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", i+1, err)
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("failed to write row %d on %s: %w", i+1, sheet, err)
		}
	}
	return nil
}
