// Package exporter renders result snapshots into downloadable files.
//
// CSVExporter writes the flat student-record table with a UTF-8 BOM for
// Excel compatibility. WorkbookExporter builds the category workbook:
// one sheet per result category plus a summary sheet, with the Failed
// sheet carrying the failed-subject names.
package exporter
