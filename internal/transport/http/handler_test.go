package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apierrors "marksight/internal/errors"
	"marksight/internal/services"
	"marksight/internal/validation"
	"marksight/pkg/contracts/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestRouter wires the real results service behind the full API router.
func newTestRouter(t *testing.T) (chi.Router, *services.ResultsService) {
	t.Helper()

	logger := testLogger()
	svc := services.NewResultsServiceWithLogger(nil, logger)
	errorHandler := apierrors.NewErrorHandler(logger, false)
	configValidator := validation.NewConfigValidator(logger)
	health := services.NewHealthService("test", "now", svc, logger)

	router := NewRouter(Handlers{
		Dataset: NewDatasetHandler(svc, configValidator, logger, errorHandler, 1<<20),
		Results: NewResultsHandler(svc, logger, errorHandler),
		Export:  NewExportHandler(svc, logger, errorHandler),
		Health:  NewHealthHandler(health, logger),
		Errors:  errorHandler,
	})

	return router, svc
}

func loadFixture(t *testing.T, svc *services.ResultsService) {
	t.Helper()

	columns := []string{"USN", "Name", "CS301 Internal", "CS301 External", "CS301 Total", "CS301 Result"}
	rows := []domain.RawRow{
		{Cells: map[string]string{
			"USN": "1RV21CS001", "Name": "Asha",
			"CS301 Internal": "25", "CS301 External": "65", "CS301 Total": "90", "CS301 Result": "P",
		}},
		{Cells: map[string]string{
			"USN": "1RV21CS002", "Name": "Binod",
			"CS301 Internal": "10", "CS301 External": "15", "CS301 Total": "25", "CS301 Result": "F",
		}},
	}

	_, err := svc.LoadRows(context.Background(), columns, rows)
	require.NoError(t, err)
}

func TestUploadDatasetJSONRows(t *testing.T) {
	router, _ := newTestRouter(t)

	body, err := json.Marshal(map[string]interface{}{
		"columns": []string{"USN", "Name", "CS301 Total", "CS301 Result"},
		"rows": []map[string]interface{}{
			{"cells": map[string]string{"USN": "101", "Name": "Asha", "CS301 Total": "80", "CS301 Result": "P"}},
		},
	})
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodPost, "/api/dataset", bytes.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, r)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Status string               `json:"status"`
		Data   services.DatasetMeta `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, 1, resp.Data.Rows)
	assert.Equal(t, []string{"CS301"}, resp.Data.Subjects)
}

func TestUploadDatasetMultipartCSV(t *testing.T) {
	router, _ := newTestRouter(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "marks.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("USN,Name,CS301 Total,CS301 Result\n101,Asha,80,P\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/api/dataset", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, r)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "CS301")
}

func TestUploadDatasetUnsupportedExtension(t *testing.T) {
	router, _ := newTestRouter(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "marks.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("not a spreadsheet"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/api/dataset", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNSUPPORTED_UPLOAD")
}

func TestGetDatasetMetaWithoutDataset(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dataset", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "NO_DATASET")
}

func TestPutSections(t *testing.T) {
	router, svc := newTestRouter(t)
	loadFixture(t, svc)

	body := `{"explicit":{"1RV21CS001":"A","1RV21CS002":"B"}}`
	r := httptest.NewRequest(http.MethodPut, "/api/config/sections", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, r)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	record, err := svc.Result(context.Background(), "1RV21CS001", services.QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, "A", record.Section)
}

func TestPutSectionsRejectsInvalidConfig(t *testing.T) {
	router, _ := newTestRouter(t)

	body := `{"ranges":{"A":{"start":"1RV21CS001"}}}`
	r := httptest.NewRequest(http.MethodPut, "/api/config/sections", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPutCredits(t *testing.T) {
	router, svc := newTestRouter(t)
	loadFixture(t, svc)

	r := httptest.NewRequest(http.MethodPut, "/api/config/credits", strings.NewReader(`{"CS301":4}`))
	r.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, r)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"credits":4`)

	record, err := svc.Result(context.Background(), "1RV21CS001", services.QueryOptions{})
	require.NoError(t, err)
	require.NotNil(t, record.SGPA)
}

func TestPutCreditsRejectsOutOfRangeWeight(t *testing.T) {
	router, _ := newTestRouter(t)

	r := httptest.NewRequest(http.MethodPut, "/api/config/credits", strings.NewReader(`{"CS301":99}`))
	r.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetResults(t *testing.T) {
	router, svc := newTestRouter(t)
	loadFixture(t, svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/results", nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Status string                  `json:"status"`
		Count  int                     `json:"count"`
		Data   []*domain.StudentRecord `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, 2, resp.Count)
}

func TestGetResultByStudent(t *testing.T) {
	router, svc := newTestRouter(t)
	loadFixture(t, svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/results/1rv21cs001", nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Asha")
}

func TestGetResultUnknownStudent(t *testing.T) {
	router, svc := newTestRouter(t)
	loadFixture(t, svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/results/9XX99XX999", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "STUDENT_NOT_FOUND")
}

func TestGetReport(t *testing.T) {
	router, svc := newTestRouter(t)
	loadFixture(t, svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/report?metric=total_marks&mode=marks", nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Data domain.ClassReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Data.KPI.TotalStudents)
	assert.Equal(t, 1, resp.Data.KPI.PassedStudents)
}

func TestGetSubjectDifficulty(t *testing.T) {
	router, svc := newTestRouter(t)
	loadFixture(t, svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/report/subjects", nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "CS301")
}

func TestExportCSV(t *testing.T) {
	router, svc := newTestRouter(t)
	loadFixture(t, svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/export/csv", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".csv")
	assert.Contains(t, rec.Body.String(), "1RV21CS001")
}

func TestExportCSVWithoutDataset(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/export/csv", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportWorkbook(t *testing.T) {
	router, svc := newTestRouter(t)
	loadFixture(t, svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/export/xlsx", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")

	wb, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer wb.Close()
	assert.Contains(t, wb.GetSheetList(), "Summary")
}

func TestHealthz(t *testing.T) {
	router, svc := newTestRouter(t)
	loadFixture(t, svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var status services.HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "healthy", status.Status)
	assert.Contains(t, status.Services, "dataset")
}

func TestVersionEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/version", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "test")
}

func TestQueryOptionsParsing(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/results?metric=sgpa&mode=sgpa&subjects=CS301,+CS302,", nil)
	opts := queryOptions(r)

	assert.Equal(t, domain.MetricSGPA, opts.Metric)
	assert.Equal(t, domain.ModeSGPA, opts.Mode)
	assert.Equal(t, []string{"CS301", "CS302"}, opts.Subjects)

	r = httptest.NewRequest(http.MethodGet, "/api/results?metric=bogus&mode=bogus", nil)
	opts = queryOptions(r)
	assert.Equal(t, domain.MetricTotalMarks, opts.Metric)
	assert.Equal(t, domain.ModeMarks, opts.Mode)
}
