package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProblemDetailsMarshalIncludesExtensions(t *testing.T) {
	pd := NewProblemDetails(http.StatusNotFound, TypeNoDataset, "No Dataset Loaded", "upload first", "/api/results").
		WithExtension("trace_id", "abc123")

	data, err := json.Marshal(pd)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, TypeNoDataset, decoded["type"])
	assert.Equal(t, float64(http.StatusNotFound), decoded["status"])
	assert.Equal(t, "abc123", decoded["trace_id"])
	assert.Equal(t, "upload first", decoded["detail"])
}

func TestMapResultError(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{ErrNoDatasetLoaded, http.StatusNotFound, "NO_DATASET"},
		{ErrDatasetEmpty, http.StatusUnprocessableEntity, "EMPTY_DATASET"},
		{fmt.Errorf("%w: 1RV21CS999", ErrStudentMissing), http.StatusNotFound, "STUDENT_NOT_FOUND"},
		{fmt.Errorf("%w: report.pdf", ErrUnsupportedFileType), http.StatusUnsupportedMediaType, "UNSUPPORTED_UPLOAD"},
		{fmt.Errorf("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		pd, ok := MapResultError(tt.err, "trace-1", "/api/results").(*ProblemDetails)
		require.True(t, ok)
		assert.Equal(t, tt.wantStatus, pd.Status, tt.err.Error())
		assert.Equal(t, tt.wantCode, pd.Extensions["error_code"])
		assert.Equal(t, "trace-1", pd.Extensions["trace_id"])
	}
}
