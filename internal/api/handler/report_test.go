package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classpulse/classpulse/internal/store"
	"github.com/classpulse/classpulse/internal/vision"
	"github.com/classpulse/classpulse/pkg/models"
)

type mockReporter struct {
	report *models.SessionReport
	err    error
	jobIDs []string
}

func (m *mockReporter) BuildReport(_ context.Context, jobID string) (*models.SessionReport, error) {
	m.jobIDs = append(m.jobIDs, jobID)
	return m.report, m.err
}

func getReport(t *testing.T, reporter Reporter, jobID string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/api/v1/jobs/{jobID}/report", NewReportHandler(reporter))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/"+jobID+"/report", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestReportHandler_Success(t *testing.T) {
	reporter := &mockReporter{report: &models.SessionReport{
		Metrics: models.SessionMetrics{
			TotalEntries:         3,
			AverageAttentiveness: 7.5,
			TotalFocusDuration:   120,
		},
		Analysis: "The student stayed engaged.",
	}}

	rr := getReport(t, reporter, "session1")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"session1"}, reporter.jobIDs)

	var envelope struct {
		Data models.SessionReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope))
	assert.Equal(t, 3, envelope.Data.Metrics.TotalEntries)
	assert.Equal(t, "The student stayed engaged.", envelope.Data.Analysis)
}

func TestReportHandler_JobNotFound(t *testing.T) {
	rr := getReport(t, &mockReporter{err: store.ErrNotFound}, "ghost")

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "JOB_NOT_FOUND")
	assert.Contains(t, rr.Body.String(), "ghost")
}

func TestReportHandler_InvalidJobIDCharacters(t *testing.T) {
	rr := getReport(t, &mockReporter{err: store.ErrInvalidJobID}, "session1")

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "INVALID_REQUEST")
}

func TestReportHandler_NoEntries(t *testing.T) {
	rr := getReport(t, &mockReporter{err: vision.ErrNoEntries}, "session1")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "No data recorded for this job")
}

func TestReportHandler_ProviderUnavailable(t *testing.T) {
	rr := getReport(t, &mockReporter{err: vision.ErrProviderUnavailable}, "session1")

	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Contains(t, rr.Body.String(), "PROVIDER_UNAVAILABLE")
}

func TestReportHandler_InferenceTimeout(t *testing.T) {
	rr := getReport(t, &mockReporter{err: vision.ErrInferenceTimeout}, "session1")

	assert.Equal(t, http.StatusGatewayTimeout, rr.Code)
	assert.Contains(t, rr.Body.String(), "INFERENCE_TIMEOUT")
}

func TestReportHandler_UnexpectedError(t *testing.T) {
	rr := getReport(t, &mockReporter{err: errors.New("boom")}, "session1")

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "INTERNAL_ERROR")
}
