package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	JSON(rr, map[string]string{"hello": "world"})

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "world", body["data"]["hello"])
}

func TestCreatedAndAccepted(t *testing.T) {
	rr := httptest.NewRecorder()
	Created(rr, "x")
	assert.Equal(t, http.StatusCreated, rr.Code)

	rr = httptest.NewRecorder()
	Accepted(rr, "x")
	assert.Equal(t, http.StatusAccepted, rr.Code)
}

func TestMessage(t *testing.T) {
	rr := httptest.NewRecorder()
	Message(rr, "No data recorded for this job")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"data":{"message":"No data recorded for this job"}}`, rr.Body.String())
}

func TestError(t *testing.T) {
	rr := httptest.NewRecorder()
	Error(rr, http.StatusNotFound, "JOB_NOT_FOUND", "Job s1 not found", nil)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":{"code":"JOB_NOT_FOUND","message":"Job s1 not found"}}`, rr.Body.String())
}

func TestError_WithDetails(t *testing.T) {
	rr := httptest.NewRecorder()
	Error(rr, http.StatusServiceUnavailable, "DEGRADED", "One or more services degraded",
		map[string]string{"cache": "degraded"})

	var body struct {
		Error struct {
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Error.Details["cache"])
}
