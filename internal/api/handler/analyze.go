package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/classpulse/classpulse/internal/api/response"
	"github.com/classpulse/classpulse/internal/queue"
	"github.com/classpulse/classpulse/internal/store"
	"github.com/classpulse/classpulse/pkg/models"
)

// Submitter admits a batch for background processing and returns the
// immediate queue acknowledgment.
type Submitter interface {
	Submit(ctx context.Context, req models.BatchRequest) (queue.Result, error)
}

// NewAnalyzeHandler returns an http.HandlerFunc for POST /api/v1/analyze.
// The job is created implicitly if it was never seen before.
func NewAnalyzeHandler(submitter Submitter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.BatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		if req.JobID == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "job_id is required", nil)
			return
		}
		if req.Empty() {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"at least one of image_paths or image_urls is required", nil)
			return
		}

		result, err := submitter.Submit(r.Context(), req)
		if err != nil {
			if errors.Is(err, store.ErrInvalidJobID) {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
					fmt.Sprintf("Job id %q contains invalid characters", req.JobID), nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to admit batch", nil)
			return
		}

		if result.Status == queue.StatusQueued {
			response.Accepted(w, analyzeResponse{
				Status:        string(result.Status),
				Message:       fmt.Sprintf("Job %s is queued for processing", req.JobID),
				QueuePosition: &result.Position,
			})
			return
		}
		response.Accepted(w, analyzeResponse{
			Status:  string(result.Status),
			Message: fmt.Sprintf("Processing started for job %s", req.JobID),
		})
	}
}

type analyzeResponse struct {
	Status        string `json:"status"`
	Message       string `json:"message"`
	QueuePosition *int   `json:"queue_position,omitempty"`
}
