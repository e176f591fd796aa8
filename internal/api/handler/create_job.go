// Package handler contains the HTTP handlers for the ClassPulse API. Each
// handler depends on a narrow interface so tests can inject mocks.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/classpulse/classpulse/internal/api/response"
	"github.com/classpulse/classpulse/internal/store"
)

// JobCreator is the slice of the store the create handler needs.
type JobCreator interface {
	CreateJob(ctx context.Context, jobID string) error
}

// NewCreateJobHandler returns an http.HandlerFunc for POST /api/v1/jobs.
func NewCreateJobHandler(creator JobCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			JobID string `json:"job_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		if req.JobID == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "job_id is required", nil)
			return
		}

		if err := creator.CreateJob(r.Context(), req.JobID); err != nil {
			switch {
			case errors.Is(err, store.ErrAlreadyExists):
				response.Error(w, http.StatusBadRequest, "ALREADY_EXISTS",
					fmt.Sprintf("Job %s already exists", req.JobID), nil)
			case errors.Is(err, store.ErrInvalidJobID):
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
					fmt.Sprintf("Job id %q contains invalid characters", req.JobID), nil)
			default:
				response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
					"Failed to create job", nil)
			}
			return
		}

		response.Created(w, map[string]string{
			"message": fmt.Sprintf("Job %s created successfully", req.JobID),
		})
	}
}
