package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/classpulse/classpulse/internal/api/response"
	"github.com/classpulse/classpulse/internal/store"
	"github.com/classpulse/classpulse/internal/vision"
	"github.com/classpulse/classpulse/pkg/models"
)

// Reporter aggregates a job's entries into a session report.
type Reporter interface {
	BuildReport(ctx context.Context, jobID string) (*models.SessionReport, error)
}

// NewReportHandler returns an http.HandlerFunc for
// GET /api/v1/jobs/{jobID}/report.
func NewReportHandler(reporter Reporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID := chi.URLParam(r, "jobID")
		if jobID == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "job id is required", nil)
			return
		}

		report, err := reporter.BuildReport(r.Context(), jobID)
		if err != nil {
			switch {
			case errors.Is(err, store.ErrNotFound):
				response.Error(w, http.StatusNotFound, "JOB_NOT_FOUND",
					fmt.Sprintf("Job %s not found", jobID), nil)
			case errors.Is(err, store.ErrInvalidJobID):
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
					fmt.Sprintf("Job id %q contains invalid characters", jobID), nil)
			case errors.Is(err, vision.ErrNoEntries):
				response.Message(w, "No data recorded for this job")
			case errors.Is(err, vision.ErrProviderUnavailable):
				response.Error(w, http.StatusBadGateway, "PROVIDER_UNAVAILABLE",
					"The vision provider is not available", nil)
			case errors.Is(err, vision.ErrInferenceTimeout):
				response.Error(w, http.StatusGatewayTimeout, "INFERENCE_TIMEOUT",
					"Narrative generation took too long and was cancelled", nil)
			default:
				response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
					"An unexpected error occurred", nil)
			}
			return
		}

		response.JSON(w, report)
	}
}
