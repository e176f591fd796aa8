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

// statusTimeFormat matches what the capture client prints on screen.
const statusTimeFormat = "2006-01-02 15:04:05"

// StatusReader returns the most recent entry recorded for a job.
type StatusReader interface {
	LatestEntry(ctx context.Context, jobID string) (models.Entry, error)
}

// NewStatusHandler returns an http.HandlerFunc for
// GET /api/v1/jobs/{jobID}/status.
func NewStatusHandler(reader StatusReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID := chi.URLParam(r, "jobID")
		if jobID == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "job id is required", nil)
			return
		}

		entry, err := reader.LatestEntry(r.Context(), jobID)
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
			default:
				response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
					"An unexpected error occurred", nil)
			}
			return
		}

		response.JSON(w, statusResponse{
			Timestamp:     entry.Timestamp.UTC().Format(statusTimeFormat),
			Attentiveness: entry.Attentiveness,
			EyeContact:    entry.EyeContact,
			Posture:       entry.Posture,
			FocusDuration: entry.FocusDuration,
			Comment:       entry.Comment,
		})
	}
}

type statusResponse struct {
	Timestamp     string  `json:"timestamp"`
	Attentiveness float64 `json:"attentiveness_rating"`
	EyeContact    float64 `json:"eye_contact_score"`
	Posture       float64 `json:"posture_score"`
	FocusDuration int     `json:"focus_duration"`
	Comment       string  `json:"comment"`
}
