// Package store persists the per-job metric log. Entries for a job are
// append-only and read back in exactly the order they were appended.
package store

import (
	"context"
	"errors"

	"github.com/classpulse/classpulse/pkg/models"
)

var ErrNotFound = errors.New("job not found")
var ErrAlreadyExists = errors.New("job already exists")
var ErrInvalidJobID = errors.New("invalid job id")

// Store is the session log interface. All persistence goes through here.
// Implementations must be safe for concurrent use; appends for a single job
// are additionally serialized by the queue coordinator's runner.
type Store interface {
	Ping(ctx context.Context) error

	// CreateJob initializes storage for a job. Returns ErrAlreadyExists if
	// the job was created before.
	CreateJob(ctx context.Context, jobID string) error

	// HasJob reports whether storage for the job exists.
	HasJob(ctx context.Context, jobID string) (bool, error)

	// AppendEntry records one entry at the end of the job's log. Returns
	// ErrNotFound if the job was never created.
	AppendEntry(ctx context.Context, jobID string, entry models.Entry) error

	// ReadEntries returns every entry for the job in append order. Returns
	// ErrNotFound if the job was never created, and an empty slice for a
	// created job with no entries yet.
	ReadEntries(ctx context.Context, jobID string) ([]models.Entry, error)
}
