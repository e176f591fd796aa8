package vision

import (
	"errors"

	"github.com/classpulse/classpulse/pkg/models"
)

// Provider sentinels, re-exported so callers can keep importing vision.
var (
	ErrProviderUnavailable = models.ErrProviderUnavailable
	ErrInferenceTimeout    = models.ErrInferenceTimeout
	ErrInvalidResponse     = models.ErrInvalidResponse
)

// ErrNoEntries means the job exists but nothing has been recorded yet.
var ErrNoEntries = errors.New("no entries recorded for job")
