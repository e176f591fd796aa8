package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/classpulse/classpulse/internal/cache"
	"github.com/classpulse/classpulse/internal/metrics"
	"github.com/classpulse/classpulse/internal/store"
	"github.com/classpulse/classpulse/pkg/models"
)

const reportCacheTTL = 30 * time.Minute

// ImageLoader resolves batch image sources into in-memory images, skipping
// sources that cannot be loaded.
type ImageLoader interface {
	LoadBatch(ctx context.Context, req models.BatchRequest) []models.Image
}

// Service runs the per-batch extraction pipeline and the on-demand session
// aggregation. It is the only writer of metric entries.
type Service struct {
	provider models.VisionProvider
	loader   ImageLoader
	store    store.Store
	cache    cache.Cache
	timeout  time.Duration
}

// NewService creates a new Service.
func NewService(provider models.VisionProvider, loader ImageLoader, st store.Store, ca cache.Cache, timeout time.Duration) *Service {
	return &Service{
		provider: provider,
		loader:   loader,
		store:    st,
		cache:    ca,
		timeout:  timeout,
	}
}

// ProcessBatch executes the extraction pipeline for one admitted batch:
// load the images, ask the provider for an analysis, extract metric fields,
// append one entry to the job's log. A batch that yields zero loadable
// images records nothing and is not an error.
func (s *Service) ProcessBatch(ctx context.Context, req models.BatchRequest) error {
	images := s.loader.LoadBatch(ctx, req)
	if len(images) == 0 {
		slog.Warn("batch yielded no loadable images, nothing recorded", "job_id", req.JobID)
		return nil
	}

	analysisCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	analysis, err := s.provider.AnalyzeImages(analysisCtx, observationPrompt, images)
	if err != nil {
		return fmt.Errorf("analyzing batch: %w", err)
	}

	fields := metrics.Extract(analysis)
	entry := models.Entry{
		Timestamp:     time.Now().UTC(),
		Attentiveness: fields.Attentiveness,
		Comment:       analysis,
		EyeContact:    fields.EyeContact,
		Posture:       fields.Posture,
		FocusDuration: fields.FocusDuration,
	}

	if err := s.store.AppendEntry(ctx, req.JobID, entry); err != nil {
		return fmt.Errorf("appending entry: %w", err)
	}

	slog.Info("batch processed", "job_id", req.JobID,
		"images", len(images), "attentiveness", entry.Attentiveness)
	return nil
}

// BuildReport aggregates every entry recorded for the job and asks the
// provider for a narrative. It never mutates stored data, so repeat calls
// with no new batches return identical metrics and raw arrays. Reports are
// cached per (job, entry count).
func (s *Service) BuildReport(ctx context.Context, jobID string) (*models.SessionReport, error) {
	entries, err := s.store.ReadEntries(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrNoEntries
	}

	key := cache.ReportKey(jobID, len(entries))
	if cached, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		var report models.SessionReport
		if err := json.Unmarshal(cached, &report); err == nil {
			return &report, nil
		}
	}

	report := aggregate(entries)

	narrativeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	comments := make([]string, len(entries))
	for i, e := range entries {
		comments[i] = e.Comment
	}
	narrative, err := s.provider.GenerateText(narrativeCtx, buildSummaryPrompt(report.Metrics, comments))
	if err != nil {
		return nil, err
	}
	report.Analysis = narrative

	if data, err := json.Marshal(report); err == nil {
		if err := s.cache.Set(ctx, key, data, reportCacheTTL); err != nil {
			slog.Warn("caching report failed", "job_id", jobID, "error", err)
		}
	}

	return report, nil
}

// LatestEntry returns the most recently recorded entry for the job.
func (s *Service) LatestEntry(ctx context.Context, jobID string) (models.Entry, error) {
	entries, err := s.store.ReadEntries(ctx, jobID)
	if err != nil {
		return models.Entry{}, err
	}
	if len(entries) == 0 {
		return models.Entry{}, ErrNoEntries
	}
	return entries[len(entries)-1], nil
}

// aggregate computes the session metrics and raw arrays from entries, which
// must be non-empty and in append order.
func aggregate(entries []models.Entry) *models.SessionReport {
	raw := models.SessionRawData{
		TotalSnapshots:      len(entries),
		Timestamps:          make([]string, 0, len(entries)),
		AttentivenessScores: make([]float64, 0, len(entries)),
		EyeContactScores:    make([]float64, 0, len(entries)),
		PostureScores:       make([]float64, 0, len(entries)),
		FocusDurations:      make([]int, 0, len(entries)),
	}

	var sumAttentiveness, sumEyeContact, sumPosture float64
	totalFocus := 0
	for _, e := range entries {
		raw.Timestamps = append(raw.Timestamps, e.Timestamp.UTC().Format(time.RFC3339Nano))
		raw.AttentivenessScores = append(raw.AttentivenessScores, e.Attentiveness)
		raw.EyeContactScores = append(raw.EyeContactScores, e.EyeContact)
		raw.PostureScores = append(raw.PostureScores, e.Posture)
		raw.FocusDurations = append(raw.FocusDurations, e.FocusDuration)

		sumAttentiveness += e.Attentiveness
		sumEyeContact += e.EyeContact
		sumPosture += e.Posture
		totalFocus += e.FocusDuration
	}

	n := float64(len(entries))
	return &models.SessionReport{
		Metrics: models.SessionMetrics{
			TotalEntries:         len(entries),
			AverageAttentiveness: sumAttentiveness / n,
			AverageEyeContact:    sumEyeContact / n,
			AveragePosture:       sumPosture / n,
			TotalFocusDuration:   totalFocus,
			LatestComment:        entries[len(entries)-1].Comment,
		},
		RawData: raw,
	}
}
