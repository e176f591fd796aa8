// Package queue serializes batch processing per job. Batches for the same
// job run strictly one at a time in admission order; different jobs proceed
// fully in parallel. The coordinator owns the only shared mutable state in
// the system: the per-job {active flag, backlog, pending count}.
package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/classpulse/classpulse/internal/store"
	"github.com/classpulse/classpulse/pkg/models"
)

// Status of an admitted batch as reported to the caller.
type Status string

const (
	// StatusProcessing means the batch started running immediately.
	StatusProcessing Status = "processing"
	// StatusQueued means the batch joined the job's backlog.
	StatusQueued Status = "queued"
)

// Result is the immediate acknowledgment returned by Submit. Position is
// the 1-based backlog position at admission time and is only meaningful for
// StatusQueued.
type Result struct {
	Status   Status
	Position int
}

// Processor executes the extraction pipeline for one admitted batch.
// A returned error is absorbed by the runner: it is logged and the runner
// continues with the next queued batch.
type Processor interface {
	ProcessBatch(ctx context.Context, req models.BatchRequest) error
}

// jobState is the per-job registry entry. All fields are guarded by mu,
// never by the coordinator's registry lock.
type jobState struct {
	mu      sync.Mutex
	active  bool
	backlog []models.BatchRequest
	pending int
	// done is closed when the current runner exits; nil while idle. It is
	// the join handle that lets shutdown and tests drain deterministically.
	done chan struct{}
}

// Coordinator admits batches and guarantees at most one in-flight pipeline
// execution per job at any instant.
type Coordinator struct {
	mu   sync.Mutex // guards jobs map only
	jobs map[string]*jobState

	store store.Store
	proc  Processor
}

// NewCoordinator creates a Coordinator that persists through st and hands
// batches to proc.
func NewCoordinator(st store.Store, proc Processor) *Coordinator {
	return &Coordinator{
		jobs:  make(map[string]*jobState),
		store: st,
		proc:  proc,
	}
}

// Submit admits one batch for the job. Storage for an unseen job is created
// on the spot. If the job is idle the batch transitions straight to running
// and a runner goroutine is spawned; otherwise it is appended to the job's
// FIFO backlog. Submit never blocks on batch processing.
func (c *Coordinator) Submit(ctx context.Context, req models.BatchRequest) (Result, error) {
	if req.JobID == "" {
		return Result{}, errors.New("job id is required")
	}

	if err := c.store.CreateJob(ctx, req.JobID); err != nil && !errors.Is(err, store.ErrAlreadyExists) {
		return Result{}, fmt.Errorf("creating job storage: %w", err)
	}

	js := c.state(req.JobID)

	js.mu.Lock()
	if js.active || len(js.backlog) > 0 {
		js.backlog = append(js.backlog, req)
		js.pending++
		pos := js.pending
		js.mu.Unlock()

		batchesQueued.Inc()
		queueDepth.Inc()
		slog.Info("batch queued", "job_id", req.JobID, "position", pos)
		return Result{Status: StatusQueued, Position: pos}, nil
	}

	// Idle job: this submission owns the new processing cycle. Flipping
	// active under the lock is what keeps a concurrent Submit from
	// starting a second runner.
	js.active = true
	js.pending = 0
	js.done = make(chan struct{})
	js.mu.Unlock()

	activeJobs.Inc()
	slog.Info("batch processing started", "job_id", req.JobID)
	go c.run(req.JobID, js, req)

	return Result{Status: StatusProcessing}, nil
}

// run drains one activation of a job: the batch that triggered it, then
// whatever the backlog holds, until the backlog is observed empty under the
// job lock. Exactly one run loop exists per job at any time.
func (c *Coordinator) run(jobID string, js *jobState, first models.BatchRequest) {
	// Processing deliberately detaches from the submitting request's
	// context: once admitted, a batch runs to completion.
	ctx := context.Background()

	req := first
	for {
		c.process(ctx, jobID, req)

		js.mu.Lock()
		if len(js.backlog) == 0 {
			js.active = false
			done := js.done
			js.done = nil
			js.mu.Unlock()

			activeJobs.Dec()
			close(done)
			slog.Info("job drained", "job_id", jobID)
			return
		}
		req = js.backlog[0]
		js.backlog = js.backlog[1:]
		js.pending--
		js.mu.Unlock()

		queueDepth.Dec()
	}
}

// process runs one batch through the pipeline. Failures, including panics,
// are absorbed here so the runner keeps draining subsequent batches.
func (c *Coordinator) process(ctx context.Context, jobID string, req models.BatchRequest) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic processing batch",
				"job_id", jobID, "panic", r, "stack", string(debug.Stack()))
			batchesFailed.Inc()
		}
	}()

	if err := c.proc.ProcessBatch(ctx, req); err != nil {
		slog.Error("batch processing failed", "job_id", jobID, "error", err)
		batchesFailed.Inc()
		return
	}
	batchesProcessed.Inc()
}

// state returns the registry entry for the job, creating it lazily.
func (c *Coordinator) state(jobID string) *jobState {
	c.mu.Lock()
	defer c.mu.Unlock()
	js, ok := c.jobs[jobID]
	if !ok {
		js = &jobState{}
		c.jobs[jobID] = js
	}
	return js
}

// Pending returns the job's current backlog length. Zero for unknown jobs.
func (c *Coordinator) Pending(jobID string) int {
	c.mu.Lock()
	js, ok := c.jobs[jobID]
	c.mu.Unlock()
	if !ok {
		return 0
	}
	js.mu.Lock()
	defer js.mu.Unlock()
	return js.pending
}

// WaitIdle blocks until the job has no active runner and an empty backlog,
// or ctx is done. A job that was never submitted is already idle.
func (c *Coordinator) WaitIdle(ctx context.Context, jobID string) error {
	for {
		c.mu.Lock()
		js, ok := c.jobs[jobID]
		c.mu.Unlock()
		if !ok {
			return nil
		}

		js.mu.Lock()
		if !js.active {
			js.mu.Unlock()
			return nil
		}
		done := js.done
		js.mu.Unlock()

		select {
		case <-done:
			// Re-check: a new Submit may have reactivated the job.
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Shutdown waits for every known job to drain its backlog, or until ctx is
// done. New submissions during shutdown are not rejected; callers are
// expected to stop the HTTP listener first.
func (c *Coordinator) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	ids := make([]string, 0, len(c.jobs))
	for id := range c.jobs {
		ids = append(ids, id)
	}
	c.mu.Unlock()

	for _, id := range ids {
		if err := c.WaitIdle(ctx, id); err != nil {
			return fmt.Errorf("draining job %s: %w", id, err)
		}
	}
	return nil
}
