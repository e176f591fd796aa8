package queue

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	batchesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classpulse_batches_processed_total",
		Help: "Batches that completed the extraction pipeline.",
	})
	batchesFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classpulse_batches_failed_total",
		Help: "Batches whose pipeline run errored or panicked.",
	})
	batchesQueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classpulse_batches_queued_total",
		Help: "Batches admitted into a backlog instead of running immediately.",
	})
	activeJobs = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "classpulse_active_jobs",
		Help: "Jobs with a runner currently draining batches.",
	})
	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "classpulse_queued_batches",
		Help: "Batches sitting in backlogs across all jobs.",
	})
)
