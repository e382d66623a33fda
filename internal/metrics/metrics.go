package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Skip reasons used as the "reason" label of TargetsSkippedTotal
const (
	SkipNotFound     = "not_found"
	SkipNotDirectory = "not_directory"
)

// Collector holds the metrics of one cleanup run on its own registry,
// so repeated runs in a process (and tests) never collide
type Collector struct {
	registry *prometheus.Registry

	// BytesFreed counts bytes freed (or that would be freed in dry-run)
	BytesFreed prometheus.Counter

	// DirectoriesRemoved counts directories removed (or that would be)
	DirectoriesRemoved prometheus.Counter

	// TargetsSkippedTotal counts manifest entries that were not an existing directory
	TargetsSkippedTotal *prometheus.CounterVec

	// ErrorsTotal counts fatal errors, labeled by kind
	ErrorsTotal *prometheus.CounterVec

	// RunDuration tracks how long the run took
	RunDuration prometheus.Histogram

	// LastRunTimestamp records the Unix time the run finished
	LastRunTimestamp prometheus.Gauge

	// DryRun is 1 when the run did not delete anything
	DryRun prometheus.Gauge
}

// New creates and registers all run metrics
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		BytesFreed: NewCounter(
			"dircleaner_bytes_freed_total",
			"Bytes freed by removing manifest directories.",
		),
		DirectoriesRemoved: NewCounter(
			"dircleaner_directories_removed_total",
			"Manifest directories removed.",
		),
		TargetsSkippedTotal: NewCounterVec(
			"dircleaner_targets_skipped_total",
			"Manifest entries skipped because they were missing or not a directory.",
			[]string{"reason"},
		),
		ErrorsTotal: NewCounterVec(
			"dircleaner_errors_total",
			"Fatal errors that aborted a run.",
			[]string{"kind"},
		),
		RunDuration: NewDurationHistogram(
			"dircleaner_run_duration_seconds",
			"Duration of a cleanup run in seconds.",
		),
		LastRunTimestamp: NewGauge(
			"dircleaner_last_run_timestamp",
			"Timestamp of the last run (Unix epoch seconds).",
		),
		DryRun: NewGauge(
			"dircleaner_dry_run",
			"1 if the last run was a dry run, 0 otherwise.",
		),
	}

	c.registry.MustRegister(
		c.BytesFreed,
		c.DirectoriesRemoved,
		c.TargetsSkippedTotal,
		c.ErrorsTotal,
		c.RunDuration,
		c.LastRunTimestamp,
		c.DryRun,
	)
	return c
}

// Registry exposes the registry for gathering
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordRemoval adds one removed directory of the given size
func (c *Collector) RecordRemoval(bytes uint64) {
	c.BytesFreed.Add(float64(bytes))
	c.DirectoriesRemoved.Inc()
}

// RecordSkip counts a skipped manifest entry
func (c *Collector) RecordSkip(reason string) {
	c.TargetsSkippedTotal.WithLabelValues(reason).Inc()
}

// RecordError counts a fatal error of the given kind
func (c *Collector) RecordError(kind string) {
	c.ErrorsTotal.WithLabelValues(kind).Inc()
}

// RecordRun observes the run duration and stamps the finish time
func (c *Collector) RecordRun(start time.Time, dryRun bool) {
	c.RunDuration.Observe(time.Since(start).Seconds())
	c.LastRunTimestamp.Set(float64(time.Now().Unix()))
	if dryRun {
		c.DryRun.Set(1)
	} else {
		c.DryRun.Set(0)
	}
}

// WriteTextfile writes the registry in text exposition format for the
// node_exporter textfile collector. The file is replaced atomically.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}
