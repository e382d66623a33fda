package cleanup

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"dircleaner/internal/cli"
	"dircleaner/internal/disk"
	"dircleaner/internal/fault"
	"dircleaner/internal/fsops"
	"dircleaner/internal/history"
	"dircleaner/internal/manifest"
	"dircleaner/internal/metrics"
	"dircleaner/internal/safety"
)

// Logger is the leveled logger the executor reports through
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// Recorder receives one entry per processed target
type Recorder interface {
	Record(e history.Entry) error
}

// DeletionStats accumulates what a run freed. Both fields only grow.
type DeletionStats struct {
	BytesFreed         uint64
	DirectoriesRemoved int
}

// Result is the outcome of a successful run
type Result struct {
	RunID   string
	DryRun  bool
	Empty   bool     // Manifest had no entries; nothing was touched
	Targets []string // Every resolved entry in manifest order, existing or not
	Stats   DeletionStats
}

// Executor runs one manifest-driven cleanup
type Executor struct {
	logger    Logger
	deleter   fsops.Deleter
	validator *safety.Validator
	metrics   *metrics.Collector
	recorder  Recorder
	workDir   string
	scan      func(path string) (*disk.PathStats, error)
}

// NewExecutor creates an executor that deletes through the real filesystem
func NewExecutor(logger Logger) *Executor {
	return &Executor{
		logger:  logger,
		deleter: fsops.OSDeleter{},
		metrics: metrics.New(),
		scan:    disk.ScanDir,
	}
}

// SetDeleter replaces the filesystem deleter
func (e *Executor) SetDeleter(d fsops.Deleter) {
	e.deleter = d
}

// SetValidator replaces the validator built from the working directory
func (e *Executor) SetValidator(v *safety.Validator) {
	e.validator = v
}

// SetMetrics replaces the run metrics collector
func (e *Executor) SetMetrics(m *metrics.Collector) {
	e.metrics = m
}

// SetRecorder enables the audit trail
func (e *Executor) SetRecorder(r Recorder) {
	e.recorder = r
}

// SetWorkDir overrides the process working directory
func (e *Executor) SetWorkDir(dir string) {
	e.workDir = dir
}

// Metrics returns the collector updated by Run
func (e *Executor) Metrics() *metrics.Collector {
	return e.metrics
}

// Run resolves the manifest against the working directory, sizes every
// listed directory and removes it unless opts.DryRun is set. The first
// failure aborts the run; directories removed before it stay removed.
func (e *Executor) Run(opts cli.Options) (*Result, error) {
	start := time.Now()
	result := &Result{RunID: uuid.NewString(), DryRun: opts.DryRun}

	err := e.run(opts, result)
	e.metrics.RecordRun(start, opts.DryRun)
	if err != nil {
		e.metrics.RecordError(errorKind(err))
		return nil, err
	}
	return result, nil
}

func (e *Executor) run(opts cli.Options, result *Result) error {
	root, err := e.resolveWorkDir()
	if err != nil {
		return fmt.Errorf("%w: could not determine root directory: %w", fault.ErrEnvironment, err)
	}

	manifestPath := resolve(root, opts.ManifestFile)
	if _, err := os.Stat(manifestPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: invalid file source provided: %s", fault.ErrManifestNotFound, manifestPath)
		}
		return fmt.Errorf("%w: stat manifest: %w", fault.ErrIO, err)
	}

	entries, err := manifest.Read(manifestPath)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		e.logger.Info("Manifest is empty", "manifest", manifestPath)
		result.Empty = true
		return nil
	}

	result.Targets = make([]string, 0, len(entries))
	for _, entry := range entries {
		result.Targets = append(result.Targets, resolve(root, entry))
	}

	validator := e.validator
	if validator == nil {
		validator = safety.NewValidator(root, nil)
	}
	if err := validateTargets(validator, result.Targets); err != nil {
		return err
	}

	e.logger.Info("Starting cleanup",
		"run_id", result.RunID,
		"manifest", manifestPath,
		"targets", len(result.Targets),
		"dry_run", opts.DryRun,
	)

	for _, target := range result.Targets {
		if err := e.process(target, opts.DryRun, result); err != nil {
			return err
		}
	}

	e.logger.Info("Cleanup complete",
		"run_id", result.RunID,
		"directories", result.Stats.DirectoriesRemoved,
		"bytes", result.Stats.BytesFreed,
	)
	return nil
}

// process handles a single resolved target. The directory is sized before
// it is removed; removal destroys what the size is computed from.
func (e *Executor) process(target string, dryRun bool, result *Result) error {
	info, err := os.Stat(target)
	if err != nil {
		e.skip(target, metrics.SkipNotFound, dryRun, result.RunID)
		return nil
	}
	if !info.IsDir() {
		e.skip(target, metrics.SkipNotDirectory, dryRun, result.RunID)
		return nil
	}

	stats, err := e.scan(target)
	if err != nil {
		e.record(result.RunID, history.ActionError, target, 0, dryRun, err.Error())
		return fmt.Errorf("%w: indeterminable size of %s: %w", fault.ErrIO, target, err)
	}
	e.logger.Debug("Sized directory",
		"path", target,
		"bytes", stats.UsedBytes,
		"files", stats.FileCount,
		"skipped_entries", stats.Skipped,
	)

	result.Stats.BytesFreed += stats.UsedBytes
	result.Stats.DirectoriesRemoved++

	if dryRun {
		e.logger.Info("[DRY RUN] Would remove directory recursively", "path", target, "size", stats.UsedBytes)
		e.record(result.RunID, history.ActionDryRun, target, stats.UsedBytes, true, "")
	} else {
		if err := e.deleter.RemoveAll(target); err != nil {
			e.logger.Debug("Failed to delete", "path", target, "error", err)
			e.record(result.RunID, history.ActionError, target, stats.UsedBytes, false, err.Error())
			return fmt.Errorf("%w: error removing %s: %w", fault.ErrDeletion, target, err)
		}
		e.logger.Info("Removed directory", "path", target, "size", stats.UsedBytes)
		e.record(result.RunID, history.ActionDelete, target, stats.UsedBytes, false, "")
	}

	e.metrics.RecordRemoval(stats.UsedBytes)
	return nil
}

func (e *Executor) skip(target, reason string, dryRun bool, runID string) {
	e.logger.Info("Skipping target", "path", target, "reason", reason)
	e.metrics.RecordSkip(reason)
	e.record(runID, history.ActionSkip, target, 0, dryRun, reason)
}

// record writes to the audit trail. A failed write never fails the run.
func (e *Executor) record(runID, action, path string, size uint64, dryRun bool, msg string) {
	if e.recorder == nil {
		return
	}
	err := e.recorder.Record(history.Entry{
		RunID:        runID,
		Timestamp:    time.Now(),
		Action:       action,
		Path:         path,
		Size:         int64(size),
		DryRun:       dryRun,
		ErrorMessage: msg,
	})
	if err != nil {
		e.logger.Error("Failed to record to history", "path", path, "error", err)
	}
}

// resolveWorkDir returns the canonical absolute working directory
func (e *Executor) resolveWorkDir() (string, error) {
	dir := e.workDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		dir = wd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// resolve joins a manifest entry to root unless it is already absolute
func resolve(root, entry string) string {
	if filepath.IsAbs(entry) {
		return filepath.Clean(entry)
	}
	return filepath.Join(root, entry)
}

// validateTargets checks every target that currently exists as a directory,
// before anything is removed
func validateTargets(v *safety.Validator, targets []string) error {
	for _, target := range targets {
		info, err := os.Stat(target)
		if err != nil || !info.IsDir() {
			continue
		}
		if err := v.ValidateDeleteTarget(target); err != nil {
			return fmt.Errorf("%w: %s: %w", fault.ErrSafetyViolation, target, err)
		}
	}
	return nil
}

// errorKind labels an error for the errors metric
func errorKind(err error) string {
	switch {
	case errors.Is(err, fault.ErrManifestNotFound):
		return "manifest_not_found"
	case errors.Is(err, fault.ErrIO):
		return "io"
	case errors.Is(err, fault.ErrDeletion):
		return "deletion"
	case errors.Is(err, fault.ErrEnvironment):
		return "environment"
	case errors.Is(err, fault.ErrSafetyViolation):
		return "safety"
	default:
		return "other"
	}
}
