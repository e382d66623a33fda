package main

import (
	"fmt"
	"io"
	"os"

	"dircleaner/internal/cleanup"
	"dircleaner/internal/cli"
	"dircleaner/internal/config"
	"dircleaner/internal/exitcodes"
	"dircleaner/internal/fault"
	"dircleaner/internal/history"
	"dircleaner/internal/logging"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, os.LookupEnv, ""))
}

// run executes one cleanup and returns the process exit code. An empty
// workDir means the process working directory.
func run(args []string, stdout, stderr io.Writer, lookup config.LookupFunc, workDir string) int {
	opts, shouldExit, err := cli.Parse(args, stdout)
	if err != nil {
		return fail(stderr, err)
	}
	if shouldExit {
		return exitcodes.Success
	}

	cfg, err := config.Load(lookup)
	if err != nil {
		return fail(stderr, fmt.Errorf("%w: %w", fault.ErrEnvironment, err))
	}

	logger := logging.NewWithConfig(cfg, stderr)
	defer func() {
		if err := logger.Close(); err != nil {
			_, _ = fmt.Fprintf(stderr, "Warning: failed to close log file: %v\n", err)
		}
	}()

	executor := cleanup.NewExecutor(logger)
	if workDir != "" {
		executor.SetWorkDir(workDir)
	}

	if cfg.HistoryEnabled() {
		db, err := history.Open(cfg.HistoryDB)
		if err != nil {
			logger.Error("History disabled: failed to open database", "path", cfg.HistoryDB, "error", err)
		} else {
			defer func() {
				if err := db.Close(); err != nil {
					logger.Error("Failed to close history database", "error", err)
				}
			}()
			executor.SetRecorder(db)
		}
	}

	result, runErr := executor.Run(opts)

	if cfg.MetricsEnabled() {
		if err := executor.Metrics().WriteTextfile(cfg.MetricsTextfile); err != nil {
			logger.Error("Failed to write metrics textfile", "path", cfg.MetricsTextfile, "error", err)
		}
	}

	if runErr != nil {
		return fail(stderr, runErr)
	}
	if err := result.WriteSummary(stdout); err != nil {
		return fail(stderr, fmt.Errorf("%w: write summary: %w", fault.ErrIO, err))
	}
	return exitcodes.Success
}

func fail(stderr io.Writer, err error) int {
	_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
	return exitcodes.FromError(err)
}
