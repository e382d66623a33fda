// Package config loads the ambient settings of a run from the environment.
// The manifest stays the only file the tool reads.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const envPrefix = "DIRCLEANER_"

// Environment variable names
const (
	EnvLogLevel        = envPrefix + "LOG_LEVEL"
	EnvLogFile         = envPrefix + "LOG_FILE"
	EnvHistoryDB       = envPrefix + "HISTORY_DB"
	EnvMetricsTextfile = envPrefix + "METRICS_TEXTFILE"
)

// Settings holds everything that is not a command-line flag
type Settings struct {
	LogLevel        string // debug, info, warn or error
	LogFile         string // Optional file that receives a copy of diagnostics
	HistoryDB       string // SQLite audit trail; empty disables it
	MetricsTextfile string // Prometheus textfile output; empty disables it
}

// LookupFunc matches os.LookupEnv
type LookupFunc func(key string) (string, bool)

var (
	errInvalidLevel = errors.New("log level must be one of debug, info, warn, error")
	errInvalidPath  = errors.New("path must not be empty")
)

// FromEnv reads settings from the process environment.
func FromEnv() (*Settings, error) {
	return Load(os.LookupEnv)
}

// Load reads settings through lookup and applies defaults.
func Load(lookup LookupFunc) (*Settings, error) {
	s := &Settings{}
	s.LogLevel, _ = lookup(EnvLogLevel)
	s.LogFile, _ = lookup(EnvLogFile)
	s.HistoryDB, _ = lookup(EnvHistoryDB)
	s.MetricsTextfile, _ = lookup(EnvMetricsTextfile)

	if err := s.validateAndDefault(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) validateAndDefault() error {
	s.LogLevel = strings.ToLower(strings.TrimSpace(s.LogLevel))
	switch s.LogLevel {
	case "":
		s.LogLevel = "warn"
	case "debug", "info", "warn", "error":
	case "warning":
		s.LogLevel = "warn"
	default:
		return fmt.Errorf("%s=%q: %w", EnvLogLevel, s.LogLevel, errInvalidLevel)
	}

	var err error
	if s.LogFile, err = cleanOptional(EnvLogFile, s.LogFile); err != nil {
		return err
	}
	if s.HistoryDB, err = cleanOptional(EnvHistoryDB, s.HistoryDB); err != nil {
		return err
	}
	if s.MetricsTextfile, err = cleanOptional(EnvMetricsTextfile, s.MetricsTextfile); err != nil {
		return err
	}
	return nil
}

// cleanOptional keeps an unset value empty and cleans a set one.
// A value made only of whitespace is rejected rather than silently ignored.
func cleanOptional(name, p string) (string, error) {
	if p == "" {
		return "", nil
	}
	if strings.TrimSpace(p) == "" {
		return "", fmt.Errorf("%s: %w", name, errInvalidPath)
	}
	return filepath.Clean(p), nil
}

// HistoryEnabled reports whether the audit trail should be written.
func (s *Settings) HistoryEnabled() bool {
	return s.HistoryDB != ""
}

// MetricsEnabled reports whether a textfile should be written after the run.
func (s *Settings) MetricsEnabled() bool {
	return s.MetricsTextfile != ""
}
