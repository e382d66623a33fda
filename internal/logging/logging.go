package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"dircleaner/internal/config"
)

// Level orders message severities
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[Level]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

// ParseLevel maps a settings value to a Level, defaulting to LevelWarn
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "error":
		return LevelError
	default:
		return LevelWarn
	}
}

// Logger wraps the standard logger with level filtering and key-value output
type Logger struct {
	*log.Logger
	level Level
	file  *os.File
}

// New creates a logger writing to w at the default level
func New(w io.Writer) *Logger {
	return NewWithConfig(nil, w)
}

// NewWithConfig creates a logger honoring the level and log file settings
func NewWithConfig(cfg *config.Settings, w io.Writer) *Logger {
	l := &Logger{level: LevelWarn}
	if cfg != nil {
		l.level = ParseLevel(cfg.LogLevel)
	}

	out := w
	if cfg != nil && cfg.LogFile != "" {
		f, err := openLogFile(cfg.LogFile)
		if err != nil {
			fmt.Fprintf(w, "failed to open log file %s: %v\n", cfg.LogFile, err)
		} else {
			l.file = f
			out = io.MultiWriter(w, f)
		}
	}

	l.Logger = log.New(out, "", log.LstdFlags|log.Lmicroseconds)
	return l
}

// Discard returns a logger that drops everything
func Discard() *Logger {
	return &Logger{Logger: log.New(io.Discard, "", 0), level: LevelError + 1}
}

func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	l.logWithLevel(LevelDebug, msg, args...)
}

func (l *Logger) Info(msg string, args ...interface{}) {
	l.logWithLevel(LevelInfo, msg, args...)
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	l.logWithLevel(LevelWarn, msg, args...)
}

func (l *Logger) Error(msg string, args ...interface{}) {
	l.logWithLevel(LevelError, msg, args...)
}

// Enabled reports whether messages at level are written
func (l *Logger) Enabled(level Level) bool {
	return level >= l.level
}

func (l *Logger) logWithLevel(level Level, msg string, args ...interface{}) {
	if !l.Enabled(level) {
		return
	}
	line := fmt.Sprintf("[%s] %s", levelNames[level], msg)
	for i := 0; i < len(args); i += 2 {
		if i+1 < len(args) {
			line += fmt.Sprintf(" %v=%v", args[i], args[i+1])
		} else {
			line += fmt.Sprintf(" %v", args[i])
		}
	}
	l.Logger.Println(line)
}

// Close releases the log file, if one was opened
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
