package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Actions recorded for each manifest target
const (
	ActionDelete = "DELETE"
	ActionDryRun = "DRY_RUN"
	ActionSkip   = "SKIP"
	ActionError  = "ERROR"
)

// DB manages the SQLite audit trail of cleanup runs
type DB struct {
	db *sql.DB
}

// Entry represents one processed manifest target
type Entry struct {
	ID           int64     `json:"id" yaml:"id"`
	RunID        string    `json:"run_id" yaml:"run_id"`
	Timestamp    time.Time `json:"timestamp" yaml:"timestamp"`
	Action       string    `json:"action" yaml:"action"`
	Path         string    `json:"path" yaml:"path"`
	Size         int64     `json:"size" yaml:"size"`
	DryRun       bool      `json:"dry_run" yaml:"dry_run"`
	ErrorMessage string    `json:"error_message,omitempty" yaml:"error_message,omitempty"`
}

// Open creates the database file if needed and initializes the schema
func Open(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	// _loc=auto enables automatic DATETIME parsing
	db, err := sql.Open("sqlite3", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err != nil {
			db.Close()
		}
	}()

	// A query instead of Ping() forces the file to be created
	if _, err = db.Exec("SELECT 1"); err != nil {
		return nil, fmt.Errorf("failed to initialize database (check permissions on %s): %w", dbPath, err)
	}

	if _, err = db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if _, err = db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}

	h := &DB{db: db}
	if err = h.initSchema(); err != nil {
		return nil, err
	}
	return h, nil
}

// initSchema creates tables and indexes if they don't exist
func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS removals (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		action TEXT NOT NULL,
		path TEXT NOT NULL,
		size INTEGER NOT NULL,
		dry_run INTEGER NOT NULL,
		error_message TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_run_id ON removals(run_id);
	CREATE INDEX IF NOT EXISTS idx_timestamp ON removals(timestamp);
	CREATE INDEX IF NOT EXISTS idx_action ON removals(action);

	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`

	_, err := d.db.Exec(schema)
	return err
}

// Record inserts one processed target
func (d *DB) Record(e Entry) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	var errMsg sql.NullString
	if e.ErrorMessage != "" {
		errMsg = sql.NullString{String: e.ErrorMessage, Valid: true}
	}

	_, err := d.db.Exec(`
	INSERT INTO removals (run_id, timestamp, action, path, size, dry_run, error_message)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.RunID, e.Timestamp, e.Action, e.Path, e.Size, e.DryRun, errMsg)
	return err
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.db.Close()
}

// dsn builds a URI filename for dbPath. The characters SQLite gives meaning
// to in a URI are percent-encoded so that they stay part of the path.
func dsn(dbPath string) string {
	return "file:" + uriEscaper.Replace(dbPath) + "?_loc=auto"
}

var uriEscaper = strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23")
