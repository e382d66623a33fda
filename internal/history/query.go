package history

import (
	"database/sql"
	"time"
)

const selectEntries = `
	SELECT id, run_id, timestamp, action, path, size, dry_run, error_message
	FROM removals
`

// Recent returns the N most recent entries, newest first
func (d *DB) Recent(limit int) ([]Entry, error) {
	return d.queryEntries(selectEntries+`
	ORDER BY timestamp DESC, id DESC
	LIMIT ?
	`, limit)
}

// ByAction returns the N most recent entries with the given action
func (d *DB) ByAction(action string, limit int) ([]Entry, error) {
	return d.queryEntries(selectEntries+`
	WHERE action = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT ?
	`, action, limit)
}

// ByRun returns every entry of one run in the order it was recorded
func (d *DB) ByRun(runID string) ([]Entry, error) {
	return d.queryEntries(selectEntries+`
	WHERE run_id = ?
	ORDER BY id ASC
	`, runID)
}

// Stats holds aggregated totals over the whole audit trail
type Stats struct {
	Runs            int            `json:"runs" yaml:"runs"`
	TotalRemoved    int            `json:"total_removed" yaml:"total_removed"`
	TotalSpaceFreed int64          `json:"total_space_freed" yaml:"total_space_freed"`
	ByAction        map[string]int `json:"by_action" yaml:"by_action"`
	FirstRecorded   *time.Time     `json:"first_recorded,omitempty" yaml:"first_recorded,omitempty"`
	LastRecorded    *time.Time     `json:"last_recorded,omitempty" yaml:"last_recorded,omitempty"`
}

// GetStats aggregates the audit trail. Dry-run rows are counted per action
// but never added to the space freed.
func (d *DB) GetStats() (*Stats, error) {
	stats := &Stats{ByAction: make(map[string]int)}

	err := d.db.QueryRow(`
		SELECT
			COUNT(DISTINCT run_id),
			COUNT(CASE WHEN action = 'DELETE' THEN 1 END),
			COALESCE(SUM(CASE WHEN action = 'DELETE' THEN size END), 0)
		FROM removals
	`).Scan(&stats.Runs, &stats.TotalRemoved, &stats.TotalSpaceFreed)
	if err != nil {
		return nil, err
	}

	rows, err := d.db.Query(`SELECT action, COUNT(*) FROM removals GROUP BY action`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var action string
		var count int
		if err := rows.Scan(&action, &count); err != nil {
			return nil, err
		}
		stats.ByAction[action] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	first, err := d.boundary(`SELECT timestamp FROM removals ORDER BY timestamp ASC LIMIT 1`)
	if err != nil {
		return nil, err
	}
	last, err := d.boundary(`SELECT timestamp FROM removals ORDER BY timestamp DESC LIMIT 1`)
	if err != nil {
		return nil, err
	}
	stats.FirstRecorded, stats.LastRecorded = first, last

	return stats, nil
}

// boundary returns the timestamp selected by query, or nil on an empty table
func (d *DB) boundary(query string) (*time.Time, error) {
	var ts time.Time
	err := d.db.QueryRow(query).Scan(&ts)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ts, nil
}

// queryEntries is a helper function to execute queries and scan results
func (d *DB) queryEntries(query string, args ...interface{}) ([]Entry, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var errMsg sql.NullString

		if err := rows.Scan(
			&e.ID, &e.RunID, &e.Timestamp, &e.Action, &e.Path,
			&e.Size, &e.DryRun, &errMsg,
		); err != nil {
			return nil, err
		}

		if errMsg.Valid {
			e.ErrorMessage = errMsg.String
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
