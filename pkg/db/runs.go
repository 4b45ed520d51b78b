package db

import (
	"context"
	"fmt"
	"time"
)

// Run records the outcome of one reimport
type Run struct {
	RunID     int64
	Board     string
	CreatedAt time.Time
	Documents int
	Parsed    int
	Skipped   int
	Failed    int
	Saved     int
	DryRun    bool
}

// InsertRun stores a finished run and returns its id
func (db *DB) InsertRun(ctx context.Context, r Run) (int64, error) {
	result, err := db.ExecContext(ctx, `
		INSERT INTO runs (board, documents, parsed, skipped, failed, saved, dry_run)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, r.Board, r.Documents, r.Parsed, r.Skipped, r.Failed, r.Saved, r.DryRun)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	return result.LastInsertId()
}

// ListRuns retrieves runs ordered by most recent first
func (db *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `
		SELECT run_id, board, created_at, documents, parsed, skipped, failed, saved, dry_run
		FROM runs
		ORDER BY run_id DESC
	`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.RunID, &r.Board, &r.CreatedAt, &r.Documents, &r.Parsed,
			&r.Skipped, &r.Failed, &r.Saved, &r.DryRun); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}

	return runs, rows.Err()
}
