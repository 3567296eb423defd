package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/nerrad567/gray-motion-core/internal/executor"
)

// timestampLayout is fixed-width so that text ordering in SQLite matches
// time ordering.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// SQLiteRepository implements Repository on the sequence_runs table.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a repository over an open, migrated database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Record inserts or replaces a run.
func (r *SQLiteRepository) Record(ctx context.Context, run Run) error {
	if run.RunID == "" || run.Sequence == "" {
		return ErrInvalidRun
	}
	started := run.StartedAt
	if started.IsZero() {
		started = time.Now()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO sequence_runs
		 (run_id, sequence, outcome, source, interruptable, error, started_at, duration_ms, ticks, actions)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID,
		run.Sequence,
		string(run.Outcome),
		run.Source,
		boolToInt(run.Interruptable),
		run.Error,
		started.UTC().Format(timestampLayout),
		run.DurationMS,
		run.Ticks,
		run.Actions,
	)
	if err != nil {
		return fmt.Errorf("inserting sequence run: %w", err)
	}
	return nil
}

// ListRuns returns recent runs, newest first.
func (r *SQLiteRepository) ListRuns(ctx context.Context, sequence string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	var (
		query strings.Builder
		args  []any
	)
	query.WriteString(`SELECT run_id, sequence, outcome, source, interruptable, error, started_at, duration_ms, ticks, actions
		 FROM sequence_runs`)
	if sequence != "" {
		query.WriteString(" WHERE sequence = ?")
		args = append(args, sequence)
	}
	query.WriteString(" ORDER BY started_at DESC, run_id LIMIT ?")
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying sequence runs: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0, limit)
	for rows.Next() {
		var (
			run           Run
			outcome       string
			interruptable int
			startedAt     string
		)
		if err := rows.Scan(&run.RunID, &run.Sequence, &outcome, &run.Source, &interruptable,
			&run.Error, &startedAt, &run.DurationMS, &run.Ticks, &run.Actions); err != nil {
			return nil, fmt.Errorf("scanning sequence run: %w", err)
		}
		run.Outcome = executor.Outcome(outcome)
		run.Interruptable = interruptable != 0
		if run.StartedAt, err = time.Parse(timestampLayout, startedAt); err != nil {
			return nil, fmt.Errorf("parsing started_at: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sequence runs: %w", err)
	}
	return runs, nil
}

// Prune deletes runs that started more than olderThan ago and returns the
// number removed.
func (r *SQLiteRepository) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, ErrInvalidRetention
	}

	cutoff := time.Now().UTC().Add(-olderThan).Format(timestampLayout)
	result, err := r.db.ExecContext(ctx, "DELETE FROM sequence_runs WHERE started_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("deleting sequence runs: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	return n, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
