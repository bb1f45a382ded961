package moviestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// timestampLayout is fixed width so started_at sorts chronologically as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run is one row of backfill history.
type Run struct {
	ID               string
	StartedAt        time.Time
	FinishedAt       time.Time
	ReferenceFiles   int
	SkippedFiles     int
	ReferenceEntries int
	Targets          int
	Resolved         int
	Applied          int64
	StrategyCounts   map[string]int
}

// Duration returns how long the run took.
func (r Run) Duration() time.Duration {
	if r.StartedAt.IsZero() || r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// RecordRun inserts a backfill_runs row.
func (s *Store) RecordRun(ctx context.Context, run Run) error {
	if strings.TrimSpace(run.ID) == "" {
		return errors.New("run id is required")
	}
	var countsJSON any
	if len(run.StrategyCounts) > 0 {
		data, err := json.Marshal(run.StrategyCounts)
		if err != nil {
			return fmt.Errorf("marshal strategy counts: %w", err)
		}
		countsJSON = string(data)
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO backfill_runs (
            run_id, started_at, finished_at, reference_files, skipped_files,
            reference_entries, targets, resolved, applied, strategy_counts_json
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC().Format(timestampLayout),
		run.FinishedAt.UTC().Format(timestampLayout),
		run.ReferenceFiles,
		run.SkippedFiles,
		run.ReferenceEntries,
		run.Targets,
		run.Resolved,
		run.Applied,
		countsJSON,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first. A non-positive limit returns all runs.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if ok, err := s.historyReadable(ctx, "backfill_runs"); err != nil || !ok {
		return nil, err
	}
	query := `SELECT run_id, started_at, finished_at, reference_files, skipped_files,
        reference_entries, targets, resolved, applied, strategy_counts_json
        FROM backfill_runs ORDER BY started_at DESC, run_id`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// MatchCount returns the number of plot_matches rows recorded for a run.
func (s *Store) MatchCount(ctx context.Context, runID string) (int, error) {
	if ok, err := s.historyReadable(ctx, "plot_matches"); err != nil || !ok {
		return 0, err
	}
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM plot_matches WHERE run_id = ?", runID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count matches for run %s: %w", runID, err)
	}
	return count, nil
}

// historyReadable reports whether a history table can be queried. A read-only
// store may sit on a database that has never been backfilled.
func (s *Store) historyReadable(ctx context.Context, table string) (bool, error) {
	if !s.readOnly {
		return true, nil
	}
	return s.tableExists(ctx, table)
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (Run, error) {
	var (
		run         Run
		startedRaw  string
		finishedRaw string
		countsRaw   sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&startedRaw,
		&finishedRaw,
		&run.ReferenceFiles,
		&run.SkippedFiles,
		&run.ReferenceEntries,
		&run.Targets,
		&run.Resolved,
		&run.Applied,
		&countsRaw,
	); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.StartedAt = parseTime(startedRaw)
	run.FinishedAt = parseTime(finishedRaw)
	if countsRaw.Valid && countsRaw.String != "" {
		if err := json.Unmarshal([]byte(countsRaw.String), &run.StrategyCounts); err != nil {
			return Run{}, fmt.Errorf("decode strategy counts for run %s: %w", run.ID, err)
		}
	}
	return run, nil
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	parsed, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return parsed
}
