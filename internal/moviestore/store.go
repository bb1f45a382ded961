package moviestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"plotfill/internal/titlematch"
)

// Store wraps the movies database.
type Store struct {
	db       *sql.DB
	path     string
	readOnly bool
}

// Open connects to an existing movies database and creates or upgrades the
// backfill history tables.
func Open(ctx context.Context, path string) (*Store, error) {
	store, err := openDB(ctx, path, "PRAGMA journal_mode=WAL", "PRAGMA busy_timeout = 5000")
	if err != nil {
		return nil, err
	}
	if err := store.ensureHistorySchema(ctx); err != nil {
		_ = store.db.Close()
		return nil, err
	}
	return store, nil
}

// OpenReadOnly connects for reporting. The history schema is not created and
// the journal mode is left alone, so the database file is not modified. Writes
// through the returned store fail.
func OpenReadOnly(ctx context.Context, path string) (*Store, error) {
	store, err := openDB(ctx, path, "PRAGMA query_only = ON", "PRAGMA busy_timeout = 5000")
	if err != nil {
		return nil, err
	}
	store.readOnly = true
	return store, nil
}

func openDB(ctx context.Context, path string, pragmas ...string) (*Store, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat database: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("database %q is a directory", path)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Connection pragmas only hold for the connection that ran them.
	db.SetMaxOpenConns(1)

	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	exists, err := store.tableExists(ctx, "movies")
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if !exists {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", path, ErrMissingMoviesTable)
	}
	return store, nil
}

// Path returns the database file backing the store.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// EnsurePlotColumn adds movies.plot when absent and reports whether it did so.
func (s *Store) EnsurePlotColumn(ctx context.Context) (bool, error) {
	present, err := s.hasPlotColumn(ctx)
	if err != nil {
		return false, err
	}
	if present {
		return false, nil
	}
	if _, err := s.db.ExecContext(ctx, "ALTER TABLE movies ADD COLUMN plot TEXT"); err != nil {
		return false, fmt.Errorf("add plot column: %w", err)
	}
	return true, nil
}

// MissingPlots returns every movie whose plot is still NULL, ordered by id.
func (s *Store) MissingPlots(ctx context.Context) ([]titlematch.Target, error) {
	present, err := s.hasPlotColumn(ctx)
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, ErrMissingPlotColumn
	}
	return s.queryTargets(ctx, "SELECT id, title FROM movies WHERE plot IS NULL ORDER BY id")
}

// AllTitles returns every movie regardless of plot state, ordered by id.
func (s *Store) AllTitles(ctx context.Context) ([]titlematch.Target, error) {
	return s.queryTargets(ctx, "SELECT id, title FROM movies ORDER BY id")
}

// ApplyPlots writes resolved plots in one transaction. Rows that already carry
// a plot are left untouched. When runID is non-empty an audit row is recorded
// in plot_matches for each movie actually updated. The returned count covers
// updated movies only.
func (s *Store) ApplyPlots(ctx context.Context, runID string, assignments []titlematch.Assignment) (int64, error) {
	if len(assignments) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin apply tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	update, err := tx.PrepareContext(ctx, "UPDATE movies SET plot = ? WHERE id = ? AND plot IS NULL")
	if err != nil {
		return 0, fmt.Errorf("prepare plot update: %w", err)
	}
	defer update.Close()

	var audit *sql.Stmt
	if runID != "" {
		audit, err = tx.PrepareContext(ctx, `INSERT INTO plot_matches (run_id, movie_id, strategy, score, matched_at)
            VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return 0, fmt.Errorf("prepare audit insert: %w", err)
		}
		defer audit.Close()
	}

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	var applied int64
	for _, assignment := range assignments {
		res, err := update.ExecContext(ctx, assignment.Plot, assignment.ID)
		if err != nil {
			return 0, fmt.Errorf("update movie %d: %w", assignment.ID, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("rows affected for movie %d: %w", assignment.ID, err)
		}
		if affected == 0 {
			continue
		}
		applied += affected
		if audit == nil {
			continue
		}
		if _, err := audit.ExecContext(ctx, runID, assignment.ID, assignment.Tier, assignment.Score, timestamp); err != nil {
			return 0, fmt.Errorf("record match for movie %d: %w", assignment.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit plots: %w", err)
	}
	return applied, nil
}

// Coverage summarises how many movies carry a plot.
type Coverage struct {
	Total    int
	WithPlot int
}

// Missing returns the number of movies without a plot.
func (c Coverage) Missing() int {
	return c.Total - c.WithPlot
}

// Rate returns the fraction of movies with a plot, or 0 for an empty table.
func (c Coverage) Rate() float64 {
	if c.Total == 0 {
		return 0
	}
	return float64(c.WithPlot) / float64(c.Total)
}

// Coverage counts movies and those with a non-null plot.
func (s *Store) Coverage(ctx context.Context) (Coverage, error) {
	var cov Coverage
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM movies").Scan(&cov.Total); err != nil {
		return Coverage{}, fmt.Errorf("count movies: %w", err)
	}
	present, err := s.hasPlotColumn(ctx)
	if err != nil {
		return Coverage{}, err
	}
	if !present {
		return cov, nil
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM movies WHERE plot IS NOT NULL").Scan(&cov.WithPlot); err != nil {
		return Coverage{}, fmt.Errorf("count plots: %w", err)
	}
	return cov, nil
}

func (s *Store) queryTargets(ctx context.Context, query string) ([]titlematch.Target, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query movies: %w", err)
	}
	defer rows.Close()

	var targets []titlematch.Target
	for rows.Next() {
		var (
			id    int64
			title sql.NullString
		)
		if err := rows.Scan(&id, &title); err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		targets = append(targets, titlematch.Target{ID: id, Title: title.String})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movies: %w", err)
	}
	return targets, nil
}

func (s *Store) tableExists(ctx context.Context, name string) (bool, error) {
	var found string
	err := s.db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup table %s: %w", name, err)
	}
	return true, nil
}

func (s *Store) hasPlotColumn(ctx context.Context) (bool, error) {
	rows, err := s.db.QueryContext(ctx, "PRAGMA table_info(movies)")
	if err != nil {
		return false, fmt.Errorf("inspect movies columns: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid        int
			name       string
			colType    sql.NullString
			notNull    int
			defaultVal sql.NullString
			primaryKey int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &defaultVal, &primaryKey); err != nil {
			return false, fmt.Errorf("scan column info: %w", err)
		}
		if strings.EqualFold(name, "plot") {
			return true, nil
		}
	}
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("iterate column info: %w", err)
	}
	return false, nil
}
