package moviestore

import (
	"context"
	"embed"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"
)

// historyLedger records applied history schema versions. The database is
// shared with whatever created the movies table.
const historyLedger = "plotfill_migrations"

//go:embed migrations/*.sql
var historyFS embed.FS

// historyStep is one embedded history schema file, e.g. 001_history.sql.
type historyStep struct {
	version int
	name    string
	ddl     string
}

func historySteps() ([]historyStep, error) {
	files, err := historyFS.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("list history schema files: %w", err)
	}

	steps := make([]historyStep, 0, len(files))
	for _, file := range files {
		if file.IsDir() || path.Ext(file.Name()) != ".sql" {
			continue
		}
		name := strings.TrimSuffix(file.Name(), ".sql")
		prefix, _, _ := strings.Cut(name, "_")
		version, err := strconv.Atoi(prefix)
		if err != nil || version <= 0 {
			return nil, fmt.Errorf("history schema file %s: name must start with a positive version number", file.Name())
		}
		ddl, err := historyFS.ReadFile("migrations/" + file.Name())
		if err != nil {
			return nil, fmt.Errorf("read history schema %s: %w", file.Name(), err)
		}
		steps = append(steps, historyStep{version: version, name: name, ddl: string(ddl)})
	}
	sort.Slice(steps, func(i, j int) bool { return steps[i].version < steps[j].version })
	for i := 1; i < len(steps); i++ {
		if steps[i].version == steps[i-1].version {
			return nil, fmt.Errorf("history schema version %d defined twice", steps[i].version)
		}
	}
	return steps, nil
}

// ensureHistorySchema creates or upgrades backfill_runs and plot_matches. All
// pending steps are applied in one transaction.
func (s *Store) ensureHistorySchema(ctx context.Context) error {
	steps, err := historySteps()
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin history schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	ledgerDDL := "CREATE TABLE IF NOT EXISTS " + historyLedger + " (version INTEGER PRIMARY KEY, name TEXT NOT NULL, applied_at TEXT NOT NULL)"
	if _, err := tx.ExecContext(ctx, ledgerDDL); err != nil {
		return fmt.Errorf("create %s: %w", historyLedger, err)
	}

	var current int
	if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM "+historyLedger).Scan(&current); err != nil {
		return fmt.Errorf("read history schema version: %w", err)
	}

	appliedAt := time.Now().UTC().Format(timestampLayout)
	for _, step := range steps {
		if step.version <= current {
			continue
		}
		if _, err := tx.ExecContext(ctx, step.ddl); err != nil {
			return fmt.Errorf("apply history schema %s: %w", step.name, err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO "+historyLedger+" (version, name, applied_at) VALUES (?, ?, ?)", step.version, step.name, appliedAt); err != nil {
			return fmt.Errorf("record history schema %s: %w", step.name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit history schema: %w", err)
	}
	return nil
}
