package backfill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"plotfill/internal/config"
	"plotfill/internal/logging"
	"plotfill/internal/moviestore"
	"plotfill/internal/reference"
	"plotfill/internal/titlematch"
)

// Options configures a backfill run.
type Options struct {
	Config *config.Config
	Logger *slog.Logger
}

// Summary reports the outcome of a run.
type Summary struct {
	RunID           string
	DryRun          bool
	PlotColumnAdded bool
	Files           []string
	Skipped         []reference.FileError
	References      int
	Report          titlematch.Report
	Applied         int64
	Coverage        moviestore.Coverage
	Samples         []titlematch.Assignment
	StartedAt       time.Time
	FinishedAt      time.Time
}

// Run resolves plots for every movie missing one and, unless configured as a
// dry run, writes them back to the database.
func Run(ctx context.Context, opts Options) (*Summary, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, errors.New("backfill: config is required")
	}
	logger := logging.NewComponentLogger(opts.Logger, "backfill")

	lockPath := cfg.LockPath()
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", lockPath, ErrRunInProgress)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release run lock", logging.String("lock", lockPath), logging.Error(err))
		}
	}()

	summary := &Summary{
		RunID:     uuid.NewString(),
		DryRun:    cfg.Backfill.DryRun,
		StartedAt: time.Now().UTC(),
	}
	logger = logger.With(logging.String(logging.FieldRunID, summary.RunID))
	logger.Info("backfill started",
		logging.String("database", cfg.Paths.Database),
		logging.Bool("dry_run", summary.DryRun),
	)

	open := moviestore.Open
	if summary.DryRun {
		open = moviestore.OpenReadOnly
	}
	store, err := open(ctx, cfg.Paths.Database)
	if err != nil {
		return nil, fmt.Errorf("open movie store: %w", err)
	}
	defer store.Close()

	if !summary.DryRun {
		added, err := store.EnsurePlotColumn(ctx)
		if err != nil {
			return nil, err
		}
		summary.PlotColumnAdded = added
		if added {
			logger.Info("added plot column to movies table")
		}
	}

	idx, loaded, err := loadIndices(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	summary.Files = loaded.Files
	summary.Skipped = loaded.Skipped
	summary.References = idx.Entries()

	targets, err := pendingTargets(ctx, store)
	if err != nil {
		return nil, err
	}

	resolver := newResolver(cfg, idx)
	assignments := resolver.ResolveAll(targets)
	summary.Report = titlematch.Summarize(len(targets), assignments)
	summary.Samples = sample(assignments, cfg.Backfill.SampleSize)

	for _, name := range titlematch.TierNames() {
		if count := summary.Report.PerStrategy[name]; count > 0 {
			logger.Debug("strategy matches", logging.String(logging.FieldStrategy, name), logging.Int("matches", count))
		}
	}

	if !summary.DryRun {
		auditID := ""
		if cfg.Backfill.RecordHistory {
			auditID = summary.RunID
		}
		applied, err := store.ApplyPlots(ctx, auditID, assignments)
		if err != nil {
			return nil, fmt.Errorf("apply plots: %w", err)
		}
		summary.Applied = applied
	}

	summary.Coverage, err = store.Coverage(ctx)
	if err != nil {
		return nil, err
	}
	summary.FinishedAt = time.Now().UTC()

	if !summary.DryRun && cfg.Backfill.RecordHistory {
		if err := store.RecordRun(ctx, runRecord(summary)); err != nil {
			logger.Warn("failed to record backfill run",
				logging.Error(err),
				logging.String(logging.FieldImpact, "plots were applied but the run is missing from history"),
			)
		}
	}

	logger.Info("backfill complete",
		logging.Int("targets", summary.Report.Targets),
		logging.Int("resolved", summary.Report.Resolved),
		logging.Int("unresolved", summary.Report.Unresolved),
		logging.Int64("applied", summary.Applied),
		logging.Float64("coverage", summary.Coverage.Rate()),
	)
	return summary, nil
}

func loadIndices(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*titlematch.Indices, reference.Result, error) {
	paths, err := reference.Discover(cfg.Paths.ReferenceDir, cfg.Paths.ReferenceGlob)
	if err != nil {
		return nil, reference.Result{}, fmt.Errorf("discover reference files: %w", err)
	}
	loaded, err := reference.LoadAll(ctx, paths, logger)
	if err != nil {
		return nil, loaded, fmt.Errorf("load reference files from %s: %w", cfg.Paths.ReferenceDir, err)
	}
	idx := titlematch.Build(loaded.Entries)
	logger.Info("reference indices built",
		logging.Int("files", len(loaded.Files)),
		logging.Int("skipped", len(loaded.Skipped)),
		logging.Int("entries", idx.Entries()),
	)
	return idx, loaded, nil
}

// pendingTargets returns the movies without a plot. Without a plot column,
// which only happens on a dry run, every movie is pending.
func pendingTargets(ctx context.Context, store *moviestore.Store) ([]titlematch.Target, error) {
	targets, err := store.MissingPlots(ctx)
	if errors.Is(err, moviestore.ErrMissingPlotColumn) {
		return store.AllTitles(ctx)
	}
	return targets, err
}

func newResolver(cfg *config.Config, idx *titlematch.Indices) *titlematch.Resolver {
	return titlematch.NewResolver(idx,
		titlematch.WithFuzzy(cfg.Matching.FuzzyEnabled),
		titlematch.WithThresholds(cfg.Matching.FuzzyCandidateThreshold, cfg.Matching.FuzzyAcceptThreshold),
	)
}

func sample(assignments []titlematch.Assignment, n int) []titlematch.Assignment {
	if n <= 0 || len(assignments) == 0 {
		return nil
	}
	if n > len(assignments) {
		n = len(assignments)
	}
	out := make([]titlematch.Assignment, n)
	copy(out, assignments[:n])
	return out
}

func runRecord(summary *Summary) moviestore.Run {
	return moviestore.Run{
		ID:               summary.RunID,
		StartedAt:        summary.StartedAt,
		FinishedAt:       summary.FinishedAt,
		ReferenceFiles:   len(summary.Files),
		SkippedFiles:     len(summary.Skipped),
		ReferenceEntries: summary.References,
		Targets:          summary.Report.Targets,
		Resolved:         summary.Report.Resolved,
		Applied:          summary.Applied,
		StrategyCounts:   summary.Report.PerStrategy,
	}
}
