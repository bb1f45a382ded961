package backfill_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"

	"plotfill/internal/backfill"
	"plotfill/internal/config"
	"plotfill/internal/moviestore"
	"plotfill/internal/reference"
	"plotfill/internal/testsupport"
	"plotfill/internal/titlematch"
)

func seedLibrary(t *testing.T, cfg *config.Config) {
	t.Helper()
	testsupport.CreateMoviesDB(t, cfg.Paths.Database, false,
		testsupport.Movie{Title: "The Matrix"},
		testsupport.Movie{Title: "Se7en"},
		testsupport.Movie{Title: "Star Wars"},
		testsupport.Movie{Title: "Heat"},
	)
	testsupport.WriteReferenceCSV(t, filepath.Join(cfg.Paths.ReferenceDir, "movies.csv"),
		[2]string{"The Matrix (1999 film)", "A hacker learns the truth."},
		[2]string{"Seven", "Two detectives hunt a killer."},
		[2]string{"Star Wars: A New Hope", "A farm boy joins a rebellion."},
	)
}

func TestRunAppliesPlotsAndRecordsHistory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	seedLibrary(t, cfg)
	ctx := context.Background()

	summary, err := backfill.Run(ctx, backfill.Options{Config: cfg})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.RunID == "" {
		t.Fatal("expected run id")
	}
	if !summary.PlotColumnAdded {
		t.Fatal("expected plot column to be added")
	}
	if summary.References != 3 || len(summary.Files) != 1 || len(summary.Skipped) != 0 {
		t.Fatalf("unexpected reference summary: %+v", summary)
	}
	if summary.Report.Targets != 4 || summary.Report.Resolved != 2 || summary.Report.Unresolved != 2 {
		t.Fatalf("unexpected report: %+v", summary.Report)
	}
	if summary.Report.PerStrategy[titlematch.StrategyNormalized] != 1 || summary.Report.PerStrategy[titlematch.StrategyNoColon] != 1 {
		t.Fatalf("unexpected strategy counts: %v", summary.Report.PerStrategy)
	}
	if summary.Applied != 2 {
		t.Fatalf("expected 2 applied, got %d", summary.Applied)
	}
	if summary.Coverage.Total != 4 || summary.Coverage.WithPlot != 2 {
		t.Fatalf("unexpected coverage: %+v", summary.Coverage)
	}
	if len(summary.Samples) != 2 || summary.Samples[0].ID != 1 || summary.Samples[1].ID != 3 {
		t.Fatalf("unexpected samples: %#v", summary.Samples)
	}

	if plot, ok := testsupport.PlotOf(t, cfg.Paths.Database, 1); !ok || plot != "A hacker learns the truth." {
		t.Fatalf("unexpected plot for The Matrix: %q (%v)", plot, ok)
	}
	if plot, ok := testsupport.PlotOf(t, cfg.Paths.Database, 3); !ok || plot != "A farm boy joins a rebellion." {
		t.Fatalf("unexpected plot for Star Wars: %q (%v)", plot, ok)
	}
	if _, ok := testsupport.PlotOf(t, cfg.Paths.Database, 2); ok {
		t.Fatal("Se7en should stay unresolved")
	}

	store := testsupport.MustOpenStore(t, cfg.Paths.Database)
	runs, err := store.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRuns failed: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != summary.RunID || runs[0].Applied != 2 || runs[0].StrategyCounts[titlematch.StrategyNoColon] != 1 {
		t.Fatalf("unexpected run history: %#v", runs)
	}
	matches, err := store.MatchCount(ctx, summary.RunID)
	if err != nil {
		t.Fatalf("MatchCount failed: %v", err)
	}
	if matches != 2 {
		t.Fatalf("expected 2 audit rows, got %d", matches)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	seedLibrary(t, cfg)
	ctx := context.Background()

	if _, err := backfill.Run(ctx, backfill.Options{Config: cfg}); err != nil {
		t.Fatalf("first Run failed: %v", err)
	}
	second, err := backfill.Run(ctx, backfill.Options{Config: cfg})
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	if second.PlotColumnAdded {
		t.Fatal("plot column should already exist")
	}
	if second.Report.Targets != 2 || second.Report.Resolved != 0 || second.Applied != 0 {
		t.Fatalf("unexpected second run: report=%+v applied=%d", second.Report, second.Applied)
	}
	if second.Coverage.WithPlot != 2 {
		t.Fatalf("coverage changed on second run: %+v", second.Coverage)
	}
}

func TestRunDryRunWritesNothing(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithDryRun())
	seedLibrary(t, cfg)
	ctx := context.Background()

	summary, err := backfill.Run(ctx, backfill.Options{Config: cfg})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !summary.DryRun || summary.PlotColumnAdded || summary.Applied != 0 {
		t.Fatalf("unexpected dry run summary: %+v", summary)
	}
	if summary.Report.Targets != 4 || summary.Report.Resolved != 2 {
		t.Fatalf("unexpected dry run report: %+v", summary.Report)
	}

	if testsupport.TableExists(t, cfg.Paths.Database, "backfill_runs") {
		t.Fatal("dry run should not create history tables")
	}

	store := testsupport.MustOpenStore(t, cfg.Paths.Database)
	if _, err := store.MissingPlots(ctx); !errors.Is(err, moviestore.ErrMissingPlotColumn) {
		t.Fatalf("dry run should not add the plot column, got %v", err)
	}
	runs, err := store.RecentRuns(ctx, 0)
	if err != nil {
		t.Fatalf("RecentRuns failed: %v", err)
	}
	if len(runs) != 0 {
		t.Fatalf("dry run should not record history, got %#v", runs)
	}
}

func TestRunWithoutHistory(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutHistory())
	seedLibrary(t, cfg)
	ctx := context.Background()

	summary, err := backfill.Run(ctx, backfill.Options{Config: cfg})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Applied != 2 {
		t.Fatalf("expected 2 applied, got %d", summary.Applied)
	}

	store := testsupport.MustOpenStore(t, cfg.Paths.Database)
	runs, err := store.RecentRuns(ctx, 0)
	if err != nil {
		t.Fatalf("RecentRuns failed: %v", err)
	}
	matches, err := store.MatchCount(ctx, summary.RunID)
	if err != nil {
		t.Fatalf("MatchCount failed: %v", err)
	}
	if len(runs) != 0 || matches != 0 {
		t.Fatalf("expected no history, got runs=%d matches=%d", len(runs), matches)
	}
}

func TestRunSkipsMalformedReferenceFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	seedLibrary(t, cfg)
	broken := filepath.Join(cfg.Paths.ReferenceDir, "broken.csv")
	testsupport.WriteFile(t, broken, "name,summary\nHeat,A heist.\n")

	summary, err := backfill.Run(context.Background(), backfill.Options{Config: cfg})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(summary.Skipped) != 1 || summary.Skipped[0].Path != broken {
		t.Fatalf("expected broken file to be skipped, got %#v", summary.Skipped)
	}
	if summary.Report.Resolved != 2 {
		t.Fatalf("unexpected report: %+v", summary.Report)
	}
}

func TestRunFailsWithoutReferenceData(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.CreateMoviesDB(t, cfg.Paths.Database, true, testsupport.Movie{Title: "Heat"})

	_, err := backfill.Run(context.Background(), backfill.Options{Config: cfg})
	if !errors.Is(err, reference.ErrNoReferenceData) {
		t.Fatalf("expected ErrNoReferenceData, got %v", err)
	}
}

func TestRunFailsWithoutDatabase(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if _, err := backfill.Run(context.Background(), backfill.Options{Config: cfg}); err == nil {
		t.Fatal("expected error for missing database")
	}
	if _, err := backfill.Run(context.Background(), backfill.Options{}); err == nil {
		t.Fatal("expected error for missing config")
	}
}

func TestRunRejectsConcurrentRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	seedLibrary(t, cfg)

	held := flock.New(cfg.LockPath())
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("TryLock: ok=%v err=%v", ok, err)
	}
	defer held.Unlock()

	if _, err := backfill.Run(context.Background(), backfill.Options{Config: cfg}); !errors.Is(err, backfill.ErrRunInProgress) {
		t.Fatalf("expected ErrRunInProgress, got %v", err)
	}
}

func TestRunHonoursFuzzyToggle(t *testing.T) {
	for _, enabled := range []bool{true, false} {
		cfg := testsupport.NewConfig(t, testsupport.WithFuzzy(enabled))
		testsupport.CreateMoviesDB(t, cfg.Paths.Database, true,
			testsupport.Movie{Title: "Pirates of the Carribean: Dead Man's Chest"},
		)
		testsupport.WriteReferenceCSV(t, filepath.Join(cfg.Paths.ReferenceDir, "movies.csv"),
			[2]string{"Pirates of the Caribbean: Dead Man's Chest", "Jack Sparrow owes a debt."},
		)

		summary, err := backfill.Run(context.Background(), backfill.Options{Config: cfg})
		if err != nil {
			t.Fatalf("Run (fuzzy=%v) failed: %v", enabled, err)
		}
		want := 0
		if enabled {
			want = 1
		}
		if summary.Report.PerStrategy[titlematch.StrategyFuzzy] != want || summary.Applied != int64(want) {
			t.Fatalf("fuzzy=%v: unexpected report %+v applied=%d", enabled, summary.Report, summary.Applied)
		}
	}
}
