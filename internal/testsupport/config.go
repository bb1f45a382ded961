package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"plotfill/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The reference directory is created; the database file is not.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.Database = filepath.Join(base, "movies.db")
	cfgVal.Paths.ReferenceDir = filepath.Join(base, "reference")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Logging.Format = "json"

	if err := os.MkdirAll(cfgVal.Paths.ReferenceDir, 0o755); err != nil {
		t.Fatalf("mkdir reference dir: %v", err)
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithFuzzy toggles the fuzzy fallback tier on the test config.
func WithFuzzy(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Matching.FuzzyEnabled = enabled
	}
}

// WithDryRun marks the test config as a dry run.
func WithDryRun() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Backfill.DryRun = true
	}
}

// WithoutHistory disables backfill_runs and plot_matches recording.
func WithoutHistory() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Backfill.RecordHistory = false
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.Database)
}
