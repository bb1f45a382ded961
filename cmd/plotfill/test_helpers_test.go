package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"plotfill/internal/config"
	"plotfill/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("PLOTFILL_DATABASE", "")
	t.Setenv("PLOTFILL_REFERENCE_DIR", "")

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func (e *cliTestEnv) seedLibrary(t *testing.T) {
	t.Helper()
	testsupport.CreateMoviesDB(t, e.cfg.Paths.Database, false,
		testsupport.Movie{Title: "The Matrix"},
		testsupport.Movie{Title: "Se7en"},
		testsupport.Movie{Title: "Star Wars"},
		testsupport.Movie{Title: "Heat"},
	)
	testsupport.WriteReferenceCSV(t, filepath.Join(e.cfg.Paths.ReferenceDir, "movies.csv"),
		[2]string{"The Matrix (1999 film)", "A hacker learns the truth."},
		[2]string{"Seven", "Two detectives hunt a killer."},
		[2]string{"Star Wars: A New Hope", "A farm boy joins a rebellion."},
	)
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.ExecuteContext(t.Context())
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func requireNotContains(t *testing.T, output, substr string) {
	t.Helper()
	if strings.Contains(output, substr) {
		t.Fatalf("expected %q not to contain %q", output, substr)
	}
}
