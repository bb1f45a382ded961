package testsupport

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
)

// WriteReferenceCSV writes a title,plot CSV file with the given rows.
func WriteReferenceCSV(t testing.TB, path string, rows ...[2]string) {
	t.Helper()

	records := make([][]string, 0, len(rows)+1)
	records = append(records, []string{"title", "plot"})
	for _, row := range rows {
		records = append(records, []string{row[0], row[1]})
	}
	WriteCSV(t, path, records)
}

// WriteCSV writes arbitrary records, header included, to path.
func WriteCSV(t testing.TB, path string, records [][]string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteFile writes raw content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
