package reference

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"plotfill/internal/logging"
	"plotfill/internal/titlematch"
)

const (
	titleColumn = "title"
	plotColumn  = "plot"
	utf8BOM     = "\ufeff"
)

// Result is the outcome of loading a set of reference files.
type Result struct {
	Entries []titlematch.ReferenceEntry
	Files   []string
	Skipped []FileError
}

// LoadAll loads every path in order, skipping files that fail to parse.
// ErrNoReferenceData is returned when none of the files loaded.
func LoadAll(ctx context.Context, paths []string, logger *slog.Logger) (Result, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	var result Result
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		entries, err := LoadFile(ctx, path)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, ctxErr
			}
			logger.Warn("skipping reference file",
				logging.String(logging.FieldFile, path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "titles from this file are not indexed"),
			)
			result.Skipped = append(result.Skipped, FileError{Path: path, Err: err})
			continue
		}
		logger.Info("reference file loaded",
			logging.String(logging.FieldFile, path),
			logging.Int("entries", len(entries)),
		)
		result.Files = append(result.Files, path)
		result.Entries = append(result.Entries, entries...)
	}

	if len(result.Files) == 0 {
		return result, ErrNoReferenceData
	}
	return result, nil
}

// LoadFile parses one CSV file with title and plot columns. Header names are
// matched case-insensitively. Rows with an empty title or plot after trimming
// are dropped.
func LoadFile(ctx context.Context, path string) ([]titlematch.ReferenceEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open reference csv: %w", err)
	}
	defer f.Close()
	return Parse(ctx, f)
}

// Parse reads title,plot records from r. Input that is not valid UTF-8 is an
// error for the whole file.
func Parse(ctx context.Context, r io.Reader) ([]titlematch.ReferenceEntry, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("reference csv is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	if err := checkUTF8(reader, header); err != nil {
		return nil, err
	}

	titleIdx, plotIdx := -1, -1
	for i, col := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, utf8BOM)))
		switch {
		case name == titleColumn && titleIdx < 0:
			titleIdx = i
		case name == plotColumn && plotIdx < 0:
			plotIdx = i
		}
	}
	if titleIdx < 0 {
		return nil, fmt.Errorf("missing required column %q", titleColumn)
	}
	if plotIdx < 0 {
		return nil, fmt.Errorf("missing required column %q", plotColumn)
	}

	var entries []titlematch.ReferenceEntry
	for row := 0; ; row++ {
		if row%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if err := checkUTF8(reader, record); err != nil {
			return nil, err
		}
		title := field(record, titleIdx)
		plot := field(record, plotIdx)
		if title == "" || plot == "" {
			continue
		}
		entries = append(entries, titlematch.ReferenceEntry{Title: title, Plot: plot})
	}
	return entries, nil
}

// checkUTF8 rejects a record holding bytes that are not valid UTF-8, in any
// column, so a mis-encoded file is skipped as a whole.
func checkUTF8(reader *csv.Reader, record []string) error {
	for i, value := range record {
		if utf8.ValidString(value) {
			continue
		}
		line, col := reader.FieldPos(i)
		return fmt.Errorf("line %d, column %d: invalid UTF-8", line, col)
	}
	return nil
}

func field(record []string, idx int) string {
	if idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
