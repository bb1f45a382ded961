package reference

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultPattern matches every CSV file in the reference directory.
const DefaultPattern = "*.csv"

// Discover returns the regular files in dir matching pattern, sorted lexically.
func Discover(dir, pattern string) ([]string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("reference directory is required")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat reference directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("reference path %q is not a directory", dir)
	}
	if strings.TrimSpace(pattern) == "" {
		pattern = DefaultPattern
	}

	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}

	files := make([]string, 0, len(matches))
	for _, match := range matches {
		fi, err := os.Stat(match)
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}
		files = append(files, match)
	}
	sort.Strings(files)
	return files, nil
}
