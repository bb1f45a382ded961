package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

const (
	scanBufferInitial = 64 * 1024
	scanBufferMax     = 1024 * 1024
	// DefaultPollInterval is how often Follow checks the file for growth.
	DefaultPollInterval = 250 * time.Millisecond
)

// Options narrows which lines are returned.
type Options struct {
	// Lines caps the number of lines Last returns. Zero or negative means all.
	Lines int
	// RunID keeps only lines mentioning the given backfill run.
	RunID string
}

func (o Options) keep(line string) bool {
	return o.RunID == "" || strings.Contains(line, o.RunID)
}

// Last returns the final matching lines of path and the byte offset of the end
// of the file, suitable as the starting point for Follow. A missing file yields
// no lines and offset zero.
func Last(path string, opts Options) ([]string, int64, error) {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, 0, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		return nil, 0, fmt.Errorf("log path %q is a directory", path)
	}

	unbounded := opts.Lines <= 0
	var (
		ring  []string
		next  int
		count int
	)
	if !unbounded {
		ring = make([]string, opts.Lines)
	}

	offset, err := scanLines(file, 0, func(line string) {
		if !opts.keep(line) {
			return
		}
		if unbounded {
			ring = append(ring, line)
			count++
			return
		}
		ring[next] = line
		next = (next + 1) % len(ring)
		if count < len(ring) {
			count++
		}
	})
	if err != nil {
		return nil, 0, err
	}

	if unbounded || count < len(ring) {
		return ring[:count], offset, nil
	}
	lines := make([]string, count)
	for i := range lines {
		lines[i] = ring[(next+i)%len(ring)]
	}
	return lines, offset, nil
}

// Follow emits matching lines appended to path after offset until ctx is done.
// It returns nil when the context is cancelled.
func Follow(ctx context.Context, path string, offset int64, opts Options, interval time.Duration, emit func(string)) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		next, err := readFrom(path, offset, opts, emit)
		if err != nil {
			return err
		}
		offset = next

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func readFrom(path string, offset int64, opts Options, emit func(string)) (int64, error) {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return offset, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return offset, fmt.Errorf("stat log file: %w", err)
	}
	if info.Size() < offset {
		offset = 0
	}
	if info.Size() == offset {
		return offset, nil
	}

	return scanLines(file, offset, func(line string) {
		if opts.keep(line) {
			emit(line)
		}
	})
}

// scanLines reads complete lines from offset and returns the offset just past
// the last newline consumed. A trailing partial line is left for the next read.
func scanLines(file *os.File, offset int64, fn func(string)) (int64, error) {
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return offset, fmt.Errorf("seek log file: %w", err)
	}

	reader := bufio.NewReaderSize(file, scanBufferInitial)
	pos := offset
	for {
		line, err := reader.ReadString('\n')
		if errors.Is(err, io.EOF) {
			return pos, nil
		}
		if err != nil {
			return pos, fmt.Errorf("read log file: %w", err)
		}
		pos += int64(len(line))
		line = strings.TrimRight(line, "\r\n")
		if len(line) > scanBufferMax {
			line = line[:scanBufferMax]
		}
		fn(line)
	}
}
