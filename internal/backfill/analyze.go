package backfill

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"plotfill/internal/logging"
	"plotfill/internal/moviestore"
	"plotfill/internal/titlematch"
)

const (
	longTitleRunes  = 50
	shortTitleRunes = 10
)

var (
	yearPattern   = regexp.MustCompile(`\(\p{Nd}{4}\)`)
	numberPattern = regexp.MustCompile(`\p{Nd}+`)
)

// PatternCounts tallies title shapes that commonly defeat exact matching.
type PatternCounts struct {
	WithYears    int
	WithColons   int
	WithNumbers  int
	WithArticles int
	VeryLong     int
	VeryShort    int
}

// Analysis describes how the store's titles line up with the reference data.
type Analysis struct {
	Titles                 int
	Missing                int
	ReferenceTitles        int
	ExactOverlap           int
	CaseInsensitiveOverlap int
	Patterns               PatternCounts
	Unmatched              []titlematch.Target
}

// Analyze loads the reference data and the store's titles without modifying
// either. Patterns and Unmatched cover only movies still missing a plot;
// Unmatched is capped at the configured sample size.
func Analyze(ctx context.Context, opts Options) (*Analysis, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, errors.New("analyze: config is required")
	}
	logger := logging.NewComponentLogger(opts.Logger, "analyze")

	store, err := moviestore.OpenReadOnly(ctx, cfg.Paths.Database)
	if err != nil {
		return nil, fmt.Errorf("open movie store: %w", err)
	}
	defer store.Close()

	idx, loaded, err := loadIndices(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	all, err := store.AllTitles(ctx)
	if err != nil {
		return nil, err
	}
	missing, err := pendingTargets(ctx, store)
	if err != nil {
		return nil, err
	}

	storeTitles := make([]string, 0, len(all))
	for _, movie := range all {
		storeTitles = append(storeTitles, movie.Title)
	}
	refTitles := make([]string, 0, len(loaded.Entries))
	for _, entry := range loaded.Entries {
		refTitles = append(refTitles, entry.Title)
	}
	exact, folded, distinct := overlap(storeTitles, refTitles)

	missingTitles := make([]string, 0, len(missing))
	for _, movie := range missing {
		missingTitles = append(missingTitles, movie.Title)
	}

	analysis := &Analysis{
		Titles:                 len(all),
		Missing:                len(missing),
		ReferenceTitles:        distinct,
		ExactOverlap:           exact,
		CaseInsensitiveOverlap: folded,
		Patterns:               CountPatterns(missingTitles),
	}

	limit := cfg.Backfill.SampleSize
	if limit > 0 {
		resolver := newResolver(cfg, idx)
		for _, movie := range missing {
			if len(analysis.Unmatched) >= limit {
				break
			}
			if _, ok := resolver.Resolve(movie); !ok {
				analysis.Unmatched = append(analysis.Unmatched, movie)
			}
		}
	}

	logger.Info("analysis complete",
		logging.Int("titles", analysis.Titles),
		logging.Int("missing", analysis.Missing),
		logging.Int("exact_overlap", analysis.ExactOverlap),
		logging.Int("case_insensitive_overlap", analysis.CaseInsensitiveOverlap),
	)
	return analysis, nil
}

// CountPatterns classifies titles by shape. A title may fall in several buckets.
func CountPatterns(titles []string) PatternCounts {
	var counts PatternCounts
	for _, title := range titles {
		if yearPattern.MatchString(title) {
			counts.WithYears++
		}
		if strings.Contains(title, ":") {
			counts.WithColons++
		}
		if numberPattern.MatchString(title) {
			counts.WithNumbers++
		}
		if _, ok := titlematch.StripArticle(title); ok {
			counts.WithArticles++
		}
		runes := utf8.RuneCountInString(title)
		if runes > longTitleRunes {
			counts.VeryLong++
		}
		if runes < shortTitleRunes {
			counts.VeryShort++
		}
	}
	return counts
}

// overlap counts distinct titles present on both sides, raw and after
// lower-casing, and returns the number of distinct reference titles.
func overlap(storeTitles, refTitles []string) (exact, folded, distinct int) {
	caser := cases.Lower(language.Und)

	refRaw := make(map[string]struct{}, len(refTitles))
	refFolded := make(map[string]struct{}, len(refTitles))
	for _, title := range refTitles {
		refRaw[title] = struct{}{}
		refFolded[caser.String(title)] = struct{}{}
	}

	seenRaw := make(map[string]struct{}, len(storeTitles))
	seenFolded := make(map[string]struct{}, len(storeTitles))
	for _, title := range storeTitles {
		if _, dup := seenRaw[title]; !dup {
			seenRaw[title] = struct{}{}
			if _, ok := refRaw[title]; ok {
				exact++
			}
		}
		lower := caser.String(title)
		if _, dup := seenFolded[lower]; !dup {
			seenFolded[lower] = struct{}{}
			if _, ok := refFolded[lower]; ok {
				folded++
			}
		}
	}
	return exact, folded, len(refRaw)
}
