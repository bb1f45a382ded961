package titlematch

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ReferenceEntry is one title/plot pair from the reference collection.
type ReferenceEntry struct {
	Title string
	Plot  string
}

// Index maps normalized titles to plot text. Keys keep the position of their
// first insertion; a later insertion under the same key replaces the plot.
type Index struct {
	positions map[string]int
	keys      []string
	plots     []string
}

func newIndex(capacity int) *Index {
	return &Index{
		positions: make(map[string]int, capacity),
		keys:      make([]string, 0, capacity),
		plots:     make([]string, 0, capacity),
	}
}

func (ix *Index) put(key, plot string) {
	if pos, ok := ix.positions[key]; ok {
		ix.plots[pos] = plot
		return
	}
	ix.positions[key] = len(ix.keys)
	ix.keys = append(ix.keys, key)
	ix.plots = append(ix.plots, plot)
}

// putFirst inserts only when the key is new.
func (ix *Index) putFirst(key, plot string) {
	if _, ok := ix.positions[key]; ok {
		return
	}
	ix.put(key, plot)
}

// Get returns the plot stored under key.
func (ix *Index) Get(key string) (string, bool) {
	if ix == nil {
		return "", false
	}
	pos, ok := ix.positions[key]
	if !ok {
		return "", false
	}
	return ix.plots[pos], true
}

// Len returns the number of distinct keys.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.keys)
}

// Keys returns the keys in first-insertion order.
func (ix *Index) Keys() []string {
	if ix == nil {
		return nil
	}
	out := make([]string, len(ix.keys))
	copy(out, ix.keys)
	return out
}

// Indices holds every lookup table derived from one reference collection.
// It is read-only after Build returns.
type Indices struct {
	exact  map[string]*Index
	folded map[string]*Index
	// fuzzyKeys are the lower-cased normalized keys, aligned with the
	// normalized index's insertion order.
	fuzzyKeys []string
	entries   int
}

// Build normalizes every reference title under each strategy and returns the
// finished indices. Entries with an empty title or plot are ignored.
func Build(entries []ReferenceEntry) *Indices {
	idx := &Indices{
		exact:  make(map[string]*Index, len(exactStrategies)),
		folded: make(map[string]*Index, 2),
	}
	for _, s := range exactStrategies {
		idx.exact[s.Name] = newIndex(len(entries))
	}

	for _, entry := range entries {
		title := strings.TrimSpace(entry.Title)
		plot := strings.TrimSpace(entry.Plot)
		if title == "" || plot == "" {
			continue
		}
		idx.entries++
		for _, s := range exactStrategies {
			key, ok := s.Transform(title)
			if !ok || key == "" {
				continue
			}
			idx.exact[s.Name].put(key, plot)
		}
	}

	// Folded views are derived from the finished case-sensitive indices so
	// they observe the final overwrite state.
	for _, name := range []string{StrategyNormalized, StrategyNoArticle} {
		source := idx.exact[name]
		folded := newIndex(source.Len())
		for i, key := range source.keys {
			folded.putFirst(fold(key), source.plots[i])
		}
		idx.folded[name] = folded
	}

	normalized := idx.exact[StrategyNormalized]
	idx.fuzzyKeys = make([]string, len(normalized.keys))
	for i, key := range normalized.keys {
		idx.fuzzyKeys[i] = fold(key)
	}
	return idx
}

// Index returns the case-sensitive index for an exact strategy name.
func (idx *Indices) Index(strategy string) *Index {
	if idx == nil {
		return nil
	}
	return idx.exact[strategy]
}

// Lookup probes the case-sensitive index of strategy with key.
func (idx *Indices) Lookup(strategy, key string) (string, bool) {
	return idx.Index(strategy).Get(key)
}

// Len returns the number of keys in the index for strategy.
func (idx *Indices) Len(strategy string) int {
	return idx.Index(strategy).Len()
}

// Entries returns how many reference entries contributed to the indices.
func (idx *Indices) Entries() int {
	if idx == nil {
		return 0
	}
	return idx.entries
}

func (idx *Indices) lookupFolded(strategy, key string) (string, bool) {
	if idx == nil {
		return "", false
	}
	return idx.folded[strategy].Get(fold(key))
}

func fold(value string) string {
	return cases.Lower(language.Und).String(value)
}
