package titlematch

import "fmt"

// Default fuzzy thresholds.
const (
	DefaultCandidateThreshold = 0.90
	DefaultAcceptThreshold    = 0.95
)

// Target is a store record that lacks plot text.
type Target struct {
	ID    int64
	Title string
}

// Assignment is the plot chosen for a target and the tier that produced it.
// Strategy carries the ratio for fuzzy matches (fuzzy_0.97); Tier does not.
type Assignment struct {
	ID       int64
	Title    string
	Plot     string
	Strategy string
	Tier     string
	Score    float64
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithFuzzy toggles the fuzzy fallback tier.
func WithFuzzy(enabled bool) Option {
	return func(r *Resolver) {
		r.fuzzy = enabled
	}
}

// WithThresholds overrides the fuzzy candidate and acceptance thresholds.
// Non-positive values keep the defaults.
func WithThresholds(candidate, accept float64) Option {
	return func(r *Resolver) {
		if candidate > 0 {
			r.candidate = candidate
		}
		if accept > 0 {
			r.accept = accept
		}
	}
}

type tier struct {
	name      string
	transform func(string) (string, bool)
	index     string
	folded    bool
}

// Resolver runs the match cascade against prebuilt indices.
type Resolver struct {
	indices   *Indices
	tiers     []tier
	fuzzy     bool
	candidate float64
	accept    float64
}

// NewResolver returns a resolver over idx with fuzzy matching enabled at the
// default thresholds.
func NewResolver(idx *Indices, opts ...Option) *Resolver {
	r := &Resolver{
		indices:   idx,
		fuzzy:     true,
		candidate: DefaultCandidateThreshold,
		accept:    DefaultAcceptThreshold,
	}
	for _, s := range exactStrategies {
		r.tiers = append(r.tiers, tier{name: s.Name, transform: s.Transform, index: s.Name})
	}
	r.tiers = append(r.tiers,
		tier{name: StrategyCaseInsensitiveNormalized, transform: always(Normalize), index: StrategyNormalized, folded: true},
		tier{name: StrategyCaseInsensitiveNoArticle, transform: StripArticle, index: StrategyNoArticle, folded: true},
	)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve finds a plot for t. It reports false when no tier matched.
func (r *Resolver) Resolve(t Target) (Assignment, bool) {
	for _, tr := range r.tiers {
		key, _ := tr.transform(t.Title)
		if key == "" {
			continue
		}
		var (
			plot string
			ok   bool
		)
		if tr.folded {
			plot, ok = r.indices.lookupFolded(tr.index, key)
		} else {
			plot, ok = r.indices.Lookup(tr.index, key)
		}
		if ok {
			return Assignment{ID: t.ID, Title: t.Title, Plot: plot, Strategy: tr.name, Tier: tr.name, Score: 1}, true
		}
	}

	if !r.fuzzy {
		return Assignment{}, false
	}
	best, ok := r.bestFuzzy(Normalize(t.Title))
	if !ok {
		return Assignment{}, false
	}
	return Assignment{
		ID:       t.ID,
		Title:    t.Title,
		Plot:     best.plot,
		Strategy: fmt.Sprintf("%s_%.2f", StrategyFuzzy, best.ratio),
		Tier:     StrategyFuzzy,
		Score:    best.ratio,
	}, true
}

// ResolveAll resolves every target in order and returns the matches only.
// A target id is assigned at most once.
func (r *Resolver) ResolveAll(targets []Target) []Assignment {
	out := make([]Assignment, 0, len(targets))
	seen := make(map[int64]struct{}, len(targets))
	for _, t := range targets {
		if _, dup := seen[t.ID]; dup {
			continue
		}
		seen[t.ID] = struct{}{}
		if a, ok := r.Resolve(t); ok {
			out = append(out, a)
		}
	}
	return out
}
