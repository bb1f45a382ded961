package titlematch

import (
	"math"
	"reflect"
	"strings"
	"testing"
)

func resolveOne(t *testing.T, refs []ReferenceEntry, title string, opts ...Option) (Assignment, bool) {
	t.Helper()
	r := NewResolver(Build(refs), opts...)
	return r.Resolve(Target{ID: 1, Title: title})
}

func TestResolveScenarioNormalized(t *testing.T) {
	refs := []ReferenceEntry{{Title: "The Matrix (1999 film)", Plot: "A hacker discovers reality is simulated."}}
	r := NewResolver(Build(refs))
	got, ok := r.Resolve(Target{ID: 7, Title: "The Matrix"})
	if !ok {
		t.Fatal("expected a match")
	}
	if got.ID != 7 || got.Plot != "A hacker discovers reality is simulated." || got.Strategy != StrategyNormalized {
		t.Fatalf("unexpected assignment: %#v", got)
	}
}

func TestResolveTiers(t *testing.T) {
	tests := []struct {
		name     string
		refs     []ReferenceEntry
		title    string
		strategy string
		plot     string
	}{
		{
			name:     "no_article swaps article",
			refs:     []ReferenceEntry{{Title: "The Great Escape", Plot: "pows"}},
			title:    "A Great Escape",
			strategy: StrategyNoArticle,
			plot:     "pows",
		},
		{
			name:     "no_article reaches reference article",
			refs:     []ReferenceEntry{{Title: "The Great Escape", Plot: "pows"}},
			title:    "Great Escape",
			strategy: StrategyNoArticle,
			plot:     "pows",
		},
		{
			name:     "simplified ignores punctuation",
			refs:     []ReferenceEntry{{Title: "Ocean's Eleven", Plot: "heist"}},
			title:    "Oceans Eleven",
			strategy: StrategySimplified,
			plot:     "heist",
		},
		{
			name:     "no_colon drops subtitle",
			refs:     []ReferenceEntry{{Title: "Mad Max: Fury Road", Plot: "desert"}},
			title:    "Mad Max: Beyond Thunderdome",
			strategy: StrategyNoColon,
			plot:     "desert",
		},
		{
			name:     "no_number drops digits",
			refs:     []ReferenceEntry{{Title: "Rocky 2", Plot: "rematch"}},
			title:    "Rocky",
			strategy: StrategyNoNumber,
			plot:     "rematch",
		},
		{
			name:     "word_only drops digits and punctuation",
			refs:     []ReferenceEntry{{Title: "Ocean's 11", Plot: "casino"}},
			title:    "Oceans",
			strategy: StrategyWordOnly,
			plot:     "casino",
		},
		{
			name:     "case-insensitive normalized",
			refs:     []ReferenceEntry{{Title: "Jaws (1975 film)", Plot: "shark"}},
			title:    "JAWS",
			strategy: StrategyCaseInsensitiveNormalized,
			plot:     "shark",
		},
		{
			name:     "case-insensitive no_article",
			refs:     []ReferenceEntry{{Title: "The Matrix", Plot: "simulated"}},
			title:    "matrix",
			strategy: StrategyCaseInsensitiveNoArticle,
			plot:     "simulated",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := resolveOne(t, tt.refs, tt.title)
			if !ok {
				t.Fatalf("expected %q to resolve", tt.title)
			}
			if got.Strategy != tt.strategy || got.Tier != tt.strategy || got.Plot != tt.plot {
				t.Fatalf("got (%s, %q), want (%s, %q)", got.Strategy, got.Plot, tt.strategy, tt.plot)
			}
			if got.Score != 1 {
				t.Fatalf("exact tier score = %v, want 1", got.Score)
			}
		})
	}
}

func TestResolveEarlierTierWins(t *testing.T) {
	refs := []ReferenceEntry{
		{Title: "The Thing (1982 film)", Plot: "antarctic"},
		{Title: "A Thing", Plot: "other"},
	}
	got, ok := resolveOne(t, refs, "The Thing")
	if !ok {
		t.Fatal("expected a match")
	}
	if got.Strategy != StrategyNormalized || got.Plot != "antarctic" {
		t.Fatalf("got (%s, %q), want normalized antarctic", got.Strategy, got.Plot)
	}
}

func TestResolveCaseFoldingWithArticleUsesNoArticleTier(t *testing.T) {
	refs := []ReferenceEntry{{Title: "The Big Lebowski", Plot: "rug"}}
	got, ok := resolveOne(t, refs, "A BIG LEBOWSKI")
	if !ok {
		t.Fatal("expected a match")
	}
	if got.Strategy != StrategyCaseInsensitiveNoArticle {
		t.Fatalf("strategy = %s, want %s", got.Strategy, StrategyCaseInsensitiveNoArticle)
	}
}

func TestResolveFuzzyNearDuplicate(t *testing.T) {
	refs := []ReferenceEntry{{Title: "Pirates of the Caribbean: Dead Man's Chest", Plot: "kraken"}}
	got, ok := resolveOne(t, refs, "Pirates of the Carribean: Dead Man's Chest")
	if !ok {
		t.Fatal("expected a fuzzy match")
	}
	if got.Tier != StrategyFuzzy || got.Strategy != "fuzzy_0.98" || got.Plot != "kraken" {
		t.Fatalf("unexpected assignment: %#v", got)
	}
	if got.Score < DefaultAcceptThreshold || got.Score >= 1 {
		t.Fatalf("score = %v, want within [0.95, 1)", got.Score)
	}
}

func TestResolveFuzzyRejectsSe7en(t *testing.T) {
	refs := []ReferenceEntry{{Title: "Se7en", Plot: "A serial killer themes murders on the seven deadly sins."}}
	if got, ok := resolveOne(t, refs, "Seven"); ok {
		t.Fatalf("expected no match, got %#v", got)
	}
}

func TestResolveFuzzyThresholdBoundary(t *testing.T) {
	refs := []ReferenceEntry{{Title: "abcdefghijklmnopqrst", Plot: "boundary"}}

	got, ok := resolveOne(t, refs, "abcdefghijzlmnopqrst")
	if !ok {
		t.Fatal("ratio of exactly 0.95 must be accepted")
	}
	if got.Score != 0.95 || got.Strategy != "fuzzy_0.95" {
		t.Fatalf("unexpected assignment: %#v", got)
	}

	// Two substitutions give 0.90: a candidate, but below acceptance.
	if got, ok := resolveOne(t, refs, "abcdezghijklmnzpqrst"); ok {
		t.Fatalf("ratio 0.90 must be rejected, got %#v", got)
	}

	got, ok = resolveOne(t, refs, "abcdezghijklmnzpqrst", WithThresholds(0.85, 0.90))
	if !ok || got.Strategy != "fuzzy_0.90" {
		t.Fatalf("lowered thresholds should accept, got (%#v, %v)", got, ok)
	}
}

func TestResolveFuzzyRejectsJustBelowAccept(t *testing.T) {
	refs := []ReferenceEntry{{Title: "abcdefghijklmnopqrs", Plot: "near"}}

	// 18 of 19 characters match: 36/38 = 0.947, which prints as 0.95.
	if ratio := Ratio("abcdefghijklmnopqrz", "abcdefghijklmnopqrs"); ratio >= DefaultAcceptThreshold || ratio < DefaultCandidateThreshold {
		t.Fatalf("ratio = %v, want a candidate just below acceptance", ratio)
	}
	if got, ok := resolveOne(t, refs, "abcdefghijklmnopqrz"); ok {
		t.Fatalf("ratio 0.947 must be rejected, got %#v", got)
	}

	got, ok := resolveOne(t, refs, "abcdefghijklmnopqrz", WithThresholds(0.90, 0.94))
	if !ok || got.Strategy != "fuzzy_0.95" || got.Score >= DefaultAcceptThreshold {
		t.Fatalf("lowered acceptance should match with the unrounded score, got (%#v, %v)", got, ok)
	}
}

func TestResolveFuzzyPrefersHighestRatio(t *testing.T) {
	refs := []ReferenceEntry{
		{Title: "abcdezghijklmnopqrst", Plot: "close"},
		{Title: "abcdefghijklmnopqrst", Plot: "closest"},
	}
	got, ok := resolveOne(t, refs, "abcdefghijklmnopqrsz")
	if !ok {
		t.Fatal("expected a fuzzy match")
	}
	if got.Plot != "closest" {
		t.Fatalf("plot = %q, want closest", got.Plot)
	}
}

func TestResolveFuzzyDisabled(t *testing.T) {
	refs := []ReferenceEntry{{Title: "abcdefghijklmnopqrst", Plot: "boundary"}}
	if _, ok := resolveOne(t, refs, "abcdefghijzlmnopqrst", WithFuzzy(false)); ok {
		t.Fatal("fuzzy tier must be skipped when disabled")
	}
}

func TestResolveUnresolved(t *testing.T) {
	refs := []ReferenceEntry{{Title: "Heat", Plot: "crew"}}
	if _, ok := resolveOne(t, refs, "Ronin"); ok {
		t.Fatal("expected unresolved")
	}
	if _, ok := resolveOne(t, nil, "Ronin"); ok {
		t.Fatal("empty reference set must not match")
	}
	if _, ok := resolveOne(t, refs, "   "); ok {
		t.Fatal("blank title must not match")
	}
}

func sampleReferences() []ReferenceEntry {
	return []ReferenceEntry{
		{Title: "The Matrix (1999 film)", Plot: "simulated"},
		{Title: "Heat (1995 film)", Plot: "crew"},
		{Title: "Star Wars: Episode IV", Plot: "rebels"},
		{Title: "Ocean's 11", Plot: "casino"},
		{Title: "Pirates of the Caribbean: Dead Man's Chest", Plot: "kraken"},
	}
}

func sampleTargets() []Target {
	return []Target{
		{ID: 1, Title: "The Matrix"},
		{ID: 2, Title: "Ronin"},
		{ID: 3, Title: "Star Wars"},
		{ID: 4, Title: "Oceans"},
		{ID: 5, Title: "HEAT"},
		{ID: 6, Title: "Pirates of the Carribean: Dead Man's Chest"},
		{ID: 1, Title: "The Matrix"},
	}
}

func TestResolveAllDeterministicAndIdempotent(t *testing.T) {
	refs := sampleReferences()
	first := NewResolver(Build(refs)).ResolveAll(sampleTargets())
	second := NewResolver(Build(refs)).ResolveAll(sampleTargets())
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("results differ between runs:\n%#v\n%#v", first, second)
	}

	wantIDs := []int64{1, 3, 4, 5, 6}
	if len(first) != len(wantIDs) {
		t.Fatalf("got %d assignments, want %d: %#v", len(first), len(wantIDs), first)
	}
	for i, id := range wantIDs {
		if first[i].ID != id {
			t.Fatalf("assignment %d has id %d, want %d", i, first[i].ID, id)
		}
	}

	// Re-presenting only the unresolved subset yields nothing new.
	again := NewResolver(Build(refs)).ResolveAll([]Target{{ID: 2, Title: "Ronin"}})
	if len(again) != 0 {
		t.Fatalf("expected no assignments, got %#v", again)
	}
}

func TestSummarize(t *testing.T) {
	assignments := NewResolver(Build(sampleReferences())).ResolveAll(sampleTargets())
	rep := Summarize(6, assignments)
	if rep.Resolved != 5 || rep.Unresolved != 1 {
		t.Fatalf("resolved=%d unresolved=%d, want 5/1", rep.Resolved, rep.Unresolved)
	}
	want := map[string]int{
		StrategyNormalized:                1,
		StrategyNoColon:                   1,
		StrategyWordOnly:                  1,
		StrategyCaseInsensitiveNormalized: 1,
		StrategyFuzzy:                     1,
	}
	if !reflect.DeepEqual(rep.PerStrategy, want) {
		t.Fatalf("PerStrategy = %v, want %v", rep.PerStrategy, want)
	}
	if math.Abs(rep.MatchRate()-5.0/6.0) > 1e-9 {
		t.Fatalf("MatchRate = %v", rep.MatchRate())
	}
	for _, a := range assignments {
		if a.Tier == StrategyFuzzy && !strings.HasPrefix(a.Strategy, "fuzzy_") {
			t.Fatalf("fuzzy label missing ratio: %q", a.Strategy)
		}
	}
}

func TestRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"se7en", "seven", 0.8},
		{"", "", 1},
		{"heat", "heat", 1},
		{"abc", "xyz", 0},
	}
	for _, tt := range tests {
		if got := Ratio(tt.a, tt.b); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Ratio(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
