package titlematch

import (
	"sort"

	"github.com/pmezard/go-difflib/difflib"
)

type fuzzyCandidate struct {
	pos   int
	plot  string
	ratio float64
}

// bestFuzzy compares the normalized target title against every normalized
// reference key. Candidates at or above the candidate threshold are ranked
// by ratio; the leader is returned only if it clears the accept threshold.
func (r *Resolver) bestFuzzy(normalized string) (fuzzyCandidate, bool) {
	if r.indices == nil || normalized == "" {
		return fuzzyCandidate{}, false
	}
	source := r.indices.Index(StrategyNormalized)
	if source.Len() == 0 {
		return fuzzyCandidate{}, false
	}

	matcher := difflib.NewMatcher(runeSeq(fold(normalized)), nil)
	var candidates []fuzzyCandidate
	for i, key := range r.indices.fuzzyKeys {
		matcher.SetSeq2(runeSeq(key))
		// RealQuickRatio is an upper bound computed from lengths alone.
		if matcher.RealQuickRatio() < r.candidate {
			continue
		}
		ratio := matcher.Ratio()
		if ratio >= r.candidate {
			candidates = append(candidates, fuzzyCandidate{pos: i, plot: source.plots[i], ratio: ratio})
		}
	}
	if len(candidates) == 0 {
		return fuzzyCandidate{}, false
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].ratio > candidates[j].ratio
	})
	best := candidates[0]
	if best.ratio < r.accept {
		return fuzzyCandidate{}, false
	}
	return best, true
}

// Ratio returns the difflib similarity of a and b over their characters:
// 2*M/T where M is the size of the matching blocks and T the combined length.
func Ratio(a, b string) float64 {
	return difflib.NewMatcher(runeSeq(a), runeSeq(b)).Ratio()
}

func runeSeq(value string) []string {
	runes := []rune(value)
	seq := make([]string, len(runes))
	for i, r := range runes {
		seq[i] = string(r)
	}
	return seq
}
