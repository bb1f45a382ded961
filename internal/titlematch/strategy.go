package titlematch

import (
	"regexp"
	"strings"
)

// Strategy names, in cascade priority order.
const (
	StrategyNormalized                = "normalized"
	StrategyNoArticle                 = "no_article"
	StrategySimplified                = "simplified"
	StrategyNoColon                   = "no_colon"
	StrategyNoNumber                  = "no_number"
	StrategyWordOnly                  = "word_only"
	StrategyCaseInsensitiveNormalized = "case_insensitive_normalized"
	StrategyCaseInsensitiveNoArticle  = "case_insensitive_no_article"
	StrategyFuzzy                     = "fuzzy"
)

var (
	filmParenPattern  = regexp.MustCompile(`\s*\([^)]*film\)`)
	anyParenPattern   = regexp.MustCompile(`\s*\([^)]*\)`)
	articlePattern    = regexp.MustCompile(`(?i)^(a|an|the)[\s\p{Z}]+`)
	nonWordPattern    = regexp.MustCompile(`[^\p{L}\p{N}_\s\p{Z}]`)
	digitPattern      = regexp.MustCompile(`\p{Nd}+`)
	whitespacePattern = regexp.MustCompile(`[\s\p{Z}]+`)
)

// Strategy is a named, pure title transform. Transform reports ok=false when
// the title carries no distinct key for the strategy; such titles are left
// out of the strategy's index but the returned key is still usable as a probe.
type Strategy struct {
	Name      string
	Transform func(title string) (key string, ok bool)
}

var exactStrategies = []Strategy{
	{Name: StrategyNormalized, Transform: always(Normalize)},
	{Name: StrategyNoArticle, Transform: StripArticle},
	{Name: StrategySimplified, Transform: always(Simplify)},
	{Name: StrategyNoColon, Transform: StripSubtitle},
	{Name: StrategyNoNumber, Transform: always(StripNumbers)},
	{Name: StrategyWordOnly, Transform: always(WordsOnly)},
}

// Strategies returns the exact-match strategies in priority order.
func Strategies() []Strategy {
	out := make([]Strategy, len(exactStrategies))
	copy(out, exactStrategies)
	return out
}

// TierNames lists every cascade tier in the order the resolver probes them.
func TierNames() []string {
	names := make([]string, 0, len(exactStrategies)+3)
	for _, s := range exactStrategies {
		names = append(names, s.Name)
	}
	return append(names, StrategyCaseInsensitiveNormalized, StrategyCaseInsensitiveNoArticle, StrategyFuzzy)
}

func always(fn func(string) string) func(string) (string, bool) {
	return func(title string) (string, bool) {
		return fn(title), true
	}
}

// Normalize drops a "(... film)" disambiguation suffix, then any remaining
// parenthetical, and trims the result.
func Normalize(title string) string {
	title = filmParenPattern.ReplaceAllString(title, "")
	title = anyParenPattern.ReplaceAllString(title, "")
	return strings.TrimSpace(title)
}

// StripArticle removes a single leading "A", "An" or "The".
func StripArticle(title string) (string, bool) {
	stripped := articlePattern.ReplaceAllString(title, "")
	return stripped, stripped != title
}

// Simplify removes punctuation and collapses whitespace.
func Simplify(title string) string {
	return collapse(nonWordPattern.ReplaceAllString(title, ""))
}

// StripSubtitle truncates the title at its first colon.
func StripSubtitle(title string) (string, bool) {
	head, _, found := strings.Cut(title, ":")
	if !found {
		return title, false
	}
	return strings.TrimSpace(head), true
}

// StripNumbers removes every decimal digit and collapses whitespace.
func StripNumbers(title string) string {
	return collapse(digitPattern.ReplaceAllString(title, ""))
}

// WordsOnly removes punctuation and digits and collapses whitespace.
func WordsOnly(title string) string {
	title = nonWordPattern.ReplaceAllString(title, "")
	return StripNumbers(title)
}

func collapse(value string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(value, " "))
}
