// Package titlematch resolves movie titles against a reference table of
// title/plot pairs whose titles are formatted differently from the store.
//
// Build derives one lookup index per normalization strategy from the complete
// reference collection. A Resolver then probes those indices for each target
// title in a fixed priority order: normalized, no_article, simplified,
// no_colon, no_number, word_only, followed by case-insensitive probes of the
// normalized and no_article indices. The first hit wins. Only when every exact
// tier misses does the resolver fall back to a difflib similarity ratio over
// the normalized index, accepting the best candidate above a high threshold.
//
// The package performs no I/O and keeps no state between runs. Indices are
// immutable once built, so a Resolver may be reused freely. Callers own
// persistence and reporting; Summarize turns a slice of assignments into the
// aggregate counts the CLI prints.
package titlematch
