// Package backfill wires the reference loader, the title match cascade, and
// the movie store into a single run.
//
// Run holds an advisory lock next to the database for its whole duration,
// resolves every movie still missing a plot, and applies the results in one
// transaction. Analyze is the read-only companion used to inspect why titles
// fail to match.
package backfill
