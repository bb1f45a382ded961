// Package reference discovers and parses the title,plot CSV files that feed
// the title match cascade.
//
// Files are read in lexical path order and their rows are concatenated in
// that order, so when two files disagree about a title the later file wins
// inside the indices. A file that cannot be parsed is skipped with a warning
// rather than aborting the run.
package reference
