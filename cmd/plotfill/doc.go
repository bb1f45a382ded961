// Package main hosts the plotfill CLI entrypoint and command graph.
//
// The Cobra-based command tree loads configuration once, builds the logger,
// and hands off to the backfill package for the actual work. Commands render
// their results as tables on stdout while logs go to stderr and the log file.
package main
