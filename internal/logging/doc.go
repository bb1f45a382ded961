// Package logging assembles the slog loggers used by the plotfill CLI and
// pipeline.
//
// It owns the console and JSON handlers, level parsing, and output fan-out to
// stdout plus the log file under the configured log directory. Console output
// colours level labels only when writing to a terminal. NewNop provides a
// discard logger for tests and wiring code that cannot fail.
package logging
