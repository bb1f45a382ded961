// Package logs reads back the plotfill log file.
//
// Last returns the trailing lines with bounded memory, optionally narrowed to
// one backfill run; Follow polls the file for new lines until the context is
// cancelled and restarts from the top when the file is truncated.
package logs
