// Package config loads, normalizes, and validates plotfill configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// PLOTFILL_DATABASE. Always obtain settings through this package so the
// pipeline and CLI receive absolute paths, canonical log formats, and
// validated matching thresholds.
package config
