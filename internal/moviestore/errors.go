package moviestore

import "errors"

// ErrMissingMoviesTable indicates the database has no movies table to backfill.
var ErrMissingMoviesTable = errors.New("movies table not found")

// ErrMissingPlotColumn indicates EnsurePlotColumn has not been run against the database.
var ErrMissingPlotColumn = errors.New("movies.plot column not found")
