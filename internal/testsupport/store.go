package testsupport

import (
	"context"
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"plotfill/internal/moviestore"
)

// Movie seeds one movies row. An empty Plot is stored as NULL.
type Movie struct {
	Title string
	Plot  string
}

// CreateMoviesDB creates a movies table at path and inserts movies in order,
// so the first movie receives id 1. When plotColumn is false the table is
// created without a plot column and any Plot values are ignored.
func CreateMoviesDB(t testing.TB, path string, plotColumn bool, movies ...Movie) {
	t.Helper()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open sqlite %s: %v", path, err)
	}
	defer db.Close()

	schema := "CREATE TABLE movies (id INTEGER PRIMARY KEY AUTOINCREMENT, title TEXT, year INTEGER)"
	if plotColumn {
		schema = "CREATE TABLE movies (id INTEGER PRIMARY KEY AUTOINCREMENT, title TEXT, year INTEGER, plot TEXT)"
	}
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("create movies table: %v", err)
	}

	for _, movie := range movies {
		if !plotColumn {
			if _, err := db.Exec("INSERT INTO movies (title) VALUES (?)", movie.Title); err != nil {
				t.Fatalf("insert movie %q: %v", movie.Title, err)
			}
			continue
		}
		var plot any
		if movie.Plot != "" {
			plot = movie.Plot
		}
		if _, err := db.Exec("INSERT INTO movies (title, plot) VALUES (?, ?)", movie.Title, plot); err != nil {
			t.Fatalf("insert movie %q: %v", movie.Title, err)
		}
	}
}

// PlotOf reads the plot stored for a movie id. ok is false when the plot is NULL.
func PlotOf(t testing.TB, path string, id int64) (string, bool) {
	t.Helper()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open sqlite %s: %v", path, err)
	}
	defer db.Close()

	var plot sql.NullString
	if err := db.QueryRow("SELECT plot FROM movies WHERE id = ?", id).Scan(&plot); err != nil {
		t.Fatalf("select plot for %d: %v", id, err)
	}
	return plot.String, plot.Valid
}

// MustOpenStore opens a moviestore.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, path string) *moviestore.Store {
	t.Helper()

	store, err := moviestore.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("moviestore.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// TableExists reports whether the database at path has a table with the given name.
func TableExists(t testing.TB, path, name string) bool {
	t.Helper()
	var count int
	if err := queryRow(t, path, "SELECT COUNT(1) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&count); err != nil {
		t.Fatalf("lookup table %s: %v", name, err)
	}
	return count > 0
}

// QueryString runs a single-value query against the database at path.
func QueryString(t testing.TB, path, query string, args ...any) string {
	t.Helper()
	var value string
	if err := queryRow(t, path, query, args...).Scan(&value); err != nil {
		t.Fatalf("query %q: %v", query, err)
	}
	return value
}

func queryRow(t testing.TB, path, query string, args ...any) *sql.Row {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open sqlite %s: %v", path, err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return db.QueryRow(query, args...)
}
