// Package moviestore persists plot backfills into the SQLite movies database.
//
// The movies table itself is owned by whatever produced the database; this
// package only adds the plot column when it is missing, reads titles that
// still lack plots, and writes resolved plots back inside a single
// transaction. It also maintains its own history tables (backfill_runs and
// plot_matches) through embedded migrations so each run can be audited.
// OpenReadOnly serves reporting and touches neither the schema nor the data.
package moviestore
