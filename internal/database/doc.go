// Package database records check runs in a SQLite database.
//
// HistoryDB stores one row per run with its totals and one row per map
// file with the file's outcome and content digests. The history command
// reads them back to list past runs or show what a run changed.
//
// The database is a single file under the XDG data directory, opened with
// modernc.org/sqlite so no C toolchain is needed.
package database
