// Package database provides SQLite-based storage of finished wordfetch runs.
//
// The HistoryDB archives each saved run with its summary, its full JSON
// encoding and its ranked words, so earlier results can be listed, shown
// and compared without crawling again. Nothing here is read back by the
// crawler; the archive does not resume or deduplicate crawls.
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. WAL mode provides good concurrent read performance
package database
