// Package database provides SQLite-based storage for toolaudit run history.
//
// This package implements the AuditDB, which stores one row per completed
// validation run: the full report as JSON plus extracted summary columns
// (dataset, per-kind issue counts, verdict) for cheap history listings.
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
package database
