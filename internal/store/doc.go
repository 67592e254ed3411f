// Package store persists trades and aggregate snapshots.
//
// Two backends implement the Store interface:
//   - SQLite (default): single local file via modernc.org/sqlite, suits the
//     one-process polling deployment
//   - PostgreSQL: pgx connection pool for shared deployments
//
// Both enforce the dedup key with a UNIQUE index and use
// INSERT ... ON CONFLICT DO NOTHING, so re-ingesting overlapping upstream
// data never double-counts (zero rows affected reports Duplicate). Trades
// are append-only; the snapshot log is append-only and keyed by run
// timestamp.
package store
