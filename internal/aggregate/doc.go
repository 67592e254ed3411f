// Package aggregate derives per-politician rollups from stored trades.
//
// Aggregates are never persisted as authoritative state; the trade store is
// the source of truth and every run recomputes from scratch. Snapshots of
// the aggregates are appended to the store's snapshot log so the next run
// can compare sector distributions.
package aggregate
