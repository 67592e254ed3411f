// Package alert evaluates threshold rules against a run's new trades and
// the current aggregates.
//
// Evaluation is a pure function: identical inputs always produce the same
// ordered event sequence, and nothing is mutated. Rules:
//   - NewLargeTrade: a new trade at or above the alert amount
//   - UnusualActivityVolume: a politician trading well above their
//     historical per-window average
//   - SectorConcentrationShift: a sector's share of a politician's activity
//     moving more than the configured percentage points since the prior
//     snapshot
//   - ClusterActivity: the same ticker traded by several politicians in one
//     run
package alert
