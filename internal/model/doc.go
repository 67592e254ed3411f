// Package model defines shared data types used across the congressional
// trade tracker.
//
// Conventions:
//   - Dollar amounts: float64, representative value is the lower bound of
//     the disclosed range
//   - Dates: time.Time at UTC midnight, canonical layout "2006-01-02"
//   - IDs: upstream string IDs where provided, deterministic UUIDv5
//     otherwise (synthesized by the normalizer)
package model
