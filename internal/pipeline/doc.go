// Package pipeline runs the end-to-end tracking pass: fetch disclosures,
// normalize them, insert new trades, recompute aggregates, evaluate alert
// rules, and write the report artifact.
//
// A run is all-or-nothing on the fetch side (a failed fetch writes nothing)
// but tolerant downstream: malformed records and individual insert errors
// are counted and skipped, and a post-persistence failure leaves inserted
// trades committed while replacing the artifact with a failure report.
package pipeline
