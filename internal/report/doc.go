// Package report renders a run's alert events and summary counters into the
// plain-text artifact consumed by the notification collaborator.
package report
