// Package normalize converts raw disclosure records into canonical Trade
// entities.
//
// The normalizer:
//   - Accepts the minimal Record contract that all upstream sources are
//     adapted into at the API boundary
//   - Parses disclosed dollar ranges deterministically (representative value
//     is always the lower bound)
//   - Rejects records with missing or unparseable required fields as
//     MalformedRecordError (skipped and counted by the pipeline, never
//     silently defaulted)
//   - Synthesizes stable UUIDv5 source IDs when upstream provides none
package normalize
