// Package api implements the REST client for the congressional-trading
// upstream (Financial Modeling Prep).
//
// The client:
//   - Fetches House and Senate disclosure endpoints concurrently
//   - Retries retryable failures (5xx, 429) with jittered exponential
//     backoff
//   - Adapts each source-specific payload into the normalize.Record
//     contract at the boundary, so no other package branches on source
//     identity
package api
