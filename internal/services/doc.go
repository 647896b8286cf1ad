// Package services defines shared utilities consumed by the edition pipelines
// and the workflow runner.
//
// Key responsibilities:
//   - Context helpers that stamp edition, version, stage, and run identifiers
//     for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     into transient (retried) and structural (reported) classes.
//   - A bounded Retry helper that returns a definite value or error instead of
//     leaking loop state.
//
// Use these helpers when wiring new pipeline stages so operational behaviour
// (error handling, observability, retries) stays uniform.
package services
