// Package history keeps a SQLite ledger of pipeline runs.
//
// Every run records its edition, resolved version, outcome, whether the state
// changed, and how long it took. Backfill consults the ledger to skip versions
// that already completed successfully.
package history
