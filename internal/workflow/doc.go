// Package workflow runs one edition's pipeline end to end.
//
// A Runner takes the single-run lock beside the state file, checks local
// readiness, and asks the Edition to produce a fresh HashMap. Transient
// failures (catalog staleness, network errors) restart the edition from
// version resolution within a bounded attempt budget; structural failures
// such as a corrupt archive stop immediately. A successful run hands its
// hashes to the state store, which decides whether anything changed, and the
// outcome is then reported to the signal sink and the run ledger.
//
// An edition that produces no files never reaches the state store: an empty
// HashMap is reported as services.ErrNoOutput instead of being persisted as a
// successful but empty result.
package workflow
