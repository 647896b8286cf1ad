// Package state persists per-edition change-detection state.
//
// The state file is one JSON document whose top-level keys are edition names.
// Each entry records when it was last updated, the version it describes, the
// SHA-1 of every extracted file, and optional edition-specific metadata. The
// file is read once per run and replaced atomically only when the hashes of an
// edition change; entries for other editions are carried over untouched.
package state
