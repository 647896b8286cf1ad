package workflow

import (
	"context"
	"encoding/json"
	"time"

	"mclocale/internal/extract"
	"mclocale/internal/history"
	"mclocale/internal/state"
)

// Request describes one pipeline run.
type Request struct {
	// Version pins the version to process. Empty selects the latest.
	Version string
	// Catalog is a pre-fetched catalog document. Empty fetches a fresh one
	// on every attempt.
	Catalog []byte
}

// Outcome is what an Edition produced for one attempt.
type Outcome struct {
	Version    string
	Hashes     extract.HashMap
	AssetIndex json.RawMessage
	Files      []extract.ExtractedFile
}

// Edition produces the extracted tree of one product family.
type Edition interface {
	Name() string
	// Produce resolves, acquires, and extracts. prior is the persisted state
	// of the edition and is the zero Entry on a first run.
	Produce(ctx context.Context, req Request, prior state.Entry) (Outcome, error)
}

// Ledger records run outcomes. history.Store satisfies it.
type Ledger interface {
	Record(ctx context.Context, run history.Run) (int64, error)
}

// Emitter publishes the changed flag. signal.Sink satisfies it.
type Emitter interface {
	Emit(version string, changed bool) error
}

// Result summarizes a finished run.
type Result struct {
	RunID    string        `json:"run_id"`
	Edition  string        `json:"edition"`
	Version  string        `json:"version"`
	Changed  bool          `json:"changed"`
	Files    int           `json:"files"`
	Attempts int           `json:"attempts"`
	Duration time.Duration `json:"duration_ns"`
}
