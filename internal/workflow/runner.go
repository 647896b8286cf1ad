package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"mclocale/internal/history"
	"mclocale/internal/logging"
	"mclocale/internal/services"
	"mclocale/internal/state"
)

// Options configures a Runner.
type Options struct {
	Store *state.Store
	// LockPath is taken with flock for the duration of a run. Empty disables
	// locking.
	LockPath string
	// MaxAttempts bounds how often an edition is restarted on transient errors.
	MaxAttempts int
	RetryDelay  time.Duration
	// Preflight runs before the first attempt. Nil skips it.
	Preflight func(ctx context.Context) error
	Ledger    Ledger
	// Signals maps an edition name to its sink.
	Signals map[string]Emitter
	// RunID identifies this invocation. Empty generates one.
	RunID  string
	Logger *slog.Logger
}

// Runner executes edition pipelines.
type Runner struct {
	store       *state.Store
	lockPath    string
	maxAttempts int
	retryDelay  time.Duration
	preflight   func(ctx context.Context) error
	ledger      Ledger
	signals     map[string]Emitter
	runID       string
	logger      *slog.Logger
	now         func() time.Time
}

// NewRunner constructs a Runner.
func NewRunner(opts Options) *Runner {
	runID := strings.TrimSpace(opts.RunID)
	if runID == "" {
		runID = uuid.NewString()
	}
	attempts := opts.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	return &Runner{
		store:       opts.Store,
		lockPath:    strings.TrimSpace(opts.LockPath),
		maxAttempts: attempts,
		retryDelay:  opts.RetryDelay,
		preflight:   opts.Preflight,
		ledger:      opts.Ledger,
		signals:     opts.Signals,
		runID:       runID,
		logger:      logging.NewComponentLogger(opts.Logger, "workflow"),
		now:         time.Now,
	}
}

// RunID returns the invocation identifier recorded with every run.
func (r *Runner) RunID() string {
	return r.runID
}

// Run executes ed once, retrying transient failures.
func (r *Runner) Run(ctx context.Context, ed Edition, req Request) (Result, error) {
	started := r.now()
	edition := ed.Name()
	ctx = services.WithRunID(services.WithEdition(ctx, edition), r.runID)
	logger := logging.WithContext(ctx, r.logger)
	result := Result{RunID: r.runID, Edition: edition, Version: strings.TrimSpace(req.Version)}

	unlock, err := r.lock()
	if err != nil {
		return result, err
	}
	defer unlock()

	logger.Info("run started",
		logging.String("requested_version", displayVersion(req.Version)),
		logging.Bool("prefetched_catalog", len(req.Catalog) > 0),
		logging.String(logging.FieldEventType, "run_start"),
	)

	result, err = r.execute(ctx, logger, ed, req, result)
	result.Duration = r.now().Sub(started)
	r.record(ctx, logger, result, started, err)
	if err != nil {
		logging.ErrorWithContext(logger, "run failed", "run_failed",
			logging.Error(err),
			logging.String("class", services.Classify(err)),
			logging.Int("attempts", result.Attempts),
			logging.String(logging.FieldErrorHint, hintFor(err)),
		)
		return result, err
	}
	logger.Info("run finished",
		logging.String(logging.FieldVersion, result.Version),
		logging.Bool("changed", result.Changed),
		logging.Int("files", result.Files),
		logging.Int("attempts", result.Attempts),
		logging.Duration("duration", result.Duration),
		logging.String(logging.FieldEventType, "run_complete"),
	)
	return result, nil
}

func (r *Runner) execute(ctx context.Context, logger *slog.Logger, ed Edition, req Request, result Result) (Result, error) {
	if r.store == nil {
		return result, services.Wrap(services.ErrConfiguration, "workflow", result.Edition, "state store not configured", nil)
	}
	if r.preflight != nil {
		if err := r.preflight(services.WithStage(ctx, "preflight")); err != nil {
			return result, err
		}
	}

	doc, err := r.store.Load()
	if err != nil {
		return result, err
	}
	prior, _, err := doc.Entry(result.Edition)
	if err != nil {
		return result, services.Wrap(services.ErrPersistence, "state", "load", result.Edition, err)
	}

	outcome, err := services.Retry(ctx, services.RetryPolicy{
		Attempts:    r.maxAttempts,
		Delay:       r.retryDelay,
		ShouldRetry: services.Retryable,
		OnRetry: func(attempt int, err error) {
			logging.WarnWithContext(logger, "attempt failed; resolving again", "run_retry",
				logging.Int("attempt", attempt),
				logging.Int("max_attempts", r.maxAttempts),
				logging.String("class", services.Classify(err)),
				logging.Error(err),
				logging.String(logging.FieldImpact, "run delayed"),
			)
		},
	}, func(ctx context.Context, attempt int) (Outcome, error) {
		result.Attempts = attempt
		return ed.Produce(ctx, req, prior)
	})
	if err != nil {
		return result, err
	}

	result.Version = outcome.Version
	result.Files = len(outcome.Hashes)
	if len(outcome.Hashes) == 0 {
		return result, services.Wrap(services.ErrNoOutput, "workflow", result.Edition, "edition produced no files", nil)
	}

	changed, err := r.store.Persist(doc, result.Edition, state.Entry{
		Version:    outcome.Version,
		AssetIndex: outcome.AssetIndex,
		SHA1:       outcome.Hashes,
	})
	if err != nil {
		return result, err
	}
	result.Changed = changed

	if sink, ok := r.signals[result.Edition]; ok && sink != nil {
		if err := sink.Emit(outcome.Version, changed); err != nil {
			return result, services.Wrap(services.ErrPersistence, "signal", result.Edition, "emit change signal", err)
		}
	}
	return result, nil
}

func (r *Runner) lock() (func(), error) {
	if r.lockPath == "" {
		return func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(r.lockPath), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	fl := flock.New(r.lockPath)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", r.lockPath, err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrLocked, "workflow", r.lockPath, "", nil)
	}
	return func() { _ = fl.Unlock() }, nil
}

func (r *Runner) record(ctx context.Context, logger *slog.Logger, result Result, started time.Time, runErr error) {
	if r.ledger == nil || errors.Is(runErr, services.ErrLocked) {
		return
	}
	run := history.Run{
		RunID:      r.runID,
		Edition:    result.Edition,
		Version:    result.Version,
		Status:     history.StatusSucceeded,
		Changed:    result.Changed,
		Files:      result.Files,
		Attempts:   result.Attempts,
		StartedAt:  started,
		FinishedAt: started.Add(result.Duration),
	}
	if runErr != nil {
		run.Status = history.StatusFailed
		run.ErrorClass = services.Classify(runErr)
		run.ErrorMessage = runErr.Error()
	}
	if _, err := r.ledger.Record(context.WithoutCancel(ctx), run); err != nil {
		logging.WarnWithContext(logger, "failed to record run history", "history_record_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the history database path"),
			logging.String(logging.FieldImpact, "backfill may repeat this version"),
		)
	}
}

func displayVersion(v string) string {
	if strings.TrimSpace(v) == "" {
		return "latest"
	}
	return v
}

func hintFor(err error) string {
	switch {
	case errors.Is(err, services.ErrResolution):
		return "check the catalog URL or pass an existing version"
	case errors.Is(err, services.ErrAcquisition):
		return "check network access to the download mirrors"
	case errors.Is(err, services.ErrArchiveCorrupt):
		return "delete the cached package and run again"
	case errors.Is(err, services.ErrPersistence):
		return "check permissions on the state file and output directory"
	case errors.Is(err, services.ErrNoOutput):
		return "verify the language filter and the package layout"
	case errors.Is(err, services.ErrConfiguration):
		return "run mclocale doctor"
	case errors.Is(err, services.ErrExternalTool):
		return "check the configured unpack command"
	default:
		return "check logs for details"
	}
}
