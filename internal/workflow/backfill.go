package workflow

import (
	"context"
	"errors"
	"fmt"

	"mclocale/internal/logging"
	"mclocale/internal/services"
)

// SuccessChecker answers whether a version already completed. history.Store
// satisfies it.
type SuccessChecker interface {
	Succeeded(ctx context.Context, edition, version string) (bool, error)
}

// BackfillOptions configures Backfill.
type BackfillOptions struct {
	// Force reprocesses versions the ledger already marks as done.
	Force bool
	Done  SuccessChecker
	// Catalog is shared by every run so the catalog is fetched once.
	Catalog []byte
	// AfterChange runs after every run that changed the state.
	AfterChange func(ctx context.Context, res Result) error
}

// BackfillReport summarizes a backfill.
type BackfillReport struct {
	Processed int
	Skipped   int
	Changed   int
	Failed    []string
}

// Backfill runs ed for every version in order. A failing version is logged
// and skipped; lock contention and cancellation stop the loop. The returned
// error joins every per-version failure.
func (r *Runner) Backfill(ctx context.Context, ed Edition, versions []string, opts BackfillOptions) (BackfillReport, error) {
	var (
		report BackfillReport
		errs   []error
	)
	logger := logging.WithContext(services.WithEdition(ctx, ed.Name()), r.logger)
	logger.Info("backfill started",
		logging.Int("versions", len(versions)),
		logging.Bool("force", opts.Force),
		logging.String(logging.FieldEventType, "backfill_start"),
	)

	for i, version := range versions {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if !opts.Force && opts.Done != nil {
			done, err := opts.Done.Succeeded(ctx, ed.Name(), version)
			if err != nil {
				logging.WarnWithContext(logger, "history lookup failed", "backfill_history_failed",
					logging.String(logging.FieldVersion, version),
					logging.Error(err),
					logging.String(logging.FieldImpact, "version will be processed again"),
				)
			} else if done {
				report.Skipped++
				logger.Debug("version already processed", logging.String(logging.FieldVersion, version))
				continue
			}
		}

		logger.Info("backfill version",
			logging.String(logging.FieldVersion, version),
			logging.Int("index", i+1),
			logging.Int("total", len(versions)),
		)
		res, err := r.Run(ctx, ed, Request{Version: version, Catalog: opts.Catalog})
		report.Processed++
		if err != nil {
			if errors.Is(err, services.ErrLocked) || errors.Is(err, context.Canceled) {
				return report, err
			}
			report.Failed = append(report.Failed, version)
			errs = append(errs, fmt.Errorf("%s: %w", version, err))
			continue
		}
		if res.Changed {
			report.Changed++
			if opts.AfterChange != nil {
				if err := opts.AfterChange(ctx, res); err != nil {
					report.Failed = append(report.Failed, version)
					errs = append(errs, fmt.Errorf("%s: after change: %w", version, err))
				}
			}
		}
	}

	logger.Info("backfill finished",
		logging.Int("processed", report.Processed),
		logging.Int("skipped", report.Skipped),
		logging.Int("changed", report.Changed),
		logging.Int("failed", len(report.Failed)),
		logging.String(logging.FieldEventType, "backfill_complete"),
	)
	return report, errors.Join(errs...)
}
