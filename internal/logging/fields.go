package logging

import (
	"context"
	"log/slog"

	"mclocale/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldEdition names the product edition a record belongs to.
	FieldEdition = "edition"
	// FieldVersion carries the resolved version identifier.
	FieldVersion = "version"
	// FieldStage is the standardized structured logging key for pipeline stage names.
	FieldStage = "stage"
	// FieldRunID identifies one invocation of the pipeline.
	FieldRunID = "run_id"
	// FieldEventType classifies a record for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint suggests the operator's next step.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldAlert flags warnings or anomalies that should stand out in structured logs.
	FieldAlert = "alert"
	// FieldProgressPercent is the completion percentage of a transfer.
	FieldProgressPercent = "progress_percent"
	// FieldProgressBytes is the number of bytes transferred so far.
	FieldProgressBytes = "progress_bytes"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if edition, ok := services.EditionFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldEdition, edition))
	}
	if version, ok := services.VersionFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldVersion, version))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
