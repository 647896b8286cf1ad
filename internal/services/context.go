package services

import "context"

type contextKey string

const (
	editionKey contextKey = "edition"
	versionKey contextKey = "version"
	stageKey   contextKey = "stage"
	runIDKey   contextKey = "run_id"
)

// WithEdition annotates context with the product edition being processed.
func WithEdition(ctx context.Context, edition string) context.Context {
	if edition == "" {
		return ctx
	}
	return context.WithValue(ctx, editionKey, edition)
}

// EditionFromContext returns the edition name if present.
func EditionFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(editionKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithVersion annotates context with the resolved version identifier.
func WithVersion(ctx context.Context, version string) context.Context {
	if version == "" {
		return ctx
	}
	return context.WithValue(ctx, versionKey, version)
}

// VersionFromContext returns the resolved version if present.
func VersionFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(versionKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(stageKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithRunID annotates context with the run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
