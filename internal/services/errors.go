package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrResolution     = errors.New("version resolution failed")
	ErrAcquisition    = errors.New("package acquisition failed")
	ErrArchiveCorrupt = errors.New("archive corrupt")
	ErrSourceMissing  = errors.New("merge source missing")
	ErrPersistence    = errors.New("state persistence failed")
	ErrNoOutput       = errors.New("no usable output")
	ErrConfiguration  = errors.New("configuration error")
	ErrExternalTool   = errors.New("external tool error")
	ErrLocked         = errors.New("another run holds the state lock")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrNoOutput
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Retryable reports whether err belongs to a transient class that the
// orchestrating flow may retry (catalog staleness, network failures).
// Structural failures such as corrupt archives are never retried.
func Retryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrArchiveCorrupt), errors.Is(err, ErrConfiguration), errors.Is(err, ErrLocked):
		return false
	case errors.Is(err, ErrResolution), errors.Is(err, ErrAcquisition):
		return true
	default:
		return false
	}
}

// Classify returns a short label for err suitable for the run ledger.
func Classify(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrResolution):
		return "resolution"
	case errors.Is(err, ErrAcquisition):
		return "acquisition"
	case errors.Is(err, ErrArchiveCorrupt):
		return "archive_corrupt"
	case errors.Is(err, ErrPersistence):
		return "persistence"
	case errors.Is(err, ErrNoOutput):
		return "no_output"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrExternalTool):
		return "external_tool"
	case errors.Is(err, ErrLocked):
		return "locked"
	default:
		return "failed"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}
