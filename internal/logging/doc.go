// Package logging assembles structured slog loggers and formatting helpers used
// across mclocale.
//
// It owns the configurable console/JSON handlers, tees every record into a
// per-run JSON log file, stamps records with the run identifier, and exposes
// context-aware helpers so pipeline code can tag log lines with the edition,
// version, and stage being processed. The package also provides a no-op
// logger for tests and a sampler that thins out download progress lines.
package logging
