package preflight

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"mclocale/internal/config"
	"mclocale/internal/deps"
	"mclocale/internal/services"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Detail   string
	Optional bool
}

// RunAll executes the local checks for cfg: directory access, free space in
// the package cache, and the unpack tool when one is configured.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
		CheckDirectoryAccess("Package directory", cfg.Paths.PackagesDir),
		CheckDirectoryAccess("State directory", filepath.Dir(cfg.Paths.StateFile)),
		CheckFreeSpace("Package free space", cfg.Paths.PackagesDir, uint64(cfg.Network.MinFreeGiB)<<30),
	}

	for _, status := range deps.CheckBinaries([]deps.Requirement{deps.UnpackRequirement(cfg.Bedrock.UnpackCommand)}) {
		result := Result{Name: status.Name, Passed: status.Available, Optional: status.Optional}
		switch {
		case status.Available:
			result.Detail = status.Command
		case status.Optional:
			result.Detail = "not configured (GDK packages unavailable)"
		default:
			result.Detail = status.Detail
		}
		results = append(results, result)
	}
	return results
}

// RunNetwork checks that the catalog endpoints answer.
func RunNetwork(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	return []Result{
		CheckEndpoint(ctx, "Bedrock catalog", cfg.Bedrock.CatalogURL, cfg.Bedrock.CatalogUserAgent, cfg.HTTPTimeout()),
		CheckEndpoint(ctx, "Java manifest", cfg.Java.ManifestURL, cfg.Network.UserAgent, cfg.HTTPTimeout()),
	}
}

// Failed returns the required checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed && !r.Optional {
			failed = append(failed, r)
		}
	}
	return failed
}

// Err folds failed required checks into one configuration error, or nil.
func Err(results []Result) error {
	failed := Failed(results)
	if len(failed) == 0 {
		return nil
	}
	errs := make([]error, 0, len(failed))
	names := make([]string, 0, len(failed))
	for _, r := range failed {
		errs = append(errs, fmt.Errorf("%s: %s", r.Name, r.Detail))
		names = append(names, r.Name)
	}
	return services.Wrap(services.ErrConfiguration, "preflight", strings.Join(names, ", "), "", errors.Join(errs...))
}
