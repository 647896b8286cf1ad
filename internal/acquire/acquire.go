// Package acquire obtains the package file for a resolved version.
//
// A file already present at the deterministic destination satisfies the
// request without touching the network. Otherwise the candidate URLs are
// tried in order through the network collaborator, which owns streaming,
// checksum verification, and partial-file cleanup.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/afero"

	"mclocale/internal/fileutil"
	"mclocale/internal/httpfetch"
	"mclocale/internal/logging"
	"mclocale/internal/services"
)

// Fetcher downloads one file. httpfetch.Client satisfies it.
type Fetcher interface {
	Download(ctx context.Context, d httpfetch.Download) (httpfetch.Result, error)
}

// Target names a package and where it may be fetched from.
type Target struct {
	// Dest is the deterministic local path for this version.
	Dest string
	// URLs are tried in order until one succeeds.
	URLs    []string
	SHA1    string
	Headers map[string]string
	Label   string
}

// Acquirer resolves Targets to local files.
type Acquirer struct {
	fs      afero.Fs
	fetcher Fetcher
	logger  *slog.Logger
}

// New constructs an Acquirer. A nil fs uses the OS filesystem.
func New(fs afero.Fs, fetcher Fetcher, logger *slog.Logger) *Acquirer {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Acquirer{fs: fs, fetcher: fetcher, logger: logging.NewComponentLogger(logger, "acquire")}
}

// Acquire returns the local path of t, downloading it when absent.
func (a *Acquirer) Acquire(ctx context.Context, t Target) (string, error) {
	if strings.TrimSpace(t.Dest) == "" {
		return "", services.Wrap(services.ErrAcquisition, "acquire", t.Label, "destination not set", nil)
	}
	logger := logging.WithContext(ctx, a.logger)
	if fileutil.Exists(a.fs, t.Dest) {
		logger.Info("package already present",
			logging.String("path", t.Dest),
			logging.String(logging.FieldEventType, "acquire_skip"),
		)
		return t.Dest, nil
	}
	if a.fetcher == nil {
		return "", services.Wrap(services.ErrAcquisition, "acquire", t.Label, "no fetcher configured", nil)
	}

	urls := make([]string, 0, len(t.URLs))
	for _, u := range t.URLs {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	if len(urls) == 0 {
		return "", services.Wrap(services.ErrAcquisition, "acquire", t.Label, "no download location", nil)
	}

	var errs []error
	for i, url := range urls {
		logger.Info("downloading package",
			logging.String("url", url),
			logging.String("path", t.Dest),
			logging.Int("candidate", i+1),
			logging.Int("candidates", len(urls)),
		)
		res, err := a.fetcher.Download(ctx, httpfetch.Download{
			URL:     url,
			Dest:    t.Dest,
			SHA1:    t.SHA1,
			Headers: t.Headers,
			Label:   t.Label,
		})
		if err == nil {
			return res.Path, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		errs = append(errs, fmt.Errorf("%s: %w", url, err))
		logging.WarnWithContext(logger, "download candidate failed", "acquire_candidate_failed",
			logging.String("url", url),
			logging.Error(err),
			logging.String(logging.FieldImpact, "trying next location"),
		)
	}
	return "", services.Wrap(services.ErrAcquisition, "acquire", t.Label, "no package available", errors.Join(errs...))
}
