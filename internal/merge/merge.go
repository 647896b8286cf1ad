package merge

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"mclocale/internal/fileutil"
	"mclocale/internal/langfile"
	"mclocale/internal/logging"
	"mclocale/internal/services"
)

// Merge folds sources left to right. A key keeps the value of the first
// source that defines it. Nil sources contribute nothing.
func Merge(sources ...*langfile.Mapping) *langfile.Mapping {
	merged := langfile.NewMapping()
	for _, src := range sources {
		if src == nil {
			continue
		}
		for _, key := range src.Keys() {
			value, _ := src.Get(key)
			merged.SetIfAbsent(key, value)
		}
	}
	return merged
}

// LocaleSummary describes one merged output file.
type LocaleSummary struct {
	File    string   `json:"file"`
	Sources []string `json:"sources"`
	Skipped []string `json:"skipped,omitempty"`
	Keys    int      `json:"keys"`
}

// Summary describes a MergeTree run.
type Summary struct {
	Order   []string        `json:"order"`
	Locales []LocaleSummary `json:"locales"`
}

// Files returns the number of merged files written.
func (s Summary) Files() int {
	return len(s.Locales)
}

// Merger merges an extracted tree into a flat output directory.
type Merger struct {
	fs       afero.Fs
	priority []string
	logger   *slog.Logger
}

// NewMerger constructs a Merger with the given priority patterns.
func NewMerger(fsys afero.Fs, priority []string, logger *slog.Logger) *Merger {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &Merger{
		fs:       fsys,
		priority: append([]string(nil), priority...),
		logger:   logging.NewComponentLogger(logger, "merge"),
	}
}

// MergeTree merges the JSON locale files found in the subdirectories of
// srcDir into outDir.
func (m *Merger) MergeTree(ctx context.Context, srcDir, outDir string) (Summary, error) {
	logger := logging.WithContext(ctx, m.logger)
	dirs, err := m.subdirs(srcDir)
	if err != nil {
		return Summary{}, err
	}
	order := Order(dirs, m.priority)
	summary := Summary{Order: order}
	if len(order) == 0 {
		return summary, services.Wrap(services.ErrSourceMissing, "merge", srcDir, "no source directories", nil)
	}
	logger.Info("merge order resolved",
		logging.String("order", strings.Join(order, ",")),
		logging.Int("sources", len(order)),
	)

	locales, err := m.localeFiles(srcDir, order)
	if err != nil {
		return summary, err
	}
	for _, name := range locales {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		locale, err := m.mergeLocale(logger, srcDir, outDir, order, name)
		if err != nil {
			return summary, err
		}
		if len(locale.Sources) == 0 {
			continue
		}
		summary.Locales = append(summary.Locales, locale)
	}
	logger.Info("merge complete",
		logging.Int("files", summary.Files()),
		logging.String("output", outDir),
		logging.String(logging.FieldEventType, "merge_complete"),
	)
	return summary, nil
}

func (m *Merger) subdirs(srcDir string) ([]string, error) {
	entries, err := afero.ReadDir(m.fs, srcDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrSourceMissing, "merge", srcDir, "source directory does not exist", err)
		}
		return nil, fmt.Errorf("read %s: %w", srcDir, err)
	}
	dirs := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, entry.Name())
		}
	}
	return dirs, nil
}

// localeFiles collects JSON file names across all sources in merge order.
func (m *Merger) localeFiles(srcDir string, order []string) ([]string, error) {
	var names []string
	seen := make(map[string]struct{})
	for _, dir := range order {
		entries, err := afero.ReadDir(m.fs, filepath.Join(srcDir, dir))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", dir, err)
		}
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || filepath.Ext(name) != ".json" {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	return names, nil
}

func (m *Merger) mergeLocale(logger *slog.Logger, srcDir, outDir string, order []string, name string) (LocaleSummary, error) {
	summary := LocaleSummary{File: name}
	sources := make([]*langfile.Mapping, 0, len(order))
	for _, dir := range order {
		path := filepath.Join(srcDir, dir, name)
		mapping, err := m.load(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			logging.WarnWithContext(logger, "merge source missing locale file", "merge_source_missing",
				logging.String("source", dir),
				logging.String("file", name),
				logging.String(logging.FieldErrorHint, "expected when a pack does not ship this locale"),
				logging.String(logging.FieldImpact, "source contributes no keys"),
			)
			continue
		case err != nil:
			summary.Skipped = append(summary.Skipped, dir)
			logging.WarnWithContext(logger, "skipping unreadable merge source", "merge_source_unreadable",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "re-run extraction for this version"),
				logging.String(logging.FieldImpact, "source contributes no keys"),
			)
			continue
		}
		sources = append(sources, mapping)
		summary.Sources = append(summary.Sources, dir)
	}
	if len(sources) == 0 {
		logger.Debug("no sources for locale", logging.String("file", name))
		return summary, nil
	}

	merged := Merge(sources...)
	data, err := langfile.Marshal(merged, true)
	if err != nil {
		return summary, fmt.Errorf("encode %s: %w", name, err)
	}
	target := filepath.Join(outDir, name)
	if err := fileutil.WriteAtomic(m.fs, target, data, 0o644); err != nil {
		return summary, services.Wrap(services.ErrPersistence, "merge", name, "write merged file", err)
	}
	summary.Keys = merged.Len()
	logger.Info("merged locale",
		logging.String("file", name),
		logging.String("sources", strings.Join(summary.Sources, ",")),
		logging.Int("keys", summary.Keys),
	)
	return summary, nil
}

func (m *Merger) load(path string) (*langfile.Mapping, error) {
	f, err := m.fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return langfile.Decode(f)
}
