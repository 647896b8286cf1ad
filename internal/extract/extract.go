package extract

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"slices"

	"github.com/spf13/afero"

	"mclocale/internal/fileutil"
	"mclocale/internal/langfile"
	"mclocale/internal/logging"
	"mclocale/internal/services"
)

// HashMap maps an output path relative to the extraction root to the SHA-1
// of the raw entry bytes.
type HashMap map[string]string

// ExtractedFile describes one produced output.
type ExtractedFile struct {
	RelativePath string
	Hash         string
	Rule         string
	Entry        string
	Size         int64
}

// Result is the outcome of one extraction pass.
type Result struct {
	Files  []ExtractedFile
	Hashes HashMap
}

// Len reports the number of extracted files.
func (r *Result) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Hashes)
}

func emptyResult() *Result {
	return &Result{Hashes: HashMap{}}
}

// Extractor writes extracted files beneath an output root.
type Extractor struct {
	fs     afero.Fs
	outDir string
	logger *slog.Logger
}

// New constructs an Extractor writing to outDir on fs.
func New(fs afero.Fs, outDir string, logger *slog.Logger) *Extractor {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Extractor{fs: fs, outDir: outDir, logger: logging.NewComponentLogger(logger, "extract")}
}

// OutputDir returns the extraction root.
func (e *Extractor) OutputDir() string {
	return e.outDir
}

// ExtractArchive opens the zip archive at archivePath and extracts it.
func (e *Extractor) ExtractArchive(ctx context.Context, archivePath string, rules []Rule) (*Result, error) {
	f, err := e.fs.Open(archivePath)
	if err != nil {
		return emptyResult(), services.Wrap(services.ErrArchiveCorrupt, "extract", filepath.Base(archivePath), "open archive", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return emptyResult(), services.Wrap(services.ErrArchiveCorrupt, "extract", filepath.Base(archivePath), "stat archive", err)
	}
	src, err := NewZipSource(f, info.Size())
	if err != nil {
		return emptyResult(), services.Wrap(services.ErrArchiveCorrupt, "extract", filepath.Base(archivePath), "not a valid zip archive", err)
	}
	return e.ExtractSource(ctx, src, rules)
}

// ExtractSource extracts from an already opened Source.
func (e *Extractor) ExtractSource(ctx context.Context, src Source, rules []Rule) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return emptyResult(), err
	}
	logger := logging.WithContext(ctx, e.logger)
	result := emptyResult()
	if err := e.walk(logger, src, rules, "", result); err != nil {
		logging.ErrorWithContext(logger, "extraction aborted", "extract_failed",
			logging.Error(err),
			logging.Int("discarded", len(result.Hashes)),
			logging.String(logging.FieldErrorHint, "delete the cached package so it is downloaded again"),
		)
		return emptyResult(), err
	}
	logger.Info("extraction complete",
		logging.Int("files", len(result.Hashes)),
		logging.String(logging.FieldEventType, "extract_complete"),
	)
	return result, nil
}

// partition assigns every entry to the first rule it matches, keeping rule
// order and sorting each bucket.
func partition(paths []string, rules []Rule) [][]string {
	buckets := make([][]string, len(rules))
	for _, p := range paths {
		for i, rule := range rules {
			if rule.Match != nil && rule.Match(p) {
				buckets[i] = append(buckets[i], p)
				break
			}
		}
	}
	for _, bucket := range buckets {
		slices.Sort(bucket)
	}
	return buckets
}

func (e *Extractor) walk(logger *slog.Logger, src Source, rules []Rule, prefix string, result *Result) error {
	buckets := partition(src.Paths(), rules)
	for i, rule := range rules {
		for _, entry := range buckets[i] {
			rel := rule.outputPath(entry)
			if prefix != "" {
				rel = path.Join(prefix, rel)
			}
			if rule.Nested() {
				logger.Info("opening nested archive",
					logging.String("entry", entry),
					logging.String("prefix", rel),
				)
				inner, err := openNested(src, entry)
				if err != nil {
					return services.Wrap(services.ErrArchiveCorrupt, "extract", entry, "open nested archive", err)
				}
				if err := e.walk(logger, inner, rule.Inner, rel, result); err != nil {
					return err
				}
				continue
			}
			if !filepath.IsLocal(filepath.FromSlash(rel)) {
				logging.WarnWithContext(logger, "skipping entry outside output root", "extract_unsafe_path",
					logging.String("entry", entry),
					logging.String("path", rel),
					logging.String(logging.FieldImpact, "entry not extracted"),
				)
				continue
			}
			if !rule.Filter.AllowsPath(rel) {
				logger.Debug("skipping filtered locale", logging.String("entry", entry), logging.String("path", rel))
				continue
			}
			file, err := e.extractEntry(src, rule, entry, rel)
			if err != nil {
				return err
			}
			result.Files = append(result.Files, file)
			result.Hashes[rel] = file.Hash
			logger.Debug("extracted",
				logging.String("rule", rule.Name),
				logging.String("entry", entry),
				logging.String("path", rel),
				logging.String("sha1", file.Hash),
			)
		}
	}
	return nil
}

func (e *Extractor) extractEntry(src Source, rule Rule, entry, rel string) (ExtractedFile, error) {
	rc, err := src.Open(entry)
	if err != nil {
		return ExtractedFile{}, services.Wrap(services.ErrArchiveCorrupt, "extract", entry, "open entry", err)
	}
	raw, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return ExtractedFile{}, services.Wrap(services.ErrArchiveCorrupt, "extract", entry, "read entry", err)
	}
	hash := fileutil.SHA1Bytes(raw)

	target := filepath.Join(e.outDir, filepath.FromSlash(rel))
	if rule.Raw {
		if err := fileutil.WriteAtomic(e.fs, target, raw, 0o644); err != nil {
			return ExtractedFile{}, writeError(rel, err)
		}
	} else {
		if err := fileutil.WriteAtomic(e.fs, target, langfile.Sanitize(raw), 0o644); err != nil {
			return ExtractedFile{}, writeError(rel, err)
		}
		companion, err := langfile.Marshal(langfile.Parse(raw), false)
		if err != nil {
			return ExtractedFile{}, fmt.Errorf("encode %s: %w", rel, err)
		}
		if err := fileutil.WriteAtomic(e.fs, filepath.Join(e.outDir, filepath.FromSlash(CompanionPath(rel))), companion, 0o644); err != nil {
			return ExtractedFile{}, writeError(CompanionPath(rel), err)
		}
	}
	return ExtractedFile{
		RelativePath: rel,
		Hash:         hash,
		Rule:         rule.Name,
		Entry:        entry,
		Size:         int64(len(raw)),
	}, nil
}

func writeError(rel string, err error) error {
	return services.Wrap(services.ErrPersistence, "extract", rel, "write output", err)
}
