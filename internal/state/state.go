package state

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/spf13/afero"

	"mclocale/internal/fileutil"
	"mclocale/internal/logging"
	"mclocale/internal/services"
)

// Entry is the persisted state of one edition.
type Entry struct {
	UpdateTime string            `json:"update_time"`
	Version    string            `json:"version"`
	AssetIndex json.RawMessage   `json:"asset_index,omitempty"`
	SHA1       map[string]string `json:"sha1"`
}

// Document is the whole state file. Values stay raw so that entries of
// editions this build does not know about survive a rewrite byte for byte.
type Document map[string]json.RawMessage

// Entry decodes the state of edition.
func (d Document) Entry(edition string) (Entry, bool, error) {
	raw, ok := d[edition]
	if !ok || len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null" {
		return Entry{}, false, nil
	}
	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return Entry{}, false, fmt.Errorf("decode %s state: %w", edition, err)
	}
	return entry, true, nil
}

// Editions lists the editions present, sorted.
func (d Document) Editions() []string {
	return slices.Sorted(maps.Keys(d))
}

// Store reads and replaces the state file.
type Store struct {
	fs     afero.Fs
	path   string
	now    func() time.Time
	logger *slog.Logger
}

// NewStore returns a Store for the file at path.
func NewStore(fsys afero.Fs, path string, logger *slog.Logger) *Store {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &Store{
		fs:     fsys,
		path:   path,
		now:    time.Now,
		logger: logging.NewComponentLogger(logger, "state"),
	}
}

// Path returns the state file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the state document. A missing file is an empty document.
func (s *Store) Load() (Document, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Document{}, nil
		}
		return nil, services.Wrap(services.ErrPersistence, "state", "load", s.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return Document{}, nil
	}
	doc := Document{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, services.Wrap(services.ErrPersistence, "state", "load", s.path, err)
	}
	return doc, nil
}

// DetectAndPersist loads the document and applies entry with Persist.
func (s *Store) DetectAndPersist(edition string, entry Entry) (bool, error) {
	doc, err := s.Load()
	if err != nil {
		return false, err
	}
	return s.Persist(doc, edition, entry)
}

// Persist compares entry.SHA1 with the hashes doc holds for edition. When
// they are equal nothing is written and false is returned. Otherwise doc is
// updated in place, written to disk, and true is returned. An empty
// UpdateTime is filled with the current UTC time. doc must come from Load;
// the file is not read again.
func (s *Store) Persist(doc Document, edition string, entry Entry) (bool, error) {
	edition = strings.TrimSpace(edition)
	if edition == "" {
		return false, services.Wrap(services.ErrPersistence, "state", "persist", "edition not set", nil)
	}
	if doc == nil {
		doc = Document{}
	}
	prior, ok, err := doc.Entry(edition)
	if err != nil {
		return false, services.Wrap(services.ErrPersistence, "state", "persist", edition, err)
	}
	if ok && maps.Equal(prior.SHA1, entry.SHA1) {
		s.logger.Info("state unchanged",
			logging.String(logging.FieldEdition, edition),
			logging.String(logging.FieldVersion, entry.Version),
			logging.Int("files", len(entry.SHA1)),
		)
		return false, nil
	}

	if entry.UpdateTime == "" {
		entry.UpdateTime = s.now().UTC().Format(time.RFC3339Nano)
	}
	if entry.SHA1 == nil {
		entry.SHA1 = map[string]string{}
	}
	raw, err := marshal(entry, "")
	if err != nil {
		return false, services.Wrap(services.ErrPersistence, "state", "persist", edition, err)
	}
	doc[edition] = raw

	data, err := marshal(doc, "  ")
	if err != nil {
		return false, services.Wrap(services.ErrPersistence, "state", "persist", edition, err)
	}
	if err := fileutil.WriteAtomic(s.fs, s.path, data, 0o644); err != nil {
		return false, services.Wrap(services.ErrPersistence, "state", "persist", s.path, err)
	}
	s.logger.Info("state updated",
		logging.String(logging.FieldEdition, edition),
		logging.String(logging.FieldVersion, entry.Version),
		logging.Int("files", len(entry.SHA1)),
		logging.Int("previous_files", len(prior.SHA1)),
		logging.String(logging.FieldEventType, "state_updated"),
	)
	return true, nil
}

func marshal(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
