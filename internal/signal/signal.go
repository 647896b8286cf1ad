// Package signal reports run outcomes to downstream automation by appending
// one line per run to a per-edition file: the version when the state
// changed, "/" when it did not.
package signal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Unchanged is the line written when a run changed nothing.
const Unchanged = "/"

// Sink appends outcome lines to a file. A Sink with no path is disabled.
type Sink struct {
	fs   afero.Fs
	path string
}

// NewSink returns a Sink writing to path. An empty path disables it.
func NewSink(fsys afero.Fs, path string) *Sink {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &Sink{fs: fsys, path: strings.TrimSpace(path)}
}

// Enabled reports whether Emit writes anything.
func (s *Sink) Enabled() bool {
	return s != nil && s.path != ""
}

// Path returns the configured file.
func (s *Sink) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Emit appends the outcome of one run.
func (s *Sink) Emit(version string, changed bool) error {
	if !s.Enabled() {
		return nil
	}
	line := Unchanged
	if changed {
		line = strings.TrimSpace(version)
		if line == "" {
			return fmt.Errorf("signal %s: changed run without version", s.path)
		}
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("signal %s: %w", s.path, err)
		}
	}
	f, err := s.fs.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("signal %s: %w", s.path, err)
	}
	if _, err := f.WriteString(line + "\n"); err != nil {
		_ = f.Close()
		return fmt.Errorf("signal %s: %w", s.path, err)
	}
	return f.Close()
}
