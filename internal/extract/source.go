package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"slices"

	"github.com/spf13/afero"
)

// Source is a random-access set of entries addressed by slash-separated paths.
type Source interface {
	// Paths lists regular-file entries in no particular order.
	Paths() []string
	// Open returns the content of one entry.
	Open(entry string) (io.ReadCloser, error)
}

type zipSource struct {
	reader *zip.Reader
	files  map[string]*zip.File
}

// NewZipSource exposes a zip archive as a Source.
func NewZipSource(r io.ReaderAt, size int64) (Source, error) {
	reader, err := zip.NewReader(r, size)
	if err != nil {
		return nil, err
	}
	files := make(map[string]*zip.File, len(reader.File))
	for _, f := range reader.File {
		if f.FileInfo().IsDir() {
			continue
		}
		files[f.Name] = f
	}
	return &zipSource{reader: reader, files: files}, nil
}

func (s *zipSource) Paths() []string {
	paths := make([]string, 0, len(s.files))
	for name := range s.files {
		paths = append(paths, name)
	}
	return paths
}

func (s *zipSource) Open(entry string) (io.ReadCloser, error) {
	f, ok := s.files[entry]
	if !ok {
		return nil, fmt.Errorf("entry %s: %w", entry, fs.ErrNotExist)
	}
	return f.Open()
}

// openNested reads a whole inner container into memory.
func openNested(src Source, entry string) (Source, error) {
	rc, err := src.Open(entry)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	return NewZipSource(bytes.NewReader(data), int64(len(data)))
}

type dirSource struct {
	fs    afero.Fs
	root  string
	paths []string
}

// NewDirSource exposes an unpacked directory tree as a Source.
func NewDirSource(fsys afero.Fs, root string) (Source, error) {
	var paths []string
	err := afero.Walk(fsys, root, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dirSource{fs: fsys, root: root, paths: paths}, nil
}

func (s *dirSource) Paths() []string {
	return slices.Clone(s.paths)
}

func (s *dirSource) Open(entry string) (io.ReadCloser, error) {
	if !filepath.IsLocal(filepath.FromSlash(entry)) {
		return nil, fmt.Errorf("entry %s escapes source root", entry)
	}
	return s.fs.Open(filepath.Join(s.root, filepath.FromSlash(entry)))
}
