package acquire

import (
	"context"
	"errors"
	"testing"

	"github.com/go-test/deep"
	"github.com/spf13/afero"

	"mclocale/internal/httpfetch"
	"mclocale/internal/logging"
	"mclocale/internal/services"
)

type fakeFetcher struct {
	fs    afero.Fs
	fail  map[string]bool
	calls []string
}

func (f *fakeFetcher) Download(_ context.Context, d httpfetch.Download) (httpfetch.Result, error) {
	f.calls = append(f.calls, d.URL)
	if f.fail[d.URL] {
		return httpfetch.Result{}, errors.New("boom")
	}
	if err := afero.WriteFile(f.fs, d.Dest, []byte(d.URL), 0o644); err != nil {
		return httpfetch.Result{}, err
	}
	return httpfetch.Result{Path: d.Dest}, nil
}

func TestAcquireSkipsExistingFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/pkg/Bedrock_Edition_1.20.0.appx", []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	fetcher := &fakeFetcher{fs: fs}
	a := New(fs, fetcher, logging.NewNop())

	path, err := a.Acquire(context.Background(), Target{Dest: "/pkg/Bedrock_Edition_1.20.0.appx", URLs: []string{"https://x"}})
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if path != "/pkg/Bedrock_Edition_1.20.0.appx" {
		t.Fatalf("path = %q", path)
	}
	if len(fetcher.calls) != 0 {
		t.Fatalf("expected no fetch, got %v", fetcher.calls)
	}
	data, _ := afero.ReadFile(fs, path)
	if string(data) != "old" {
		t.Fatalf("existing content should be untouched, got %q", data)
	}
}

func TestAcquireFallsBackToNextURL(t *testing.T) {
	fs := afero.NewMemMapFs()
	fetcher := &fakeFetcher{fs: fs, fail: map[string]bool{"https://a": true}}
	a := New(fs, fetcher, nil)

	path, err := a.Acquire(context.Background(), Target{Dest: "/pkg/x.msixvc", URLs: []string{"https://a", " ", "https://b"}})
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if diff := deep.Equal(fetcher.calls, []string{"https://a", "https://b"}); diff != nil {
		t.Fatalf("calls: %v", diff)
	}
	data, _ := afero.ReadFile(fs, path)
	if string(data) != "https://b" {
		t.Fatalf("content = %q", data)
	}
}

func TestAcquireAllCandidatesFail(t *testing.T) {
	fs := afero.NewMemMapFs()
	fetcher := &fakeFetcher{fs: fs, fail: map[string]bool{"https://a": true}}
	a := New(fs, fetcher, nil)

	_, err := a.Acquire(context.Background(), Target{Dest: "/pkg/x.jar", URLs: []string{"https://a"}})
	if !errors.Is(err, services.ErrAcquisition) {
		t.Fatalf("expected acquisition error, got %v", err)
	}
	if exists, _ := afero.Exists(fs, "/pkg/x.jar"); exists {
		t.Fatal("no file should be left at the destination")
	}
}

func TestAcquireWithoutURLs(t *testing.T) {
	a := New(afero.NewMemMapFs(), &fakeFetcher{}, nil)
	if _, err := a.Acquire(context.Background(), Target{Dest: "/pkg/y"}); !errors.Is(err, services.ErrAcquisition) {
		t.Fatalf("expected acquisition error, got %v", err)
	}
}
