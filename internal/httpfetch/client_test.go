package httpfetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/spf13/afero"

	"mclocale/internal/fileutil"
	"mclocale/internal/services"
)

func newTestClient(t *testing.T, fs afero.Fs, attempts int) *Client {
	t.Helper()
	return New(Options{
		UserAgent: "mclocale-test",
		Attempts:  attempts,
		Fs:        fs,
		Progress:  NopProgress{},
	})
}

func TestGetSendsHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "catalog-agent" {
			t.Errorf("User-Agent = %q", got)
		}
		if got := r.Header.Get("X-Token"); got != "secret" {
			t.Errorf("X-Token = %q", got)
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := newTestClient(t, afero.NewMemMapFs(), 1)
	var payload struct {
		OK bool `json:"ok"`
	}
	headers := map[string]string{"User-Agent": "catalog-agent", "X-Token": "secret"}
	if err := client.GetJSON(context.Background(), server.URL, headers, &payload); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if !payload.OK {
		t.Fatal("expected decoded payload")
	}
}

func TestGetDoesNotRetryNotFound(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := newTestClient(t, afero.NewMemMapFs(), 3)
	_, err := client.Get(context.Background(), server.URL, nil)
	if !errors.Is(err, services.ErrAcquisition) {
		t.Fatalf("expected acquisition error, got %v", err)
	}
	var status *StatusError
	if !errors.As(err, &status) || status.Code != http.StatusNotFound {
		t.Fatalf("expected 404 status error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single request, got %d", calls.Load())
	}
}

func TestDownloadVerifiesAndMovesIntoPlace(t *testing.T) {
	body := []byte("package bytes")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(body)
	}))
	defer server.Close()

	fs := afero.NewMemMapFs()
	client := newTestClient(t, fs, 1)
	res, err := client.Download(context.Background(), Download{
		URL:  server.URL,
		Dest: "/packages/java/Java_Edition_1.21.jar",
		SHA1: fileutil.SHA1Bytes(body),
	})
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if res.Size != int64(len(body)) || res.Tries != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	got, err := afero.ReadFile(fs, "/packages/java/Java_Edition_1.21.jar")
	if err != nil || string(got) != string(body) {
		t.Fatalf("destination = %q, %v", got, err)
	}
	if fileutil.Exists(fs, "/packages/java/Java_Edition_1.21.jar.part") {
		t.Fatal("partial file left behind")
	}
}

func TestDownloadChecksumMismatchLeavesNothing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("tampered"))
	}))
	defer server.Close()

	fs := afero.NewMemMapFs()
	client := newTestClient(t, fs, 2)
	_, err := client.Download(context.Background(), Download{
		URL:  server.URL,
		Dest: "/pkg/client.jar",
		SHA1: fileutil.SHA1Bytes([]byte("original")),
	})
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("expected checksum mismatch, got %v", err)
	}
	if !errors.Is(err, services.ErrAcquisition) {
		t.Fatalf("expected acquisition marker, got %v", err)
	}
	for _, path := range []string{"/pkg/client.jar", "/pkg/client.jar.part"} {
		if fileutil.Exists(fs, path) {
			t.Fatalf("%s should not exist", path)
		}
	}
}

func TestDownloadRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	fs := afero.NewMemMapFs()
	client := newTestClient(t, fs, 3)
	res, err := client.Download(context.Background(), Download{URL: server.URL, Dest: "/pkg/a.appx"})
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if res.Tries != 2 {
		t.Fatalf("expected success on second attempt, got %d", res.Tries)
	}
	if res.SHA1 != fileutil.SHA1Bytes([]byte("ok")) {
		t.Fatalf("unexpected digest %s", res.SHA1)
	}
}

type countingProgress struct {
	started int
	bytes   int
}

func (p *countingProgress) Start(string, int64) Tracker {
	p.started++
	return &countingTracker{p: p}
}

type countingTracker struct{ p *countingProgress }

func (t *countingTracker) Write(b []byte) (int, error) {
	t.p.bytes += len(b)
	return len(b), nil
}

func (t *countingTracker) Finish() {}

func TestDownloadReportsProgress(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, 4096))
	}))
	defer server.Close()

	progress := &countingProgress{}
	client := New(Options{Attempts: 1, Fs: afero.NewMemMapFs(), Progress: progress})
	if _, err := client.Download(context.Background(), Download{URL: server.URL, Dest: "/pkg/p.bin"}); err != nil {
		t.Fatalf("Download: %v", err)
	}
	if progress.started != 1 || progress.bytes != 4096 {
		t.Fatalf("progress = %+v", progress)
	}
}
