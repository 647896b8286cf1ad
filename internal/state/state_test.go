package state

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-test/deep"
	"github.com/spf13/afero"

	"mclocale/internal/logging"
	"mclocale/internal/services"
)

type failingRenameFs struct {
	afero.Fs
}

func (failingRenameFs) Rename(string, string) error {
	return errors.New("simulated crash before rename")
}

func fixedStore(fs afero.Fs, path string) *Store {
	s := NewStore(fs, path, logging.NewNop())
	s.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestLoadMissingFile(t *testing.T) {
	doc, err := fixedStore(afero.NewMemMapFs(), "/state/versions.json").Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(doc) != 0 {
		t.Fatalf("expected empty document, got %v", doc)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/versions.json", []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := fixedStore(fs, "/versions.json").Load()
	if !errors.Is(err, services.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
}

func TestDetectAndPersistFirstRunAndRerun(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := fixedStore(fs, "/versions.json")
	entry := Entry{Version: "1.21.0", SHA1: map[string]string{"vanilla/en_US.lang": "aa"}}

	changed, err := store.DetectAndPersist("bedrock", entry)
	if err != nil || !changed {
		t.Fatalf("first run: changed=%v err=%v", changed, err)
	}
	before, _ := afero.ReadFile(fs, "/versions.json")

	entry.Version = "1.21.1"
	changed, err = store.DetectAndPersist("bedrock", entry)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if changed {
		t.Fatal("identical hashes must not report a change")
	}
	after, _ := afero.ReadFile(fs, "/versions.json")
	if string(before) != string(after) {
		t.Fatal("unchanged run must not rewrite the state file")
	}

	doc, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got, ok, err := doc.Entry("bedrock")
	if err != nil || !ok {
		t.Fatalf("Entry: ok=%v err=%v", ok, err)
	}
	if got.Version != "1.21.0" || got.UpdateTime != "2025-03-01T12:00:00Z" {
		t.Fatalf("unexpected entry %+v", got)
	}
}

func TestDetectAndPersistPreservesOtherEditions(t *testing.T) {
	fs := afero.NewMemMapFs()
	prior := `{
  "java": {"update_time": "2024-01-01T00:00:00Z", "version": "24w01a", "asset_index": {"id": "17", "url": "https://x/17.json?a=1&b=2"}, "sha1": {"en_us.json": "11"}},
  "custom": [1, 2, 3]
}`
	if err := afero.WriteFile(fs, "/versions.json", []byte(prior), 0o644); err != nil {
		t.Fatal(err)
	}
	store := fixedStore(fs, "/versions.json")
	changed, err := store.DetectAndPersist("bedrock", Entry{Version: "1.21.0", SHA1: map[string]string{"a": "1"}})
	if err != nil || !changed {
		t.Fatalf("DetectAndPersist: changed=%v err=%v", changed, err)
	}

	doc, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := deep.Equal(doc.Editions(), []string{"bedrock", "custom", "java"}); diff != nil {
		t.Fatalf("editions: %v", diff)
	}
	java, ok, err := doc.Entry("java")
	if err != nil || !ok {
		t.Fatalf("java entry: ok=%v err=%v", ok, err)
	}
	if java.Version != "24w01a" || java.SHA1["en_us.json"] != "11" {
		t.Fatalf("java entry changed: %+v", java)
	}
	var index map[string]string
	if err := json.Unmarshal(java.AssetIndex, &index); err != nil || index["url"] != "https://x/17.json?a=1&b=2" {
		t.Fatalf("asset index = %s, %v", java.AssetIndex, err)
	}

	data, _ := afero.ReadFile(fs, "/versions.json")
	if !strings.Contains(string(data), "\n  \"bedrock\": {\n    \"update_time\"") {
		t.Fatalf("state file should be indented:\n%s", data)
	}
	if strings.Contains(string(data), `\u0026`) {
		t.Fatalf("state file should not escape ampersands:\n%s", data)
	}
}

func TestDetectAndPersistChangedHashes(t *testing.T) {
	store := fixedStore(afero.NewMemMapFs(), "/versions.json")
	if _, err := store.DetectAndPersist("java", Entry{Version: "a", SHA1: map[string]string{"x": "1"}}); err != nil {
		t.Fatal(err)
	}
	for _, next := range []map[string]string{
		{"x": "2"},
		{"x": "2", "y": "3"},
		{"y": "3"},
	} {
		changed, err := store.DetectAndPersist("java", Entry{Version: "b", SHA1: next})
		if err != nil || !changed {
			t.Fatalf("hashes %v: changed=%v err=%v", next, changed, err)
		}
	}
}

func TestDetectAndPersistAtomicOnCrash(t *testing.T) {
	base := afero.NewMemMapFs()
	store := fixedStore(base, "/state/versions.json")
	if _, err := store.DetectAndPersist("bedrock", Entry{Version: "1", SHA1: map[string]string{"a": "1"}}); err != nil {
		t.Fatal(err)
	}
	pre, _ := afero.ReadFile(base, "/state/versions.json")

	crashing := fixedStore(failingRenameFs{base}, "/state/versions.json")
	_, err := crashing.DetectAndPersist("bedrock", Entry{Version: "2", SHA1: map[string]string{"a": "2"}})
	if !errors.Is(err, services.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	got, _ := afero.ReadFile(base, "/state/versions.json")
	if string(got) != string(pre) {
		t.Fatalf("canonical file changed after crash:\n%s", got)
	}
	entries, _ := afero.ReadDir(base, "/state")
	for _, e := range entries {
		if e.Name() != "versions.json" {
			t.Fatalf("temporary file left behind: %s", e.Name())
		}
	}

	changed, err := store.DetectAndPersist("bedrock", Entry{Version: "2", SHA1: map[string]string{"a": "2"}})
	if err != nil || !changed {
		t.Fatalf("retry after crash: changed=%v err=%v", changed, err)
	}
	post, _ := afero.ReadFile(base, "/state/versions.json")
	if string(post) == string(pre) {
		t.Fatal("expected the post-update document")
	}
}

func TestPersistUsesLoadedDocument(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := fixedStore(fs, "/versions.json")
	if _, err := store.DetectAndPersist("java", Entry{Version: "a", SHA1: map[string]string{"x": "1"}}); err != nil {
		t.Fatal(err)
	}
	doc, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := fs.Remove("/versions.json"); err != nil {
		t.Fatal(err)
	}

	changed, err := store.Persist(doc, "bedrock", Entry{Version: "1", SHA1: map[string]string{"a": "1"}})
	if err != nil || !changed {
		t.Fatalf("Persist: changed=%v err=%v", changed, err)
	}
	reloaded, err := store.Load()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if diff := deep.Equal(reloaded.Editions(), []string{"bedrock", "java"}); diff != nil {
		t.Fatalf("editions should come from the loaded document: %v", diff)
	}

	changed, err = store.Persist(reloaded, "java", Entry{Version: "b", SHA1: map[string]string{"x": "1"}})
	if err != nil || changed {
		t.Fatalf("equal hashes in the document: changed=%v err=%v", changed, err)
	}
}
