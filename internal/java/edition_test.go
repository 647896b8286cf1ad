package java

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/go-test/deep"
	"github.com/spf13/afero"

	"mclocale/internal/acquire"
	"mclocale/internal/extract"
	"mclocale/internal/fileutil"
	"mclocale/internal/httpfetch"
	"mclocale/internal/language"
	"mclocale/internal/logging"
	"mclocale/internal/services"
	"mclocale/internal/state"
	"mclocale/internal/workflow"
)

const manifestFixture = `{
  "latest": {"release": "1.21.4", "snapshot": "25w02a"},
  "versions": [
    {"id": "25w02a", "type": "snapshot", "url": "https://meta.example/25w02a.json", "releaseTime": "2025-01-08T12:00:00+00:00"},
    {"id": "1.12.2", "type": "release", "url": "https://meta.example/1.12.2.json", "releaseTime": "2017-09-18T08:39:46+00:00"},
    {"id": "b1.0", "type": "old_beta", "url": "https://meta.example/b1.0.json", "releaseTime": "2010-12-19T22:00:00+00:00"}
  ]
}`

type fakeFetcher struct {
	fs        afero.Fs
	docs      map[string][]byte
	files     map[string][]byte
	gets      []string
	downloads []httpfetch.Download
}

func (f *fakeFetcher) Get(_ context.Context, url string, _ map[string]string) ([]byte, error) {
	f.gets = append(f.gets, url)
	data, ok := f.docs[url]
	if !ok {
		return nil, services.Wrap(services.ErrAcquisition, "fetch", url, "", &httpfetch.StatusError{URL: url, Code: 404})
	}
	return data, nil
}

func (f *fakeFetcher) Download(_ context.Context, d httpfetch.Download) (httpfetch.Result, error) {
	f.downloads = append(f.downloads, d)
	data, ok := f.files[d.URL]
	if !ok {
		return httpfetch.Result{}, services.Wrap(services.ErrAcquisition, "download", d.URL, "", &httpfetch.StatusError{URL: d.URL, Code: 404})
	}
	if sum := fileutil.SHA1Bytes(data); sum != d.SHA1 {
		return httpfetch.Result{}, services.Wrap(services.ErrAcquisition, "download", d.URL, "", httpfetch.ErrChecksumMismatch)
	}
	if err := afero.WriteFile(f.fs, d.Dest, data, 0o644); err != nil {
		return httpfetch.Result{}, err
	}
	return httpfetch.Result{Path: d.Dest, Size: int64(len(data)), SHA1: d.SHA1, Tries: 1}, nil
}

type jarAcquirer struct {
	fs      afero.Fs
	jar     []byte
	targets []acquire.Target
}

func (a *jarAcquirer) Acquire(_ context.Context, t acquire.Target) (string, error) {
	a.targets = append(a.targets, t)
	if err := afero.WriteFile(a.fs, t.Dest, a.jar, 0o644); err != nil {
		return "", err
	}
	return t.Dest, nil
}

func buildJar(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close jar: %v", err)
	}
	return buf.Bytes()
}

type harness struct {
	fs       afero.Fs
	fetcher  *fakeFetcher
	acquirer *jarAcquirer
	edition  *Edition
}

func newHarness(t *testing.T, version string, jar map[string]string, assets map[string]string, filter language.Filter) *harness {
	t.Helper()
	fs := afero.NewMemMapFs()
	fetcher := &fakeFetcher{fs: fs, docs: map[string][]byte{}, files: map[string][]byte{}}
	jarBytes := buildJar(t, jar)

	objects := map[string]map[string]any{}
	for key, content := range assets {
		hash := fileutil.SHA1Bytes([]byte(content))
		objects[key] = map[string]any{"hash": hash, "size": len(content)}
		fetcher.files[AssetURL("https://resources.example", hash)] = []byte(content)
	}
	objects["minecraft/sounds/ambient/cave1.ogg"] = map[string]any{"hash": "ab12", "size": 1}
	fetcher.docs["https://meta.example/assets/19.json"] = mustJSON(t, map[string]any{"objects": objects})
	fetcher.docs["https://meta.example/"+version+".json"] = []byte(fmt.Sprintf(`{
  "assetIndex": {"id": "19", "sha1": "", "url": "https://meta.example/assets/19.json"},
  "downloads": {"client": {"url": "https://piston.example/%s/client.jar", "sha1": %q, "size": %d}}
}`, version, fileutil.SHA1Bytes(jarBytes), len(jarBytes)))

	acq := &jarAcquirer{fs: fs, jar: jarBytes}
	settings := Settings{
		ResourcesURL:   "https://resources.example/",
		Channel:        "snapshot",
		BackfillOldest: "b1.0",
		PackageDir:     "/packages/java",
		OutputDir:      "/out/java",
		Filter:         filter,
	}
	return &harness{fs: fs, fetcher: fetcher, acquirer: acq, edition: New(settings, fs, fetcher, acq, logging.NewNop())}
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

func (h *harness) produce(t *testing.T, version string, prior state.Entry) workflow.Outcome {
	t.Helper()
	out, err := h.edition.Produce(context.Background(), workflow.Request{Version: version, Catalog: []byte(manifestFixture)}, prior)
	if err != nil {
		t.Fatalf("Produce: %v", err)
	}
	return out
}

func TestProduceFetchesAssetLanguages(t *testing.T) {
	h := newHarness(t, "25w02a",
		map[string]string{"assets/minecraft/lang/en_us.json": `{"a":"A"}`, "data/other.json": "{}"},
		map[string]string{
			"minecraft/lang/en_us.json": `{"a":"A"}`,
			"minecraft/lang/de_de.json": `{"a":"Ä"}`,
			"minecraft/lang/fr_fr.json": `{"a":"À"}`,
		},
		language.Filter{},
	)

	out := h.produce(t, "", state.Entry{})
	if out.Version != "25w02a" {
		t.Fatalf("latest snapshot = %q", out.Version)
	}
	want := extract.HashMap{
		"en_us.json": fileutil.SHA1Bytes([]byte(`{"a":"A"}`)),
		"de_de.json": fileutil.SHA1Bytes([]byte(`{"a":"Ä"}`)),
		"fr_fr.json": fileutil.SHA1Bytes([]byte(`{"a":"À"}`)),
	}
	if diff := deep.Equal(out.Hashes, want); diff != nil {
		t.Fatalf("hashes differ: %v", diff)
	}
	if len(h.fetcher.downloads) != 2 {
		t.Fatalf("downloads = %d, want 2 (source language comes from the jar)", len(h.fetcher.downloads))
	}
	if !SameAssetIndex(out.AssetIndex, []byte(`{"url":"https://meta.example/assets/19.json","id":"19","sha1":""}`)) {
		t.Fatalf("asset index = %s", out.AssetIndex)
	}
	if got := h.acquirer.targets[0].Dest; got != "/packages/java/Java_Edition_25w02a.jar" {
		t.Fatalf("jar dest = %q", got)
	}
	data, err := afero.ReadFile(h.fs, "/out/java/de_de.json")
	if err != nil || string(data) != `{"a":"Ä"}` {
		t.Fatalf("asset file = %q, %v", data, err)
	}
}

func TestProduceCarriesForwardWhenAssetIndexUnchanged(t *testing.T) {
	h := newHarness(t, "25w02a",
		map[string]string{"assets/minecraft/lang/en_us.json": `{"a":"A"}`},
		map[string]string{"minecraft/lang/de_de.json": `{"a":"Ä"}`},
		language.Filter{},
	)
	first := h.produce(t, "25w02a", state.Entry{})
	gets := len(h.fetcher.gets)

	second := h.produce(t, "25w02a", state.Entry{SHA1: first.Hashes, AssetIndex: first.AssetIndex})
	if diff := deep.Equal(second.Hashes, first.Hashes); diff != nil {
		t.Fatalf("hashes differ: %v", diff)
	}
	if len(h.fetcher.downloads) != 1 {
		t.Fatalf("downloads = %d, asset languages must not be fetched again", len(h.fetcher.downloads))
	}
	if got := len(h.fetcher.gets) - gets; got != 1 {
		t.Fatalf("second run made %d requests, want only the client manifest", got)
	}
}

func TestProduceLegacyJarSkipsAssets(t *testing.T) {
	h := newHarness(t, "b1.0",
		map[string]string{
			"lang/en_US.lang":    "tile.stone.name=Stone\n",
			"lang/de_DE.lang":    "tile.stone.name=Stein\n",
			"lang/stats_US.lang": "stat.walk=Walked\n",
			"terrain.png":        "png",
		},
		nil,
		language.NewFilter([]string{"de-DE"}),
	)
	out := h.produce(t, "b1.0", state.Entry{})
	want := extract.HashMap{
		"old/de_DE.lang":    fileutil.SHA1Bytes([]byte("tile.stone.name=Stein\n")),
		"old/stats_US.lang": fileutil.SHA1Bytes([]byte("stat.walk=Walked\n")),
	}
	if diff := deep.Equal(out.Hashes, want); diff != nil {
		t.Fatalf("hashes differ: %v", diff)
	}
	if !fileutil.Exists(h.fs, "/out/java/old/de_DE.json") {
		t.Fatal("expected JSON companion for legacy language")
	}
	for _, url := range h.fetcher.gets {
		if url == "https://meta.example/assets/19.json" {
			t.Fatal("asset index must not be fetched when the jar carries every language")
		}
	}
}

func TestProduceLangAssetsGetCompanions(t *testing.T) {
	h := newHarness(t, "1.12.2",
		map[string]string{"assets/minecraft/lang/en_us.lang": "gui.done=Done\n"},
		map[string]string{
			"minecraft/lang/en_us.lang": "gui.done=Done\n",
			"minecraft/lang/ja_jp.lang": "gui.done=完了\n",
		},
		language.Filter{},
	)
	out := h.produce(t, "1.12.2", state.Entry{})
	want := extract.HashMap{
		"old/en_us.lang": fileutil.SHA1Bytes([]byte("gui.done=Done\n")),
		"old/ja_jp.lang": fileutil.SHA1Bytes([]byte("gui.done=完了\n")),
	}
	if diff := deep.Equal(out.Hashes, want); diff != nil {
		t.Fatalf("hashes differ: %v", diff)
	}
	data, err := afero.ReadFile(h.fs, "/out/java/old/ja_jp.json")
	if err != nil {
		t.Fatalf("companion: %v", err)
	}
	if string(data) != "{\n  \"gui.done\": \"完了\"\n}" {
		t.Fatalf("companion = %q", data)
	}
}

func TestBackfillVersionsOldestFirst(t *testing.T) {
	h := newHarness(t, "25w02a", map[string]string{"assets/minecraft/lang/en_us.json": "{}"}, nil, language.Filter{})
	h.fetcher.docs["https://meta.example/manifest.json"] = []byte(manifestFixture)
	h.edition.settings.ManifestURL = "https://meta.example/manifest.json"

	_, m, err := h.edition.FetchManifest(context.Background())
	if err != nil {
		t.Fatalf("FetchManifest: %v", err)
	}
	if diff := deep.Equal(h.edition.BackfillVersions(m), []string{"b1.0", "1.12.2", "25w02a"}); diff != nil {
		t.Fatalf("backfill order differs: %v", diff)
	}
}
