package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/go-test/deep"
	"github.com/spf13/afero"

	"mclocale/internal/fileutil"
	"mclocale/internal/language"
	"mclocale/internal/logging"
	"mclocale/internal/services"
)

func buildZip(t *testing.T, files map[string]string) []byte {
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
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func testRules(filter language.Filter) []Rule {
	return []Rule{
		{
			Name:   "texts",
			Match:  All(HasPrefix("data/resource_packs/"), Contains("/texts/"), HasSuffix(".lang")),
			Filter: filter,
			Transform: func(entry string) string {
				rel := strings.TrimPrefix(entry, "data/resource_packs/")
				return strings.ReplaceAll(rel, "/texts/", "/")
			},
		},
		{
			Name:      "legacy",
			Match:     All(HasPrefix("data/lang/"), HasSuffix(".lang")),
			Filter:    filter,
			Transform: func(entry string) string { return "old/" + strings.TrimPrefix(entry, "data/lang/") },
		},
		{
			Name:  "nested",
			Match: All(HasPrefix("data/resource_packs/"), HasSuffix(".zip")),
			Transform: func(entry string) string {
				return strings.TrimSuffix(strings.TrimPrefix(entry, "data/resource_packs/"), ".zip")
			},
			Inner: []Rule{{
				Name:      "nested-texts",
				Match:     HasSuffix(".lang"),
				Filter:    filter,
				Transform: func(entry string) string { return strings.TrimPrefix(entry, "texts/") },
			}},
		},
	}
}

func writeArchive(t *testing.T, fs afero.Fs, path string, data []byte) {
	t.Helper()
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		t.Fatalf("write archive: %v", err)
	}
}

func TestExtractArchiveWritesPairsAndHashes(t *testing.T) {
	fs := afero.NewMemMapFs()
	vanilla := "## header\nitem.apple.name=Apple\t#\nitem.bread.name=Bread\n"
	writeArchive(t, fs, "/pkg/a.appx", buildZip(t, map[string]string{
		"data/resource_packs/vanilla/texts/en_US.lang": vanilla,
		"data/resource_packs/vanilla/texts/fr_FR.lang": "item.apple.name=Pomme\n",
		"data/lang/en_US.lang":                         "legacy.key=Legacy\n",
		"data/resource_packs/vanilla/manifest.json":    "{}",
		"AppxManifest.xml":                             "<xml/>",
	}))

	ex := New(fs, "/out", logging.NewNop())
	res, err := ex.ExtractArchive(context.Background(), "/pkg/a.appx", testRules(language.Filter{}))
	if err != nil {
		t.Fatalf("ExtractArchive: %v", err)
	}
	want := HashMap{
		"vanilla/en_US.lang": fileutil.SHA1Bytes([]byte(vanilla)),
		"vanilla/fr_FR.lang": fileutil.SHA1Bytes([]byte("item.apple.name=Pomme\n")),
		"old/en_US.lang":     fileutil.SHA1Bytes([]byte("legacy.key=Legacy\n")),
	}
	if diff := deep.Equal(res.Hashes, want); diff != nil {
		t.Fatalf("hashes: %v", diff)
	}

	text, err := afero.ReadFile(fs, "/out/vanilla/en_US.lang")
	if err != nil || string(text) != vanilla {
		t.Fatalf("text output = %q, %v", text, err)
	}
	companion, err := afero.ReadFile(fs, "/out/vanilla/en_US.json")
	if err != nil {
		t.Fatalf("read companion: %v", err)
	}
	wantJSON := "{\n  \"item.apple.name\": \"Apple\",\n  \"item.bread.name\": \"Bread\"\n}"
	if string(companion) != wantJSON {
		t.Fatalf("companion = %q", companion)
	}
}

func TestExtractOrderFollowsRulesThenPath(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeArchive(t, fs, "/pkg/a.appx", buildZip(t, map[string]string{
		"data/lang/zh_CN.lang":                         "a=b\n",
		"data/resource_packs/vanilla/texts/ja_JP.lang": "a=b\n",
		"data/resource_packs/beta/texts/en_US.lang":    "a=b\n",
		"data/lang/de_DE.lang":                         "a=b\n",
	}))
	res, err := New(fs, "/out", nil).ExtractArchive(context.Background(), "/pkg/a.appx", testRules(language.Filter{}))
	if err != nil {
		t.Fatalf("ExtractArchive: %v", err)
	}
	var order []string
	for _, f := range res.Files {
		order = append(order, f.RelativePath)
	}
	want := []string{"beta/en_US.lang", "vanilla/ja_JP.lang", "old/de_DE.lang", "old/zh_CN.lang"}
	if diff := deep.Equal(order, want); diff != nil {
		t.Fatalf("order: %v", diff)
	}
}

func TestExtractLanguageFilter(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeArchive(t, fs, "/pkg/a.appx", buildZip(t, map[string]string{
		"data/resource_packs/vanilla/texts/en_US.lang": "a=b\n",
		"data/resource_packs/vanilla/texts/fr_FR.lang": "a=c\n",
		"data/lang/en_US-pocket.lang":                  "a=d\n",
	}))
	res, err := New(fs, "/out", nil).ExtractArchive(context.Background(), "/pkg/a.appx", testRules(language.NewFilter([]string{"en-US"})))
	if err != nil {
		t.Fatalf("ExtractArchive: %v", err)
	}
	if _, ok := res.Hashes["vanilla/en_US.lang"]; !ok {
		t.Fatalf("en_US should be extracted: %v", res.Hashes)
	}
	if _, ok := res.Hashes["old/en_US-pocket.lang"]; !ok {
		t.Fatalf("pocket variant should be extracted: %v", res.Hashes)
	}
	if _, ok := res.Hashes["vanilla/fr_FR.lang"]; ok {
		t.Fatal("fr_FR should be filtered out of the hash map")
	}
	for _, p := range []string{"/out/vanilla/fr_FR.lang", "/out/vanilla/fr_FR.json"} {
		if fileutil.Exists(fs, p) {
			t.Fatalf("%s should not be written", p)
		}
	}
}

func TestExtractNestedArchive(t *testing.T) {
	fs := afero.NewMemMapFs()
	inner := buildZip(t, map[string]string{
		"texts/en_US.lang": "chem.key=Chemistry\n",
		"manifest.json":    "{}",
	})
	writeArchive(t, fs, "/pkg/a.appx", buildZip(t, map[string]string{
		"data/resource_packs/chemistry.zip": string(inner),
	}))
	res, err := New(fs, "/out", nil).ExtractArchive(context.Background(), "/pkg/a.appx", testRules(language.Filter{}))
	if err != nil {
		t.Fatalf("ExtractArchive: %v", err)
	}
	want := HashMap{"chemistry/en_US.lang": fileutil.SHA1Bytes([]byte("chem.key=Chemistry\n"))}
	if diff := deep.Equal(res.Hashes, want); diff != nil {
		t.Fatalf("hashes: %v", diff)
	}
	if !fileutil.Exists(fs, "/out/chemistry/en_US.json") {
		t.Fatal("expected nested companion output")
	}
}

func TestExtractCorruptArchive(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeArchive(t, fs, "/pkg/broken.appx", []byte("this is not a zip file"))
	res, err := New(fs, "/out", nil).ExtractArchive(context.Background(), "/pkg/broken.appx", testRules(language.Filter{}))
	if !errors.Is(err, services.ErrArchiveCorrupt) {
		t.Fatalf("expected archive corrupt, got %v", err)
	}
	if res == nil || res.Len() != 0 || res.Hashes == nil {
		t.Fatalf("expected empty result, got %+v", res)
	}
}

func TestExtractCorruptNestedArchiveDiscardsEverything(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeArchive(t, fs, "/pkg/a.appx", buildZip(t, map[string]string{
		"data/lang/en_US.lang":           "a=b\n",
		"data/resource_packs/broken.zip": "garbage",
	}))
	res, err := New(fs, "/out", nil).ExtractArchive(context.Background(), "/pkg/a.appx", testRules(language.Filter{}))
	if !errors.Is(err, services.ErrArchiveCorrupt) {
		t.Fatalf("expected archive corrupt, got %v", err)
	}
	if res.Len() != 0 {
		t.Fatalf("expected no partial results, got %v", res.Hashes)
	}
}

func TestExtractIsIdempotent(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeArchive(t, fs, "/pkg/a.appx", buildZip(t, map[string]string{
		"data/resource_packs/vanilla/texts/en_US.lang": "a=b\n",
		"data/lang/en_US.lang":                         "c=d\n",
	}))
	ex := New(fs, "/out", nil)
	first, err := ex.ExtractArchive(context.Background(), "/pkg/a.appx", testRules(language.Filter{}))
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := ex.ExtractArchive(context.Background(), "/pkg/a.appx", testRules(language.Filter{}))
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if diff := deep.Equal(first.Hashes, second.Hashes); diff != nil {
		t.Fatalf("hashes differ between runs: %v", diff)
	}
}

func TestExtractDirectorySourceRawRule(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/unpacked/Data/resource_packs/vanilla/texts/en_US.lang", []byte("a=b\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := afero.WriteFile(fs, "/unpacked/Data/resource_packs/vanilla/texts/languages.json", []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}
	src, err := NewDirSource(fs, "/unpacked")
	if err != nil {
		t.Fatalf("NewDirSource: %v", err)
	}
	rules := []Rule{
		{
			Name:      "texts",
			Match:     All(HasPrefix("Data/resource_packs/"), HasSuffix(".lang")),
			Transform: func(e string) string { return strings.Replace(TrimPrefixes(e, "Data/resource_packs/"), "/texts/", "/", 1) },
		},
		{
			Name:      "listing",
			Match:     Equals("Data/resource_packs/vanilla/texts/languages.json"),
			Transform: func(string) string { return "vanilla/languages.json" },
			Raw:       true,
		},
	}
	res, err := New(fs, "/out", nil).ExtractSource(context.Background(), src, rules)
	if err != nil {
		t.Fatalf("ExtractSource: %v", err)
	}
	if res.Len() != 2 {
		t.Fatalf("expected two files, got %v", res.Hashes)
	}
	data, err := afero.ReadFile(fs, "/out/vanilla/languages.json")
	if err != nil || string(data) != "[]" {
		t.Fatalf("raw output = %q, %v", data, err)
	}
}

func TestCompanionPath(t *testing.T) {
	if got := CompanionPath("old/en_US.lang"); got != "old/en_US.json" {
		t.Fatalf("CompanionPath = %q", got)
	}
}
