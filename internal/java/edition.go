package java

import (
	"context"
	"encoding/json"
	"log/slog"
	"maps"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"mclocale/internal/acquire"
	"mclocale/internal/catalog"
	"mclocale/internal/config"
	"mclocale/internal/extract"
	"mclocale/internal/fileutil"
	"mclocale/internal/httpfetch"
	"mclocale/internal/langfile"
	"mclocale/internal/language"
	"mclocale/internal/logging"
	"mclocale/internal/services"
	"mclocale/internal/state"
	"mclocale/internal/workflow"
)

// Name is the edition key used in the state file and signal configuration.
const Name = "java"

// Fetcher retrieves documents and verified files. httpfetch.Client
// satisfies it.
type Fetcher interface {
	Get(ctx context.Context, url string, headers map[string]string) ([]byte, error)
	Download(ctx context.Context, d httpfetch.Download) (httpfetch.Result, error)
}

// Acquirer obtains package files. acquire.Acquirer satisfies it.
type Acquirer interface {
	Acquire(ctx context.Context, t acquire.Target) (string, error)
}

// Settings holds the edition's configuration.
type Settings struct {
	ManifestURL    string
	ResourcesURL   string
	Channel        string
	BackfillOldest string
	PackageDir     string
	OutputDir      string
	Filter         language.Filter
}

// SettingsFromConfig extracts the Java settings from cfg.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		ManifestURL:    cfg.Java.ManifestURL,
		ResourcesURL:   cfg.Java.ResourcesURL,
		Channel:        cfg.Java.Channel,
		BackfillOldest: cfg.Java.BackfillOldest,
		PackageDir:     cfg.PackageDir(Name),
		OutputDir:      cfg.JavaOutputDir(),
		Filter:         language.NewFilter(cfg.Filter.Languages),
	}
}

type clientManifest struct {
	AssetIndex json.RawMessage `json:"assetIndex"`
	Downloads  struct {
		Client struct {
			URL  string `json:"url"`
			SHA1 string `json:"sha1"`
			Size int64  `json:"size"`
		} `json:"client"`
	} `json:"downloads"`
}

// Edition produces the Java output tree.
type Edition struct {
	settings Settings
	fs       afero.Fs
	catalogs *catalog.Client
	fetcher  Fetcher
	acquirer Acquirer
	logger   *slog.Logger
}

// New constructs the edition. A nil fs uses the OS filesystem.
func New(settings Settings, fs afero.Fs, fetcher Fetcher, acquirer Acquirer, logger *slog.Logger) *Edition {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Edition{
		settings: settings,
		fs:       fs,
		catalogs: catalog.NewClient(fetcher),
		fetcher:  fetcher,
		acquirer: acquirer,
		logger:   logging.NewComponentLogger(logger, Name),
	}
}

// Name implements workflow.Edition.
func (e *Edition) Name() string {
	return Name
}

// FetchManifest downloads the version manifest and parses it.
func (e *Edition) FetchManifest(ctx context.Context) ([]byte, *catalog.JavaManifest, error) {
	data, err := e.catalogs.FetchJavaDocument(ctx, e.settings.ManifestURL)
	if err != nil {
		return nil, nil, err
	}
	m, err := catalog.ParseJavaManifest(data)
	if err != nil {
		return nil, nil, services.Wrap(services.ErrResolution, "catalog", "parse java manifest", "", err)
	}
	return data, m, nil
}

// BackfillVersions lists the versions to backfill, oldest first.
func (e *Edition) BackfillVersions(m *catalog.JavaManifest) []string {
	return m.BackfillIDs(e.settings.BackfillOldest)
}

// Produce implements workflow.Edition.
func (e *Edition) Produce(ctx context.Context, req workflow.Request, prior state.Entry) (workflow.Outcome, error) {
	m, err := e.loadManifest(ctx, req.Catalog)
	if err != nil {
		return workflow.Outcome{}, err
	}
	desc, err := m.Resolve(req.Version, e.settings.Channel)
	if err != nil {
		return workflow.Outcome{}, err
	}
	ctx = services.WithVersion(ctx, desc.ID)
	logger := logging.WithContext(ctx, e.logger)
	logger.Info("resolved version",
		logging.String("channel", desc.Channel),
		logging.String("release", desc.ReleaseKey),
		logging.String(logging.FieldEventType, "version_resolved"),
	)

	client, err := e.clientManifest(ctx, desc)
	if err != nil {
		return workflow.Outcome{}, err
	}
	jar, err := e.acquirer.Acquire(ctx, acquire.Target{
		Dest:  filepath.Join(e.settings.PackageDir, "Java_Edition_"+desc.ID+".jar"),
		URLs:  []string{client.Downloads.Client.URL},
		SHA1:  client.Downloads.Client.SHA1,
		Label: "Java " + desc.ID,
	})
	if err != nil {
		return workflow.Outcome{}, err
	}
	result, err := extract.New(e.fs, e.settings.OutputDir, e.logger).ExtractArchive(ctx, jar, JarRules(e.settings.Filter))
	if err != nil {
		return workflow.Outcome{}, err
	}

	out := workflow.Outcome{
		Version:    desc.ID,
		Hashes:     maps.Clone(result.Hashes),
		AssetIndex: client.AssetIndex,
		Files:      result.Files,
	}
	if len(result.Hashes) > 1 {
		return out, nil
	}
	if SameAssetIndex(prior.AssetIndex, client.AssetIndex) {
		carried := e.carryForward(out.Hashes, prior)
		logger.Info("asset index unchanged",
			logging.Int("carried", carried),
			logging.String(logging.FieldEventType, "asset_index_unchanged"),
		)
		return out, nil
	}
	files, err := e.fetchAssetLanguages(ctx, client.AssetIndex, sourceName(result), out.Hashes)
	if err != nil {
		return workflow.Outcome{}, err
	}
	out.Files = append(out.Files, files...)
	return out, nil
}

func (e *Edition) loadManifest(ctx context.Context, cached []byte) (*catalog.JavaManifest, error) {
	if len(cached) == 0 {
		_, m, err := e.FetchManifest(ctx)
		return m, err
	}
	m, err := catalog.ParseJavaManifest(cached)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "catalog", "parse java manifest", "", err)
	}
	return m, nil
}

func (e *Edition) clientManifest(ctx context.Context, desc catalog.VersionDescriptor) (clientManifest, error) {
	var client clientManifest
	if strings.TrimSpace(desc.Reference) == "" {
		return client, services.Wrap(services.ErrResolution, "resolve", desc.ID, "manifest entry has no url", nil)
	}
	data, err := e.fetcher.Get(ctx, desc.Reference, nil)
	if err != nil {
		return client, err
	}
	if desc.SHA1 != "" && !strings.EqualFold(fileutil.SHA1Bytes(data), desc.SHA1) {
		return client, services.Wrap(services.ErrAcquisition, "acquire", desc.ID, "client manifest", httpfetch.ErrChecksumMismatch)
	}
	if err := json.Unmarshal(data, &client); err != nil {
		return client, services.Wrap(services.ErrAcquisition, "acquire", desc.ID, "decode client manifest", err)
	}
	if client.Downloads.Client.URL == "" {
		return client, services.Wrap(services.ErrResolution, "resolve", desc.ID, "client manifest has no client download", nil)
	}
	return client, nil
}

// carryForward copies prior hashes of asset languages that are still on
// disk and still pass the filter. It returns the number carried.
func (e *Edition) carryForward(hashes extract.HashMap, prior state.Entry) int {
	carried := 0
	for rel, hash := range prior.SHA1 {
		if _, ok := hashes[rel]; ok {
			continue
		}
		if !e.settings.Filter.AllowsPath(rel) {
			continue
		}
		if !fileutil.Exists(e.fs, filepath.Join(e.settings.OutputDir, filepath.FromSlash(rel))) {
			continue
		}
		hashes[rel] = hash
		carried++
	}
	return carried
}

func (e *Edition) fetchAssetLanguages(ctx context.Context, raw json.RawMessage, source string, hashes extract.HashMap) ([]extract.ExtractedFile, error) {
	logger := logging.WithContext(ctx, e.logger)
	var ref AssetIndexRef
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &ref); err != nil {
			return nil, services.Wrap(services.ErrAcquisition, "assets", "", "decode asset index reference", err)
		}
	}
	if ref.URL == "" {
		logging.WarnWithContext(logger, "client manifest has no asset index", "asset_index_missing",
			logging.String(logging.FieldImpact, "only the jar language is exported"),
		)
		return nil, nil
	}

	data, err := e.fetcher.Get(ctx, ref.URL, nil)
	if err != nil {
		return nil, err
	}
	if ref.SHA1 != "" && !strings.EqualFold(fileutil.SHA1Bytes(data), ref.SHA1) {
		return nil, services.Wrap(services.ErrAcquisition, "assets", ref.ID, "asset index", httpfetch.ErrChecksumMismatch)
	}
	var idx AssetIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, services.Wrap(services.ErrAcquisition, "assets", ref.ID, "decode asset index", err)
	}

	var files []extract.ExtractedFile
	for _, asset := range idx.Languages() {
		if asset.Name == source {
			continue
		}
		rel := OutputPath(asset.Name)
		if !e.settings.Filter.AllowsPath(rel) {
			continue
		}
		if err := e.fetchAsset(ctx, asset, rel); err != nil {
			return nil, err
		}
		hashes[rel] = asset.Hash
		files = append(files, extract.ExtractedFile{
			RelativePath: rel,
			Hash:         asset.Hash,
			Rule:         "asset",
			Entry:        asset.Name,
			Size:         asset.Size,
		})
	}
	logger.Info("asset languages fetched",
		logging.String("asset_index", ref.ID),
		logging.Int("files", len(files)),
		logging.String(logging.FieldEventType, "assets_complete"),
	)
	return files, nil
}

func (e *Edition) fetchAsset(ctx context.Context, asset LanguageAsset, rel string) error {
	dest := filepath.Join(e.settings.OutputDir, filepath.FromSlash(rel))
	if existing, err := fileutil.SHA1File(e.fs, dest); err != nil || !strings.EqualFold(existing, asset.Hash) {
		if _, err := e.fetcher.Download(ctx, httpfetch.Download{
			URL:   AssetURL(e.settings.ResourcesURL, asset.Hash),
			Dest:  dest,
			SHA1:  asset.Hash,
			Label: asset.Name,
		}); err != nil {
			return err
		}
	}
	if !strings.HasSuffix(rel, ".lang") {
		return nil
	}
	raw, err := afero.ReadFile(e.fs, dest)
	if err != nil {
		return services.Wrap(services.ErrPersistence, "assets", rel, "read language file", err)
	}
	companion, err := langfile.Marshal(langfile.Parse(raw), false)
	if err != nil {
		return services.Wrap(services.ErrPersistence, "assets", rel, "encode companion", err)
	}
	if err := fileutil.WriteAtomic(e.fs, extract.CompanionPath(dest), companion, 0o644); err != nil {
		return services.Wrap(services.ErrPersistence, "assets", rel, "write companion", err)
	}
	return nil
}

// sourceName returns the file name of the language taken from the jar.
func sourceName(result *extract.Result) string {
	for _, f := range result.Files {
		if f.Entry != statsEntry {
			return filepath.Base(f.RelativePath)
		}
	}
	return ""
}
