package bedrock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"mclocale/internal/acquire"
	"mclocale/internal/catalog"
	"mclocale/internal/config"
	"mclocale/internal/extract"
	"mclocale/internal/language"
	"mclocale/internal/logging"
	"mclocale/internal/services"
	"mclocale/internal/state"
	"mclocale/internal/workflow"
)

// Name is the edition key used in the state file and signal configuration.
const Name = "bedrock"

// Acquirer obtains package files. acquire.Acquirer satisfies it.
type Acquirer interface {
	Acquire(ctx context.Context, t acquire.Target) (string, error)
}

// Settings holds the edition's configuration.
type Settings struct {
	CatalogURL        string
	CatalogKey        string
	CatalogUserAgent  string
	MirrorURLTemplate string
	Arch              string
	MinArchivalStatus int
	PackageDir        string
	OutputDir         string
	Filter            language.Filter
}

// SettingsFromConfig extracts the Bedrock settings from cfg.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		CatalogURL:        cfg.Bedrock.CatalogURL,
		CatalogKey:        cfg.Bedrock.CatalogKey,
		CatalogUserAgent:  cfg.Bedrock.CatalogUserAgent,
		MirrorURLTemplate: cfg.Bedrock.MirrorURLTemplate,
		Arch:              cfg.Bedrock.Arch,
		MinArchivalStatus: cfg.Bedrock.MinArchivalStatus,
		PackageDir:        cfg.PackageDir(Name),
		OutputDir:         cfg.BedrockExtractedDir(),
		Filter:            language.NewFilter(cfg.Filter.Languages),
	}
}

// Edition produces the Bedrock extracted tree.
type Edition struct {
	settings Settings
	fs       afero.Fs
	catalogs *catalog.Client
	acquirer Acquirer
	unpacker Unpacker
	logger   *slog.Logger
}

// New constructs the edition. A nil fs uses the OS filesystem.
func New(settings Settings, fs afero.Fs, catalogs *catalog.Client, acquirer Acquirer, unpacker Unpacker, logger *slog.Logger) *Edition {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Edition{
		settings: settings,
		fs:       fs,
		catalogs: catalogs,
		acquirer: acquirer,
		unpacker: unpacker,
		logger:   logging.NewComponentLogger(logger, Name),
	}
}

// Name implements workflow.Edition.
func (e *Edition) Name() string {
	return Name
}

// FetchCatalog downloads the catalog document and parses it.
func (e *Edition) FetchCatalog(ctx context.Context) ([]byte, *catalog.Catalog, error) {
	data, err := e.catalogs.FetchBedrockDocument(ctx, e.source())
	if err != nil {
		return nil, nil, err
	}
	c, err := catalog.ParseBedrock(data, e.settings.CatalogKey)
	if err != nil {
		return nil, nil, services.Wrap(services.ErrResolution, "catalog", "parse bedrock catalog", "", err)
	}
	return data, c, nil
}

// BackfillVersions lists the eligible versions in catalog order.
func (e *Edition) BackfillVersions(c *catalog.Catalog) []string {
	var ids []string
	for _, desc := range c.Eligible(e.settings.Arch, e.settings.MinArchivalStatus) {
		ids = append(ids, desc.ID)
	}
	return ids
}

// Produce implements workflow.Edition.
func (e *Edition) Produce(ctx context.Context, req workflow.Request, _ state.Entry) (workflow.Outcome, error) {
	c, err := e.loadCatalog(ctx, req.Catalog)
	if err != nil {
		return workflow.Outcome{}, err
	}
	desc, err := catalog.Resolve(req.Version, c)
	if err != nil {
		return workflow.Outcome{}, err
	}
	variant, err := catalog.SelectVariant(desc, e.settings.Arch, e.settings.MinArchivalStatus)
	if err != nil {
		return workflow.Outcome{}, err
	}
	ctx = services.WithVersion(ctx, desc.ID)
	logger := logging.WithContext(ctx, e.logger)
	logger.Info("resolved version",
		logging.String("channel", desc.Channel),
		logging.String("build", string(desc.Build)),
		logging.String("release", desc.ReleaseKey),
		logging.String(logging.FieldEventType, "version_resolved"),
	)

	var result *extract.Result
	switch desc.Build {
	case catalog.BuildUWP:
		result, err = e.produceUWP(ctx, desc)
	case catalog.BuildGDK:
		result, err = e.produceGDK(ctx, desc, variant)
	default:
		err = services.Wrap(services.ErrResolution, "resolve", desc.ID, fmt.Sprintf("unknown build type %q", desc.Build), nil)
	}
	if err != nil {
		return workflow.Outcome{}, err
	}
	return workflow.Outcome{Version: desc.ID, Hashes: result.Hashes, Files: result.Files}, nil
}

func (e *Edition) source() catalog.BedrockSource {
	return catalog.BedrockSource{
		URL:       e.settings.CatalogURL,
		Key:       e.settings.CatalogKey,
		UserAgent: e.settings.CatalogUserAgent,
	}
}

func (e *Edition) loadCatalog(ctx context.Context, cached []byte) (*catalog.Catalog, error) {
	if len(cached) == 0 {
		_, c, err := e.FetchCatalog(ctx)
		return c, err
	}
	c, err := catalog.ParseBedrock(cached, e.settings.CatalogKey)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "catalog", "parse bedrock catalog", "", err)
	}
	return c, nil
}

func (e *Edition) produceUWP(ctx context.Context, desc catalog.VersionDescriptor) (*extract.Result, error) {
	id := desc.PackageID
	if strings.TrimSpace(id) == "" {
		id = desc.ID
	}
	if strings.TrimSpace(e.settings.MirrorURLTemplate) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "acquire", desc.ID, "bedrock.mirror_url_template is not configured", nil)
	}
	target := acquire.Target{
		Dest:  filepath.Join(e.settings.PackageDir, PackageFileName(desc)),
		URLs:  []string{MirrorURL(e.settings.MirrorURLTemplate, id)},
		Label: "Bedrock " + desc.ID,
	}
	pkg, err := e.acquirer.Acquire(ctx, target)
	if err != nil {
		return nil, err
	}
	return extract.New(e.fs, e.settings.OutputDir, e.logger).ExtractArchive(ctx, pkg, PackageRules(e.settings.Filter))
}

func (e *Edition) produceGDK(ctx context.Context, desc catalog.VersionDescriptor, variant catalog.Variant) (*extract.Result, error) {
	url := variant.FirstDownload()
	if url == "" {
		return nil, services.Wrap(services.ErrResolution, "resolve", desc.ID, "no download location published", catalog.ErrNoEligibleVariant)
	}
	target := acquire.Target{
		Dest:  filepath.Join(e.settings.PackageDir, PackageFileName(desc)),
		URLs:  []string{url},
		Label: "Bedrock " + desc.ID,
	}
	pkg, err := e.acquirer.Acquire(ctx, target)
	if err != nil {
		return nil, err
	}
	if e.unpacker == nil {
		return nil, services.Wrap(services.ErrConfiguration, "unpack", desc.ID, "no unpacker configured", nil)
	}

	scratch := filepath.Join(e.settings.PackageDir, "unpack-"+desc.ID)
	if err := e.fs.RemoveAll(scratch); err != nil {
		return nil, services.Wrap(services.ErrPersistence, "unpack", desc.ID, "clear scratch directory", err)
	}
	if err := e.fs.MkdirAll(scratch, 0o755); err != nil {
		return nil, services.Wrap(services.ErrPersistence, "unpack", desc.ID, "create scratch directory", err)
	}
	defer func() {
		if err := e.fs.RemoveAll(scratch); err != nil {
			e.logger.Warn("scratch cleanup failed", logging.String("path", scratch), logging.Error(err))
		}
	}()

	if err := e.unpacker.Unpack(ctx, pkg, scratch); err != nil {
		return nil, err
	}
	packs, err := e.resourcePacksDir(scratch)
	if err != nil {
		return nil, services.Wrap(services.ErrArchiveCorrupt, "extract", desc.ID, "unpacked tree has no resource packs", err)
	}
	src, err := extract.NewDirSource(e.fs, packs)
	if err != nil {
		return nil, services.Wrap(services.ErrArchiveCorrupt, "extract", desc.ID, "read unpacked tree", err)
	}
	return extract.New(e.fs, e.settings.OutputDir, e.logger).ExtractSource(ctx, src, UnpackedRules(e.settings.Filter))
}

// resourcePacksDir locates resource_packs under the first data folder found.
func (e *Edition) resourcePacksDir(root string) (string, error) {
	for _, name := range dataDirNames {
		dataDir := filepath.Join(root, name)
		if ok, _ := afero.DirExists(e.fs, dataDir); !ok {
			continue
		}
		packs := filepath.Join(dataDir, "resource_packs")
		if ok, _ := afero.DirExists(e.fs, packs); !ok {
			return "", fmt.Errorf("%s has no resource_packs folder", name)
		}
		return packs, nil
	}
	return "", errors.New("no data folder")
}

// PackageFileName is the deterministic cache name of a version's package.
func PackageFileName(desc catalog.VersionDescriptor) string {
	ext := ".appx"
	if desc.Build == catalog.BuildGDK {
		ext = ".msixvc"
	}
	return "Bedrock_Edition_" + desc.ID + ext
}

// MirrorURL fills the {id} placeholder of template with id, dots replaced
// by dashes.
func MirrorURL(template, id string) string {
	return strings.ReplaceAll(template, "{id}", strings.ReplaceAll(id, ".", "-"))
}
