package config

const (
	defaultOutputDir           = "."
	defaultPackagesDir         = "~/.cache/mclocale/packages"
	defaultStateFile           = "versions.json"
	defaultLogDir              = "~/.local/share/mclocale/logs"
	defaultHistoryDB           = "~/.local/share/mclocale/history.db"
	defaultLogRetentionDays    = 30
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultBedrockCatalogURL   = "https://data.mcappx.com/v2/bedrock.json"
	defaultBedrockCatalogKey   = "From_mcappx.com"
	defaultBedrockCatalogAgent = "mcappx_developer"
	defaultBedrockMirrorURL    = "https://dl.mcappx.com/be-{id}-x64-cn"
	defaultBedrockArch         = "x64"
	defaultMinArchivalStatus   = 2
	defaultJavaManifestURL     = "https://piston-meta.mojang.com/mc/game/version_manifest_v2.json"
	defaultJavaResourcesURL    = "https://resources.download.minecraft.net"
	defaultJavaChannel         = "snapshot"
	defaultJavaBackfillOldest  = "b1.0"
	defaultNetworkTimeout      = 60
	defaultDownloadAttempts    = 3
	defaultDownloadRetryDelay  = 2
	defaultMinFreeGiB          = 2
	defaultWorkflowMaxAttempts = 3
	defaultWorkflowRetryDelay  = 5
	defaultUserAgent           = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// DefaultMergeOrder lists the Bedrock resource packs in merge priority order.
// A trailing * matches every pack sharing the prefix.
var DefaultMergeOrder = []string{
	"beta",
	"chemistry",
	"editor",
	"education",
	"education_*",
	"experimental_*",
	"oreui",
	"persona",
	"previewapp",
	"vanilla",
	"vanilla_*",
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir:   defaultOutputDir,
			PackagesDir: defaultPackagesDir,
			StateFile:   defaultStateFile,
			LogDir:      defaultLogDir,
			HistoryDB:   defaultHistoryDB,
		},
		Bedrock: Bedrock{
			CatalogURL:        defaultBedrockCatalogURL,
			CatalogKey:        defaultBedrockCatalogKey,
			CatalogUserAgent:  defaultBedrockCatalogAgent,
			MirrorURLTemplate: defaultBedrockMirrorURL,
			Arch:              defaultBedrockArch,
			MinArchivalStatus: defaultMinArchivalStatus,
			MergeOrder:        append([]string(nil), DefaultMergeOrder...),
		},
		Java: Java{
			ManifestURL:    defaultJavaManifestURL,
			ResourcesURL:   defaultJavaResourcesURL,
			Channel:        defaultJavaChannel,
			BackfillOldest: defaultJavaBackfillOldest,
		},
		Network: Network{
			TimeoutSeconds:    defaultNetworkTimeout,
			DownloadAttempts:  defaultDownloadAttempts,
			RetryDelaySeconds: defaultDownloadRetryDelay,
			UserAgent:         defaultUserAgent,
			MinFreeGiB:        defaultMinFreeGiB,
		},
		Workflow: Workflow{
			MaxAttempts:       defaultWorkflowMaxAttempts,
			RetryDelaySeconds: defaultWorkflowRetryDelay,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
