package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains output, cache, and ledger locations.
type Paths struct {
	OutputDir   string `toml:"output_dir"`
	PackagesDir string `toml:"packages_dir"`
	StateFile   string `toml:"state_file"`
	LogDir      string `toml:"log_dir"`
	HistoryDB   string `toml:"history_db"`
}

// Filter contains the locale allowlist. An empty list exports every locale.
type Filter struct {
	Languages []string `toml:"languages"`
}

// Bedrock contains catalog and package settings for the Bedrock edition.
type Bedrock struct {
	CatalogURL        string   `toml:"catalog_url"`
	CatalogKey        string   `toml:"catalog_key"`
	CatalogUserAgent  string   `toml:"catalog_user_agent"`
	MirrorURLTemplate string   `toml:"mirror_url_template"`
	Arch              string   `toml:"arch"`
	MinArchivalStatus int      `toml:"min_archival_status"`
	UnpackCommand     []string `toml:"unpack_command"`
	MergeOrder        []string `toml:"merge_order"`
}

// Java contains manifest and asset settings for the Java edition.
type Java struct {
	ManifestURL    string `toml:"manifest_url"`
	ResourcesURL   string `toml:"resources_url"`
	Channel        string `toml:"channel"`
	BackfillOldest string `toml:"backfill_oldest"`
}

// Network contains HTTP client settings shared by both editions.
type Network struct {
	TimeoutSeconds    int    `toml:"timeout_seconds"`
	DownloadAttempts  int    `toml:"download_attempts"`
	RetryDelaySeconds int    `toml:"retry_delay_seconds"`
	UserAgent         string `toml:"user_agent"`
	MinFreeGiB        int    `toml:"min_free_gib"`
}

// Workflow contains the bounded retry budget of a pipeline run.
type Workflow struct {
	MaxAttempts       int `toml:"max_attempts"`
	RetryDelaySeconds int `toml:"retry_delay_seconds"`
}

// Signal controls the per-edition change signal files consumed by CI.
type Signal struct {
	Enabled     bool   `toml:"enabled"`
	BedrockPath string `toml:"bedrock_path"`
	JavaPath    string `toml:"java_path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for mclocale.
//
// Configuration sections by subsystem:
//   - Paths: output tree, package cache, state file, logs, run ledger
//   - Filter: locale allowlist applied during extraction
//   - Bedrock: version catalog, mirror template, GDK unpack tool, merge order
//   - Java: version manifest and asset resources
//   - Network: HTTP timeouts and download retries
//   - Workflow: resolution/acquisition retry budget
//   - Signal: change signal files for downstream automation
//   - Logging: log format, level, and retention
type Config struct {
	Paths    Paths    `toml:"paths"`
	Filter   Filter   `toml:"filter"`
	Bedrock  Bedrock  `toml:"bedrock"`
	Java     Java     `toml:"java"`
	Network  Network  `toml:"network"`
	Workflow Workflow `toml:"workflow"`
	Signal   Signal   `toml:"signal"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/mclocale/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("mclocale.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a pipeline run writes into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Paths.OutputDir,
		c.Paths.PackagesDir,
		c.Paths.LogDir,
		filepath.Dir(c.Paths.StateFile),
		filepath.Dir(c.Paths.HistoryDB),
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// BedrockExtractedDir is the per-source output tree of the Bedrock edition.
func (c *Config) BedrockExtractedDir() string {
	return filepath.Join(c.Paths.OutputDir, "bedrock", "extracted")
}

// BedrockMergedDir holds one merged JSON file per locale.
func (c *Config) BedrockMergedDir() string {
	return filepath.Join(c.Paths.OutputDir, "bedrock", "merged")
}

// JavaOutputDir is the output tree of the Java edition.
func (c *Config) JavaOutputDir() string {
	return filepath.Join(c.Paths.OutputDir, "java")
}

// PackageDir returns the download cache directory for an edition.
func (c *Config) PackageDir(edition string) string {
	return filepath.Join(c.Paths.PackagesDir, edition)
}

// LockPath returns the single-run lock file guarding the state file.
func (c *Config) LockPath() string {
	return c.Paths.StateFile + ".lock"
}

// HTTPTimeout returns the per-request network timeout.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.Network.TimeoutSeconds) * time.Second
}

// DownloadRetryDelay returns the pause between download attempts.
func (c *Config) DownloadRetryDelay() time.Duration {
	return time.Duration(c.Network.RetryDelaySeconds) * time.Second
}

// WorkflowRetryDelay returns the pause between pipeline attempts.
func (c *Config) WorkflowRetryDelay() time.Duration {
	return time.Duration(c.Workflow.RetryDelaySeconds) * time.Second
}

// SignalPath returns the signal file configured for edition, or "".
func (c *Config) SignalPath(edition string) string {
	if !c.Signal.Enabled {
		return ""
	}
	switch edition {
	case "bedrock":
		return c.Signal.BedrockPath
	case "java":
		return c.Signal.JavaPath
	default:
		return ""
	}
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// SampleConfig returns the embedded sample configuration.
func SampleConfig() string {
	return sampleConfig
}
