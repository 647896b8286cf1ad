package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeFilter()
	c.normalizeBedrock()
	c.normalizeJava()
	c.normalizeNetwork()
	if err := c.normalizeSignal(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	fields := []struct {
		name     string
		value    *string
		fallback string
	}{
		{"paths.output_dir", &c.Paths.OutputDir, defaultOutputDir},
		{"paths.packages_dir", &c.Paths.PackagesDir, defaultPackagesDir},
		{"paths.state_file", &c.Paths.StateFile, defaultStateFile},
		{"paths.log_dir", &c.Paths.LogDir, defaultLogDir},
		{"paths.history_db", &c.Paths.HistoryDB, defaultHistoryDB},
	}
	for _, field := range fields {
		if strings.TrimSpace(*field.value) == "" {
			*field.value = field.fallback
		}
		expanded, err := expandPath(strings.TrimSpace(*field.value))
		if err != nil {
			return fmt.Errorf("%s: %w", field.name, err)
		}
		*field.value = expanded
	}
	return nil
}

// normalizeFilter reads EXPORT_LANGUAGES only when the file leaves the
// allowlist empty. The value is a comma separated list such as "en-US,zh-CN".
func (c *Config) normalizeFilter() {
	if len(c.Filter.Languages) == 0 {
		if value, ok := os.LookupEnv("EXPORT_LANGUAGES"); ok {
			c.Filter.Languages = splitList(value)
		}
	}
	c.Filter.Languages = splitList(strings.Join(c.Filter.Languages, ","))
}

func (c *Config) normalizeBedrock() {
	c.Bedrock.CatalogURL = strings.TrimSpace(c.Bedrock.CatalogURL)
	if c.Bedrock.CatalogURL == "" {
		c.Bedrock.CatalogURL = defaultBedrockCatalogURL
	}
	c.Bedrock.CatalogKey = strings.TrimSpace(c.Bedrock.CatalogKey)
	c.Bedrock.CatalogUserAgent = strings.TrimSpace(c.Bedrock.CatalogUserAgent)
	if c.Bedrock.CatalogUserAgent == "" {
		c.Bedrock.CatalogUserAgent = defaultBedrockCatalogAgent
	}
	c.Bedrock.MirrorURLTemplate = strings.TrimSpace(c.Bedrock.MirrorURLTemplate)
	c.Bedrock.Arch = strings.TrimSpace(c.Bedrock.Arch)
	if c.Bedrock.Arch == "" {
		c.Bedrock.Arch = defaultBedrockArch
	}
	if len(c.Bedrock.MergeOrder) == 0 {
		c.Bedrock.MergeOrder = append([]string(nil), DefaultMergeOrder...)
	}
	command := c.Bedrock.UnpackCommand[:0]
	for _, arg := range c.Bedrock.UnpackCommand {
		if trimmed := strings.TrimSpace(arg); trimmed != "" {
			command = append(command, trimmed)
		}
	}
	c.Bedrock.UnpackCommand = command
}

func (c *Config) normalizeJava() {
	c.Java.ManifestURL = strings.TrimSpace(c.Java.ManifestURL)
	if c.Java.ManifestURL == "" {
		c.Java.ManifestURL = defaultJavaManifestURL
	}
	c.Java.ResourcesURL = strings.TrimRight(strings.TrimSpace(c.Java.ResourcesURL), "/")
	if c.Java.ResourcesURL == "" {
		c.Java.ResourcesURL = defaultJavaResourcesURL
	}
	c.Java.Channel = strings.ToLower(strings.TrimSpace(c.Java.Channel))
	if c.Java.Channel == "" {
		c.Java.Channel = defaultJavaChannel
	}
	c.Java.BackfillOldest = strings.TrimSpace(c.Java.BackfillOldest)
}

func (c *Config) normalizeNetwork() {
	c.Network.UserAgent = strings.TrimSpace(c.Network.UserAgent)
	if c.Network.UserAgent == "" {
		c.Network.UserAgent = defaultUserAgent
	}
}

// normalizeSignal enables the signal sink inside GitHub Actions, where the
// per-edition files are named by BEDROCK_EDITION and JAVA_EDITION.
func (c *Config) normalizeSignal() error {
	if value, ok := os.LookupEnv("GITHUB_ACTIONS"); ok && strings.TrimSpace(value) != "" {
		c.Signal.Enabled = true
		if c.Signal.BedrockPath == "" {
			c.Signal.BedrockPath = os.Getenv("BEDROCK_EDITION")
		}
		if c.Signal.JavaPath == "" {
			c.Signal.JavaPath = os.Getenv("JAVA_EDITION")
		}
	}
	var err error
	if c.Signal.BedrockPath, err = expandPath(strings.TrimSpace(c.Signal.BedrockPath)); err != nil {
		return fmt.Errorf("signal.bedrock_path: %w", err)
	}
	if c.Signal.JavaPath, err = expandPath(strings.TrimSpace(c.Signal.JavaPath)); err != nil {
		return fmt.Errorf("signal.java_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
