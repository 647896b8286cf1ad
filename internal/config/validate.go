package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateBedrock(); err != nil {
		return err
	}
	if err := c.validateJava(); err != nil {
		return err
	}
	if err := c.validateNetwork(); err != nil {
		return err
	}
	if err := c.validateSignal(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateBedrock() error {
	if c.Bedrock.MirrorURLTemplate != "" && !strings.Contains(c.Bedrock.MirrorURLTemplate, "{id}") {
		return errors.New("bedrock.mirror_url_template must contain the {id} placeholder")
	}
	if c.Bedrock.MinArchivalStatus < 0 {
		return errors.New("bedrock.min_archival_status must be >= 0")
	}
	if len(c.Bedrock.UnpackCommand) > 0 {
		joined := strings.Join(c.Bedrock.UnpackCommand, " ")
		if !strings.Contains(joined, "{input}") || !strings.Contains(joined, "{output}") {
			return errors.New("bedrock.unpack_command must reference both {input} and {output}")
		}
	}
	seen := make(map[string]struct{}, len(c.Bedrock.MergeOrder))
	for _, pattern := range c.Bedrock.MergeOrder {
		trimmed := strings.TrimSpace(pattern)
		if trimmed == "" {
			return errors.New("bedrock.merge_order must not contain empty entries")
		}
		if idx := strings.Index(trimmed, "*"); idx >= 0 && idx != len(trimmed)-1 {
			return fmt.Errorf("bedrock.merge_order entry %q: wildcard is only supported as a suffix", trimmed)
		}
		if _, ok := seen[trimmed]; ok {
			return fmt.Errorf("bedrock.merge_order entry %q is listed twice", trimmed)
		}
		seen[trimmed] = struct{}{}
	}
	return nil
}

func (c *Config) validateJava() error {
	switch c.Java.Channel {
	case "release", "snapshot":
		return nil
	default:
		return fmt.Errorf("java.channel: unsupported value %q (want release or snapshot)", c.Java.Channel)
	}
}

func (c *Config) validateNetwork() error {
	return ensurePositiveMap(map[string]int{
		"network.timeout_seconds":   c.Network.TimeoutSeconds,
		"network.download_attempts": c.Network.DownloadAttempts,
		"workflow.max_attempts":     c.Workflow.MaxAttempts,
	})
}

func (c *Config) validateSignal() error {
	if !c.Signal.Enabled {
		return nil
	}
	if c.Signal.BedrockPath == "" && c.Signal.JavaPath == "" {
		return errors.New("signal.enabled requires signal.bedrock_path or signal.java_path (or BEDROCK_EDITION/JAVA_EDITION)")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must be >= 0")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
