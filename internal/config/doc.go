// Package config loads, normalizes, and validates mclocale configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the environment variables the CI
// workflow sets: EXPORT_LANGUAGES for the locale allowlist, and
// GITHUB_ACTIONS with BEDROCK_EDITION/JAVA_EDITION for change signal files.
// The environment is consulted once, during Load; every other package
// receives its settings explicitly.
package config
