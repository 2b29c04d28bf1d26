// Package config loads fetchpipe settings: defaults, then an optional
// fetchpipe.yaml, then FETCHPIPE_* environment variables, each layer
// overriding the previous one.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// ConfigFileName is the name of the config file.
const ConfigFileName = "fetchpipe.yaml"

// ConfigFileNameAlt is the alternate name of the config file.
const ConfigFileNameAlt = "fetchpipe.yml"

// Default configuration values.
const (
	DefaultLimit   = 100
	DefaultVersion = "1.0"
)

// Config holds the compile policy handed to the compiler.
type Config struct {
	// DefaultLimit is the automatic row count applied to queries that
	// set neither limit nor page.
	DefaultLimit int `koanf:"default_limit"`
	// Version is the target-format version attribute.
	Version string `koanf:"version"`
}

// Load builds the configuration for the given directory. A missing
// config file is not an error; defaults and environment still apply.
// An explicit cfgFile skips discovery.
func Load(dir, cfgFile string) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"default_limit": DefaultLimit,
		"version":       DefaultVersion,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	if cfgFile == "" {
		cfgFile = findConfigFile(dir)
	}
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	}

	// 3. Environment variables (FETCHPIPE_ prefix)
	// Transform: FETCHPIPE_DEFAULT_LIMIT -> default_limit
	if err := k.Load(env.Provider("FETCHPIPE_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "FETCHPIPE_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &cfg, nil
}

// findConfigFile finds the config file in the given directory or any
// parent. Returns empty string if not found.
func findConfigFile(dir string) string {
	if dir == "" {
		dir, _ = os.Getwd()
	}
	for {
		for _, name := range []string{ConfigFileName, ConfigFileNameAlt} {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return ""
		}
		dir = parent
	}
}
