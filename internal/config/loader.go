// Package config provides configuration loading for filesearchd.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const maxConfigFileSize = 1024 * 1024 // 1MB

// Load reads configuration from a YAML file, then overrides with
// environment variables.
//
// Precedence (highest to lowest):
//  1. Environment variables (SANDBOX_ALLOWED_PATHS, SERVER_PORT, ...)
//  2. YAML config file
//  3. Hardcoded defaults
//
// Environment variables split on the first underscore into
// section.field_name: SERVER_SHUTDOWN_TIMEOUT -> server.shutdown_timeout,
// SANDBOX_SHOW_HIDDEN -> sandbox.show_hidden. List-valued fields accept
// comma-separated values.
//
// A missing config file is not an error; defaults and environment
// variables still apply. Files larger than 1MB are rejected.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath != "" {
		content, err := readConfigFile(configPath)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
		} else if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", transformEnvKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	normalizeLists(&cfg)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return content, nil
}

// transformEnvKey maps SECTION_FIELD_NAME environment variables to
// section.field_name koanf keys. The split is on the first underscore
// only, so field names keep their underscores.
func transformEnvKey(s string) string {
	lower := strings.ToLower(s)
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) == 1 {
		return lower
	}
	return parts[0] + "." + parts[1]
}

// normalizeLists splits single comma-separated entries so list fields
// can be set from environment variables.
func normalizeLists(cfg *Config) {
	cfg.Sandbox.AllowedPaths = splitCommaEntries(cfg.Sandbox.AllowedPaths)
	cfg.Sandbox.ExcludePaths = splitCommaEntries(cfg.Sandbox.ExcludePaths)
	cfg.Masker.Paths = splitCommaEntries(cfg.Masker.Paths)
}

func splitCommaEntries(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Server.Transport == "" {
		cfg.Server.Transport = TransportStdio
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 6277
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	if cfg.Sandbox.DefaultTimeLimit == 0 {
		cfg.Sandbox.DefaultTimeLimit = 10 * time.Second
	}

	if cfg.Masker.Mode == "" {
		cfg.Masker.Mode = "prefix"
	}
	if cfg.Masker.Token == "" {
		cfg.Masker.Token = "MASK"
	}
}
