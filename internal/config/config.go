// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/pollen-tui/internal/catalog"
	"github.com/jeranaias/pollen-tui/internal/util"
)

// DefaultEndpoint is the chat-completions URL used when the config file
// does not override it.
const DefaultEndpoint = "https://gen.pollinations.ai/v1/chat/completions"

// Config is the startup configuration.
type Config struct {
	// Endpoint is the chat-completions URL completions are POSTed to.
	Endpoint string `toml:"endpoint"`

	// Model is the model selected when the app starts.
	Model string `toml:"model"`

	// Debug enables the debug log file at ~/.pollen/debug.log.
	Debug bool `toml:"debug"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Endpoint: DefaultEndpoint,
		Model:    catalog.DefaultModel,
	}
}

// Dir returns the configuration directory, ~/.pollen.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".pollen"), nil
}

// Path returns the config file location, ~/.pollen/config.toml.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file at path, fills defaults for absent fields,
// applies environment overrides, and validates. A missing file is not an
// error; defaults plus environment apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	cfg.fillDefaults()
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) fillDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	if c.Model == "" {
		c.Model = catalog.DefaultModel
	}
}

// applyEnvOverrides lets POLLEN_* variables win over the file. Useful
// for one-off runs against a staging endpoint.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("POLLEN_ENDPOINT"); v != "" {
		c.Endpoint = v
	}
	if v := os.Getenv("POLLEN_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("POLLEN_DEBUG"); v != "" {
		c.Debug = v == "1" || strings.EqualFold(v, "true")
	}
}

// EnvAPIKey returns the POLLEN_API_KEY override, if set. It wins over
// the persisted key for the session but is never written to storage.
func EnvAPIKey() string {
	return os.Getenv("POLLEN_API_KEY")
}

// ValidationError describes one rejected field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the configuration, returning the first problem found.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &ValidationError{Field: "endpoint", Message: fmt.Sprintf("not a valid http(s) URL: %q", c.Endpoint)}
	}
	if c.Model == "" {
		return &ValidationError{Field: "model", Message: "must not be empty"}
	}
	return nil
}

// Save writes the config as TOML with private permissions.
func (c *Config) Save(path string) error {
	var sb strings.Builder
	sb.WriteString("# pollen configuration\n")
	sb.WriteString("# Generated file; edits are picked up live while the app runs.\n\n")
	if err := toml.NewEncoder(&sb).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return util.AtomicWriteFile(path, []byte(sb.String()), 0600)
}
