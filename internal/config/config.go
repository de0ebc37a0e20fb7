// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for vela-tui.
//
// Configuration lives in TOML at ~/.vela/config.toml with sensible defaults
// and environment variable overrides. The file can be edited while the TUI
// runs; a watcher (see watch.go) reloads it on change.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/velachat/vela-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete vela-tui configuration.
type Config struct {
	// Server settings
	Server ServerConfig `toml:"server"`

	// Chat settings
	Chat ChatConfig `toml:"chat"`

	// UI settings
	UI UIConfig `toml:"ui"`

	// Log settings
	Log LogConfig `toml:"log"`
}

// ServerConfig contains backend connection settings.
type ServerConfig struct {
	// URL is the backend base URL; all endpoints hang off <URL>/api.
	URL string `toml:"url"`
	// Timeout applies to non-streaming requests.
	Timeout time.Duration `toml:"timeout"`
}

// ChatConfig contains per-turn defaults.
type ChatConfig struct {
	// Model is the model identifier sent with each chat request.
	// Empty means let the backend pick.
	Model string `toml:"model"`
	// UseWebSearch enables web search by default on new turns.
	UseWebSearch bool `toml:"use_web_search"`
	// ReconcileDelay is how long to wait after a turn settles before
	// fetching the backend's canonical conversation record.
	ReconcileDelay time.Duration `toml:"reconcile_delay"`
}

// UIConfig contains terminal UI settings.
type UIConfig struct {
	// Theme selects the color theme: "dark", "light", or "auto".
	Theme string `toml:"theme"`
	// ShowThinking expands thinking parts by default instead of collapsing.
	ShowThinking bool `toml:"show_thinking"`
	// ShowStats renders the per-turn statistics line after settle.
	ShowStats bool `toml:"show_stats"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`
}

// =============================================================================
// DEFAULTS AND PATHS
// =============================================================================

// Default returns the built-in default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			URL:     "http://127.0.0.1:8000",
			Timeout: 30 * time.Second,
		},
		Chat: ChatConfig{
			ReconcileDelay: time.Second,
		},
		UI: UIConfig{
			Theme:     "auto",
			ShowStats: true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// HomeDir returns the vela home directory (~/.vela), honoring VELA_HOME.
func HomeDir() (string, error) {
	if dir := os.Getenv("VELA_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".vela"), nil
}

// Path returns the configuration file path (~/.vela/config.toml).
func Path() (string, error) {
	dir, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// =============================================================================
// LOADING AND SAVING
// =============================================================================

// Load reads the configuration file, falling back to defaults when absent.
// Environment overrides are applied last, then the result is validated.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific TOML file with full
// validation. A missing file yields the defaults.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to its default path atomically.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}

	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return util.AtomicWriteFile(path, []byte(sb.String()), 0600)
}

// =============================================================================
// OVERRIDES, DEFAULTS, VALIDATION
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
func (c *Config) ApplyEnvOverrides() {
	// VELA_SERVER
	if u := os.Getenv("VELA_SERVER"); u != "" {
		c.Server.URL = u
	}

	// VELA_MODEL
	if model := os.Getenv("VELA_MODEL"); model != "" {
		c.Chat.Model = model
	}

	// VELA_LOG_LEVEL
	if level := os.Getenv("VELA_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}

	// VELA_THEME
	if theme := os.Getenv("VELA_THEME"); theme != "" {
		c.UI.Theme = theme
	}
}

// SetDefaults fills any zero values with their defaults.
func (c *Config) SetDefaults() {
	def := Default()
	if c.Server.URL == "" {
		c.Server.URL = def.Server.URL
	}
	if c.Server.Timeout == 0 {
		c.Server.Timeout = def.Server.Timeout
	}
	if c.Chat.ReconcileDelay == 0 {
		c.Chat.ReconcileDelay = def.Chat.ReconcileDelay
	}
	if c.UI.Theme == "" {
		c.UI.Theme = def.UI.Theme
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("server.url %q is not a valid URL", c.Server.URL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server.url scheme must be http or https, got %q", u.Scheme)
	}

	switch strings.ToLower(c.UI.Theme) {
	case "dark", "light", "auto":
	default:
		return fmt.Errorf("ui.theme must be dark, light, or auto, got %q", c.UI.Theme)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level %q is not a valid level", c.Log.Level)
	}

	if c.Chat.ReconcileDelay < 0 {
		return fmt.Errorf("chat.reconcile_delay must not be negative")
	}
	return nil
}
