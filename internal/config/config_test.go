// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.URL == "" {
		t.Error("default server URL should not be empty")
	}
	if cfg.Server.Timeout != 30*time.Second {
		t.Errorf("default timeout = %v, want 30s", cfg.Server.Timeout)
	}
	if cfg.Chat.ReconcileDelay != time.Second {
		t.Errorf("default reconcile delay = %v, want 1s", cfg.Chat.ReconcileDelay)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromPathMissingFile(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("missing file should yield defaults, got error: %v", err)
	}
	if cfg.Server.URL != Default().Server.URL {
		t.Errorf("expected default URL, got %q", cfg.Server.URL)
	}
}

func TestLoadFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[server]
url = "https://chat.example.com"

[chat]
model = "gpt-large"
use_web_search = true

[ui]
theme = "dark"
`
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if cfg.Server.URL != "https://chat.example.com" {
		t.Errorf("server URL = %q", cfg.Server.URL)
	}
	if cfg.Chat.Model != "gpt-large" {
		t.Errorf("model = %q", cfg.Chat.Model)
	}
	if !cfg.Chat.UseWebSearch {
		t.Error("use_web_search should be true")
	}
	// Unset values fall back to defaults.
	if cfg.Server.Timeout != 30*time.Second {
		t.Errorf("timeout should default, got %v", cfg.Server.Timeout)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("VELA_SERVER", "http://envhost:9000")
	t.Setenv("VELA_MODEL", "env-model")

	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.URL != "http://envhost:9000" {
		t.Errorf("env URL override not applied, got %q", cfg.Server.URL)
	}
	if cfg.Chat.Model != "env-model" {
		t.Errorf("env model override not applied, got %q", cfg.Chat.Model)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad url", func(c *Config) { c.Server.URL = "not a url" }},
		{"bad scheme", func(c *Config) { c.Server.URL = "ftp://x" }},
		{"bad theme", func(c *Config) { c.UI.Theme = "neon" }},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }},
		{"negative delay", func(c *Config) { c.Chat.ReconcileDelay = -time.Second }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
