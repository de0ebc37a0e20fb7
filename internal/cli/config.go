// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - Configuration command handler for the vela CLI.
//
// Command: config [show|set|path]
//
// Examples:
//   vela config show
//   vela config path
//   vela config set server.url https://vela.example.com
//   vela config set chat.model qwen3:14b
//   vela config set ui.theme light

package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/velachat/vela-tui/internal/config"
)

// HandleConfig handles the "config" command.
func HandleConfig(args Args) error {
	switch args.Subcommand {
	case "", "show", "get":
		return configShow()
	case "path":
		return configPath()
	case "set":
		return configSet(args.ConfigKey, args.ConfigVal)
	default:
		return NewUsageError("unknown config subcommand %q (show, set, path)", args.Subcommand)
	}
}

func configShow() error {
	cfg, err := config.Load()
	if err != nil {
		return NewConfigError(err)
	}
	fmt.Printf("server.url            = %s\n", cfg.Server.URL)
	fmt.Printf("server.timeout        = %s\n", cfg.Server.Timeout)
	fmt.Printf("chat.model            = %s\n", orDefault(cfg.Chat.Model))
	fmt.Printf("chat.use_web_search   = %v\n", cfg.Chat.UseWebSearch)
	fmt.Printf("chat.reconcile_delay  = %s\n", cfg.Chat.ReconcileDelay)
	fmt.Printf("ui.theme              = %s\n", cfg.UI.Theme)
	fmt.Printf("ui.show_thinking      = %v\n", cfg.UI.ShowThinking)
	fmt.Printf("ui.show_stats         = %v\n", cfg.UI.ShowStats)
	fmt.Printf("log.level             = %s\n", cfg.Log.Level)
	return nil
}

func configPath() error {
	path, err := config.Path()
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

func configSet(key, value string) error {
	if key == "" || value == "" {
		return NewUsageError("usage: vela config set <key> <value>")
	}

	cfg, err := config.Load()
	if err != nil {
		return NewConfigError(err)
	}
	if err := applyConfigKey(cfg, key, value); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return NewConfigError(err)
	}
	if err := config.Save(cfg); err != nil {
		return NewConfigError(err)
	}
	fmt.Printf("%s = %s\n", key, value)
	return nil
}

// applyConfigKey sets one dotted key on the config.
func applyConfigKey(cfg *config.Config, key, value string) error {
	switch strings.ToLower(key) {
	case "server.url":
		cfg.Server.URL = value
	case "chat.model":
		cfg.Chat.Model = value
	case "chat.use_web_search":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return NewUsageError("%s wants true or false, got %q", key, value)
		}
		cfg.Chat.UseWebSearch = b
	case "ui.theme":
		cfg.UI.Theme = value
	case "ui.show_thinking":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return NewUsageError("%s wants true or false, got %q", key, value)
		}
		cfg.UI.ShowThinking = b
	case "ui.show_stats":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return NewUsageError("%s wants true or false, got %q", key, value)
		}
		cfg.UI.ShowStats = b
	case "log.level":
		cfg.Log.Level = value
	default:
		return NewUsageError("unknown config key %q", key)
	}
	return nil
}

func orDefault(s string) string {
	if s == "" {
		return "(backend default)"
	}
	return s
}
