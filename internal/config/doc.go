// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for vela-tui.
//
// Configuration file location: ~/.vela/config.toml (override the directory
// with VELA_HOME). Precedence, lowest to highest: built-in defaults, the
// TOML file, environment variables (VELA_SERVER, VELA_MODEL, VELA_LOG_LEVEL,
// VELA_THEME).
//
// Watch provides hot reload: edits to config.toml while the TUI is running
// take effect without a restart.
package config
