// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the Vela TUI.
//
// A Theme bundles every lipgloss style the chrome uses, built once at
// startup from the detected terminal background (or forced by the theme
// config setting) and passed down to components.
package styles
