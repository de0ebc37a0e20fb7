// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the reusable view pieces of the Vela TUI:
// the part renderer, conversation sidebar, status bar, login form, and
// the selection picker. Components hold no application state beyond
// what they draw; the chat model owns the data and key handling.
package components
