// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the vela command line: argument parsing,
// one-shot commands (ask, status, config, login), and the line-based
// chat REPL. The full-screen interface lives in internal/ui.
package cli
