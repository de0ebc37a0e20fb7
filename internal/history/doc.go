// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history rebuilds stored conversations as turn/part sequences.
//
// The backend stores each assistant response as one canonical message
// with content, optional thinking, and optional tool calls. The
// formatter expands those back into the part structure the live stream
// produces, marking every part historical, so the view layer renders
// loaded and live conversations identically.
package history
