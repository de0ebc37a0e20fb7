// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the interactive chat interface as a Bubble
// Tea model.
//
// The update loop is the single mutator of UI and conversation state.
// A stream reader goroutine decodes backend events and delivers them as
// messages over a buffered channel; re-rendering is throttled to a
// capped frame rate so token-by-token streaming stays smooth on slow
// terminals.
package chat
