// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// This file defines the Bubble Tea message types used by the chat
// interface: stream delivery, completion, authentication, conversation
// loading, picker data, and the render tick.

package chat

import (
	"time"

	"github.com/velachat/vela-tui/internal/api"
	"github.com/velachat/vela-tui/internal/controller"
	"github.com/velachat/vela-tui/internal/stream"
)

// =============================================================================
// STREAMING MESSAGES
// =============================================================================

// StreamEventMsg delivers one decoded event from the reader goroutine to
// the update loop, which is the only mutator of model state.
type StreamEventMsg struct {
	Event stream.Event
}

// RoundStartedMsg delivers the opened round, or the submit failure.
type RoundStartedMsg struct {
	Round *controller.Round
	Err   error
}

// StreamDoneMsg signals the end of the stream with its completion cause:
// nil for a clean end, context.Canceled for a user stop, the transport
// error otherwise.
type StreamDoneMsg struct {
	Err error
}

// RenderTickMsg drives the capped-rate re-render while streaming.
type RenderTickMsg struct {
	Time time.Time
}

// =============================================================================
// AUTHENTICATION MESSAGES
// =============================================================================

// LoginResultMsg reports the outcome of a login attempt.
type LoginResultMsg struct {
	Token string
	Err   error
}

// =============================================================================
// CONVERSATION MESSAGES
// =============================================================================

// ConversationListMsg delivers the server's conversation list for
// merging into the store.
type ConversationListMsg struct {
	List []api.ConversationInfo
	Err  error
}

// ConversationLoadedMsg signals that a conversation's history was
// fetched and reconciled into the store.
type ConversationLoadedMsg struct {
	ID  string
	Err error
}

// =============================================================================
// PICKER MESSAGES
// =============================================================================

// PickerDataMsg delivers the selectable knowledge bases and tool
// servers.
type PickerDataMsg struct {
	KnowledgeBases []api.KnowledgeBase
	ToolServers    []api.ToolServer
	Err            error
}

// =============================================================================
// ERROR MESSAGES
// =============================================================================

// ErrorMsg displays a dismissible error line.
type ErrorMsg struct {
	Message string
}
