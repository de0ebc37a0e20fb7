// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream decodes the chat endpoint's newline-delimited JSON events.
package stream

import "encoding/json"

// =============================================================================
// EVENT TYPES
// =============================================================================

// EventType identifies the kind of a decoded stream event.
type EventType string

const (
	// EventConversationCreated carries the server-assigned conversation id.
	// Emitted at most once per stream, early.
	EventConversationCreated EventType = "conversation_created"

	// EventThinking carries a reasoning text delta. The wire spells this
	// channel both "thinking" and "reasoning"; the decoder folds both into
	// this one type.
	EventThinking EventType = "thinking"

	// EventContent carries an answer text delta.
	EventContent EventType = "content"

	// EventReference carries a retrieval citation block.
	EventReference EventType = "reference"

	// EventToolCall carries one or more tool invocations.
	EventToolCall EventType = "tool_call"

	// EventToolResult carries the outcome of a previously announced call.
	EventToolResult EventType = "tool_result"

	// EventError carries a backend-reported error message.
	EventError EventType = "error"
)

// ToolCall is one tool invocation announced by the backend. Arguments are
// opaque to the client and rendered verbatim.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ToolResult is the outcome of a tool call, correlated by ID.
type ToolResult struct {
	ID     string          `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  json.RawMessage `json:"error"`
}

// Failed reports whether the result carries an error payload. The wire
// spells success both by omitting the error field and by an explicit
// JSON null.
func (r *ToolResult) Failed() bool {
	return len(r.Error) > 0 && string(r.Error) != "null"
}

// Event is one decoded stream event. Exactly the fields implied by Type are
// populated: Text for the delta-bearing types and conversation_created,
// ToolCalls for tool_call, ToolResult for tool_result, Message for error.
type Event struct {
	Type       EventType
	Text       string
	ToolCalls  []ToolCall
	ToolResult *ToolResult
	Message    string
}
