// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations, turns, and
// assistant message parts.
package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/velachat/vela-tui/internal/util"
)

// TitleMaxRunes bounds titles derived from the first user message.
const TitleMaxRunes = 30

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation holds one chat thread. The struct is a stable handle: the
// server id is recorded as a field mid-stream, the object itself is never
// replaced, so in-flight references held by the controller stay valid.
type Conversation struct {
	// LocalID is assigned at creation and never changes.
	LocalID string

	// ServerID is assigned by the backend's conversation_created event or
	// by the server list. Once set it never changes and becomes the
	// canonical id for subsequent requests.
	ServerID string

	Title string

	// New marks a conversation that has never received user input.
	// Cleared by the first user message.
	New bool

	Turns []Turn

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewConversation creates a local-only conversation flagged new.
func NewConversation() *Conversation {
	now := time.Now()
	return &Conversation{
		LocalID:   "local_" + uuid.NewString(),
		New:       true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// RequestID returns the canonical id for backend requests: the server id
// once known, the local id before that.
func (c *Conversation) RequestID() string {
	if c.ServerID != "" {
		return c.ServerID
	}
	return c.LocalID
}

// Promoted reports whether the conversation is server-backed.
func (c *Conversation) Promoted() bool {
	return c.ServerID != ""
}

// Matches reports whether id refers to this conversation by either
// identifier.
func (c *Conversation) Matches(id string) bool {
	return id != "" && (id == c.LocalID || id == c.ServerID)
}

// DisplayTitle returns the title or a placeholder for untitled threads.
func (c *Conversation) DisplayTitle() string {
	if c.Title != "" {
		return c.Title
	}
	return "New chat"
}

// LastAssistantTurn returns the most recent assistant turn, or nil.
func (c *Conversation) LastAssistantTurn() *AssistantTurn {
	for i := len(c.Turns) - 1; i >= 0; i-- {
		if at, ok := c.Turns[i].(*AssistantTurn); ok {
			return at
		}
	}
	return nil
}

// Busy reports whether an assistant turn is still streaming. A second
// submission is rejected while this holds.
func (c *Conversation) Busy() bool {
	at := c.LastAssistantTurn()
	return at != nil && !at.State.Terminal()
}

// deriveTitle sets the title from the first user content if unset.
func (c *Conversation) deriveTitle(content string) {
	if c.Title != "" {
		return
	}
	c.Title = util.TruncateRunes(util.FirstLine(content), TitleMaxRunes)
}
