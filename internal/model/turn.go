// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations, turns, and
// assistant message parts.
package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// =============================================================================
// TURN VARIANTS
// =============================================================================

// Turn is one entry of a conversation: either a *UserTurn or an
// *AssistantTurn. Turns are totally ordered by arrival and never reordered.
type Turn interface {
	Role() Role
}

// UserTurn is a single user message plus the selections that rode on it.
// Immutable once created.
type UserTurn struct {
	Content          string
	KnowledgeBaseIDs []string
	ToolServerIDs    []string
	UseWebSearch     bool
	Historical       bool
	CreatedAt        time.Time
}

// NewUserTurn creates a frozen user turn.
func NewUserTurn(content string) *UserTurn {
	return &UserTurn{
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// Role implements Turn.
func (t *UserTurn) Role() Role { return RoleUser }

// =============================================================================
// ASSISTANT TURN
// =============================================================================

// TurnState is the lifecycle state of an assistant turn.
type TurnState int

const (
	// TurnStreaming is the sole non-terminal state.
	TurnStreaming TurnState = iota
	// TurnSettled means the stream closed normally.
	TurnSettled
	// TurnCancelled means the user aborted the turn.
	TurnCancelled
	// TurnFailed means a transport or protocol error ended the turn.
	TurnFailed
)

// String returns a human-readable name for the state.
func (s TurnState) String() string {
	switch s {
	case TurnStreaming:
		return "streaming"
	case TurnSettled:
		return "settled"
	case TurnCancelled:
		return "cancelled"
	case TurnFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state is one of the three end states.
func (s TurnState) Terminal() bool {
	return s != TurnStreaming
}

// AssistantTurn is the product of one user->assistant round: an ordered
// sequence of parts sharing a group id, mutated only by the assembler until
// a terminal state is reached, then frozen. Parts produced before the
// terminal state are never discarded.
type AssistantTurn struct {
	// GroupID is shared by every part of this response, used by the view
	// layer to group them visually.
	GroupID string

	Parts     []*Part
	State     TurnState
	CreatedAt time.Time

	// Stats are collected while streaming and shown after settle.
	Stats *Statistics
}

// NewAssistantTurn creates a streaming turn holding only the loading
// placeholder.
func NewAssistantTurn() *AssistantTurn {
	return &AssistantTurn{
		GroupID:   uuid.NewString(),
		Parts:     []*Part{NewLoadingPart()},
		State:     TurnStreaming,
		CreatedAt: time.Now(),
		Stats:     NewStatistics(),
	}
}

// Role implements Turn.
func (t *AssistantTurn) Role() Role { return RoleAssistant }

// AppendPart appends a part, first removing the loading placeholder if it
// is still present. Order of real parts is strictly arrival order.
func (t *AssistantTurn) AppendPart(p *Part) {
	t.RemoveLoading()
	t.Parts = append(t.Parts, p)
}

// RemoveLoading drops the loading placeholder. The placeholder is a
// distinct variant, so no text scanning is needed.
func (t *AssistantTurn) RemoveLoading() {
	for i, p := range t.Parts {
		if p.Kind == KindLoading {
			t.Parts = append(t.Parts[:i], t.Parts[i+1:]...)
			return
		}
	}
}

// Loading reports whether only the placeholder has been produced so far.
func (t *AssistantTurn) Loading() bool {
	return len(t.Parts) == 1 && t.Parts[0].Kind == KindLoading
}

// Empty reports whether no real part has been produced.
func (t *AssistantTurn) Empty() bool {
	for _, p := range t.Parts {
		if p.Kind != KindLoading {
			return false
		}
	}
	return true
}

// FindToolCall returns the tool call part with the given call id, or nil.
func (t *AssistantTurn) FindToolCall(callID string) *Part {
	for _, p := range t.Parts {
		if p.Kind == KindToolCall && p.CallID == callID {
			return p
		}
	}
	return nil
}

// FinalContent returns the text of the last non-error content part. This is
// what the next turn's history window carries for this response.
func (t *AssistantTurn) FinalContent() string {
	for i := len(t.Parts) - 1; i >= 0; i-- {
		p := t.Parts[i]
		if p.Kind == KindContent && !p.IsError {
			return p.Text()
		}
	}
	return ""
}

// =============================================================================
// STATISTICS TYPE
// =============================================================================

// Statistics holds timing information for one assistant turn.
type Statistics struct {
	StartTime      time.Time
	FirstEventTime time.Time
	EndTime        time.Time

	// EventCount is the number of stream events folded into the turn.
	EventCount int

	// Derived on Finalize.
	TimeToFirst   time.Duration
	TotalDuration time.Duration
}

// NewStatistics creates statistics with the start time set.
func NewStatistics() *Statistics {
	return &Statistics{StartTime: time.Now()}
}

// RecordEvent notes one folded event, capturing first arrival time.
func (s *Statistics) RecordEvent() {
	s.EventCount++
	if s.FirstEventTime.IsZero() {
		s.FirstEventTime = time.Now()
		s.TimeToFirst = s.FirstEventTime.Sub(s.StartTime)
	}
}

// Finalize computes the final statistics.
func (s *Statistics) Finalize() {
	s.EndTime = time.Now()
	s.TotalDuration = s.EndTime.Sub(s.StartTime)
}
