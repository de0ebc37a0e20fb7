// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations, turns, and
// assistant message parts.
package model

import (
	"encoding/json"
	"errors"
	"strings"
)

// =============================================================================
// PART KIND
// =============================================================================

// Kind identifies the variant of a Part.
type Kind int

const (
	// KindLoading is the placeholder inserted when a turn starts and
	// removed on the first real part.
	KindLoading Kind = iota
	// KindThinking is accumulated reasoning text with a completed flag.
	KindThinking
	// KindToolCall is one tool invocation and, once merged, its result.
	KindToolCall
	// KindContent is accumulated answer text.
	KindContent
	// KindReference is a retrieval citation block, appended once.
	KindReference
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindLoading:
		return "loading"
	case KindThinking:
		return "thinking"
	case KindToolCall:
		return "tool_call"
	case KindContent:
		return "content"
	case KindReference:
		return "reference"
	default:
		return "unknown"
	}
}

// ErrResultAlreadySet is returned when a tool call receives a second result.
var ErrResultAlreadySet = errors.New("tool call result already set")

// =============================================================================
// PART TYPE
// =============================================================================

// Part is one typed fragment of an assistant turn. Parts are owned by
// exactly one AssistantTurn and appear in strict event arrival order.
//
// Text-bearing kinds (thinking, content, reference) accumulate via an
// internal builder; tool_call parts have their identity fixed at creation
// and accept a result at most once.
//
// PERFORMANCE: strings.Builder avoids quadratic allocations while deltas
// stream in. Parts are therefore handled by pointer, never copied.
type Part struct {
	Kind Kind

	// Historical marks parts rebuilt from the backend's canonical record.
	// Behaviorally identical to a settled live part; the view layer only
	// uses it for default-collapsed affordances.
	Historical bool

	// Thinking state. Completed flips to true exactly once, when a
	// non-thinking event arrives or the stream ends.
	Completed bool

	// IsError marks a content part synthesized from a backend error event.
	IsError bool

	// Tool call identity, fixed at creation.
	CallID    string
	ToolName  string
	Arguments json.RawMessage

	// Tool call outcome, set at most once by a matching tool_result.
	Result    json.RawMessage
	ResultErr json.RawMessage
	HasResult bool

	text strings.Builder
}

// NewLoadingPart creates the placeholder part for a just-started turn.
func NewLoadingPart() *Part {
	return &Part{Kind: KindLoading}
}

// NewThinkingPart creates an open thinking part with initial text.
func NewThinkingPart(initial string) *Part {
	p := &Part{Kind: KindThinking}
	p.text.WriteString(initial)
	return p
}

// NewContentPart creates a content part with initial text.
func NewContentPart(initial string) *Part {
	p := &Part{Kind: KindContent}
	p.text.WriteString(initial)
	return p
}

// NewErrorContentPart creates a content part carrying a backend-reported
// error message, rendered inline in the turn.
func NewErrorContentPart(message string) *Part {
	p := NewContentPart(message)
	p.IsError = true
	return p
}

// NewReferencePart creates a reference part with its full text.
func NewReferencePart(text string) *Part {
	p := &Part{Kind: KindReference}
	p.text.WriteString(text)
	return p
}

// NewToolCallPart creates a tool call part. Identity is fixed here and
// never mutated afterwards.
func NewToolCallPart(id, name string, arguments json.RawMessage) *Part {
	return &Part{
		Kind:      KindToolCall,
		CallID:    id,
		ToolName:  name,
		Arguments: arguments,
	}
}

// =============================================================================
// PART METHODS
// =============================================================================

// AppendText appends a delta to a text-bearing part. Appending to a
// completed thinking part or a non-text part is ignored.
func (p *Part) AppendText(delta string) {
	switch p.Kind {
	case KindThinking:
		if p.Completed {
			return
		}
	case KindContent, KindReference:
	default:
		return
	}
	p.text.WriteString(delta)
}

// Text returns the accumulated text of the part.
func (p *Part) Text() string {
	return p.text.String()
}

// SetResult records the outcome of a tool call. The result may be set at
// most once; a second attempt returns ErrResultAlreadySet.
func (p *Part) SetResult(result, resultErr json.RawMessage) error {
	if p.Kind != KindToolCall {
		return errors.New("not a tool call part")
	}
	if p.HasResult {
		return ErrResultAlreadySet
	}
	p.Result = result
	p.ResultErr = resultErr
	p.HasResult = true
	return nil
}

// Failed reports whether a tool call finished with an error payload.
func (p *Part) Failed() bool {
	return p.HasResult && len(p.ResultErr) > 0 && string(p.ResultErr) != "null"
}
