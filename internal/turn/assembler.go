// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package turn folds a decoded event stream into the parts of one assistant
// turn.
package turn

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/velachat/vela-tui/internal/model"
	"github.com/velachat/vela-tui/internal/stream"
)

// =============================================================================
// ASSEMBLER
// =============================================================================

// Assembler is the per-turn state machine converting the event stream into
// an ordered, typed part sequence on the target AssistantTurn. It performs
// no reordering: every part lands at its event's arrival position. The
// assembler is the only mutator of the turn until a terminal state is
// reached.
type Assembler struct {
	turn *model.AssistantTurn
	log  *zap.Logger

	// onConversationID lets the conversation store react when the backend
	// announces the server-assigned conversation id mid-stream.
	onConversationID func(serverID string)

	// At most one thinking part is open at a time; any non-thinking event
	// completes it. Content likewise has at most one open accumulator, but
	// needs no completed flag.
	openThinking *model.Part
	openContent  *model.Part

	sawError bool
	finished bool
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithLogger sets the logger used for protocol warnings.
func WithLogger(log *zap.Logger) Option {
	return func(a *Assembler) {
		if log != nil {
			a.log = log
		}
	}
}

// WithConversationIDHandler registers the callback invoked when a
// conversation_created event arrives.
func WithConversationIDHandler(fn func(serverID string)) Option {
	return func(a *Assembler) { a.onConversationID = fn }
}

// New creates an assembler over the target turn. The turn is expected to be
// freshly started: streaming state, loading placeholder in place.
func New(target *model.AssistantTurn, opts ...Option) *Assembler {
	a := &Assembler{
		turn: target,
		log:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Turn returns the turn being assembled.
func (a *Assembler) Turn() *model.AssistantTurn {
	return a.turn
}

// =============================================================================
// EVENT FOLDING
// =============================================================================

// Feed folds one event into the turn. Events arriving after the terminal
// state (late drain) are ignored.
func (a *Assembler) Feed(ev stream.Event) {
	if a.finished {
		return
	}
	if a.turn.Stats != nil {
		a.turn.Stats.RecordEvent()
	}

	switch ev.Type {
	case stream.EventConversationCreated:
		// Identity only: no part is emitted and the open thinking part,
		// if any, stays open across it.
		if a.onConversationID != nil && ev.Text != "" {
			a.onConversationID(ev.Text)
		}

	case stream.EventThinking:
		if a.openThinking != nil {
			a.openThinking.AppendText(ev.Text)
			return
		}
		a.closeContent()
		a.openThinking = model.NewThinkingPart(ev.Text)
		a.turn.AppendPart(a.openThinking)

	case stream.EventContent:
		a.completeThinking()
		if a.openContent != nil {
			a.openContent.AppendText(ev.Text)
			return
		}
		a.openContent = model.NewContentPart(ev.Text)
		a.turn.AppendPart(a.openContent)

	case stream.EventToolCall:
		a.completeThinking()
		a.closeContent()
		// One part per element, in array order, each at its own position.
		for _, call := range ev.ToolCalls {
			a.turn.AppendPart(model.NewToolCallPart(call.ID, call.Name, call.Arguments))
		}

	case stream.EventToolResult:
		a.completeThinking()
		a.closeContent()
		a.mergeToolResult(ev.ToolResult)

	case stream.EventReference:
		a.completeThinking()
		a.closeContent()
		a.turn.AppendPart(model.NewReferencePart(ev.Text))

	case stream.EventError:
		a.completeThinking()
		a.closeContent()
		a.turn.AppendPart(model.NewErrorContentPart(ev.Message))
		// Terminal state is entered after draining; nothing is raised.
		a.sawError = true
	}
}

// mergeToolResult sets the outcome on the matching tool call part. A result
// with no matching call is a protocol bug: dropped with a warning, the turn
// is not mutated. Results are never buffered for calls that have not been
// announced yet.
func (a *Assembler) mergeToolResult(result *stream.ToolResult) {
	if result == nil {
		return
	}
	call := a.turn.FindToolCall(result.ID)
	if call == nil {
		a.log.Warn("dropping tool_result with no matching tool_call",
			zap.String("call_id", result.ID))
		return
	}
	if err := call.SetResult(result.Result, result.Error); err != nil {
		a.log.Warn("dropping duplicate tool_result",
			zap.String("call_id", result.ID),
			zap.Error(err))
	}
}

// completeThinking flips the open thinking part's completed flag. The flag
// flips exactly once per part.
func (a *Assembler) completeThinking() {
	if a.openThinking != nil {
		a.openThinking.Completed = true
		a.openThinking = nil
	}
}

// closeContent stops accumulation on the open content part. Content has no
// completed flag; a later content event simply opens a new part.
func (a *Assembler) closeContent() {
	a.openContent = nil
}

// =============================================================================
// TERMINAL TRANSITIONS
// =============================================================================

// Finish enters the terminal state once the stream is done. The cause maps
// as: nil for normal end of stream (settled, or failed when an error event
// was seen), context cancellation for a user stop (cancelled), anything
// else for transport or protocol failure (failed). All parts produced so
// far are retained; a synthetic error part is appended only when a failure
// produced no parts at all, to avoid double-reporting.
//
// Finish is idempotent: later calls are no-ops.
func (a *Assembler) Finish(cause error) {
	if a.finished {
		return
	}
	a.finished = true

	a.completeThinking()
	a.closeContent()

	switch {
	case cause == nil && !a.sawError:
		a.turn.State = model.TurnSettled
	case cause == nil:
		a.turn.State = model.TurnFailed
	case errors.Is(cause, context.Canceled):
		a.turn.State = model.TurnCancelled
	default:
		a.turn.State = model.TurnFailed
		if a.turn.Empty() {
			a.turn.AppendPart(model.NewErrorContentPart(cause.Error()))
		}
	}

	a.turn.RemoveLoading()
	if a.turn.Stats != nil {
		a.turn.Stats.Finalize()
	}
}
