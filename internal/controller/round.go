// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"context"
	"io"

	"github.com/velachat/vela-tui/internal/model"
	"github.com/velachat/vela-tui/internal/stream"
	"github.com/velachat/vela-tui/internal/turn"
)

// Round is one in-flight user→assistant exchange. It owns the response
// body and the assembler over the live turn.
//
// Two driving styles are supported. Drive runs decode and assembly to
// completion on the caller's goroutine; the REPL and one-shot commands
// use it. The TUI instead reads the Decoder on its own goroutine,
// delivers each event to the update loop as a message, and calls Apply
// there, so the loop stays the only mutator of model state.
type Round struct {
	controller *Controller
	conv       *model.Conversation
	liveTurn   *model.AssistantTurn
	body       io.ReadCloser
	assembler  *turn.Assembler

	// ctx is the stream context. Stop cancels it; reading through it lets
	// the decoder classify a user stop as cancellation rather than a
	// transport failure.
	ctx  context.Context
	done bool
}

func newRound(ctx context.Context, c *Controller, conv *model.Conversation, liveTurn *model.AssistantTurn, body io.ReadCloser) *Round {
	r := &Round{
		controller: c,
		conv:       conv,
		liveTurn:   liveTurn,
		body:       body,
		ctx:        ctx,
	}
	r.assembler = turn.New(liveTurn,
		turn.WithLogger(c.log),
		turn.WithConversationIDHandler(func(serverID string) {
			// Errors here mean the id raced an earlier recording; the
			// write-once rule already keeps the first one.
			_ = c.store.RecordServerConversationID(conv.LocalID, serverID)
		}),
	)
	return r
}

// Context returns the stream context. Loop-driven consumers pass it to
// Decoder.Process so a user stop surfaces as context.Canceled.
func (r *Round) Context() context.Context {
	return r.ctx
}

// Turn returns the assistant turn being assembled.
func (r *Round) Turn() *model.AssistantTurn {
	return r.liveTurn
}

// Conversation returns the owning conversation.
func (r *Round) Conversation() *model.Conversation {
	return r.conv
}

// Decoder returns a decoder over the response body for loop-driven
// consumption. Nil when the round failed before a body existed.
func (r *Round) Decoder() *stream.Decoder {
	if r.body == nil {
		return nil
	}
	return stream.NewDecoder(r.body, r.controller.log)
}

// Apply folds one decoded event into the live turn.
func (r *Round) Apply(ev stream.Event) {
	r.assembler.Feed(ev)
}

// Complete finishes the round: terminal state on the turn, body closed,
// cancel handle released, and a reconcile scheduled when the
// conversation is server-backed. Idempotent.
func (r *Round) Complete(cause error) {
	if r.done {
		return
	}
	r.done = true

	r.assembler.Finish(cause)
	if r.body != nil {
		r.body.Close()
	}
	r.controller.cancelMgr.cancel()

	if r.conv.Promoted() {
		r.controller.scheduleReconcile(r.conv.LocalID)
	}
}

// Drive decodes the whole stream synchronously, feeding the assembler,
// then completes the round. The returned error is the completion cause:
// nil for a clean end of stream, context.Canceled for a user stop, the
// transport error otherwise.
func (r *Round) Drive() error {
	if r.body == nil {
		return nil
	}
	decoder := stream.NewDecoder(r.body, r.controller.log)
	err := decoder.Process(r.ctx, func(ev stream.Event) {
		r.assembler.Feed(ev)
	})
	r.Complete(err)
	return err
}
