// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream decodes the chat endpoint's newline-delimited JSON events.
package stream

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"

	"go.uber.org/zap"
)

// =============================================================================
// DECODER
// =============================================================================

// Decoder reads a response body as a sequence of newline-delimited JSON
// event objects. Partial frames are carried across chunk boundaries by the
// buffered reader; malformed lines are logged and skipped; the sequence is
// finite and not restartable.
type Decoder struct {
	reader *bufio.Reader
	log    *zap.Logger
}

// Callback receives each decoded event in arrival order.
type Callback func(Event)

// NewDecoder creates a decoder over a raw body stream.
func NewDecoder(r io.Reader, log *zap.Logger) *Decoder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Decoder{
		reader: bufio.NewReader(r),
		log:    log,
	}
}

// Process reads the stream to its end, invoking the callback for each
// decoded event. Returns nil on normal end of stream, ctx.Err() when the
// context is cancelled, and the transport error otherwise. Malformed lines
// never terminate processing.
func (d *Decoder) Process(ctx context.Context, callback Callback) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := d.reader.ReadBytes('\n')
		if len(line) > 0 {
			if ev, ok := d.decodeLine(line); ok {
				callback(ev)
			}
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			// A cancelled body reader surfaces the context error through
			// the transport; normalize it so callers see one cause.
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
	}
}

// decodeLine parses one frame. The boolean is false for empty or
// unrecoverable lines, which are skipped.
func (d *Decoder) decodeLine(line []byte) (Event, bool) {
	line = bytes.TrimRight(line, "\r\n")
	if len(bytes.TrimSpace(line)) == 0 {
		return Event{}, false
	}

	var frame struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(line, &frame); err != nil {
		d.log.Warn("skipping malformed stream line",
			zap.Error(err),
			zap.Int("length", len(line)))
		return Event{}, false
	}

	switch frame.Type {
	case "conversation_created":
		return Event{Type: EventConversationCreated, Text: decodeText(frame.Data)}, true

	case "thinking", "reasoning":
		return Event{Type: EventThinking, Text: decodeText(frame.Data)}, true

	case "content":
		return Event{Type: EventContent, Text: decodeText(frame.Data)}, true

	case "reference":
		return Event{Type: EventReference, Text: decodeText(frame.Data)}, true

	case "tool_call":
		calls, err := decodeToolCalls(frame.Data)
		if err != nil {
			d.log.Warn("skipping undecodable tool_call event", zap.Error(err))
			return Event{}, false
		}
		return Event{Type: EventToolCall, ToolCalls: calls}, true

	case "tool_result":
		var result ToolResult
		if err := json.Unmarshal(frame.Data, &result); err != nil {
			d.log.Warn("skipping undecodable tool_result event", zap.Error(err))
			return Event{}, false
		}
		return Event{Type: EventToolResult, ToolResult: &result}, true

	case "error":
		var payload struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(frame.Data, &payload); err != nil {
			// Some backends send the message as a bare string.
			payload.Error = decodeText(frame.Data)
		}
		return Event{Type: EventError, Message: payload.Error}, true

	default:
		d.log.Warn("skipping unknown stream event type", zap.String("type", frame.Type))
		return Event{}, false
	}
}

// decodeText extracts a string payload, treating missing or non-string
// data as empty. An empty delta still produces an event.
func decodeText(data json.RawMessage) string {
	if len(data) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return ""
	}
	return s
}

// decodeToolCalls handles the tool_call payload, which the wire delivers as
// a JSON string containing an array of calls. The string form is re-parsed
// here at the decoder boundary so it never leaks further in. A payload that
// is already a bare array is accepted too.
func decodeToolCalls(data json.RawMessage) ([]ToolCall, error) {
	var encoded string
	if err := json.Unmarshal(data, &encoded); err == nil {
		var calls []ToolCall
		if err := json.Unmarshal([]byte(encoded), &calls); err != nil {
			return nil, err
		}
		return calls, nil
	}

	var calls []ToolCall
	if err := json.Unmarshal(data, &calls); err != nil {
		return nil, err
	}
	return calls, nil
}
