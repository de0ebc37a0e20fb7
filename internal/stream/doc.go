// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream decodes the chat endpoint's response body into typed
// events for the turn assembler.
//
// # Wire Format
//
// The body is a concatenation of newline-delimited UTF-8 JSON objects, each
// with a "type" field and a type-dependent "data" payload. Content-Type is
// not required to be text/event-stream; no SSE framing is assumed.
//
// # Robustness
//
// The decoder tolerates partial frames across chunk boundaries, skips
// malformed lines and unknown event types with a warning, ignores empty
// lines, and treats missing text payloads as empty deltas. Only transport
// failure or cancellation terminates the sequence early.
package stream
