// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package turn implements the assistant response assembly state machine.
//
// The assembler consumes the typed event sequence produced by the stream
// decoder and maintains, incrementally, the part sequence of one assistant
// turn: thinking deltas accumulate into thinking parts, content deltas into
// content parts, tool calls fan out one part per announced call, tool
// results merge into their originating call by id, references append, and
// backend error events become inline error content.
//
// Ordering is sacred: parts appear exactly in event arrival order, with the
// single exception of tool results, which merge into the earlier tool call
// part instead of occupying their own position.
package turn
