// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations, turns, and
// assistant message parts, plus the in-memory conversation store.
//
// # Ownership
//
// Each Conversation exclusively owns its Turns; each AssistantTurn
// exclusively owns its Parts. Nothing references a Part from outside its
// turn. The Store is the single mutator of conversation state; other
// components observe it and dispatch changes through its operations.
//
// # Identity
//
// A Conversation is created with a local id and may later gain a server id
// from the backend, delivered mid-stream. The object is a stable handle:
// the id is one of its fields, the Conversation itself is never replaced,
// so references held across a streaming turn stay valid.
package model
