// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations, turns, and
// assistant message parts.
package model

import (
	"errors"
	"sync"
	"time"
)

// ErrConversationNotFound is returned for an unknown conversation id.
var ErrConversationNotFound = errors.New("conversation not found")

// ErrTurnInFlight is returned when a submission arrives while the previous
// assistant turn has not reached a terminal state.
var ErrTurnInFlight = errors.New("previous turn still streaming")

// ConversationSummary is one entry of the backend's conversation list.
type ConversationSummary struct {
	ID        string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// =============================================================================
// CONVERSATION STORE
// =============================================================================

// Store is the in-memory source of truth for all conversations and the only
// component that mutates them. Everything else observes the store and
// dispatches mutations through its operations.
//
// State is owned by the UI update loop, but reconcile timers and the REPL
// touch the store from other goroutines, so operations take a mutex.
type Store struct {
	mu            sync.Mutex
	conversations []*Conversation
	activeID      string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// =============================================================================
// CREATION AND SELECTION
// =============================================================================

// NewLocalConversation prepends a conversation flagged new and makes it
// active. No server call is involved.
func (s *Store) NewLocalConversation() *Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := NewConversation()
	s.conversations = append([]*Conversation{conv}, s.conversations...)
	s.activeID = conv.LocalID
	return conv
}

// Select marks one conversation active. Exactly one conversation is active
// at a time.
func (s *Store) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.find(id)
	if conv == nil {
		return ErrConversationNotFound
	}
	s.activeID = conv.LocalID
	return nil
}

// Active returns the active conversation, or nil when none is selected.
func (s *Store) Active() *Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.find(s.activeID)
}

// Get returns the conversation matching id by either identifier.
func (s *Store) Get(id string) *Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.find(id)
}

// List returns a snapshot of the conversation slice in display order.
func (s *Store) List() []*Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Conversation, len(s.conversations))
	copy(out, s.conversations)
	return out
}

// =============================================================================
// TURN OPERATIONS
// =============================================================================

// AppendUserTurn pushes a frozen user turn. If the conversation was new,
// the title is derived from the first user content and the flag cleared.
func (s *Store) AppendUserTurn(id string, turn *UserTurn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.find(id)
	if conv == nil {
		return ErrConversationNotFound
	}
	if conv.Busy() {
		return ErrTurnInFlight
	}

	conv.Turns = append(conv.Turns, turn)
	if conv.New {
		conv.deriveTitle(turn.Content)
		conv.New = false
	}
	conv.UpdatedAt = time.Now()
	return nil
}

// StartAssistantTurn creates the streaming turn with a fresh group id and a
// single loading part. The caller drives the assembler to mutate it.
func (s *Store) StartAssistantTurn(id string) (*AssistantTurn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.find(id)
	if conv == nil {
		return nil, ErrConversationNotFound
	}
	if conv.Busy() {
		return nil, ErrTurnInFlight
	}

	turn := NewAssistantTurn()
	conv.Turns = append(conv.Turns, turn)
	conv.UpdatedAt = time.Now()
	return turn, nil
}

// =============================================================================
// SERVER IDENTITY AND RECONCILIATION
// =============================================================================

// RecordServerConversationID sets the server identifier on a conversation.
// A server id, once set, never changes; recording the same id again or an
// id equal to the local id is a no-op.
func (s *Store) RecordServerConversationID(localID, serverID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.find(localID)
	if conv == nil {
		return ErrConversationNotFound
	}
	if serverID == "" || serverID == conv.LocalID || conv.ServerID != "" {
		return nil
	}
	conv.ServerID = serverID
	return nil
}

// ReconcileFromServer replaces a conversation's turns with the canonical
// turns formatted from the backend record. While the conversation's latest
// assistant turn is non-terminal the call is a no-op: reconciliation never
// drops parts of a turn still in flight.
func (s *Store) ReconcileFromServer(id string, title string, turns []Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.find(id)
	if conv == nil {
		return ErrConversationNotFound
	}
	if conv.Busy() {
		return nil
	}

	conv.Turns = turns
	if title != "" {
		conv.Title = title
	}
	conv.UpdatedAt = time.Now()
	return nil
}

// =============================================================================
// LIST MAINTENANCE
// =============================================================================

// Delete removes a conversation locally. Server-side deletion, when a
// server id exists, is the caller's job via the transport client.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, conv := range s.conversations {
		if conv.Matches(id) {
			s.conversations = append(s.conversations[:i], s.conversations[i+1:]...)
			if s.activeID == conv.LocalID {
				s.activeID = ""
			}
			return nil
		}
	}
	return ErrConversationNotFound
}

// MergeServerList merges the backend's conversation list into the store.
// Local-only new conversations stay at the top; server entries update the
// conversations they match and create the rest; promoted conversations
// absent from the list are kept (nothing disappears except via Delete).
func (s *Store) MergeServerList(list []ConversationSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var merged []*Conversation
	seen := make(map[string]bool)

	for _, conv := range s.conversations {
		if conv.New && !conv.Promoted() {
			merged = append(merged, conv)
			seen[conv.LocalID] = true
		}
	}

	for _, item := range list {
		if conv := s.find(item.ID); conv != nil {
			if conv.Title == "" {
				conv.Title = item.Title
			}
			conv.UpdatedAt = item.UpdatedAt
			merged = append(merged, conv)
			seen[conv.LocalID] = true
			continue
		}
		merged = append(merged, &Conversation{
			LocalID:   item.ID,
			ServerID:  item.ID,
			Title:     item.Title,
			CreatedAt: item.CreatedAt,
			UpdatedAt: item.UpdatedAt,
		})
	}

	for _, conv := range s.conversations {
		if !seen[conv.LocalID] && (conv.Promoted() || !conv.New) {
			merged = append(merged, conv)
		}
	}

	s.conversations = merged
}

// find matches a conversation by either identifier. Caller holds the lock.
func (s *Store) find(id string) *Conversation {
	for _, conv := range s.conversations {
		if conv.Matches(id) {
			return conv
		}
	}
	return nil
}
