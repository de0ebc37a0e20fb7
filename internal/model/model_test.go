// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestPartTextAccumulation(t *testing.T) {
	p := NewThinkingPart("Let me ")
	p.AppendText("think.")
	if got := p.Text(); got != "Let me think." {
		t.Errorf("Text() = %q", got)
	}

	// Appending after completion is ignored.
	p.Completed = true
	p.AppendText(" more")
	if got := p.Text(); got != "Let me think." {
		t.Errorf("completed thinking must not grow, got %q", got)
	}
}

func TestToolCallResultSetOnce(t *testing.T) {
	p := NewToolCallPart("t1", "search", json.RawMessage(`{"q":"x"}`))

	if err := p.SetResult(json.RawMessage(`"ok"`), nil); err != nil {
		t.Fatalf("first SetResult failed: %v", err)
	}
	err := p.SetResult(json.RawMessage(`"again"`), nil)
	if !errors.Is(err, ErrResultAlreadySet) {
		t.Errorf("second SetResult should fail, got %v", err)
	}
	if string(p.Result) != `"ok"` {
		t.Errorf("result overwritten: %s", p.Result)
	}
}

func TestToolCallFailed(t *testing.T) {
	p := NewToolCallPart("t1", "search", nil)
	if p.Failed() {
		t.Error("no result yet, should not be failed")
	}
	p.SetResult(nil, json.RawMessage(`"boom"`))
	if !p.Failed() {
		t.Error("error payload should mark the call failed")
	}

	q := NewToolCallPart("t2", "search", nil)
	q.SetResult(json.RawMessage(`1`), json.RawMessage(`null`))
	if q.Failed() {
		t.Error("null error is success")
	}
}

func TestAssistantTurnLoadingLifecycle(t *testing.T) {
	turn := NewAssistantTurn()
	if !turn.Loading() {
		t.Error("fresh turn should hold only the loading placeholder")
	}
	if turn.GroupID == "" {
		t.Error("fresh turn needs a group id")
	}

	turn.AppendPart(NewContentPart("hi"))
	if turn.Loading() {
		t.Error("loading placeholder should be removed on the first real part")
	}
	if len(turn.Parts) != 1 || turn.Parts[0].Kind != KindContent {
		t.Errorf("parts = %v", turn.Parts)
	}
}

func TestAssistantTurnFinalContent(t *testing.T) {
	turn := NewAssistantTurn()
	turn.AppendPart(NewThinkingPart("plan"))
	turn.AppendPart(NewContentPart("first"))
	turn.AppendPart(NewToolCallPart("a", "n", nil))
	turn.AppendPart(NewContentPart("second"))
	turn.AppendPart(NewErrorContentPart("oops"))

	if got := turn.FinalContent(); got != "second" {
		t.Errorf("FinalContent() = %q, want last non-error content", got)
	}
}

func TestStoreNewLocalConversation(t *testing.T) {
	s := NewStore()

	first := s.NewLocalConversation()
	second := s.NewLocalConversation()

	list := s.List()
	if len(list) != 2 {
		t.Fatalf("got %d conversations", len(list))
	}
	if list[0] != second {
		t.Error("new conversations should be prepended")
	}
	if s.Active() != second {
		t.Error("newest conversation should be active")
	}
	if !first.New || !second.New {
		t.Error("local conversations start flagged new")
	}
}

func TestStoreAppendUserTurnDerivesTitle(t *testing.T) {
	s := NewStore()
	conv := s.NewLocalConversation()

	err := s.AppendUserTurn(conv.LocalID, NewUserTurn("Explain how tides work, in detail please"))
	if err != nil {
		t.Fatalf("AppendUserTurn failed: %v", err)
	}
	if conv.New {
		t.Error("new flag should be cleared by the first user message")
	}
	if conv.Title == "" || RuneCount(conv.Title) > TitleMaxRunes {
		t.Errorf("derived title %q out of bounds", conv.Title)
	}

	// Title sticks on later messages.
	title := conv.Title
	s.StartAssistantTurn(conv.LocalID)
	conv.LastAssistantTurn().State = TurnSettled
	s.AppendUserTurn(conv.LocalID, NewUserTurn("Different topic"))
	if conv.Title != title {
		t.Error("title should not change after first derivation")
	}
}

// RuneCount is a test helper mirroring util.RuneLen without the import.
func RuneCount(s string) int { return len([]rune(s)) }

func TestStoreRejectsSecondSubmissionWhileStreaming(t *testing.T) {
	s := NewStore()
	conv := s.NewLocalConversation()
	s.AppendUserTurn(conv.LocalID, NewUserTurn("hi"))

	turn, err := s.StartAssistantTurn(conv.LocalID)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.AppendUserTurn(conv.LocalID, NewUserTurn("again")); !errors.Is(err, ErrTurnInFlight) {
		t.Errorf("expected ErrTurnInFlight, got %v", err)
	}
	if _, err := s.StartAssistantTurn(conv.LocalID); !errors.Is(err, ErrTurnInFlight) {
		t.Errorf("expected ErrTurnInFlight, got %v", err)
	}

	turn.State = TurnCancelled
	if err := s.AppendUserTurn(conv.LocalID, NewUserTurn("again")); err != nil {
		t.Errorf("cancelled turn should allow new submissions: %v", err)
	}
}

func TestStoreRecordServerConversationID(t *testing.T) {
	s := NewStore()
	conv := s.NewLocalConversation()

	if err := s.RecordServerConversationID(conv.LocalID, "srv-1"); err != nil {
		t.Fatal(err)
	}
	if conv.ServerID != "srv-1" {
		t.Errorf("ServerID = %q", conv.ServerID)
	}
	if conv.RequestID() != "srv-1" {
		t.Errorf("RequestID() = %q, want server id once set", conv.RequestID())
	}

	// Write-once: a second id never sticks.
	s.RecordServerConversationID(conv.LocalID, "srv-2")
	if conv.ServerID != "srv-1" {
		t.Errorf("server id changed to %q", conv.ServerID)
	}

	// Lookup by server id works afterwards.
	if s.Get("srv-1") != conv {
		t.Error("conversation should be findable by server id")
	}
}

func TestStoreReconcileNoopWhileStreaming(t *testing.T) {
	s := NewStore()
	conv := s.NewLocalConversation()
	s.AppendUserTurn(conv.LocalID, NewUserTurn("hi"))
	turn, _ := s.StartAssistantTurn(conv.LocalID)
	turn.AppendPart(NewContentPart("partial"))

	canonical := []Turn{NewUserTurn("hi")}
	if err := s.ReconcileFromServer(conv.LocalID, "", canonical); err != nil {
		t.Fatal(err)
	}
	if len(conv.Turns) != 2 {
		t.Error("reconcile must be a no-op while the turn streams")
	}

	turn.State = TurnSettled
	if err := s.ReconcileFromServer(conv.LocalID, "Canonical title", canonical); err != nil {
		t.Fatal(err)
	}
	if len(conv.Turns) != 1 {
		t.Error("reconcile should replace turns once the turn settled")
	}
	if conv.Title != "Canonical title" {
		t.Errorf("title = %q", conv.Title)
	}

	// Idempotence: applying the same payload twice yields the same state.
	if err := s.ReconcileFromServer(conv.LocalID, "Canonical title", canonical); err != nil {
		t.Fatal(err)
	}
	if len(conv.Turns) != 1 || conv.Title != "Canonical title" {
		t.Error("reconcile should be idempotent")
	}
}

func TestStoreMergeServerList(t *testing.T) {
	s := NewStore()

	// A local draft that never got input and a promoted conversation.
	draft := s.NewLocalConversation()
	promoted := s.NewLocalConversation()
	s.AppendUserTurn(promoted.LocalID, NewUserTurn("hello"))
	s.RecordServerConversationID(promoted.LocalID, "srv-A")

	now := time.Now()
	s.MergeServerList([]ConversationSummary{
		{ID: "srv-A", Title: "Hello thread", UpdatedAt: now},
		{ID: "srv-B", Title: "Other thread", UpdatedAt: now},
	})

	list := s.List()
	if len(list) != 3 {
		t.Fatalf("got %d conversations, want 3", len(list))
	}
	if list[0] != draft {
		t.Error("local-only draft should stay at the top")
	}
	if list[1] != promoted {
		t.Error("promoted conversation should match its server entry")
	}
	if list[2].ServerID != "srv-B" {
		t.Errorf("expected srv-B, got %+v", list[2])
	}

	// The local title derived from user input wins over the server's.
	if promoted.Title == "Hello thread" {
		t.Error("existing title should not be overwritten")
	}
}

func TestStoreDelete(t *testing.T) {
	s := NewStore()
	conv := s.NewLocalConversation()
	s.RecordServerConversationID(conv.LocalID, "srv-1")

	if err := s.Delete("srv-1"); err != nil {
		t.Fatal(err)
	}
	if len(s.List()) != 0 {
		t.Error("conversation should be gone")
	}
	if s.Active() != nil {
		t.Error("deleting the active conversation clears the selection")
	}
	if err := s.Delete("srv-1"); !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("expected not-found, got %v", err)
	}
}
