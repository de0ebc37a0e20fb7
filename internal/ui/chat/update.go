// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// This file implements the update loop: message routing, key handling,
// and the async commands that talk to the backend.

package chat

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/velachat/vela-tui/internal/api"
	"github.com/velachat/vela-tui/internal/controller"
	"github.com/velachat/vela-tui/internal/model"
	"github.com/velachat/vela-tui/internal/stream"
	"github.com/velachat/vela-tui/internal/ui/components"
)

// Update routes one message. It is the only place model state mutates.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	// ==========================================================================
	// AUTHENTICATION
	// ==========================================================================

	case components.LoginSubmitMsg:
		return m, m.loginCmd(msg.Username, msg.Password)

	case LoginResultMsg:
		if msg.Err != nil {
			if m.login != nil {
				m.login.SetError(loginFailureText(msg.Err))
			}
			return m, nil
		}
		if err := m.tokens.SetToken(msg.Token); err != nil {
			m.errLine = "saving token: " + err.Error()
		}
		m.login = nil
		return m, tea.Batch(m.loadConversationsCmd(), m.loadPickerDataCmd())

	// ==========================================================================
	// STREAMING
	// ==========================================================================

	case RoundStartedMsg:
		if msg.Err != nil {
			m.errLine = msg.Err.Error()
			m.rerender()
			return m, nil
		}
		m.round = msg.Round
		m.errLine = ""
		m.rerender()
		return m, tea.Batch(m.startStreamCmd(), renderTickCmd())

	case StreamEventMsg:
		if m.round != nil {
			m.round.Apply(msg.Event)
			m.throttle.Mark()
		}
		return m, m.nextStreamMsg()

	case RenderTickMsg:
		if m.throttle.Consume() {
			m.rerender()
		}
		if m.streaming() {
			return m, renderTickCmd()
		}
		return m, nil

	case StreamDoneMsg:
		if m.round != nil {
			m.round.Complete(msg.Err)
			m.round = nil
		}
		m.streamCh = nil
		m.throttle.Drain()
		m.rerender()
		return m, nil

	// ==========================================================================
	// CONVERSATIONS AND PICKERS
	// ==========================================================================

	case ConversationListMsg:
		if msg.Err != nil {
			m.log.Warn("conversation list load failed", zap.Error(msg.Err))
			return m, nil
		}
		m.store().MergeServerList(toSummaries(msg.List))
		m.rerender()
		return m, nil

	case ConversationLoadedMsg:
		if msg.Err != nil {
			m.log.Warn("conversation load failed",
				zap.String("conversation_id", msg.ID), zap.Error(msg.Err))
			return m, nil
		}
		m.rerender()
		return m, nil

	case PickerDataMsg:
		if msg.Err != nil {
			m.log.Warn("picker data load failed", zap.Error(msg.Err))
			return m, nil
		}
		m.pickerData = msg
		return m, nil

	case ErrorMsg:
		m.errLine = msg.Message
		return m, nil
	}

	return m, nil
}

// handleKey routes keyboard input by mode: login form, picker overlay,
// then the main chat bindings.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		if m.streaming() {
			m.ctrl.Stop(context.Background())
		}
		return m, tea.Quit
	}

	if m.login != nil {
		var cmd tea.Cmd
		m.login, cmd = m.login.Update(msg)
		return m, cmd
	}

	if m.picker != nil {
		return m.handlePickerKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Stop):
		if m.streaming() {
			m.ctrl.Stop(context.Background())
		}
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.NewChat):
		m.store().NewLocalConversation()
		m.rerender()
		return m, nil

	case key.Matches(msg, m.keys.DeleteChat):
		return m, m.deleteActiveCmd()

	case key.Matches(msg, m.keys.NextChat):
		m.cycleConversation(1)
		return m, m.loadSelectedCmd()

	case key.Matches(msg, m.keys.PrevChat):
		m.cycleConversation(-1)
		return m, m.loadSelectedCmd()

	case key.Matches(msg, m.keys.ToggleDetail):
		m.expandDetail = !m.expandDetail
		m.rerender()
		return m, nil

	case key.Matches(msg, m.keys.Pickers):
		m.openPicker()
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.viewport.LineUp(1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.viewport.LineDown(1)
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit sends the input line as a new round.
func (m *Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	if m.streaming() {
		m.errLine = "previous response still streaming (Esc to stop)"
		return m, nil
	}
	if m.store().Active() == nil {
		m.store().NewLocalConversation()
	}
	m.input.Reset()

	req := controller.SubmitRequest{
		Message:          text,
		KnowledgeBaseIDs: m.selectedKBs,
		ToolServerIDs:    m.selectedServers,
		UseWebSearch:     m.useWebSearch,
		ModelID:          m.modelID,
	}
	ctrl := m.ctrl
	return m, func() tea.Msg {
		round, err := ctrl.Submit(context.Background(), req)
		return RoundStartedMsg{Round: round, Err: err}
	}
}

// cycleConversation moves the active selection through the sidebar.
func (m *Model) cycleConversation(delta int) {
	list := m.store().List()
	if len(list) == 0 {
		return
	}
	active := m.store().Active()
	idx := 0
	for i, conv := range list {
		if active != nil && conv.LocalID == active.LocalID {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(list)) % len(list)
	if err := m.store().Select(list[idx].LocalID); err == nil {
		m.rerender()
	}
}

// =============================================================================
// STREAM PLUMBING
// =============================================================================

// startStreamCmd spawns the reader goroutine. Decoded events flow back
// into the update loop as messages; the goroutine never touches model
// state.
func (m *Model) startStreamCmd() tea.Cmd {
	round := m.round
	decoder := round.Decoder()
	if decoder == nil {
		return func() tea.Msg { return StreamDoneMsg{} }
	}

	ch := make(chan tea.Msg, 64)
	m.streamCh = ch
	go func() {
		err := decoder.Process(round.Context(), func(ev stream.Event) {
			ch <- StreamEventMsg{Event: ev}
		})
		ch <- StreamDoneMsg{Err: err}
		close(ch)
	}()
	return m.nextStreamMsg()
}

// nextStreamMsg waits for the next message from the reader goroutine.
func (m *Model) nextStreamMsg() tea.Cmd {
	ch := m.streamCh
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if msg, ok := <-ch; ok {
			return msg
		}
		return nil
	}
}

// =============================================================================
// BACKEND COMMANDS
// =============================================================================

// loginCmd exchanges credentials for a token off the update loop.
func (m *Model) loginCmd(username, password string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		result, err := client.Login(context.Background(),
			api.LoginRequest{Username: username, Password: password})
		if err != nil {
			return LoginResultMsg{Err: err}
		}
		return LoginResultMsg{Token: result.AccessToken}
	}
}

// loadConversationsCmd fetches the server list for the sidebar.
func (m *Model) loadConversationsCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		list, err := client.ListConversations(context.Background())
		return ConversationListMsg{List: list, Err: err}
	}
}

// loadSelectedCmd pulls history for the newly selected conversation if
// it is server-backed and not yet loaded.
func (m *Model) loadSelectedCmd() tea.Cmd {
	conv := m.store().Active()
	if conv == nil || !conv.Promoted() || len(conv.Turns) > 0 {
		return nil
	}
	ctrl := m.ctrl
	id := conv.LocalID
	return func() tea.Msg {
		err := ctrl.Reconcile(context.Background(), id)
		return ConversationLoadedMsg{ID: id, Err: err}
	}
}

// deleteActiveCmd deletes the active conversation locally and, when
// promoted, on the server.
func (m *Model) deleteActiveCmd() tea.Cmd {
	conv := m.store().Active()
	if conv == nil {
		return nil
	}
	if err := m.store().Delete(conv.LocalID); err != nil {
		m.errLine = err.Error()
		return nil
	}
	m.rerender()
	if !conv.Promoted() {
		return nil
	}
	client := m.client
	serverID := conv.ServerID
	log := m.log
	return func() tea.Msg {
		if err := client.DeleteConversation(context.Background(), serverID); err != nil {
			log.Warn("server-side delete failed",
				zap.String("conversation_id", serverID), zap.Error(err))
			return ErrorMsg{Message: "server delete failed: " + err.Error()}
		}
		return nil
	}
}

// loadPickerDataCmd fetches knowledge bases and tool servers.
func (m *Model) loadPickerDataCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		kbs, err := client.ListKnowledgeBases(context.Background())
		if err != nil {
			return PickerDataMsg{Err: err}
		}
		servers, err := client.ListToolServers(context.Background())
		if err != nil {
			return PickerDataMsg{Err: err}
		}
		return PickerDataMsg{KnowledgeBases: kbs, ToolServers: servers}
	}
}

// toSummaries converts the wire list to store summaries, tolerating
// unparseable timestamps.
func toSummaries(list []api.ConversationInfo) []model.ConversationSummary {
	out := make([]model.ConversationSummary, 0, len(list))
	for _, info := range list {
		s := model.ConversationSummary{ID: info.ID, Title: info.Title}
		if t, err := time.Parse(time.RFC3339, info.CreatedAt); err == nil {
			s.CreatedAt = t
		}
		if t, err := time.Parse(time.RFC3339, info.UpdatedAt); err == nil {
			s.UpdatedAt = t
		}
		out = append(out, s)
	}
	return out
}

// loginFailureText maps a login error to a short form line.
func loginFailureText(err error) string {
	if api.IsAuth(err) {
		return "invalid username or password"
	}
	if api.IsNetwork(err) {
		return "cannot reach the server"
	}
	return err.Error()
}
