// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// This file renders the chat layout: sidebar, transcript viewport,
// input line, and status bar, plus the login and picker overlays.

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/velachat/vela-tui/internal/ui/components"
)

// View renders the full interface for the current state.
func (m *Model) View() string {
	if !m.ready {
		return "loading..."
	}
	if m.login != nil {
		return m.loginView()
	}

	sidebar := m.theme.Sidebar.Render(
		m.sidebar.Render(m.store().List(), m.activeLocalID(), m.height-2),
	)

	var center string
	if m.picker != nil {
		center = m.picker.View()
	} else {
		center = m.viewport.View()
	}

	right := lipgloss.JoinVertical(lipgloss.Left,
		center,
		m.inputView(),
		m.status.Render(m.viewport.Width, m.modelID, m.statusState()),
	)

	return m.theme.App.Render(
		lipgloss.JoinHorizontal(lipgloss.Top, sidebar, right),
	)
}

// loginView centers the login form in the terminal.
func (m *Model) loginView() string {
	return lipgloss.Place(m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		m.login.View(),
	)
}

// inputView renders the prompt line, replacing the caret with the
// spinner while a response streams in.
func (m *Model) inputView() string {
	var b strings.Builder
	if m.streaming() {
		b.WriteString(m.spin.View())
		b.WriteString(" ")
	} else {
		b.WriteString(m.theme.InputPrompt.Render("> "))
	}
	b.WriteString(m.input.View())
	if m.errLine != "" {
		b.WriteString("\n")
		b.WriteString(m.theme.FormError.Render(m.errLine))
	}
	return b.String()
}

// statusState maps model state to the status bar indicator.
func (m *Model) statusState() components.StatusState {
	switch {
	case m.streaming():
		return components.StatusStreaming
	case m.errLine != "":
		return components.StatusError
	default:
		return components.StatusIdle
	}
}

// activeLocalID returns the active conversation's local id, or "".
func (m *Model) activeLocalID() string {
	if conv := m.store().Active(); conv != nil {
		return conv.LocalID
	}
	return ""
}
