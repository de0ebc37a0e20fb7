// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/velachat/vela-tui/internal/ui/styles"
	"github.com/velachat/vela-tui/internal/util"
)

// StatusState is what the status bar displays for the in-flight round.
type StatusState int

const (
	StatusIdle StatusState = iota
	StatusStreaming
	StatusError
)

// StatusBar renders the one-line footer: model, connection state, and
// the key hints.
type StatusBar struct {
	theme *styles.Theme
}

// NewStatusBar creates a status bar bound to the theme.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{theme: theme}
}

// Render draws the bar at the given width.
func (s *StatusBar) Render(width int, modelID string, state StatusState) string {
	left := modelID
	if left == "" {
		left = "default model"
	}
	switch state {
	case StatusStreaming:
		left += " · streaming"
	case StatusError:
		left += " · error"
	}

	hints := s.theme.ShortcutKey.Render("esc") + s.theme.ShortcutDesc.Render(" stop  ") +
		s.theme.ShortcutKey.Render("^n") + s.theme.ShortcutDesc.Render(" new  ") +
		s.theme.ShortcutKey.Render("^t") + s.theme.ShortcutDesc.Render(" detail  ") +
		s.theme.ShortcutKey.Render("^c") + s.theme.ShortcutDesc.Render(" quit")

	gap := width - util.StringWidth(left) - 40
	if gap < 1 {
		gap = 1
	}
	return s.theme.StatusBar.Width(width).Render(left + strings.Repeat(" ", gap) + hints)
}
