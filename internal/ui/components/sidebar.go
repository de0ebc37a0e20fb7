// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/velachat/vela-tui/internal/model"
	"github.com/velachat/vela-tui/internal/ui/styles"
	"github.com/velachat/vela-tui/internal/util"
)

// SidebarWidth is the fixed column width of the conversation list.
const SidebarWidth = 28

// Sidebar renders the conversation list with the active entry
// highlighted and a marker on the streaming one.
type Sidebar struct {
	theme *styles.Theme
}

// NewSidebar creates a sidebar bound to the theme.
func NewSidebar(theme *styles.Theme) *Sidebar {
	return &Sidebar{theme: theme}
}

// Render draws the list. activeID selects the highlighted row.
func (s *Sidebar) Render(conversations []*model.Conversation, activeID string, height int) string {
	var b strings.Builder
	b.WriteString(s.theme.SidebarTitle.Render("Conversations"))
	b.WriteString("\n\n")

	rows := height - 3
	if rows < 1 {
		rows = 1
	}
	for i, conv := range conversations {
		if i >= rows {
			break
		}
		title := util.TruncateWidth(conv.DisplayTitle(), SidebarWidth-4)
		switch {
		case conv.Matches(activeID):
			b.WriteString(s.theme.SidebarSelected.Render("▸ " + title))
		case conv.Busy():
			b.WriteString(s.theme.SidebarBusy.Render("· " + title))
		default:
			b.WriteString(s.theme.SidebarItem.Render("  " + title))
		}
		b.WriteString("\n")
	}
	return s.theme.Sidebar.Width(SidebarWidth).Render(b.String())
}
