// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// This file wires the multi-select picker overlay for knowledge bases
// and tool servers into the update loop.

package chat

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/velachat/vela-tui/internal/ui/components"
)

// openPicker shows the knowledge base picker. Applying it advances to
// the tool server picker, so one Ctrl+P pass covers both selections.
func (m *Model) openPicker() {
	m.pickKind = pickerKnowledge
	m.picker = components.NewPicker(m.theme, "Knowledge bases", m.knowledgeItems())
}

// knowledgeItems builds picker rows from the loaded knowledge bases,
// preserving the current selection.
func (m *Model) knowledgeItems() []components.PickerItem {
	items := make([]components.PickerItem, 0, len(m.pickerData.KnowledgeBases))
	for _, kb := range m.pickerData.KnowledgeBases {
		items = append(items, components.PickerItem{
			ID:       kb.ID,
			Label:    kb.Name,
			Selected: containsID(m.selectedKBs, kb.ID),
		})
	}
	return items
}

// toolItems builds picker rows from the loaded tool servers. Disabled
// servers are listed so the user sees them, but marked.
func (m *Model) toolItems() []components.PickerItem {
	items := make([]components.PickerItem, 0, len(m.pickerData.ToolServers))
	for _, srv := range m.pickerData.ToolServers {
		label := srv.Name
		if !srv.Enabled {
			label += " (disabled)"
		}
		items = append(items, components.PickerItem{
			ID:       srv.ID,
			Label:    label,
			Selected: containsID(m.selectedServers, srv.ID),
		})
	}
	return items
}

// handlePickerKey routes keys while the overlay is open. Enter applies
// the current selection and either advances to the next picker or
// closes; Esc closes without applying.
func (m *Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		m.picker.MoveUp()
	case "down", "j":
		m.picker.MoveDown()
	case " ":
		m.picker.Toggle()
	case "enter":
		m.applyPicker()
	case "esc":
		m.closePicker()
	}
	return m, nil
}

// applyPicker commits the open picker's selection and moves on.
func (m *Model) applyPicker() {
	switch m.pickKind {
	case pickerKnowledge:
		m.selectedKBs = m.picker.SelectedIDs()
		m.pickKind = pickerTools
		m.picker = components.NewPicker(m.theme, "Tool servers", m.toolItems())
	case pickerTools:
		m.selectedServers = m.picker.SelectedIDs()
		m.closePicker()
	default:
		m.closePicker()
	}
}

// closePicker dismisses the overlay without touching selections.
func (m *Model) closePicker() {
	m.picker = nil
	m.pickKind = pickerNone
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
