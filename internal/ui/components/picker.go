// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/velachat/vela-tui/internal/ui/styles"
)

// PickerItem is one selectable row of a Picker.
type PickerItem struct {
	ID       string
	Label    string
	Selected bool
}

// Picker is the multi-select overlay used for knowledge bases and tool
// servers. The chat model owns the key handling and calls the movement
// and toggle methods.
type Picker struct {
	theme  *styles.Theme
	title  string
	items  []PickerItem
	cursor int
}

// NewPicker creates a picker over the given rows.
func NewPicker(theme *styles.Theme, title string, items []PickerItem) *Picker {
	return &Picker{theme: theme, title: title, items: items}
}

// MoveUp moves the cursor one row up.
func (p *Picker) MoveUp() {
	if p.cursor > 0 {
		p.cursor--
	}
}

// MoveDown moves the cursor one row down.
func (p *Picker) MoveDown() {
	if p.cursor < len(p.items)-1 {
		p.cursor++
	}
}

// Toggle flips the selection under the cursor.
func (p *Picker) Toggle() {
	if p.cursor < len(p.items) {
		p.items[p.cursor].Selected = !p.items[p.cursor].Selected
	}
}

// SelectedIDs returns the ids of all selected rows, in list order.
func (p *Picker) SelectedIDs() []string {
	var ids []string
	for _, item := range p.items {
		if item.Selected {
			ids = append(ids, item.ID)
		}
	}
	return ids
}

// View renders the overlay.
func (p *Picker) View() string {
	var b strings.Builder
	b.WriteString(p.theme.SidebarTitle.Render(p.title))
	b.WriteString("\n\n")
	if len(p.items) == 0 {
		b.WriteString(p.theme.ShortcutDesc.Render("nothing available"))
		b.WriteString("\n")
	}
	for i, item := range p.items {
		mark := "[ ]"
		if item.Selected {
			mark = "[x]"
		}
		row := mark + " " + item.Label
		if i == p.cursor {
			b.WriteString(p.theme.SidebarSelected.Render("▸ " + row))
		} else {
			b.WriteString(p.theme.SidebarItem.Render("  " + row))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(p.theme.ShortcutDesc.Render("space toggle · enter apply · esc close"))
	return b.String()
}
