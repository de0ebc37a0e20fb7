// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/velachat/vela-tui/internal/ui/styles"
)

// LoginForm is the two-field credential form shown when no token is
// available. Tab moves between fields; Enter on the password field
// submits.
type LoginForm struct {
	theme    *styles.Theme
	username textinput.Model
	password textinput.Model
	focus    int
	errText  string
}

// LoginSubmitMsg is emitted when the user submits the form.
type LoginSubmitMsg struct {
	Username string
	Password string
}

// NewLoginForm creates the form with the username field focused.
func NewLoginForm(theme *styles.Theme) *LoginForm {
	username := textinput.New()
	username.Placeholder = "username"
	username.Focus()
	username.CharLimit = 128

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 256

	return &LoginForm{
		theme:    theme,
		username: username,
		password: password,
	}
}

// SetError shows a failure line under the form, e.g. after a 401.
func (f *LoginForm) SetError(text string) {
	f.errText = text
}

// Update handles key traffic while the form is visible.
func (f *LoginForm) Update(msg tea.Msg) (*LoginForm, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyTab, tea.KeyShiftTab:
			f.toggleFocus()
			return f, nil
		case tea.KeyEnter:
			if f.focus == 0 {
				f.toggleFocus()
				return f, nil
			}
			username := strings.TrimSpace(f.username.Value())
			password := f.password.Value()
			if username == "" || password == "" {
				f.errText = "username and password are required"
				return f, nil
			}
			return f, func() tea.Msg {
				return LoginSubmitMsg{Username: username, Password: password}
			}
		}
	}

	var cmd tea.Cmd
	if f.focus == 0 {
		f.username, cmd = f.username.Update(msg)
	} else {
		f.password, cmd = f.password.Update(msg)
	}
	return f, cmd
}

func (f *LoginForm) toggleFocus() {
	if f.focus == 0 {
		f.focus = 1
		f.username.Blur()
		f.password.Focus()
	} else {
		f.focus = 0
		f.password.Blur()
		f.username.Focus()
	}
}

// View renders the form.
func (f *LoginForm) View() string {
	var b strings.Builder
	b.WriteString(f.theme.FormLabel.Render("Sign in to Vela"))
	b.WriteString("\n\n")
	b.WriteString(f.username.View())
	b.WriteString("\n")
	b.WriteString(f.password.View())
	b.WriteString("\n")
	if f.errText != "" {
		b.WriteString(f.theme.FormError.Render(f.errText))
		b.WriteString("\n")
	}
	b.WriteString(f.theme.ShortcutDesc.Render("tab to switch · enter to submit"))
	return b.String()
}
