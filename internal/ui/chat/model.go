// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// This file defines the Model: all state the chat interface holds, its
// construction, and the render path. Update logic lives in update.go,
// key bindings in keys.go.

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/velachat/vela-tui/internal/api"
	"github.com/velachat/vela-tui/internal/auth"
	"github.com/velachat/vela-tui/internal/controller"
	"github.com/velachat/vela-tui/internal/model"
	"github.com/velachat/vela-tui/internal/ui/components"
	"github.com/velachat/vela-tui/internal/ui/styles"
)

// pickerKind says which selection the open picker edits.
type pickerKind int

const (
	pickerNone pickerKind = iota
	pickerKnowledge
	pickerTools
)

// Model is the top-level Bubble Tea model for the chat interface.
//
// The update loop is the only mutator of conversation state: the stream
// reader goroutine delivers decoded events as messages, and Apply runs
// here. cancelMgr-style shared state lives behind the controller.
type Model struct {
	theme *styles.Theme
	keys  KeyMap
	log   *zap.Logger

	ctrl   *controller.Controller
	client *api.Client
	tokens *auth.State

	viewport   viewport.Model
	input      textinput.Model
	spin       spinner.Model
	renderer   *components.Renderer
	sidebar    *components.Sidebar
	status     *components.StatusBar
	login      *components.LoginForm
	picker     *components.Picker
	pickKind   pickerKind
	pickerData PickerDataMsg
	throttle   *RenderThrottle

	round    *controller.Round
	streamCh chan tea.Msg

	// Selections ride on every submission until changed.
	selectedKBs     []string
	selectedServers []string
	useWebSearch    bool
	modelID         string

	showStats    bool
	expandDetail bool

	width  int
	height int
	ready  bool

	errLine string
}

// Options carries the construction parameters for the chat model.
type Options struct {
	Theme        *styles.Theme
	Controller   *controller.Controller
	Client       *api.Client
	Tokens       *auth.State
	Logger       *zap.Logger
	ModelID      string
	UseWebSearch bool
	ShowThinking bool
	ShowStats    bool
}

// New creates the chat model. The login form is shown when no token is
// available.
func New(opts Options) *Model {
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	input := textinput.New()
	input.Placeholder = "Ask anything"
	input.Focus()
	input.CharLimit = 8192

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = theme.Spinner

	m := &Model{
		theme:        theme,
		keys:         DefaultKeyMap(),
		log:          log,
		ctrl:         opts.Controller,
		client:       opts.Client,
		tokens:       opts.Tokens,
		input:        input,
		spin:         spin,
		sidebar:      components.NewSidebar(theme),
		status:       components.NewStatusBar(theme),
		throttle:     NewRenderThrottle(),
		modelID:      opts.ModelID,
		useWebSearch: opts.UseWebSearch,
		showStats:    opts.ShowStats,
		expandDetail: opts.ShowThinking,
	}
	if !opts.Tokens.LoggedIn() {
		m.login = components.NewLoginForm(theme)
	}
	return m
}

// Init starts the background loads and the input caret.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.spin.Tick}
	if m.login == nil {
		cmds = append(cmds, m.loadConversationsCmd(), m.loadPickerDataCmd())
	}
	return tea.Batch(cmds...)
}

// store is shorthand for the conversation store.
func (m *Model) store() *model.Store {
	return m.ctrl.Store()
}

// streaming reports whether a round is in flight.
func (m *Model) streaming() bool {
	conv := m.store().Active()
	return conv != nil && conv.Busy()
}

// rerender rebuilds the viewport content from the active conversation.
func (m *Model) rerender() {
	if !m.ready {
		return
	}
	conv := m.store().Active()
	if conv == nil {
		m.viewport.SetContent("")
		return
	}

	var b strings.Builder
	for _, t := range conv.Turns {
		b.WriteString(m.renderer.Turn(t, m.expandDetail))
		b.WriteString("\n")
	}
	if m.showStats {
		if at := conv.LastAssistantTurn(); at != nil && at.State == model.TurnSettled {
			if line := m.renderer.Stats(at.Stats); line != "" {
				b.WriteString(line)
				b.WriteString("\n")
			}
		}
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

// resize lays the chrome out for a new terminal size.
func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.theme.SetSize(width, height)

	contentWidth := width - components.SidebarWidth - 2
	if contentWidth < 20 {
		contentWidth = 20
	}
	viewportHeight := height - 4
	if viewportHeight < 3 {
		viewportHeight = 3
	}

	if !m.ready {
		m.viewport = viewport.New(contentWidth, viewportHeight)
		m.ready = true
	} else {
		m.viewport.Width = contentWidth
		m.viewport.Height = viewportHeight
	}
	m.input.Width = contentWidth - 4
	m.renderer = components.NewRenderer(m.theme, contentWidth)
	m.rerender()
}
