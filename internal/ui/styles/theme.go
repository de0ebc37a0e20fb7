// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styled components for the application. It detects the
// terminal's color capability and adjusts accordingly.
type Theme struct {
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	Width  int
	Height int

	// ==========================================================================
	// LAYOUT
	// ==========================================================================

	App       lipgloss.Style
	Sidebar   lipgloss.Style
	StatusBar lipgloss.Style

	// ==========================================================================
	// TURN RENDERING
	// ==========================================================================

	UserPrefix      lipgloss.Style
	AssistantPrefix lipgloss.Style
	Thinking        lipgloss.Style
	ThinkingHeader  lipgloss.Style
	ToolCall        lipgloss.Style
	ToolError       lipgloss.Style
	Reference       lipgloss.Style
	ErrorContent    lipgloss.Style
	StatsLine       lipgloss.Style

	// ==========================================================================
	// SIDEBAR
	// ==========================================================================

	SidebarTitle    lipgloss.Style
	SidebarItem     lipgloss.Style
	SidebarSelected lipgloss.Style
	SidebarBusy     lipgloss.Style

	// ==========================================================================
	// INPUT AND CHROME
	// ==========================================================================

	InputPrompt  lipgloss.Style
	Spinner      lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
	FormLabel    lipgloss.Style
	FormError    lipgloss.Style
}

// palette is the set of semantic colors, adaptive to background.
type palette struct {
	primary   lipgloss.AdaptiveColor
	secondary lipgloss.AdaptiveColor
	muted     lipgloss.AdaptiveColor
	success   lipgloss.AdaptiveColor
	warning   lipgloss.AdaptiveColor
	danger    lipgloss.AdaptiveColor
	surface   lipgloss.AdaptiveColor
}

func defaultPalette() palette {
	return palette{
		primary:   lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7D79F6"},
		secondary: lipgloss.AdaptiveColor{Light: "#0E7490", Dark: "#22D3EE"},
		muted:     lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"},
		success:   lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#4ADE80"},
		warning:   lipgloss.AdaptiveColor{Light: "#A16207", Dark: "#FACC15"},
		danger:    lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"},
		surface:   lipgloss.AdaptiveColor{Light: "#E5E7EB", Dark: "#1F2937"},
	}
}

// NewTheme builds a theme from the detected terminal capabilities.
func NewTheme() *Theme {
	profile := termenv.ColorProfile()
	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		HasTrueColor: profile == termenv.TrueColor,
		ColorProfile: profile,
	}
	t.initStyles(defaultPalette())
	return t
}

// NewThemeForBackground forces dark or light regardless of detection.
// The config file's theme setting routes through here.
func NewThemeForBackground(dark bool) *Theme {
	t := &Theme{
		IsDark:       dark,
		ColorProfile: termenv.ColorProfile(),
	}
	t.initStyles(defaultPalette())
	return t
}

func (t *Theme) initStyles(p palette) {
	t.App = lipgloss.NewStyle()
	t.Sidebar = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(p.surface).
		PaddingRight(1)
	t.StatusBar = lipgloss.NewStyle().
		Foreground(p.muted).
		Background(p.surface).
		Padding(0, 1)

	t.UserPrefix = lipgloss.NewStyle().Foreground(p.primary).Bold(true)
	t.AssistantPrefix = lipgloss.NewStyle().Foreground(p.secondary).Bold(true)
	t.Thinking = lipgloss.NewStyle().Foreground(p.muted).Italic(true)
	t.ThinkingHeader = lipgloss.NewStyle().Foreground(p.muted).Bold(true)
	t.ToolCall = lipgloss.NewStyle().Foreground(p.warning)
	t.ToolError = lipgloss.NewStyle().Foreground(p.danger)
	t.Reference = lipgloss.NewStyle().Foreground(p.muted)
	t.ErrorContent = lipgloss.NewStyle().Foreground(p.danger).Bold(true)
	t.StatsLine = lipgloss.NewStyle().Foreground(p.muted).Faint(true)

	t.SidebarTitle = lipgloss.NewStyle().Foreground(p.primary).Bold(true)
	t.SidebarItem = lipgloss.NewStyle().Foreground(p.muted)
	t.SidebarSelected = lipgloss.NewStyle().Foreground(p.primary).Bold(true)
	t.SidebarBusy = lipgloss.NewStyle().Foreground(p.warning)

	t.InputPrompt = lipgloss.NewStyle().Foreground(p.primary).Bold(true)
	t.Spinner = lipgloss.NewStyle().Foreground(p.secondary)
	t.ShortcutKey = lipgloss.NewStyle().Foreground(p.secondary).Bold(true)
	t.ShortcutDesc = lipgloss.NewStyle().Foreground(p.muted)
	t.FormLabel = lipgloss.NewStyle().Foreground(p.primary)
	t.FormError = lipgloss.NewStyle().Foreground(p.danger)
}

// SetSize records the terminal dimensions for layout decisions.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GlamourStyle returns the glamour style name matching the background.
func (t *Theme) GlamourStyle() string {
	if t.IsDark {
		return "dark"
	}
	return "light"
}

// ChromaStyle returns the chroma style name matching the background.
func (t *Theme) ChromaStyle() string {
	if t.IsDark {
		return "monokai"
	}
	return "github"
}
