// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/glamour"

	"github.com/velachat/vela-tui/internal/model"
	"github.com/velachat/vela-tui/internal/ui/styles"
)

// Renderer turns a sequence of parts into terminal output: markdown for
// content, highlighted JSON for tool traffic, muted blocks for thinking
// and references.
type Renderer struct {
	theme    *styles.Theme
	width    int
	markdown *glamour.TermRenderer
}

// NewRenderer builds a renderer for the given width. Markdown rendering
// degrades to plain text if glamour cannot initialize.
func NewRenderer(theme *styles.Theme, width int) *Renderer {
	r := &Renderer{theme: theme, width: width}
	md, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(theme.GlamourStyle()),
		glamour.WithWordWrap(width),
	)
	if err == nil {
		r.markdown = md
	}
	return r
}

// Turn renders one turn. expandDetail controls whether thinking text and
// tool payloads are shown or collapsed to one-line headers.
func (r *Renderer) Turn(t model.Turn, expandDetail bool) string {
	var b strings.Builder
	switch turn := t.(type) {
	case *model.UserTurn:
		b.WriteString(r.theme.UserPrefix.Render("You"))
		b.WriteString("\n")
		b.WriteString(turn.Content)
		b.WriteString("\n")
	case *model.AssistantTurn:
		b.WriteString(r.theme.AssistantPrefix.Render("Vela"))
		b.WriteString("\n")
		for _, p := range turn.Parts {
			b.WriteString(r.Part(p, expandDetail))
		}
		if turn.State == model.TurnCancelled {
			b.WriteString(r.theme.StatsLine.Render("(stopped)"))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Part renders a single part.
func (r *Renderer) Part(p *model.Part, expandDetail bool) string {
	switch p.Kind {
	case model.KindLoading:
		return r.theme.Thinking.Render("…") + "\n"

	case model.KindThinking:
		header := "∴ thinking"
		if !p.Completed {
			header += " …"
		}
		out := r.theme.ThinkingHeader.Render(header) + "\n"
		if expandDetail && p.Text() != "" {
			out += r.theme.Thinking.Render(p.Text()) + "\n"
		}
		return out

	case model.KindToolCall:
		return r.toolCall(p, expandDetail)

	case model.KindContent:
		if p.IsError {
			return r.theme.ErrorContent.Render("✗ "+p.Text()) + "\n"
		}
		return r.content(p.Text())

	case model.KindReference:
		return r.theme.Reference.Render(p.Text()) + "\n"
	}
	return ""
}

// toolCall renders the call header and, expanded, its arguments and
// outcome as highlighted JSON.
func (r *Renderer) toolCall(p *model.Part, expandDetail bool) string {
	status := "pending"
	switch {
	case p.Failed():
		status = "failed"
	case p.HasResult:
		status = "done"
	}

	header := fmt.Sprintf("⚙ %s (%s)", p.ToolName, status)
	style := r.theme.ToolCall
	if p.Failed() {
		style = r.theme.ToolError
	}
	out := style.Render(header) + "\n"

	if expandDetail {
		if len(p.Arguments) > 0 {
			out += r.highlightJSON(p.Arguments)
		}
		if p.Failed() {
			out += r.theme.ToolError.Render(rawToString(p.ResultErr)) + "\n"
		} else if p.HasResult && len(p.Result) > 0 {
			out += r.highlightJSON(p.Result)
		}
	}
	return out
}

// content renders markdown, falling back to the raw text.
func (r *Renderer) content(text string) string {
	if r.markdown != nil {
		if rendered, err := r.markdown.Render(text); err == nil {
			return rendered
		}
	}
	return text + "\n"
}

// highlightJSON pretty-prints and syntax-highlights a JSON payload.
// Anything that will not re-indent is shown verbatim.
func (r *Renderer) highlightJSON(raw json.RawMessage) string {
	source := string(raw)
	var indented bytes.Buffer
	if err := json.Indent(&indented, raw, "", "  "); err == nil {
		source = indented.String()
	}

	var b strings.Builder
	if err := quick.Highlight(&b, source, "json", "terminal256", r.theme.ChromaStyle()); err != nil {
		return source + "\n"
	}
	if !strings.HasSuffix(b.String(), "\n") {
		b.WriteString("\n")
	}
	return b.String()
}

// Stats formats the per-turn statistics line.
func (r *Renderer) Stats(st *model.Statistics) string {
	if st == nil || st.EndTime.IsZero() {
		return ""
	}
	line := fmt.Sprintf("%d events · first in %s · total %s",
		st.EventCount,
		st.TimeToFirst.Round(time.Millisecond),
		st.TotalDuration.Round(time.Millisecond))
	return r.theme.StatsLine.Render(line)
}

// rawToString renders a raw JSON value as display text, unquoting plain
// strings.
func rawToString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
