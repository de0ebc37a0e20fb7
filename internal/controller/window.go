// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"github.com/velachat/vela-tui/internal/api"
	"github.com/velachat/vela-tui/internal/model"
)

// historyWindow builds the trimmed history sent with a chat request.
//
// Only plain content survives: the content of each user turn and the
// final content of each settled assistant turn. Thinking, tool calls,
// references, and turns that failed or were cancelled contribute nothing.
// Consecutive same-role entries collapse into one, joined by a blank
// line, and a leading assistant entry is dropped so the window always
// alternates starting with user.
func historyWindow(turns []model.Turn) []api.ChatMessage {
	var window []api.ChatMessage

	push := func(role, content string) {
		if content == "" {
			return
		}
		if n := len(window); n > 0 && window[n-1].Role == role {
			window[n-1].Content += "\n\n" + content
			return
		}
		window = append(window, api.ChatMessage{Role: role, Content: content})
	}

	for _, t := range turns {
		switch turn := t.(type) {
		case *model.UserTurn:
			push("user", turn.Content)
		case *model.AssistantTurn:
			if turn.State != model.TurnSettled {
				continue
			}
			push("assistant", turn.FinalContent())
		}
	}

	if len(window) > 0 && window[0].Role == "assistant" {
		window = window[1:]
	}
	return window
}
