// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/velachat/vela-tui/internal/api"
	"github.com/velachat/vela-tui/internal/model"
)

// userMetadata is the optional per-message metadata carried on stored
// user messages.
type userMetadata struct {
	KnowledgeBaseIDs []string `json:"knowledge_base_ids"`
	MCPServerIDs     []string `json:"mcp_server_ids"`
	UseWebSearch     bool     `json:"use_web_search"`
}

// Formatter translates stored conversations into the same turn/part
// structure the live assembler produces, so historical and live turns
// render through one code path.
type Formatter struct {
	log *zap.Logger
}

// NewFormatter creates a formatter. A nil logger is replaced with a
// no-op one.
func NewFormatter(log *zap.Logger) *Formatter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Formatter{log: log}
}

// Turns converts every stored message into a turn. Messages with a role
// outside user/assistant are logged and skipped.
func (f *Formatter) Turns(detail *api.ConversationDetail) []model.Turn {
	if detail == nil {
		return nil
	}
	turns := make([]model.Turn, 0, len(detail.Messages))
	for _, msg := range detail.Messages {
		switch msg.Role {
		case "user":
			turns = append(turns, f.userTurn(msg))
		case "assistant":
			turns = append(turns, f.assistantTurn(msg))
		default:
			f.log.Warn("skipping stored message with unknown role",
				zap.String("message_id", msg.ID),
				zap.String("role", msg.Role))
		}
	}
	return turns
}

// userTurn rebuilds a user turn, recovering selection flags from the
// message metadata when present.
func (f *Formatter) userTurn(msg api.HistoryMessage) *model.UserTurn {
	turn := model.NewUserTurn(msg.Content)
	turn.Historical = true

	if len(msg.Metadata) > 0 {
		var meta userMetadata
		if err := json.Unmarshal(msg.Metadata, &meta); err != nil {
			f.log.Warn("skipping unreadable message metadata",
				zap.String("message_id", msg.ID),
				zap.Error(err))
		} else {
			turn.KnowledgeBaseIDs = meta.KnowledgeBaseIDs
			turn.ToolServerIDs = meta.MCPServerIDs
			turn.UseWebSearch = meta.UseWebSearch
		}
	}
	return turn
}

// assistantTurn rebuilds an assistant turn from one canonical message.
// Parts appear in the fixed canonical order: thinking, then tool calls in
// array order, then content. The turn comes out settled, behaviorally
// identical to one that streamed in live.
func (f *Formatter) assistantTurn(msg api.HistoryMessage) *model.AssistantTurn {
	turn := model.NewAssistantTurn()
	turn.RemoveLoading()

	if msg.Thinking != "" {
		part := model.NewThinkingPart(msg.Thinking)
		part.Completed = true
		part.Historical = true
		turn.AppendPart(part)
	}

	for _, call := range msg.ToolCalls {
		part := model.NewToolCallPart(call.ID, call.Name, call.Arguments)
		part.Historical = true
		if len(call.Result) > 0 || len(call.Error) > 0 {
			if err := part.SetResult(call.Result, call.Error); err != nil {
				f.log.Warn("stored tool call rejected its result",
					zap.String("call_id", call.ID),
					zap.Error(err))
			}
		}
		turn.AppendPart(part)
	}

	if msg.Content != "" {
		part := model.NewContentPart(msg.Content)
		part.Historical = true
		turn.AppendPart(part)
	}

	turn.State = model.TurnSettled
	return turn
}
