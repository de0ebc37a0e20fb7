// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"encoding/json"
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// envelope is the standard response wrapper. code == 200 indicates
// success; endpoints that predate the envelope return a bare payload,
// which decodePayload tolerates.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// ChatMessage is one entry of the trimmed history window sent with a chat
// request.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ChatRequest is the body of the streaming chat POST.
type ChatRequest struct {
	Message           string        `json:"message"`
	History           []ChatMessage `json:"history"`
	KnowledgeBaseIDs  []string      `json:"knowledge_base_ids"`
	MCPServerIDs      []string      `json:"mcp_server_ids"`
	UseTools          bool          `json:"use_tools"`
	UseWebSearch      bool          `json:"use_web_search"`
	ModelID           *string       `json:"model_id"`
	ConversationID    *string       `json:"conversation_id"`
	ConversationTitle string        `json:"conversation_title,omitempty"`
}

// historyAlternates rejects a history window that does not strictly
// alternate user/assistant starting with user.
var historyAlternates = validation.By(func(value interface{}) error {
	history, ok := value.([]ChatMessage)
	if !ok {
		return errors.New("must be a message list")
	}
	for i, msg := range history {
		want := "user"
		if i%2 == 1 {
			want = "assistant"
		}
		if msg.Role != want {
			return errors.New("must alternate user/assistant starting with user")
		}
	}
	return nil
})

// Validate checks the request before it leaves the client.
func (r ChatRequest) Validate() error {
	if err := validation.ValidateStruct(&r,
		validation.Field(&r.Message, validation.Required),
		validation.Field(&r.History, historyAlternates),
	); err != nil {
		return err
	}
	// use_tools mirrors tool-server selection; a mismatch means the caller
	// built the request by hand and got it wrong.
	if r.UseTools != (len(r.MCPServerIDs) > 0) {
		return errors.New("use_tools: must be set iff mcp_server_ids is non-empty")
	}
	return nil
}

// LoginRequest carries the credentials for the form-encoded login POST.
type LoginRequest struct {
	Username string
	Password string
}

// Validate checks login input before sending.
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// LoginResult is the payload of a successful login.
type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// RegisterRequest is the body of the registration POST.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks registration input before sending.
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// User is the current-user payload.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ConversationInfo is one entry of the conversation list.
type ConversationInfo struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// HistoryToolCall is a tool invocation recorded on a canonical message,
// outcome included when the backend has one.
type HistoryToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     json.RawMessage `json:"error,omitempty"`
}

// HistoryMessage is one canonical message of a stored conversation.
type HistoryMessage struct {
	ID        string            `json:"id"`
	Role      string            `json:"role"`
	Content   string            `json:"content"`
	Thinking  string            `json:"thinking,omitempty"`
	ToolCalls []HistoryToolCall `json:"tool_calls,omitempty"`
	Metadata  json.RawMessage   `json:"metadata,omitempty"`
	Timestamp string            `json:"timestamp,omitempty"`
}

// ConversationDetail is a stored conversation with its full message list.
type ConversationDetail struct {
	ID       string           `json:"id"`
	Title    string           `json:"title"`
	Messages []HistoryMessage `json:"messages"`
}

// KnowledgeBase is one selectable retrieval source.
type KnowledgeBase struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ToolServer is one selectable MCP tool server.
type ToolServer struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// Model is one selectable backend model.
type Model struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Provider string `json:"provider"`
}

// LLMConfig is the user's stored model configuration.
type LLMConfig struct {
	ModelID     string  `json:"model_id"`
	Temperature float64 `json:"temperature"`
}
