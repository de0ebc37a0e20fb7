// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Configuration constants for the backend API.
const (
	// DefaultTimeout bounds non-streaming requests.
	DefaultTimeout = 30 * time.Second

	// MaxResponseSize is the maximum allowed non-streaming response body.
	// SECURITY: Response size limit prevents memory exhaustion.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB

	userAgent = "vela/0.1.0"
)

// TokenSource supplies the current bearer token. An empty string means
// not logged in; the Authorization header is then omitted entirely.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a plain function to the TokenSource interface.
type TokenFunc func() string

// Token implements TokenSource.
func (f TokenFunc) Token() string { return f() }

// Client issues authenticated HTTP requests to the backend, including the
// streaming chat POST. The zero value is not usable; construct with New.
//
// PERFORMANCE: Two pooled HTTP clients are kept: one with a timeout for
// REST calls, one without for the stream (lifetime is context-controlled).
type Client struct {
	baseURL   string
	http      *http.Client
	streaming *http.Client
	tokens    TokenSource
	log       *zap.Logger
}

// Option configures a Client.
type ClientOption func(*Client)

// WithTokenSource sets the bearer-token supplier.
func WithTokenSource(ts TokenSource) ClientOption {
	return func(c *Client) { c.tokens = ts }
}

// WithLogger sets the logger for request diagnostics.
func WithLogger(log *zap.Logger) ClientOption {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithTimeout sets the non-streaming request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.http.Timeout = d }
}

// WithHTTPClient replaces both underlying HTTP clients. Test hook.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		c.http = h
		c.streaming = h
	}
}

// New creates a client for the backend at baseURL. A trailing slash on
// the URL is tolerated.
func New(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http: &http.Client{
			Timeout: DefaultTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		streaming: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
			// No timeout: stream lifetime is controlled via context.
		},
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured server URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// setHeaders attaches the standard headers. The Authorization header is
// omitted when no token is available.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", userAgent)
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// readBody reads a non-streaming response body with a size cap.
// SECURITY: Response size limit prevents memory exhaustion.
func readBody(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return nil, &Error{Type: ErrTypeNetwork, Message: "reading response body", Err: err}
	}
	if int64(len(body)) == MaxResponseSize {
		return nil, &Error{Type: ErrTypeDecode,
			Message: fmt.Sprintf("response exceeded %d bytes", MaxResponseSize)}
	}
	return body, nil
}

// errorMessage extracts a human-readable message from an error body,
// falling back to the raw body.
func errorMessage(body []byte) string {
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Message != "" {
		return env.Message
	}
	var detail struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &detail); err == nil && detail.Detail != "" {
		return detail.Detail
	}
	return strings.TrimSpace(string(body))
}

// do runs one JSON request/response cycle and decodes the payload into
// out (which may be nil when the caller only cares about success).
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	if c.baseURL == "" {
		return ErrEmptyBaseURL
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return &Error{Type: ErrTypeDecode, Message: "encoding request", Err: err}
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &Error{Type: ErrTypeNetwork, Message: "building request", Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setHeaders(req)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return newNetworkError(err)
	}
	defer resp.Body.Close()

	c.log.Debug("api request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	raw, err := readBody(resp)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newHTTPError(resp.StatusCode, errorMessage(raw))
	}
	return decodePayload(raw, out)
}

// decodePayload unwraps the standard envelope, tolerating endpoints that
// return a bare payload with no wrapper.
func decodePayload(raw []byte, out interface{}) error {
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Code != 0 {
		if env.Code != 200 {
			return &Error{Type: ErrTypeHTTP, Status: env.Code, Message: env.Message}
		}
		if len(env.Data) == 0 || string(env.Data) == "null" {
			return nil
		}
		raw = env.Data
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Type: ErrTypeDecode, Message: "decoding response payload", Err: err}
	}
	return nil
}

// =============================================================================
// CHAT
// =============================================================================

// SendChat issues the streaming chat POST and returns the raw body for
// the stream decoder. The request is aborted when ctx is cancelled; the
// caller must close the returned body.
func (c *Client) SendChat(ctx context.Context, chatReq ChatRequest) (io.ReadCloser, error) {
	if c.baseURL == "" {
		return nil, ErrEmptyBaseURL
	}
	if err := chatReq.Validate(); err != nil {
		return nil, &Error{Type: ErrTypeDecode, Message: "invalid chat request", Err: err}
	}

	encoded, err := json.Marshal(chatReq)
	if err != nil {
		return nil, &Error{Type: ErrTypeDecode, Message: "encoding chat request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/chat/stream", bytes.NewReader(encoded))
	if err != nil {
		return nil, &Error{Type: ErrTypeNetwork, Message: "building request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	c.setHeaders(req)

	resp, err := c.streaming.Do(req)
	if err != nil {
		return nil, newNetworkError(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, readErr := readBody(resp)
		resp.Body.Close()
		if readErr != nil {
			return nil, newHTTPError(resp.StatusCode, "")
		}
		return nil, newHTTPError(resp.StatusCode, errorMessage(raw))
	}
	return resp.Body, nil
}

// StopChat sends the best-effort stop notification for a streaming
// conversation. Failures matter little; the caller decides whether to
// retry.
func (c *Client) StopChat(ctx context.Context, conversationID string) error {
	path := "/api/chat/stop?conversation_id=" + url.QueryEscape(conversationID)
	return c.do(ctx, http.MethodPost, path, nil, nil)
}

// =============================================================================
// AUTHENTICATION
// =============================================================================

// Login exchanges credentials for a bearer token. The backend expects a
// form-encoded body on this one endpoint.
func (c *Client) Login(ctx context.Context, loginReq LoginRequest) (*LoginResult, error) {
	if c.baseURL == "" {
		return nil, ErrEmptyBaseURL
	}
	if err := loginReq.Validate(); err != nil {
		return nil, &Error{Type: ErrTypeDecode, Message: "invalid login request", Err: err}
	}

	form := url.Values{}
	form.Set("username", loginReq.Username)
	form.Set("password", loginReq.Password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/auth/login", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &Error{Type: ErrTypeNetwork, Message: "building request", Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, newNetworkError(err)
	}
	defer resp.Body.Close()

	raw, err := readBody(resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newHTTPError(resp.StatusCode, errorMessage(raw))
	}

	var result LoginResult
	if err := decodePayload(raw, &result); err != nil {
		return nil, err
	}
	if result.AccessToken == "" {
		return nil, &Error{Type: ErrTypeDecode, Message: "login response carried no access_token"}
	}
	return &result, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, regReq RegisterRequest) error {
	if err := regReq.Validate(); err != nil {
		return &Error{Type: ErrTypeDecode, Message: "invalid registration request", Err: err}
	}
	return c.do(ctx, http.MethodPost, "/api/auth/register", regReq, nil)
}

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ChangePassword replaces the account password.
func (c *Client) ChangePassword(ctx context.Context, current, updated string) error {
	body := map[string]string{
		"current_password": current,
		"new_password":     updated,
	}
	return c.do(ctx, http.MethodPost, "/api/auth/change-password", body, nil)
}

// =============================================================================
// CONVERSATIONS
// =============================================================================

// ListConversations returns the stored conversation list.
func (c *Client) ListConversations(ctx context.Context) ([]ConversationInfo, error) {
	var list []ConversationInfo
	if err := c.do(ctx, http.MethodGet, "/api/conversations/", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetConversation returns one stored conversation with its messages.
func (c *Client) GetConversation(ctx context.Context, id string) (*ConversationDetail, error) {
	var detail ConversationDetail
	path := "/api/conversations/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodGet, path, nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// CreateConversation creates a server-side conversation with the given
// title.
func (c *Client) CreateConversation(ctx context.Context, title string) (*ConversationInfo, error) {
	var info ConversationInfo
	body := map[string]string{"title": title}
	if err := c.do(ctx, http.MethodPost, "/api/conversations/", body, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// DeleteConversation removes a stored conversation.
func (c *Client) DeleteConversation(ctx context.Context, id string) error {
	path := "/api/conversations/" + url.PathEscape(id)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// =============================================================================
// SELECTION SOURCES
// =============================================================================

// ListKnowledgeBases returns the selectable retrieval sources.
func (c *Client) ListKnowledgeBases(ctx context.Context) ([]KnowledgeBase, error) {
	var list []KnowledgeBase
	if err := c.do(ctx, http.MethodGet, "/api/knowledge/", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// ListToolServers returns the selectable MCP tool servers.
func (c *Client) ListToolServers(ctx context.Context) ([]ToolServer, error) {
	var list []ToolServer
	if err := c.do(ctx, http.MethodGet, "/api/mcp/servers/", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// ListModels returns the selectable backend models.
func (c *Client) ListModels(ctx context.Context) ([]Model, error) {
	var list []Model
	if err := c.do(ctx, http.MethodGet, "/api/tools/models/", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetLLMConfig returns the user's stored model configuration.
func (c *Client) GetLLMConfig(ctx context.Context) (*LLMConfig, error) {
	var cfg LLMConfig
	if err := c.do(ctx, http.MethodGet, "/api/user/llm-config/", nil, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetLLMConfig stores the user's model configuration.
func (c *Client) SetLLMConfig(ctx context.Context, cfg LLMConfig) error {
	return c.do(ctx, http.MethodPut, "/api/user/llm-config/", cfg, nil)
}

// Health probes the backend without authentication. Used by the status
// command.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/health", nil, nil)
}
