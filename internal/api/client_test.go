// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func staticToken(token string) TokenSource {
	return TokenFunc(func() string { return token })
}

func TestBearerHeaderAttached(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Write([]byte(`{"code":200,"message":"ok","data":{"id":"u1","username":"a","email":"a@b"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithTokenSource(staticToken("tok-123")))
	if _, err := c.Me(context.Background()); err != nil {
		t.Fatalf("Me: %v", err)
	}
	if got != "Bearer tok-123" {
		t.Errorf("Authorization = %q, want Bearer tok-123", got)
	}
}

func TestBearerHeaderOmittedWhenNoToken(t *testing.T) {
	var header string
	var present bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Get("Authorization")
		_, present = r.Header["Authorization"]
		w.Write([]byte(`{"code":200}`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithTokenSource(staticToken("")))
	if err := c.Health(context.Background()); err != nil {
		t.Fatalf("Health: %v", err)
	}
	if present || header != "" {
		t.Errorf("Authorization header was sent: %q", header)
	}
}

func TestEnvelopeUnwrapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":200,"message":"ok","data":[{"id":"c1","title":"First"}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	list, err := c.ListConversations(context.Background())
	if err != nil {
		t.Fatalf("ListConversations: %v", err)
	}
	if len(list) != 1 || list[0].ID != "c1" || list[0].Title != "First" {
		t.Errorf("list = %+v", list)
	}
}

func TestBarePayloadAccepted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":"c1","title":"Bare"}]`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	list, err := c.ListConversations(context.Background())
	if err != nil {
		t.Fatalf("ListConversations: %v", err)
	}
	if len(list) != 1 || list[0].Title != "Bare" {
		t.Errorf("list = %+v", list)
	}
}

func TestEnvelopeErrorCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":500,"message":"backend exploded","data":null}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.ListConversations(context.Background())
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *Error", err)
	}
	if apiErr.Status != 500 || apiErr.Message != "backend exploded" {
		t.Errorf("err = %+v", apiErr)
	}
}

func TestUnauthorizedSurfacedAsAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"token expired"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithTokenSource(staticToken("stale")))
	_, err := c.Me(context.Background())
	if !IsAuth(err) {
		t.Fatalf("IsAuth(%v) = false", err)
	}
	var apiErr *Error
	errors.As(err, &apiErr)
	if apiErr.Status != 401 || apiErr.Message != "token expired" {
		t.Errorf("err = %+v", apiErr)
	}
}

func TestLoginFormEncoded(t *testing.T) {
	var contentType, username, password string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		r.ParseForm()
		username = r.PostFormValue("username")
		password = r.PostFormValue("password")
		w.Write([]byte(`{"code":200,"data":{"access_token":"tok","token_type":"bearer"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	result, err := c.Login(context.Background(), LoginRequest{Username: "alice", Password: "s3cret"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if contentType != "application/x-www-form-urlencoded" {
		t.Errorf("Content-Type = %q", contentType)
	}
	if username != "alice" || password != "s3cret" {
		t.Errorf("form = %q/%q", username, password)
	}
	if result.AccessToken != "tok" {
		t.Errorf("AccessToken = %q", result.AccessToken)
	}
}

func TestLoginRejectsEmptyInput(t *testing.T) {
	c := New("http://example.invalid")
	if _, err := c.Login(context.Background(), LoginRequest{}); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestSendChatReturnsBodyStream(t *testing.T) {
	const stream = `{"type":"content","data":"hi"}` + "\n"
	var path, auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		auth = r.Header.Get("Authorization")
		io.WriteString(w, stream)
	}))
	defer srv.Close()

	c := New(srv.URL, WithTokenSource(staticToken("tok")))
	body, err := c.SendChat(context.Background(), ChatRequest{Message: "hello"})
	if err != nil {
		t.Fatalf("SendChat: %v", err)
	}
	defer body.Close()

	got, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read stream: %v", err)
	}
	if string(got) != stream {
		t.Errorf("stream = %q", got)
	}
	if path != "/api/chat/stream" {
		t.Errorf("path = %q", path)
	}
	if auth != "Bearer tok" {
		t.Errorf("Authorization = %q", auth)
	}
}

func TestSendChatNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.SendChat(context.Background(), ChatRequest{Message: "hello"})
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Status != 502 {
		t.Fatalf("err = %v", err)
	}
}

func TestSendChatCancellationDistinctFromNetworkFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New("http://127.0.0.1:0")
	_, err := c.SendChat(ctx, ChatRequest{Message: "hello"})
	if !IsCancelled(err) {
		t.Fatalf("IsCancelled(%v) = false", err)
	}
	if IsNetwork(err) {
		t.Error("cancellation misclassified as network failure")
	}
}

func TestSendChatValidatesRequest(t *testing.T) {
	c := New("http://example.invalid")

	cases := []struct {
		name string
		req  ChatRequest
	}{
		{"empty message", ChatRequest{}},
		{"history starts with assistant", ChatRequest{
			Message: "q",
			History: []ChatMessage{{Role: "assistant", Content: "a"}},
		}},
		{"history repeats role", ChatRequest{
			Message: "q",
			History: []ChatMessage{
				{Role: "user", Content: "a"},
				{Role: "user", Content: "b"},
			},
		}},
		{"use_tools without servers", ChatRequest{Message: "q", UseTools: true}},
	}
	for _, tc := range cases {
		if _, err := c.SendChat(context.Background(), tc.req); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestStopChatQueryParam(t *testing.T) {
	var method, query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		query = r.URL.Query().Get("conversation_id")
		w.Write([]byte(`{"code":200}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	if err := c.StopChat(context.Background(), "conv-9"); err != nil {
		t.Fatalf("StopChat: %v", err)
	}
	if method != http.MethodPost || query != "conv-9" {
		t.Errorf("method=%q conversation_id=%q", method, query)
	}
}

func TestGetConversationDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/conv-1") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"code":200,"data":{"id":"conv-1","title":"T","messages":[
			{"id":"m1","role":"user","content":"hi"},
			{"id":"m2","role":"assistant","content":"hello","thinking":"hmm",
			 "tool_calls":[{"id":"t1","name":"search","arguments":{"q":"x"},"result":"ok"}]}
		]}}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	detail, err := c.GetConversation(context.Background(), "conv-1")
	if err != nil {
		t.Fatalf("GetConversation: %v", err)
	}
	if detail.Title != "T" || len(detail.Messages) != 2 {
		t.Fatalf("detail = %+v", detail)
	}
	assistant := detail.Messages[1]
	if assistant.Thinking != "hmm" || len(assistant.ToolCalls) != 1 {
		t.Errorf("assistant message = %+v", assistant)
	}
	if assistant.ToolCalls[0].Name != "search" {
		t.Errorf("tool call = %+v", assistant.ToolCalls[0])
	}
}

func TestDeleteConversation(t *testing.T) {
	var method, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		path = r.URL.Path
		w.Write([]byte(`{"code":200}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	if err := c.DeleteConversation(context.Background(), "conv-2"); err != nil {
		t.Fatalf("DeleteConversation: %v", err)
	}
	if method != http.MethodDelete || path != "/api/conversations/conv-2" {
		t.Errorf("%s %s", method, path)
	}
}
