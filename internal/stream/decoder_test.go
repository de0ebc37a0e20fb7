// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
)

// chunkedReader delivers its chunks one Read at a time to exercise partial
// frame handling.
type chunkedReader struct {
	chunks []string
	index  int
}

func (c *chunkedReader) Read(p []byte) (int, error) {
	if c.index >= len(c.chunks) {
		return 0, io.EOF
	}
	n := copy(p, c.chunks[c.index])
	c.index++
	return n, nil
}

func collect(t *testing.T, r io.Reader) ([]Event, error) {
	t.Helper()
	var events []Event
	dec := NewDecoder(r, nil)
	err := dec.Process(context.Background(), func(ev Event) {
		events = append(events, ev)
	})
	return events, err
}

func TestProcessBasicEvents(t *testing.T) {
	body := `{"type":"thinking","data":"Let me "}
{"type":"thinking","data":"think."}
{"type":"content","data":"Hello, "}
{"type":"content","data":"world."}
`
	events, err := collect(t, strings.NewReader(body))
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	want := []Event{
		{Type: EventThinking, Text: "Let me "},
		{Type: EventThinking, Text: "think."},
		{Type: EventContent, Text: "Hello, "},
		{Type: EventContent, Text: "world."},
	}
	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d", len(events), len(want))
	}
	for i := range want {
		if events[i].Type != want[i].Type || events[i].Text != want[i].Text {
			t.Errorf("event %d = %+v, want %+v", i, events[i], want[i])
		}
	}
}

func TestProcessReasoningAlias(t *testing.T) {
	body := `{"type":"reasoning","data":"plan"}` + "\n"
	events, err := collect(t, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Type != EventThinking || events[0].Text != "plan" {
		t.Errorf("reasoning should decode as thinking, got %+v", events)
	}
}

func TestProcessPartialFrames(t *testing.T) {
	// One logical line split across three reads, plus a final line with no
	// trailing newline before EOF.
	r := &chunkedReader{chunks: []string{
		`{"type":"content","da`,
		`ta":"abc`,
		"\"}\n",
		`{"type":"content","data":"def"}`,
	}}

	events, err := collect(t, r)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Text != "abc" || events[1].Text != "def" {
		t.Errorf("got texts %q, %q", events[0].Text, events[1].Text)
	}
}

func TestProcessSkipsMalformedAndEmptyLines(t *testing.T) {
	body := "\n" +
		"this is not json\n" +
		`{"type":"content","data":"ok"}` + "\n" +
		"{\"type\":\"content\",broken\n" +
		"\r\n"
	events, err := collect(t, strings.NewReader(body))
	if err != nil {
		t.Fatalf("malformed lines must not terminate the stream: %v", err)
	}
	if len(events) != 1 || events[0].Text != "ok" {
		t.Errorf("expected single ok event, got %+v", events)
	}
}

func TestProcessUnknownTypeSkipped(t *testing.T) {
	body := `{"type":"telemetry","data":"x"}` + "\n" +
		`{"type":"content","data":"hi"}` + "\n"
	events, err := collect(t, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Type != EventContent {
		t.Errorf("unknown types should be skipped, got %+v", events)
	}
}

func TestProcessToolCallStringPayload(t *testing.T) {
	// tool_call data arrives as a JSON string containing the array.
	body := `{"type":"tool_call","data":"[{\"id\":\"t1\",\"name\":\"search\",\"arguments\":{\"q\":\"x\"}}]"}` + "\n"
	events, err := collect(t, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	calls := events[0].ToolCalls
	if len(calls) != 1 || calls[0].ID != "t1" || calls[0].Name != "search" {
		t.Errorf("unexpected calls %+v", calls)
	}
	if string(calls[0].Arguments) != `{"q":"x"}` {
		t.Errorf("arguments = %s", calls[0].Arguments)
	}
}

func TestProcessToolCallBareArray(t *testing.T) {
	body := `{"type":"tool_call","data":[{"id":"a","name":"n","arguments":{}},{"id":"b","name":"m","arguments":{}}]}` + "\n"
	events, err := collect(t, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || len(events[0].ToolCalls) != 2 {
		t.Fatalf("expected one event with two calls, got %+v", events)
	}
	if events[0].ToolCalls[0].ID != "a" || events[0].ToolCalls[1].ID != "b" {
		t.Errorf("array order not preserved: %+v", events[0].ToolCalls)
	}
}

func TestProcessToolResultAndError(t *testing.T) {
	body := `{"type":"tool_result","data":{"id":"t1","result":"ok","error":null}}` + "\n" +
		`{"type":"error","data":{"error":"model unavailable"}}` + "\n"
	events, err := collect(t, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if tr := events[0].ToolResult; tr == nil || tr.ID != "t1" || string(tr.Result) != `"ok"` {
		t.Errorf("tool_result = %+v", events[0].ToolResult)
	}
	if events[1].Type != EventError || events[1].Message != "model unavailable" {
		t.Errorf("error event = %+v", events[1])
	}
}

func TestProcessConversationCreated(t *testing.T) {
	body := `{"type":"conversation_created","data":"srv-42"}` + "\n"
	events, err := collect(t, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Type != EventConversationCreated || events[0].Text != "srv-42" {
		t.Errorf("got %+v", events)
	}
}

func TestProcessMissingDataIsEmptyDelta(t *testing.T) {
	body := `{"type":"content"}` + "\n"
	events, err := collect(t, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Text != "" {
		t.Errorf("missing data should yield an empty delta event, got %+v", events)
	}
}

func TestProcessCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dec := NewDecoder(strings.NewReader(`{"type":"content","data":"x"}`+"\n"), nil)
	err := dec.Process(ctx, func(Event) {})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

// failingReader returns data then an error, modeling a dropped connection.
type failingReader struct {
	data string
	done bool
}

func (f *failingReader) Read(p []byte) (int, error) {
	if !f.done {
		f.done = true
		return copy(p, f.data), nil
	}
	return 0, errors.New("connection reset")
}

func TestProcessTransportFailure(t *testing.T) {
	r := &failingReader{data: `{"type":"content","data":"partial"}` + "\n"}

	var events []Event
	dec := NewDecoder(r, nil)
	err := dec.Process(context.Background(), func(ev Event) {
		events = append(events, ev)
	})
	if err == nil || err == io.EOF {
		t.Fatalf("expected transport error, got %v", err)
	}
	if len(events) != 1 || events[0].Text != "partial" {
		t.Errorf("events before failure must be delivered, got %+v", events)
	}
}

func TestToolResultFailed(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want bool
	}{
		{"absent", ``, false},
		{"explicit null", `null`, false},
		{"string error", `"timeout"`, true},
		{"object error", `{"code":500}`, true},
	}
	for _, tc := range cases {
		r := ToolResult{Error: json.RawMessage(tc.raw)}
		if got := r.Failed(); got != tc.want {
			t.Errorf("%s: Failed() = %v, want %v", tc.name, got, tc.want)
		}
	}
}
