// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/velachat/vela-tui/internal/stream"
)

func testPrinter(args Args) (*eventPrinter, *bytes.Buffer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	p := newEventPrinter(args)
	p.out = out
	p.errOut = errOut
	return p, out, errOut
}

func TestPrinterContentToStdout(t *testing.T) {
	p, out, errOut := testPrinter(Args{})

	p.print(stream.Event{Type: stream.EventContent, Text: "hello"})
	p.print(stream.Event{Type: stream.EventContent, Text: " world"})
	p.finish()

	if got := out.String(); got != "hello world\n" {
		t.Errorf("stdout = %q, want %q", got, "hello world\n")
	}
	if errOut.Len() != 0 {
		t.Errorf("stderr should stay clean for plain content, got %q", errOut.String())
	}
}

func TestPrinterToolResultNullError(t *testing.T) {
	// A successful tool round arrives with an explicit "error": null.
	p, out, errOut := testPrinter(Args{})

	p.print(stream.Event{
		Type: stream.EventToolResult,
		ToolResult: &stream.ToolResult{
			ID:     "call-1",
			Result: json.RawMessage(`"ok"`),
			Error:  json.RawMessage("null"),
		},
	})

	if strings.Contains(errOut.String(), "tool failed") {
		t.Errorf("null error reported as failure: %q", errOut.String())
	}
	if out.Len() != 0 {
		t.Errorf("tool results should not write to stdout, got %q", out.String())
	}
}

func TestPrinterToolResultRealError(t *testing.T) {
	p, _, errOut := testPrinter(Args{})

	p.print(stream.Event{
		Type: stream.EventToolResult,
		ToolResult: &stream.ToolResult{
			ID:    "call-2",
			Error: json.RawMessage(`"connection refused"`),
		},
	})

	if !strings.Contains(errOut.String(), "tool failed") {
		t.Errorf("real error not reported, stderr = %q", errOut.String())
	}
}

func TestPrinterQuietSuppressesActivity(t *testing.T) {
	p, out, errOut := testPrinter(Args{Quiet: true})

	p.print(stream.Event{Type: stream.EventThinking, Text: "hmm"})
	p.print(stream.Event{Type: stream.EventToolCall, ToolCalls: []stream.ToolCall{{Name: "search"}}})
	p.print(stream.Event{Type: stream.EventContent, Text: "answer"})
	p.finish()

	if errOut.Len() != 0 {
		t.Errorf("quiet mode wrote to stderr: %q", errOut.String())
	}
	if got := out.String(); got != "answer\n" {
		t.Errorf("stdout = %q, want %q", got, "answer\n")
	}
}

func TestPrinterSilentInJSONMode(t *testing.T) {
	p, out, errOut := testPrinter(Args{JSON: true})

	p.print(stream.Event{Type: stream.EventContent, Text: "answer"})
	p.print(stream.Event{Type: stream.EventError, Message: "boom"})
	p.finish()

	if out.Len() != 0 || errOut.Len() != 0 {
		t.Errorf("JSON mode should print nothing during the stream, got stdout=%q stderr=%q",
			out.String(), errOut.String())
	}
}
