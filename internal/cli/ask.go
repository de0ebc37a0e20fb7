// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - Single query command handler for the vela CLI.
//
// Handles "vela ask", which sends one question to the backend and
// streams the answer to stdout. Thinking and tool activity go to
// stderr so piped output stays clean.
//
// Command: ask [question]
//
// Examples:
//   vela ask "What is NDJSON?"
//   vela ask -w "Latest Go release?"
//   vela ask --json "Summarize x" | jq -r .content
//
// Flags:
//   -m, --model NAME    Use a specific model
//   -w, --web           Enable web search
//   --json              Print the final answer as a JSON object

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/velachat/vela-tui/internal/controller"
	"github.com/velachat/vela-tui/internal/model"
	"github.com/velachat/vela-tui/internal/stream"
)

// askResult is the --json output shape.
type askResult struct {
	Content        string `json:"content"`
	ConversationID string `json:"conversation_id,omitempty"`
	Events         int    `json:"events"`
	ElapsedMS      int64  `json:"elapsed_ms"`
	Cancelled      bool   `json:"cancelled,omitempty"`
}

// HandleAsk handles the "ask" command.
func HandleAsk(args Args) error {
	if args.Query == "" {
		return NewUsageError("usage: vela ask \"question\"")
	}

	rt, err := NewRuntime(args)
	if err != nil {
		return err
	}
	defer rt.Close()

	if !rt.Tokens.LoggedIn() {
		return &CommandError{Code: ExitAuthError, Message: "not logged in (run: vela login)"}
	}

	store := model.NewStore()
	store.NewLocalConversation()
	ctrl := controller.New(rt.Client, store,
		controller.WithLogger(rt.Log),
		controller.WithModelID(rt.ModelID()),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Ctrl+C stops generation instead of killing the process outright.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		ctrl.Stop(context.Background())
		cancel()
	}()

	round, err := ctrl.Submit(ctx, controller.SubmitRequest{
		Message:      args.Query,
		UseWebSearch: args.WebSearch,
		ModelID:      args.Model,
	})
	if err != nil {
		return err
	}

	printer := newEventPrinter(args)
	streamErr := round.Decoder().Process(round.Context(), func(ev stream.Event) {
		round.Apply(ev)
		printer.print(ev)
	})
	round.Complete(streamErr)
	printer.finish()

	turn := round.Turn()
	switch {
	case args.JSON:
		return printAskJSON(round, turn)
	case turn.State == model.TurnCancelled:
		fmt.Fprintln(os.Stderr, paint(warningStyle, "(stopped)"))
		return &CommandError{Code: ExitCancelled, Message: "cancelled"}
	case turn.State == model.TurnFailed:
		return fmt.Errorf("request failed: %s", turnErrorText(turn))
	}
	return nil
}

// printAskJSON emits the settled turn as one JSON object.
func printAskJSON(round *controller.Round, turn *model.AssistantTurn) error {
	result := askResult{
		Content:   turn.FinalContent(),
		Cancelled: turn.State == model.TurnCancelled,
	}
	if conv := round.Conversation(); conv != nil {
		result.ConversationID = conv.ServerID
	}
	if turn.Stats != nil {
		result.Events = turn.Stats.EventCount
		result.ElapsedMS = turn.Stats.TotalDuration.Milliseconds()
	}
	enc := json.NewEncoder(os.Stdout)
	if err := enc.Encode(result); err != nil {
		return err
	}
	if turn.State == model.TurnFailed {
		return &CommandError{Code: ExitGeneralError, Message: turnErrorText(turn)}
	}
	return nil
}

// turnErrorText returns the first error part's text, or a fallback.
func turnErrorText(turn *model.AssistantTurn) string {
	for _, p := range turn.Parts {
		if p.IsError {
			return p.Text()
		}
	}
	return "unknown error"
}

// =============================================================================
// STREAM PRINTING
// =============================================================================

// eventPrinter writes stream events as they arrive: answer text to
// out, everything else to errOut. JSON mode stays silent until the
// end.
type eventPrinter struct {
	out         io.Writer
	errOut      io.Writer
	quiet       bool
	silent      bool
	thinkingAt  time.Time
	sawThinking bool
	sawContent  bool
}

func newEventPrinter(args Args) *eventPrinter {
	return &eventPrinter{
		out:    os.Stdout,
		errOut: os.Stderr,
		quiet:  args.Quiet,
		silent: args.JSON,
	}
}

func (p *eventPrinter) print(ev stream.Event) {
	if p.silent {
		return
	}

	switch ev.Type {
	case stream.EventThinking:
		if !p.sawThinking && !p.quiet {
			fmt.Fprintln(p.errOut, paint(thinkingStyle, "∴ thinking..."))
			p.thinkingAt = time.Now()
		}
		p.sawThinking = true

	case stream.EventContent:
		if p.sawThinking && !p.sawContent && !p.quiet {
			elapsed := time.Since(p.thinkingAt).Round(100 * time.Millisecond)
			fmt.Fprintln(p.errOut, paint(thinkingStyle, fmt.Sprintf("∴ thought for %s", elapsed)))
		}
		p.sawContent = true
		fmt.Fprint(p.out, ev.Text)

	case stream.EventToolCall:
		if p.quiet {
			return
		}
		for _, call := range ev.ToolCalls {
			fmt.Fprintln(p.errOut, paint(toolStyle, "⚙ "+call.Name))
		}

	case stream.EventToolResult:
		if p.quiet || ev.ToolResult == nil {
			return
		}
		if ev.ToolResult.Failed() {
			fmt.Fprintln(p.errOut, paint(errorStyle, "⚙ tool failed"))
		}

	case stream.EventError:
		fmt.Fprintln(p.errOut, paint(errorStyle, "✗ "+ev.Message))

	case stream.EventReference:
		if !p.quiet {
			fmt.Fprintln(p.errOut, paint(infoStyle, "» "+ev.Text))
		}
	}
}

// finish terminates the answer line.
func (p *eventPrinter) finish() {
	if !p.silent && p.sawContent {
		fmt.Fprintln(p.out)
	}
}
