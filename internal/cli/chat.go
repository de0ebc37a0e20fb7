// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat command handler for the vela CLI.
//
// Handles "vela chat", a line-based REPL alternative to the TUI for
// environments where a full-screen interface is unwanted (ssh, tmux
// panes, screen readers).
//
// Command: chat
//
// Interactive commands (during chat):
//   /help, /h           Show available commands
//   /new                Start a fresh conversation
//   /list               List conversations on the server
//   /switch <id>        Continue a server conversation
//   /model [name]       Show or switch model
//   /web on|off         Toggle web search
//   /quit, /q           Exit chat
//   Ctrl+C              Cancel current generation
//   Ctrl+D              Exit chat

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"github.com/velachat/vela-tui/internal/controller"
	"github.com/velachat/vela-tui/internal/model"
	"github.com/velachat/vela-tui/internal/stream"
)

// chatHistoryFile is the liner history file name under the vela home.
const chatHistoryFile = "chat_history"

// chatSession holds the REPL state.
type chatSession struct {
	ctrl  *controller.Controller
	rt    *Runtime
	args  Args
	line  *liner.State
	web   bool
	model string
}

// HandleChat handles the "chat" command.
func HandleChat(args Args) error {
	rt, err := NewRuntime(args)
	if err != nil {
		return err
	}
	defer rt.Close()

	if !rt.Tokens.LoggedIn() {
		return &CommandError{Code: ExitAuthError, Message: "not logged in (run: vela login)"}
	}
	if !IsTTY() {
		return NewUsageError("chat requires an interactive terminal (use: vela ask)")
	}

	store := model.NewStore()
	store.NewLocalConversation()
	ctrl := controller.New(rt.Client, store,
		controller.WithLogger(rt.Log),
		controller.WithModelID(rt.ModelID()),
	)

	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	defer line.Close()

	historyPath := filepath.Join(rt.Home, chatHistoryFile)
	if f, err := os.Open(historyPath); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyPath); err == nil {
			_, _ = line.WriteHistory(f)
			f.Close()
		}
	}()

	s := &chatSession{
		ctrl:  ctrl,
		rt:    rt,
		args:  args,
		line:  line,
		web:   args.WebSearch || rt.Cfg.Chat.UseWebSearch,
		model: rt.ModelID(),
	}

	if !args.Quiet {
		fmt.Println(paint(welcomeStyle, "vela chat"))
		fmt.Println(paint(infoStyle, "Type /help for commands, Ctrl+D to exit."))
		fmt.Println()
	}

	return s.loop()
}

// loop reads and dispatches lines until exit.
func (s *chatSession) loop() error {
	for {
		input, err := s.line.Prompt(promptText())
		switch {
		case errors.Is(err, liner.ErrPromptAborted):
			continue
		case errors.Is(err, io.EOF):
			fmt.Println()
			return nil
		case err != nil:
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		s.line.AppendHistory(input)

		if strings.HasPrefix(input, "/") {
			quit, err := s.command(input)
			if err != nil {
				fmt.Println(paint(errorStyle, err.Error()))
			}
			if quit {
				return nil
			}
			continue
		}

		if err := s.send(input); err != nil {
			fmt.Println(paint(errorStyle, err.Error()))
		}
	}
}

// command dispatches a slash command. Returns true to exit the REPL.
func (s *chatSession) command(input string) (bool, error) {
	fields := strings.Fields(input)
	cmd := fields[0]
	rest := fields[1:]

	switch cmd {
	case "/quit", "/q", "/exit":
		return true, nil

	case "/help", "/h":
		s.printHelp()
		return false, nil

	case "/new":
		s.ctrl.Store().NewLocalConversation()
		fmt.Println(paint(infoStyle, "Started a new conversation."))
		return false, nil

	case "/list":
		return false, s.listConversations()

	case "/switch":
		if len(rest) == 0 {
			return false, NewUsageError("usage: /switch <id>")
		}
		return false, s.switchConversation(rest[0])

	case "/model":
		if len(rest) == 0 {
			if s.model == "" {
				fmt.Println(paint(infoStyle, "Model: backend default"))
			} else {
				fmt.Println(paint(infoStyle, "Model: "+s.model))
			}
			return false, nil
		}
		s.model = rest[0]
		fmt.Println(paint(infoStyle, "Switched to "+s.model))
		return false, nil

	case "/web":
		if len(rest) == 0 {
			return false, NewUsageError("usage: /web on|off")
		}
		s.web = rest[0] == "on"
		fmt.Println(paint(infoStyle, fmt.Sprintf("Web search: %v", s.web)))
		return false, nil

	default:
		return false, NewUsageError("unknown command %s (try /help)", cmd)
	}
}

// send runs one round, streaming the answer to the terminal.
func (s *chatSession) send(message string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		s.ctrl.Stop(context.Background())
		cancel()
	}()

	round, err := s.ctrl.Submit(ctx, controller.SubmitRequest{
		Message:      message,
		UseWebSearch: s.web,
		ModelID:      s.model,
	})
	if err != nil {
		return err
	}

	printer := newEventPrinter(s.args)
	streamErr := round.Decoder().Process(round.Context(), func(ev stream.Event) {
		round.Apply(ev)
		printer.print(ev)
	})
	round.Complete(streamErr)
	printer.finish()

	switch round.Turn().State {
	case model.TurnCancelled:
		fmt.Println(paint(warningStyle, "(stopped)"))
	case model.TurnFailed:
		fmt.Println(paint(errorStyle, "✗ "+turnErrorText(round.Turn())))
	}
	fmt.Println()
	return nil
}

// listConversations prints the server's conversation list.
func (s *chatSession) listConversations() error {
	list, err := s.rt.Client.ListConversations(context.Background())
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println(paint(infoStyle, "No conversations on the server."))
		return nil
	}
	for _, c := range list {
		title := c.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Printf("  %s  %s\n", c.ID, title)
	}
	return nil
}

// switchConversation selects a server conversation and loads its
// history so the next message continues it.
func (s *chatSession) switchConversation(serverID string) error {
	store := s.ctrl.Store()
	store.MergeServerList([]model.ConversationSummary{{ID: serverID}})

	var conv *model.Conversation
	for _, c := range store.List() {
		if c.Matches(serverID) {
			conv = c
			break
		}
	}
	if conv == nil {
		return fmt.Errorf("conversation %s not found", serverID)
	}
	if err := store.Select(conv.LocalID); err != nil {
		return err
	}
	if err := s.ctrl.Reconcile(context.Background(), conv.LocalID); err != nil {
		return err
	}
	fmt.Println(paint(infoStyle, "Continuing "+conv.DisplayTitle()))
	return nil
}

func (s *chatSession) printHelp() {
	fmt.Println(paint(infoStyle, `Commands:
  /new            Start a fresh conversation
  /list           List conversations on the server
  /switch <id>    Continue a server conversation
  /model [name]   Show or switch model
  /web on|off     Toggle web search
  /quit           Exit chat`))
}

func promptText() string {
	if ColorEnabled() {
		return promptStyle.Render("you") + " > "
	}
	return "you > "
}
