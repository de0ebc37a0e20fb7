// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/velachat/vela-tui/internal/api"
	"github.com/velachat/vela-tui/internal/config"
)

func TestParseDefaultsToTUI(t *testing.T) {
	cmd, _ := ParseArgs(nil)
	if cmd != CmdTUI {
		t.Errorf("ParseArgs(nil) = %v, want CmdTUI", cmd)
	}
}

func TestParseCommands(t *testing.T) {
	tests := []struct {
		args []string
		want Command
	}{
		{[]string{"login"}, CmdLogin},
		{[]string{"logout"}, CmdLogout},
		{[]string{"register"}, CmdRegister},
		{[]string{"signup"}, CmdRegister},
		{[]string{"ask", "hello"}, CmdAsk},
		{[]string{"chat"}, CmdChat},
		{[]string{"status"}, CmdStatus},
		{[]string{"s"}, CmdStatus},
		{[]string{"config", "show"}, CmdConfig},
		{[]string{"version"}, CmdVersion},
		{[]string{"-v"}, CmdVersion},
		{[]string{"--version"}, CmdVersion},
		{[]string{"help"}, CmdHelp},
		{[]string{"tui"}, CmdTUI},
	}
	for _, tt := range tests {
		cmd, _ := ParseArgs(tt.args)
		if cmd != tt.want {
			t.Errorf("ParseArgs(%v) = %v, want %v", tt.args, cmd, tt.want)
		}
	}
}

func TestParseUnknownWordBecomesAsk(t *testing.T) {
	cmd, args := ParseArgs([]string{"what", "is", "ndjson"})
	if cmd != CmdAsk {
		t.Fatalf("cmd = %v, want CmdAsk", cmd)
	}
	if args.Query != "what is ndjson" {
		t.Errorf("Query = %q, want %q", args.Query, "what is ndjson")
	}
}

func TestParseGlobalFlags(t *testing.T) {
	cmd, args := ParseArgs([]string{"--server", "http://x:9", "--model=m1", "-q", "status"})
	if cmd != CmdStatus {
		t.Fatalf("cmd = %v, want CmdStatus", cmd)
	}
	if args.Server != "http://x:9" {
		t.Errorf("Server = %q", args.Server)
	}
	if args.Model != "m1" {
		t.Errorf("Model = %q", args.Model)
	}
	if !args.Quiet {
		t.Error("Quiet not set")
	}
}

func TestVerboseFlagSpelling(t *testing.T) {
	// -v is the version shortcut, not verbose; only the long form
	// enables debug output, and the help text must say so.
	_, args := ParseArgs([]string{"--verbose", "status"})
	if !args.Verbose {
		t.Error("--verbose did not set Verbose")
	}
	cmd, args := ParseArgs([]string{"-v"})
	if cmd != CmdVersion || args.Verbose {
		t.Errorf("-v parsed as cmd=%v verbose=%v, want version shortcut", cmd, args.Verbose)
	}
	if strings.Contains(usageText, "-v, --verbose") {
		t.Error("usage advertises -v for verbose, but -v means version")
	}
}

func TestParseAskFlags(t *testing.T) {
	cmd, args := ParseArgs([]string{"ask", "-w", "--model", "m2", "--json", "tell", "me"})
	if cmd != CmdAsk {
		t.Fatalf("cmd = %v, want CmdAsk", cmd)
	}
	if args.Query != "tell me" {
		t.Errorf("Query = %q", args.Query)
	}
	if !args.WebSearch || !args.JSON {
		t.Errorf("WebSearch = %v, JSON = %v, want both true", args.WebSearch, args.JSON)
	}
	if args.Model != "m2" {
		t.Errorf("Model = %q", args.Model)
	}
}

func TestParseLoginUsername(t *testing.T) {
	_, args := ParseArgs([]string{"login", "alice"})
	if args.Username != "alice" {
		t.Errorf("Username = %q, want alice", args.Username)
	}
}

func TestParseConfigSet(t *testing.T) {
	cmd, args := ParseArgs([]string{"config", "set", "chat.model", "qwen3:14b"})
	if cmd != CmdConfig {
		t.Fatalf("cmd = %v, want CmdConfig", cmd)
	}
	if args.Subcommand != "set" || args.ConfigKey != "chat.model" || args.ConfigVal != "qwen3:14b" {
		t.Errorf("parsed %q %q %q", args.Subcommand, args.ConfigKey, args.ConfigVal)
	}
}

func TestApplyConfigKey(t *testing.T) {
	cfg := config.Default()

	if err := applyConfigKey(cfg, "server.url", "https://example.com"); err != nil {
		t.Fatal(err)
	}
	if cfg.Server.URL != "https://example.com" {
		t.Errorf("Server.URL = %q", cfg.Server.URL)
	}

	if err := applyConfigKey(cfg, "chat.use_web_search", "true"); err != nil {
		t.Fatal(err)
	}
	if !cfg.Chat.UseWebSearch {
		t.Error("UseWebSearch not set")
	}

	if err := applyConfigKey(cfg, "chat.use_web_search", "maybe"); err == nil {
		t.Error("expected error for non-boolean value")
	}
	if err := applyConfigKey(cfg, "no.such.key", "x"); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, ExitSuccess},
		{errors.New("boom"), ExitGeneralError},
		{NewUsageError("bad"), ExitUsageError},
		{&CommandError{Code: ExitAuthError, Message: "no"}, ExitAuthError},
		{api.ErrNoToken, ExitAuthError},
		{context.Canceled, ExitCancelled},
	}
	for _, tt := range tests {
		if got := GetExitCode(tt.err); got != tt.want {
			t.Errorf("GetExitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
