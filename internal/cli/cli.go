// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command routing for vela.

package cli

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdLogin
	CmdLogout
	CmdRegister
	CmdAsk
	CmdChat
	CmdStatus
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Server    string // override server.url
	Model     string // override chat.model
	Quiet     bool
	Verbose   bool
	JSON      bool // machine-readable output where supported
	WebSearch bool // enable web search for this invocation

	// Command-specific
	Query      string
	Username   string
	ConfigKey  string
	ConfigVal  string
	Subcommand string

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `vela - terminal client for the Vela chat backend

Vela streams assistant responses into your terminal, either as a
full-screen TUI or as one-shot commands for scripting.

Usage:
  vela                       Start TUI (default)
  vela login [username]      Log in and store the access token
  vela logout                Discard the stored token
  vela register [username]   Create an account
  vela ask "question"        Ask a single question, stream to stdout
  vela chat                  Interactive chat (line-based REPL)
  vela status, s             Show server and session status
  vela config [show|set|path] Configuration
  vela version               Show version information

Ask and chat options:
  -m, --model NAME    Use a specific model for this invocation
  -w, --web           Enable web search
  --json              Print the final answer as JSON (ask only)

Config commands:
  vela config show                Show current configuration
  vela config path                Print the config file location
  vela config set <key> <value>   Set a value and save
    Keys: server.url, chat.model, chat.use_web_search,
          ui.theme, ui.show_thinking, ui.show_stats, log.level

Global flags:
  --server URL    Override the backend URL for this invocation
  -q, --quiet     Minimal output
  --verbose       Debug output

Environment:
  VELA_HOME       State directory (default ~/.vela)
  VELA_SERVER     Backend URL (same as --server)
  VELA_MODEL      Default model
  VELA_LOG_LEVEL  Log level (debug, info, warn, error)

Examples:
  vela login alice
  vela ask "What is NDJSON?"
  vela ask -w "Latest Go release?"       Web search enabled
  vela ask --json "Summarize x" | jq -r .content
  vela chat --model qwen3:14b
  vela config set server.url https://vela.example.com

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("vela version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
	fmt.Printf("  Go version: %s\n", runtime.Version())
}

// Parse parses command-line arguments and returns the command and args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses the given argument list. Split out from Parse for
// testing.
func ParseArgs(args []string) (Command, Args) {
	remaining, parsed := parseGlobalFlags(args)

	if len(remaining) == 0 {
		return CmdTUI, parsed
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsed.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, parsed

	case "login":
		if len(remaining) > 0 {
			parsed.Username = remaining[0]
		}
		return CmdLogin, parsed

	case "logout":
		return CmdLogout, parsed

	case "register", "signup":
		if len(remaining) > 0 {
			parsed.Username = remaining[0]
		}
		return CmdRegister, parsed

	case "ask":
		parseAskArgs(&parsed, remaining)
		return CmdAsk, parsed

	case "chat":
		parseChatArgs(&parsed, remaining)
		return CmdChat, parsed

	case "status", "s":
		return CmdStatus, parsed

	case "config":
		parseConfigArgs(&parsed, remaining)
		return CmdConfig, parsed

	case "version", "-v", "--version":
		return CmdVersion, parsed

	case "help", "-h", "--help":
		return CmdHelp, parsed

	default:
		// Unknown word: treat the whole line as a question.
		parsed.Raw = append([]string{cmd}, remaining...)
		parsed.Query = strings.Join(parsed.Raw, " ")
		return CmdAsk, parsed
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsed Args

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-q", "--quiet":
			parsed.Quiet = true
		case "--verbose":
			parsed.Verbose = true
		case "--json":
			parsed.JSON = true
		case "--server":
			if i+1 < len(args) {
				i++
				parsed.Server = args[i]
			}
		case "--model":
			if i+1 < len(args) {
				i++
				parsed.Model = args[i]
			}
		default:
			switch {
			case strings.HasPrefix(arg, "--server="):
				parsed.Server = strings.TrimPrefix(arg, "--server=")
			case strings.HasPrefix(arg, "--model="):
				parsed.Model = strings.TrimPrefix(arg, "--model=")
			default:
				remaining = append(remaining, arg)
			}
		}
	}

	return remaining, parsed
}

// parseAskArgs parses ask command specific arguments.
func parseAskArgs(args *Args, remaining []string) {
	var query []string

	for i := 0; i < len(remaining); i++ {
		arg := remaining[i]

		switch arg {
		case "-m", "--model":
			if i+1 < len(remaining) {
				i++
				args.Model = remaining[i]
			}
		case "-w", "--web":
			args.WebSearch = true
		case "--json":
			args.JSON = true
		default:
			switch {
			case strings.HasPrefix(arg, "--model="):
				args.Model = strings.TrimPrefix(arg, "--model=")
			case !strings.HasPrefix(arg, "-"):
				query = append(query, arg)
			}
		}
	}

	args.Query = strings.Join(query, " ")
}

// parseChatArgs parses chat command specific arguments.
func parseChatArgs(args *Args, remaining []string) {
	for i := 0; i < len(remaining); i++ {
		arg := remaining[i]

		switch arg {
		case "-m", "--model":
			if i+1 < len(remaining) {
				i++
				args.Model = remaining[i]
			}
		case "-w", "--web":
			args.WebSearch = true
		default:
			if strings.HasPrefix(arg, "--model=") {
				args.Model = strings.TrimPrefix(arg, "--model=")
			}
		}
	}
}

// parseConfigArgs parses config command specific arguments.
func parseConfigArgs(args *Args, remaining []string) {
	if len(remaining) > 0 {
		args.Subcommand = remaining[0]
		if len(remaining) > 1 {
			args.ConfigKey = remaining[1]
		}
		if len(remaining) > 2 {
			args.ConfigVal = remaining[2]
		}
	}
}

// HandleVersion handles the "version" command.
func HandleVersion() {
	PrintVersion()
}

// HandleHelp handles the "help" command.
func HandleHelp() {
	PrintUsage()
}
