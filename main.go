// vela - a terminal client for the Vela chat backend.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/velachat/vela-tui/internal/api"
	"github.com/velachat/vela-tui/internal/auth"
	"github.com/velachat/vela-tui/internal/cli"
	"github.com/velachat/vela-tui/internal/config"
	"github.com/velachat/vela-tui/internal/controller"
	"github.com/velachat/vela-tui/internal/logging"
	"github.com/velachat/vela-tui/internal/model"
	"github.com/velachat/vela-tui/internal/ui/chat"
	"github.com/velachat/vela-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	// Optional .env for local development; absence is not an error.
	_ = godotenv.Load()

	cmd, args := cli.Parse()

	var err error
	switch cmd {
	case cli.CmdTUI:
		err = runTUI(args)
	case cli.CmdLogin:
		err = cli.HandleLogin(args)
	case cli.CmdLogout:
		err = cli.HandleLogout(args)
	case cli.CmdRegister:
		err = cli.HandleRegister(args)
	case cli.CmdAsk:
		err = cli.HandleAsk(args)
	case cli.CmdChat:
		err = cli.HandleChat(args)
	case cli.CmdStatus:
		err = cli.HandleStatus(args)
	case cli.CmdConfig:
		err = cli.HandleConfig(args)
	case cli.CmdVersion:
		cli.HandleVersion()
	case cli.CmdHelp:
		cli.HandleHelp()
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}

// runTUI wires the full-screen interface and runs it until exit.
func runTUI(args cli.Args) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if args.Server != "" {
		cfg.Server.URL = args.Server
	}
	if args.Model != "" {
		cfg.Chat.Model = args.Model
	}

	home, err := config.HomeDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(home, 0700); err != nil {
		return err
	}

	tokens, err := auth.NewState(home)
	if err != nil {
		return err
	}

	level := cfg.Log.Level
	if args.Verbose {
		level = "debug"
	}
	log, err := logging.New(filepath.Join(home, logging.DefaultFileName), level)
	if err != nil {
		log = logging.Nop()
	}
	defer func() { _ = log.Sync() }()

	client := api.New(cfg.Server.URL,
		api.WithTokenSource(tokens),
		api.WithLogger(log),
		api.WithTimeout(cfg.Server.Timeout),
	)

	store := model.NewStore()
	store.NewLocalConversation()
	ctrl := controller.New(client, store,
		controller.WithLogger(log),
		controller.WithModelID(cfg.Chat.Model),
		controller.WithReconcileDelay(cfg.Chat.ReconcileDelay),
	)

	ui := chat.New(chat.Options{
		Theme:        themeFor(cfg.UI.Theme),
		Controller:   ctrl,
		Client:       client,
		Tokens:       tokens,
		Logger:       log,
		ModelID:      cfg.Chat.Model,
		UseWebSearch: cfg.Chat.UseWebSearch,
		ShowThinking: cfg.UI.ShowThinking,
		ShowStats:    cfg.UI.ShowStats,
	})

	program := tea.NewProgram(ui, tea.WithAltScreen())

	stopWatch, werr := config.Watch(mustConfigPath(), func(updated *config.Config) {
		log.Info("configuration reloaded",
			zap.String("server_url", updated.Server.URL),
			zap.String("log_level", updated.Log.Level))
	})
	if werr == nil {
		defer stopWatch()
	}

	_, err = program.Run()
	return err
}

// themeFor maps the configured theme name to a concrete theme.
func themeFor(name string) *styles.Theme {
	switch strings.ToLower(name) {
	case "dark":
		return styles.NewThemeForBackground(true)
	case "light":
		return styles.NewThemeForBackground(false)
	default:
		return styles.NewTheme()
	}
}

func mustConfigPath() string {
	path, err := config.Path()
	if err != nil {
		return ""
	}
	return path
}
