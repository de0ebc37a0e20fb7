// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// setup.go - Shared runtime wiring for CLI command handlers.
//
// Every command needs the same pieces: configuration with flag
// overrides applied, the token store, an API client, and a logger.
// Runtime builds them once so handlers stay small.

package cli

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/velachat/vela-tui/internal/api"
	"github.com/velachat/vela-tui/internal/auth"
	"github.com/velachat/vela-tui/internal/config"
	"github.com/velachat/vela-tui/internal/logging"
)

// Runtime bundles the shared dependencies of CLI handlers.
type Runtime struct {
	Cfg    *config.Config
	Home   string
	Tokens *auth.State
	Client *api.Client
	Log    *zap.Logger
}

// NewRuntime loads configuration, applies flag overrides, and wires the
// token store and API client.
func NewRuntime(args Args) (*Runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, NewConfigError(err)
	}
	if args.Server != "" {
		cfg.Server.URL = args.Server
	}
	if args.Model != "" {
		cfg.Chat.Model = args.Model
	}

	home, err := config.HomeDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(home, 0700); err != nil {
		return nil, err
	}

	tokens, err := auth.NewState(home)
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if args.Verbose {
		level = "debug"
	}
	log, err := logging.New(filepath.Join(home, logging.DefaultFileName), level)
	if err != nil {
		log = logging.Nop()
	}

	client := api.New(cfg.Server.URL,
		api.WithTokenSource(tokens),
		api.WithLogger(log),
		api.WithTimeout(cfg.Server.Timeout),
	)

	return &Runtime{
		Cfg:    cfg,
		Home:   home,
		Tokens: tokens,
		Client: client,
		Log:    log,
	}, nil
}

// Close flushes the runtime's logger.
func (r *Runtime) Close() {
	_ = r.Log.Sync()
}

// ModelID returns the model to send with chat requests, empty when the
// backend should pick.
func (r *Runtime) ModelID() string {
	return r.Cfg.Chat.Model
}
