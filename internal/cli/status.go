// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - System status command handler for the vela CLI.
//
// Command: status (alias: s)
//
// Shows the backend URL, reachability, login state, and the configured
// model. With --json the same facts come out as one JSON object for
// scripting.

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/velachat/vela-tui/internal/api"
)

// statusReport is the --json output shape.
type statusReport struct {
	Server    string `json:"server"`
	Reachable bool   `json:"reachable"`
	LatencyMS int64  `json:"latency_ms,omitempty"`
	LoggedIn  bool   `json:"logged_in"`
	Username  string `json:"username,omitempty"`
	Model     string `json:"model,omitempty"`
	Version   string `json:"version"`
}

// HandleStatus handles the "status" command.
func HandleStatus(args Args) error {
	rt, err := NewRuntime(args)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	report := statusReport{
		Server:   rt.Cfg.Server.URL,
		Model:    rt.Cfg.Chat.Model,
		LoggedIn: rt.Tokens.LoggedIn(),
		Version:  Version,
	}

	start := time.Now()
	if err := rt.Client.Health(ctx); err == nil {
		report.Reachable = true
		report.LatencyMS = time.Since(start).Milliseconds()
	}

	if report.Reachable && report.LoggedIn {
		if user, err := rt.Client.Me(ctx); err == nil {
			report.Username = user.Username
		} else if api.IsAuth(err) {
			// Stored token exists but the server rejects it.
			report.LoggedIn = false
		}
	}

	if args.JSON {
		return json.NewEncoder(os.Stdout).Encode(report)
	}

	fmt.Printf("Server:  %s\n", report.Server)
	if report.Reachable {
		fmt.Printf("Health:  %s (%dms)\n", paint(successStyle, "ok"), report.LatencyMS)
	} else {
		fmt.Printf("Health:  %s\n", paint(errorStyle, "unreachable"))
	}
	switch {
	case report.Username != "":
		fmt.Printf("Login:   %s\n", report.Username)
	case report.LoggedIn:
		fmt.Printf("Login:   token stored\n")
	default:
		fmt.Printf("Login:   %s\n", paint(warningStyle, "not logged in"))
	}
	if report.Model != "" {
		fmt.Printf("Model:   %s\n", report.Model)
	} else {
		fmt.Printf("Model:   backend default\n")
	}
	fmt.Printf("Version: %s\n", report.Version)
	return nil
}
