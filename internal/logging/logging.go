// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging provides the file-backed structured logger for vela-tui.
//
// The terminal belongs to the TUI, so log output goes to a file under the
// vela home directory instead of stderr. Protocol-level recoveries (skipped
// NDJSON lines, unknown event types, orphan tool results) are logged at Warn
// so a malformed stream can be diagnosed after the fact.
package logging

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultFileName is the log file created under the vela home directory.
const DefaultFileName = "vela.log"

// New creates a logger writing JSON lines to the given file path.
// The parent directory is created if missing. Level accepts "debug",
// "info", "warn", "error"; anything else falls back to info.
func New(path string, level string) (*zap.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

// Nop returns a no-op logger. Library packages default to this so they
// never require a wired logger to function.
func Nop() *zap.Logger {
	return zap.NewNop()
}

// parseLevel maps a config string to a zap level, defaulting to info.
func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
