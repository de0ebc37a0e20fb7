// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Unified error handling for all CLI commands in vela.
//
// STANDARDIZED PATTERN:
//   - ALWAYS return errors (never just print and return nil)
//   - Let the caller decide how to display errors
//   - Map error categories to stable exit codes for scripting

package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/velachat/vela-tui/internal/api"
)

// Exit codes for scripted use.
const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitAuthError indicates authentication failure or a missing token
	ExitAuthError = 4
	// ExitNetworkError indicates the backend could not be reached
	ExitNetworkError = 5
	// ExitCancelled indicates the user interrupted the operation
	ExitCancelled = 130
)

// CommandError carries an exit code alongside the message.
type CommandError struct {
	Code    int
	Message string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewUsageError creates an error for invalid command usage.
func NewUsageError(format string, a ...interface{}) error {
	return &CommandError{Code: ExitUsageError, Message: fmt.Sprintf(format, a...)}
}

// NewConfigError wraps a configuration failure.
func NewConfigError(err error) error {
	return &CommandError{Code: ExitConfigError, Message: "configuration error", Err: err}
}

// GetExitCode maps an error to its exit code.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Code
	}

	switch {
	case errors.Is(err, api.ErrNoToken), api.IsAuth(err):
		return ExitAuthError
	case api.IsCancelled(err), errors.Is(err, context.Canceled):
		return ExitCancelled
	case api.IsNetwork(err):
		return ExitNetworkError
	default:
		return ExitGeneralError
	}
}
