// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// login.go - Authentication command handlers for the vela CLI.
//
// Command: login [username]
// Command: logout
// Command: register [username]
//
// Examples:
//   vela login alice          Prompt for alice's password
//   vela login                Prompt for username and password
//   vela logout               Discard the stored token
//   vela register bob         Create an account, then log in

package cli

import (
	"context"
	"fmt"

	"github.com/velachat/vela-tui/internal/api"
)

// HandleLogin exchanges credentials for an access token and stores it.
func HandleLogin(args Args) error {
	rt, err := NewRuntime(args)
	if err != nil {
		return err
	}
	defer rt.Close()

	username, password, err := credentials(args)
	if err != nil {
		return err
	}

	result, err := rt.Client.Login(context.Background(), api.LoginRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		if api.IsAuth(err) {
			return &CommandError{Code: ExitAuthError, Message: "invalid username or password"}
		}
		return err
	}

	if err := rt.Tokens.SetToken(result.AccessToken); err != nil {
		return fmt.Errorf("storing token: %w", err)
	}
	if !args.Quiet {
		fmt.Println(paint(successStyle, "Logged in as "+username))
	}
	return nil
}

// HandleLogout discards the stored token.
func HandleLogout(args Args) error {
	rt, err := NewRuntime(args)
	if err != nil {
		return err
	}
	defer rt.Close()

	if !rt.Tokens.LoggedIn() {
		if !args.Quiet {
			fmt.Println("Not logged in.")
		}
		return nil
	}
	if err := rt.Tokens.Clear(); err != nil {
		return err
	}
	if !args.Quiet {
		fmt.Println("Logged out.")
	}
	return nil
}

// HandleRegister creates an account and logs straight in.
func HandleRegister(args Args) error {
	rt, err := NewRuntime(args)
	if err != nil {
		return err
	}
	defer rt.Close()

	username, password, err := credentials(args)
	if err != nil {
		return err
	}
	email, err := promptLine("Email: ")
	if err != nil {
		return err
	}
	if email == "" {
		return NewUsageError("email is required")
	}
	confirm, err := promptPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return NewUsageError("passwords do not match")
	}

	if err := rt.Client.Register(context.Background(), api.RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
	}); err != nil {
		return err
	}

	result, err := rt.Client.Login(context.Background(), api.LoginRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return err
	}
	if err := rt.Tokens.SetToken(result.AccessToken); err != nil {
		return fmt.Errorf("storing token: %w", err)
	}
	if !args.Quiet {
		fmt.Println(paint(successStyle, "Account created, logged in as "+username))
	}
	return nil
}

// credentials resolves the username from args or a prompt, then reads
// the password without echo.
func credentials(args Args) (string, string, error) {
	username := args.Username
	if username == "" {
		var err error
		username, err = promptLine("Username: ")
		if err != nil {
			return "", "", err
		}
	}
	if username == "" {
		return "", "", NewUsageError("username is required")
	}

	password, err := promptPassword("Password: ")
	if err != nil {
		return "", "", err
	}
	if password == "" {
		return "", "", NewUsageError("password is required")
	}
	return username, password, nil
}
