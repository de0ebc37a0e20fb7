// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth holds the process-wide bearer-token state.
package auth

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/velachat/vela-tui/internal/util"
)

// TokenFileName is the single well-known key under which the bearer token
// is durably stored. The token is the only client state that persists.
const TokenFileName = "token"

// ErrNoToken indicates no credential is stored.
var ErrNoToken = errors.New("not logged in")

// State is the process-wide authentication state. It is written once per
// login (or logout) and read by the transport client on every request.
// Safe for concurrent use.
type State struct {
	mu    sync.RWMutex
	token string
	path  string
}

// NewState creates authentication state backed by the token file inside dir.
// Any previously stored token is loaded; a missing file is not an error.
func NewState(dir string) (*State, error) {
	s := &State{path: filepath.Join(dir, TokenFileName)}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}
	s.token = strings.TrimSpace(string(data))
	return s, nil
}

// Token returns the current bearer token, or "" when not logged in.
func (s *State) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// LoggedIn reports whether a token is present.
func (s *State) LoggedIn() bool {
	return s.Token() != ""
}

// SetToken stores a new token in memory and persists it.
// The file is written atomically with owner-only permissions.
func (s *State) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	return util.AtomicWriteFile(s.path, []byte(token+"\n"), 0600)
}

// Clear removes the token from memory and deletes the stored file.
// Clearing an absent token is not an error.
func (s *State) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
