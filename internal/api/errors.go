// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"fmt"
)

// ErrType categorizes client errors so callers can branch on the failure
// class without string matching.
type ErrType int

const (
	// ErrTypeNetwork is a transport failure before response headers.
	ErrTypeNetwork ErrType = iota

	// ErrTypeHTTP is a non-2xx response.
	ErrTypeHTTP

	// ErrTypeAuth is a 401 response. Surfaced unchanged; the client never
	// clears credentials itself.
	ErrTypeAuth

	// ErrTypeDecode is a response body that could not be decoded.
	ErrTypeDecode

	// ErrTypeCancelled is a caller-initiated cancellation, kept distinct
	// from transport failure.
	ErrTypeCancelled
)

// String returns a human-readable name for the error type.
func (t ErrType) String() string {
	switch t {
	case ErrTypeNetwork:
		return "network"
	case ErrTypeHTTP:
		return "http"
	case ErrTypeAuth:
		return "auth"
	case ErrTypeDecode:
		return "decode"
	case ErrTypeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Error variables for common client failures.
var (
	// ErrNoToken indicates an endpoint that requires authentication was
	// called with no bearer token available.
	ErrNoToken = errors.New("not logged in")

	// ErrEmptyBaseURL indicates the client was constructed without a
	// server URL.
	ErrEmptyBaseURL = errors.New("server URL not configured")
)

// Error is the typed error returned by all client operations.
type Error struct {
	Type    ErrType
	Status  int // HTTP status, when Type is ErrTypeHTTP or ErrTypeAuth
	Message string
	Err     error // wrapped cause, may be nil
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Status != 0 && e.Message != "":
		return fmt.Sprintf("api %s error (HTTP %d): %s", e.Type, e.Status, e.Message)
	case e.Status != 0:
		return fmt.Sprintf("api %s error (HTTP %d)", e.Type, e.Status)
	case e.Message != "":
		return fmt.Sprintf("api %s error: %s", e.Type, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("api %s error: %v", e.Type, e.Err)
	default:
		return fmt.Sprintf("api %s error", e.Type)
	}
}

// Unwrap returns the wrapped cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// newNetworkError wraps a transport failure, classifying context
// cancellation separately so callers can tell a user stop from a dead
// connection.
func newNetworkError(err error) *Error {
	if errors.Is(err, context.Canceled) {
		return &Error{Type: ErrTypeCancelled, Err: err}
	}
	return &Error{Type: ErrTypeNetwork, Err: err}
}

// newHTTPError classifies a non-2xx status, splitting out 401.
func newHTTPError(status int, message string) *Error {
	t := ErrTypeHTTP
	if status == 401 {
		t = ErrTypeAuth
	}
	return &Error{Type: t, Status: status, Message: message}
}

// IsAuth reports whether err is a 401 from the backend.
func IsAuth(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Type == ErrTypeAuth
}

// IsCancelled reports whether err is a caller-initiated cancellation.
func IsCancelled(err error) bool {
	if errors.Is(err, context.Canceled) {
		return true
	}
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Type == ErrTypeCancelled
}

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Type == ErrTypeNetwork
}
