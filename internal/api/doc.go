// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the HTTP client for the Vela backend.
//
// All requests carry the bearer token when one is available; the
// Authorization header is omitted otherwise, and a 401 is surfaced to the
// caller unchanged. Successful JSON responses follow the envelope
// {code, message, data} with code 200 meaning success; endpoints that
// predate the envelope return bare payloads, which the client also
// accepts.
//
// SendChat is the one streaming call: it returns the raw response body
// for the stream decoder, with lifetime controlled by the caller's
// context. Everything else is conventional request/response.
package api
