// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth holds the process-wide bearer-token state for vela-tui.
//
// The token is opaque: the client never inspects or refreshes it, it only
// attaches it to requests. Login and logout are the sole writers; the
// transport client is the reader. The token is the single piece of durable
// client state, stored under one well-known file in the vela home directory.
package auth
