// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package controller glues transport, decoding, assembly, and the
// conversation store into one user→assistant round.
//
// Submit builds the history window, records the user turn, starts the
// assistant turn, and opens the stream; the returned Round is then
// driven either synchronously (Drive) or event by event from a message
// loop (Decoder plus Apply). Completion settles the turn and, for
// server-backed conversations, schedules a reconcile against the
// backend's canonical record after a short grace delay.
//
// Stop is idempotent: it cancels the in-flight stream locally and fires
// a rate-limited, best-effort stop notification whose result is
// ignored.
package controller
