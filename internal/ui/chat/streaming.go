// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// This file implements render throttling for smooth, flicker-free
// updates during streaming. Events mutate the turn immediately; the
// viewport re-renders in batches at a capped frame rate instead of once
// per delta, which at LLM token rates would redraw hundreds of times a
// second.

package chat

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// RenderThrottle coalesces part mutations into batched re-renders.
// A render is due when either enough deltas accumulated or enough time
// passed since the last one.
//
// Thread-safety: Mark is called from the update loop only, but the
// reader goroutine may consult Pending for diagnostics, so a mutex
// guards the counters anyway.
type RenderThrottle struct {
	mu         sync.Mutex
	pending    int
	lastRender time.Time

	batchSize int
	minGap    time.Duration
}

const (
	defaultBatchSize = 15
	defaultMaxFPS    = 30
)

// NewRenderThrottle creates a throttle with the default batch size and
// frame cap.
func NewRenderThrottle() *RenderThrottle {
	return NewRenderThrottleWithConfig(defaultBatchSize, defaultMaxFPS)
}

// NewRenderThrottleWithConfig creates a throttle with custom settings.
// Out-of-range values fall back to the defaults.
func NewRenderThrottleWithConfig(batchSize, maxFPS int) *RenderThrottle {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if maxFPS <= 0 || maxFPS > 60 {
		maxFPS = defaultMaxFPS
	}
	return &RenderThrottle{
		batchSize:  batchSize,
		minGap:     time.Second / time.Duration(maxFPS),
		lastRender: time.Now(),
	}
}

// Mark records one applied delta.
func (rt *RenderThrottle) Mark() {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.pending++
}

// Due reports whether a re-render should happen now: pending deltas and
// either the batch threshold or the frame interval reached.
func (rt *RenderThrottle) Due() bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.dueLocked()
}

func (rt *RenderThrottle) dueLocked() bool {
	if rt.pending == 0 {
		return false
	}
	if rt.pending >= rt.batchSize {
		return true
	}
	return time.Since(rt.lastRender) >= rt.minGap
}

// Consume resets the counters if a render is due, reporting whether it
// was. The caller renders exactly when this returns true.
func (rt *RenderThrottle) Consume() bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if !rt.dueLocked() {
		return false
	}
	rt.pending = 0
	rt.lastRender = time.Now()
	return true
}

// Drain resets the counters unconditionally and reports whether any
// deltas were pending. Called at stream end so the final state always
// renders.
func (rt *RenderThrottle) Drain() bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	had := rt.pending > 0
	rt.pending = 0
	rt.lastRender = time.Now()
	return had
}

// Pending returns the number of deltas since the last render.
func (rt *RenderThrottle) Pending() int {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.pending
}

// renderTickCmd schedules the next throttled render check.
func renderTickCmd() tea.Cmd {
	return tea.Tick(time.Second/defaultMaxFPS, func(t time.Time) tea.Msg {
		return RenderTickMsg{Time: t}
	})
}
