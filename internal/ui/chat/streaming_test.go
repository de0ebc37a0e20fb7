// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"testing"
	"time"
)

func TestThrottleNotDueWithoutDeltas(t *testing.T) {
	rt := NewRenderThrottleWithConfig(5, 30)
	if rt.Due() {
		t.Error("Due() = true with no pending deltas")
	}
	if rt.Consume() {
		t.Error("Consume() = true with no pending deltas")
	}
}

func TestThrottleBatchThreshold(t *testing.T) {
	rt := NewRenderThrottleWithConfig(3, 1)

	rt.Mark()
	rt.Mark()
	if rt.Due() {
		t.Error("Due() = true below batch threshold with a long frame gap")
	}

	rt.Mark()
	if !rt.Due() {
		t.Error("Due() = false at batch threshold")
	}
	if !rt.Consume() {
		t.Error("Consume() = false at batch threshold")
	}
	if rt.Pending() != 0 {
		t.Errorf("Pending() = %d after Consume, want 0", rt.Pending())
	}
}

func TestThrottleFrameInterval(t *testing.T) {
	rt := NewRenderThrottleWithConfig(100, 60)

	rt.Mark()
	// One delta, batch nowhere near full: render only after the frame
	// interval elapses.
	time.Sleep(2 * time.Second / 60)
	if !rt.Due() {
		t.Error("Due() = false after frame interval elapsed")
	}
	if !rt.Consume() {
		t.Error("Consume() = false after frame interval elapsed")
	}
}

func TestThrottleConsumeResetsClock(t *testing.T) {
	rt := NewRenderThrottleWithConfig(100, 1)

	rt.Mark()
	rt.mu.Lock()
	rt.lastRender = time.Now().Add(-2 * time.Second)
	rt.mu.Unlock()
	if !rt.Consume() {
		t.Fatal("Consume() = false with a stale frame clock")
	}

	rt.Mark()
	if rt.Due() {
		t.Error("Due() = true immediately after Consume reset the clock")
	}
}

func TestThrottleDrain(t *testing.T) {
	rt := NewRenderThrottleWithConfig(100, 1)

	if rt.Drain() {
		t.Error("Drain() = true with no pending deltas")
	}

	rt.Mark()
	rt.Mark()
	if !rt.Drain() {
		t.Error("Drain() = false with pending deltas")
	}
	if rt.Pending() != 0 {
		t.Errorf("Pending() = %d after Drain, want 0", rt.Pending())
	}
}

func TestThrottleConfigFallbacks(t *testing.T) {
	rt := NewRenderThrottleWithConfig(0, 0)
	if rt.batchSize != defaultBatchSize {
		t.Errorf("batchSize = %d, want %d", rt.batchSize, defaultBatchSize)
	}
	if rt.minGap != time.Second/defaultMaxFPS {
		t.Errorf("minGap = %v, want %v", rt.minGap, time.Second/defaultMaxFPS)
	}

	rt = NewRenderThrottleWithConfig(1, 1000)
	if rt.minGap != time.Second/defaultMaxFPS {
		t.Errorf("minGap = %v for out-of-range fps, want default", rt.minGap)
	}
}
