// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package telemetry

import (
	"math"
	"testing"
	"time"
)

// fakeClock hands out times advanced manually by the test.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// =============================================================================
// TRACKER TESTS
// =============================================================================

func TestTracker_FullStream(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	tr := newTracker(clock.now)

	// Request in flight for 1.5s before the first text frame.
	clock.advance(1500 * time.Millisecond)
	tr.AddText("Hello")
	clock.advance(2 * time.Second)
	tr.AddText(" world")

	snap, ok := tr.Finish()
	if !ok {
		t.Fatal("Finish should report telemetry when text arrived")
	}
	if !almostEqual(snap.ResponseTime, 1.5) {
		t.Errorf("ResponseTime = %v, want 1.5", snap.ResponseTime)
	}
	if !almostEqual(snap.GenerationTime, 2.0) {
		t.Errorf("GenerationTime = %v, want 2.0", snap.GenerationTime)
	}
	if snap.Characters != 11 {
		t.Errorf("Characters = %d, want 11", snap.Characters)
	}
	if !almostEqual(snap.Speed, 5.5) {
		t.Errorf("Speed = %v, want 5.5", snap.Speed)
	}
}

func TestTracker_CountsRunesNotBytes(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	tr := newTracker(clock.now)

	tr.AddText("日本語")
	clock.advance(time.Second)

	snap, ok := tr.Finish()
	if !ok {
		t.Fatal("expected telemetry")
	}
	if snap.Characters != 3 {
		t.Errorf("Characters = %d, want 3 (runes, not bytes)", snap.Characters)
	}
}

func TestTracker_NoTextNoTelemetry(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	tr := newTracker(clock.now)
	clock.advance(3 * time.Second)

	if tr.HasText() {
		t.Error("HasText should be false before any frame")
	}
	if _, ok := tr.Snapshot(); ok {
		t.Error("Snapshot should report no telemetry before any frame")
	}
	if _, ok := tr.Finish(); ok {
		t.Error("an answer with no text gets no telemetry")
	}
}

func TestTracker_ZeroGenerationWindow(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	tr := newTracker(clock.now)

	tr.AddText("instant")
	// Finish with no time elapsed since the first frame.
	snap, ok := tr.Finish()
	if !ok {
		t.Fatal("expected telemetry")
	}
	if snap.Speed != 0 {
		t.Errorf("Speed = %v, want 0 when the window is empty", snap.Speed)
	}
}

func TestTracker_FrozenAfterFinish(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	tr := newTracker(clock.now)

	clock.advance(time.Second)
	tr.AddText("partial answer")
	clock.advance(time.Second)

	first, _ := tr.Finish()

	// Later activity must not move the numbers.
	clock.advance(time.Minute)
	tr.AddText("late frame")
	second, ok := tr.Snapshot()
	if !ok {
		t.Fatal("frozen snapshot should still be available")
	}
	if second != first {
		t.Errorf("snapshot changed after Finish: %+v -> %+v", first, second)
	}
}

func TestTracker_LiveSnapshot(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	tr := newTracker(clock.now)

	clock.advance(500 * time.Millisecond)
	tr.AddText("ab")
	clock.advance(time.Second)

	snap, ok := tr.Snapshot()
	if !ok {
		t.Fatal("expected live telemetry")
	}
	if !almostEqual(snap.ResponseTime, 0.5) {
		t.Errorf("ResponseTime = %v, want 0.5", snap.ResponseTime)
	}
	if !almostEqual(snap.GenerationTime, 1.0) {
		t.Errorf("GenerationTime = %v, want 1.0", snap.GenerationTime)
	}
	if !almostEqual(snap.Speed, 2.0) {
		t.Errorf("Speed = %v, want 2.0", snap.Speed)
	}
}

func TestTracker_EmptyFrameIgnored(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	tr := newTracker(clock.now)

	tr.AddText("")
	if tr.HasText() {
		t.Error("an empty frame must not pin the first-token time")
	}
}
