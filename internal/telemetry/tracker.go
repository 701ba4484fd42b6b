// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package telemetry

import (
	"time"
	"unicode/utf8"
)

// =============================================================================
// SNAPSHOT TYPE
// =============================================================================

// Snapshot is the telemetry of one answer at a point in time. Times are in
// seconds. Speed is zero whenever the generation window is too small to
// divide by.
type Snapshot struct {
	ResponseTime   float64 // request sent until first text arrived
	GenerationTime float64 // first text until now (or until Finish)
	Speed          float64 // characters per second over the generation window
	Characters     int
}

// =============================================================================
// TRACKER
// =============================================================================

// Tracker accumulates timing and character counts for a single streamed
// answer. It is not safe for concurrent use; a session reads its stream
// from one goroutine.
type Tracker struct {
	now func() time.Time

	requestStart time.Time
	firstToken   time.Time
	chars        int

	done  bool
	final Snapshot
}

// NewTracker starts tracking. The request clock starts immediately, so
// create the tracker right before the request is sent.
func NewTracker() *Tracker {
	return newTracker(time.Now)
}

func newTracker(now func() time.Time) *Tracker {
	return &Tracker{
		now:          now,
		requestStart: now(),
	}
}

// AddText records one appended text frame. The first call pins the
// first-token time. Calls after Finish are ignored.
func (t *Tracker) AddText(text string) {
	if t.done || text == "" {
		return
	}
	if t.firstToken.IsZero() {
		t.firstToken = t.now()
	}
	t.chars += utf8.RuneCountInString(text)
}

// HasText reports whether any text has arrived yet. A finished answer with
// no text gets no telemetry at all.
func (t *Tracker) HasText() bool {
	return !t.firstToken.IsZero()
}

// Snapshot returns the current numbers. Before any text has arrived it
// reports ok=false. After Finish it returns the frozen values.
func (t *Tracker) Snapshot() (Snapshot, bool) {
	if t.done {
		return t.final, t.final.Characters > 0
	}
	if t.firstToken.IsZero() {
		return Snapshot{}, false
	}
	return t.at(t.now()), true
}

// Finish freezes the tracker at the moment the stream ended, whether it
// completed, was cancelled, or failed. Later Snapshot calls return the
// same values.
func (t *Tracker) Finish() (Snapshot, bool) {
	if t.done {
		return t.final, t.final.Characters > 0
	}
	t.done = true
	if t.firstToken.IsZero() {
		return Snapshot{}, false
	}
	t.final = t.at(t.now())
	return t.final, true
}

func (t *Tracker) at(end time.Time) Snapshot {
	snap := Snapshot{
		ResponseTime:   t.firstToken.Sub(t.requestStart).Seconds(),
		GenerationTime: end.Sub(t.firstToken).Seconds(),
		Characters:     t.chars,
	}
	if snap.GenerationTime > 0 {
		snap.Speed = float64(t.chars) / snap.GenerationTime
	}
	return snap
}
