// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/jeranaias/ragchat/internal/control"
	"github.com/jeranaias/ragchat/internal/model"
	"github.com/jeranaias/ragchat/internal/ragclient"
	"github.com/jeranaias/ragchat/internal/telemetry"
)

// StoppedMarker is the notice a shell shows under an answer the user cut
// short. It is display-only: the persisted content stays exactly the text
// that streamed in, and the Stopped flag carries the state.
const StoppedMarker = "[Generation stopped]"

// =============================================================================
// SESSION STATE
// =============================================================================

// State is the lifecycle of one generation session.
type State int

const (
	StateIdle State = iota
	StateSending
	StateStreaming
	StateCompleted
	StateAborted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateAborted:
		return "aborted"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the session has finished.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateAborted || s == StateFailed
}

// =============================================================================
// EVENTS
// =============================================================================

// Events are the optional callbacks a caller can hang on a session. All
// of them are invoked from the session goroutine and may be nil.
type Events struct {
	// OnState fires on every state transition.
	OnState func(State)
	// OnText fires per appended frame with the full text so far and the
	// frame that was just added.
	OnText func(full, delta string)
	// OnControl fires when the retrieval metadata record arrives.
	OnControl func(*control.Record)
	// OnTelemetry fires with the final numbers when the stream ends.
	OnTelemetry func(telemetry.Snapshot)
	// OnError fires when the session fails.
	OnError func(error)
}

// =============================================================================
// SESSION
// =============================================================================

// Session is one in-flight answer generation.
type Session struct {
	manager  *Manager
	chatID   string
	question string
	events   Events
	cancel   context.CancelFunc

	mu    sync.Mutex
	state State
	text  strings.Builder
	err   error

	tracker *telemetry.Tracker
	done    chan struct{}
}

// ChatID returns the conversation this session writes into.
func (s *Session) ChatID() string {
	return s.chatID
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Text returns the answer text accumulated so far.
func (s *Session) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text.String()
}

// Err returns the failure, if the session failed.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Cancel aborts generation. The partial answer stays in the
// conversation, marked as stopped. Safe to call at any point.
func (s *Session) Cancel() {
	s.cancel()
}

// Wait blocks until the session reaches a terminal state.
func (s *Session) Wait() {
	<-s.done
}

// =============================================================================
// RUN LOOP
// =============================================================================

func (s *Session) run(ctx context.Context, req *ragclient.QueryRequest) {
	defer close(s.done)
	defer s.manager.release(s.chatID)

	s.setState(StateSending)
	s.tracker = telemetry.NewTracker()
	s.manager.countQuery(ctx)

	dec, err := s.manager.client.QueryStream(ctx, req)
	if err != nil {
		s.finish(ctx, err)
		return
	}
	defer dec.Close()

	s.setState(StateStreaming)

	for {
		frame, err := dec.Next()
		if err == io.EOF {
			s.finish(ctx, nil)
			return
		}
		if err != nil {
			s.finish(ctx, err)
			return
		}

		if control.IsControlFrame(frame) {
			s.handleControl(frame)
			continue
		}
		s.handleText(frame)
	}
}

// handleText appends one display frame and persists the updated answer.
func (s *Session) handleText(frame string) {
	s.mu.Lock()
	s.text.WriteString(frame)
	full := s.text.String()
	s.mu.Unlock()

	s.tracker.AddText(frame)
	s.manager.countTextFrame()

	if err := s.manager.store.UpdateLastContent(s.chatID, full); err != nil {
		s.manager.logger.Error("failed to persist streamed text", "chat", s.chatID, "error", err)
	}
	if s.events.OnText != nil {
		s.events.OnText(full, frame)
	}
}

// handleControl decodes the metadata record. Malformed records are
// logged and dropped; the stream carries on. When the service sends
// more than one record, the last one wins.
func (s *Session) handleControl(frame string) {
	rec, err := control.ParseFrame(frame)
	if err != nil {
		s.manager.logger.Warn("dropping malformed metadata record", "chat", s.chatID, "error", err)
		s.manager.countDroppedRecord()
		return
	}

	if err := s.manager.store.UpdateLastSources(s.chatID, rec.Citations(), rec.QualityScore); err != nil {
		s.manager.logger.Error("failed to persist sources", "chat", s.chatID, "error", err)
	}
	if s.events.OnControl != nil {
		s.events.OnControl(rec)
	}
}

// finish settles the session into its terminal state. A nil cause means
// the stream ended normally; a cancelled context means the user stopped
// it; anything else is a failure.
func (s *Session) finish(ctx context.Context, cause error) {
	snap, hasTelemetry := s.tracker.Finish()

	switch {
	case cause == nil && ctx.Err() == nil:
		s.settleTelemetry(snap, hasTelemetry)
		s.setState(StateCompleted)

	case ctx.Err() != nil || errors.Is(cause, context.Canceled) || ragclient.IsCancelled(cause):
		s.settleAborted(snap, hasTelemetry)
		s.manager.countCancellation()
		s.setState(StateAborted)

	default:
		s.settleFailed(cause)
		s.manager.countFailure()
		s.setState(StateFailed)
		if s.events.OnError != nil {
			s.events.OnError(cause)
		}
	}
}

func (s *Session) settleTelemetry(snap telemetry.Snapshot, ok bool) {
	if !ok {
		return
	}
	if err := s.manager.store.UpdateLastTelemetry(s.chatID, snap.ResponseTime, snap.GenerationTime, snap.Speed); err != nil {
		s.manager.logger.Error("failed to persist telemetry", "chat", s.chatID, "error", err)
	}
	s.manager.recordTelemetry(snap)
	if s.events.OnTelemetry != nil {
		s.events.OnTelemetry(snap)
	}
}

// settleAborted marks the answer as stopped. The content is left exactly
// as it streamed in; the Stopped flag is what a shell renders the notice
// from. Telemetry for the partial answer is kept too.
func (s *Session) settleAborted(snap telemetry.Snapshot, hasTelemetry bool) {
	if err := s.manager.store.MarkLastStopped(s.chatID); err != nil {
		s.manager.logger.Error("failed to mark answer stopped", "chat", s.chatID, "error", err)
	}
	s.settleTelemetry(snap, hasTelemetry)
}

// settleFailed replaces the answer with an error indicator. The failed
// message is flagged so it never re-enters query context.
func (s *Session) settleFailed(cause error) {
	s.mu.Lock()
	s.err = cause
	s.mu.Unlock()

	if err := s.manager.store.MarkLastFailed(s.chatID, errorText(cause)); err != nil {
		s.manager.logger.Error("failed to mark answer failed", "chat", s.chatID, "error", err)
	}
	s.manager.logger.Error("generation failed", "chat", s.chatID, "error", cause)
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()

	if s.events.OnState != nil {
		s.events.OnState(state)
	}
}

// errorText is the user-facing indicator stored in place of a failed
// answer.
func errorText(err error) string {
	if ragclient.IsConnection(err) {
		return "Error: could not reach the answer service. Check that it is running."
	}
	if ragclient.IsTimeout(err) {
		return "Error: the answer service timed out."
	}
	return "Error: " + err.Error()
}

// historyToChat converts stored messages into request context turns.
func historyToChat(msgs []model.Message) []ragclient.ChatMessage {
	if len(msgs) == 0 {
		return nil
	}
	out := make([]ragclient.ChatMessage, len(msgs))
	for i, m := range msgs {
		out[i] = ragclient.ChatMessage{Role: m.Role.String(), Content: m.Content}
	}
	return out
}
