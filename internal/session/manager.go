// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jeranaias/ragchat/internal/config"
	"github.com/jeranaias/ragchat/internal/model"
	"github.com/jeranaias/ragchat/internal/ragclient"
	"github.com/jeranaias/ragchat/internal/store"
	"github.com/jeranaias/ragchat/internal/telemetry"
)

// ErrSessionActive is returned when a generation is already running for
// the conversation. Callers cancel or wait; they never get two streams
// writing into the same answer.
var ErrSessionActive = errors.New("session: a generation is already running for this conversation")

// ErrEmptyQuestion is returned for a blank question.
var ErrEmptyQuestion = errors.New("session: question is empty")

// =============================================================================
// MANAGER
// =============================================================================

// Manager starts sessions and enforces one per conversation.
type Manager struct {
	store   *store.Store
	client  *ragclient.Client
	cfg     *config.Config
	metrics *telemetry.Metrics // nil when metrics are not initialized
	logger  *slog.Logger

	mu     sync.Mutex
	active map[string]*Session
}

// NewManager creates a session manager. metrics may be nil.
func NewManager(st *store.Store, client *ragclient.Client, cfg *config.Config, metrics *telemetry.Metrics, logger *slog.Logger) *Manager {
	return &Manager{
		store:   st,
		client:  client,
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
		active:  make(map[string]*Session),
	}
}

// Active returns the running session for a conversation, if any.
func (m *Manager) Active(chatID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active[chatID]
}

// =============================================================================
// SESSION STARTERS
// =============================================================================

// Ask starts a generation session for a question. The user message and
// an empty answer placeholder are appended before the request goes out,
// so the conversation shows the question immediately. Returns
// ErrSessionActive if the conversation already has a running session.
func (m *Manager) Ask(ctx context.Context, chatID, question string, events Events) (*Session, error) {
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	sess, err := m.claim(ctx, chatID, question, events)
	if err != nil {
		return nil, err
	}
	return m.launch(ctx, sess)
}

// Regenerate discards the last answer and asks its question again. The
// conversation is claimed before the trailing question/answer pair comes
// off, so a racing Ask can never strand a popped exchange; the
// regenerated exchange replaces the old one instead of stacking on top
// of it.
func (m *Manager) Regenerate(ctx context.Context, chatID string, events Events) (*Session, error) {
	sess, err := m.claim(ctx, chatID, "", events)
	if err != nil {
		return nil, err
	}

	question, err := m.store.PopLastExchange(chatID)
	if err != nil {
		m.release(chatID)
		return nil, err
	}
	sess.question = question
	return m.launch(ctx, sess)
}

// =============================================================================
// INTERNALS
// =============================================================================

func (m *Manager) claim(ctx context.Context, chatID, question string, events Events) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, busy := m.active[chatID]; busy {
		return nil, fmt.Errorf("%w: %s", ErrSessionActive, chatID)
	}

	sess := &Session{
		manager:  m,
		chatID:   chatID,
		question: question,
		events:   events,
		state:    StateIdle,
		done:     make(chan struct{}),
	}
	m.active[chatID] = sess
	return sess, nil
}

// launch runs a claimed session: it captures the context window, appends
// the optimistic question and answer placeholder, and starts streaming.
// The claim is released when the conversation turns out not to exist.
func (m *Manager) launch(ctx context.Context, sess *Session) (*Session, error) {
	// Context window is captured before the optimistic append: the
	// question being asked is not its own history.
	history, err := m.store.History(sess.chatID, m.cfg.Query.HistoryLimit)
	if err != nil {
		m.release(sess.chatID)
		return nil, err
	}

	if err := m.store.AppendMessage(sess.chatID, model.NewUserMessage(sess.question)); err != nil {
		m.logger.Error("failed to persist question", "chat", sess.chatID, "error", err)
	}
	if err := m.store.AppendMessage(sess.chatID, model.NewAssistantMessage(m.cfg.Character.Preset)); err != nil {
		m.logger.Error("failed to persist answer placeholder", "chat", sess.chatID, "error", err)
	}

	m.start(ctx, sess, sess.question, history)
	return sess, nil
}

func (m *Manager) start(ctx context.Context, sess *Session, question string, history []model.Message) {
	runCtx, cancel := context.WithCancel(ctx)
	sess.cancel = cancel

	q := m.cfg.Query
	req := &ragclient.QueryRequest{
		Question:         question,
		Model:            q.Model,
		UseRAG:           q.UseRAG,
		UseHybridSearch:  q.UseHybridSearch,
		QueryExpansion:   q.QueryExpansion,
		ChatHistory:      historyToChat(history),
		SystemPrompt:     m.cfg.Character.SystemPrompt,
		Tags:             q.Tags,
		Temperature:      q.Temperature,
		TopP:             q.TopP,
		RepeatPenalty:    q.RepeatPenalty,
		NumPredict:       q.NumPredict,
		DocumentCount:    q.DocumentCount,
		SearchMultiplier: q.SearchMultiplier,
	}

	go sess.run(runCtx, req)
}

func (m *Manager) release(chatID string) {
	m.mu.Lock()
	delete(m.active, chatID)
	m.mu.Unlock()
}

// =============================================================================
// METRIC HELPERS
// =============================================================================

func (m *Manager) countQuery(ctx context.Context) {
	if m.metrics != nil {
		m.metrics.Queries.Add(ctx, 1)
	}
}

func (m *Manager) countTextFrame() {
	if m.metrics != nil {
		m.metrics.TextFrames.Add(context.Background(), 1)
	}
}

func (m *Manager) countDroppedRecord() {
	if m.metrics != nil {
		m.metrics.DroppedRecords.Add(context.Background(), 1)
	}
}

func (m *Manager) countCancellation() {
	if m.metrics != nil {
		m.metrics.Cancellations.Add(context.Background(), 1)
	}
}

func (m *Manager) countFailure() {
	if m.metrics != nil {
		m.metrics.QueryFailures.Add(context.Background(), 1)
	}
}

func (m *Manager) recordTelemetry(snap telemetry.Snapshot) {
	if m.metrics != nil {
		ctx := context.Background()
		m.metrics.ResponseTime.Record(ctx, snap.ResponseTime)
		m.metrics.Speed.Record(ctx, snap.Speed)
	}
}
