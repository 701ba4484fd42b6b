// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/jeranaias/ragchat/internal/model"
	"github.com/jeranaias/ragchat/internal/util"
)

// ErrNotFound is returned when a conversation ID does not exist.
var ErrNotFound = errors.New("store: conversation not found")

// =============================================================================
// STATE DOCUMENT
// =============================================================================

// State is the persisted document: every conversation plus the current
// selection. An empty CurrentChatID means nothing is selected.
type State struct {
	Chats         []*model.Conversation `json:"chats"`
	CurrentChatID string                `json:"currentChatId"`
}

// =============================================================================
// STORE
// =============================================================================

// Store owns the conversation state and its file. All methods are safe
// for concurrent use.
type Store struct {
	mu     sync.Mutex
	path   string
	state  State
	logger *slog.Logger
}

// Open loads the history file at path. A missing or unreadable file
// yields an empty store: history is a convenience, never a startup
// blocker.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	s := &Store{
		path:   path,
		state:  State{Chats: []*model.Conversation{}},
		logger: logger,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("history file unreadable, starting empty", "path", path, "error", err)
		}
		return s, nil
	}

	var loaded State
	if err := json.Unmarshal(data, &loaded); err != nil {
		logger.Warn("history file corrupt, starting empty", "path", path, "error", err)
		return s, nil
	}
	if loaded.Chats == nil {
		loaded.Chats = []*model.Conversation{}
	}
	s.state = loaded
	return s, nil
}

// Path returns the history file location.
func (s *Store) Path() string {
	return s.path
}

// =============================================================================
// CONVERSATION LIFECYCLE
// =============================================================================

// NewChat creates a conversation, places it first in the list, and
// selects it. Returns a copy of the new conversation.
func (s *Store) NewChat() (*model.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := model.NewConversation()
	s.state.Chats = append([]*model.Conversation{conv}, s.state.Chats...)
	s.state.CurrentChatID = conv.ID
	return conv.Clone(), s.persistLocked()
}

// List returns copies of every conversation, newest first.
func (s *Store) List() []*model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*model.Conversation, len(s.state.Chats))
	for i, c := range s.state.Chats {
		out[i] = c.Clone()
	}
	return out
}

// Select makes a conversation current.
func (s *Store) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findLocked(id) == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.state.CurrentChatID = id
	return s.persistLocked()
}

// Current returns a copy of the selected conversation, or nil when
// nothing is selected.
func (s *Store) Current() *model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.findLocked(s.state.CurrentChatID)
	if conv == nil {
		return nil
	}
	return conv.Clone()
}

// Get returns a copy of a conversation by ID.
func (s *Store) Get(id string) (*model.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.findLocked(id)
	if conv == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return conv.Clone(), nil
}

// Rename sets a conversation's title. A manual title sticks: derivation
// never overwrites it afterwards.
func (s *Store) Rename(id, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.findLocked(id)
	if conv == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	conv.Title = title
	conv.Touch()
	return s.persistLocked()
}

// Delete removes a conversation. When the selected conversation is
// deleted, selection moves to the first remaining one, or to nothing.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, c := range s.state.Chats {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	s.state.Chats = append(s.state.Chats[:idx], s.state.Chats[idx+1:]...)
	if s.state.CurrentChatID == id {
		if len(s.state.Chats) > 0 {
			s.state.CurrentChatID = s.state.Chats[0].ID
		} else {
			s.state.CurrentChatID = ""
		}
	}
	return s.persistLocked()
}

// ClearAll removes every conversation and the selection.
func (s *Store) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Chats = []*model.Conversation{}
	s.state.CurrentChatID = ""
	return s.persistLocked()
}

// =============================================================================
// MESSAGE MUTATIONS
// =============================================================================

// AppendMessage adds a message to a conversation. Title derivation from
// the first user message happens here, inside the model.
func (s *Store) AppendMessage(chatID string, msg model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.findLocked(chatID)
	if conv == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, chatID)
	}
	conv.Append(msg)
	return s.persistLocked()
}

// UpdateLastContent replaces the last message's text. A conversation
// with no messages is left untouched.
func (s *Store) UpdateLastContent(chatID, content string) error {
	return s.updateLast(chatID, func(m *model.Message) {
		m.Content = content
	})
}

// UpdateLastSources attaches retrieval citations and the quality score
// to the last message.
func (s *Store) UpdateLastSources(chatID string, sources []model.SourceCitation, qualityScore int) error {
	return s.updateLast(chatID, func(m *model.Message) {
		m.Sources = sources
		m.QualityScore = qualityScore
	})
}

// UpdateLastTelemetry attaches timing numbers to the last message.
func (s *Store) UpdateLastTelemetry(chatID string, responseTime, generationTime, speed float64) error {
	return s.updateLast(chatID, func(m *model.Message) {
		m.ResponseTime = responseTime
		m.GenerationTime = generationTime
		m.Speed = speed
	})
}

// MarkLastStopped flags the last message as cut short by the user.
func (s *Store) MarkLastStopped(chatID string) error {
	return s.updateLast(chatID, func(m *model.Message) {
		m.Stopped = true
	})
}

// MarkLastFailed replaces the last message's text with an error
// indicator and flags it so it never re-enters query context.
func (s *Store) MarkLastFailed(chatID, errText string) error {
	return s.updateLast(chatID, func(m *model.Message) {
		m.Content = errText
		m.Failed = true
	})
}

// PopLastExchange removes the trailing question/answer pair for
// regeneration and returns the question text.
func (s *Store) PopLastExchange(chatID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.findLocked(chatID)
	if conv == nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, chatID)
	}
	question, ok := conv.PopLastExchange()
	if !ok {
		return "", fmt.Errorf("store: conversation %s does not end in a question/answer pair", chatID)
	}
	return question, s.persistLocked()
}

// History returns the trailing context window of a conversation.
func (s *Store) History(chatID string, limit int) ([]model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.findLocked(chatID)
	if conv == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, chatID)
	}
	return conv.History(limit), nil
}

// =============================================================================
// INTERNALS
// =============================================================================

func (s *Store) updateLast(chatID string, mutate func(*model.Message)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.findLocked(chatID)
	if conv == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, chatID)
	}
	last := conv.Last()
	if last == nil {
		return nil
	}
	mutate(last)
	conv.Touch()
	return s.persistLocked()
}

func (s *Store) findLocked(id string) *model.Conversation {
	if id == "" {
		return nil
	}
	for _, c := range s.state.Chats {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// persistLocked rewrites the history file. The write is atomic so a
// crash mid-write leaves the previous document intact. An error is
// returned to the caller but the in-memory state stands.
func (s *Store) persistLocked() error {
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	if err := util.AtomicWriteFile(s.path, data, 0600); err != nil {
		s.logger.Error("failed to persist history", "path", s.path, "error", err)
		return fmt.Errorf("failed to write history: %w", err)
	}
	return nil
}

// reload replaces the in-memory state from disk. Used by the file
// watcher when another process rewrote the history.
func (s *Store) reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}
	var loaded State
	if err := json.Unmarshal(data, &loaded); err != nil {
		return err
	}
	if loaded.Chats == nil {
		loaded.Chats = []*model.Conversation{}
	}

	s.mu.Lock()
	s.state = loaded
	s.mu.Unlock()
	return nil
}
