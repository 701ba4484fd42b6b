// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/ragchat/internal/util"
)

// DefaultTitle is the placeholder title a conversation starts with.
// Title derivation only ever fires while the title still holds this value.
const DefaultTitle = "New Chat"

// TitleMaxRunes is the number of characters of the first user message used
// for the derived title. Longer messages get an ellipsis marker appended.
const TitleMaxRunes = 30

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation holds a titled chat conversation with history and metadata.
// The message sequence is append-only except for the in-progress last entry,
// which the active generation session mutates while streaming.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewConversation creates an empty conversation with a generated ID and
// the placeholder title.
func NewConversation() *Conversation {
	now := time.Now()
	return &Conversation{
		ID:        "chat_" + uuid.NewString(),
		Title:     DefaultTitle,
		Messages:  make([]Message, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// Append adds a message and touches the updated timestamp. When the first
// user message lands while the title is still the placeholder, the title is
// derived from it: the first TitleMaxRunes characters, with "..." appended
// if the message was longer. Derivation fires exactly once.
func (c *Conversation) Append(msg Message) {
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = time.Now()

	if msg.Role == RoleUser && c.Title == DefaultTitle && c.countUserMessages() == 1 {
		c.Title = util.TruncateRunesEllipsis(msg.Content, TitleMaxRunes)
	}
}

// Last returns a pointer to the most recent message, or nil if empty.
func (c *Conversation) Last() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return &c.Messages[len(c.Messages)-1]
}

// Touch updates the modification timestamp.
func (c *Conversation) Touch() {
	c.UpdatedAt = time.Now()
}

// PopLastExchange removes the trailing {user, assistant} message pair and
// returns the user message's text. It only succeeds when the last two
// entries are exactly a user message followed by an assistant message;
// anything else leaves the conversation untouched. This is the storage half
// of regeneration.
func (c *Conversation) PopLastExchange() (question string, ok bool) {
	n := len(c.Messages)
	if n < 2 {
		return "", false
	}
	if c.Messages[n-2].Role != RoleUser || c.Messages[n-1].Role != RoleAssistant {
		return "", false
	}
	question = c.Messages[n-2].Content
	c.Messages = c.Messages[:n-2]
	c.UpdatedAt = time.Now()
	return question, true
}

// History returns the trailing window of messages as {role, content} pairs
// suitable for a query request. The window is counted in messages, so a
// limit of 20 covers roughly the last 10 exchanges.
func (c *Conversation) History(limit int) []Message {
	msgs := c.Messages
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		if m.Failed {
			continue
		}
		out = append(out, Message{Role: m.Role, Content: m.Content})
	}
	return out
}

// IsEmpty returns true if there are no messages.
func (c *Conversation) IsEmpty() bool {
	return len(c.Messages) == 0
}

// Clone creates a deep copy of the conversation.
func (c *Conversation) Clone() *Conversation {
	clone := *c
	clone.Messages = make([]Message, len(c.Messages))
	copy(clone.Messages, c.Messages)
	for i := range clone.Messages {
		if src := c.Messages[i].Sources; src != nil {
			clone.Messages[i].Sources = make([]SourceCitation, len(src))
			copy(clone.Messages[i].Sources, src)
		}
	}
	return &clone
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func (c *Conversation) countUserMessages() int {
	n := 0
	for _, m := range c.Messages {
		if m.Role == RoleUser {
			n++
		}
	}
	return n
}
