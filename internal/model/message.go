// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// =============================================================================
// SOURCE CITATION TYPE
// =============================================================================

// SourceCitation identifies a retrieved passage that backed an answer.
// Source is a label (typically a filename, possibly annotated with a
// sub-location) and Score is the retrieval relevance in [0,1].
// Citations are attached as a batch and never mutated afterwards.
type SourceCitation struct {
	Source string  `json:"source"`
	Score  float64 `json:"score"`
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a conversation.
//
// Content is mutable while the answer is streaming and immutable once the
// generation session that created the message reaches a terminal state.
// That contract is enforced by the session/store pair: only the active
// session ever calls the store's mutate-last operations, and it stops doing
// so once it terminates.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`

	// Citation metadata (assistant messages only)
	Sources      []SourceCitation `json:"sources,omitempty"`
	QualityScore int              `json:"qualityScore,omitempty"` // 0-100

	// Telemetry, frozen at stream end (assistant messages only).
	// Absent when no text frame ever arrived.
	ResponseTime   float64 `json:"responseTime,omitempty"`   // seconds until first token
	GenerationTime float64 `json:"generationTime,omitempty"` // seconds spent generating
	Speed          float64 `json:"speed,omitempty"`          // characters per second

	// CharacterPreset records which persona produced the answer.
	CharacterPreset string `json:"characterPreset,omitempty"`

	// Stopped marks an answer the user cancelled mid-stream. The partial
	// text is retained; the flag only changes how a shell displays it.
	Stopped bool `json:"stopped,omitempty"`

	// Failed marks a message whose content is an error indicator rather
	// than a generated answer.
	Failed bool `json:"failed,omitempty"`
}

// NewUserMessage creates a user message.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage creates an empty assistant message. It is appended
// as a placeholder when streaming starts and filled in frame by frame.
func NewAssistantMessage(characterPreset string) Message {
	return Message{Role: RoleAssistant, CharacterPreset: characterPreset}
}

// HasTelemetry reports whether telemetry was recorded for this message.
func (m *Message) HasTelemetry() bool {
	return m.ResponseTime != 0 || m.GenerationTime != 0 || m.Speed != 0
}

// Preview returns a single-line, rune-truncated preview of the content.
func (m *Message) Preview(maxRunes int) string {
	line := m.Content
	for i, r := range line {
		if r == '\n' || r == '\r' {
			line = line[:i]
			break
		}
	}
	runes := []rune(line)
	if len(runes) <= maxRunes {
		return line
	}
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}
