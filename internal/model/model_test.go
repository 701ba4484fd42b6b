// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"strings"
	"testing"
)

// =============================================================================
// TITLE DERIVATION TESTS
// =============================================================================

func TestConversation_TitleDerivation(t *testing.T) {
	conv := NewConversation()
	if conv.Title != DefaultTitle {
		t.Fatalf("new conversation title = %q, want %q", conv.Title, DefaultTitle)
	}

	question := "Explain the onboarding process in detail please"
	conv.Append(NewUserMessage(question))

	want := string([]rune(question)[:30]) + "..."
	if conv.Title != want {
		t.Errorf("derived title = %q, want %q", conv.Title, want)
	}
}

func TestConversation_TitleDerivation_Short(t *testing.T) {
	conv := NewConversation()
	conv.Append(NewUserMessage("Hi"))

	if conv.Title != "Hi" {
		t.Errorf("title = %q, want %q", conv.Title, "Hi")
	}
	if strings.Contains(conv.Title, "...") {
		t.Error("short title must not carry an ellipsis marker")
	}
}

func TestConversation_TitleDerivation_FiresOnce(t *testing.T) {
	conv := NewConversation()
	conv.Append(NewUserMessage("first question"))
	first := conv.Title

	conv.Append(NewAssistantMessage(""))
	conv.Append(NewUserMessage("a completely different second question"))

	if conv.Title != first {
		t.Errorf("title changed on second user message: %q -> %q", first, conv.Title)
	}
}

func TestConversation_TitleDerivation_RespectsRename(t *testing.T) {
	conv := NewConversation()
	conv.Title = "renamed by the user"
	conv.Append(NewUserMessage("should not override"))

	if conv.Title != "renamed by the user" {
		t.Errorf("title = %q, manual rename should stick", conv.Title)
	}
}

func TestConversation_TitleDerivation_Unicode(t *testing.T) {
	conv := NewConversation()
	long := strings.Repeat("日", 40)
	conv.Append(NewUserMessage(long))

	want := strings.Repeat("日", 30) + "..."
	if conv.Title != want {
		t.Errorf("unicode title = %q, want %q", conv.Title, want)
	}
}

// =============================================================================
// EXCHANGE POP TESTS
// =============================================================================

func TestConversation_PopLastExchange(t *testing.T) {
	conv := NewConversation()
	conv.Append(NewUserMessage("q1"))
	asst := NewAssistantMessage("")
	asst.Content = "a1"
	conv.Append(asst)
	conv.Append(NewUserMessage("q2"))
	asst2 := NewAssistantMessage("")
	asst2.Content = "a2"
	conv.Append(asst2)

	question, ok := conv.PopLastExchange()
	if !ok {
		t.Fatal("PopLastExchange should succeed on a trailing user+assistant pair")
	}
	if question != "q2" {
		t.Errorf("popped question = %q, want %q", question, "q2")
	}
	if len(conv.Messages) != 2 {
		t.Errorf("messages remaining = %d, want 2", len(conv.Messages))
	}
	if conv.Messages[0].Content != "q1" || conv.Messages[1].Content != "a1" {
		t.Error("earlier exchange must survive the pop")
	}
}

func TestConversation_PopLastExchange_WrongShape(t *testing.T) {
	tests := []struct {
		name  string
		roles []Role
	}{
		{"empty", nil},
		{"single user", []Role{RoleUser}},
		{"trailing user", []Role{RoleUser, RoleAssistant, RoleUser}},
		{"two assistants", []Role{RoleAssistant, RoleAssistant}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			conv := NewConversation()
			for _, r := range tc.roles {
				conv.Append(Message{Role: r, Content: "x"})
			}
			before := len(conv.Messages)
			if _, ok := conv.PopLastExchange(); ok {
				t.Error("PopLastExchange should refuse a malformed tail")
			}
			if len(conv.Messages) != before {
				t.Error("failed pop must not mutate the conversation")
			}
		})
	}
}

// =============================================================================
// HISTORY WINDOW TESTS
// =============================================================================

func TestConversation_History_Window(t *testing.T) {
	conv := NewConversation()
	for i := 0; i < 15; i++ {
		conv.Append(NewUserMessage("q"))
		a := NewAssistantMessage("")
		a.Content = "a"
		conv.Append(a)
	}

	hist := conv.History(20)
	if len(hist) != 20 {
		t.Errorf("history length = %d, want 20", len(hist))
	}
	// Window takes the most recent messages
	if hist[len(hist)-1].Role != RoleAssistant {
		t.Error("last history entry should be the newest message")
	}
}

func TestConversation_History_SkipsFailed(t *testing.T) {
	conv := NewConversation()
	conv.Append(NewUserMessage("q"))
	conv.Append(Message{Role: RoleAssistant, Content: "Error: boom", Failed: true})

	hist := conv.History(20)
	if len(hist) != 1 {
		t.Errorf("history length = %d, want 1 (failed entries excluded)", len(hist))
	}
}

// =============================================================================
// SERIALIZATION TESTS
// =============================================================================

func TestMessage_PersistedFieldNames(t *testing.T) {
	msg := Message{
		Role:    RoleAssistant,
		Content: "X is a thing.",
		Sources: []SourceCitation{
			{Source: "doc1.pdf", Score: 0.91},
		},
		QualityScore:    82,
		ResponseTime:    1.5,
		GenerationTime:  3.0,
		Speed:           4.3,
		CharacterPreset: "samurai",
	}

	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	for _, field := range []string{
		`"role":"assistant"`,
		`"qualityScore":82`,
		`"responseTime":1.5`,
		`"generationTime":3`,
		`"speed":4.3`,
		`"characterPreset":"samurai"`,
		`"source":"doc1.pdf"`,
		`"score":0.91`,
	} {
		if !strings.Contains(string(data), field) {
			t.Errorf("serialized message missing %s in %s", field, data)
		}
	}
}

func TestMessage_OmitsUnsetTelemetry(t *testing.T) {
	msg := Message{Role: RoleAssistant, Content: "hi"}

	data, _ := json.Marshal(msg)
	for _, field := range []string{"responseTime", "generationTime", "speed", "qualityScore", "sources"} {
		if strings.Contains(string(data), field) {
			t.Errorf("unset field %s should be omitted, got %s", field, data)
		}
	}
}

func TestConversation_UniqueIDs(t *testing.T) {
	a := NewConversation()
	b := NewConversation()
	if a.ID == b.ID {
		t.Error("conversation IDs should be unique")
	}
	if !strings.HasPrefix(a.ID, "chat_") {
		t.Errorf("ID should carry the chat_ prefix, got %q", a.ID)
	}
}

func TestConversation_Clone_Isolated(t *testing.T) {
	conv := NewConversation()
	conv.Append(NewUserMessage("q"))
	a := NewAssistantMessage("")
	a.Content = "answer"
	a.Sources = []SourceCitation{{Source: "doc.pdf", Score: 0.5}}
	conv.Append(a)

	clone := conv.Clone()
	clone.Messages[1].Content = "mutated"
	clone.Messages[1].Sources[0].Source = "other.pdf"

	if conv.Messages[1].Content != "answer" {
		t.Error("clone mutation leaked into original content")
	}
	if conv.Messages[1].Sources[0].Source != "doc.pdf" {
		t.Error("clone mutation leaked into original sources")
	}
}
