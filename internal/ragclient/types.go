// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ragclient

// =============================================================================
// REQUEST TYPES
// =============================================================================

// ChatMessage is one prior turn sent as query context.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// QueryRequest is the body of /query and /query/stream. The retrieval
// booleans are always serialized: the service must see the caller's
// intent, not its own defaults.
type QueryRequest struct {
	Question string `json:"question"`
	Stream   bool   `json:"stream"`
	Model    string `json:"model,omitempty"`

	UseRAG          bool `json:"use_rag"`
	UseHybridSearch bool `json:"use_hybrid_search"`
	QueryExpansion  bool `json:"query_expansion"`

	ChatHistory  []ChatMessage `json:"chat_history,omitempty"`
	SystemPrompt string        `json:"system_prompt,omitempty"`
	Tags         []string      `json:"tags,omitempty"`

	Temperature   float64 `json:"temperature,omitempty"`
	TopP          float64 `json:"top_p,omitempty"`
	RepeatPenalty float64 `json:"repeat_penalty,omitempty"`
	NumPredict    int     `json:"num_predict,omitempty"`

	DocumentCount    int `json:"document_count,omitempty"`
	SearchMultiplier int `json:"search_multiplier,omitempty"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// QueryResponse is the non-streaming answer.
type QueryResponse struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

// ModelListResponse lists the models the service can generate with.
type ModelListResponse struct {
	Models []string `json:"models"`
}

// HealthResponse reports service liveness and backend reachability.
type HealthResponse struct {
	Status          string `json:"status"`
	OllamaAvailable bool   `json:"ollama_available"`
}

// Document is one indexed document chunk.
type Document struct {
	ID       string         `json:"id"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
}

// DocumentStats summarizes the index.
type DocumentStats struct {
	TotalDocuments int      `json:"total_documents"`
	TotalChunks    int      `json:"total_chunks"`
	Tags           []string `json:"tags"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}
