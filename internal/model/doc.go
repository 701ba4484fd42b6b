// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// A Conversation is a titled, append-mostly sequence of Messages. Messages
// carry the generated text plus optional citation and telemetry metadata
// collected while the answer streamed in. The JSON field names match the
// persisted chat-history layout, so a Conversation marshals directly into
// the durable store document.
package model
