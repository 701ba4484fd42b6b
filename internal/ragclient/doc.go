// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ragclient is the HTTP client for the retrieval-augmented answer
// service.
//
// Two underlying HTTP clients are used: a bounded one for one-shot calls
// (health, models, documents, non-streaming queries) and an unbounded one
// for streaming queries, where generation legitimately takes longer than
// any sane request timeout. Streaming cancellation travels through the
// request context.
package ragclient
