// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session runs question/answer generation sessions.
//
// A session covers one question: the optimistic user message, the
// placeholder answer, the streamed frames that fill it in, and the final
// telemetry. The store is updated after every frame so the persisted
// history always reflects what the user has seen.
//
// One session may run per conversation at a time. Cancellation keeps the
// partial answer; failure replaces it with an error indicator that is
// excluded from future query context. Regeneration pops the last
// question/answer pair and asks the question again.
package session
