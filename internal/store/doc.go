// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store persists conversation history as a single JSON document.
//
// The whole state - every conversation plus the current selection - lives
// in one file and is rewritten atomically after every mutation. The
// in-memory state is always the source of truth: a failed write is
// reported to the caller but never rolls memory back, so a full disk
// costs durability, not the user's conversation.
//
// Opening never fails on bad data. An absent or corrupt history file
// yields an empty store; the corrupt file is overwritten on the next
// successful mutation.
package store
