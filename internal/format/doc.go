// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package format renders generated answer text for display.
//
// The service emits lightweight markup: double asterisks for emphasis,
// single asterisks for list bullets, and ideographic full stops ending
// sentences that arrive without line breaks. Render turns that into
// HTML through a fixed, ordered rule pipeline; the order matters, since
// the bullet rules consume what the emphasis rule leaves behind.
package format
