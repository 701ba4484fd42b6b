// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes conversations to standalone files. HTML exports
// render answers through the display formatter and carry citations and
// generation telemetry; Markdown exports keep the raw answer text.
package export
