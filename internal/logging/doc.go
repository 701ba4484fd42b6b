// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging configures structured logging for the process.
//
// Logs are JSON lines written to a rotated file, never to the terminal:
// the interactive prompt owns stdout, and a log line in the middle of a
// streamed answer would corrupt the display.
package logging
