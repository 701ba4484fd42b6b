// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sse decodes a streaming HTTP response body into payload frames.
//
// The wire format is newline-delimited: every logical unit is a line of the
// exact shape "data: <payload>" followed by a blank line. The decoder reads
// the body as bytes and splits on line terminators, so multi-byte UTF-8
// characters that straddle transport chunk boundaries are reassembled
// rather than corrupted, and a line whose terminator arrives in a later
// chunk is buffered until complete instead of being emitted truncated.
//
// A Decoder is bound to a single response body. Close releases the body and
// is safe to call more than once.
package sse
