// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package control separates the in-band metadata channel from generated
// text. The service emits exactly one metadata record per answer, wrapped
// in an ordinary payload frame that carries a fixed sentinel followed by
// the record. Everything without the sentinel is display text; nothing in
// this package ever touches the text channel.
//
// A malformed record is reported as an error so the caller can log and
// drop it without ending the stream.
package control
