// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package telemetry measures answer latency and generation speed.
//
// A Tracker follows one streamed answer: it records when the request went
// out, when the first text arrived, and how many characters have been
// appended. Every character is counted exactly once, at the moment its
// frame is appended to the visible text. Finish freezes the numbers so a
// persisted answer keeps the values it was generated with.
//
// The package also owns the process-wide OpenTelemetry meter, exported to
// a rotated local file.
package telemetry
