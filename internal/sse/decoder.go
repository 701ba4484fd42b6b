// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package sse

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// =============================================================================
// CONSTANTS
// =============================================================================

// FramePrefix marks a payload frame line. The payload is everything after
// the prefix, with no further trimming: leading spaces in generated text
// are significant.
const FramePrefix = "data: "

// MaxFrameSize is the maximum allowed size for a single frame line (64KB).
// A line that exceeds it is treated as a malformed stream, not recovered.
const MaxFrameSize = 64 * 1024

// ErrFrameTooLarge is returned when a single line exceeds MaxFrameSize.
// Callers should treat it as a transport-level failure of the session.
var ErrFrameTooLarge = errors.New("sse: frame exceeds maximum size")

// =============================================================================
// DECODER
// =============================================================================

// Decoder turns a streaming response body into an ordered frame sequence.
type Decoder struct {
	body   io.ReadCloser
	reader *bufio.Reader
	closed bool
}

// NewDecoder creates a decoder over a response body.
func NewDecoder(body io.ReadCloser) *Decoder {
	return &Decoder{
		body:   body,
		reader: bufio.NewReader(body),
	}
}

// Next returns the next payload frame in arrival order.
//
// Lines that are blank, carry an empty payload, or have any other shape are
// skipped. Next returns io.EOF when the stream ends. A trailing line whose
// terminator never arrived is still decoded before EOF is reported; the
// reference frontend dropped such frames.
func (d *Decoder) Next() (string, error) {
	for {
		line, err := d.reader.ReadString('\n')
		if len(line) > MaxFrameSize {
			return "", ErrFrameTooLarge
		}
		if err != nil {
			if err == io.EOF {
				if frame, ok := parseLine(line); ok {
					return frame, nil
				}
				return "", io.EOF
			}
			return "", err
		}
		if frame, ok := parseLine(line); ok {
			return frame, nil
		}
	}
}

// Close releases the underlying response body. Idempotent.
func (d *Decoder) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	return d.body.Close()
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// parseLine extracts the payload from one line, reporting whether the line
// was a non-empty payload frame.
func parseLine(line string) (string, bool) {
	line = strings.TrimRight(line, "\r\n")
	if !strings.HasPrefix(line, FramePrefix) {
		return "", false
	}
	payload := line[len(FramePrefix):]
	if payload == "" {
		return "", false
	}
	return payload, true
}
