// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package control

import (
	"fmt"

	"github.com/jeranaias/ragchat/internal/util"
)

// ParseError describes a metadata frame that could not be decoded. The
// offending payload is carried truncated for log lines.
type ParseError struct {
	Payload string
	Reason  string
	Err     error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("control: %s in frame %q", e.Reason, util.TruncateRunes(e.Payload, 80))
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
