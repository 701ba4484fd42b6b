// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package format

import (
	"html"
	"regexp"
	"strings"
)

// The pipeline's rules, in application order. Emphasis runs before the
// bullet conversion so the remaining single asterisks are unambiguous.
var (
	// **text** becomes bold on its own line
	reEmphasis = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	// a bullet split from its text by a line break is rejoined
	reBulletJoin = regexp.MustCompile(`●\s*<br>\s*`)
	// a blank line is opened before every bullet item
	reBulletSpace = regexp.MustCompile(`([^>])(<br>)?● `)
	// runs of three or more breaks collapse to one blank line
	reBreakRuns = regexp.MustCompile(`(<br>){3,}`)
	// a sentence-ending ideographic full stop gets a line break, unless
	// the next character already closes or continues the clause
	reSentence = regexp.MustCompile(`(。)([^\s）」』\d●<])`)
)

// Render converts answer text to display HTML. Empty input renders to
// the empty string.
func Render(text string) string {
	if text == "" {
		return ""
	}

	out := html.EscapeString(text)
	out = strings.ReplaceAll(out, "\n", "<br>")
	out = reEmphasis.ReplaceAllString(out, "<br><strong>${1}</strong><br>")
	out = strings.ReplaceAll(out, "*", "●")
	out = reBulletJoin.ReplaceAllString(out, "● ")
	out = reBulletSpace.ReplaceAllString(out, "${1}<br><br>● ")
	out = reBreakRuns.ReplaceAllString(out, "<br><br>")
	out = reSentence.ReplaceAllString(out, "${1}<br>${2}")
	return out
}
