// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package control

import (
	"encoding/json"
	"strings"

	"github.com/jeranaias/ragchat/internal/model"
)

// Sentinel marks a metadata frame. The record is the JSON document that
// follows it on the same frame.
const Sentinel = "__SOURCES__:"

// =============================================================================
// RECORD TYPE
// =============================================================================

// Record is the retrieval metadata the service attaches to an answer:
// which documents grounded it and how confident the retrieval was.
type Record struct {
	SourceScores  []model.SourceCitation `json:"source_scores"`
	QualityScore  int                    `json:"quality_score"`
	DocumentCount int                    `json:"document_count"`
	MaxSimilarity float64                `json:"max_similarity"`

	// Sources is the older shape: bare document names without scores.
	// Kept so answers from a previous service version still render.
	Sources []string `json:"sources,omitempty"`
}

// Citations returns the record's sources as scored citations. When only
// the legacy name list is present, the names are carried with a zero score.
func (r *Record) Citations() []model.SourceCitation {
	if len(r.SourceScores) > 0 {
		return r.SourceScores
	}
	if len(r.Sources) == 0 {
		return nil
	}
	out := make([]model.SourceCitation, 0, len(r.Sources))
	for _, name := range r.Sources {
		out = append(out, model.SourceCitation{Source: name})
	}
	return out
}

// =============================================================================
// FRAME CLASSIFICATION
// =============================================================================

// IsControlFrame reports whether a payload frame carries a metadata record
// rather than display text. The sentinel may appear anywhere in the frame;
// the service occasionally flushes trailing answer text and the record
// into one frame.
func IsControlFrame(payload string) bool {
	return strings.Contains(payload, Sentinel)
}

// ParseFrame decodes the metadata record from a control frame. The record
// is everything after the sentinel; the whole frame is consumed either
// way, so nothing around the sentinel ever reaches the visible answer.
// Returns an error for frames without the sentinel or with a JSON
// document that does not decode.
func ParseFrame(payload string) (*Record, error) {
	idx := strings.Index(payload, Sentinel)
	if idx < 0 {
		return nil, &ParseError{Payload: payload, Reason: "missing sentinel"}
	}
	doc := payload[idx+len(Sentinel):]

	var rec Record
	if err := json.Unmarshal([]byte(doc), &rec); err != nil {
		return nil, &ParseError{Payload: payload, Reason: "invalid record", Err: err}
	}
	return &rec, nil
}
