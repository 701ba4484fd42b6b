// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package control

import (
	"errors"
	"testing"
)

func TestIsControlFrame(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    bool
	}{
		{"control frame", `__SOURCES__:{"quality_score":82}`, true},
		{"plain text", "X is a thing.", false},
		{"sentinel mid-frame", `tail text __SOURCES__:{"quality_score":1}`, true},
		{"bare sentinel", "__SOURCES__:", true},
		{"empty", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsControlFrame(tc.payload); got != tc.want {
				t.Errorf("IsControlFrame(%q) = %v, want %v", tc.payload, got, tc.want)
			}
		})
	}
}

func TestParseFrame(t *testing.T) {
	payload := `__SOURCES__:{"source_scores":[{"source":"handbook.pdf","score":0.91},{"source":"policy.md","score":0.78}],"quality_score":82,"document_count":5,"max_similarity":0.91}`

	rec, err := ParseFrame(payload)
	if err != nil {
		t.Fatalf("ParseFrame failed: %v", err)
	}
	if rec.QualityScore != 82 {
		t.Errorf("QualityScore = %d, want 82", rec.QualityScore)
	}
	if rec.DocumentCount != 5 {
		t.Errorf("DocumentCount = %d, want 5", rec.DocumentCount)
	}
	if rec.MaxSimilarity != 0.91 {
		t.Errorf("MaxSimilarity = %v, want 0.91", rec.MaxSimilarity)
	}

	cites := rec.Citations()
	if len(cites) != 2 {
		t.Fatalf("citations = %d, want 2", len(cites))
	}
	if cites[0].Source != "handbook.pdf" || cites[0].Score != 0.91 {
		t.Errorf("citation[0] = %+v", cites[0])
	}
}

func TestParseFrame_SentinelMidFrame(t *testing.T) {
	rec, err := ParseFrame(`Answer tail. __SOURCES__:{"source_scores":[{"source":"doc.pdf","score":0.8}],"quality_score":70}`)
	if err != nil {
		t.Fatalf("ParseFrame failed: %v", err)
	}
	if rec.QualityScore != 70 {
		t.Errorf("QualityScore = %d, want 70", rec.QualityScore)
	}
	if cites := rec.Citations(); len(cites) != 1 || cites[0].Source != "doc.pdf" {
		t.Errorf("citations = %+v", cites)
	}
}

func TestParseFrame_LegacySourceNames(t *testing.T) {
	rec, err := ParseFrame(`__SOURCES__:{"sources":["a.pdf","b.md"],"quality_score":60}`)
	if err != nil {
		t.Fatalf("ParseFrame failed: %v", err)
	}

	cites := rec.Citations()
	if len(cites) != 2 {
		t.Fatalf("citations = %d, want 2", len(cites))
	}
	if cites[0].Source != "a.pdf" || cites[0].Score != 0 {
		t.Errorf("legacy citation = %+v, want zero score", cites[0])
	}
}

func TestParseFrame_ScoredListWins(t *testing.T) {
	rec, err := ParseFrame(`__SOURCES__:{"source_scores":[{"source":"new.pdf","score":0.5}],"sources":["old.pdf"]}`)
	if err != nil {
		t.Fatalf("ParseFrame failed: %v", err)
	}

	cites := rec.Citations()
	if len(cites) != 1 || cites[0].Source != "new.pdf" {
		t.Errorf("citations = %+v, scored list should take precedence", cites)
	}
}

func TestParseFrame_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"truncated json", `__SOURCES__:{"quality_score":`},
		{"not json", `__SOURCES__:oops`},
		{"no sentinel", `{"quality_score":82}`},
		{"empty document", `__SOURCES__:`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec, err := ParseFrame(tc.payload)
			if err == nil {
				t.Fatalf("ParseFrame(%q) = %+v, want error", tc.payload, rec)
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Errorf("error type = %T, want *ParseError", err)
			}
		})
	}
}

func TestParseFrame_EmptyRecord(t *testing.T) {
	rec, err := ParseFrame(`__SOURCES__:{}`)
	if err != nil {
		t.Fatalf("ParseFrame failed: %v", err)
	}
	if cites := rec.Citations(); cites != nil {
		t.Errorf("citations = %+v, want nil for empty record", cites)
	}
}
