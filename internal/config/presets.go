// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"sort"
)

// =============================================================================
// GENERATION PRESETS
// =============================================================================

// GenerationProfile bundles the sampling and retrieval knobs a preset sets.
type GenerationProfile struct {
	Temperature      float64
	TopP             float64
	RepeatPenalty    float64
	NumPredict       int
	DocumentCount    int
	SearchMultiplier int
}

// Presets are the named generation profiles. "balanced" is the default;
// "fast" trades retrieval depth and answer length for latency; "accurate"
// does the opposite.
var Presets = map[string]GenerationProfile{
	"balanced": {
		Temperature:      0.3,
		TopP:             0.9,
		RepeatPenalty:    1.1,
		NumPredict:       2048,
		DocumentCount:    10,
		SearchMultiplier: 10,
	},
	"fast": {
		Temperature:      0.2,
		TopP:             0.8,
		RepeatPenalty:    1.2,
		NumPredict:       1024,
		DocumentCount:    5,
		SearchMultiplier: 5,
	},
	"accurate": {
		Temperature:      0.1,
		TopP:             0.95,
		RepeatPenalty:    1.15,
		NumPredict:       4096,
		DocumentCount:    15,
		SearchMultiplier: 15,
	},
}

// PresetNames returns the generation preset names in stable order.
func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ApplyPreset overwrites the numeric generation knobs with a named profile.
func (c *Config) ApplyPreset(name string) error {
	profile, ok := Presets[name]
	if !ok {
		return fmt.Errorf("unknown preset %q", name)
	}
	c.Query.Preset = name
	c.Query.applyProfile(profile)
	return nil
}

func (q *QueryConfig) applyProfile(p GenerationProfile) {
	q.Temperature = p.Temperature
	q.TopP = p.TopP
	q.RepeatPenalty = p.RepeatPenalty
	q.NumPredict = p.NumPredict
	q.DocumentCount = p.DocumentCount
	q.SearchMultiplier = p.SearchMultiplier
}

// =============================================================================
// CHARACTER PRESETS
// =============================================================================

// CharacterPresets map persona names to the system prompt that produces
// them. "none" clears the prompt.
var CharacterPresets = map[string]string{
	"none":    "",
	"samurai": "You are a samurai from the Edo period. Answer in a formal, archaic register and honor the spirit of bushido. Close your sentences with old-fashioned flourishes and remain unfailingly courteous.",
	"gal":     "You are a bright, energetic gal. Speak in a friendly, casual tone with plenty of youthful slang, and keep things approachable. The occasional star or music-note symbol is fine.",
	"kansai":  "You are from Kansai. Answer warmly in Kansai dialect, sprinkling in its characteristic phrases, with a cheerful and easygoing attitude.",
	"cat":     "You are a cat that can speak human language. End your sentences with cat-like sounds such as 'nya' and 'meow', answer with a free-spirited feline personality, and occasionally act whimsical, affectionate, or aloof.",
	"moe":     "You are an adorable moe-style character. Use cute, bubbly expressions, be bright and cheerful with a slightly airheaded streak, and feel free to end sentences with little symbols like stars and hearts.",
}

// CharacterPresetNames returns the persona names in stable order, with
// "none" first.
func CharacterPresetNames() []string {
	names := make([]string, 0, len(CharacterPresets))
	for name := range CharacterPresets {
		if name != "none" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return append([]string{"none"}, names...)
}

// ApplyCharacterPreset swaps the system prompt for a named persona.
func (c *Config) ApplyCharacterPreset(name string) error {
	prompt, ok := CharacterPresets[name]
	if !ok {
		return fmt.Errorf("unknown persona %q", name)
	}
	c.Character.Preset = name
	c.Character.SystemPrompt = prompt
	return nil
}
