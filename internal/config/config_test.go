// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got: %v", err)
	}
	if cfg.Query.Preset != "balanced" {
		t.Errorf("default preset = %q, want balanced", cfg.Query.Preset)
	}
	if cfg.Query.Temperature != 0.3 || cfg.Query.DocumentCount != 10 {
		t.Errorf("default knobs do not match the balanced profile: %+v", cfg.Query)
	}
	if cfg.Query.HistoryLimit != DefaultHistoryLimit {
		t.Errorf("history limit = %d, want %d", cfg.Query.HistoryLimit, DefaultHistoryLimit)
	}
	if !cfg.Query.UseRAG || !cfg.Query.UseHybridSearch {
		t.Error("retrieval should be on by default")
	}
	if cfg.Query.QueryExpansion {
		t.Error("query expansion should be off by default")
	}
}

func TestApplyPreset(t *testing.T) {
	tests := []struct {
		name       string
		numPredict int
		docCount   int
	}{
		{"balanced", 2048, 10},
		{"fast", 1024, 5},
		{"accurate", 4096, 15},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			if err := cfg.ApplyPreset(tc.name); err != nil {
				t.Fatalf("ApplyPreset(%q) failed: %v", tc.name, err)
			}
			if cfg.Query.Preset != tc.name {
				t.Errorf("preset = %q, want %q", cfg.Query.Preset, tc.name)
			}
			if cfg.Query.NumPredict != tc.numPredict {
				t.Errorf("num_predict = %d, want %d", cfg.Query.NumPredict, tc.numPredict)
			}
			if cfg.Query.DocumentCount != tc.docCount {
				t.Errorf("document_count = %d, want %d", cfg.Query.DocumentCount, tc.docCount)
			}
		})
	}

	if err := Default().ApplyPreset("turbo"); err == nil {
		t.Error("unknown preset should be rejected")
	}
}

func TestApplyCharacterPreset(t *testing.T) {
	cfg := Default()

	if err := cfg.ApplyCharacterPreset("samurai"); err != nil {
		t.Fatalf("ApplyCharacterPreset failed: %v", err)
	}
	if cfg.Character.Preset != "samurai" {
		t.Errorf("preset = %q, want samurai", cfg.Character.Preset)
	}
	if cfg.Character.SystemPrompt == "" {
		t.Error("persona must install a system prompt")
	}

	if err := cfg.ApplyCharacterPreset("none"); err != nil {
		t.Fatalf("ApplyCharacterPreset(none) failed: %v", err)
	}
	if cfg.Character.SystemPrompt != "" {
		t.Error("'none' must clear the system prompt")
	}

	if err := cfg.ApplyCharacterPreset("dragon"); err == nil {
		t.Error("unknown persona should be rejected")
	}
}

func TestCharacterPresetNames_NoneFirst(t *testing.T) {
	names := CharacterPresetNames()
	if len(names) == 0 || names[0] != "none" {
		t.Errorf("persona list should lead with none, got %v", names)
	}
	if len(names) != len(CharacterPresets) {
		t.Errorf("persona list length = %d, want %d", len(names), len(CharacterPresets))
	}
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad url", func(c *Config) { c.Server.BaseURL = "not a url" }, "server.base_url"},
		{"zero timeout", func(c *Config) { c.Server.RequestTimeoutSecs = 0 }, "server.request_timeout_secs"},
		{"unknown preset", func(c *Config) { c.Query.Preset = "warp" }, "query.preset"},
		{"temperature high", func(c *Config) { c.Query.Temperature = 3.0 }, "query.temperature"},
		{"top_p zero", func(c *Config) { c.Query.TopP = 0 }, "query.top_p"},
		{"no documents", func(c *Config) { c.Query.DocumentCount = 0 }, "query.document_count"},
		{"negative history", func(c *Config) { c.Query.HistoryLimit = -1 }, "query.history_limit"},
		{"unknown persona", func(c *Config) { c.Character.Preset = "robot" }, "character.preset"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !strings.Contains(err.Error(), tc.field) {
				t.Errorf("error %q should name field %s", err, tc.field)
			}
		})
	}
}

func TestValidate_CustomPresetAllowed(t *testing.T) {
	cfg := Default()
	cfg.Query.Preset = "custom"
	cfg.Query.Temperature = 0.7
	cfg.Character.Preset = "custom"
	cfg.Character.SystemPrompt = "You are a helpful assistant."

	if err := cfg.Validate(); err != nil {
		t.Errorf("custom preset should validate, got: %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := Default()
	cfg.Server.BaseURL = "http://rag.internal:9000"
	cfg.Query.Model = "qwen2.5:7b"
	cfg.Query.Tags = []string{"hr", "policy"}
	if err := cfg.ApplyCharacterPreset("cat"); err != nil {
		t.Fatal(err)
	}

	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML failed: %v", err)
	}

	loaded := Default()
	if err := LoadTOML(loaded, path); err != nil {
		t.Fatalf("LoadTOML failed: %v", err)
	}
	if loaded.Server.BaseURL != cfg.Server.BaseURL {
		t.Errorf("base_url = %q, want %q", loaded.Server.BaseURL, cfg.Server.BaseURL)
	}
	if loaded.Query.Model != "qwen2.5:7b" {
		t.Errorf("model = %q, want qwen2.5:7b", loaded.Query.Model)
	}
	if len(loaded.Query.Tags) != 2 || loaded.Query.Tags[0] != "hr" {
		t.Errorf("tags = %v, want [hr policy]", loaded.Query.Tags)
	}
	if loaded.Character.Preset != "cat" || loaded.Character.SystemPrompt == "" {
		t.Errorf("persona did not survive the round trip: %+v", loaded.Character)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("RAGCHAT_SERVER_URL", "http://override:8000")
	t.Setenv("RAGCHAT_MODEL", "llama3.2:3b")
	t.Setenv("RAGCHAT_DEBUG", "true")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Server.BaseURL != "http://override:8000" {
		t.Errorf("base_url = %q, env override should win", cfg.Server.BaseURL)
	}
	if cfg.Query.Model != "llama3.2:3b" {
		t.Errorf("model = %q, env override should win", cfg.Query.Model)
	}
	if !cfg.Debug {
		t.Error("RAGCHAT_DEBUG=true should enable debug")
	}
}

func TestStoragePathResolution(t *testing.T) {
	cfg := Default()
	cfg.Storage.HistoryPath = "/tmp/custom-history.json"
	cfg.Storage.LogDir = "/tmp/custom-logs"

	hp, err := cfg.HistoryPath()
	if err != nil || hp != "/tmp/custom-history.json" {
		t.Errorf("HistoryPath = %q, %v", hp, err)
	}
	ld, err := cfg.LogDir()
	if err != nil || ld != "/tmp/custom-logs" {
		t.Errorf("LogDir = %q, %v", ld, err)
	}

	// Defaults resolve under the home config dir.
	cfg = Default()
	hp, err = cfg.HistoryPath()
	if err != nil {
		t.Fatalf("HistoryPath failed: %v", err)
	}
	home, _ := os.UserHomeDir()
	if !strings.HasPrefix(hp, filepath.Join(home, ".ragchat")) {
		t.Errorf("default history path = %q, want under ~/.ragchat", hp)
	}
}
