// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete ragchat configuration.
type Config struct {
	Version string `toml:"version"`

	// Server connection
	Server ServerConfig `toml:"server"`

	// Query parameters sent with every question
	Query QueryConfig `toml:"query"`

	// Persona applied through the system prompt
	Character CharacterConfig `toml:"character"`

	// Local storage locations
	Storage StorageConfig `toml:"storage"`

	// Debug widens the log level
	Debug bool `toml:"debug"`
}

// ServerConfig describes the answer service endpoint.
type ServerConfig struct {
	// BaseURL is the root of the answer service API
	BaseURL string `toml:"base_url"`
	// RequestTimeoutSecs bounds non-streaming calls. Streaming requests
	// carry no deadline; generation takes as long as it takes.
	RequestTimeoutSecs int `toml:"request_timeout_secs"`
}

// QueryConfig holds the retrieval and sampling parameters.
type QueryConfig struct {
	// Model is the model name, empty to let the service pick
	Model string `toml:"model"`
	// Preset names the generation profile the numeric knobs came from:
	// "balanced", "fast", "accurate", or "custom" after a manual edit
	Preset string `toml:"preset"`

	UseRAG          bool `toml:"use_rag"`
	UseHybridSearch bool `toml:"use_hybrid_search"`
	QueryExpansion  bool `toml:"query_expansion"`

	Temperature   float64 `toml:"temperature"`
	TopP          float64 `toml:"top_p"`
	RepeatPenalty float64 `toml:"repeat_penalty"`
	NumPredict    int     `toml:"num_predict"`

	// DocumentCount is how many retrieved chunks reach the prompt;
	// SearchMultiplier widens the candidate pool before reranking
	DocumentCount    int `toml:"document_count"`
	SearchMultiplier int `toml:"search_multiplier"`

	// Tags restricts retrieval to documents carrying any of these tags
	Tags []string `toml:"tags"`

	// HistoryLimit is the number of prior messages sent as context
	HistoryLimit int `toml:"history_limit"`
}

// CharacterConfig selects the answer persona.
type CharacterConfig struct {
	// Preset is a named persona, or "custom" when the prompt was edited
	Preset string `toml:"preset"`
	// SystemPrompt is the prompt text actually sent
	SystemPrompt string `toml:"system_prompt"`
}

// StorageConfig holds local file locations. Empty values resolve under
// the config directory.
type StorageConfig struct {
	// HistoryPath is the conversation history file
	HistoryPath string `toml:"history_path"`
	// LogDir holds rotated log and metrics files
	LogDir string `toml:"log_dir"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// DefaultHistoryLimit is the number of prior messages sent with a query,
// covering roughly the last ten exchanges.
const DefaultHistoryLimit = 20

// Default returns the built-in configuration: balanced generation profile,
// retrieval on, no persona.
func Default() *Config {
	cfg := &Config{
		Version: "1.0.0",

		Server: ServerConfig{
			BaseURL:            "http://localhost:8000",
			RequestTimeoutSecs: 30,
		},

		Query: QueryConfig{
			Model:           "",
			Preset:          "balanced",
			UseRAG:          true,
			UseHybridSearch: true,
			QueryExpansion:  false,
			Tags:            []string{},
			HistoryLimit:    DefaultHistoryLimit,
		},

		Character: CharacterConfig{
			Preset:       "none",
			SystemPrompt: "",
		},

		Storage: StorageConfig{},
	}
	cfg.Query.applyProfile(Presets["balanced"])
	return cfg
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the ragchat configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".ragchat"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// HistoryPath resolves the conversation history file location.
func (c *Config) HistoryPath() (string, error) {
	if c.Storage.HistoryPath != "" {
		return c.Storage.HistoryPath, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.json"), nil
}

// LogDir resolves the directory for rotated log and metrics files.
func (c *Config) LogDir() (string, error) {
	if c.Storage.LogDir != "" {
		return c.Storage.LogDir, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "logs"), nil
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load reads the config file, falling back to defaults when absent.
// Environment overrides are applied last, then the result is validated.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := LoadTOML(cfg, path); err != nil {
				return nil, fmt.Errorf("failed to load config: %w", err)
			}
		}
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file over the given config.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to parse TOML config: %w", err)
	}
	return nil
}

// Save writes the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration to a TOML file.
func SaveTOML(cfg *Config, path string) error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	fmt.Fprintln(file, "# ragchat configuration file")
	fmt.Fprintln(file, "# Generated by ragchat - edit with care")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies RAGCHAT_* environment variables over the
// loaded configuration.
func (c *Config) ApplyEnvOverrides() {
	if base := os.Getenv("RAGCHAT_SERVER_URL"); base != "" {
		c.Server.BaseURL = base
	}
	if model := os.Getenv("RAGCHAT_MODEL"); model != "" {
		c.Query.Model = model
	}
	if history := os.Getenv("RAGCHAT_HISTORY_PATH"); history != "" {
		c.Storage.HistoryPath = history
	}
	if logDir := os.Getenv("RAGCHAT_LOG_DIR"); logDir != "" {
		c.Storage.LogDir = logDir
	}
	if debug := os.Getenv("RAGCHAT_DEBUG"); debug != "" {
		c.Debug = debug == "1" || strings.ToLower(debug) == "true"
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if u, err := url.Parse(c.Server.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "server.base_url",
			Message: fmt.Sprintf("invalid URL '%s'", c.Server.BaseURL),
		})
	}
	if c.Server.RequestTimeoutSecs <= 0 {
		errs = append(errs, ValidationError{
			Field:   "server.request_timeout_secs",
			Message: "must be positive",
		})
	}

	if c.Query.Preset != "custom" {
		if _, ok := Presets[c.Query.Preset]; !ok {
			errs = append(errs, ValidationError{
				Field:   "query.preset",
				Message: fmt.Sprintf("unknown preset '%s', must be one of: %s, custom", c.Query.Preset, strings.Join(PresetNames(), ", ")),
			})
		}
	}
	if c.Query.Temperature < 0 || c.Query.Temperature > 2 {
		errs = append(errs, ValidationError{
			Field:   "query.temperature",
			Message: "must be between 0 and 2",
		})
	}
	if c.Query.TopP <= 0 || c.Query.TopP > 1 {
		errs = append(errs, ValidationError{
			Field:   "query.top_p",
			Message: "must be between 0 and 1",
		})
	}
	if c.Query.DocumentCount <= 0 {
		errs = append(errs, ValidationError{
			Field:   "query.document_count",
			Message: "must be positive",
		})
	}
	if c.Query.SearchMultiplier <= 0 {
		errs = append(errs, ValidationError{
			Field:   "query.search_multiplier",
			Message: "must be positive",
		})
	}
	if c.Query.HistoryLimit < 0 {
		errs = append(errs, ValidationError{
			Field:   "query.history_limit",
			Message: "cannot be negative",
		})
	}

	if c.Character.Preset != "custom" {
		if _, ok := CharacterPresets[c.Character.Preset]; !ok {
			errs = append(errs, ValidationError{
				Field:   "character.preset",
				Message: fmt.Sprintf("unknown persona '%s'", c.Character.Preset),
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
