// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for ragchat.
//
// Configuration is TOML with sensible defaults, environment variable
// overrides, and validation. File location:
//   - ~/.ragchat/config.toml
//   - Built-in defaults when absent
//
// Generation presets bundle the sampling and retrieval knobs into three
// named profiles; character presets swap the system prompt for a persona.
package config
