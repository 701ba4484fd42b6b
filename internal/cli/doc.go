// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the ragchat command line: argument parsing,
// the interactive chat REPL, and the one-shot subcommands.
package cli
