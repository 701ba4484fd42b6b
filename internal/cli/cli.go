// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information (set at build time)
var (
	Version   = "1.0.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command identifies the selected subcommand.
type Command int

const (
	CmdChat Command = iota // interactive REPL, the default
	CmdAsk
	CmdModels
	CmdDocs
	CmdHealth
	CmdConfig
	CmdExport
	CmdVersion
	CmdHelp
)

// Args carries the parsed arguments for a command.
type Args struct {
	// Raw is everything after the command word
	Raw []string
	// Question is the joined free text for ask
	Question string
	// Model overrides the configured model for this invocation
	Model string
}

// Parse reads os.Args and selects the command.
func Parse() (Command, Args) {
	argv := os.Args[1:]
	var args Args

	if len(argv) == 0 {
		return CmdChat, args
	}

	cmd := strings.ToLower(argv[0])
	rest := argv[1:]
	args.Raw = rest

	switch cmd {
	case "chat":
		return CmdChat, args

	case "ask":
		parseAskArgs(&args, rest)
		return CmdAsk, args

	case "models":
		return CmdModels, args

	case "docs", "documents":
		return CmdDocs, args

	case "config":
		return CmdConfig, args

	case "export":
		return CmdExport, args

	case "health", "status":
		return CmdHealth, args

	case "version", "--version", "-v":
		return CmdVersion, args

	case "help", "--help", "-h":
		return CmdHelp, args

	default:
		// Bare text is a question: `ragchat why is the sky blue`
		args.Question = strings.Join(argv, " ")
		return CmdAsk, args
	}
}

func parseAskArgs(args *Args, rest []string) {
	var words []string
	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case "--model", "-m":
			if i+1 < len(rest) {
				args.Model = rest[i+1]
				i++
			}
		default:
			words = append(words, rest[i])
		}
	}
	args.Question = strings.Join(words, " ")
}

// PrintUsage prints command help.
func PrintUsage() {
	fmt.Print(`ragchat - chat with your documents

Usage:
  ragchat                   Start the interactive chat
  ragchat ask <question>    Ask one question and exit
  ragchat models            List available models
  ragchat docs              Show the document index
  ragchat health            Check the answer service
  ragchat config            Show the active configuration
  ragchat export [html|md]  Export the current conversation to a file
  ragchat version           Print version information

Options for ask:
  -m, --model <name>        Override the configured model

Environment:
  RAGCHAT_SERVER_URL        Answer service URL (default http://localhost:8000)
  RAGCHAT_MODEL             Model override
  RAGCHAT_DEBUG             Enable debug logging
`)
}

// PrintVersion prints build information.
func PrintVersion() {
	fmt.Printf("ragchat %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
}
