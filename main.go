// ragchat - a terminal client for a retrieval-augmented answer service.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"

	"github.com/jeranaias/ragchat/internal/cli"
)

// Version information (set at build time)
var (
	Version   = "1.0.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdVersion:
		cli.PrintVersion()
		return
	case cli.CmdHelp:
		cli.PrintUsage()
		return
	}

	// The REPL keeps the history watcher running; one-shot commands
	// skip it.
	app, err := cli.NewApp(cmd == cli.CmdChat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ragchat: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	switch cmd {
	case cli.CmdChat:
		err = cli.RunChat(app)
	case cli.CmdAsk:
		err = cli.HandleAsk(app, args)
	case cli.CmdModels:
		err = cli.HandleModels(app)
	case cli.CmdDocs:
		err = cli.HandleDocs(app)
	case cli.CmdHealth:
		err = cli.HandleHealth(app)
	case cli.CmdConfig:
		err = cli.HandleConfig(app)
	case cli.CmdExport:
		err = cli.HandleExport(app, args)
	default:
		cli.PrintUsage()
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "ragchat: %v\n", err)
		os.Exit(1)
	}
}
