// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jeranaias/ragchat/internal/export"
	"github.com/jeranaias/ragchat/internal/ragclient"
)

// HandleAsk answers one question without entering the REPL. The answer
// still lands in the conversation history.
func HandleAsk(app *App, args Args) error {
	if strings.TrimSpace(args.Question) == "" {
		return fmt.Errorf("usage: ragchat ask <question>")
	}
	if args.Model != "" {
		app.Config.Query.Model = args.Model
	}

	askStreaming(app, args.Question)
	return nil
}

// HandleModels lists the models the service can generate with.
func HandleModels(app *App) error {
	models, err := app.Client.ListModels(context.Background())
	if err != nil {
		return serviceError("could not list models", err)
	}
	if len(models) == 0 {
		fmt.Println("no models available")
		return nil
	}
	for _, m := range models {
		marker := " "
		if m == app.Config.Query.Model {
			marker = "*"
		}
		fmt.Printf("%s %s\n", marker, m)
	}
	return nil
}

// HandleDocs shows the document index summary and the indexed documents.
func HandleDocs(app *App) error {
	ctx := context.Background()

	stats, err := app.Client.DocumentStats(ctx)
	if err != nil {
		return serviceError("could not read document stats", err)
	}
	fmt.Printf("%d documents, %d chunks\n", stats.TotalDocuments, stats.TotalChunks)
	if len(stats.Tags) > 0 {
		fmt.Printf("tags: %s\n", strings.Join(stats.Tags, ", "))
	}

	docs, err := app.Client.ListDocuments(ctx, 100, 0, app.Config.Query.Tags)
	if err != nil {
		return serviceError("could not list documents", err)
	}
	for _, d := range docs {
		source := d.ID
		if s, ok := d.Metadata["source"].(string); ok && s != "" {
			source = s
		}
		fmt.Printf("  %s\n", source)
	}
	return nil
}

// HandleHealth checks the answer service and reports backend status.
func HandleHealth(app *App) error {
	printHealth(app)
	return nil
}

func printHealth(app *App) {
	h, err := app.Client.Health(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "service unreachable at %s: %v\n", app.Client.BaseURL(), err)
		return
	}
	backend := "backend unavailable"
	if h.OllamaAvailable {
		backend = "backend available"
	}
	fmt.Printf("service %s at %s (%s)\n", h.Status, app.Client.BaseURL(), backend)
}

// HandleConfig prints the active configuration.
func HandleConfig(app *App) error {
	cfg := app.Config
	fmt.Printf("server:   %s (timeout %ds)\n", cfg.Server.BaseURL, cfg.Server.RequestTimeoutSecs)
	model := cfg.Query.Model
	if model == "" {
		model = "(service default)"
	}
	fmt.Printf("model:    %s\n", model)
	fmt.Printf("preset:   %s (temp %.2f, top_p %.2f, %d docs)\n",
		cfg.Query.Preset, cfg.Query.Temperature, cfg.Query.TopP, cfg.Query.DocumentCount)
	fmt.Printf("persona:  %s\n", cfg.Character.Preset)
	fmt.Printf("rag:      %v (hybrid %v, expansion %v)\n",
		cfg.Query.UseRAG, cfg.Query.UseHybridSearch, cfg.Query.QueryExpansion)
	if len(cfg.Query.Tags) > 0 {
		fmt.Printf("tags:     %s\n", strings.Join(cfg.Query.Tags, ", "))
	}
	if path, err := cfg.HistoryPath(); err == nil {
		fmt.Printf("history:  %s\n", path)
	}
	return nil
}

// HandleExport writes the current conversation to a file in the working
// directory. The format defaults to HTML; "md" selects Markdown.
func HandleExport(app *App, args Args) error {
	conv := app.Store.Current()
	if conv == nil {
		return fmt.Errorf("no conversation to export")
	}

	target := "html"
	if len(args.Raw) > 0 {
		target = strings.ToLower(args.Raw[0])
	}

	var path string
	var err error
	switch target {
	case "html":
		path, err = export.ExportHTML(conv, nil)
	case "md", "markdown":
		path, err = export.ExportMarkdown(conv, nil)
	default:
		return fmt.Errorf("unknown export format %q (want html or md)", target)
	}
	if err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", path)
	return nil
}

// serviceError turns client failures into messages that tell the user
// what to do, not just what broke.
func serviceError(msg string, err error) error {
	if ragclient.IsConnection(err) {
		return fmt.Errorf("%s: answer service unreachable - is it running?", msg)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
