// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"github.com/jeranaias/ragchat/internal/config"
	"github.com/jeranaias/ragchat/internal/control"
	"github.com/jeranaias/ragchat/internal/session"
	"github.com/jeranaias/ragchat/internal/telemetry"
	"github.com/jeranaias/ragchat/internal/util"
)

// RunChat runs the interactive REPL until the user exits.
func RunChat(app *App) error {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	defer line.Close()

	historyFile := loadInputHistory(line)
	defer saveInputHistory(line, historyFile)

	fmt.Printf("ragchat %s - type a question, /help for commands\n", Version)
	printHealth(app)

	for {
		input, err := line.Prompt("ragchat> ")
		if err != nil {
			// Ctrl+C at the prompt or EOF: exit cleanly.
			fmt.Println()
			return nil
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if strings.HasPrefix(input, "/") {
			if quit := runCommand(app, input); quit {
				return nil
			}
			continue
		}

		askStreaming(app, input)
	}
}

// =============================================================================
// STREAMING DISPLAY
// =============================================================================

// askStreaming sends a question and prints the answer as it arrives.
// Ctrl+C mid-stream cancels generation but keeps the partial answer.
func askStreaming(app *App, question string) {
	chatID, err := app.CurrentChatID()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}

	var lastRecord *control.Record
	sess, err := app.Sessions.Ask(context.Background(), chatID, question, session.Events{
		OnText: func(_, delta string) {
			fmt.Print(delta)
		},
		OnControl: func(rec *control.Record) {
			lastRecord = rec
		},
		OnTelemetry: func(snap telemetry.Snapshot) {
			fmt.Printf("\n\n(%.1fs to first token, %.1f chars/s)\n", snap.ResponseTime, snap.Speed)
		},
		OnError: func(err error) {
			fmt.Fprintf(os.Stderr, "\n%v\n", err)
		},
	})
	if err != nil {
		if errors.Is(err, session.ErrSessionActive) {
			fmt.Fprintln(os.Stderr, "a generation is already running")
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}

	// Ctrl+C while streaming aborts this answer only.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT)
	done := make(chan struct{})
	go func() {
		select {
		case <-sigCh:
			sess.Cancel()
		case <-done:
		}
	}()

	sess.Wait()
	close(done)
	signal.Stop(sigCh)

	if sess.State() == session.StateAborted {
		fmt.Printf("\n%s\n", session.StoppedMarker)
	}
	if lastRecord != nil {
		printSources(lastRecord)
	}
	fmt.Println()
}

func printSources(rec *control.Record) {
	cites := rec.Citations()
	if len(cites) == 0 {
		return
	}
	fmt.Println("\nSources:")
	for _, c := range cites {
		if c.Score > 0 {
			fmt.Printf("  %s (%.2f)\n", c.Source, c.Score)
		} else {
			fmt.Printf("  %s\n", c.Source)
		}
	}
	if rec.QualityScore > 0 {
		fmt.Printf("Quality: %d/100\n", rec.QualityScore)
	}
}

// =============================================================================
// REPL COMMANDS
// =============================================================================

// runCommand executes one slash command. Returns true to exit the REPL.
func runCommand(app *App, input string) bool {
	fields := strings.Fields(input)
	cmd := fields[0]
	args := fields[1:]

	switch cmd {
	case "/quit", "/exit", "/q":
		return true

	case "/help", "/?":
		printREPLHelp()

	case "/new":
		if _, err := app.Store.NewChat(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
		fmt.Println("started a new conversation")

	case "/list", "/ls":
		listChats(app)

	case "/open":
		openChat(app, args)

	case "/rename":
		renameChat(app, args)

	case "/delete", "/rm":
		deleteChat(app, args)

	case "/clear":
		if err := app.Store.ClearAll(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
		fmt.Println("history cleared")

	case "/regen", "/regenerate":
		regenerate(app)

	case "/models":
		if err := HandleModels(app); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}

	case "/docs":
		if err := HandleDocs(app); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}

	case "/health":
		printHealth(app)

	case "/export":
		if err := HandleExport(app, Args{Raw: args}); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}

	case "/preset":
		applyPreset(app, args)

	case "/persona":
		applyPersona(app, args)

	default:
		fmt.Fprintf(os.Stderr, "unknown command %s (try /help)\n", cmd)
	}
	return false
}

func printREPLHelp() {
	fmt.Print(`Commands:
  /new                start a new conversation
  /list               list conversations
  /open <n|id>        switch conversation
  /rename <title>     rename the current conversation
  /delete [n|id]      delete a conversation (default: current)
  /clear              delete all conversations
  /regen              regenerate the last answer
  /export [html|md]   export the current conversation to a file
  /models             list available models
  /docs               show the document index
  /health             check the answer service
  /preset <name>      apply a generation preset (balanced, fast, accurate)
  /persona <name>     apply an answer persona (none, samurai, gal, kansai, cat, moe)
  /quit               exit

Anything else is sent as a question. Ctrl+C stops a running answer.
`)
}

func listChats(app *App) {
	chats := app.Store.List()
	if len(chats) == 0 {
		fmt.Println("no conversations yet")
		return
	}
	current := ""
	if cur := app.Store.Current(); cur != nil {
		current = cur.ID
	}
	for i, c := range chats {
		marker := " "
		if c.ID == current {
			marker = "*"
		}
		fmt.Printf("%s %2d  %-34s %3d messages  %s\n",
			marker, i+1, util.TruncateRunes(c.Title, 34), len(c.Messages),
			c.UpdatedAt.Format("2006-01-02 15:04"))
	}
}

// resolveChat accepts a list index (as shown by /list) or a full ID.
func resolveChat(app *App, arg string) (string, bool) {
	chats := app.Store.List()
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(chats) {
			fmt.Fprintf(os.Stderr, "no conversation %d\n", n)
			return "", false
		}
		return chats[n-1].ID, true
	}
	for _, c := range chats {
		if c.ID == arg {
			return c.ID, true
		}
	}
	fmt.Fprintf(os.Stderr, "no conversation %q\n", arg)
	return "", false
}

func openChat(app *App, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: /open <n|id>")
		return
	}
	id, ok := resolveChat(app, args[0])
	if !ok {
		return
	}
	if err := app.Store.Select(id); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	replayChat(app)
}

// replayChat prints the selected conversation so switching feels like
// picking up where it left off.
func replayChat(app *App) {
	conv := app.Store.Current()
	if conv == nil {
		return
	}
	fmt.Printf("-- %s --\n", conv.Title)
	for _, msg := range conv.Messages {
		fmt.Printf("%s: %s\n", msg.Role.DisplayName(), msg.Content)
	}
}

func renameChat(app *App, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: /rename <title>")
		return
	}
	cur := app.Store.Current()
	if cur == nil {
		fmt.Fprintln(os.Stderr, "no conversation selected")
		return
	}
	if err := app.Store.Rename(cur.ID, strings.Join(args, " ")); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
}

func deleteChat(app *App, args []string) {
	var id string
	if len(args) == 0 {
		cur := app.Store.Current()
		if cur == nil {
			fmt.Fprintln(os.Stderr, "no conversation selected")
			return
		}
		id = cur.ID
	} else {
		var ok bool
		if id, ok = resolveChat(app, args[0]); !ok {
			return
		}
	}
	if err := app.Store.Delete(id); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	fmt.Println("deleted")
}

func regenerate(app *App) {
	cur := app.Store.Current()
	if cur == nil {
		fmt.Fprintln(os.Stderr, "no conversation selected")
		return
	}

	sess, err := app.Sessions.Regenerate(context.Background(), cur.ID, session.Events{
		OnText: func(_, delta string) {
			fmt.Print(delta)
		},
		OnError: func(err error) {
			fmt.Fprintf(os.Stderr, "\n%v\n", err)
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	sess.Wait()
	fmt.Println()
}

func applyPreset(app *App, args []string) {
	if len(args) != 1 {
		fmt.Printf("usage: /preset <%s>\n", strings.Join(config.PresetNames(), "|"))
		return
	}
	if err := app.Config.ApplyPreset(args[0]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if err := config.Save(app.Config); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not save config: %v\n", err)
	}
	fmt.Printf("preset %s applied\n", args[0])
}

func applyPersona(app *App, args []string) {
	if len(args) != 1 {
		fmt.Printf("usage: /persona <%s>\n", strings.Join(config.CharacterPresetNames(), "|"))
		return
	}
	if err := app.Config.ApplyCharacterPreset(args[0]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if err := config.Save(app.Config); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not save config: %v\n", err)
	}
	fmt.Printf("persona %s applied\n", args[0])
}

// =============================================================================
// INPUT HISTORY
// =============================================================================

func loadInputHistory(line *liner.State) string {
	dir, err := config.ConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	historyFile := filepath.Join(dir, "input_history")
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	return historyFile
}

func saveInputHistory(line *liner.State, historyFile string) {
	if err := os.MkdirAll(filepath.Dir(historyFile), 0755); err != nil {
		return
	}
	if f, err := os.Create(historyFile); err == nil {
		line.WriteHistory(f)
		f.Close()
	}
}
