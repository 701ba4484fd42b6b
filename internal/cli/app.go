// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jeranaias/ragchat/internal/config"
	"github.com/jeranaias/ragchat/internal/logging"
	"github.com/jeranaias/ragchat/internal/ragclient"
	"github.com/jeranaias/ragchat/internal/session"
	"github.com/jeranaias/ragchat/internal/store"
	"github.com/jeranaias/ragchat/internal/telemetry"
)

// App wires the pieces every command needs: config, logging, metrics,
// the conversation store, and the service client.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Store    *store.Store
	Client   *ragclient.Client
	Sessions *session.Manager

	watcher *store.Watcher
	cleanup []func()
}

// NewApp builds the application from configuration. watch controls the
// history file watcher; one-shot commands skip it.
func NewApp(watch bool) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logDir, err := cfg.LogDir()
	if err != nil {
		return nil, err
	}
	logger, err := logging.Init(logDir, cfg.Debug)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, Logger: logger}

	metrics, metricsCleanup, err := telemetry.InitMetrics(context.Background(), logDir)
	if err != nil {
		// Metrics are a convenience; the chat works without them.
		logger.Warn("metrics disabled", "error", err)
		metrics = nil
	} else {
		app.cleanup = append(app.cleanup, metricsCleanup)
	}

	historyPath, err := cfg.HistoryPath()
	if err != nil {
		return nil, err
	}
	st, err := store.Open(historyPath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	app.Store = st

	if watch {
		w, err := store.Watch(st, logger, nil)
		if err != nil {
			logger.Warn("history watcher disabled", "error", err)
		} else {
			app.watcher = w
		}
	}

	timeout := time.Duration(cfg.Server.RequestTimeoutSecs) * time.Second
	app.Client = ragclient.New(cfg.Server.BaseURL, timeout, logger)
	app.Sessions = session.NewManager(st, app.Client, cfg, metrics, logger)
	return app, nil
}

// Close flushes metrics and stops the watcher.
func (a *App) Close() {
	if a.watcher != nil {
		a.watcher.Close()
	}
	for _, fn := range a.cleanup {
		fn()
	}
}

// CurrentChatID returns the selected conversation, creating one when the
// history is empty.
func (a *App) CurrentChatID() (string, error) {
	if cur := a.Store.Current(); cur != nil {
		return cur.ID, nil
	}
	conv, err := a.Store.NewChat()
	if err != nil {
		a.Logger.Warn("could not persist new conversation", "error", err)
	}
	if conv == nil {
		return "", fmt.Errorf("failed to create conversation")
	}
	return conv.ID, nil
}
