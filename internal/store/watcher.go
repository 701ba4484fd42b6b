// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the store when another process rewrites the history
// file, so two running instances converge on the same state the way two
// browser tabs sharing storage do.
type Watcher struct {
	store    *Store
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	onReload func()
	done     chan struct{}
}

// Watch starts watching the store's file. onReload, if non-nil, runs
// after every successful reload; it is called from the watcher goroutine.
func Watch(s *Store, logger *slog.Logger, onReload func()) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the directory, not the file: atomic rename replaces the
	// inode, which would silently detach a file watch.
	if err := fw.Add(filepath.Dir(s.Path())); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		store:    s,
		watcher:  fw,
		logger:   logger,
		onReload: onReload,
		done:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}

func (w *Watcher) run() {
	defer close(w.done)

	target := filepath.Clean(w.store.Path())
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if err := w.store.reload(); err != nil {
				w.logger.Warn("failed to reload history after external change", "error", err)
				continue
			}
			w.logger.Debug("history reloaded after external change")
			if w.onReload != nil {
				w.onReload()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("history watcher error", "error", err)
		}
	}
}
