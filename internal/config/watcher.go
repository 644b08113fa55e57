// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow collapses editor write bursts (truncate + write +
// chmod) into a single reload.
const debounceWindow = 250 * time.Millisecond

// =============================================================================
// CONFIG WATCHER
// =============================================================================

// Watcher reloads the config file when it changes on disk. Reloaded
// configs arrive on C; the channel holds only the latest snapshot, so a
// slow consumer sees the newest state rather than a backlog.
//
// The watch is on the parent directory, not the file itself: editors
// that save via rename would otherwise silently detach the watch.
type Watcher struct {
	C <-chan *Config

	path    string
	fsw     *fsnotify.Watcher
	out     chan *Config
	ctx     context.Context
	cancel  context.CancelFunc
	mu      sync.Mutex
	pending *time.Timer
}

// NewWatcher starts watching the config file at path. Callers must
// Close the watcher when done.
func NewWatcher(path string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		fsw.Close()
		return nil, err
	}

	if err := fsw.Add(filepath.Dir(absPath)); err != nil {
		fsw.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan *Config, 1)

	w := &Watcher{
		C:      out,
		path:   absPath,
		fsw:    fsw,
		out:    out,
		ctx:    ctx,
		cancel: cancel,
	}
	go w.processEvents()
	return w, nil
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	w.cancel()
	w.mu.Lock()
	if w.pending != nil {
		w.pending.Stop()
	}
	w.mu.Unlock()
	return w.fsw.Close()
}

func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.isConfigEvent(event) {
				continue
			}
			w.scheduleReload()
		case _, ok := <-w.fsw.Errors:
			// Watch errors are transient on the platforms we care
			// about; the next successful event resyncs state.
			if !ok {
				return
			}
		}
	}
}

func (w *Watcher) isConfigEvent(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// scheduleReload arms (or re-arms) the debounce timer.
func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending != nil {
		w.pending.Stop()
	}
	w.pending = time.AfterFunc(debounceWindow, w.reload)
}

// reload parses the file and publishes the result. A file mid-edit may
// fail to parse; the previous config stays in effect and the next write
// retries.
func (w *Watcher) reload() {
	if w.ctx.Err() != nil {
		return
	}

	cfg, err := LoadFrom(w.path)
	if err != nil {
		return
	}

	// Replace any unconsumed snapshot instead of blocking.
	select {
	case <-w.out:
	default:
	}
	select {
	case w.out <- cfg:
	default:
	}
}
