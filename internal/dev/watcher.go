// Package dev reloads a served app when its local files change.
//
//	w := dev.NewWatcher(dev.WatcherConfig{Files: dev.LocalFiles(manifest, template)})
//	w.OnChange(func(changes []dev.Change) { reload() })
//	if err := w.Start(ctx); err != nil {
//	    return err
//	}
//	defer w.Stop()
package dev

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrNoFiles is returned by Start when there is nothing to watch.
var ErrNoFiles = errors.New("dev: no local files to watch")

// Change represents a detected file change.
type Change struct {
	Path string
	Op   fsnotify.Op
}

// WatcherConfig configures the file watcher.
type WatcherConfig struct {
	// Files are the files to watch. Their directories are watched so that
	// editors replacing a file on save are seen.
	Files []string

	// Debounce is the quiet period after the last event before OnChange
	// runs. Default: 100ms.
	Debounce time.Duration

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Watcher monitors files for changes.
type Watcher struct {
	config   WatcherConfig
	files    map[string]bool
	logger   *slog.Logger
	mu       sync.Mutex
	onChange func([]Change)
	running  bool
	fsw      *fsnotify.Watcher
	done     chan struct{}
}

// NewWatcher creates a new file watcher.
func NewWatcher(config WatcherConfig) *Watcher {
	if config.Debounce == 0 {
		config.Debounce = 100 * time.Millisecond
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	files := make(map[string]bool, len(config.Files))
	for _, f := range config.Files {
		if abs, err := filepath.Abs(f); err == nil {
			files[abs] = true
		}
	}
	return &Watcher{
		config: config,
		files:  files,
		logger: logger.With("component", "watcher"),
	}
}

// OnChange sets the callback for file changes. It receives every change
// of one debounce window, one entry per file.
func (w *Watcher) OnChange(fn func([]Change)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Start begins watching in the background. Watching ends when ctx is done
// or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}
	if len(w.files) == 0 {
		return ErrNoFiles
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	for _, dir := range w.dirs() {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return err
		}
	}

	w.fsw = fsw
	w.done = make(chan struct{})
	w.running = true
	go w.loop(ctx, fsw, w.done)
	return nil
}

// Stop stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	fsw, done := w.fsw, w.done
	w.mu.Unlock()

	fsw.Close()
	<-done
}

// IsRunning reports whether the watcher is running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Watcher) dirs() []string {
	seen := make(map[string]bool)
	for f := range w.files {
		seen[filepath.Dir(f)] = true
	}
	out := make([]string, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher, done chan struct{}) {
	defer close(done)

	timer := time.NewTimer(w.config.Debounce)
	timer.Stop()
	defer timer.Stop()

	pending := make(map[string]fsnotify.Op)
	for {
		select {
		case <-ctx.Done():
			fsw.Close()
			w.mu.Lock()
			w.running = false
			w.mu.Unlock()
			return

		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			abs, err := filepath.Abs(ev.Name)
			if err != nil || !w.files[abs] || ev.Op == fsnotify.Chmod {
				continue
			}
			pending[abs] |= ev.Op
			timer.Reset(w.config.Debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err)

		case <-timer.C:
			changes := make([]Change, 0, len(pending))
			for p, op := range pending {
				changes = append(changes, Change{Path: p, Op: op})
			}
			sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
			pending = make(map[string]fsnotify.Op)

			w.mu.Lock()
			fn := w.onChange
			w.mu.Unlock()
			if fn != nil && len(changes) > 0 {
				w.logger.Debug("files changed", "count", len(changes))
				fn(changes)
			}
		}
	}
}

// LocalFiles returns the local paths among uris: plain paths and file://
// URIs. Other schemes cannot be watched and are skipped.
func LocalFiles(uris ...string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, u := range uris {
		if u == "" {
			continue
		}
		path := u
		if scheme, rest, ok := strings.Cut(u, "://"); ok {
			if strings.ToLower(scheme) != "file" {
				continue
			}
			path = rest
		}
		path = filepath.Clean(path)
		if !seen[path] {
			seen[path] = true
			out = append(out, path)
		}
	}
	return out
}
