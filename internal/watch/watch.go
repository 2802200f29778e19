// Package watch reports changes to a single file made by other processes,
// coalescing bursts of filesystem events into one notification.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDelay is the quiet period before a burst of events is reported.
const DefaultDelay = 300 * time.Millisecond

// Watcher watches one file. The parent directory is watched so that
// atomic replacements (write temp file, rename over) are seen.
type Watcher struct {
	fw     *fsnotify.Watcher
	path   string
	delay  time.Duration
	logger *slog.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		w.logger = l
	}
}

// WithDelay sets the debounce window.
func WithDelay(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.delay = d
		}
	}
}

// New starts watching path. The file need not exist yet, but its
// directory must.
func New(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve %s: %w", path, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch: add %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		fw:     fw,
		path:   abs,
		delay:  DefaultDelay,
		logger: slog.Default().With("module", "menu.watch"),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With("file", abs)
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

// Run calls changed after each burst of events on the file, on the calling
// goroutine, until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context, changed func()) error {
	timer := time.NewTimer(w.delay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("file event", "op", event.Op.String())
			timer.Reset(w.delay)

		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)

		case <-timer.C:
			changed()
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	// Permission changes do not alter content.
	return event.Op != fsnotify.Chmod
}

// Close stops watching. A blocked Run returns nil.
func (w *Watcher) Close() error {
	return w.fw.Close()
}
