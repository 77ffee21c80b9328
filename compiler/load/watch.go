package load

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses the bursts of events editors emit on save.
const DefaultDebounce = 100 * time.Millisecond

// Watcher calls a reload function whenever a schema file changes.
type Watcher struct {
	path     string
	reload   func(context.Context) error
	logger   *slog.Logger
	debounce time.Duration
}

// NewWatcher returns a watcher for the file at path.
func NewWatcher(path string, reload func(context.Context) error) *Watcher {
	return &Watcher{
		path:     path,
		reload:   reload,
		logger:   slog.Default(),
		debounce: DefaultDebounce,
	}
}

// WithLogger sets the logger used for reload failures.
func (w *Watcher) WithLogger(l *slog.Logger) *Watcher {
	if l != nil {
		w.logger = l
	}
	return w
}

// WithDebounce sets the quiet period before a reload.
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	w.debounce = d
	return w
}

// Run blocks until ctx is done. Reloads run on the calling goroutine, one at
// a time. A failed reload is logged and watching continues.
func (w *Watcher) Run(ctx context.Context) error {
	target, err := filepath.Abs(w.path)
	if err != nil {
		return fmt.Errorf("load: watch %s: %w", w.path, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("load: create watcher: %w", err)
	}
	defer fw.Close()
	// Editors replace files on save, so the directory is watched.
	dir := filepath.Dir(target)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("load: watch directory %s: %w", dir, err)
	}
	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			pending = timer.C
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "file", w.path, "error", err)
		case <-pending:
			pending = nil
			w.logger.Info("schema changed", "file", w.path)
			if err := w.reload(ctx); err != nil {
				w.logger.Error("reload failed", "file", w.path, "error", err)
			}
		}
	}
}
