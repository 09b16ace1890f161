// Package watch reruns a callback whenever a configuration file changes.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last event before the
// callback runs.
const DefaultDebounce = 100 * time.Millisecond

// FileWatcher watches a single file. The parent directory is watched so
// that editors which save by renaming a temporary file are still seen.
type FileWatcher struct {
	path     string
	debounce time.Duration
	logger   *slog.Logger
}

// NewFileWatcher creates a watcher for path. A non-positive debounce
// selects DefaultDebounce and a nil logger discards output.
func NewFileWatcher(path string, debounce time.Duration, logger *slog.Logger) *FileWatcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &FileWatcher{path: filepath.Clean(path), debounce: debounce, logger: logger}
}

// Run blocks until ctx is done, calling onChange once per burst of writes
// to the file. Callback errors are logged and watching continues.
func (w *FileWatcher) Run(ctx context.Context, onChange func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.path, err)
	}
	w.logger.Info("watching selector file", "path", w.path, "debounce_ms", w.debounce.Milliseconds())

	var (
		timer *time.Timer
		fire  <-chan time.Time
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

		case event, ok := <-watcher.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("file event", "path", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if err := onChange(); err != nil {
				w.logger.Error("reload failed", "path", w.path, "error", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			w.logger.Error("file watcher error", "error", err)
		}
	}
}

func (w *FileWatcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}
