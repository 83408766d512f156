// Package reload watches the config file and signals changes, debounced,
// so runtime-tunable settings can be swapped without a restart.
package reload

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceDelay = 200 * time.Millisecond

// Watch starts an fsnotify watcher on the directory containing path and
// invokes onChange after writes to that file settle. Watching the parent
// directory survives the replace-on-save pattern editors and config
// management tools use. Watch blocks until ctx is cancelled.
func Watch(ctx context.Context, path string, logger *slog.Logger, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(absPath)); err != nil {
		return err
	}

	logger.Info("config watcher: started", slog.String("path", absPath))

	// debounceTimer coalesces the event bursts a single save produces.
	var debounceTimer *time.Timer
	var debounceCh <-chan time.Time

	scheduleChange := func() {
		if debounceTimer == nil {
			debounceTimer = time.NewTimer(debounceDelay)
			debounceCh = debounceTimer.C
		} else {
			debounceTimer.Reset(debounceDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			logger.Info("config watcher: stopped")
			return nil

		case <-debounceCh:
			if onChange != nil {
				onChange()
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != absPath {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("config watcher: change detected", slog.String("op", ev.Op.String()))
			scheduleChange()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
