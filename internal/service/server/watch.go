package server

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/oshokin/clearmob/internal/domain/control"
	"github.com/oshokin/clearmob/internal/logger"
)

// DefaultWatchDebounce collapses the burst of events an editor produces on save.
const DefaultWatchDebounce = 500 * time.Millisecond

// reloader is implemented by the service.
type reloader interface {
	Reload(ctx context.Context) error
}

// watchConfig reloads the configuration whenever the file at path changes,
// until ctx is canceled. The parent directory is watched so that editors
// replacing the file by rename are noticed too.
func watchConfig(ctx context.Context, path string, target reloader, debounce time.Duration) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		_ = watcher.Close()

		return fmt.Errorf("resolve config path: %w", err)
	}

	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		_ = watcher.Close()

		return fmt.Errorf("watch config directory: %w", err)
	}

	ctx = logger.WithKV(logger.WithName(ctx, "watcher"), "config", absPath, "actor", control.SystemActor)

	go runWatcher(ctx, watcher, absPath, target, debounce)

	logger.Info(ctx, "Watching configuration file")

	return nil
}

func runWatcher(
	ctx context.Context,
	watcher *fsnotify.Watcher,
	path string,
	target reloader,
	debounce time.Duration,
) {
	defer func() {
		_ = watcher.Close()
	}()

	// A stopped timer with a drained channel: it only fires after the first event.
	timer := time.NewTimer(debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()

			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			if filepath.Clean(event.Name) != path || !event.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}

			logger.DebugKV(ctx, "Configuration file changed", "op", event.Op.String())
			timer.Reset(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}

			logger.WarnKV(ctx, "Config watcher error", "error", err)
		case <-timer.C:
			if err := target.Reload(ctx); err != nil {
				logger.WarnKV(ctx, "Automatic reload failed", "error", err)

				continue
			}

			logger.Info(ctx, "Configuration reloaded after file change")
		}
	}
}
