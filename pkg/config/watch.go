package config

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/peerdex/peerdex/internal/logger"
)

// WatchLogging watches the config file and applies logging changes to the
// running process without a restart. Only the logging section is applied;
// everything else requires a restart and is ignored here.
//
// The parent directory is watched rather than the file itself so that
// editors and config tools that replace the file atomically (write to
// temp, rename over) keep triggering events.
//
// Returns a stop function that releases the watcher.
func WatchLogging(path string) (func() error, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create config watcher: %w", err)
	}

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	target := filepath.Clean(path)
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}

				cfg, err := Load(path)
				if err != nil {
					logger.Warn("ignoring config change", logger.KeyError, err)
					continue
				}
				logger.SetLevel(cfg.Logging.Level)
				logger.SetFormat(cfg.Logging.Format)
				logger.Debug("logging configuration reloaded",
					"level", cfg.Logging.Level,
					"format", cfg.Logging.Format)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("config watcher error", logger.KeyError, err)
			}
		}
	}()

	return watcher.Close, nil
}
