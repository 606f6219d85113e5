package config

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the config file whenever it changes on disk and invokes
// onChange with each successfully parsed Config. This is how retention policy
// edits reach a running scheduler without a restart.
//
// The watch is placed on the containing directory rather than the file itself:
// editors and config tools typically replace the file, which would silently
// drop an inode-level watch. A reload that fails to parse is logged and
// skipped; the previous configuration stays in effect.
//
// The returned stop function releases the watcher.
func (c *Configer) Watch(onChange func(*Config), logger *slog.Logger) (func(), error) {
	if c.targetPath == "" {
		return nil, errors.New("no config file to watch")
	}

	if onChange == nil {
		return nil, errors.New("nil onChange callback")
	}

	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating config watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(c.targetPath)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching config dir: %w", err)
	}

	done := make(chan struct{})

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != c.targetPath {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}

				cfg, err := c.LoadConfig()
				if err != nil {
					logger.Error("reloading config", "path", c.targetPath, "error", err)
					continue
				}

				logger.Info("config reloaded", "path", c.targetPath)
				onChange(cfg)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Error("config watcher", "error", err)

			case <-done:
				return
			}
		}
	}()

	stop := func() {
		close(done)
		watcher.Close()
	}

	return stop, nil
}
