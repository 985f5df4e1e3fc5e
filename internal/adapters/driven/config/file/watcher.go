package file

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/storefront-labs/channelsync/internal/logger"
)

// debounceDelay coalesces the write bursts editors produce into one
// reload.
const debounceDelay = 250 * time.Millisecond

// Watch reloads the configuration whenever the file changes and calls
// onChange with the new value. Blocks until ctx is cancelled. The
// config directory is watched rather than the file itself, so
// rename-based atomic writes are picked up.
func Watch(ctx context.Context, configDir string, onChange func(*Config)) error {
	path, err := Path(configDir)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching config directory: %w", err)
	}

	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != path {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounceDelay, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			cfg, err := Load(configDir)
			if err != nil {
				logger.Warn("config: reload failed: %v", err)
				continue
			}
			logger.Info("config: reloaded %s", path)
			onChange(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config: watch error: %v", err)
		}
	}
}
