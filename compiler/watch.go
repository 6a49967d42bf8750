package compiler

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch recompiles each of the given files whenever it changes, until ctx is
// canceled. Compilation failures are reported and watching continues; only
// watcher breakage ends the loop early.
func (c *Compiler) Watch(ctx context.Context, paths []string) error {
	logger := c.logger.WithGroup("watch")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// Watch directories rather than the files themselves: editors that
	// rename-and-replace would otherwise silently detach the watch.
	watched := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", path, err)
		}
		watched[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	// Initial build before settling into the loop.
	for _, path := range paths {
		if _, err := c.CompileFile(ctx, path); err != nil {
			logger.Warn("initial compilation failed", "file", path, "error", err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || !watched[abs] {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			logger.Info("change detected", "file", abs)
			if _, err := c.CompileFile(ctx, abs); err != nil {
				logger.Warn("recompilation failed", "file", abs, "error", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)
		}
	}
}
