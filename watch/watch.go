// Package watch re-runs a callback when files under watched paths change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long to wait for more events before calling back,
// editors tend to produce several events for a single save.
const DefaultDebounce = 200 * time.Millisecond

// Run watches paths (directories are watched recursively, hidden ones are
// skipped) and calls onChange after changes settle for debounce. It blocks
// until ctx is done, returning nil, or the watcher fails.
func Run(ctx context.Context, paths []string, debounce time.Duration, onChange func(ctx context.Context), log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("watch")
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("unable to create watcher: %w", err)
	}
	defer watcher.Close()

	for _, p := range paths {
		if err := addTree(watcher, p, log); err != nil {
			return err
		}
	}

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug("Watcher stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			log.Debug("Watched file changed", zap.String("name", event.Name), zap.Stringer("op", event.Op))
			if event.Has(fsnotify.Create) {
				if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
					if err := addTree(watcher, event.Name, log); err != nil {
						log.Warn("Unable to watch new directory", zap.String("path", event.Name), zap.Error(err))
					}
				}
			}
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				log.Warn("Watcher event queue overflow")
				timer.Reset(debounce)
				continue
			}
			return fmt.Errorf("watcher failed: %w", err)

		case <-timer.C:
			onChange(ctx)
		}
	}
}

func addTree(watcher *fsnotify.Watcher, root string, log *zap.Logger) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			if p == root {
				return watcher.Add(p)
			}
			return nil
		}
		if p != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		log.Debug("Watching", zap.String("path", p))
		if err := watcher.Add(p); err != nil {
			return fmt.Errorf("unable to watch %s: %w", p, err)
		}
		return nil
	})
}
