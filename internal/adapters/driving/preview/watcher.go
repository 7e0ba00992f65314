package preview

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/remup-cli/internal/logger"
)

// rebuildLimit spaces rebuilds so editor write bursts coalesce into
// one recompile.
var rebuildLimit = rate.Every(300 * time.Millisecond)

// watch recompiles on every change to the source file until the
// context is cancelled. The parent directory is watched because many
// editors replace files on save instead of writing in place.
func (s *Server) watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(s.opts.SourcePath)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	target := filepath.Clean(s.opts.SourcePath)
	changed := make(chan struct{}, 1)

	go func() {
		limiter := rate.NewLimiter(rebuildLimit, 1)
		for {
			select {
			case <-ctx.Done():
				return
			case <-changed:
				if err := limiter.Wait(ctx); err != nil {
					return
				}
				// Drain events that arrived while waiting.
				select {
				case <-changed:
				default:
				}
				s.onChange(ctx)
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			logger.Debug("change detected: %s", event)
			select {
			case changed <- struct{}{}:
			default:
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error: %v", err)
		}
	}
}
