package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Tiliavir/portfolio-api/internal/logx"
)

const watchDebounce = 200 * time.Millisecond

// Watch reloads the catalog whenever its file changes until ctx is done.
// The parent directory is watched so editors that replace the file on save
// are picked up too.
func (c *Catalog) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(c.path)); err != nil {
		_ = w.Close()
		return fmt.Errorf("watching %s: %w", filepath.Dir(c.path), err)
	}
	go c.watchLoop(ctx, w)
	return nil
}

func (c *Catalog) watchLoop(ctx context.Context, w *fsnotify.Watcher) {
	log := logx.For("catalog").WithField("path", c.path)
	defer w.Close()
	log.Info("watching catalog for changes")

	target := filepath.Clean(c.path)
	debounce := time.NewTicker(time.Hour)
	debounce.Stop()

	trigger := func() {
		select {
		case <-debounce.C:
		default:
		}
		debounce.Reset(watchDebounce)
	}

	for {
		select {
		case <-ctx.Done():
			debounce.Stop()
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				trigger()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			log.WithError(err).Warn("watcher error")
		case <-debounce.C:
			debounce.Stop()
			if err := c.Reload(); err != nil {
				log.WithError(err).Error("reload failed, keeping previous catalog")
				continue
			}
			log.Info("catalog reloaded")
		}
	}
}
