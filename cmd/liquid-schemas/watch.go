package main

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/goliatone/go-liquid-schemas/internal/config"
)

const watchDebounce = 100 * time.Millisecond

// watch rebuilds whenever a file under the project root changes, until ctx
// is cancelled.
func watch(ctx context.Context, g *globalOptions, cfg config.Config, run func(context.Context) error) error {
	w, err := newProjectWatcher(cfg.Root, cfg.CachePath())
	if err != nil {
		return err
	}
	defer w.close(g)
	g.log.Info("watching for changes", "root", cfg.Root)
	return w.loop(ctx, g, run)
}

// projectWatcher watches every directory below root. fsnotify is not
// recursive, so directories created later are added as they appear.
type projectWatcher struct {
	watcher   *fsnotify.Watcher
	cachePath string
	debounce  time.Duration
}

func newProjectWatcher(root, cachePath string) (*projectWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := addTree(watcher, root); err != nil {
		_ = watcher.Close()
		return nil, err
	}
	return &projectWatcher{
		watcher:   watcher,
		cachePath: filepath.Clean(cachePath),
		debounce:  watchDebounce,
	}, nil
}

func (w *projectWatcher) close(g *globalOptions) {
	if err := w.watcher.Close(); err != nil {
		g.log.Error(err, "closing file watcher")
	}
}

// loop calls run once per burst of relevant events; a burst ends after the
// debounce interval passes without a new event.
func (w *projectWatcher) loop(ctx context.Context, g *globalOptions, run func(context.Context) error) error {
	var (
		timer   *time.Timer
		trigger <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !relevantEvent(event, w.cachePath) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addTree(w.watcher, event.Name); err != nil {
						g.log.Error(err, "watching new directory", "path", event.Name)
					}
				}
			}
			g.log.V(1).Info("change detected", "event", event.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			trigger = timer.C
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			g.log.Error(err, "file watcher error")
		case <-trigger:
			trigger = nil
			if err := run(ctx); err != nil && !isReported(err) {
				if ctx.Err() != nil {
					return nil
				}
				fail(g.stderr, "Error: %v", err)
			}
		}
	}
}

func addTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && ignoredDir(d.Name()) {
			return filepath.SkipDir
		}
		return watcher.Add(p)
	})
}

func ignoredDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "node_modules"
}

// relevantEvent drops chmod-only events, atomic write temporaries and the
// digest cache.
func relevantEvent(event fsnotify.Event, cachePath string) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	name := filepath.Clean(event.Name)
	if name == cachePath {
		return false
	}
	base := filepath.Base(name)
	if strings.HasSuffix(base, ".tmp") || strings.HasPrefix(base, ".cache-") {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(filepath.Dir(name)), "/") {
		if part == "node_modules" {
			return false
		}
	}
	return true
}
