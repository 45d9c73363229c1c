// Package watch re-runs an action when source files under a root change.
//
// Changes are batched over a debounce window so that saving many files at
// once triggers a single run. The watcher keeps no analysis state; the
// callback is expected to redo its work from scratch.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/simonhull/heron/pkg/filesystem"
	"github.com/simonhull/heron/pkg/logger"
)

// DefaultDebounce is used when Options.Debounce is zero.
const DefaultDebounce = 300 * time.Millisecond

// ChangeHandler receives the sorted, de-duplicated paths changed during one
// debounce window. A returned error is logged and watching continues.
type ChangeHandler func(ctx context.Context, changed []string) error

// Options configures a Watcher.
type Options struct {
	Debounce   time.Duration
	Extensions []string // default: [".py"]
	IgnoreDirs []string // default: filesystem.DefaultSourceIgnoreDirs
}

// Watcher watches a directory tree.
type Watcher struct {
	root   string
	opts   Options
	logger logger.Logger
}

// New creates a Watcher for root.
func New(root string, opts Options) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = filesystem.DefaultSourceExtensions
	}
	if len(opts.IgnoreDirs) == 0 {
		opts.IgnoreDirs = filesystem.DefaultSourceIgnoreDirs
	}
	return &Watcher{root: root, opts: opts, logger: logger.Default()}
}

// WithLogger returns a new Watcher with the specified logger
func (w *Watcher) WithLogger(log logger.Logger) *Watcher {
	return &Watcher{root: w.root, opts: w.opts, logger: log}
}

// Run blocks until ctx is cancelled, calling handler after each burst of
// changes to matching files.
func (w *Watcher) Run(ctx context.Context, handler ChangeHandler) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	if err := w.addTree(fw, w.root); err != nil {
		return err
	}
	w.logger.Info("Watching for changes", logger.F("root", w.root), logger.F("debounce", w.opts.Debounce))

	var (
		pending = make(map[string]bool)
		timer   *time.Timer
		fire    <-chan time.Time
	)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", logger.F("error", err))

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.addTree(fw, ev.Name); err != nil {
						w.logger.Warn("Cannot watch new directory", logger.F("dir", ev.Name), logger.F("error", err))
					}
					continue
				}
			}
			if !w.relevant(ev.Name) || ev.Op == fsnotify.Chmod {
				continue
			}
			w.logger.Debug("Change detected", logger.F("file", ev.Name), logger.F("op", ev.Op.String()))
			pending[ev.Name] = true

			if timer == nil {
				timer = time.NewTimer(w.opts.Debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.opts.Debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			pending = make(map[string]bool)

			if err := handler(ctx, changed); err != nil {
				w.logger.Error("Change handler failed", logger.F("error", err))
			}
		}
	}
}

// addTree watches dir and every non-ignored directory below it.
func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string) error {
	return filesystem.Walk(dir, filesystem.WalkOptions{
		IgnoreDirs:    w.opts.IgnoreDirs,
		IncludeHidden: true,
		SkipErrors:    true,
	}, func(path string, info os.FileInfo) error {
		if !info.IsDir() {
			return nil
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) relevant(path string) bool {
	for _, dir := range strings.Split(filepath.ToSlash(path), "/") {
		for _, ignored := range w.opts.IgnoreDirs {
			if dir == ignored {
				return false
			}
		}
	}
	for _, ext := range w.opts.Extensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
