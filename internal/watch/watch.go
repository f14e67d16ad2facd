// Package watch re-runs a handler whenever script files change.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/cybertec-postgresql/orasplit/internal/discovery"
	"github.com/cybertec-postgresql/orasplit/internal/logger"
)

// DefaultDebounce is how long the watcher waits for a burst of writes to
// settle before calling the handler
const DefaultDebounce = 100 * time.Millisecond

// Handler receives the changed script paths, sorted and deduplicated.
// An error is logged; it does not stop the watcher.
type Handler func(ctx context.Context, paths []string) error

// Watcher watches directories and single files for script changes
type Watcher struct {
	roots    []string
	exts     []string
	files    map[string]bool // explicitly watched files
	dirs     bool            // at least one directory root
	debounce time.Duration
	handler  Handler
	ready    chan struct{}
}

// New creates a watcher over roots. Directories are watched recursively
// for files with one of exts; a file root is watched regardless of its
// extension.
func New(roots, exts []string, handler Handler) *Watcher {
	return &Watcher{
		roots:    roots,
		exts:     exts,
		files:    make(map[string]bool),
		debounce: DefaultDebounce,
		handler:  handler,
		ready:    make(chan struct{}),
	}
}

// SetDebounce changes the settle delay
func (w *Watcher) SetDebounce(d time.Duration) *Watcher {
	w.debounce = d
	return w
}

// Ready is closed once every root is being watched
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run watches until ctx is cancelled. It returns an error only when the
// watches cannot be set up.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = fw.Close() }()

	for _, root := range w.roots {
		if err := w.add(fw, root); err != nil {
			return fmt.Errorf("failed to watch %s: %w", root, err)
		}
	}
	close(w.ready)

	batches := make(chan []string)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(batches)
		return w.loop(gctx, fw, batches)
	})
	g.Go(func() error {
		for batch := range batches {
			logger.Info("Change detected: %d file(s)", len(batch))
			if err := w.handler(gctx, batch); err != nil {
				logger.Error("%v", err)
			}
		}
		return nil
	})
	return g.Wait()
}

// add watches root: a directory tree, or the parent directory of a file
func (w *Watcher) add(fw *fsnotify.Watcher, root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		w.files[abs] = true
		return fw.Add(filepath.Dir(abs))
	}
	w.dirs = true
	return filepath.WalkDir(abs, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != abs && d.Name()[0] == '.' {
			return filepath.SkipDir
		}
		return fw.Add(path)
	})
}

func (w *Watcher) relevant(path string) bool {
	if w.files[path] {
		return true
	}
	return w.dirs && discovery.HasExtension(path, w.exts)
}

// loop collects events and hands debounced batches to the handler goroutine
func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher, batches chan<- []string) error {
	pending := make(map[string]struct{})
	var settle <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.add(fw, event.Name); err != nil {
						logger.Warn("cannot watch %s: %v", event.Name, err)
					}
					continue
				}
			}
			if !w.relevant(event.Name) {
				continue
			}
			pending[event.Name] = struct{}{}
			settle = time.After(w.debounce)

		case <-settle:
			settle = nil
			batch := make([]string, 0, len(pending))
			for p := range pending {
				batch = append(batch, p)
			}
			slices.Sort(batch)
			clear(pending)
			select {
			case batches <- batch:
			case <-ctx.Done():
				return nil
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error: %v", err)
		}
	}
}
