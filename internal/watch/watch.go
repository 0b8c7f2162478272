// Package watch rebuilds definition files when they change on disk.
package watch

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/OpenTraceLab/pcbgen/pkg/script"
)

// DefaultDebounce is the quiet period used when Options.Debounce is zero.
const DefaultDebounce = 200 * time.Millisecond

// BuildFunc rebuilds one definition file. Errors are logged and do not
// stop the watcher.
type BuildFunc func(ctx context.Context, path string) error

// Options configures a Watcher.
type Options struct {
	Debounce time.Duration
	Logger   *log.Logger
}

// Watcher watches the directories holding a set of definition files and
// rebuilds a file once writes to it have been quiet for the debounce period.
type Watcher struct {
	files    map[string]bool
	build    BuildFunc
	debounce time.Duration
	logger   *log.Logger

	mu      sync.Mutex
	pending map[string]*time.Timer
	wg      sync.WaitGroup
}

// New creates a watcher for files.
func New(files []string, build BuildFunc, opts Options) (*Watcher, error) {
	w := &Watcher{
		files:    make(map[string]bool),
		build:    build,
		debounce: opts.Debounce,
		logger:   opts.Logger,
		pending:  make(map[string]*time.Timer),
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	if w.logger == nil {
		w.logger = log.New(io.Discard)
	}

	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("watch: %w", err)
		}
		w.files[abs] = true
	}
	if len(w.files) == 0 {
		return nil, fmt.Errorf("watch: no files to watch")
	}
	return w, nil
}

// Run watches until ctx is cancelled. Editors often replace files rather
// than write them in place, so directories are watched, not files.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: failed to create watcher: %w", err)
	}
	defer fsw.Close()

	dirs := make(map[string]bool)
	for f := range w.files {
		dir := filepath.Dir(f)
		if dirs[dir] {
			continue
		}
		if err := fsw.Add(dir); err != nil {
			return fmt.Errorf("watch: %s: %w", dir, err)
		}
		dirs[dir] = true
		w.logger.Debug("watching", "dir", dir)
	}
	w.logger.Info("watching for changes", "files", len(w.files))

	defer w.stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watch: events channel closed")
			}
			w.handle(ctx, event)

		case err, ok := <-fsw.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watch: errors channel closed")
			}
			w.logger.Error("fsnotify error", "err", err)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}
	path, err := filepath.Abs(event.Name)
	if err != nil || !w.files[path] || !script.IsDefinition(path) {
		return
	}
	w.logger.Debug("change detected", "file", path, "op", event.Op.String())
	w.schedule(ctx, path)
}

// schedule (re)starts the debounce timer for path.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok && t.Stop() {
		// the stopped timer never runs, so release its slot
		w.wg.Done()
	}
	w.wg.Add(1)
	var timer *time.Timer
	timer = time.AfterFunc(w.debounce, func() {
		defer w.wg.Done()

		w.mu.Lock()
		if w.pending[path] == timer {
			delete(w.pending, path)
		}
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		if err := w.build(ctx, path); err != nil {
			w.logger.Error("rebuild failed", "file", path, "err", err)
			return
		}
		w.logger.Info("rebuilt", "file", path)
	})
	w.pending[path] = timer
}

// stop cancels pending timers and waits for running builds.
func (w *Watcher) stop() {
	w.mu.Lock()
	for path, t := range w.pending {
		if t.Stop() {
			w.wg.Done()
		}
		delete(w.pending, path)
	}
	w.mu.Unlock()
	w.wg.Wait()
}
