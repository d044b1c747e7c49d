// Package watcher hot-reloads trade pattern files with fsnotify and debouncing.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/hyperjump/bidsift/internal/patterns"
)

const defaultDebounce = 400 * time.Millisecond

// Watcher watches a pattern directory and re-registers a trade's pattern
// set when its file changes. Registration is atomic: scoring in flight
// keeps the set it started with, and a file that fails to parse leaves the
// previously registered set in place.
type Watcher struct {
	dir         string
	registry    *patterns.Registry
	debounce    time.Duration
	watcher     *fsnotify.Watcher
	mu          sync.Mutex
	debounceMap map[string]*time.Timer
	fileTrades  map[string]string // pattern file path -> registered trade code
	onChange    func()
	done        chan struct{}
	started     bool
	stopOnce    sync.Once
	logger      *zap.Logger
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithLogger sets a logger for reload events and parse failures.
func WithLogger(l *zap.Logger) WatcherOption {
	return func(w *Watcher) { w.logger = l }
}

// WithDebounce overrides the reload debounce interval. Editors that write
// a file several times in quick succession trigger a single reload.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.debounce = d }
}

// WithOnChange sets a callback invoked after every successful register or
// unregister, for gauge updates and the like.
func WithOnChange(fn func()) WatcherOption {
	return func(w *Watcher) { w.onChange = fn }
}

// NewWatcher creates a watcher over dir that reloads pattern files into
// registry. Only *.yaml and *.yml files are considered.
func NewWatcher(dir string, registry *patterns.Registry, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		dir:         dir,
		registry:    registry,
		debounce:    defaultDebounce,
		debounceMap: make(map[string]*time.Timer),
		fileTrades:  make(map[string]string),
		done:        make(chan struct{}),
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching. It runs until ctx is cancelled or Stop is called.
// The pattern directory must already exist; initial loading is the
// caller's job (patterns.LoadDirInto), Start only tracks changes.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	if err := fsw.Add(w.dir); err != nil {
		_ = fsw.Close()
		w.mu.Unlock()
		return err
	}
	w.watcher = fsw
	w.started = true

	// Seed the file -> trade map so removals can unregister the right
	// trade without re-reading a file that no longer exists.
	entries, _ := os.ReadDir(w.dir)
	for _, e := range entries {
		if e.IsDir() || !isPatternFile(e.Name()) {
			continue
		}
		path := filepath.Join(w.dir, e.Name())
		if trade, _, err := patterns.LoadFile(path); err == nil {
			w.fileTrades[path] = trade
		}
	}
	w.mu.Unlock()

	w.logger.Debug("pattern watcher started", zap.String("dir", w.dir))
	go w.run(ctx)
	return nil
}

func (w *Watcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if err != nil {
				w.logger.Debug("pattern watcher error", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	path := ev.Name
	if !isPatternFile(path) {
		return
	}
	w.logger.Debug("pattern watcher event", zap.String("op", ev.Op.String()), zap.String("path", path))
	switch {
	case ev.Op.Has(fsnotify.Create), ev.Op.Has(fsnotify.Write):
		w.debounceReload(path)
	case ev.Op.Has(fsnotify.Remove), ev.Op.Has(fsnotify.Rename):
		w.cancelDebounce(path)
		w.unregisterFile(path)
	}
}

func isPatternFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func (w *Watcher) debounceReload(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.debounceMap[path]; ok {
		t.Stop()
	}
	t := time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.debounceMap, path)
		w.mu.Unlock()
		w.reload(path)
	})
	w.debounceMap[path] = t
}

func (w *Watcher) cancelDebounce(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.debounceMap[path]; ok {
		t.Stop()
		delete(w.debounceMap, path)
	}
}

// reload parses one pattern file and atomically replaces the trade's set.
// A parse or validation failure keeps the old registration; one bad file
// never disturbs other trades.
func (w *Watcher) reload(path string) {
	trade, p, err := patterns.LoadFile(path)
	if err != nil {
		w.logger.Warn("pattern file not reloaded", zap.String("path", path), zap.Error(err))
		return
	}
	if err := w.registry.Register(trade, p); err != nil {
		w.logger.Warn("pattern re-registration rejected", zap.String("trade", trade), zap.Error(err))
		return
	}

	w.mu.Lock()
	// A file whose trade code changed leaves the old trade registered;
	// unregister it so the rename behaves like remove+add.
	if prev, ok := w.fileTrades[path]; ok && prev != trade {
		w.registry.Unregister(prev)
	}
	w.fileTrades[path] = trade
	onChange := w.onChange
	w.mu.Unlock()

	w.logger.Info("trade patterns reloaded",
		zap.String("trade", trade),
		zap.String("path", path))
	if onChange != nil {
		onChange()
	}
}

func (w *Watcher) unregisterFile(path string) {
	w.mu.Lock()
	trade, ok := w.fileTrades[path]
	if ok {
		delete(w.fileTrades, path)
	}
	onChange := w.onChange
	w.mu.Unlock()
	if !ok {
		return
	}
	w.registry.Unregister(trade)
	w.logger.Info("trade patterns unregistered", zap.String("trade", trade), zap.String("path", path))
	if onChange != nil {
		onChange()
	}
}

// Stop stops the watcher and releases resources.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.started || w.watcher == nil {
		w.mu.Unlock()
		return
	}
	for path, t := range w.debounceMap {
		t.Stop()
		delete(w.debounceMap, path)
	}
	_ = w.watcher.Close()
	w.watcher = nil
	w.started = false
	w.mu.Unlock()
	w.stopOnce.Do(func() { close(w.done) })
}
