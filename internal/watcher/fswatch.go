package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Aman-CERP/srcfind/internal/gitignore"
)

// Watcher watches a project tree with fsnotify, skipping ignored directories.
type Watcher struct {
	opts      Options
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	decider   *gitignore.Decider
	events    chan []FileEvent
	errors    chan error
	stopCh    chan struct{}
	ready     chan struct{}
	root      string

	mu      sync.RWMutex
	sets    map[string][]gitignore.File // directory -> set for its entries
	stopped bool

	droppedBatches atomic.Uint64
}

// New creates a watcher. The fsnotify handle is opened immediately so
// unsupported platforms fail here rather than in Start.
func New(opts Options) (*Watcher, error) {
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	return &Watcher{
		opts:      opts,
		fsWatcher: fsw,
		debouncer: NewDebouncer(opts.DebounceWindow, opts.EventBufferSize),
		decider:   gitignore.NewDecider(opts.Policy),
		events:    make(chan []FileEvent, opts.EventBufferSize),
		errors:    make(chan error, 10),
		stopCh:    make(chan struct{}),
		ready:     make(chan struct{}),
		sets:      make(map[string][]gitignore.File),
	}, nil
}

// Start watches the directory at path until ctx is cancelled or Stop is
// called. It blocks; run it in its own goroutine.
func (w *Watcher) Start(ctx context.Context, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve absolute path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return fmt.Errorf("stat watch root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch root %s is not a directory", absPath)
	}

	w.mu.Lock()
	w.root = absPath
	w.decider = w.decider.WithRoot(absPath)
	w.mu.Unlock()

	if err := w.addRecursive(absPath); err != nil {
		return fmt.Errorf("add directories to watcher: %w", err)
	}
	close(w.ready)

	go w.forwardDebouncedEvents(ctx)

	for {
		select {
		case <-ctx.Done():
			_ = w.Stop()
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.emitError(err)
		}
	}
}

// Ready is closed once every directory under the root is being watched.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// handleEvent converts an fsnotify event and hands it to the debouncer.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return
	}

	isDir := false
	if info, err := os.Lstat(event.Name); err == nil {
		isDir = info.IsDir()
	}

	parent := filepath.Dir(event.Name)
	if parent != w.root && w.ignored(parent, true) {
		return
	}

	// .gitignore and config files are hidden, so they are classified before
	// the ignore check would drop them.
	base := filepath.Base(event.Name)
	if base == ".gitignore" && !isDir && event.Op&fsnotify.Chmod != event.Op {
		w.resetIgnores()
		w.debouncer.Add(FileEvent{Path: rel, Operation: OpGitignoreChange, Timestamp: time.Now()})
		return
	}
	if parent == w.root && slices.Contains(w.opts.ConfigFiles, base) && event.Op&fsnotify.Chmod != event.Op {
		w.debouncer.Add(FileEvent{Path: rel, Operation: OpConfigChange, Timestamp: time.Now()})
		return
	}

	if w.ignored(event.Name, isDir) {
		return
	}

	var op Operation
	switch {
	case event.Op&fsnotify.Create != 0:
		op = OpCreate
		if isDir {
			if err := w.addRecursive(event.Name); err != nil {
				w.emitError(err)
			}
		}
	case event.Op&fsnotify.Write != 0:
		op = OpModify
	case event.Op&fsnotify.Remove != 0:
		op = OpDelete
	case event.Op&fsnotify.Rename != 0:
		op = OpRename
	default:
		// chmod
		return
	}

	w.debouncer.Add(FileEvent{
		Path:      rel,
		Operation: op,
		IsDir:     isDir,
		Timestamp: time.Now(),
	})
}

// addRecursive watches dir and every non-ignored directory below it.
// Unreadable directories are skipped.
func (w *Watcher) addRecursive(dir string) error {
	if err := w.fsWatcher.Add(dir); err != nil {
		if dir == w.root {
			return err
		}
		slog.Debug("cannot watch directory",
			slog.String("dir", dir),
			slog.String("error", err.Error()))
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		slog.Debug("skipping unreadable directory",
			slog.String("dir", dir),
			slog.String("error", err.Error()))
		return nil
	}

	set := w.setFor(dir)
	for _, entry := range entries {
		if !entry.Type().IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if w.decider.IsIgnored(path, set, true) {
			continue
		}
		if err := w.addRecursive(path); err != nil {
			return err
		}
	}
	return nil
}

// ignored reports whether abs, or any directory between the root and abs,
// is ignored.
func (w *Watcher) ignored(abs string, isDir bool) bool {
	rel, err := filepath.Rel(w.root, abs)
	if err != nil || rel == "." {
		return false
	}

	parts := strings.Split(rel, string(filepath.Separator))
	dir := w.root
	for i, part := range parts {
		path := filepath.Join(dir, part)
		last := i == len(parts)-1
		if w.decider.IsIgnored(path, w.setFor(dir), !last || isDir) {
			return true
		}
		dir = path
	}
	return false
}

// setFor returns the .gitignore set that applies to the entries of dir,
// loading and caching it on first use.
func (w *Watcher) setFor(dir string) []gitignore.File {
	if !w.opts.Nested && dir != w.root {
		return w.setFor(w.root)
	}

	w.mu.RLock()
	set, ok := w.sets[dir]
	w.mu.RUnlock()
	if ok {
		return set
	}

	if dir == w.root {
		set = gitignore.Load(w.root)
	} else {
		set = w.setFor(filepath.Dir(dir))
		if f, ok := gitignore.ReadDir(dir); ok {
			set = append(slices.Clip(set), f)
		}
	}

	w.mu.Lock()
	w.sets[dir] = set
	w.mu.Unlock()
	return set
}

// resetIgnores forgets every loaded .gitignore after one changed.
func (w *Watcher) resetIgnores() {
	w.mu.Lock()
	w.sets = make(map[string][]gitignore.File)
	w.mu.Unlock()
	w.decider.Purge()
}

// forwardDebouncedEvents forwards debounced batches to the output channel.
func (w *Watcher) forwardDebouncedEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case events, ok := <-w.debouncer.Output():
			if !ok {
				return
			}
			w.emitEvents(events)
		}
	}
}

// emitEvents sends a batch to the output channel, dropping it when full.
func (w *Watcher) emitEvents(events []FileEvent) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		return
	}

	select {
	case w.events <- events:
	default:
		count := w.droppedBatches.Add(1)
		slog.Warn("event buffer full, dropping batch",
			slog.Int("batch_size", len(events)),
			slog.Uint64("total_dropped_batches", count))
	}
}

// emitError sends a non-fatal error to the error channel.
func (w *Watcher) emitError(err error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		return
	}

	select {
	case w.errors <- err:
	default:
	}
}

// DroppedBatches returns the number of batches dropped due to a full buffer.
func (w *Watcher) DroppedBatches() uint64 {
	return w.droppedBatches.Load()
}

// Stop stops the watcher and closes its channels. Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.stopCh)

	w.debouncer.Stop()
	err := w.fsWatcher.Close()

	close(w.events)
	close(w.errors)
	return err
}

// Events returns the channel of batched file events.
func (w *Watcher) Events() <-chan []FileEvent {
	return w.events
}

// Errors returns the channel of non-fatal watcher errors.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Root returns the absolute path being watched.
func (w *Watcher) Root() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.root
}
