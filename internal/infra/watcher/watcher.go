// Package watcher discovers actionable task files in the tasks directory.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/runoshun/git-relay/internal/domain"
)

const logCategory = "watcher"

// Default settings.
const (
	DefaultDebounce   = 500 * time.Millisecond
	DefaultBufferSize = 64
)

// TaskLoader reads a task document from a path.
type TaskLoader interface {
	Load(path string) (*domain.Task, error)
}

// Options configures a Watcher.
type Options struct {
	Logger     domain.Logger
	Dispatch   *DispatchSet  // Shared dispatch set (nil creates one)
	Debounce   time.Duration // Quiet period before a file is evaluated
	BufferSize int           // Capacity of the events channel
}

// Watcher raises a TaskEvent for every task file that becomes pending.
// Files are matched by name; content is only read to learn the status.
type Watcher struct {
	loader   TaskLoader
	logger   domain.Logger
	dispatch *DispatchSet
	events   chan domain.TaskEvent
	ready    chan string
	timers   map[string]*time.Timer
	dir      string
	debounce time.Duration
	mu       sync.Mutex
}

// New creates a watcher for dir.
func New(dir string, loader TaskLoader, opts Options) *Watcher {
	if opts.Logger == nil {
		opts.Logger = domain.NopLogger{}
	}
	if opts.Dispatch == nil {
		opts.Dispatch = NewDispatchSet()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultBufferSize
	}
	return &Watcher{
		dir:      dir,
		loader:   loader,
		logger:   opts.Logger,
		dispatch: opts.Dispatch,
		debounce: opts.Debounce,
		events:   make(chan domain.TaskEvent, opts.BufferSize),
		ready:    make(chan string),
		timers:   make(map[string]*time.Timer),
	}
}

// Events returns the channel of actionable tasks. It is closed when Run returns.
func (w *Watcher) Events() <-chan domain.TaskEvent {
	return w.events
}

// Dispatch returns the watcher's dispatch set.
func (w *Watcher) Dispatch() *DispatchSet {
	return w.dispatch
}

// Run watches the directory until ctx is canceled.
// Pre-existing task files are evaluated before any notification is handled.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.events)
	defer w.stopTimers()

	if err := os.MkdirAll(w.dir, 0o750); err != nil {
		return fmt.Errorf("create tasks directory: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = fsw.Close() }()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	existing, err := w.scan()
	if err != nil {
		return err
	}
	for _, path := range existing {
		if !w.evaluate(ctx, path) {
			return ctx.Err()
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !w.isCandidate(event.Name) {
				continue
			}
			w.schedule(ctx, event.Name)

		case path := <-w.ready:
			if !w.evaluate(ctx, path) {
				return ctx.Err()
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("", logCategory, fmt.Sprintf("watch error: %v", err))
		}
	}
}

// scan lists pre-existing task files in name order.
func (w *Watcher) scan() ([]string, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return nil, fmt.Errorf("read tasks directory: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !domain.IsTaskFile(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(w.dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// isCandidate reports whether an event path is a task file directly under dir.
func (w *Watcher) isCandidate(path string) bool {
	if filepath.Clean(filepath.Dir(path)) != filepath.Clean(w.dir) {
		return false
	}
	return domain.IsTaskFile(filepath.Base(path))
}

// schedule (re)starts the quiet-period timer for path.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok {
		t.Reset(w.debounce)
		return
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()

		select {
		case w.ready <- path:
		case <-ctx.Done():
		}
	})
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
}

// evaluate loads path and emits an event if it just became pending.
// It returns false only when ctx was canceled while emitting.
func (w *Watcher) evaluate(ctx context.Context, path string) bool {
	task, err := w.loader.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return true
		}
		w.logger.Warn("", logCategory, fmt.Sprintf("skipping %s: %v", filepath.Base(path), err))
		return true
	}

	if !w.dispatch.Observe(path, task.Status) {
		return true
	}

	w.logger.Info(task.ID, logCategory, "dispatching pending task")
	select {
	case w.events <- domain.TaskEvent{Path: path, TaskID: task.ID}:
		return true
	case <-ctx.Done():
		return false
	}
}
