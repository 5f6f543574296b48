// Package watcher provides file watching for configuration live reload.
//
// The watcher monitors a single configuration file for changes and calls
// a handler once changes have settled. It watches the file's directory
// rather than the file itself, so editors that save by writing a temporary
// file and renaming it over the original are still observed.
package watcher

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Event represents a file change event.
type Event struct {
	// Path is the absolute path to the changed file.
	Path string

	// Op is the operation that triggered the event.
	Op Operation

	// Time is when the last change in the burst occurred.
	Time time.Time
}

// Operation represents the type of file operation.
type Operation int

const (
	// OpWrite indicates the file was modified.
	OpWrite Operation = iota

	// OpCreate indicates a new file was created.
	OpCreate

	// OpRemove indicates the file was deleted.
	OpRemove

	// OpRename indicates the file was renamed away.
	OpRename
)

// String returns the operation name.
func (op Operation) String() string {
	switch op {
	case OpWrite:
		return "write"
	case OpCreate:
		return "create"
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Handler is called when a file change is detected.
type Handler func(event Event)

// Watcher monitors one file for changes.
type Watcher struct {
	mu sync.Mutex

	fsw     *fsnotify.Watcher
	path    string
	handler Handler
	onError func(error)

	// Debounce settings
	debounce time.Duration
	timer    *time.Timer
	pending  *Event

	closed   bool
	closeCh  chan struct{}
	wg       sync.WaitGroup
	flushing sync.WaitGroup
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the debounce duration for rapid changes.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithErrorHandler sets a callback for errors reported by the underlying
// notifier.
func WithErrorHandler(fn func(error)) Option {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// New starts watching path and calls handler after each settled burst of
// changes. The file need not exist yet, but its directory must.
func New(path string, handler Handler, opts ...Option) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:     absPath,
		handler:  handler,
		debounce: 100 * time.Millisecond,
		closeCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(absPath)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(absPath), err)
	}
	w.fsw = fsw

	w.wg.Add(1)
	go w.processLoop()

	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Close stops the watcher. Pending events are discarded, and a handler
// call already in progress finishes before Close returns. The handler must
// not call Close.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pending = nil
	close(w.closeCh)
	w.mu.Unlock()

	w.wg.Wait()
	w.flushing.Wait()
	return w.fsw.Close()
}

// processLoop handles incoming fsnotify events.
func (w *Watcher) processLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case fsEvent, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(fsEvent.Name) != w.path {
				continue
			}
			if op, ok := convertOp(fsEvent.Op); ok {
				w.queueEvent(Event{Path: w.path, Op: op, Time: time.Now()})
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if w.onError != nil {
				w.onError(err)
			}
		}
	}
}

// convertOp converts fsnotify.Op to an Operation. Attribute-only changes
// are not reported.
func convertOp(fsOp fsnotify.Op) (Operation, bool) {
	switch {
	case fsOp.Has(fsnotify.Remove):
		return OpRemove, true
	case fsOp.Has(fsnotify.Rename):
		return OpRename, true
	case fsOp.Has(fsnotify.Create):
		return OpCreate, true
	case fsOp.Has(fsnotify.Write):
		return OpWrite, true
	default:
		return 0, false
	}
}

// queueEvent queues an event for debounced delivery.
func (w *Watcher) queueEvent(event Event) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}

	if w.pending != nil {
		event.Op = mergeOp(w.pending.Op, event.Op)
	}
	w.pending = &event

	if w.debounce == 0 {
		w.mu.Unlock()
		w.flush()
		return
	}

	if w.timer == nil {
		w.timer = time.AfterFunc(w.debounce, w.flush)
	} else {
		w.timer.Reset(w.debounce)
	}
	w.mu.Unlock()
}

// mergeOp combines the operation of a pending event with a newer one.
func mergeOp(prev, next Operation) Operation {
	switch {
	case (prev == OpRemove || prev == OpRename) && next == OpCreate:
		// Delete + create = replaced, which is a write
		return OpWrite
	case prev == OpCreate && next == OpWrite:
		// Create + write is still a create
		return OpCreate
	default:
		return next
	}
}

// flush delivers the pending event.
func (w *Watcher) flush() {
	w.mu.Lock()
	event := w.pending
	w.pending = nil
	if event == nil || w.closed {
		w.mu.Unlock()
		return
	}
	w.flushing.Add(1)
	w.mu.Unlock()

	defer w.flushing.Done()
	w.safeCallHandler(*event)
}

// safeCallHandler calls a handler with panic recovery.
func (w *Watcher) safeCallHandler(event Event) {
	defer func() {
		if r := recover(); r != nil && w.onError != nil {
			w.onError(fmt.Errorf("watch handler panic: %v", r))
		}
	}()
	w.handler(event)
}
