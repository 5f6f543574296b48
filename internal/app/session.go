package app

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dshills/lineview/internal/input/keymap"
	"github.com/dshills/lineview/internal/renderer/backend"
	"github.com/dshills/lineview/internal/renderer/viewport"
)

// Options configures a Session. Zero fields get defaults.
type Options struct {
	// KeyMap maps keys to commands. Defaults to keymap.Default().
	KeyMap *keymap.Map

	// Logger receives session logs. Defaults to NullLogger.
	Logger *Logger

	// Metrics collects session counters. Defaults to a new tracker.
	Metrics *Metrics
}

// Quit is an interrupt payload asking the session to exit.
type Quit struct {
	Reason string
}

// ReloadKeys is an interrupt payload carrying a replacement key map.
type ReloadKeys struct {
	Keys *keymap.Map
}

// Session displays one line store on one backend until the user exits.
type Session struct {
	id      string
	store   viewport.Lines
	backend backend.Backend
	keys    *keymap.Map
	log     *Logger
	metrics *Metrics

	running atomic.Bool
	view    *viewport.Viewport

	mu      sync.Mutex
	lastErr error
}

// NewSession creates a session over store drawing to b.
func NewSession(store viewport.Lines, b backend.Backend, opts Options) (*Session, error) {
	if store == nil || b == nil {
		return nil, ErrInvalidOptions
	}
	if opts.KeyMap == nil {
		opts.KeyMap = keymap.Default()
	}
	if opts.Logger == nil {
		opts.Logger = NullLogger
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics()
	}

	id := uuid.NewString()
	return &Session{
		id:      id,
		store:   store,
		backend: b,
		keys:    opts.KeyMap,
		log:     opts.Logger.WithComponent("session").WithField("session", id),
		metrics: opts.Metrics,
	}, nil
}

// ID returns the session identifier used in log lines.
func (s *Session) ID() string { return s.id }

// Metrics returns the session's metrics tracker.
func (s *Session) Metrics() *Metrics { return s.metrics }

// Viewport returns the active viewport, or nil before Run creates it.
func (s *Session) Viewport() *viewport.Viewport { return s.view }

// LastError returns the most recent move error that did not end the
// session, or nil.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Run enters the display mode, draws the store and processes events until
// an exit command, a quit interrupt or a fatal error. The display mode is
// restored before Run returns or a panic propagates.
func (s *Session) Run() error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer s.running.Store(false)

	if err := s.backend.Init(); err != nil {
		return NewSessionError("backend", "init", err)
	}
	defer func() {
		r := recover()
		s.backend.Shutdown()
		if r != nil {
			s.log.Error("%v", NewRecoveredPanicError(r, string(debug.Stack())))
			panic(r)
		}
		s.log.Info("session ended: %s", s.metrics.Snapshot().Summary())
	}()

	w, h := s.backend.Size()
	view, err := viewport.New(s.store, w, h)
	if err != nil {
		return NewSessionError("viewport", "create", err)
	}
	s.view = view
	s.log.Info("session started: %d lines, %dx%d", s.store.Len(), w, h)
	s.log.Info("exit keys: %s", exitKeys(s.keys))

	if err := s.render(); err != nil {
		return err
	}

	for {
		err := s.handle(s.backend.PollEvent())
		if errors.Is(err, ErrQuit) {
			return nil
		}
		if err != nil {
			s.log.Error("session aborted: %v", err)
			return err
		}
	}
}

// handle processes one backend event.
func (s *Session) handle(ev backend.Event) error {
	s.metrics.RecordEvent()

	switch ev.Type {
	case backend.EventKey:
		return s.handleKey(ev)
	case backend.EventResize:
		return s.handleResize(ev)
	case backend.EventInterrupt:
		return s.handleInterrupt(ev)
	default:
		return nil
	}
}

func (s *Session) handleKey(ev backend.Event) error {
	cmd := s.keys.LookupEvent(ev)
	if cmd == keymap.Exit {
		s.log.Debug("exit requested")
		return ErrQuit
	}

	dir, ok := cmd.Direction()
	if !ok {
		s.metrics.RecordIgnoredKey()
		return nil
	}

	timer := StartTimer()
	if err := s.view.MoveCursor(s.backend, dir); err != nil {
		return s.rangeFailed("move", dir.String(), err)
	}
	s.metrics.RecordMove(timer.Elapsed())
	return s.render()
}

// rangeFailed records a range error and lets the session continue. Any
// other error ends the session.
func (s *Session) rangeFailed(op, target string, err error) error {
	if !errors.Is(err, viewport.ErrRange) {
		return NewSessionError("viewport", op, err)
	}

	opErr := NewOperationError(op, target, err)
	s.mu.Lock()
	s.lastErr = opErr
	s.mu.Unlock()

	s.metrics.RecordRangeError()
	s.log.Warn("%v", opErr)
	return nil
}

func (s *Session) handleResize(ev backend.Event) error {
	w, h := ev.Width, ev.Height
	if w <= 0 || h <= 0 {
		w, h = s.backend.Size()
	}

	if err := s.view.Resize(w, h); err != nil {
		if errors.Is(err, viewport.ErrInvalidSize) {
			s.log.Debug("ignoring resize to %dx%d", w, h)
			return nil
		}
		return s.rangeFailed("resize", fmt.Sprintf("%dx%d", w, h), err)
	}
	s.metrics.RecordResize()
	s.log.Debug("resized to %dx%d", w, h)
	return s.render()
}

func (s *Session) handleInterrupt(ev backend.Event) error {
	switch data := ev.Data.(type) {
	case Quit:
		s.log.Info("quit: %s", data.Reason)
		return ErrQuit
	case ReloadKeys:
		s.reloadKeys(data.Keys)
	case error:
		if errors.Is(data, backend.ErrClosed) {
			s.log.Info("input closed")
			return ErrQuit
		}
		s.log.Warn("interrupt: %v", data)
	}
	return nil
}

func (s *Session) reloadKeys(m *keymap.Map) {
	if m == nil {
		return
	}
	s.keys = m
	s.metrics.RecordReload()
	s.log.Info("key map reloaded (%d bindings), exit keys: %s", m.Len(), exitKeys(m))
}

func exitKeys(m *keymap.Map) string {
	keys := m.Keys(keymap.Exit)
	if len(keys) == 0 {
		return "none"
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	return strings.Join(names, ", ")
}

func (s *Session) render() error {
	timer := StartTimer()
	if err := s.view.Render(s.backend); err != nil {
		return NewSessionError("viewport", "render", err)
	}
	s.metrics.RecordRender(timer.Elapsed())
	return nil
}
