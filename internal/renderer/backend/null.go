package backend

import (
	"fmt"
	"sync"
)

// NullBackend is an in-memory backend for testing.
// It keeps the text of each row, the cursor and a log of sink calls.
type NullBackend struct {
	mu            sync.Mutex
	width, height int
	rows          []string
	pen           int
	cursorX       int
	cursorY       int
	ops           []string
	events        chan Event
	active        bool
	shutdowns     int

	initErr  error
	writeErr error
	flushErr error
}

// NewNullBackend creates a null backend with the given dimensions.
func NewNullBackend(width, height int) *NullBackend {
	return &NullBackend{
		width:  width,
		height: height,
		rows:   make([]string, height),
		events: make(chan Event, 100),
	}
}

func (b *NullBackend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.initErr != nil {
		return b.initErr
	}
	b.rows = make([]string, b.height)
	b.active = true
	return nil
}

func (b *NullBackend) Shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.active = false
	b.shutdowns++
}

func (b *NullBackend) Size() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.width, b.height
}

func (b *NullBackend) ClearRow(row int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.writeErr != nil {
		return b.writeErr
	}
	b.ops = append(b.ops, fmt.Sprintf("clear %d", row))
	if row >= 0 && row < len(b.rows) {
		b.rows[row] = ""
	}
	b.pen = row
	return nil
}

func (b *NullBackend) WriteText(text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.writeErr != nil {
		return b.writeErr
	}
	b.ops = append(b.ops, "write "+text)
	if b.pen >= 0 && b.pen < len(b.rows) {
		b.rows[b.pen] += text
	}
	return nil
}

func (b *NullBackend) MoveCursorTo(col, row int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.ops = append(b.ops, fmt.Sprintf("cursor %d %d", col, row))
	b.cursorX = col
	b.cursorY = row
	return nil
}

func (b *NullBackend) Flush() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.flushErr != nil {
		return b.flushErr
	}
	b.ops = append(b.ops, "flush")
	return nil
}

func (b *NullBackend) PollEvent() Event {
	return <-b.events
}

func (b *NullBackend) PostEvent(event Event) {
	select {
	case b.events <- event:
	default:
		// Event dropped if queue is full (non-blocking for testing)
	}
}

// Row returns the text last written to a row.
func (b *NullBackend) Row(row int) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if row < 0 || row >= len(b.rows) {
		return ""
	}
	return b.rows[row]
}

// Ops returns a copy of the recorded sink calls.
func (b *NullBackend) Ops() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.ops...)
}

// ResetOps clears the recorded sink calls.
func (b *NullBackend) ResetOps() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ops = nil
}

// CursorPosition returns the current cursor position for testing.
func (b *NullBackend) CursorPosition() (x, y int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cursorX, b.cursorY
}

// Active reports whether the backend is between Init and Shutdown.
func (b *NullBackend) Active() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active
}

// Shutdowns returns how many times Shutdown was called.
func (b *NullBackend) Shutdowns() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.shutdowns
}

// FailInit makes Init return err.
func (b *NullBackend) FailInit(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.initErr = err
}

// FailWrites makes ClearRow and WriteText return err.
func (b *NullBackend) FailWrites(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.writeErr = err
}

// FailFlush makes Flush return err.
func (b *NullBackend) FailFlush(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.flushErr = err
}

// Resize simulates a terminal resize for testing.
func (b *NullBackend) Resize(width, height int) {
	b.mu.Lock()
	b.width = width
	b.height = height
	rows := make([]string, height)
	copy(rows, b.rows)
	b.rows = rows
	b.mu.Unlock()

	b.PostEvent(Event{Type: EventResize, Width: width, Height: height})
}
