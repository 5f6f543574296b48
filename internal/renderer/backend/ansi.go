package backend

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/x/ansi"
	"golang.org/x/term"
)

// Fallback dimensions when the output is not a terminal.
const (
	defaultWidth  = 80
	defaultHeight = 24
)

// ANSITerminal implements Backend by writing escape sequences directly to
// an output stream and decoding raw key bytes from an input stream.
type ANSITerminal struct {
	mu     sync.Mutex
	in     io.Reader
	out    *bufio.Writer
	fd     int // terminal descriptor for raw mode and size, -1 if none
	saved  *term.State
	events chan Event
	stop   chan struct{}
	active bool

	rows  cellRows
	penY  int
	width int

	// escDelay is how long a partial escape sequence may wait for the
	// rest of its bytes before it is reported as the Escape key.
	escDelay time.Duration
}

// defaultEscDelay is how long a lone ESC waits before it counts as the
// Escape key.
const defaultEscDelay = 50 * time.Millisecond

// NewANSITerminal creates an ANSI backend on the process's stdin/stdout.
func NewANSITerminal() *ANSITerminal {
	return newANSITerminal(os.Stdin, os.Stdout, int(os.Stdin.Fd()))
}

func newANSITerminal(in io.Reader, out io.Writer, fd int) *ANSITerminal {
	return &ANSITerminal{
		in:       in,
		out:      bufio.NewWriter(out),
		fd:       fd,
		events:   make(chan Event, 100),
		escDelay: defaultEscDelay,
	}
}

func (t *ANSITerminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.fd >= 0 {
		saved, err := term.MakeRaw(t.fd)
		if err != nil {
			return fmt.Errorf("enable raw mode: %w", err)
		}
		t.saved = saved
	}

	t.out.WriteString(ansi.SetAltScreenSaveCursorMode)
	t.out.WriteString(ansi.EraseEntireScreen)
	if err := t.out.Flush(); err != nil {
		t.restore()
		return fmt.Errorf("enter alternate screen: %w", err)
	}

	t.width, _ = t.Size()
	t.active = true
	t.stop = make(chan struct{})
	go t.readLoop(t.stop)
	t.watchResize(t.stop)
	return nil
}

func (t *ANSITerminal) Shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.active {
		return
	}
	t.active = false
	close(t.stop)

	t.out.WriteString(ansi.ResetAltScreenSaveCursorMode)
	_ = t.out.Flush() // best-effort; the terminal may already be gone
	t.restore()
}

// restore leaves raw mode. Callers hold t.mu.
func (t *ANSITerminal) restore() {
	if t.saved != nil {
		_ = term.Restore(t.fd, t.saved)
		t.saved = nil
	}
}

func (t *ANSITerminal) Size() (int, int) {
	if t.fd >= 0 {
		if w, h, err := term.GetSize(t.fd); err == nil && w > 0 && h > 0 {
			return w, h
		}
	}
	return defaultWidth, defaultHeight
}

func (t *ANSITerminal) ClearRow(row int) error {
	width, _ := t.Size()

	t.mu.Lock()
	defer t.mu.Unlock()

	t.width = width
	t.rows.row(row).reset()
	t.penY = row

	if _, err := t.out.WriteString(ansi.CursorPosition(1, row+1)); err != nil {
		return err
	}
	_, err := t.out.WriteString(ansi.EraseEntireLine)
	return err
}

func (t *ANSITerminal) WriteText(text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var b strings.Builder
	t.rows.row(t.penY).place(text, t.width, func(_ int, cluster string) {
		b.WriteString(sanitize(cluster))
	})
	_, err := t.out.WriteString(b.String())
	return err
}

func (t *ANSITerminal) MoveCursorTo(col, row int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	x := t.rows.cell(col, row, t.width)
	_, err := t.out.WriteString(ansi.CursorPosition(x+1, row+1))
	return err
}

func (t *ANSITerminal) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.out.Flush()
}

func (t *ANSITerminal) PollEvent() Event {
	return <-t.events
}

func (t *ANSITerminal) PostEvent(event Event) {
	select {
	case t.events <- event:
	default:
		// Event dropped if queue is full
	}
}

// readLoop decodes key events from the input until it fails or the
// terminal shuts down. A partial escape sequence is held until the rest of
// it arrives or escDelay passes without more input.
func (t *ANSITerminal) readLoop(stop <-chan struct{}) {
	chunks := make(chan []byte)
	done := make(chan struct{})
	go t.readInput(stop, chunks, done)

	var pending []byte
	var timeout <-chan time.Time
	for {
		select {
		case chunk := <-chunks:
			pending = t.drain(stop, append(pending, chunk...), false)
		case <-timeout:
			pending = t.drain(stop, pending, true)
		case <-done:
			t.drain(stop, pending, true)
			t.deliver(stop, Event{Type: EventInterrupt, Data: ErrClosed})
			return
		case <-stop:
			return
		}

		timeout = nil
		if len(pending) > 0 && pending[0] == escape {
			timeout = time.After(t.escDelay)
		}
	}
}

// readInput forwards raw input to chunks and closes done when the input
// fails. A read blocked in the kernel cannot be cancelled, so it only
// notices stop after its next read returns.
func (t *ANSITerminal) readInput(stop <-chan struct{}, chunks chan<- []byte, done chan<- struct{}) {
	defer close(done)

	buf := make([]byte, 256)
	for {
		n, err := t.in.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case chunks <- chunk:
			case <-stop:
				return
			}
		}
		if err != nil {
			return
		}
	}
}

// drain delivers every complete key at the front of pending and returns
// the incomplete rest. With force set, a stalled escape sequence yields
// the Escape key and its remaining bytes are decoded on their own.
func (t *ANSITerminal) drain(stop <-chan struct{}, pending []byte, force bool) []byte {
	for len(pending) > 0 {
		ev, used := decodeInput(pending)
		if used == 0 {
			if !force || pending[0] != escape {
				break
			}
			ev, used = keyEvent(KeyEscape, 0), 1
		}
		pending = pending[used:]
		if ev.Type != EventNone {
			t.deliver(stop, ev)
		}
	}
	return pending
}

// deliver queues an event unless the terminal has shut down.
func (t *ANSITerminal) deliver(stop <-chan struct{}, ev Event) {
	select {
	case t.events <- ev:
	case <-stop:
	}
}
