package backend

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
)

func TestANSITerminalOutput(t *testing.T) {
	var out bytes.Buffer
	term := newANSITerminal(strings.NewReader(""), &out, -1)
	if err := term.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	want := ansi.SetAltScreenSaveCursorMode + ansi.EraseEntireScreen
	if got := out.String(); got != want {
		t.Errorf("expected init sequence %q, got %q", want, got)
	}
	out.Reset()

	term.ClearRow(2)
	term.WriteText("hi\x07")
	term.MoveCursorTo(4, 2)
	if out.Len() != 0 {
		t.Errorf("expected output to be buffered until Flush, got %q", out.String())
	}
	if err := term.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	want = ansi.CursorPosition(1, 3) + ansi.EraseEntireLine + "hi?" + ansi.CursorPosition(5, 3)
	if got := out.String(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	out.Reset()

	term.Shutdown()
	term.Shutdown()
	if got := out.String(); got != ansi.ResetAltScreenSaveCursorMode {
		t.Errorf("expected a single restore sequence, got %q", got)
	}
}

type failingWriter struct{ err error }

func (w failingWriter) Write([]byte) (int, error) { return 0, w.err }

func TestANSITerminalFlushError(t *testing.T) {
	boom := errors.New("broken pipe")
	term := newANSITerminal(strings.NewReader(""), failingWriter{boom}, -1)

	if err := term.Init(); !errors.Is(err, boom) {
		t.Fatalf("expected Init to fail with %v, got %v", boom, err)
	}
	if err := term.Flush(); !errors.Is(err, boom) {
		t.Errorf("expected Flush to fail with %v, got %v", boom, err)
	}
}

func TestANSITerminalSizeFallback(t *testing.T) {
	term := newANSITerminal(strings.NewReader(""), &bytes.Buffer{}, -1)

	w, h := term.Size()
	if w != defaultWidth || h != defaultHeight {
		t.Errorf("expected (%d, %d), got (%d, %d)", defaultWidth, defaultHeight, w, h)
	}
}

func TestANSITerminalReadsKeys(t *testing.T) {
	in := strings.NewReader("\x1b[Bq\x11")
	term := newANSITerminal(in, &bytes.Buffer{}, -1)
	if err := term.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer term.Shutdown()

	want := []Event{
		{Type: EventKey, Key: KeyDown},
		{Type: EventKey, Key: KeyRune, Rune: 'q'},
		{Type: EventKey, Key: KeyCtrl, Rune: 'q'},
	}
	for i, w := range want {
		if got := term.PollEvent(); got != w {
			t.Errorf("event %d: expected %+v, got %+v", i, w, got)
		}
	}

	ev := term.PollEvent()
	if ev.Type != EventInterrupt || ev.Data != ErrClosed {
		t.Errorf("expected closed interrupt at end of input, got %+v", ev)
	}
}

// chunkReader returns one chunk per Read, then io.EOF.
type chunkReader struct {
	chunks []string
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.chunks[0])
	r.chunks = r.chunks[1:]
	return n, nil
}

func TestANSITerminalSplitEscapeSequence(t *testing.T) {
	tests := []struct {
		name   string
		chunks []string
		want   []Event
	}{
		{
			name:   "arrow across reads",
			chunks: []string{"\x1b", "[B"},
			want:   []Event{keyEvent(KeyDown, 0)},
		},
		{
			name:   "modified arrow across reads",
			chunks: []string{"\x1b[1;", "5C"},
			want:   []Event{{Type: EventKey, Key: KeyRight, Mod: ModCtrl}},
		},
		{
			name:   "ss3 across reads",
			chunks: []string{"\x1bO", "A"},
			want:   []Event{keyEvent(KeyUp, 0)},
		},
		{
			name:   "escape at end of input",
			chunks: []string{"j\x1b"},
			want:   []Event{keyEvent(KeyRune, 'j'), keyEvent(KeyEscape, 0)},
		},
		{
			name:   "stalled csi at end of input",
			chunks: []string{"\x1b["},
			want:   []Event{keyEvent(KeyEscape, 0), keyEvent(KeyRune, '[')},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term := newANSITerminal(&chunkReader{chunks: tt.chunks}, &bytes.Buffer{}, -1)
			term.escDelay = time.Hour
			if err := term.Init(); err != nil {
				t.Fatalf("Init failed: %v", err)
			}
			defer term.Shutdown()

			for i, w := range tt.want {
				if got := term.PollEvent(); got != w {
					t.Errorf("event %d: expected %+v, got %+v", i, w, got)
				}
			}
			if ev := term.PollEvent(); ev.Type != EventInterrupt || ev.Data != ErrClosed {
				t.Errorf("expected closed interrupt at end of input, got %+v", ev)
			}
		})
	}
}

func TestANSITerminalLoneEscapeAfterDelay(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()

	term := newANSITerminal(r, &bytes.Buffer{}, -1)
	term.escDelay = 10 * time.Millisecond
	if err := term.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer term.Shutdown()

	if _, err := w.Write([]byte{escape}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if ev := term.PollEvent(); ev != keyEvent(KeyEscape, 0) {
		t.Errorf("expected Escape once input stalls, got %+v", ev)
	}

	if _, err := w.Write([]byte("\x1b[A")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if ev := term.PollEvent(); ev != keyEvent(KeyUp, 0) {
		t.Errorf("expected KeyUp, got %+v", ev)
	}
}

func TestANSITerminalWideGlyphCursor(t *testing.T) {
	var out bytes.Buffer
	term := newANSITerminal(strings.NewReader(""), &out, -1)
	if err := term.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer term.Shutdown()
	out.Reset()

	term.ClearRow(0)
	term.WriteText("日本語x")
	term.MoveCursorTo(2, 0)
	term.MoveCursorTo(4, 0)
	term.Flush()

	want := ansi.CursorPosition(1, 1) + ansi.EraseEntireLine + "日本語x" +
		ansi.CursorPosition(5, 1) + ansi.CursorPosition(8, 1)
	if got := out.String(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestANSITerminalPostEvent(t *testing.T) {
	term := newANSITerminal(strings.NewReader(""), &bytes.Buffer{}, -1)

	term.PostEvent(Event{Type: EventInterrupt, Data: "reload"})
	if ev := term.PollEvent(); ev.Data != "reload" {
		t.Errorf("expected posted interrupt, got %+v", ev)
	}
}

func TestDecodeInput(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Event
		used int
	}{
		{"rune", "a", keyEvent(KeyRune, 'a'), 1},
		{"multibyte rune", "é!", keyEvent(KeyRune, 'é'), 2},
		{"partial rune", "\xc3", Event{}, 0},
		{"invalid byte", "\xff", Event{}, 1},
		{"enter", "\r", keyEvent(KeyEnter, 0), 1},
		{"tab", "\t", keyEvent(KeyTab, 0), 1},
		{"backspace", "\x7f", keyEvent(KeyBackspace, 0), 1},
		{"ctrl+c", "\x03", keyEvent(KeyCtrl, 'c'), 1},
		{"ctrl+q", "\x11", keyEvent(KeyCtrl, 'q'), 1},
		{"lone escape", "\x1b", Event{}, 0},
		{"double escape", "\x1b\x1b", keyEvent(KeyEscape, 0), 1},
		{"up", "\x1b[A", keyEvent(KeyUp, 0), 3},
		{"down", "\x1b[Bxyz", keyEvent(KeyDown, 0), 3},
		{"right", "\x1b[C", keyEvent(KeyRight, 0), 3},
		{"left", "\x1b[D", keyEvent(KeyLeft, 0), 3},
		{"ss3 up", "\x1bOA", keyEvent(KeyUp, 0), 3},
		{"home", "\x1b[H", keyEvent(KeyHome, 0), 3},
		{"end tilde", "\x1b[4~", keyEvent(KeyEnd, 0), 4},
		{"page up", "\x1b[5~", keyEvent(KeyPageUp, 0), 4},
		{"delete ignored", "\x1b[3~", Event{}, 4},
		{"ctrl+right", "\x1b[1;5C", Event{Type: EventKey, Key: KeyRight, Mod: ModCtrl}, 6},
		{"shift+up", "\x1b[1;2A", Event{Type: EventKey, Key: KeyUp, Mod: ModShift}, 6},
		{"unknown csi", "\x1b[99z", Event{}, 5},
		{"truncated csi", "\x1b[1;", Event{}, 0},
		{"bare csi", "\x1b[", Event{}, 0},
		{"bare ss3", "\x1bO", Event{}, 0},
		{"runaway csi", "\x1b[" + strings.Repeat("1", maxCSI+1), Event{}, maxCSI + 3},
		{"alt partial rune", "\x1b\xc3", Event{}, 0},
		{"alt+x", "\x1bx", Event{Type: EventKey, Key: KeyRune, Rune: 'x', Mod: ModAlt}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, used := decodeInput([]byte(tt.in))
			if got != tt.want || used != tt.used {
				t.Errorf("expected (%+v, %d), got (%+v, %d)", tt.want, tt.used, got, used)
			}
		})
	}
}
