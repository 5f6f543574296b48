package backend

import (
	"errors"
	"reflect"
	"testing"

	"github.com/dshills/lineview/internal/renderer/viewport"
)

var _ Backend = (*NullBackend)(nil)
var _ Backend = (*Terminal)(nil)
var _ Backend = (*ANSITerminal)(nil)

func TestNullBackendInit(t *testing.T) {
	b := NewNullBackend(80, 24)
	if err := b.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	w, h := b.Size()
	if w != 80 || h != 24 {
		t.Errorf("expected size (80, 24), got (%d, %d)", w, h)
	}
	if !b.Active() {
		t.Error("backend should be active after Init")
	}
}

func TestNullBackendInitFailure(t *testing.T) {
	b := NewNullBackend(80, 24)
	boom := errors.New("no tty")
	b.FailInit(boom)

	if err := b.Init(); !errors.Is(err, boom) {
		t.Errorf("expected %v, got %v", boom, err)
	}
	if b.Active() {
		t.Error("backend should not be active after failed Init")
	}
}

func TestNullBackendShutdown(t *testing.T) {
	b := NewNullBackend(80, 24)
	b.Init()
	b.Shutdown()
	b.Shutdown()

	if b.Active() {
		t.Error("backend should be inactive after Shutdown")
	}
	if b.Shutdowns() != 2 {
		t.Errorf("expected 2 shutdowns, got %d", b.Shutdowns())
	}
}

func TestNullBackendRecordsSinkCalls(t *testing.T) {
	b := NewNullBackend(10, 3)
	b.Init()

	b.ClearRow(1)
	b.WriteText("ab")
	b.WriteText("cd")
	b.MoveCursorTo(2, 1)
	b.Flush()

	want := []string{"clear 1", "write ab", "write cd", "cursor 2 1", "flush"}
	if got := b.Ops(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected ops %q, got %q", want, got)
	}
	if got := b.Row(1); got != "abcd" {
		t.Errorf("expected row 1 %q, got %q", "abcd", got)
	}
	if x, y := b.CursorPosition(); x != 2 || y != 1 {
		t.Errorf("expected cursor (2, 1), got (%d, %d)", x, y)
	}

	b.ClearRow(1)
	if got := b.Row(1); got != "" {
		t.Errorf("expected cleared row, got %q", got)
	}

	b.ResetOps()
	if len(b.Ops()) != 0 {
		t.Error("ResetOps should drop recorded calls")
	}
}

func TestNullBackendFailures(t *testing.T) {
	b := NewNullBackend(10, 3)
	b.Init()

	boom := errors.New("broken pipe")
	b.FailWrites(boom)
	if err := b.ClearRow(0); !errors.Is(err, boom) {
		t.Errorf("ClearRow: expected %v, got %v", boom, err)
	}
	if err := b.WriteText("x"); !errors.Is(err, boom) {
		t.Errorf("WriteText: expected %v, got %v", boom, err)
	}

	b.FailFlush(boom)
	if err := b.Flush(); !errors.Is(err, boom) {
		t.Errorf("Flush: expected %v, got %v", boom, err)
	}
}

func TestNullBackendResize(t *testing.T) {
	b := NewNullBackend(80, 24)
	b.Init()
	b.ClearRow(0)
	b.WriteText("keep")

	b.Resize(100, 40)

	w, h := b.Size()
	if w != 100 || h != 40 {
		t.Errorf("expected size (100, 40), got (%d, %d)", w, h)
	}
	if got := b.Row(0); got != "keep" {
		t.Errorf("expected row 0 preserved, got %q", got)
	}

	ev := b.PollEvent()
	if ev.Type != EventResize || ev.Width != 100 || ev.Height != 40 {
		t.Errorf("expected resize event (100, 40), got %+v", ev)
	}
}

func TestNullBackendPostEvent(t *testing.T) {
	b := NewNullBackend(80, 24)
	b.Init()

	b.PostEvent(Event{Type: EventKey, Key: KeyEnter})

	got := b.PollEvent()
	if got.Type != EventKey || got.Key != KeyEnter {
		t.Errorf("expected enter key event, got %+v", got)
	}
}

func TestNullBackendAsRenderSink(t *testing.T) {
	b := NewNullBackend(4, 2)
	b.Init()

	v, err := viewport.New(lines{"abcdef", "gh", "ijk"}, 4, 2)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := v.Render(b); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if got := b.Row(0); got != "abcd" {
		t.Errorf("expected row 0 %q, got %q", "abcd", got)
	}
	if got := b.Row(1); got != "gh" {
		t.Errorf("expected row 1 %q, got %q", "gh", got)
	}
}

func TestModMaskHas(t *testing.T) {
	mod := ModShift | ModCtrl

	if !mod.Has(ModShift) {
		t.Error("should have shift")
	}
	if !mod.Has(ModCtrl) {
		t.Error("should have ctrl")
	}
	if mod.Has(ModAlt) {
		t.Error("should not have alt")
	}
}

func TestEventTypeString(t *testing.T) {
	tests := []struct {
		typ  EventType
		want string
	}{
		{EventNone, "none"},
		{EventKey, "key"},
		{EventResize, "resize"},
		{EventInterrupt, "interrupt"},
		{EventType(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("EventType(%d).String(): expected %q, got %q", int(tt.typ), tt.want, got)
		}
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"a\tb", "a b"},
		{"bell\x07", "bell?"},
		{"esc\x1b[2J", "esc?[2J"},
		{"héllo", "héllo"},
	}

	for _, tt := range tests {
		if got := sanitize(tt.in); got != tt.want {
			t.Errorf("sanitize(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

// lines is a minimal viewport.Lines over ASCII strings.
type lines []string

func (l lines) Len() int { return len(l) }

func (l lines) LineLen(i int) int { return len(l[i]) }

func (l lines) Slice(i, from, n int) string {
	s := l[i]
	if from >= len(s) {
		return ""
	}
	s = s[from:]
	if n < len(s) {
		s = s[:n]
	}
	return s
}
