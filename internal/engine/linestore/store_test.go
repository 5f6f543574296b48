package linestore

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func TestEmpty(t *testing.T) {
	s := Empty()
	if s.Len() != 0 {
		t.Errorf("expected 0 lines, got %d", s.Len())
	}

	var nilStore *Store
	if nilStore.Len() != 0 {
		t.Errorf("expected nil store to report 0 lines, got %d", nilStore.Len())
	}
}

func TestFromLines_Copies(t *testing.T) {
	src := []string{"abc", "de"}
	s := FromLines(src...)
	src[0] = "changed"

	if got := s.Line(0); got != "abc" {
		t.Errorf("Line(0) = %q, want %q", got, "abc")
	}
	if s.Len() != 2 || s.Line(1) != "de" {
		t.Errorf("expected [abc de], got %d lines", s.Len())
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"empty", "", nil},
		{"single newline", "\n", []string{""}},
		{"no trailing newline", "abc\nde", []string{"abc", "de"}},
		{"trailing newline", "abc\nde\n", []string{"abc", "de"}},
		{"crlf", "abc\r\nde\r\n", []string{"abc", "de"}},
		{"blank lines kept", "a\n\n\nb", []string{"a", "", "", "b"}},
		{"double trailing newline", "a\n\n", []string{"a", ""}},
		{"lone cr kept mid line", "a\rb\n", []string{"a\rb"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitLines(tt.content)
			if len(got) != len(tt.want) {
				t.Fatalf("splitLines(%q) = %q, want %q", tt.content, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("line %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLineLen_Graphemes(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"abc", 3},
		{"héllo", 5},
		{"éx", 2}, // e + combining acute is one cluster
		{"日本語", 3},
		{"👍🏽!", 2},
	}

	for _, tt := range tests {
		s := FromLines(tt.text)
		if got := s.LineLen(0); got != tt.want {
			t.Errorf("LineLen(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestSlice(t *testing.T) {
	s := FromLines("abcdefgh", "日本語テキスト", "")

	tests := []struct {
		line, from, n int
		want          string
	}{
		{0, 0, 4, "abcd"},
		{0, 4, 4, "efgh"},
		{0, 6, 4, "gh"},
		{0, 8, 4, ""},
		{0, 20, 4, ""},
		{0, 0, 0, ""},
		{0, -1, 2, "ab"},
		{0, 2, int(^uint(0) >> 1), "cdefgh"},
		{1, 1, 2, "本語"},
		{1, 5, 10, "スト"},
		{2, 0, 10, ""},
	}

	for _, tt := range tests {
		if got := s.Slice(tt.line, tt.from, tt.n); got != tt.want {
			t.Errorf("Slice(%d, %d, %d) = %q, want %q", tt.line, tt.from, tt.n, got, tt.want)
		}
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.txt")
	if err := os.WriteFile(path, []byte("first\nsecond\n"), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 lines, got %d", s.Len())
	}
	if s.Line(1) != "second" {
		t.Errorf("Line(1) = %q, want %q", s.Line(1), "second")
	}
}

func TestOpen_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("expected 0 lines, got %d", s.Len())
	}
}

func TestOpen_NotFound(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.txt"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, ErrIO) {
		t.Errorf("expected ErrIO, got %v", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist in chain, got %v", err)
	}

	var ioErr *IOError
	if !errors.As(err, &ioErr) || ioErr.Op != "read" {
		t.Errorf("expected *IOError with op read, got %#v", err)
	}
}

func TestOpenFS_InvalidUTF8(t *testing.T) {
	fsys := fstest.MapFS{
		"bad.txt": {Data: []byte("ok\nbad \xff byte\n")},
	}

	_, err := OpenFS(fsys, "bad.txt")
	if err == nil {
		t.Fatal("expected decode error")
	}
	if !errors.Is(err, ErrDecode) {
		t.Errorf("expected ErrDecode, got %v", err)
	}
	if !errors.Is(err, ErrIO) {
		t.Errorf("expected ErrIO, got %v", err)
	}
	if got := err.Error(); got != "decode bad.txt: invalid utf-8 on line 2" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestOpenFS_ByteOrderMarks(t *testing.T) {
	fsys := fstest.MapFS{
		"utf8.txt":    {Data: []byte("\xef\xbb\xbfabc\nde\n")},
		"utf16le.txt": {Data: []byte{0xff, 0xfe, 'h', 0, 'i', 0, '\n', 0}},
	}

	s, err := OpenFS(fsys, "utf8.txt")
	if err != nil {
		t.Fatalf("OpenFS(utf8) error = %v", err)
	}
	if s.Line(0) != "abc" {
		t.Errorf("expected BOM stripped, got %q", s.Line(0))
	}

	s, err = OpenFS(fsys, "utf16le.txt")
	if err != nil {
		t.Fatalf("OpenFS(utf16le) error = %v", err)
	}
	if s.Len() != 1 || s.Line(0) != "hi" {
		t.Errorf("expected [hi], got %d lines", s.Len())
	}
}
