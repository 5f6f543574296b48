package linestore

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/rivo/uniseg"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Store is an immutable, ordered sequence of text lines.
// The zero value is an empty store.
type Store struct {
	lines []line
}

// line holds the text of one source line plus the byte offset of each
// grapheme cluster. bounds is nil for pure ASCII lines, where clusters and
// bytes coincide.
type line struct {
	text   string
	bounds []int
}

// Empty returns a store with no lines.
func Empty() *Store {
	return &Store{}
}

// FromLines builds a store from the given lines. Lines must not contain
// line terminators; the slice is copied.
func FromLines(lines ...string) *Store {
	s := &Store{lines: make([]line, len(lines))}
	for i, text := range lines {
		s.lines[i] = newLine(text)
	}
	return s
}

// Open reads the file at path into a store.
func Open(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}
	return parse(path, data)
}

// OpenFS reads the named file from fsys into a store.
func OpenFS(fsys fs.FS, name string) (*Store, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, &IOError{Op: "read", Path: name, Err: err}
	}
	return parse(name, data)
}

// parse decodes data and splits it into lines.
func parse(path string, data []byte) (*Store, error) {
	// A byte order mark selects the matching decoder; without one the
	// content is passed through untouched and must already be UTF-8.
	decoded, _, err := transform.Bytes(unicode.BOMOverride(transform.Nop), data)
	if err != nil {
		return nil, &IOError{Op: "decode", Path: path, Err: fmt.Errorf("%w: %v", ErrDecode, err)}
	}
	if off := invalidOffset(decoded); off >= 0 {
		lineNo := bytes.Count(decoded[:off], []byte{'\n'}) + 1
		return nil, &IOError{Op: "decode", Path: path, Err: fmt.Errorf("%w on line %d", ErrDecode, lineNo)}
	}

	return FromLines(splitLines(string(decoded))...), nil
}

// invalidOffset returns the offset of the first invalid UTF-8 sequence,
// or -1 if the data is valid.
func invalidOffset(data []byte) int {
	if utf8.Valid(data) {
		return -1
	}
	for off := 0; off < len(data); {
		r, size := utf8.DecodeRune(data[off:])
		if r == utf8.RuneError && size <= 1 {
			return off
		}
		off += size
	}
	return -1
}

// splitLines splits on '\n', dropping one trailing '\r' per line. A final
// terminator does not start an extra empty line, and empty content has no
// lines at all.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	content = strings.TrimSuffix(content, "\n")
	parts := strings.Split(content, "\n")
	for i, p := range parts {
		parts[i] = strings.TrimSuffix(p, "\r")
	}
	return parts
}

func newLine(text string) line {
	l := line{text: text}
	if isASCII(text) {
		return l
	}

	l.bounds = make([]int, 0, utf8.RuneCountInString(text))
	state := -1
	off := 0
	rest := text
	for rest != "" {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		l.bounds = append(l.bounds, off)
		off += len(cluster)
	}
	return l
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// Len returns the number of lines.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.lines)
}

// Line returns the text of line i. It panics if i is out of range.
func (s *Store) Line(i int) string {
	return s.lines[i].text
}

// LineLen returns the length of line i in columns. It panics if i is out of
// range.
func (s *Store) LineLen(i int) int {
	return s.lines[i].columns()
}

// Slice returns at most n columns of line i starting at column from.
// The result is empty when from is at or past the end of the line.
func (s *Store) Slice(i, from, n int) string {
	return s.lines[i].slice(from, n)
}

func (l line) columns() int {
	if l.bounds == nil {
		return len(l.text)
	}
	return len(l.bounds)
}

// byteOffset maps a column to a byte offset, clamping to the line end.
func (l line) byteOffset(col int) int {
	if col >= l.columns() {
		return len(l.text)
	}
	if l.bounds == nil {
		return col
	}
	return l.bounds[col]
}

func (l line) slice(from, n int) string {
	if from < 0 {
		from = 0
	}
	cols := l.columns()
	if n <= 0 || from >= cols {
		return ""
	}
	if n > cols-from {
		n = cols - from
	}
	return l.text[l.byteOffset(from):l.byteOffset(from+n)]
}
