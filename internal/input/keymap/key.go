package keymap

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dshills/lineview/internal/renderer/backend"
)

// Parse errors
var (
	ErrEmptySpec   = errors.New("empty key specification")
	ErrInvalidSpec = errors.New("invalid key specification")
)

// Key identifies a bindable key. Rune is set for backend.KeyRune and
// backend.KeyCtrl and zero otherwise.
type Key struct {
	Code backend.Key
	Rune rune
}

var namedKeys = map[string]backend.Key{
	"up":        backend.KeyUp,
	"down":      backend.KeyDown,
	"left":      backend.KeyLeft,
	"right":     backend.KeyRight,
	"esc":       backend.KeyEscape,
	"escape":    backend.KeyEscape,
	"enter":     backend.KeyEnter,
	"return":    backend.KeyEnter,
	"cr":        backend.KeyEnter,
	"tab":       backend.KeyTab,
	"bs":        backend.KeyBackspace,
	"backspace": backend.KeyBackspace,
	"home":      backend.KeyHome,
	"end":       backend.KeyEnd,
	"pageup":    backend.KeyPageUp,
	"pgup":      backend.KeyPageUp,
	"pagedown":  backend.KeyPageDown,
	"pgdn":      backend.KeyPageDown,
}

// Parse parses a key name into a Key.
//
// Supported formats:
//   - Single character: "k", "K", "?"
//   - Special keys: "up", "esc", "enter", "space"
//   - Control chords: "ctrl+q", "Ctrl+Q", "<C-q>"
func Parse(spec string) (Key, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Key{}, ErrEmptySpec
	}

	if strings.HasPrefix(spec, "<") && strings.HasSuffix(spec, ">") && len(spec) > 2 {
		inner := spec[1 : len(spec)-1]
		if rest, ok := cutFold(inner, "c-"); ok {
			return parseCtrl(rest)
		}
		return parseSingle(inner)
	}

	if rest, ok := cutFold(spec, "ctrl+"); ok {
		return parseCtrl(rest)
	}
	return parseSingle(spec)
}

// MustParse parses a key name and panics on error.
// Use only for known-valid names in initialization code.
func MustParse(spec string) Key {
	k, err := Parse(spec)
	if err != nil {
		panic("invalid key specification: " + spec + ": " + err.Error())
	}
	return k
}

func parseCtrl(letter string) (Key, error) {
	if utf8.RuneCountInString(letter) != 1 {
		return Key{}, fmt.Errorf("%w: ctrl needs a single letter, got %q", ErrInvalidSpec, letter)
	}
	r := unicode.ToLower([]rune(letter)[0])
	if r < 'a' || r > 'z' {
		return Key{}, fmt.Errorf("%w: ctrl needs a letter, got %q", ErrInvalidSpec, letter)
	}
	return Key{Code: backend.KeyCtrl, Rune: r}, nil
}

func parseSingle(spec string) (Key, error) {
	lower := strings.ToLower(spec)
	if code, ok := namedKeys[lower]; ok {
		return Key{Code: code}, nil
	}
	if lower == "space" {
		return Key{Code: backend.KeyRune, Rune: ' '}, nil
	}

	if utf8.RuneCountInString(spec) == 1 {
		r := []rune(spec)[0]
		if !unicode.IsPrint(r) {
			return Key{}, fmt.Errorf("%w: unprintable key %q", ErrInvalidSpec, spec)
		}
		return Key{Code: backend.KeyRune, Rune: r}, nil
	}

	return Key{}, fmt.Errorf("%w: unknown key %q", ErrInvalidSpec, spec)
}

// cutFold is strings.CutPrefix with case-insensitive matching.
func cutFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return s, false
	}
	return s[len(prefix):], true
}

// FromEvent returns the key of a backend key event. Modifiers other than
// the control chords themselves are not part of a Key.
func FromEvent(ev backend.Event) Key {
	switch ev.Key {
	case backend.KeyRune, backend.KeyCtrl:
		return Key{Code: ev.Key, Rune: ev.Rune}
	default:
		return Key{Code: ev.Key}
	}
}

// String returns the canonical name of the key, which Parse accepts.
func (k Key) String() string {
	switch k.Code {
	case backend.KeyRune:
		if k.Rune == ' ' {
			return "space"
		}
		return string(k.Rune)
	case backend.KeyCtrl:
		return "ctrl+" + string(k.Rune)
	case backend.KeyUp:
		return "up"
	case backend.KeyDown:
		return "down"
	case backend.KeyLeft:
		return "left"
	case backend.KeyRight:
		return "right"
	case backend.KeyEscape:
		return "esc"
	case backend.KeyEnter:
		return "enter"
	case backend.KeyTab:
		return "tab"
	case backend.KeyBackspace:
		return "backspace"
	case backend.KeyHome:
		return "home"
	case backend.KeyEnd:
		return "end"
	case backend.KeyPageUp:
		return "pageup"
	case backend.KeyPageDown:
		return "pagedown"
	default:
		return "none"
	}
}
