package backend

import "unicode/utf8"

const escape = 0x1b

// maxCSI bounds the parameter bytes of a CSI sequence that has not yet
// seen its final byte.
const maxCSI = 32

// decodeInput decodes one key from the start of b and returns it with the
// number of bytes consumed. It returns 0 bytes when b holds an incomplete
// UTF-8 or escape sequence and more input is needed. Unrecognized
// sequences are consumed and reported as EventNone.
func decodeInput(b []byte) (Event, int) {
	if len(b) == 0 {
		return Event{}, 0
	}

	c := b[0]
	switch {
	case c == escape:
		return decodeEscape(b)
	case c == '\r' || c == '\n':
		return keyEvent(KeyEnter, 0), 1
	case c == '\t':
		return keyEvent(KeyTab, 0), 1
	case c == 0x7f || c == 0x08:
		return keyEvent(KeyBackspace, 0), 1
	case c >= 0x01 && c <= 0x1a:
		return keyEvent(KeyCtrl, rune('a'+c-1)), 1
	case c < 0x20:
		return Event{}, 1
	}

	if !utf8.FullRune(b) {
		return Event{}, 0
	}
	r, size := utf8.DecodeRune(b)
	if r == utf8.RuneError && size <= 1 {
		return Event{}, 1
	}
	return keyEvent(KeyRune, r), size
}

// decodeEscape handles input beginning with ESC: a lone escape, a CSI or
// SS3 sequence, or an Alt chord. A lone ESC is incomplete; the caller
// decides when it stands for the Escape key.
func decodeEscape(b []byte) (Event, int) {
	if len(b) == 1 {
		return Event{}, 0
	}

	switch b[1] {
	case '[':
		return decodeCSI(b)
	case 'O':
		if len(b) < 3 {
			return Event{}, 0
		}
		if k := finalKey(b[2]); k != KeyNone {
			return keyEvent(k, 0), 3
		}
		return Event{}, 3
	case escape:
		return keyEvent(KeyEscape, 0), 1
	}

	ev, n := decodeInput(b[1:])
	if n == 0 {
		return Event{}, 0
	}
	ev.Mod |= ModAlt
	return ev, n + 1
}

// decodeCSI decodes ESC [ params final.
func decodeCSI(b []byte) (Event, int) {
	i := 2
	for i < len(b) && b[i] >= 0x30 && b[i] <= 0x3f {
		i++
	}
	if i >= len(b) {
		if i-2 > maxCSI {
			return Event{}, len(b)
		}
		return Event{}, 0
	}

	params := b[2:i]
	final := b[i]
	n := i + 1

	var k Key
	if final == '~' {
		k = tildeKey(params)
	} else {
		k = finalKey(final)
	}
	if k == KeyNone {
		return Event{}, n
	}
	ev := keyEvent(k, 0)
	ev.Mod = csiModifier(params)
	return ev, n
}

func finalKey(c byte) Key {
	switch c {
	case 'A':
		return KeyUp
	case 'B':
		return KeyDown
	case 'C':
		return KeyRight
	case 'D':
		return KeyLeft
	case 'H':
		return KeyHome
	case 'F':
		return KeyEnd
	default:
		return KeyNone
	}
}

func tildeKey(params []byte) Key {
	num := 0
	for _, c := range params {
		if c < '0' || c > '9' {
			break
		}
		num = num*10 + int(c-'0')
	}
	switch num {
	case 1, 7:
		return KeyHome
	case 4, 8:
		return KeyEnd
	case 5:
		return KeyPageUp
	case 6:
		return KeyPageDown
	default:
		return KeyNone
	}
}

// csiModifier reads the xterm modifier parameter from "1;<mod>".
func csiModifier(params []byte) ModMask {
	sep := -1
	for i, c := range params {
		if c == ';' {
			sep = i
			break
		}
	}
	if sep < 0 || sep+1 >= len(params) {
		return ModNone
	}
	code := 0
	for _, c := range params[sep+1:] {
		if c < '0' || c > '9' {
			break
		}
		code = code*10 + int(c-'0')
	}
	if code < 2 {
		return ModNone
	}
	bits := code - 1
	var m ModMask
	if bits&1 != 0 {
		m |= ModShift
	}
	if bits&2 != 0 {
		m |= ModAlt
	}
	if bits&4 != 0 {
		m |= ModCtrl
	}
	if bits&8 != 0 {
		m |= ModMeta
	}
	return m
}

func keyEvent(k Key, r rune) Event {
	return Event{Type: EventKey, Key: k, Rune: r}
}
