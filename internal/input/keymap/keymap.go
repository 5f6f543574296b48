package keymap

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dshills/lineview/internal/renderer/backend"
	"github.com/dshills/lineview/internal/renderer/viewport"
)

// ErrConflict is returned when one key is bound to two commands.
var ErrConflict = errors.New("conflicting key binding")

// Command is an action the viewer performs in response to a key.
type Command int

const (
	None Command = iota
	Up
	Down
	Left
	Right
	Exit
)

// String returns the command name.
func (c Command) String() string {
	switch c {
	case None:
		return "none"
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	case Exit:
		return "exit"
	default:
		return fmt.Sprintf("Command(%d)", int(c))
	}
}

// Direction returns the cursor direction of a movement command.
func (c Command) Direction() (viewport.Direction, bool) {
	switch c {
	case Up:
		return viewport.Up, true
	case Down:
		return viewport.Down, true
	case Left:
		return viewport.Left, true
	case Right:
		return viewport.Right, true
	default:
		return 0, false
	}
}

// Map holds key-to-command bindings. A Map is immutable once built.
type Map struct {
	bindings map[Key]Command
}

// New builds a Map from key names per command. A key name that does not
// parse, or a key bound to more than one command, is an error.
func New(bindings map[Command][]string) (*Map, error) {
	m := &Map{bindings: make(map[Key]Command)}

	// Iterate in command order so errors are deterministic.
	cmds := make([]Command, 0, len(bindings))
	for cmd := range bindings {
		cmds = append(cmds, cmd)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i] < cmds[j] })

	for _, cmd := range cmds {
		if cmd <= None || cmd > Exit {
			return nil, fmt.Errorf("unknown command %v", cmd)
		}
		for _, name := range bindings[cmd] {
			k, err := Parse(name)
			if err != nil {
				return nil, fmt.Errorf("binding %q for %s: %w", name, cmd, err)
			}
			if prev, ok := m.bindings[k]; ok && prev != cmd {
				return nil, fmt.Errorf("%w: %s bound to both %s and %s", ErrConflict, k, prev, cmd)
			}
			m.bindings[k] = cmd
		}
	}
	return m, nil
}

// DefaultBindings returns the default key names per command.
func DefaultBindings() map[Command][]string {
	return map[Command][]string{
		Up:    {"up"},
		Down:  {"down"},
		Left:  {"left"},
		Right: {"right"},
		Exit:  {"esc", "ctrl+c", "ctrl+q"},
	}
}

// Default returns the default key map.
func Default() *Map {
	m, err := New(DefaultBindings())
	if err != nil {
		panic("default key bindings: " + err.Error())
	}
	return m
}

// Lookup returns the command bound to k, or None.
func (m *Map) Lookup(k Key) Command {
	if m == nil {
		return None
	}
	return m.bindings[k]
}

// LookupEvent returns the command bound to a backend key event, or None
// for any other event.
func (m *Map) LookupEvent(ev backend.Event) Command {
	if ev.Type != backend.EventKey {
		return None
	}
	return m.Lookup(FromEvent(ev))
}

// Keys returns the keys bound to cmd, sorted by name.
func (m *Map) Keys(cmd Command) []Key {
	var keys []Key
	for k, c := range m.bindings {
		if c == cmd {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}

// Len returns the number of bound keys.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.bindings)
}
