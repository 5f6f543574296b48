// Package keymap binds keys to viewer commands.
//
// The viewer understands a fixed set of commands: moving the cursor in one
// of four directions and exiting. A Map translates backend key events into
// those commands; keys without a binding translate to None and are ignored.
//
// # Key Names
//
// Bindings are written as key names in configuration files:
//
//	"up", "down", "left", "right"  - Arrow keys
//	"esc", "enter", "tab"          - Special keys
//	"ctrl+q", "<C-q>"              - Control chords
//	"k", "J", "?"                  - Single characters
//
// Names are case-insensitive except for single characters.
//
// # Defaults
//
// Default binds the arrow keys to movement and esc, ctrl+c and ctrl+q to
// Exit.
package keymap
