// Package viewport maps an immutable line sequence onto a fixed-size window
// and tracks a cursor inside it.
//
// The Viewport keeps four invariants after every operation on a non-empty
// store:
//
//  1. The absolute row offsetY+cursorY is a valid line index.
//  2. The absolute column offsetX+cursorX is at most the line length.
//  3. cursorX < width and cursorY < height.
//  4. offsetX is zero whenever the current line fits in the width.
//
// A Viewport is not safe for concurrent use; it belongs to the session
// goroutine that drives it.
package viewport

import (
	"fmt"
	"math"
)

// MaxCoord is the largest coordinate a terminal can address.
const MaxCoord = math.MaxUint16

// Lines is the read-only line source a Viewport displays.
// *linestore.Store implements it.
type Lines interface {
	Len() int
	LineLen(i int) int
	Slice(i, from, n int) string
}

// Sink receives rendered output. Methods are called in the order
// ClearRow, WriteText (per row), MoveCursorTo, Flush.
type Sink interface {
	// ClearRow blanks a row and moves the write position to its start.
	ClearRow(row int) error
	// WriteText writes text at the current write position.
	WriteText(text string) error
	// MoveCursorTo places the visible cursor.
	MoveCursorTo(col, row int) error
	// Flush makes pending output visible.
	Flush() error
}

// Direction is a cursor movement command.
type Direction uint8

const (
	Up Direction = iota
	Down
	Left
	Right
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
}

// state is the mutable part of a Viewport. Moves work on a copy and commit
// it only when every coordinate is representable.
type state struct {
	offsetX, offsetY int
	cursorX, cursorY int
}

// Viewport is the visible window into a Lines source plus cursor state.
type Viewport struct {
	lines  Lines
	width  int
	height int
	limit  int
	state
}

// New creates a viewport over lines with the cursor at the origin.
func New(lines Lines, width, height int) (*Viewport, error) {
	if err := checkSize(width, height, MaxCoord); err != nil {
		return nil, err
	}
	return &Viewport{
		lines:  lines,
		width:  width,
		height: height,
		limit:  MaxCoord,
	}, nil
}

func checkSize(width, height, limit int) error {
	if width < 1 || height < 1 || width > limit || height > limit {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	return nil
}

// Width returns the viewport width in columns.
func (v *Viewport) Width() int { return v.width }

// Height returns the viewport height in rows.
func (v *Viewport) Height() int { return v.height }

// Cursor returns the cursor position relative to the viewport.
func (v *Viewport) Cursor() (x, y int) { return v.cursorX, v.cursorY }

// Offset returns the scroll offsets.
func (v *Viewport) Offset() (x, y int) { return v.offsetX, v.offsetY }

// Position returns the absolute cursor position in the line source.
func (v *Viewport) Position() (col, row int) {
	return v.offsetX + v.cursorX, v.offsetY + v.cursorY
}

// VisibleLineRange returns the first line index shown and the index one
// past the last line shown.
func (v *Viewport) VisibleLineRange() (start, end int) {
	start = v.offsetY
	end = min(v.offsetY+v.height, v.lines.Len())
	if end < start {
		end = start
	}
	return start, end
}

// Render draws the visible rows to sink, places the cursor and flushes.
// It does not change viewport state.
func (v *Viewport) Render(sink Sink) error {
	if v.lines.Len() > 0 {
		start, end := v.VisibleLineRange()
		for row := 0; row < v.height; row++ {
			if err := sink.ClearRow(row); err != nil {
				return &SinkError{Op: "clear row", Err: err}
			}
			i := start + row
			if i >= end {
				continue
			}
			text := v.lines.Slice(i, v.offsetX, v.width)
			if text == "" {
				continue
			}
			if err := sink.WriteText(text); err != nil {
				return &SinkError{Op: "write", Err: err}
			}
		}
	}

	if err := sink.MoveCursorTo(v.cursorX, v.cursorY); err != nil {
		return &SinkError{Op: "move cursor", Err: err}
	}
	if err := sink.Flush(); err != nil {
		return &SinkError{Op: "flush", Err: err}
	}
	return nil
}

// MoveCursor applies one movement, clamps the column to the new line and
// repositions the sink cursor. An empty line source makes it a no-op.
// On error the viewport is left unchanged.
func (v *Viewport) MoveCursor(sink Sink, dir Direction) error {
	if v.lines.Len() == 0 {
		return nil
	}

	next := v.state
	switch dir {
	case Up:
		v.moveUp(&next)
	case Down:
		v.moveDown(&next)
	case Left:
		v.moveLeft(&next)
	case Right:
		v.moveRight(&next)
	default:
		return fmt.Errorf("%w: %v", ErrInvalidDirection, dir)
	}
	v.adjustColumn(&next)

	if err := v.commit(next); err != nil {
		return err
	}

	if err := sink.MoveCursorTo(v.cursorX, v.cursorY); err != nil {
		return &SinkError{Op: "move cursor", Err: err}
	}
	return nil
}

// Resize changes the viewport dimensions, keeping the absolute cursor
// position and re-deriving offsets so the invariants hold in the new size.
func (v *Viewport) Resize(width, height int) error {
	if err := checkSize(width, height, v.limit); err != nil {
		return err
	}
	if v.lines.Len() == 0 {
		v.width, v.height = width, height
		return nil
	}

	col, row := v.Position()
	next := v.state
	if next.cursorY >= height {
		next.offsetY = row - (height - 1)
		next.cursorY = height - 1
	}

	length := v.lines.LineLen(row)
	col = min(col, endColumn(length, width))
	switch {
	case length <= width:
		next.offsetX = 0
	case col-next.offsetX >= width:
		next.offsetX = col - (width - 1)
	}
	next.cursorX = col - next.offsetX

	if err := v.commit(next); err != nil {
		return err
	}
	v.width, v.height = width, height
	return nil
}

func (v *Viewport) moveUp(s *state) {
	if s.cursorY > 0 {
		s.cursorY--
	} else if s.offsetY > 0 {
		s.offsetY--
	}
}

func (v *Viewport) moveDown(s *state) {
	if s.offsetY+s.cursorY >= v.lines.Len()-1 {
		return
	}
	if s.cursorY < v.height-1 {
		s.cursorY++
	} else {
		s.offsetY++
	}
}

func (v *Viewport) moveLeft(s *state) {
	switch {
	case s.cursorX > 0:
		s.cursorX--
	case s.offsetX > 0:
		s.offsetX--
	case s.offsetY+s.cursorY > 0:
		v.moveUp(s)
		v.toLineEnd(s)
	}
}

func (v *Viewport) moveRight(s *state) {
	row := s.offsetY + s.cursorY
	length := v.lines.LineLen(row)
	col := s.offsetX + s.cursorX

	switch {
	case col >= endColumn(length, v.width):
		if row >= v.lines.Len()-1 {
			return
		}
		s.offsetX = 0
		s.cursorX = 0
		v.moveDown(s)
	case s.cursorX < v.width-1:
		s.cursorX++
	default:
		s.offsetX++
	}
}

// adjustColumn pulls the cursor back onto the current line after a
// vertical move.
func (v *Viewport) adjustColumn(s *state) {
	length := v.lines.LineLen(s.offsetY + s.cursorY)
	col := s.offsetX + s.cursorX

	switch {
	case col > endColumn(length, v.width):
		v.toLineEnd(s)
	case length <= v.width && s.offsetX > 0:
		s.offsetX = 0
		s.cursorX = col
	}
}

// toLineEnd places the cursor on the end column of the current line,
// scrolling horizontally when the line is wider than the viewport.
func (v *Viewport) toLineEnd(s *state) {
	length := v.lines.LineLen(s.offsetY + s.cursorY)
	if length < v.width {
		s.offsetX = 0
		s.cursorX = length
		return
	}
	s.offsetX = length - v.width
	s.cursorX = v.width - 1
}

// endColumn is the furthest absolute column the cursor may occupy on a line
// of the given length: one past the last character when the line is
// narrower than the viewport, otherwise the last character.
func endColumn(length, width int) int {
	if length < width {
		return length
	}
	return max(length-1, 0)
}

// commit converts the candidate cursor into viewport coordinates and
// stores it.
func (v *Viewport) commit(s state) error {
	if err := v.checkCoord("column", s.cursorX); err != nil {
		return err
	}
	if err := v.checkCoord("row", s.cursorY); err != nil {
		return err
	}
	v.state = s
	return nil
}

func (v *Viewport) checkCoord(axis string, n int) error {
	if n < 0 || n > v.limit {
		return &RangeError{Axis: axis, Value: n, Limit: v.limit}
	}
	return nil
}
