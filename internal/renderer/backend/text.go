package backend

import (
	"strings"
	"unicode"

	"github.com/rivo/uniseg"
)

// printable substitutes control characters, which would otherwise move the
// terminal's own cursor, with a visible placeholder. Tabs occupy one
// column and are drawn as a blank.
func printable(r rune) rune {
	if r == '\t' {
		return ' '
	}
	if unicode.IsControl(r) {
		return '?'
	}
	return r
}

// sanitize applies printable to every rune of s.
func sanitize(s string) string {
	if strings.IndexFunc(s, unicode.IsControl) < 0 {
		return s
	}
	return strings.Map(printable, s)
}

// cellRow records the screen cell where each grapheme cluster written to
// a row starts. Wide clusters take two cells, so cluster columns and cell
// columns drift apart once one is written.
type cellRow struct {
	starts []int
	pen    int
}

func (r *cellRow) reset() {
	r.starts = r.starts[:0]
	r.pen = 0
}

// place lays text out from the pen and calls draw for every cluster that
// fits in width cells. Clusters past the right edge are recorded but not
// drawn.
func (r *cellRow) place(text string, width int, draw func(x int, cluster string)) {
	state := -1
	for text != "" {
		var cluster string
		var w int
		cluster, text, w, state = uniseg.FirstGraphemeClusterInString(text, state)
		w = max(w, 1)

		r.starts = append(r.starts, r.pen)
		if r.pen+w <= width {
			draw(r.pen, cluster)
		}
		r.pen += w
	}
}

// cell returns the screen cell of cluster column col. Columns past the
// written text continue one cell per column. The result stays within the
// row.
func (r *cellRow) cell(col, width int) int {
	x := col
	if col < len(r.starts) {
		x = r.starts[col]
	} else {
		x = r.pen + col - len(r.starts)
	}
	return min(x, max(width-1, 0))
}

// cellRows holds the layout of every row written since the last clear.
type cellRows []cellRow

// row returns the layout of row y, growing the set as needed.
func (rs *cellRows) row(y int) *cellRow {
	for len(*rs) <= y {
		*rs = append(*rs, cellRow{})
	}
	return &(*rs)[y]
}

// cell maps (col, y) to a screen cell. Rows never written map one to one.
func (rs cellRows) cell(col, y, width int) int {
	if y >= 0 && y < len(rs) {
		return rs[y].cell(col, width)
	}
	return min(col, max(width-1, 0))
}
