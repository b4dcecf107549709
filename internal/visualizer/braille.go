package visualizer

import (
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Braille dot positions (col, row) → bit offset:
//
//	(0,0)=0  (1,0)=3
//	(0,1)=1  (1,1)=4
//	(0,2)=2  (1,2)=5
//	(0,3)=6  (1,3)=7
var brailleBits = [2][4]uint{
	{0, 1, 2, 6},
	{3, 4, 5, 7},
}

// brailleCanvas is a dot grid where each terminal cell holds 2x4 dots,
// giving 2x horizontal and 4x vertical resolution.
type brailleCanvas struct {
	cols, rows int
	cells      []uint8
	heat       []float64
}

func (c *brailleCanvas) reset(cols, rows int) {
	c.cols, c.rows = cols, rows
	n := cols * rows
	if cap(c.cells) < n {
		c.cells = make([]uint8, n)
		c.heat = make([]float64, n)
	}
	c.cells = c.cells[:n]
	c.heat = c.heat[:n]
	clear(c.cells)
	clear(c.heat)
}

// dotSize returns the grid size in dots.
func (c *brailleCanvas) dotSize() (int, int) { return c.cols * 2, c.rows * 4 }

// plot sets the dot at (x, y), counted from the top left, keeping the hottest
// value seen per cell. Out-of-range dots are ignored.
func (c *brailleCanvas) plot(x, y int, heat float64) {
	w, h := c.dotSize()
	if x < 0 || y < 0 || x >= w || y >= h {
		return
	}
	i := (y/4)*c.cols + x/2
	c.cells[i] |= 1 << brailleBits[x%2][y%4]
	if heat > c.heat[i] {
		c.heat[i] = heat
	}
}

func (c *brailleCanvas) render(color func(heat float64) colorful.Color) string {
	var out strings.Builder
	ansi := newANSIState()
	for row := 0; row < c.rows; row++ {
		if row > 0 {
			out.WriteByte('\n')
		}
		for col := 0; col < c.cols; col++ {
			i := row*c.cols + col
			if c.cells[i] == 0 {
				ansi.reset(&out)
				out.WriteByte(' ')
				continue
			}
			if color != nil {
				ansi.set(&out, color(c.heat[i]))
			}
			out.WriteRune(rune(0x2800 + int(c.cells[i])))
		}
		ansi.reset(&out)
	}
	return out.String()
}
