package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// brailleBlank is U+2800, the Braille cell with no raised dots.
const brailleBlank = '\u2800'

// Layer orders what a canvas cell shows when several shapes cross it. A
// higher layer wins the cell's colour.
type Layer uint8

const (
	Undeformed Layer = iota
	Deformed
	Overlay
)

// Canvas is a monochrome raster drawn with Braille characters: each cell is
// two sub-pixels wide and four tall. Every cell remembers the highest layer
// that lit one of its dots so the deformed frame can be coloured apart from
// the undeformed one.
type Canvas struct {
	cols, rows int
	dots       []uint8
	layers     []Layer
}

// NewCanvas returns a blank canvas of cols by rows character cells.
func NewCanvas(cols, rows int) *Canvas {
	cols, rows = max(cols, 0), max(rows, 0)
	return &Canvas{
		cols:   cols,
		rows:   rows,
		dots:   make([]uint8, cols*rows),
		layers: make([]Layer, cols*rows),
	}
}

// Size returns the canvas size in character cells.
func (c *Canvas) Size() (cols, rows int) { return c.cols, c.rows }

// Pixels returns the canvas size in sub-pixels.
func (c *Canvas) Pixels() (w, h int) { return 2 * c.cols, 4 * c.rows }

// dot returns the cell index and Braille bit of the sub-pixel (x, y), with
// ok false outside the canvas. Dots 1-3 and 4-6 run down the left and right
// columns; dots 7 and 8 form the bottom row.
func (c *Canvas) dot(x, y int) (cell int, bit uint8, ok bool) {
	if x < 0 || y < 0 || x >= 2*c.cols || y >= 4*c.rows {
		return 0, 0, false
	}
	sx, sy := x%2, y%4
	if sy < 3 {
		bit = 1 << (3*sx + sy)
	} else {
		bit = 1 << (6 + sx)
	}
	return (y/4)*c.cols + x/2, bit, true
}

// Set lights the sub-pixel (x, y) on the undeformed layer. The origin is the
// top left; points outside the canvas are ignored.
func (c *Canvas) Set(x, y int) { c.Plot(x, y, Undeformed) }

// Plot lights the sub-pixel (x, y) on layer l.
func (c *Canvas) Plot(x, y int, l Layer) {
	cell, bit, ok := c.dot(x, y)
	if !ok {
		return
	}
	c.dots[cell] |= bit
	c.layers[cell] = max(c.layers[cell], l)
}

// Unset darkens the sub-pixel (x, y).
func (c *Canvas) Unset(x, y int) {
	if cell, bit, ok := c.dot(x, y); ok {
		c.dots[cell] &^= bit
		if c.dots[cell] == 0 {
			c.layers[cell] = Undeformed
		}
	}
}

// IsSet reports whether the sub-pixel (x, y) is lit.
func (c *Canvas) IsSet(x, y int) bool {
	cell, bit, ok := c.dot(x, y)
	return ok && c.dots[cell]&bit != 0
}

// LayerAt returns the layer that colours the cell holding sub-pixel (x, y).
func (c *Canvas) LayerAt(x, y int) Layer {
	cell, _, ok := c.dot(x, y)
	if !ok {
		return Undeformed
	}
	return c.layers[cell]
}

// Clear darkens every dot.
func (c *Canvas) Clear() {
	clear(c.dots)
	clear(c.layers)
}

// DrawLine lights the sub-pixels between (x0, y0) and (x1, y1) on layer l,
// sampling the segment once per sub-pixel along its longer axis.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int, l Layer) {
	dx, dy := float64(x1-x0), float64(y1-y0)
	n := int(math.Max(math.Abs(dx), math.Abs(dy)))
	if n == 0 {
		c.Plot(x0, y0, l)
		return
	}
	for i := 0; i <= n; i++ {
		f := float64(i) / float64(n)
		c.Plot(x0+int(math.Round(f*dx)), y0+int(math.Round(f*dy)), l)
	}
}

// String returns the plain Braille text, one line per row.
func (c *Canvas) String() string {
	return c.render(nil)
}

// Render returns the Braille text with cells coloured by layer: the
// undeformed frame in the Subtle style and anything above it in the
// MetricValue style.
func (c *Canvas) Render() string {
	return c.render(func(l Layer) lipgloss.Style {
		if l == Undeformed {
			return Subtle
		}
		return MetricValue
	})
}

func (c *Canvas) render(style func(Layer) lipgloss.Style) string {
	// key is -1 for a blank cell, else the cell's layer
	key := func(cell int) int {
		if c.dots[cell] == 0 {
			return -1
		}
		return int(c.layers[cell])
	}

	var b, span strings.Builder
	for r := 0; r < c.rows; r++ {
		base := r * c.cols
		for col := 0; col < c.cols; {
			k := key(base + col)
			span.Reset()
			for ; col < c.cols && key(base+col) == k; col++ {
				span.WriteRune(brailleBlank + rune(c.dots[base+col]))
			}
			if style == nil || k < 0 {
				b.WriteString(span.String())
			} else {
				b.WriteString(style(Layer(k)).Render(span.String()))
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
