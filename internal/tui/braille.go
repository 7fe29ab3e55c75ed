package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ink is what a dot belongs to. A cell takes the colour of its strongest ink.
type ink uint8

const (
	inkNone ink = iota
	inkGrid
	inkBoundary
	inkMarkerFill
	inkMarkerStroke
)

// dotBits maps a dot inside a cell (column rx, row ry) to its braille bit.
var dotBits = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

// canvas is a braille raster: every terminal cell holds 2x4 dots.
type canvas struct {
	w, h int // in cells
	mask [][]uint8
	ink  [][]ink
}

func newCanvas(w, h int) *canvas {
	c := &canvas{w: w, h: h, mask: make([][]uint8, h), ink: make([][]ink, h)}
	for i := range c.mask {
		c.mask[i] = make([]uint8, w)
		c.ink[i] = make([]ink, w)
	}
	return c
}

// set lights the dot at dot coordinates (mx, my).
func (c *canvas) set(mx, my int, k ink) {
	if mx < 0 || my < 0 {
		return
	}
	cx, cy := mx/2, my/4
	if cx >= c.w || cy >= c.h {
		return
	}
	c.mask[cy][cx] |= dotBits[mx%2][my%4]
	if k > c.ink[cy][cx] {
		c.ink[cy][cx] = k
	}
}

// line draws a Bresenham line between two dots.
func (c *canvas) line(x0, y0, x1, y1 int, k ink) {
	dx := abs(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -abs(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		c.set(x0, y0, k)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// disc fills every dot within r of (cx, cy).
func (c *canvas) disc(cx, cy, r int, k ink) {
	for y := -r; y <= r; y++ {
		for x := -r; x <= r; x++ {
			if x*x+y*y <= r*r {
				c.set(cx+x, cy+y, k)
			}
		}
	}
}

// ring draws the dots between r-weight and r away from (cx, cy).
func (c *canvas) ring(cx, cy, r, weight int, k ink) {
	inner := max(r-weight, 0)
	for y := -r; y <= r; y++ {
		for x := -r; x <= r; x++ {
			d := x*x + y*y
			if d <= r*r && d > inner*inner {
				c.set(cx+x, cy+y, k)
			}
		}
	}
}

// palette styles each ink; filler is the glyph for cells with no dots.
type palette struct {
	bg     lipgloss.Style
	inks   map[ink]lipgloss.Style
	filler rune
}

// render turns the canvas into styled lines, one style run at a time.
func (c *canvas) render(p palette) []string {
	out := make([]string, c.h)
	var run strings.Builder
	for y := 0; y < c.h; y++ {
		var line strings.Builder
		cur := ink(255)
		flush := func() {
			if run.Len() == 0 {
				return
			}
			st, ok := p.inks[cur]
			if !ok {
				st = p.bg
			}
			line.WriteString(st.Render(run.String()))
			run.Reset()
		}
		for x := 0; x < c.w; x++ {
			k := c.ink[y][x]
			if c.mask[y][x] == 0 {
				k = inkNone
			}
			if k != cur {
				flush()
				cur = k
			}
			if c.mask[y][x] == 0 {
				run.WriteRune(p.filler)
			} else {
				run.WriteRune(rune(0x2800 + int(c.mask[y][x])))
			}
		}
		flush()
		out[y] = line.String()
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
