package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/clip"
	"github.com/paulmach/orb/simplify"

	"lakemap/internal/mapview"
)

// graticuleSteps are the candidate grid spacings in degrees.
var graticuleSteps = []float64{0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 1, 2, 5, 10, 15, 30, 45}

const (
	minGridSpacing = 24 // dots
	clipMargin     = 8  // dots
)

func basePalette(kind mapview.BaseLayer) palette {
	bg, grid := streetBg, streetGrid
	if kind == mapview.Satellite {
		bg, grid = satelliteBg, satelliteFg
	}
	on := func(fg lipgloss.TerminalColor) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(fg).Background(bg)
	}
	return palette{
		bg: lipgloss.NewStyle().Background(bg),
		inks: map[ink]lipgloss.Style{
			inkGrid:         on(grid),
			inkBoundary:     on(boundaryFg),
			inkMarkerFill:   on(markerFill),
			inkMarkerStroke: on(markerStroke),
		},
		filler: ' ',
	}
}

// renderMap draws the attached layers in pane order onto a w x h cell canvas.
func (m Model) renderMap(w, h int) []string {
	c := newCanvas(w, h)
	mp := m.view.Map()
	drawGraticule(c, mp)
	for _, l := range mp.Layers() {
		switch l := l.(type) {
		case *mapview.BoundaryLayer:
			drawBoundary(c, mp, l)
		case *mapview.LakesLayer:
			drawMarkers(c, mp, l)
		}
	}
	lines := c.render(basePalette(m.view.BaseLayer()))
	if i, ok := m.view.Popup(); ok {
		lines = m.placePopup(lines, i)
	}
	return lines
}

func drawGraticule(c *canvas, mp *mapview.Map) {
	z := mp.Zoom()
	degPerDot := 360 / (mapview.TileSize * math.Exp2(float64(z)))
	step := graticuleSteps[len(graticuleSteps)-1]
	for _, s := range graticuleSteps {
		if s/degPerDot >= minGridSpacing {
			step = s
			break
		}
	}
	vb := mp.ViewBounds()
	center := mp.Center()
	wDots, hDots := c.w*2, c.h*4
	for lon := math.Ceil(vb.Min[0]/step) * step; lon <= vb.Max[0]; lon += step {
		x := int(math.Round(mp.ToCanvas(orb.Point{lon, center[1]})[0]))
		for y := 0; y < hDots; y += 3 {
			c.set(x, y, inkGrid)
		}
	}
	for lat := math.Ceil(vb.Min[1]/step) * step; lat <= vb.Max[1]; lat += step {
		y := int(math.Round(mp.ToCanvas(orb.Point{center[0], lat})[1]))
		for x := 0; x < wDots; x += 3 {
			c.set(x, y, inkGrid)
		}
	}
}

// drawBoundary strokes every ring of the outline, clipped to the canvas and
// simplified to half a dot.
func drawBoundary(c *canvas, mp *mapview.Map, b *mapview.BoundaryLayer) {
	bound := orb.Bound{
		Min: orb.Point{-clipMargin, -clipMargin},
		Max: orb.Point{float64(c.w*2 + clipMargin), float64(c.h*4 + clipMargin)},
	}
	simp := simplify.DouglasPeucker(0.5)
	for _, poly := range b.Polygons {
		for _, ring := range poly {
			ls := make(orb.LineString, 0, len(ring))
			for _, p := range ring {
				ls = append(ls, mp.ToCanvas(p))
			}
			for _, part := range clip.LineString(bound, ls) {
				strokeLine(c, simp.LineString(part), inkBoundary)
			}
		}
	}
}

func strokeLine(c *canvas, ls orb.LineString, k ink) {
	for i := 1; i < len(ls); i++ {
		a, b := ls[i-1], ls[i]
		c.line(int(math.Round(a[0])), int(math.Round(a[1])), int(math.Round(b[0])), int(math.Round(b[1])), k)
	}
}

func drawMarkers(c *canvas, mp *mapview.Map, l *mapview.LakesLayer) {
	for _, mk := range l.Markers {
		p := mp.ToCanvas(mk.Point())
		x, y := int(math.Round(p[0])), int(math.Round(p[1]))
		r := int(mk.Style.Radius)
		if x < -r || y < -r || x > c.w*2+r || y > c.h*4+r {
			continue
		}
		weight := max(1, int(mk.Style.Weight)/2)
		if mk.Style.FillOpacity > 0 {
			c.disc(x, y, r-weight, inkMarkerFill)
		}
		c.ring(x, y, r, weight, inkMarkerStroke)
	}
}

// placePopup draws marker i's popup above it, kept inside the canvas.
func (m Model) placePopup(lines []string, i int) []string {
	l := m.view.Lakes()
	if l == nil || i >= len(l.Markers) {
		return lines
	}
	mk := l.Markers[i]
	box := popupStyle.Render(strings.Join(mk.Popup, "\n"))
	bw, bh := lipgloss.Width(box), lipgloss.Height(box)
	p := m.view.Map().ToCanvas(mk.Point())
	cx, cy := int(p[0])/2, int(p[1])/4
	w := 0
	if len(lines) > 0 {
		w = lipgloss.Width(lines[0])
	}
	x := min(max(0, cx-bw/2), max(0, w-bw))
	y := cy - bh - 1
	if y < 0 {
		y = cy + 2
	}
	return place(lines, box, x, y)
}
