// Package mapview owns the map surface: view state (center, zoom, pan lock,
// zoom limits), attached layers and the Web Mercator math behind view-fits.
//
// Pixel coordinates follow the slippy-map convention: at zoom z the world is
// 256·2^z pixels square, x grows east and y grows south.
package mapview

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

const (
	TileSize       = 256
	DefaultMinZoom = 0
	DefaultMaxZoom = 18
)

// DefaultSize is the canvas assumed before the first resize.
var DefaultSize = Size{W: 160, H: 96}

// Size is a canvas size in pixels.
type Size struct {
	W, H float64
}

// Map is the view state of one map surface. It is used from the UI loop only.
type Map struct {
	size      Size
	center    orb.Point
	zoom      int
	minZoom   int
	maxZoom   int
	maxBounds *orb.Bound
	layers    []Layer
}

// NewMap returns a map centred on center (lon, lat) at zoom.
func NewMap(center orb.Point, zoom int) *Map {
	m := &Map{
		size:    DefaultSize,
		minZoom: DefaultMinZoom,
		maxZoom: DefaultMaxZoom,
	}
	m.SetView(center, zoom)
	return m
}

func worldSize(zoom int) float64 { return TileSize * math.Exp2(float64(zoom)) }

var halfWorld = math.Pi * orb.EarthRadius

// Project converts a lon/lat point to world pixels at zoom.
func Project(p orb.Point, zoom int) orb.Point {
	merc := project.WGS84.ToMercator(p)
	s := worldSize(zoom)
	return orb.Point{
		(merc[0] + halfWorld) / (2 * halfWorld) * s,
		(halfWorld - merc[1]) / (2 * halfWorld) * s,
	}
}

// Unproject converts world pixels at zoom back to lon/lat.
func Unproject(px orb.Point, zoom int) orb.Point {
	s := worldSize(zoom)
	merc := orb.Point{
		px[0]/s*(2*halfWorld) - halfWorld,
		halfWorld - px[1]/s*(2*halfWorld),
	}
	return project.Mercator.ToWGS84(merc)
}

func (m *Map) Center() orb.Point     { return m.center }
func (m *Map) Zoom() int             { return m.zoom }
func (m *Map) MinZoom() int          { return m.minZoom }
func (m *Map) MaxZoom() int          { return m.maxZoom }
func (m *Map) Size() Size            { return m.size }
func (m *Map) MaxBounds() *orb.Bound { return m.maxBounds }

// Resize changes the canvas size, keeping center and zoom.
func (m *Map) Resize(w, h float64) {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	m.size = Size{W: w, H: h}
	m.SetView(m.center, m.zoom)
}

func (m *Map) clampZoom(z int) int {
	return min(max(z, m.minZoom), m.maxZoom)
}

// SetView moves the map, clamping zoom to the limits and the center to the
// pan lock.
func (m *Map) SetView(center orb.Point, zoom int) {
	zoom = m.clampZoom(zoom)
	m.zoom = zoom
	m.center = m.limitCenter(center, zoom)
}

// Pan shifts the view by dx, dy pixels.
func (m *Map) Pan(dx, dy float64) {
	c := Project(m.center, m.zoom)
	m.SetView(Unproject(orb.Point{c[0] + dx, c[1] + dy}, m.zoom), m.zoom)
}

// ZoomBy changes zoom by delta steps around the current center.
func (m *Map) ZoomBy(delta int) { m.SetView(m.center, m.zoom+delta) }

// BoundsZoom returns the largest zoom at which b fits the canvas, clamped to
// the zoom limits.
func (m *Map) BoundsZoom(b orb.Bound) int {
	return m.clampZoom(m.scaleZoom(b))
}

// scaleZoom is the zoom at which b fits the canvas, ignoring the minimum
// zoom.
func (m *Map) scaleZoom(b orb.Bound) int {
	nw := Project(orb.Point{b.Min[0], b.Max[1]}, 0)
	se := Project(orb.Point{b.Max[0], b.Min[1]}, 0)
	bw, bh := se[0]-nw[0], se[1]-nw[1]
	scale := math.Inf(1)
	if bw > 0 {
		scale = m.size.W / bw
	}
	if bh > 0 {
		scale = math.Min(scale, m.size.H/bh)
	}
	if math.IsInf(scale, 1) {
		return m.maxZoom
	}
	// the epsilon only absorbs float noise on exact powers of two
	return min(int(math.Floor(math.Log2(scale)+1e-9)), m.maxZoom)
}

// FitBounds centres b at the largest zoom that shows all of it.
func (m *Map) FitBounds(b orb.Bound) {
	zoom := m.BoundsZoom(b)
	nw := Project(orb.Point{b.Min[0], b.Max[1]}, zoom)
	se := Project(orb.Point{b.Max[0], b.Min[1]}, zoom)
	mid := orb.Point{(nw[0] + se[0]) / 2, (nw[1] + se[1]) / 2}
	m.SetView(Unproject(mid, zoom), zoom)
}

// SetMaxBounds locks panning to b; nil removes the lock.
func (m *Map) SetMaxBounds(b *orb.Bound) {
	if b != nil {
		cp := *b
		b = &cp
	}
	m.maxBounds = b
	m.SetView(m.center, m.zoom)
}

// SetMinZoom raises or lowers the minimum zoom, zooming in if needed.
func (m *Map) SetMinZoom(z int) {
	m.minZoom = min(max(z, DefaultMinZoom), m.maxZoom)
	m.SetView(m.center, m.zoom)
}

// limitCenter keeps the viewport inside maxBounds, centring on the bounds
// along any axis where the viewport is the larger of the two.
func (m *Map) limitCenter(center orb.Point, zoom int) orb.Point {
	if m.maxBounds == nil {
		return center
	}
	cp := Project(center, zoom)
	half := orb.Point{m.size.W / 2, m.size.H / 2}
	viewMin := orb.Point{cp[0] - half[0], cp[1] - half[1]}
	viewMax := orb.Point{cp[0] + half[0], cp[1] + half[1]}
	nw := Project(orb.Point{m.maxBounds.Min[0], m.maxBounds.Max[1]}, zoom)
	se := Project(orb.Point{m.maxBounds.Max[0], m.maxBounds.Min[1]}, zoom)

	dx := rebound(nw[0]-viewMin[0], -(se[0] - viewMax[0]))
	dy := rebound(nw[1]-viewMin[1], -(se[1] - viewMax[1]))
	if math.Abs(dx) <= 1 && math.Abs(dy) <= 1 {
		return center
	}
	return Unproject(orb.Point{cp[0] + dx, cp[1] + dy}, zoom)
}

func rebound(left, right float64) float64 {
	if left+right > 0 {
		return math.Round(left-right) / 2
	}
	return math.Max(0, math.Ceil(left)) - math.Max(0, math.Floor(right))
}

// PixelOrigin is the world pixel at the canvas top-left.
func (m *Map) PixelOrigin() orb.Point {
	c := Project(m.center, m.zoom)
	return orb.Point{c[0] - m.size.W/2, c[1] - m.size.H/2}
}

// ToCanvas converts lon/lat to canvas pixels.
func (m *Map) ToCanvas(p orb.Point) orb.Point {
	px := Project(p, m.zoom)
	o := m.PixelOrigin()
	return orb.Point{px[0] - o[0], px[1] - o[1]}
}

// FromCanvas converts canvas pixels to lon/lat.
func (m *Map) FromCanvas(px orb.Point) orb.Point {
	o := m.PixelOrigin()
	return Unproject(orb.Point{px[0] + o[0], px[1] + o[1]}, m.zoom)
}

// ViewBounds is the geographic extent of the canvas.
func (m *Map) ViewBounds() orb.Bound {
	nw := m.FromCanvas(orb.Point{0, 0})
	se := m.FromCanvas(orb.Point{m.size.W, m.size.H})
	return orb.Bound{Min: orb.Point{nw[0], se[1]}, Max: orb.Point{se[0], nw[1]}}
}

// AddLayer attaches l; attaching an attached layer is a no-op.
func (m *Map) AddLayer(l Layer) {
	if m.HasLayer(l) {
		return
	}
	m.layers = append(m.layers, l)
}

// RemoveLayer detaches l if attached.
func (m *Map) RemoveLayer(l Layer) {
	for i, have := range m.layers {
		if have == l {
			m.layers = append(m.layers[:i], m.layers[i+1:]...)
			return
		}
	}
}

func (m *Map) HasLayer(l Layer) bool {
	for _, have := range m.layers {
		if have == l {
			return true
		}
	}
	return false
}

// Layers returns the attached layers in paint order: by pane, then by the
// order they were attached.
func (m *Map) Layers() []Layer {
	out := make([]Layer, len(m.layers))
	copy(out, m.layers)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Pane().ZIndex < out[j].Pane().ZIndex })
	return out
}
