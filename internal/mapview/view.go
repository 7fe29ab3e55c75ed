package mapview

import (
	"errors"
	"log/slog"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/maptile"

	"lakemap/internal/lake"
)

const (
	LakesPadding    = 0.2
	BoundaryPadding = 0.12
	PanLockPadding  = 0.03
	MinZoomFloor    = 3
	LakeFocusZoom   = 12
)

// ErrInvalidBounds is returned when a boundary has nothing to fit to.
var ErrInvalidBounds = errors.New("boundary has no valid bounds")

// Control is the state of one base-layer button.
type Control struct {
	Kind   BaseLayer
	Label  string
	Active bool
}

// View is the map view controller: base-layer switching, the lake and
// boundary overlays, view-fits and marker popups.
type View struct {
	m        *Map
	tiles    map[BaseLayer]*TileLayer
	lakes    *LakesLayer
	boundary *BoundaryLayer
	popup    int
	log      *slog.Logger

	lastFit *orb.Bound
	moved   bool
	// padded boundary bounds the zoom lock is derived from
	lockFit *orb.Bound
}

// NewView wraps m and attaches the street base layer.
func NewView(m *Map, log *slog.Logger) *View {
	if log == nil {
		log = slog.Default()
	}
	v := &View{
		m:     m,
		tiles: DefaultTileLayers(),
		popup: -1,
		log:   log,
	}
	m.AddLayer(v.tiles[Street])
	return v
}

func (v *View) Map() *Map { return v.m }

// SetBaseLayer attaches kind's tile layer and detaches the other one.
func (v *View) SetBaseLayer(kind BaseLayer) {
	want, ok := v.tiles[kind]
	if !ok {
		return
	}
	for k, t := range v.tiles {
		if k != kind && v.m.HasLayer(t) {
			v.m.RemoveLayer(t)
		}
	}
	if !v.m.HasLayer(want) {
		v.m.AddLayer(want)
		v.log.Debug("base_layer_changed", "layer", kind.String())
	}
}

// BaseLayer reports the attached base layer.
func (v *View) BaseLayer() BaseLayer {
	for _, k := range []BaseLayer{Street, Satellite} {
		if v.m.HasLayer(v.tiles[k]) {
			return k
		}
	}
	return Street
}

// TileLayer returns the descriptor for kind.
func (v *View) TileLayer(kind BaseLayer) *TileLayer { return v.tiles[kind] }

// Controls reports the base-layer buttons; a button is active exactly when
// its layer is attached.
func (v *View) Controls() []Control {
	out := make([]Control, 0, 2)
	for _, k := range []BaseLayer{Street, Satellite} {
		t := v.tiles[k]
		out = append(out, Control{Kind: k, Label: t.Label, Active: v.m.HasLayer(t)})
	}
	return out
}

// LoadLakes adds the lake markers and fits the view to them when there is at
// least one.
func (v *View) LoadLakes(fc *geojson.FeatureCollection) *LakesLayer {
	l := NewLakesLayer(fc)
	if v.lakes != nil {
		v.m.RemoveLayer(v.lakes)
	}
	v.lakes = l
	v.popup = -1
	v.m.AddLayer(l)
	if b, ok := l.Bounds(); ok {
		v.fit(PadBounds(b, LakesPadding))
	}
	v.log.Info("lakes_layer_added", "markers", len(l.Markers))
	return l
}

// LoadBoundary draws the outline, fits the view to it and locks panning and
// zooming out around it.
func (v *View) LoadBoundary(fc *geojson.FeatureCollection) error {
	b := NewBoundaryLayer(fc)
	bound, ok := b.Bounds()
	if !ok {
		return ErrInvalidBounds
	}
	if v.boundary != nil {
		v.m.RemoveLayer(v.boundary)
	}
	v.boundary = b
	v.m.AddLayer(b)
	padded := PadBounds(bound, BoundaryPadding)
	v.fit(padded)
	lock := PadBounds(padded, PanLockPadding)
	v.m.SetMaxBounds(&lock)
	v.lockFit = &padded
	minZoom := v.applyZoomLock()
	v.log.Info("boundary_applied", "polygons", len(b.Polygons), "min_zoom", minZoom)
	return nil
}

// applyZoomLock sets the minimum zoom to one step below the boundary fit at
// the current canvas size, never below MinZoomFloor.
func (v *View) applyZoomLock() int {
	z := min(max(v.m.scaleZoom(*v.lockFit)-1, MinZoomFloor), v.m.MaxZoom())
	v.m.SetMinZoom(z)
	return z
}

func (v *View) fit(b orb.Bound) {
	v.m.FitBounds(b)
	v.lastFit = &b
	v.moved = false
}

func (v *View) Lakes() *LakesLayer       { return v.lakes }
func (v *View) Boundary() *BoundaryLayer { return v.boundary }

// Resize changes the canvas, re-derives the boundary zoom lock for the new
// size and, until the user moves the map, keeps the last view-fit framed.
func (v *View) Resize(w, h float64) {
	v.m.Resize(w, h)
	if v.lockFit != nil {
		v.applyZoomLock()
	}
	if v.lastFit != nil && !v.moved {
		v.m.FitBounds(*v.lastFit)
	}
}

// FlyTo centres on pos at zoom.
func (v *View) FlyTo(pos lake.LatLng, zoom int) {
	v.m.SetView(pos.Point(), zoom)
	v.moved = true
}

func (v *View) Pan(dx, dy float64) {
	v.m.Pan(dx, dy)
	v.moved = true
}

func (v *View) ZoomBy(delta int) {
	v.m.ZoomBy(delta)
	v.moved = true
}

// ZoomAt zooms by delta keeping the location under canvas pixel px fixed,
// as far as the pan lock allows.
func (v *View) ZoomAt(px orb.Point, delta int) {
	anchor := v.m.FromCanvas(px)
	v.m.ZoomBy(delta)
	after := v.m.ToCanvas(anchor)
	v.m.Pan(after[0]-px[0], after[1]-px[1])
	v.moved = true
}

// OpenPopup shows marker i's popup, replacing any open one.
func (v *View) OpenPopup(i int) {
	if v.lakes == nil || i < 0 || i >= len(v.lakes.Markers) {
		return
	}
	v.popup = i
}

// ClosePopup closes marker i's popup if it is the open one.
func (v *View) ClosePopup(i int) {
	if v.popup == i {
		v.popup = -1
	}
}

// Popup returns the open popup's marker index.
func (v *View) Popup() (int, bool) { return v.popup, v.popup >= 0 }

// MarkerAt returns the marker nearest to canvas pixel px within radius.
func (v *View) MarkerAt(px orb.Point, radius float64) (int, bool) {
	if v.lakes == nil {
		return -1, false
	}
	best, bestD := -1, radius*radius
	for i, mk := range v.lakes.Markers {
		c := v.m.ToCanvas(mk.Point())
		dx, dy := c[0]-px[0], c[1]-px[1]
		if d := dx*dx + dy*dy; d <= bestD {
			best, bestD = i, d
		}
	}
	return best, best >= 0
}

// VisibleTiles lists the base-layer tiles covering the canvas.
func (v *View) VisibleTiles() []maptile.Tile {
	vb := clampWorld(v.m.ViewBounds())
	z := maptile.Zoom(v.m.Zoom())
	minT := maptile.At(orb.Point{vb.Min[0], vb.Max[1]}, z)
	maxT := maptile.At(orb.Point{vb.Max[0], vb.Min[1]}, z)
	last := uint32(1)<<uint32(z) - 1
	maxT.X, maxT.Y = min(maxT.X, last), min(maxT.Y, last)
	var tiles []maptile.Tile
	for x := minT.X; x <= maxT.X; x++ {
		for y := minT.Y; y <= maxT.Y; y++ {
			tiles = append(tiles, maptile.New(x, y, z))
		}
	}
	return tiles
}

const maxMercatorLat = 85.0511

func clampWorld(b orb.Bound) orb.Bound {
	clamp := func(v, lo, hi float64) float64 { return min(max(v, lo), hi) }
	return orb.Bound{
		Min: orb.Point{clamp(b.Min[0], -180, 180), clamp(b.Min[1], -maxMercatorLat, maxMercatorLat)},
		Max: orb.Point{clamp(b.Max[0], -180, 180), clamp(b.Max[1], -maxMercatorLat, maxMercatorLat)},
	}
}
