package mapview

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"lakemap/internal/lake"
)

// Pane orders layers; higher ZIndex paints on top.
type Pane struct {
	Name   string
	ZIndex int
}

var (
	PaneTile     = Pane{Name: "tilePane", ZIndex: 200}
	PaneBoundary = Pane{Name: "boundaryPane", ZIndex: 350}
	PaneMarker   = Pane{Name: "markerPane", ZIndex: 600}
)

// Layer is anything attachable to a Map.
type Layer interface {
	Pane() Pane
}

// BaseLayer selects the background imagery.
type BaseLayer int

const (
	Street BaseLayer = iota
	Satellite
)

func (b BaseLayer) String() string {
	switch b {
	case Street:
		return "street"
	case Satellite:
		return "satellite"
	}
	return "unknown"
}

// TileLayer describes a slippy-map tile source. The terminal renderer does
// not fetch tiles; it uses Kind for its palette and shows Attribution.
type TileLayer struct {
	Kind        BaseLayer
	Label       string
	URL         string
	Attribution string
	MaxZoom     int
}

func (t *TileLayer) Pane() Pane { return PaneTile }

// DefaultTileLayers are the street and satellite sources.
func DefaultTileLayers() map[BaseLayer]*TileLayer {
	return map[BaseLayer]*TileLayer{
		Street: {
			Kind:        Street,
			Label:       "Street Map",
			URL:         "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
			Attribution: "© OpenStreetMap contributors",
			MaxZoom:     18,
		},
		Satellite: {
			Kind:        Satellite,
			Label:       "Satellite Map",
			URL:         "https://server.arcgisonline.com/ArcGIS/rest/services/World_Imagery/MapServer/tile/{z}/{y}/{x}",
			Attribution: "Tiles © Esri — Source: Esri, i-cubed, USDA, USGS, AEX, GeoEye, Getmapping, Aerogrid, IGN, IGP, UPR-EGP, and the GIS User Community",
			MaxZoom:     18,
		},
	}
}

// MarkerStyle is the circle-marker look of a lake.
type MarkerStyle struct {
	Radius      float64
	Fill        string
	Stroke      string
	Weight      float64
	Opacity     float64
	FillOpacity float64
}

// LakeMarkerStyle is shared by every lake marker.
var LakeMarkerStyle = MarkerStyle{
	Radius:      5,
	Fill:        "#ffffff",
	Stroke:      "#08519c",
	Weight:      2,
	Opacity:     1,
	FillOpacity: 0.8,
}

// Marker is one lake on the map with its bound popup text.
type Marker struct {
	Lake  lake.Lake
	Style MarkerStyle
	Popup []string
}

// Point is the marker position as lon/lat.
func (mk *Marker) Point() orb.Point { return mk.Lake.Position.Point() }

// LakesLayer holds the lake markers in file order.
type LakesLayer struct {
	Markers []*Marker
	bound   orb.Bound
	valid   bool
}

func (l *LakesLayer) Pane() Pane { return PaneMarker }

// Bounds spans every marker; ok is false for an empty layer.
func (l *LakesLayer) Bounds() (orb.Bound, bool) { return l.bound, l.valid }

// Lakes returns the lakes behind the markers, in order.
func (l *LakesLayer) Lakes() []lake.Lake {
	out := make([]lake.Lake, len(l.Markers))
	for i, mk := range l.Markers {
		out[i] = mk.Lake
	}
	return out
}

// NewLakesLayer builds markers for the point features of fc. Features with
// other geometries are skipped.
func NewLakesLayer(fc *geojson.FeatureCollection) *LakesLayer {
	l := &LakesLayer{}
	if fc == nil {
		return l
	}
	for _, f := range fc.Features {
		lk, ok := lake.FromFeature(f)
		if !ok {
			continue
		}
		mk := &Marker{Lake: lk, Style: LakeMarkerStyle, Popup: lake.PopupLines(lk)}
		l.Markers = append(l.Markers, mk)
		p := mk.Point()
		if !l.valid {
			l.bound = p.Bound()
			l.valid = true
		} else {
			l.bound = l.bound.Extend(p)
		}
	}
	return l
}

// OutlineStyle is the stroke-only look of the province boundary.
type OutlineStyle struct {
	Color       string
	Weight      float64
	Opacity     float64
	FillOpacity float64
}

var BoundaryStyle = OutlineStyle{
	Color:       "#08355a",
	Weight:      2,
	Opacity:     1,
	FillOpacity: 0,
}

// BoundaryLayer is the province outline.
type BoundaryLayer struct {
	Polygons []orb.Polygon
	Style    OutlineStyle
	bound    orb.Bound
	valid    bool
}

func (b *BoundaryLayer) Pane() Pane { return PaneBoundary }

func (b *BoundaryLayer) Bounds() (orb.Bound, bool) { return b.bound, b.valid }

// NewBoundaryLayer collects the polygon and multi-polygon geometries of fc.
func NewBoundaryLayer(fc *geojson.FeatureCollection) *BoundaryLayer {
	b := &BoundaryLayer{Style: BoundaryStyle}
	if fc == nil {
		return b
	}
	for _, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			b.add(g)
		case orb.MultiPolygon:
			for _, p := range g {
				b.add(p)
			}
		}
	}
	return b
}

func (b *BoundaryLayer) add(p orb.Polygon) {
	if len(p) == 0 || len(p[0]) == 0 {
		return
	}
	b.Polygons = append(b.Polygons, p)
	pb := p.Bound()
	if !b.valid {
		b.bound = pb
		b.valid = true
		return
	}
	b.bound = b.bound.Union(pb)
}

// PadBounds grows b on every side by ratio times its span, the way the
// view-fit padding is defined.
func PadBounds(b orb.Bound, ratio float64) orb.Bound {
	dx := (b.Max[0] - b.Min[0]) * ratio
	dy := (b.Max[1] - b.Min[1]) * ratio
	return orb.Bound{
		Min: orb.Point{b.Min[0] - dx, b.Min[1] - dy},
		Max: orb.Point{b.Max[0] + dx, b.Max[1] + dy},
	}
}
