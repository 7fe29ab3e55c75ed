// Package lake holds the lake feature model and the pure formatting helpers
// used by popups, the info modal and the lake panel.
package lake

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// LatLng is a geographic position in degrees.
type LatLng struct {
	Lat float64
	Lng float64
}

// Point returns the position as an orb point (lon, lat).
func (ll LatLng) Point() orb.Point { return orb.Point{ll.Lng, ll.Lat} }

// FromPoint converts an orb point (lon, lat) to a LatLng.
func FromPoint(p orb.Point) LatLng { return LatLng{Lat: p.Lat(), Lng: p.Lon()} }

// Lake is one lake as loaded from the lakes dataset. It is not modified
// after load.
type Lake struct {
	Properties geojson.Properties
	Position   *LatLng
}

// FromFeature builds a Lake from a point feature. Non-point geometries are
// rejected.
func FromFeature(f *geojson.Feature) (Lake, bool) {
	if f == nil || f.Geometry == nil {
		return Lake{}, false
	}
	p, ok := f.Geometry.(orb.Point)
	if !ok {
		return Lake{}, false
	}
	props := f.Properties
	if props == nil {
		props = geojson.Properties{}
	}
	pos := FromPoint(p)
	return Lake{Properties: props, Position: &pos}, true
}

// Name is ResolveName over the lake's properties.
func (l Lake) Name() string { return ResolveName(l.Properties) }

// Note is ResolveNote over the lake's properties.
func (l Lake) Note() string { return ResolveNote(l.Properties) }

// AreaText is FormatArea over the lake's area property.
func (l Lake) AreaText() string { return FormatArea(Area(l.Properties)) }

// CoordinatesText is FormatCoordinates over the lake's position.
func (l Lake) CoordinatesText() string { return FormatCoordinates(l.Position) }
