// Package geom loads the lakes and boundary datasets from files or HTTP and
// parses them into GeoJSON feature collections.
package geom

import (
	"errors"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

var (
	// ErrLoad covers I/O and network failures, including non-2xx responses.
	ErrLoad = errors.New("load failed")
	// ErrParse covers malformed bodies and data with no usable geometry.
	ErrParse = errors.New("parse failed")
)

// Stats counts the geometries of a collection by kind.
type Stats struct {
	Points   int
	Polygons int
	Other    int
}

// Count tallies fc's geometries. A multi-polygon counts once per polygon.
func Count(fc *geojson.FeatureCollection) Stats {
	var s Stats
	if fc == nil {
		return s
	}
	for _, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		switch g := f.Geometry.(type) {
		case orb.Point:
			s.Points++
		case orb.Polygon:
			s.Polygons++
		case orb.MultiPolygon:
			s.Polygons += len(g)
		default:
			s.Other++
		}
	}
	return s
}
