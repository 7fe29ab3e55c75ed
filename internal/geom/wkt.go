package geom

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"
)

// ParseWKT reads one WKT geometry, e.g. a POLYGON or MULTIPOLYGON boundary,
// as a single-feature collection.
func ParseWKT(data []byte) (*geojson.FeatureCollection, error) {
	s := strings.TrimSpace(string(data))
	if s == "" {
		return nil, fmt.Errorf("%w: wkt: empty", ErrParse)
	}
	g, err := wkt.Unmarshal(s)
	if err != nil {
		return nil, fmt.Errorf("%w: wkt: %v", ErrParse, err)
	}
	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(g))
	return fc, nil
}
