package geom

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb/geojson"
)

// ParseGeoJSON reads a FeatureCollection, a single Feature or a bare geometry
// and always returns a collection.
func ParseGeoJSON(data []byte) (*geojson.FeatureCollection, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("%w: geojson: %v", ErrParse, err)
	}
	switch head.Type {
	case "":
		return nil, fmt.Errorf("%w: geojson: missing type", ErrParse)
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("%w: geojson: %v", ErrParse, err)
		}
		return fc, nil
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, fmt.Errorf("%w: geojson: %v", ErrParse, err)
		}
		fc := geojson.NewFeatureCollection()
		fc.Append(f)
		return fc, nil
	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, fmt.Errorf("%w: geojson: %v", ErrParse, err)
		}
		if g.Coordinates == nil {
			return nil, fmt.Errorf("%w: geojson: unsupported type %q", ErrParse, head.Type)
		}
		fc := geojson.NewFeatureCollection()
		fc.Append(geojson.NewFeature(g.Coordinates))
		return fc, nil
	}
}
