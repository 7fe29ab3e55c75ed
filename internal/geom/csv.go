package geom

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ParseLakesCSV turns a CSV with latitude/longitude columns into point
// features. Column detection is case-insensitive: lat|latitude|y and
// lon|lng|long|longitude|x. The name, area_km2, note and description columns,
// when present, become feature properties. Rows with unparsable coordinates
// are skipped.
func ParseLakesCSV(r io.Reader) (*geojson.FeatureCollection, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	recs, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: csv: %v", ErrParse, err)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("%w: csv: empty", ErrParse)
	}
	idxLat, idxLon := -1, -1
	props := map[int]string{}
	for i, h := range recs[0] {
		switch lh := strings.ToLower(strings.TrimSpace(h)); lh {
		case "lat", "latitude", "y":
			if idxLat == -1 {
				idxLat = i
			}
		case "lon", "lng", "long", "longitude", "x":
			if idxLon == -1 {
				idxLon = i
			}
		case "name", "area_km2", "note", "description":
			props[i] = lh
		}
	}
	if idxLat == -1 || idxLon == -1 {
		return nil, fmt.Errorf("%w: csv: latitude/longitude columns not found", ErrParse)
	}

	fc := geojson.NewFeatureCollection()
	for _, row := range recs[1:] {
		if idxLon >= len(row) || idxLat >= len(row) {
			continue
		}
		lon, err1 := strconv.ParseFloat(strings.TrimSpace(row[idxLon]), 64)
		lat, err2 := strconv.ParseFloat(strings.TrimSpace(row[idxLat]), 64)
		if err := errors.Join(err1, err2); err != nil {
			continue
		}
		f := geojson.NewFeature(orb.Point{lon, lat})
		for i, key := range props {
			if i >= len(row) {
				continue
			}
			v := strings.TrimSpace(row[i])
			if v == "" {
				continue
			}
			if key == "area_km2" {
				if a, err := strconv.ParseFloat(v, 64); err == nil {
					f.Properties[key] = a
				}
				continue
			}
			f.Properties[key] = v
		}
		fc.Append(f)
	}
	if len(fc.Features) == 0 && len(recs) > 1 {
		return nil, fmt.Errorf("%w: csv: no valid points parsed", ErrParse)
	}
	return fc, nil
}
