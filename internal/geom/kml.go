package geom

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

type kmlPoint struct {
	Coordinates string `xml:"coordinates"`
}

type kmlData struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value"`
}

type kmlPlacemark struct {
	Name        string    `xml:"name"`
	Description string    `xml:"description"`
	Point       *kmlPoint `xml:"Point"`
	Data        []kmlData `xml:"ExtendedData>Data"`
}

type kmlDoc struct {
	Placemarks []kmlPlacemark `xml:"Placemark"`
	Document   struct {
		Placemarks []kmlPlacemark `xml:"Placemark"`
		Folders    []struct {
			Placemarks []kmlPlacemark `xml:"Placemark"`
		} `xml:"Folder"`
	} `xml:"Document"`
}

func (d *kmlDoc) placemarks() []kmlPlacemark {
	out := append([]kmlPlacemark{}, d.Placemarks...)
	out = append(out, d.Document.Placemarks...)
	for _, f := range d.Document.Folders {
		out = append(out, f.Placemarks...)
	}
	return out
}

// ParseLakesKML turns KML point placemarks into lake features. The placemark
// name and description become the name and description properties;
// ExtendedData values named area_km2 or note are copied too. KML coordinates
// are "lon,lat[,alt]"; altitude is ignored.
func ParseLakesKML(data []byte) (*geojson.FeatureCollection, error) {
	var doc kmlDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: kml: %v", ErrParse, err)
	}
	fc := geojson.NewFeatureCollection()
	for _, pm := range doc.placemarks() {
		if pm.Point == nil {
			continue
		}
		tuple := strings.Fields(pm.Point.Coordinates)
		if len(tuple) == 0 {
			continue
		}
		vals := strings.Split(tuple[0], ",")
		if len(vals) < 2 {
			continue
		}
		lon, err1 := strconv.ParseFloat(strings.TrimSpace(vals[0]), 64)
		lat, err2 := strconv.ParseFloat(strings.TrimSpace(vals[1]), 64)
		if err1 != nil || err2 != nil {
			continue
		}
		f := geojson.NewFeature(orb.Point{lon, lat})
		if n := strings.TrimSpace(pm.Name); n != "" {
			f.Properties["name"] = n
		}
		if d := strings.TrimSpace(pm.Description); d != "" {
			f.Properties["description"] = d
		}
		for _, ed := range pm.Data {
			v := strings.TrimSpace(ed.Value)
			switch ed.Name {
			case "area_km2":
				if a, err := strconv.ParseFloat(v, 64); err == nil {
					f.Properties["area_km2"] = a
				}
			case "note":
				if v != "" {
					f.Properties["note"] = v
				}
			}
		}
		fc.Append(f)
	}
	if len(fc.Features) == 0 {
		return nil, fmt.Errorf("%w: kml: no points found", ErrParse)
	}
	return fc, nil
}
