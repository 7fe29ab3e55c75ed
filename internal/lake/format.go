package lake

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb/geojson"
)

const (
	UnknownName = "Unknown Lake"
	UnknownArea = "unknown"
	EmptyNote   = "No additional information."
	AreaUnit    = "km²"
)

// areaKeys are checked in order; the last two are legacy spellings found in
// older lake files.
var areaKeys = []string{"area_km2", "Area (km2)", "Area"}

// Area returns the lake area in km² when one of the area properties holds a
// number or a numeric string.
func Area(props geojson.Properties) *float64 {
	for _, k := range areaKeys {
		v, ok := props[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case float64:
			return &t
		case int:
			f := float64(t)
			return &f
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
			if err == nil {
				return &f
			}
		}
	}
	return nil
}

// FormatArea renders an area with its unit, or the unknown placeholder.
func FormatArea(area *float64) string {
	if area == nil {
		return UnknownArea
	}
	return strconv.FormatFloat(*area, 'f', -1, 64) + " " + AreaUnit
}

// FormatCoordinates renders "lat, lng" with five decimals each.
func FormatCoordinates(pos *LatLng) string {
	if pos == nil {
		return ""
	}
	return fmt.Sprintf("%.5f, %.5f", pos.Lat, pos.Lng)
}

// ResolveName returns the name property or UnknownName.
func ResolveName(props geojson.Properties) string {
	if s, ok := props["name"].(string); ok && s != "" {
		return s
	}
	return UnknownName
}

// ResolveNote returns note, then description, then EmptyNote.
func ResolveNote(props geojson.Properties) string {
	for _, k := range []string{"note", "description"} {
		if s, ok := props[k].(string); ok {
			return s
		}
	}
	return EmptyNote
}

// PopupLines is the short summary bound to a lake's marker.
func PopupLines(l Lake) []string {
	area := "Area: " + UnknownArea
	if a := Area(l.Properties); a != nil {
		area = FormatArea(a)
	}
	return []string{
		l.Name(),
		area,
		"Coordinates: " + l.CoordinatesText(),
	}
}
