package geom

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/paulmach/orb/geojson"
)

// MaxBodySize caps the bytes read from one source.
const MaxBodySize = 64 << 20

// Loader fetches data sources. A source is an http(s) URL, a path resolved
// against BaseURL when that is set, or a file path relative to BaseDir.
type Loader struct {
	Client  *http.Client
	BaseDir string
	BaseURL string
}

// Source is a fetched body and where it came from.
type Source struct {
	Location    string
	ContentType string
	Body        []byte
}

// Format is the encoding of a source body.
type Format int

const (
	FormatGeoJSON Format = iota
	FormatCSV
	FormatKML
	FormatWKT
)

// Format picks the encoding from the content type, then the file extension.
// Anything unrecognised is treated as GeoJSON.
func (s Source) Format() Format {
	if mt, _, err := mime.ParseMediaType(s.ContentType); err == nil {
		switch mt {
		case "text/csv":
			return FormatCSV
		case "application/vnd.google-earth.kml+xml":
			return FormatKML
		}
	}
	loc := s.Location
	if u, err := url.Parse(loc); err == nil && u.Scheme != "" {
		loc = u.Path
	}
	switch strings.ToLower(path.Ext(loc)) {
	case ".csv":
		return FormatCSV
	case ".kml":
		return FormatKML
	case ".wkt":
		return FormatWKT
	}
	return FormatGeoJSON
}

func (s Source) parse() (*geojson.FeatureCollection, error) {
	switch s.Format() {
	case FormatCSV:
		return ParseLakesCSV(bytes.NewReader(s.Body))
	case FormatKML:
		return ParseLakesKML(s.Body)
	case FormatWKT:
		return ParseWKT(s.Body)
	}
	return ParseGeoJSON(s.Body)
}

// LoadLakes fetches and parses the lakes dataset. An empty collection is not
// an error.
func (l *Loader) LoadLakes(ctx context.Context, src string) (*geojson.FeatureCollection, error) {
	s, err := l.Fetch(ctx, src)
	if err != nil {
		return nil, err
	}
	return s.parse()
}

// LoadBoundary fetches and parses the boundary dataset; it must contain at
// least one polygon or multi-polygon.
func (l *Loader) LoadBoundary(ctx context.Context, src string) (*geojson.FeatureCollection, error) {
	s, err := l.Fetch(ctx, src)
	if err != nil {
		return nil, err
	}
	fc, err := s.parse()
	if err != nil {
		return nil, err
	}
	if Count(fc).Polygons == 0 {
		return nil, fmt.Errorf("%w: %s: no polygon geometry", ErrParse, s.Location)
	}
	return fc, nil
}

// Resolve returns the absolute location of src, and whether it is remote.
func (l *Loader) Resolve(src string) (string, bool, error) {
	if isRemote(src) {
		return src, true, nil
	}
	if l.BaseURL != "" {
		base, err := url.Parse(l.BaseURL)
		if err != nil {
			return "", false, fmt.Errorf("%w: base url: %v", ErrLoad, err)
		}
		ref, err := url.Parse(src)
		if err != nil {
			return "", false, fmt.Errorf("%w: source %q: %v", ErrLoad, src, err)
		}
		return base.ResolveReference(ref).String(), true, nil
	}
	if filepath.IsAbs(src) || l.BaseDir == "" {
		return src, false, nil
	}
	return filepath.Join(l.BaseDir, src), false, nil
}

// Fetch reads src in full.
func (l *Loader) Fetch(ctx context.Context, src string) (Source, error) {
	if strings.TrimSpace(src) == "" {
		return Source{}, fmt.Errorf("%w: empty source", ErrLoad)
	}
	loc, remote, err := l.Resolve(src)
	if err != nil {
		return Source{}, err
	}
	if remote {
		return l.fetchHTTP(ctx, loc)
	}
	if err := ctx.Err(); err != nil {
		return Source{}, fmt.Errorf("%w: %s: %v", ErrLoad, loc, err)
	}
	f, err := os.Open(loc)
	if err != nil {
		return Source{}, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	defer f.Close()
	body, err := io.ReadAll(io.LimitReader(f, MaxBodySize))
	if err != nil {
		return Source{}, fmt.Errorf("%w: %s: %v", ErrLoad, loc, err)
	}
	return Source{Location: loc, Body: body}, nil
}

func (l *Loader) fetchHTTP(ctx context.Context, u string) (Source, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Source{}, fmt.Errorf("%w: %s: %v", ErrLoad, u, err)
	}
	client := l.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return Source{}, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Source{}, fmt.Errorf("%w: %s: status %d", ErrLoad, u, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize))
	if err != nil {
		return Source{}, fmt.Errorf("%w: %s: %v", ErrLoad, u, err)
	}
	return Source{Location: u, ContentType: resp.Header.Get("Content-Type"), Body: body}, nil
}

func isRemote(src string) bool {
	u, err := url.Parse(src)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
