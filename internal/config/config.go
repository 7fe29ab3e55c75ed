// Package config resolves lakemap settings from defaults, an optional YAML
// file, LAKEMAP_* environment variables (a .env file is honoured) and, in
// cmd/lakemap, command-line flags, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read when no config path is given and it exists.
const DefaultFile = "lakemap.yaml"

const EnvPrefix = "LAKEMAP_"

type Center struct {
	Lat float64 `yaml:"lat"`
	Lng float64 `yaml:"lng"`
}

func (c Center) String() string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lng, 'f', -1, 64)
}

// ParseCenter reads "lat,lng".
func ParseCenter(s string) (Center, error) {
	lat, lng, ok := strings.Cut(s, ",")
	if !ok {
		return Center{}, fmt.Errorf("center %q: want lat,lng", s)
	}
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return Center{}, fmt.Errorf("center %q: %w", s, err)
	}
	ln, err := strconv.ParseFloat(strings.TrimSpace(lng), 64)
	if err != nil {
		return Center{}, fmt.Errorf("center %q: %w", s, err)
	}
	return Center{Lat: la, Lng: ln}, nil
}

type Config struct {
	Lakes      string `yaml:"lakes"`
	Boundary   string `yaml:"boundary"`
	BaseDir    string `yaml:"base_dir"`
	BaseURL    string `yaml:"base_url"`
	PanelTitle string `yaml:"panel_title"`
	Center     Center `yaml:"center"`
	Zoom       int    `yaml:"zoom"`
	// Sequential loads the boundary before the lakes instead of both at once.
	Sequential bool   `yaml:"sequential"`
	LogFile    string `yaml:"log_file"`
	LogLevel   string `yaml:"log_level"`
	LogFormat  string `yaml:"log_format"`
}

func Default() Config {
	return Config{
		Lakes:      "data/lakes_sindh.geojson",
		Boundary:   "data/sindh_boundary.geojson",
		PanelTitle: "Description of lakes",
		Center:     Center{Lat: 25.0, Lng: 68.5},
		Zoom:       6,
		LogFile:    "lakemap.log",
		LogLevel:   "info",
		LogFormat:  "text",
	}
}

// Load returns the defaults overlaid with the YAML file at path and then the
// environment. An empty path means DefaultFile, which may be absent.
func Load(path string) (Config, error) {
	c := Default()
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return c, fmt.Errorf("load .env: %w", err)
	}
	file, required := path, true
	if file == "" {
		file, required = DefaultFile, false
	}
	if err := c.LoadFile(file); err != nil {
		if required || !errors.Is(err, fs.ErrNotExist) {
			return c, err
		}
	}
	if err := c.ApplyEnv(os.LookupEnv); err != nil {
		return c, err
	}
	return c, nil
}

// LoadFile overlays the YAML document at path; keys it does not set keep
// their current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays the LAKEMAP_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"LAKES":       &c.Lakes,
		"BOUNDARY":    &c.Boundary,
		"BASE_DIR":    &c.BaseDir,
		"BASE_URL":    &c.BaseURL,
		"PANEL_TITLE": &c.PanelTitle,
		"LOG_FILE":    &c.LogFile,
		"LOG_LEVEL":   &c.LogLevel,
		"LOG_FORMAT":  &c.LogFormat,
	}
	for k, p := range str {
		if v, ok := lookup(EnvPrefix + k); ok {
			*p = v
		}
	}
	if v, ok := lookup(EnvPrefix + "CENTER"); ok {
		ctr, err := ParseCenter(v)
		if err != nil {
			return fmt.Errorf("%sCENTER: %w", EnvPrefix, err)
		}
		c.Center = ctr
	}
	if v, ok := lookup(EnvPrefix + "ZOOM"); ok {
		z, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%sZOOM: %w", EnvPrefix, err)
		}
		c.Zoom = z
	}
	if v, ok := lookup(EnvPrefix + "SEQUENTIAL"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%sSEQUENTIAL: %w", EnvPrefix, err)
		}
		c.Sequential = b
	}
	return nil
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Lakes) == "" {
		errs = append(errs, errors.New("lakes source is empty"))
	}
	if strings.TrimSpace(c.Boundary) == "" {
		errs = append(errs, errors.New("boundary source is empty"))
	}
	if c.Zoom < 0 || c.Zoom > 18 {
		errs = append(errs, fmt.Errorf("zoom %d outside [0,18]", c.Zoom))
	}
	if c.Center.Lat < -90 || c.Center.Lat > 90 {
		errs = append(errs, fmt.Errorf("center latitude %v outside [-90,90]", c.Center.Lat))
	}
	if c.Center.Lng < -180 || c.Center.Lng > 180 {
		errs = append(errs, fmt.Errorf("center longitude %v outside [-180,180]", c.Center.Lng))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log level %q", c.LogLevel))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}
	return errors.Join(errs...)
}
