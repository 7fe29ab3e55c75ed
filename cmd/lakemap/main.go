package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/paulmach/orb"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"lakemap/internal/config"
	"lakemap/internal/geom"
	"lakemap/internal/lake"
	"lakemap/internal/logger"
	"lakemap/internal/tui"
)

type flags struct {
	config     string
	lakes      string
	boundary   string
	baseDir    string
	baseURL    string
	panelTitle string
	center     string
	zoom       int
	sequential bool
	logFile    string
	logLevel   string
	logFormat  string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "lakemap:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:           "lakemap",
		Short:         "Terminal map of lakes inside a province boundary",
		Version:       "0.1.0",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, f)
			if err != nil {
				return err
			}
			return run(cfg)
		},
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&f.config, "config", "c", "", "config file (default "+config.DefaultFile+" if present)")
	pf.StringVar(&f.lakes, "lakes", "", "lake points: GeoJSON, CSV or KML path or URL")
	pf.StringVar(&f.boundary, "boundary", "", "province boundary: GeoJSON or WKT path or URL")
	pf.StringVar(&f.baseDir, "base-dir", "", "directory relative sources resolve against")
	pf.StringVar(&f.baseURL, "base-url", "", "URL relative sources resolve against")
	pf.StringVar(&f.panelTitle, "panel-title", "", "lake panel heading")
	pf.StringVar(&f.center, "center", "", "initial center as lat,lng")
	pf.IntVar(&f.zoom, "zoom", 0, "initial zoom")
	pf.BoolVar(&f.sequential, "sequential", false, "load the boundary before the lakes")
	pf.StringVar(&f.logFile, "log-file", "", `log destination, "-" for stderr`)
	pf.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")
	pf.StringVar(&f.logFormat, "log-format", "", "text or json")

	root.AddCommand(newCheckCmd(f), newConfigCmd(f))
	return root
}

// newCheckCmd loads both sources once and reports what they contain, without
// starting the UI.
func newCheckCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Load the lakes and boundary and print a summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, f)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()
			ld := newLoader(cfg)
			out := cmd.OutOrStdout()

			lakes, lerr := ld.LoadLakes(ctx, cfg.Lakes)
			if lerr != nil {
				fmt.Fprintf(out, "lakes     %s: %v\n", cfg.Lakes, lerr)
			} else {
				s := geom.Count(lakes)
				fmt.Fprintf(out, "lakes     %s: %d points, %d skipped\n", cfg.Lakes, s.Points, s.Polygons+s.Other)
			}
			boundary, berr := ld.LoadBoundary(ctx, cfg.Boundary)
			if berr != nil {
				fmt.Fprintf(out, "boundary  %s: %v\n", cfg.Boundary, berr)
			} else {
				var b orb.Bound
				have := false
				for _, ft := range boundary.Features {
					switch {
					case ft.Geometry == nil:
					case !have:
						b, have = ft.Geometry.Bound(), true
					default:
						b = b.Union(ft.Geometry.Bound())
					}
				}
				fmt.Fprintf(out, "boundary  %s: %d polygons, bounds %v..%v\n",
					cfg.Boundary, geom.Count(boundary).Polygons, b.Min, b.Max)
			}
			if lerr != nil {
				return lerr
			}
			return berr
		},
	}
}

func newConfigCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, f)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(cfg)
		},
	}
}

// resolveConfig layers defaults, the config file, the environment and the
// flags the user set, in that order.
func resolveConfig(cmd *cobra.Command, f *flags) (config.Config, error) {
	cfg, err := config.Load(f.config)
	if err != nil {
		return cfg, err
	}
	set := cmd.Flags().Changed
	if set("lakes") {
		cfg.Lakes = f.lakes
	}
	if set("boundary") {
		cfg.Boundary = f.boundary
	}
	if set("base-dir") {
		cfg.BaseDir = f.baseDir
	}
	if set("base-url") {
		cfg.BaseURL = f.baseURL
	}
	if set("panel-title") {
		cfg.PanelTitle = f.panelTitle
	}
	if set("center") {
		c, err := config.ParseCenter(f.center)
		if err != nil {
			return cfg, err
		}
		cfg.Center = c
	}
	if set("zoom") {
		cfg.Zoom = f.zoom
	}
	if set("sequential") {
		cfg.Sequential = f.sequential
	}
	if set("log-file") {
		cfg.LogFile = f.logFile
	}
	if set("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if set("log-format") {
		cfg.LogFormat = f.logFormat
	}
	return cfg, cfg.Validate()
}

func newLoader(cfg config.Config) *geom.Loader {
	return &geom.Loader{BaseDir: cfg.BaseDir, BaseURL: cfg.BaseURL}
}

func run(cfg config.Config) error {
	w, closer, err := logger.Open(cfg.LogFile)
	if err != nil {
		return err
	}
	defer closer.Close()
	log := logger.Setup(w, cfg.LogLevel, cfg.LogFormat)
	log.Info("starting", "lakes", cfg.Lakes, "boundary", cfg.Boundary, "sequential", cfg.Sequential)

	m := tui.New(tui.Options{
		Lakes:      cfg.Lakes,
		Boundary:   cfg.Boundary,
		Loader:     newLoader(cfg),
		PanelTitle: cfg.PanelTitle,
		Center:     lake.LatLng{Lat: cfg.Center.Lat, Lng: cfg.Center.Lng},
		Zoom:       cfg.Zoom,
		Sequential: cfg.Sequential,
		Log:        log,
	})
	defer m.Close()

	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion()).Run(); err != nil {
		log.Error("program_failed", "err", err)
		return err
	}
	log.Info("stopped")
	return nil
}
