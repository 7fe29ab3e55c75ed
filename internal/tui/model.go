// Package tui is the terminal front end: a Bubble Tea program that draws the
// lake map on a braille canvas with the lake panel, info modal and alerts
// composited on top.
package tui

import (
	"context"
	"log/slog"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/paulmach/orb"

	"lakemap/internal/geom"
	"lakemap/internal/lake"
	"lakemap/internal/mapview"
	"lakemap/internal/modal"
	"lakemap/internal/panel"
)

// Options configure a Model.
type Options struct {
	Lakes      string
	Boundary   string
	Loader     *geom.Loader
	PanelTitle string
	Center     lake.LatLng
	Zoom       int
	// Sequential loads the boundary first and the lakes second.
	Sequential bool
	Log        *slog.Logger
}

type focusArea int

const (
	focusMap focusArea = iota
	focusPanel
)

type loadState int

const (
	loadPending loadState = iota
	loadOK
	loadFailed
)

func (s loadState) String() string {
	switch s {
	case loadOK:
		return "ok"
	case loadFailed:
		return "failed"
	}
	return "loading"
}

type dragState struct {
	x, y int
}

type Model struct {
	width  int
	height int

	opts   Options
	log    *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc

	view  *mapview.View
	modal *modal.Modal
	// panel is nil until the lakes load succeeds
	panel   *panel.Panel
	panelVP viewport.Model

	keys        keyMap
	help        help.Model
	helpVisible bool
	focus       focusArea

	lakesState    loadState
	boundaryState loadState
	alert         string
	status        string

	popupSeq int
	drag     *dragState

	// hover state
	hoverHasGeo bool
	hoverLon    float64
	hoverLat    float64
}

func New(opts Options) Model {
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	if opts.Loader == nil {
		opts.Loader = &geom.Loader{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	mp := mapview.NewMap(orb.Point{opts.Center.Lng, opts.Center.Lat}, opts.Zoom)
	return Model{
		opts:   opts,
		log:    opts.Log,
		ctx:    ctx,
		cancel: cancel,
		view:   mapview.NewView(mp, opts.Log),
		modal:  modal.New(),
		keys:   newKeyMap(),
		help:   help.New(),
		status: "loading lakes and boundary",
	}
}

// Init starts both data loads. They run concurrently unless Sequential is
// set, so whichever load finishes last decides the startup framing; in
// sequential mode the boundary loads first and the lakes fit wins.
func (m Model) Init() tea.Cmd {
	if m.opts.Sequential {
		return tea.Sequence(m.loadBoundaryCmd(), m.loadLakesCmd())
	}
	return tea.Batch(m.loadLakesCmd(), m.loadBoundaryCmd())
}

// Close cancels in-flight loads.
func (m Model) Close() { m.cancel() }
