package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/paulmach/orb/geojson"

	"lakemap/internal/geom"
	"lakemap/internal/panel"
)

const lakesAlert = "Failed to load lakes data. See the log for details."

type lakesLoadedMsg struct {
	fc  *geojson.FeatureCollection
	err error
}

type boundaryLoadedMsg struct {
	fc  *geojson.FeatureCollection
	err error
}

// popupExpiredMsg closes the popup opened by a panel zoom; seq discards
// stale timers.
type popupExpiredMsg struct {
	seq   int
	index int
}

func (m Model) loadLakesCmd() tea.Cmd {
	ctx, l, src, log := m.ctx, m.opts.Loader, m.opts.Lakes, m.log
	return func() tea.Msg {
		start := time.Now()
		fc, err := l.LoadLakes(ctx, src)
		log.Debug("lakes_fetch_done", "src", src, "duration_ms", time.Since(start).Milliseconds())
		return lakesLoadedMsg{fc: fc, err: err}
	}
}

func (m Model) loadBoundaryCmd() tea.Cmd {
	ctx, l, src, log := m.ctx, m.opts.Loader, m.opts.Boundary, m.log
	return func() tea.Msg {
		start := time.Now()
		fc, err := l.LoadBoundary(ctx, src)
		log.Debug("boundary_fetch_done", "src", src, "duration_ms", time.Since(start).Milliseconds())
		return boundaryLoadedMsg{fc: fc, err: err}
	}
}

// applyLakes builds the lakes layer and, once, the panel. A failure raises
// the blocking alert and leaves the panel unbuilt.
func (m *Model) applyLakes(msg lakesLoadedMsg) {
	if msg.err != nil {
		m.lakesState = loadFailed
		m.alert = lakesAlert
		m.status = "lakes: " + msg.err.Error()
		m.log.Error("lakes_load_failed", "src", m.opts.Lakes, "err", msg.err)
		return
	}
	if m.panel != nil {
		return
	}
	layer := m.view.LoadLakes(msg.fc)
	m.panel = panel.New(m.opts.PanelTitle, layer.Lakes(), m.view, m.modal, panel.Options{})
	m.lakesState = loadOK
	stats := geom.Count(msg.fc)
	m.status = fmt.Sprintf("%d lakes loaded", m.panel.Len())
	m.log.Info("lakes_load_ok", "src", m.opts.Lakes, "lakes", m.panel.Len(), "skipped", stats.Polygons+stats.Other)
	m.syncPanelViewport()
}

// applyBoundary draws and locks to the boundary. Failures are logged only.
func (m *Model) applyBoundary(msg boundaryLoadedMsg) {
	err := msg.err
	if err == nil {
		err = m.view.LoadBoundary(msg.fc)
	}
	if err != nil {
		m.boundaryState = loadFailed
		m.log.Warn("boundary_load_failed", "src", m.opts.Boundary, "err", err)
		return
	}
	m.boundaryState = loadOK
	m.log.Info("boundary_load_ok", "src", m.opts.Boundary,
		"min_zoom", m.view.Map().MinZoom(), "zoom", m.view.Map().Zoom())
}
