package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/paulmach/orb"

	"lakemap/internal/mapview"
	"lakemap/internal/modal"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeMap()
		m.syncPanelViewport()
	case lakesLoadedMsg:
		m.applyLakes(msg)
	case boundaryLoadedMsg:
		m.applyBoundary(msg)
	case popupExpiredMsg:
		if msg.seq == m.popupSeq && m.panel != nil {
			m.panel.ClosePopup(msg.index)
		}
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	}
	return m, nil
}

func (m *Model) resizeMap() {
	l := m.layout()
	m.view.Resize(float64(l.mapArea.w*2), float64(l.mapArea.h*4))
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.cancel()
		return m, tea.Quit
	}
	if m.alert != "" {
		if key.Matches(msg, m.keys.Escape, m.keys.Activate) {
			m.alert = ""
		}
		return m, nil
	}
	if key.Matches(msg, m.keys.Escape) {
		m.modal.Hide()
		return m, nil
	}
	if m.modal.Visible() {
		if key.Matches(msg, m.keys.Activate) && m.modal.Focus() == modal.CloseControl {
			m.modal.Hide()
		}
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Street):
		m.setBaseLayer(mapview.Street)
	case key.Matches(msg, m.keys.Satellite):
		m.setBaseLayer(mapview.Satellite)
	case key.Matches(msg, m.keys.Help):
		m.helpVisible = !m.helpVisible
		m.help.ShowAll = m.helpVisible
	case key.Matches(msg, m.keys.TogglePanel):
		if m.panel != nil {
			m.togglePanel()
		}
	case key.Matches(msg, m.keys.Focus):
		if m.focus == focusMap && m.panel != nil && !m.panel.Collapsed() {
			m.focus = focusPanel
		} else {
			m.focus = focusMap
		}
		m.syncPanelViewport()
	case m.focus == focusPanel:
		return m.handlePanelKey(msg)
	default:
		m.handleMapKey(msg)
	}
	return m, nil
}

func (m Model) handlePanelKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.panel == nil || m.panel.Collapsed() {
		m.focus = focusMap
		m.handleMapKey(msg)
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Up):
		m.panel.MoveCursor(-1)
		m.syncPanelViewport()
	case key.Matches(msg, m.keys.Down):
		m.panel.MoveCursor(1)
		m.syncPanelViewport()
	case key.Matches(msg, m.keys.Activate):
		return m, m.zoomToLake(m.panel.Cursor())
	case key.Matches(msg, m.keys.Info):
		m.panel.ShowDetail(m.panel.Cursor())
	}
	return m, nil
}

func (m *Model) handleMapKey(msg tea.KeyMsg) {
	size := m.view.Map().Size()
	dx, dy := size.W/8, size.H/8
	switch {
	case key.Matches(msg, m.keys.Up):
		m.view.Pan(0, -dy)
	case key.Matches(msg, m.keys.Down):
		m.view.Pan(0, dy)
	case key.Matches(msg, m.keys.Left):
		m.view.Pan(-dx, 0)
	case key.Matches(msg, m.keys.Right):
		m.view.Pan(dx, 0)
	case key.Matches(msg, m.keys.ZoomIn):
		m.view.ZoomBy(1)
	case key.Matches(msg, m.keys.ZoomOut):
		m.view.ZoomBy(-1)
	default:
		return
	}
	m.status = fmt.Sprintf("zoom %d", m.view.Map().Zoom())
}

// togglePanel collapses or expands the panel; a collapsed panel gives focus
// back to the map.
func (m *Model) togglePanel() {
	m.panel.Toggle()
	if m.panel.Collapsed() {
		m.focus = focusMap
	}
	m.syncPanelViewport()
}

func (m *Model) setBaseLayer(kind mapview.BaseLayer) {
	m.view.SetBaseLayer(kind)
	m.status = m.view.TileLayer(kind).Label
}

// zoomToLake flies to lake i and schedules its popup to close.
func (m *Model) zoomToLake(i int) tea.Cmd {
	delay, ok := m.panel.ZoomTo(i)
	if !ok {
		return nil
	}
	m.syncPanelViewport()
	m.popupSeq++
	seq := m.popupSeq
	m.status = fmt.Sprintf("%s  zoom %d", m.panel.Rows()[i].Name, m.view.Map().Zoom())
	return tea.Tick(delay, func(time.Time) tea.Msg { return popupExpiredMsg{seq: seq, index: i} })
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.alert != "" {
		if isLeftPress(msg) {
			m.alert = ""
		}
		return m, nil
	}
	l := m.layout()
	if ml, ok := m.modalLayout(l); ok {
		if isLeftPress(msg) && (ml.close.contains(msg.X, msg.Y) || !ml.box.contains(msg.X, msg.Y)) {
			m.modal.Hide()
		}
		return m, nil
	}
	if pl, ok := m.panelLayout(l); ok && pl.box.contains(msg.X, msg.Y) {
		m.drag = nil
		return m, m.handlePanelMouse(msg, pl)
	}
	if msg.Y == l.controls[0].rect.y {
		if isLeftPress(msg) {
			for _, c := range l.controls {
				if c.rect.contains(msg.X, msg.Y) {
					m.setBaseLayer(c.kind)
				}
			}
		}
		return m, nil
	}
	if l.mapArea.contains(msg.X, msg.Y) {
		m.handleMapMouse(msg, l.mapArea)
	}
	if msg.Action == tea.MouseActionRelease {
		m.drag = nil
	}
	return m, nil
}

func (m *Model) handlePanelMouse(msg tea.MouseMsg, pl panelLayout) tea.Cmd {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.panelVP.SetYOffset(m.panelVP.YOffset - 1)
		return nil
	case tea.MouseButtonWheelDown:
		m.panelVP.SetYOffset(m.panelVP.YOffset + 1)
		return nil
	}
	if !isLeftPress(msg) {
		return nil
	}
	if pl.toggle.contains(msg.X, msg.Y) {
		m.togglePanel()
		return nil
	}
	row, detail, ok := pl.rowAt(msg.X, msg.Y, m.panelVP.YOffset)
	if !ok || row >= m.panel.Len() {
		return nil
	}
	m.focus = focusPanel
	if detail {
		m.panel.ShowDetail(row)
		m.syncPanelViewport()
		return nil
	}
	return m.zoomToLake(row)
}

func (m *Model) handleMapMouse(msg tea.MouseMsg, area rect) {
	cx, cy := msg.X-area.x, msg.Y-area.y
	px := orb.Point{float64(cx*2 + 1), float64(cy*4 + 2)}
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.view.ZoomAt(px, 1)
		m.status = fmt.Sprintf("zoom %d", m.view.Map().Zoom())
	case msg.Button == tea.MouseButtonWheelDown:
		m.view.ZoomAt(px, -1)
		m.status = fmt.Sprintf("zoom %d", m.view.Map().Zoom())
	case isLeftPress(msg):
		m.focus = focusMap
		hit := mapview.LakeMarkerStyle.Radius + 2
		if i, ok := m.view.MarkerAt(px, hit); ok {
			m.view.OpenPopup(i)
			m.status = m.view.Lakes().Markers[i].Lake.Name()
			return
		}
		if i, ok := m.view.Popup(); ok {
			m.view.ClosePopup(i)
		}
		m.drag = &dragState{x: msg.X, y: msg.Y}
	case msg.Action == tea.MouseActionMotion && m.drag != nil:
		dx, dy := msg.X-m.drag.x, msg.Y-m.drag.y
		m.view.Pan(float64(-dx*2), float64(-dy*4))
		m.drag.x, m.drag.y = msg.X, msg.Y
	}
	ll := m.view.Map().FromCanvas(px)
	m.hoverHasGeo = true
	m.hoverLon, m.hoverLat = ll.Lon(), ll.Lat()
}

func isLeftPress(msg tea.MouseMsg) bool {
	return msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft
}

// panelContent renders one line per lake: the name, then the detail control
// flush right.
func (m Model) panelContent(inner int) string {
	rows := make([]string, 0, m.panel.Len())
	for _, r := range m.panel.Rows() {
		name := fit(r.Name, inner-len([]rune(r.Detail))-1)
		if r.Selected && m.focus == focusPanel {
			name = selectedStyle.Render(name)
		}
		rows = append(rows, name+" "+r.Detail)
	}
	return strings.Join(rows, "\n")
}

// syncPanelViewport refreshes the panel rows and keeps the cursor visible.
func (m *Model) syncPanelViewport() {
	l := m.layout()
	pl, ok := m.panelLayout(l)
	if !ok {
		return
	}
	m.panelVP.Width = pl.inner
	m.panelVP.Height = max(pl.bodyH, 1)
	m.panelVP.SetContent(m.panelContent(pl.inner))
	cur := m.panel.Cursor()
	switch {
	case cur < m.panelVP.YOffset:
		m.panelVP.SetYOffset(cur)
	case cur >= m.panelVP.YOffset+m.panelVP.Height:
		m.panelVP.SetYOffset(cur - m.panelVP.Height + 1)
	}
}
