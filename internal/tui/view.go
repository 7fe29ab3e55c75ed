package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	l := m.layout()

	lines := make([]string, 0, l.height)
	lines = append(lines, m.renderHeader(l.width))
	lines = append(lines, m.renderMap(l.mapArea.w, l.mapArea.h)...)
	lines = append(lines, m.renderControls(l), m.renderFooter(l.width))

	if pl, ok := m.panelLayout(l); ok {
		lines = place(lines, m.renderPanel(pl), pl.box.x, pl.box.y)
	}
	if m.helpVisible {
		box := boxStyle.Render(m.help.View(m.keys))
		y := l.mapArea.y + l.mapArea.h - lipgloss.Height(box)
		lines = place(lines, box, 1, max(l.mapArea.y, y))
	}
	if ml, ok := m.modalLayout(l); ok {
		box := boxStyle.Width(ml.box.w - 2).Render(strings.Join(ml.lines, "\n"))
		lines = place(lines, box, ml.box.x, ml.box.y)
	}
	if r, body, ok := m.alertLayout(l); ok {
		box := alertStyle.Width(r.w - 2).Render(strings.Join(body, "\n"))
		lines = place(lines, box, r.x, r.y)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderHeader(w int) string {
	title := titleStyle.Render(" lakemap ─ " + m.panelTitle() + " ")
	state := dimStyle.Render(fmt.Sprintf(" lakes: %s  boundary: %s ", m.lakesState, m.boundaryState))
	gap := max(0, w-lipgloss.Width(title)-lipgloss.Width(state))
	return ansi.Truncate(title+strings.Repeat(" ", gap)+state, w, "")
}

func (m Model) panelTitle() string {
	if m.panel != nil {
		return m.panel.Title()
	}
	if m.opts.PanelTitle != "" {
		return m.opts.PanelTitle
	}
	return "lake map"
}

// renderControls draws the base-layer buttons at the offsets layout assigns.
func (m Model) renderControls(l layout) string {
	var b strings.Builder
	b.WriteString(" ")
	for i, c := range l.controls {
		if i > 0 {
			b.WriteString(" ")
		}
		if c.active {
			b.WriteString(activeStyle.Render(c.label))
		} else {
			b.WriteString(controlStyle.Render(c.label))
		}
	}
	mp := m.view.Map()
	focus := "map"
	if m.focus == focusPanel {
		focus = "panel"
	}
	right := dimStyle.Render(fmt.Sprintf(" zoom %d [%d-%d]  focus: %s ", mp.Zoom(), mp.MinZoom(), mp.MaxZoom(), focus))
	left := b.String()
	gap := max(1, l.width-lipgloss.Width(left)-lipgloss.Width(right))
	return ansi.Truncate(left+strings.Repeat(" ", gap)+right, l.width, "")
}

func (m Model) renderFooter(w int) string {
	status := dimStyle.Render(" " + m.status + " ")
	tl := m.view.TileLayer(m.view.BaseLayer())
	right := fmt.Sprintf("%s · tiles %d ", tl.Attribution, len(m.view.VisibleTiles()))
	if m.hoverHasGeo {
		right = fmt.Sprintf("lon=%.5f lat=%.5f  ", m.hoverLon, m.hoverLat) + right
	}
	room := max(0, w-lipgloss.Width(status))
	right = dimStyle.Render(ansi.Truncate(right, room, "…"))
	gap := max(0, w-lipgloss.Width(status)-lipgloss.Width(right))
	return ansi.Truncate(status+strings.Repeat(" ", gap)+right, w, "")
}

// renderPanel draws the panel box sized by pl: a header with the collapse
// toggle, then the scrolled lake rows.
func (m Model) renderPanel(pl panelLayout) string {
	toggle := m.panel.ToggleLabel()
	header := titleStyle.Render(fit(m.panel.Title(), pl.inner-len([]rune(toggle))-1)) + " " + toggle
	body := []string{header}
	if pl.bodyH > 0 {
		vp := m.panelVP
		vp.Width, vp.Height = pl.inner, pl.bodyH
		vp.SetContent(m.panelContent(pl.inner))
		body = append(body, vp.View())
	}
	return panelStyle.Width(pl.inner + 2).Render(strings.Join(body, "\n"))
}
