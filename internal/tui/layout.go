package tui

import (
	"strings"

	"lakemap/internal/mapview"
	"lakemap/internal/markup"
	"lakemap/internal/modal"
	"lakemap/internal/panel"
)

const (
	headerHeight   = 1
	controlsHeight = 1
	footerHeight   = 1

	minMapHeight = 4
	minWidth     = 20

	panelMinWidth = 24
	panelMaxWidth = 36
	modalMinWidth = 28
	modalMaxWidth = 60

	// a box spends two cells on its border and two on padding
	boxFrame = 4
)

type rect struct {
	x, y, w, h int
}

func (r rect) contains(x, y int) bool {
	return x >= r.x && x < r.x+r.w && y >= r.y && y < r.y+r.h
}

type controlRect struct {
	kind   mapview.BaseLayer
	label  string
	active bool
	rect   rect
}

type panelLayout struct {
	box    rect
	inner  int
	toggle rect
	bodyY  int
	bodyH  int
}

type modalLayout struct {
	box   rect
	close rect
	lines []string
}

type layout struct {
	width, height int
	header        rect
	mapArea       rect
	controls      []controlRect
	footer        rect
}

func (m Model) screenWidth() int { return max(minWidth, m.width) }

func (m Model) layout() layout {
	w := m.screenWidth()
	mapH := max(minMapHeight, m.height-headerHeight-controlsHeight-footerHeight)
	l := layout{
		width:   w,
		height:  headerHeight + mapH + controlsHeight + footerHeight,
		header:  rect{0, 0, w, headerHeight},
		mapArea: rect{0, headerHeight, w, mapH},
		footer:  rect{0, headerHeight + mapH + controlsHeight, w, footerHeight},
	}
	x := 1
	cy := headerHeight + mapH
	for _, c := range m.view.Controls() {
		bw := len([]rune(c.Label)) + 2
		l.controls = append(l.controls, controlRect{kind: c.Kind, label: c.Label, active: c.Active, rect: rect{x, cy, bw, 1}})
		x += bw + 1
	}
	return l
}

// panelLayout places the lake panel at the top right of the map. ok is false
// before the panel exists.
func (m Model) panelLayout(l layout) (panelLayout, bool) {
	if m.panel == nil {
		return panelLayout{}, false
	}
	pw := min(max(l.width/3, panelMinWidth), panelMaxWidth, l.width-2)
	inner := pw - boxFrame
	bodyH := 0
	if !m.panel.Collapsed() && m.panel.Len() > 0 {
		bodyH = min(m.panel.Len(), max(1, l.mapArea.h-3))
	}
	x0 := l.mapArea.x + l.mapArea.w - pw - 1
	y0 := l.mapArea.y
	return panelLayout{
		box:    rect{x0, y0, pw, bodyH + 3},
		inner:  inner,
		toggle: rect{x0 + 2 + inner - 3, y0 + 1, 3, 1},
		bodyY:  y0 + 2,
		bodyH:  bodyH,
	}, true
}

// rowAt resolves a cell inside the panel body to a lake row, and reports
// whether it falls on the detail control.
func (pl panelLayout) rowAt(x, y, offset int) (row int, detail bool, ok bool) {
	if y < pl.bodyY || y >= pl.bodyY+pl.bodyH {
		return 0, false, false
	}
	left := pl.box.x + 2
	if x < left || x >= left+pl.inner {
		return 0, false, false
	}
	row = y - pl.bodyY + offset
	detail = x >= left+pl.inner-len([]rune(panel.DetailLabel))
	return row, detail, true
}

// modalLayout centres the info modal on screen and lays out its text.
func (m Model) modalLayout(l layout) (modalLayout, bool) {
	if !m.modal.Visible() {
		return modalLayout{}, false
	}
	mw := min(max(l.width-8, modalMinWidth), modalMaxWidth, l.width)
	inner := mw - boxFrame
	lines := modalLines(m.modal.View(), inner)
	if maxLines := l.height - 2; len(lines) > maxLines && maxLines > 1 {
		lines = lines[:maxLines]
	}
	mh := len(lines) + 2
	x0 := max(0, (l.width-mw)/2)
	y0 := max(0, (l.height-mh)/2)
	return modalLayout{
		box:   rect{x0, y0, mw, mh},
		close: rect{x0 + 2 + inner - len([]rune(modal.CloseLabel)), y0 + 1, len([]rune(modal.CloseLabel)), 1},
		lines: lines,
	}, true
}

// modalLines is the modal body: header with the close control, the detail
// fields, a rule and the note rendered from its markup.
func modalLines(v modal.View, inner int) []string {
	closeW := len([]rune(v.Close))
	closeLabel := v.Close
	if v.Focused == modal.CloseControl {
		closeLabel = selectedStyle.Render(v.Close)
	}
	lines := []string{
		titleStyle.Render(fit(v.Title, inner-closeW-1)) + " " + closeLabel,
		"",
	}
	for _, f := range v.Fields {
		lines = append(lines, fit(f.Label+": "+f.Value, inner))
	}
	lines = append(lines, dimStyle.Render(strings.Repeat("─", inner)))
	note := markup.Render(v.Note, appStyle, inner)
	lines = append(lines, strings.Split(note, "\n")...)
	return lines
}

// alertLayout centres the blocking alert box.
func (m Model) alertLayout(l layout) (rect, []string, bool) {
	if m.alert == "" {
		return rect{}, nil, false
	}
	aw := min(max(len([]rune(m.alert))+boxFrame, modalMinWidth), l.width)
	inner := aw - boxFrame
	lines := []string{fit(m.alert, inner), "", fit("[ OK ]", inner)}
	ah := len(lines) + 2
	return rect{max(0, (l.width-aw)/2), max(0, (l.height-ah)/2), aw, ah}, lines, true
}
