// Package panel implements the collapsible lake list shown beside the map.
package panel

import (
	"time"

	"github.com/paulmach/orb/geojson"

	"lakemap/internal/lake"
)

const (
	DefaultTitle      = "Description of lakes"
	DefaultFocusZoom  = 12
	DefaultPopupDelay = 800 * time.Millisecond

	DetailLabel   = "[i]"
	CollapseLabel = "[-]"
	ExpandLabel   = "[+]"
)

// Navigator moves the map for the panel. *mapview.View implements it.
type Navigator interface {
	FlyTo(pos lake.LatLng, zoom int)
	OpenPopup(i int)
	ClosePopup(i int)
}

// DetailOpener shows a lake's full detail. *modal.Modal implements it.
type DetailOpener interface {
	Show(props geojson.Properties, pos *lake.LatLng)
}

type Options struct {
	FocusZoom  int
	PopupDelay time.Duration
}

func (o Options) withDefaults() Options {
	if o.FocusZoom <= 0 {
		o.FocusZoom = DefaultFocusZoom
	}
	if o.PopupDelay <= 0 {
		o.PopupDelay = DefaultPopupDelay
	}
	return o
}

// Row is one list entry as the renderer sees it.
type Row struct {
	Index    int
	Name     string
	Detail   string
	Selected bool
}

// Panel is built once per lakes load and never rebuilt.
type Panel struct {
	title     string
	lakes     []lake.Lake
	nav       Navigator
	detail    DetailOpener
	opts      Options
	collapsed bool
	cursor    int
}

func New(title string, lakes []lake.Lake, nav Navigator, detail DetailOpener, opts Options) *Panel {
	if title == "" {
		title = DefaultTitle
	}
	return &Panel{
		title:  title,
		lakes:  append([]lake.Lake(nil), lakes...),
		nav:    nav,
		detail: detail,
		opts:   opts.withDefaults(),
	}
}

func (p *Panel) Title() string { return p.title }
func (p *Panel) Len() int      { return len(p.lakes) }

// Rows lists every lake in load order with its resolved name.
func (p *Panel) Rows() []Row {
	rows := make([]Row, len(p.lakes))
	for i, lk := range p.lakes {
		rows[i] = Row{Index: i, Name: lk.Name(), Detail: DetailLabel, Selected: i == p.cursor}
	}
	return rows
}

// Toggle flips between expanded and collapsed; it touches nothing else.
func (p *Panel) Toggle()         { p.collapsed = !p.collapsed }
func (p *Panel) Collapsed() bool { return p.collapsed }

// ToggleLabel is the header control text for the current state.
func (p *Panel) ToggleLabel() string {
	if p.collapsed {
		return ExpandLabel
	}
	return CollapseLabel
}

func (p *Panel) Cursor() int { return p.cursor }

// MoveCursor shifts the selection by delta, stopping at either end.
func (p *Panel) MoveCursor(delta int) {
	p.SetCursor(p.cursor + delta)
}

func (p *Panel) SetCursor(i int) {
	if len(p.lakes) == 0 {
		p.cursor = 0
		return
	}
	p.cursor = min(max(i, 0), len(p.lakes)-1)
}

// ZoomTo centres the map on lake i at the focus zoom and opens its popup.
// The caller closes the popup with ClosePopup after the returned delay.
func (p *Panel) ZoomTo(i int) (time.Duration, bool) {
	lk, ok := p.lake(i)
	if !ok || lk.Position == nil {
		return 0, false
	}
	p.cursor = i
	p.nav.FlyTo(*lk.Position, p.opts.FocusZoom)
	p.nav.OpenPopup(i)
	return p.opts.PopupDelay, true
}

// ClosePopup ends the label opened by ZoomTo(i).
func (p *Panel) ClosePopup(i int) {
	if _, ok := p.lake(i); ok {
		p.nav.ClosePopup(i)
	}
}

// ShowDetail opens the modal with lake i's raw properties and position.
func (p *Panel) ShowDetail(i int) bool {
	lk, ok := p.lake(i)
	if !ok {
		return false
	}
	p.cursor = i
	var pos *lake.LatLng
	if lk.Position != nil {
		cp := *lk.Position
		pos = &cp
	}
	p.detail.Show(lk.Properties, pos)
	return true
}

func (p *Panel) lake(i int) (lake.Lake, bool) {
	if i < 0 || i >= len(p.lakes) {
		return lake.Lake{}, false
	}
	return p.lakes[i], true
}
