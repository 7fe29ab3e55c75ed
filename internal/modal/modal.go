// Package modal implements the lake info modal: a single overlay that shows
// one lake's full detail until it is dismissed.
package modal

import (
	"github.com/paulmach/orb/geojson"

	"lakemap/internal/lake"
)

// Control identifies a focusable control inside the modal.
type Control int

const (
	NoControl Control = iota
	CloseControl
)

// Content is everything the modal displays for one lake.
type Content struct {
	Title       string
	Area        string
	Coordinates string
	Note        string // may contain inline markup
}

// Modal is not safe for concurrent use; it is owned by the UI loop.
type Modal struct {
	visible bool
	content Content
	focus   Control
}

func New() *Modal { return &Modal{} }

// Show replaces the displayed lake and makes the modal visible. pos may be
// nil, in which case the coordinate line is empty.
func (m *Modal) Show(props geojson.Properties, pos *lake.LatLng) {
	c := Content{
		Title:       lake.ResolveName(props),
		Area:        lake.FormatArea(lake.Area(props)),
		Coordinates: lake.FormatCoordinates(pos),
		Note:        lake.ResolveNote(props),
	}
	m.content = c
	m.visible = true
	m.focus = CloseControl
}

// Hide is a no-op on a hidden modal.
func (m *Modal) Hide() {
	m.visible = false
	m.focus = NoControl
}

func (m *Modal) Visible() bool { return m.visible }

func (m *Modal) Content() Content { return m.content }

// Focus reports the control holding keyboard focus.
func (m *Modal) Focus() Control { return m.focus }

// Field is a labelled detail line.
type Field struct {
	Label string
	Value string
}

// View is a render-ready description of the modal.
type View struct {
	Title   string
	Fields  []Field
	Note    string
	Close   string
	Focused Control
	Visible bool
}

// CloseLabel is the text of the dismiss control.
const CloseLabel = "[x]"

// View describes the modal for the renderer. The coordinate field is left out
// when no position was supplied.
func (m *Modal) View() View {
	v := View{
		Title:   m.content.Title,
		Note:    m.content.Note,
		Close:   CloseLabel,
		Focused: m.focus,
		Visible: m.visible,
	}
	v.Fields = append(v.Fields, Field{Label: "Area", Value: m.content.Area})
	if m.content.Coordinates != "" {
		v.Fields = append(v.Fields, Field{Label: "Coordinates", Value: m.content.Coordinates})
	}
	return v
}
