package panel

import (
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lakemap/internal/lake"
	"lakemap/internal/modal"
)

type navCall struct {
	op   string
	pos  lake.LatLng
	zoom int
	i    int
}

type fakeNav struct{ calls []navCall }

func (f *fakeNav) FlyTo(pos lake.LatLng, zoom int) {
	f.calls = append(f.calls, navCall{op: "fly", pos: pos, zoom: zoom})
}
func (f *fakeNav) OpenPopup(i int)  { f.calls = append(f.calls, navCall{op: "open", i: i}) }
func (f *fakeNav) ClosePopup(i int) { f.calls = append(f.calls, navCall{op: "close", i: i}) }

func testLakes(t *testing.T) []lake.Lake {
	t.Helper()
	k := geojson.NewFeature(orb.Point{68.02, 24.95})
	k.Properties["name"] = "Kinjhar Lake"
	k.Properties["area_km2"] = 135.0
	k.Properties["note"] = "Largest freshwater lake"
	u := geojson.NewFeature(orb.Point{67.77, 24.80})
	var out []lake.Lake
	for _, f := range []*geojson.Feature{k, u} {
		lk, ok := lake.FromFeature(f)
		require.True(t, ok)
		out = append(out, lk)
	}
	return out
}

func TestRows(t *testing.T) {
	p := New("", testLakes(t), &fakeNav{}, modal.New(), Options{})
	assert.Equal(t, DefaultTitle, p.Title())
	rows := p.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, Row{Index: 0, Name: "Kinjhar Lake", Detail: DetailLabel, Selected: true}, rows[0])
	assert.Equal(t, "Unknown Lake", rows[1].Name)
	assert.False(t, rows[1].Selected)
}

func TestZoomTo(t *testing.T) {
	nav := &fakeNav{}
	p := New("Lakes", testLakes(t), nav, modal.New(), Options{})

	delay, ok := p.ZoomTo(1)
	require.True(t, ok)
	assert.Equal(t, 800*time.Millisecond, delay)
	assert.Equal(t, 1, p.Cursor())
	assert.Equal(t, []navCall{
		{op: "fly", pos: lake.LatLng{Lat: 24.80, Lng: 67.77}, zoom: 12},
		{op: "open", i: 1},
	}, nav.calls)

	p.ClosePopup(1)
	assert.Equal(t, navCall{op: "close", i: 1}, nav.calls[2])

	_, ok = p.ZoomTo(5)
	assert.False(t, ok)
	p.ClosePopup(5)
	assert.Len(t, nav.calls, 3)
}

func TestZoomToCustomOptions(t *testing.T) {
	nav := &fakeNav{}
	p := New("", testLakes(t), nav, modal.New(), Options{FocusZoom: 9, PopupDelay: time.Second})
	delay, ok := p.ZoomTo(0)
	require.True(t, ok)
	assert.Equal(t, time.Second, delay)
	assert.Equal(t, 9, nav.calls[0].zoom)
}

func TestShowDetailKinjhar(t *testing.T) {
	m := modal.New()
	p := New("", testLakes(t), &fakeNav{}, m, Options{})

	require.True(t, p.ShowDetail(0))
	require.True(t, m.Visible())
	v := m.View()
	assert.Equal(t, "Kinjhar Lake", v.Title)
	assert.Equal(t, []modal.Field{
		{Label: "Area", Value: "135 km²"},
		{Label: "Coordinates", Value: "24.95000, 68.02000"},
	}, v.Fields)
	assert.Equal(t, "Largest freshwater lake", v.Note)
	assert.Equal(t, modal.CloseControl, m.Focus())

	assert.False(t, p.ShowDetail(-1))
}

func TestToggleIsPresentational(t *testing.T) {
	nav := &fakeNav{}
	p := New("", testLakes(t), nav, modal.New(), Options{})
	assert.False(t, p.Collapsed())
	assert.Equal(t, CollapseLabel, p.ToggleLabel())

	p.Toggle()
	assert.True(t, p.Collapsed())
	assert.Equal(t, ExpandLabel, p.ToggleLabel())
	assert.Len(t, p.Rows(), 2)
	assert.Empty(t, nav.calls)

	p.Toggle()
	assert.False(t, p.Collapsed())
}

func TestCursorBounds(t *testing.T) {
	p := New("", testLakes(t), &fakeNav{}, modal.New(), Options{})
	p.MoveCursor(-3)
	assert.Equal(t, 0, p.Cursor())
	p.MoveCursor(10)
	assert.Equal(t, 1, p.Cursor())

	empty := New("", nil, &fakeNav{}, modal.New(), Options{})
	empty.MoveCursor(1)
	assert.Equal(t, 0, empty.Cursor())
	assert.Empty(t, empty.Rows())
}
