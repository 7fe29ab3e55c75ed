package tui

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lakemap/internal/geom"
	"lakemap/internal/lake"
	"lakemap/internal/mapview"
	"lakemap/internal/modal"
)

const (
	testLakesJSON = `{"type":"FeatureCollection","features":[
 {"type":"Feature","properties":{"name":"Kinjhar Lake","area_km2":135,"note":"<b>Largest</b> freshwater lake"},
  "geometry":{"type":"Point","coordinates":[68.02,24.95]}},
 {"type":"Feature","properties":{"name":"Manchar Lake"},
  "geometry":{"type":"Point","coordinates":[67.67,26.42]}}]}`
	testBoundaryJSON = `{"type":"FeatureCollection","features":[
 {"type":"Feature","properties":{},"geometry":{"type":"Polygon",
  "coordinates":[[[66.5,23.6],[71.2,23.6],[71.2,28.6],[66.5,28.6],[66.5,23.6]]]}}]}`
)

func quietLog() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newTestModel(t *testing.T, loader *geom.Loader) Model {
	t.Helper()
	m := New(Options{
		Lakes:    "lakes.geojson",
		Boundary: "boundary.geojson",
		Loader:   loader,
		Center:   lake.LatLng{Lat: 25.0, Lng: 68.5},
		Zoom:     6,
		Log:      quietLog(),
	})
	t.Cleanup(m.Close)
	return update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func updateCmd(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func parse(t *testing.T, s string) *geojson.FeatureCollection {
	t.Helper()
	fc, err := geom.ParseGeoJSON([]byte(s))
	require.NoError(t, err)
	return fc
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func leftClick(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

func wheel(x, y int, up bool) tea.MouseMsg {
	b := tea.MouseButtonWheelDown
	if up {
		b = tea.MouseButtonWheelUp
	}
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: b}
}

func withLakes(t *testing.T) Model {
	t.Helper()
	m := newTestModel(t, nil)
	m = update(t, m, lakesLoadedMsg{fc: parse(t, testLakesJSON)})
	require.NotNil(t, m.panel)
	return m
}

func screen(m Model) string { return ansi.Strip(m.View()) }

func TestLakes404ShowsAlertAndBoundaryStillApplies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/boundary.geojson" {
			_, _ = w.Write([]byte(testBoundaryJSON))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	m := newTestModel(t, &geom.Loader{Client: srv.Client(), BaseURL: srv.URL + "/"})
	m = update(t, m, m.loadLakesCmd()())
	m = update(t, m, m.loadBoundaryCmd()())

	assert.Equal(t, lakesAlert, m.alert)
	assert.Nil(t, m.panel)
	assert.Equal(t, loadFailed, m.lakesState)
	assert.Contains(t, screen(m), "Failed to load lakes data")

	assert.Equal(t, loadOK, m.boundaryState)
	assert.NotNil(t, m.view.Map().MaxBounds())
	assert.GreaterOrEqual(t, m.view.Map().MinZoom(), mapview.MinZoomFloor)

	// the alert blocks until dismissed, then the controls work
	m = update(t, m, keyPress("2"))
	assert.Equal(t, mapview.Street, m.view.BaseLayer())
	m = update(t, m, keyPress("enter"))
	assert.Empty(t, m.alert)
	m = update(t, m, keyPress("2"))
	assert.Equal(t, mapview.Satellite, m.view.BaseLayer())
}

func TestBoundaryFailureIsLoggedOnly(t *testing.T) {
	m := withLakes(t)
	zoom := m.view.Map().Zoom()
	m = update(t, m, boundaryLoadedMsg{err: fmt.Errorf("%w: status 500", geom.ErrLoad)})
	assert.Empty(t, m.alert)
	assert.Equal(t, loadFailed, m.boundaryState)
	assert.Nil(t, m.view.Map().MaxBounds())
	assert.Equal(t, mapview.DefaultMinZoom, m.view.Map().MinZoom())
	assert.Equal(t, zoom, m.view.Map().Zoom())
}

func TestBoundaryWithoutBoundsIsLoggedOnly(t *testing.T) {
	m := newTestModel(t, nil)
	m = update(t, m, boundaryLoadedMsg{fc: parse(t, `{"type":"Point","coordinates":[1,2]}`)})
	assert.Equal(t, loadFailed, m.boundaryState)
	assert.Nil(t, m.view.Map().MaxBounds())
}

func TestLoadFromDisk(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lakes.geojson"), []byte(testLakesJSON), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "boundary.geojson"), []byte(testBoundaryJSON), 0o644))

	m := newTestModel(t, &geom.Loader{BaseDir: dir})
	require.NotNil(t, m.Init())
	m = update(t, m, m.loadBoundaryCmd()())
	m = update(t, m, m.loadLakesCmd()())

	require.NotNil(t, m.panel)
	assert.Equal(t, 2, m.panel.Len())
	assert.Equal(t, loadOK, m.lakesState)
	assert.Equal(t, loadOK, m.boundaryState)
}

func TestKinjharDetailFromPanelClick(t *testing.T) {
	m := withLakes(t)
	pl, ok := m.panelLayout(m.layout())
	require.True(t, ok)

	assert.Contains(t, screen(m), "Kinjhar Lake")
	m = update(t, m, leftClick(pl.box.x+2+pl.inner-1, pl.bodyY))
	require.True(t, m.modal.Visible())
	assert.Equal(t, modal.CloseControl, m.modal.Focus())

	out := screen(m)
	assert.Contains(t, out, "Area: 135 km²")
	assert.Contains(t, out, "Coordinates: 24.95000, 68.02000")
	assert.Contains(t, out, "Largest freshwater lake")
	assert.NotContains(t, out, "<b>")

	m = update(t, m, leftClick(0, 39))
	assert.False(t, m.modal.Visible())
}

func TestModalCloseControlClick(t *testing.T) {
	m := withLakes(t)
	m.panel.ShowDetail(1)
	ml, ok := m.modalLayout(m.layout())
	require.True(t, ok)

	m = update(t, m, leftClick(ml.box.x+3, ml.box.y+2))
	assert.True(t, m.modal.Visible(), "clicks inside the box keep it open")
	m = update(t, m, leftClick(ml.close.x+1, ml.close.y))
	assert.False(t, m.modal.Visible())
}

func TestEscHidesModalGlobally(t *testing.T) {
	m := withLakes(t)
	m = update(t, m, keyPress("tab"))
	require.Equal(t, focusPanel, m.focus)
	m = update(t, m, keyPress("down"))
	m = update(t, m, keyPress("i"))
	require.True(t, m.modal.Visible())
	assert.Equal(t, "Manchar Lake", m.modal.View().Title)

	m = update(t, m, keyPress("esc"))
	assert.False(t, m.modal.Visible())
	m = update(t, m, keyPress("esc"))
	assert.False(t, m.modal.Visible())

	m = update(t, m, keyPress("i"))
	require.True(t, m.modal.Visible())
	m = update(t, m, keyPress("enter"))
	assert.False(t, m.modal.Visible())
}

func TestPanelZoomOpensAndExpiresPopup(t *testing.T) {
	m := withLakes(t)
	pl, _ := m.panelLayout(m.layout())

	m, cmd := updateCmd(t, m, leftClick(pl.box.x+2, pl.bodyY))
	require.NotNil(t, cmd)
	assert.Equal(t, mapview.LakeFocusZoom, m.view.Map().Zoom())
	i, open := m.view.Popup()
	require.True(t, open)
	assert.Equal(t, 0, i)
	assert.Contains(t, screen(m), "Coordinates: 24.95000, 68.02000")

	m = update(t, m, popupExpiredMsg{seq: m.popupSeq - 1, index: 0})
	_, open = m.view.Popup()
	assert.True(t, open, "stale timers are ignored")

	m = update(t, m, popupExpiredMsg{seq: m.popupSeq, index: 0})
	_, open = m.view.Popup()
	assert.False(t, open)
}

func TestPanelEventsDoNotReachMap(t *testing.T) {
	m := withLakes(t)
	pl, _ := m.panelLayout(m.layout())
	center, zoom := m.view.Map().Center(), m.view.Map().Zoom()

	m = update(t, m, wheel(pl.box.x+3, pl.bodyY, true))
	m = update(t, m, leftClick(pl.box.x+1, pl.box.y))
	assert.Equal(t, zoom, m.view.Map().Zoom())
	assert.Equal(t, center, m.view.Map().Center())

	m = update(t, m, leftClick(pl.toggle.x, pl.toggle.y))
	assert.True(t, m.panel.Collapsed())
	assert.Equal(t, center, m.view.Map().Center())
	assert.Contains(t, screen(m), "[+]")

	m = update(t, m, wheel(2, 5, true))
	assert.Equal(t, zoom+1, m.view.Map().Zoom())
}

func TestBaseLayerControls(t *testing.T) {
	m := newTestModel(t, nil)
	l := m.layout()
	require.Len(t, l.controls, 2)

	m = update(t, m, leftClick(l.controls[1].rect.x, l.controls[1].rect.y))
	assert.Equal(t, mapview.Satellite, m.view.BaseLayer())
	m = update(t, m, leftClick(l.controls[0].rect.x+1, l.controls[0].rect.y))
	assert.Equal(t, mapview.Street, m.view.BaseLayer())

	active := 0
	for _, c := range m.layout().controls {
		if c.active {
			active++
			assert.Equal(t, mapview.Street, c.kind)
		}
	}
	assert.Equal(t, 1, active)

	m = update(t, m, keyPress("2"))
	m = update(t, m, keyPress("1"))
	assert.Equal(t, mapview.Street, m.view.BaseLayer())
}

func TestMarkerClickOpensPopup(t *testing.T) {
	m := withLakes(t)
	m.view.FlyTo(lake.LatLng{Lat: 24.95, Lng: 68.02}, 10)
	l := m.layout()
	x, y := l.mapArea.w/2, l.mapArea.y+l.mapArea.h/2

	m = update(t, m, leftClick(x, y))
	i, open := m.view.Popup()
	require.True(t, open)
	assert.Equal(t, 0, i)

	m = update(t, m, leftClick(2, l.mapArea.y+1))
	_, open = m.view.Popup()
	assert.False(t, open)
}

func TestDragPansMap(t *testing.T) {
	m := newTestModel(t, nil)
	before := m.view.Map().Center()
	m = update(t, m, leftClick(10, 10))
	m = update(t, m, tea.MouseMsg{X: 20, Y: 10, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	m = update(t, m, tea.MouseMsg{X: 20, Y: 10, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	after := m.view.Map().Center()
	assert.Less(t, after[0], before[0])
	assert.InDelta(t, before[1], after[1], 1e-9)
	assert.Nil(t, m.drag)
}

func TestFirstResizeRefits(t *testing.T) {
	m := New(Options{Center: lake.LatLng{Lat: 25, Lng: 68.5}, Zoom: 6, Log: quietLog()})
	t.Cleanup(m.Close)
	m = update(t, m, lakesLoadedMsg{fc: parse(t, testLakesJSON)})
	m = update(t, m, tea.WindowSizeMsg{Width: 200, Height: 60})

	b, ok := m.view.Lakes().Bounds()
	require.True(t, ok)
	want := m.view.Map().BoundsZoom(mapview.PadBounds(b, mapview.LakesPadding))
	assert.Equal(t, want, m.view.Map().Zoom())
	assert.Equal(t, mapview.Size{W: 400, H: 228}, m.view.Map().Size())
}

func TestViewLayout(t *testing.T) {
	m := newTestModel(t, nil)
	assert.Empty(t, New(Options{Log: quietLog()}).View())

	m = update(t, m, lakesLoadedMsg{fc: parse(t, testLakesJSON)})
	out := screen(m)
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 40)
	assert.Contains(t, lines[0], "lakes: ok")
	assert.Contains(t, out, "Street Map")
	assert.Contains(t, out, "Satellite Map")
	assert.Contains(t, out, "Description of lakes")
	assert.Contains(t, out, "OpenStreetMap")
	for _, ln := range lines {
		assert.LessOrEqual(t, ansi.StringWidth(ln), 120)
	}

	m = update(t, m, keyPress("?"))
	assert.Contains(t, screen(m), "zoom in")
}

func TestQuitCancelsLoads(t *testing.T) {
	m := newTestModel(t, nil)
	_, cmd := updateCmd(t, m, keyPress("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Error(t, m.ctx.Err())
}

func TestPlaceOverlay(t *testing.T) {
	base := []string{"abcdefgh", "ijklmnop"}
	out := place(append([]string(nil), base...), "XY\nZW", 3, 1)
	assert.Equal(t, "abcdefgh", ansi.Strip(out[0]))
	assert.Equal(t, "ijkXYnop", ansi.Strip(out[1]))

	out = place([]string{"abc"}, "XY", -1, 0)
	assert.Equal(t, "Ybc", ansi.Strip(out[0]))
}

func TestCanvasMarkers(t *testing.T) {
	c := newCanvas(4, 2)
	c.disc(3, 3, 1, inkMarkerFill)
	c.ring(3, 3, 2, 1, inkMarkerStroke)
	assert.Equal(t, inkMarkerStroke, c.ink[0][1])
	assert.NotZero(t, c.mask[0][1])
	assert.Zero(t, c.mask[1][3])

	c.line(0, 7, 7, 7, inkBoundary)
	for x := 0; x < 4; x++ {
		assert.NotZero(t, c.mask[1][x]&0xC0)
	}
	lines := c.render(basePalette(mapview.Street))
	require.Len(t, lines, 2)
	assert.Equal(t, 4, ansi.StringWidth(lines[0]))
}

func TestRenderBoundaryOutline(t *testing.T) {
	m := newTestModel(t, nil)
	m = update(t, m, boundaryLoadedMsg{fc: parse(t, testBoundaryJSON)})
	l := m.layout()
	c := newCanvas(l.mapArea.w, l.mapArea.h)
	drawBoundary(c, m.view.Map(), m.view.Boundary())
	found := false
	for y := range c.ink {
		for x := range c.ink[y] {
			if c.ink[y][x] == inkBoundary {
				found = true
			}
		}
	}
	assert.True(t, found)
}

func TestCollapsedPanelReturnsKeysToMap(t *testing.T) {
	m := withLakes(t)
	m = update(t, m, keyPress("tab"))
	require.Equal(t, focusPanel, m.focus)

	m = update(t, m, keyPress("t"))
	require.True(t, m.panel.Collapsed())
	assert.Equal(t, focusMap, m.focus)

	center, zoom := m.view.Map().Center(), m.view.Map().Zoom()
	m = update(t, m, keyPress("down"))
	m = update(t, m, keyPress("enter"))
	assert.NotEqual(t, center, m.view.Map().Center())
	assert.Equal(t, zoom, m.view.Map().Zoom())
	assert.Equal(t, 0, m.panel.Cursor())
	_, open := m.view.Popup()
	assert.False(t, open)

	m = update(t, m, keyPress("t"))
	m = update(t, m, keyPress("tab"))
	assert.Equal(t, focusPanel, m.focus)
}

func TestCollapsedPanelByClickReturnsFocus(t *testing.T) {
	m := withLakes(t)
	m = update(t, m, keyPress("tab"))
	pl, _ := m.panelLayout(m.layout())
	m = update(t, m, leftClick(pl.toggle.x, pl.toggle.y))
	require.True(t, m.panel.Collapsed())
	assert.Equal(t, focusMap, m.focus)
}

func TestZoomLockIndependentOfResizeOrder(t *testing.T) {
	boundaryFirst := New(Options{Center: lake.LatLng{Lat: 25, Lng: 68.5}, Zoom: 6, Log: quietLog()})
	t.Cleanup(boundaryFirst.Close)
	boundaryFirst = update(t, boundaryFirst, boundaryLoadedMsg{fc: parse(t, testBoundaryJSON)})
	boundaryFirst = update(t, boundaryFirst, tea.WindowSizeMsg{Width: 240, Height: 70})

	resizeFirst := New(Options{Center: lake.LatLng{Lat: 25, Lng: 68.5}, Zoom: 6, Log: quietLog()})
	t.Cleanup(resizeFirst.Close)
	resizeFirst = update(t, resizeFirst, tea.WindowSizeMsg{Width: 240, Height: 70})
	resizeFirst = update(t, resizeFirst, boundaryLoadedMsg{fc: parse(t, testBoundaryJSON)})

	assert.Equal(t, resizeFirst.view.Map().MinZoom(), boundaryFirst.view.Map().MinZoom())
	assert.Equal(t, resizeFirst.view.Map().Zoom(), boundaryFirst.view.Map().Zoom())
	assert.Greater(t, boundaryFirst.view.Map().MinZoom(), mapview.MinZoomFloor)
}

// fitted replays a fit on a fresh map with the same canvas and limits.
func fitted(m Model, b orb.Bound) *mapview.Map {
	mp := m.view.Map()
	want := mapview.NewMap(mp.Center(), mp.Zoom())
	want.Resize(mp.Size().W, mp.Size().H)
	want.SetMaxBounds(mp.MaxBounds())
	want.SetMinZoom(mp.MinZoom())
	want.FitBounds(b)
	return want
}

func TestBoundaryThenLakesKeepsLakesFraming(t *testing.T) {
	m := newTestModel(t, nil)
	m = update(t, m, boundaryLoadedMsg{fc: parse(t, testBoundaryJSON)})
	minZoom := m.view.Map().MinZoom()
	m = update(t, m, lakesLoadedMsg{fc: parse(t, testLakesJSON)})

	require.NotNil(t, m.view.Map().MaxBounds())
	assert.Equal(t, minZoom, m.view.Map().MinZoom())
	assert.GreaterOrEqual(t, m.view.Map().MinZoom(), mapview.MinZoomFloor)

	b, ok := m.view.Lakes().Bounds()
	require.True(t, ok)
	want := fitted(m, mapview.PadBounds(b, mapview.LakesPadding))
	assert.Equal(t, want.Zoom(), m.view.Map().Zoom())
	assert.InDelta(t, want.Center()[0], m.view.Map().Center()[0], 1e-9)
	assert.InDelta(t, want.Center()[1], m.view.Map().Center()[1], 1e-9)
}

func TestLakesThenBoundaryKeepsBoundaryFraming(t *testing.T) {
	m := withLakes(t)
	m = update(t, m, boundaryLoadedMsg{fc: parse(t, testBoundaryJSON)})

	b, ok := m.view.Boundary().Bounds()
	require.True(t, ok)
	want := fitted(m, mapview.PadBounds(b, mapview.BoundaryPadding))
	assert.Equal(t, want.Zoom(), m.view.Map().Zoom())
	assert.InDelta(t, want.Center()[0], m.view.Map().Center()[0], 1e-9)
	assert.InDelta(t, want.Center()[1], m.view.Map().Center()[1], 1e-9)
	assert.Equal(t, 2, m.panel.Len())
}

// initCmds runs an Init command and unpacks the batch or sequence it
// produced.
func initCmds(t *testing.T, cmd tea.Cmd) (tea.Msg, []tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	msg := cmd()
	v := reflect.ValueOf(msg)
	require.Equal(t, reflect.Slice, v.Kind())
	cmds := make([]tea.Cmd, v.Len())
	for i := range cmds {
		cmds[i] = v.Index(i).Interface().(tea.Cmd)
	}
	return msg, cmds
}

func TestInitLoadOrder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lakes.geojson"), []byte(testLakesJSON), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "boundary.geojson"), []byte(testBoundaryJSON), 0o644))
	opts := Options{Lakes: "lakes.geojson", Boundary: "boundary.geojson", Loader: &geom.Loader{BaseDir: dir}, Log: quietLog()}

	concurrent := New(opts)
	t.Cleanup(concurrent.Close)
	msg, cmds := initCmds(t, concurrent.Init())
	assert.IsType(t, tea.BatchMsg{}, msg)
	require.Len(t, cmds, 2)

	opts.Sequential = true
	sequential := New(opts)
	t.Cleanup(sequential.Close)
	msg, cmds = initCmds(t, sequential.Init())
	assert.NotEqual(t, reflect.TypeOf(tea.BatchMsg{}), reflect.TypeOf(msg))
	require.Len(t, cmds, 2)
	assert.IsType(t, boundaryLoadedMsg{}, cmds[0]())
	assert.IsType(t, lakesLoadedMsg{}, cmds[1]())
}
