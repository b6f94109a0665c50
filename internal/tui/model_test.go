package tui

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geolayers/internal/geom"
	"geolayers/internal/ingest"
	"geolayers/internal/layers"
	"geolayers/internal/mapsurface"
)

func newModel(t *testing.T, dir string) Model {
	t.Helper()
	canvas := mapsurface.NewCanvas()
	toasts := NewToaster()
	ctl := ingest.New(canvas, layers.NewRegistry(canvas), toasts, ingest.Options{})
	m := New(ctl, canvas, toasts, Options{StartDir: dir})
	return step(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
}

func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func key(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestSidebarListsEnabledFormats(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.geojson", "a.CSV", "notes.txt", "roads.gpx"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
	}
	m := newModel(t, dir)

	var names []string
	for _, it := range m.files.Items() {
		names = append(names, it.(fileItem).title)
	}
	assert.Equal(t, []string{"a.CSV", "b.geojson", "roads.gpx"}, names)
}

func TestImportOpensLayerPanel(t *testing.T) {
	m := newModel(t, t.TempDir())
	assert.False(t, m.showLayers)

	m = step(t, m, loadedMsg{m.ctl.Decode("roads", geom.GeoJSON, []byte(`{"type":"LineString","coordinates":[[0,0],[1,1]]}`))})

	assert.True(t, m.showLayers)
	assert.Equal(t, focusMap, m.focus)
	require.Len(t, m.layerList.Items(), 1)
	assert.Equal(t, "layer-roads", m.selected)
	msg, ok := m.toasts.Current()
	require.True(t, ok)
	assert.Equal(t, ingest.Success, msg.Severity)

	// toast expires on its own timer
	m = step(t, m, toastExpiredMsg{seq: m.toasts.seq})
	_, ok = m.toasts.Current()
	assert.False(t, ok)

	// closed panels stay closed after later imports
	m = step(t, m, runes("l"))
	m = step(t, m, runes("l"))
	assert.False(t, m.showLayers)
	m = step(t, m, loadedMsg{m.ctl.Decode("pts", geom.GeoJSON, []byte(`{"type":"Point","coordinates":[0,0]}`))})
	assert.False(t, m.showLayers)
	assert.Equal(t, "layer-pts", m.selected)
}

func TestLayerPanelToggleAndRemove(t *testing.T) {
	m := newModel(t, t.TempDir())
	m = step(t, m, loadedMsg{m.ctl.Decode("a", geom.GeoJSON, []byte(`{"type":"Point","coordinates":[0,0]}`))})
	m = step(t, m, runes("l"))
	require.Equal(t, focusLayers, m.focus)

	m = step(t, m, key(tea.KeySpace))
	rec, ok := m.ctl.Registry().Get("layer-a")
	require.True(t, ok)
	assert.False(t, rec.Visible)
	assert.Contains(t, m.layerList.Items()[0].(layerItem).Description(), "hidden")

	m = step(t, m, runes("x"))
	assert.Zero(t, m.ctl.Registry().Len())
	assert.Empty(t, m.layerList.Items())
	assert.Empty(t, m.canvas.Layers())
	msg, _ := m.toasts.Current()
	assert.Equal(t, `Layer "a" removed successfully`, msg.Text)
}

func TestColumnDialog(t *testing.T) {
	m := newModel(t, t.TempDir())
	csv := []byte("northing,easting,name\n10,20,A\n")

	m = step(t, m, loadedMsg{m.ctl.LoadFile("grid.csv", csv)})
	require.Equal(t, focusColumns, m.focus)
	assert.Len(t, m.columns.Items(), 3)
	assert.Empty(t, m.canvas.Sources())

	m = step(t, m, key(tea.KeyEnter))
	m = step(t, m, key(tea.KeyDown))
	m = step(t, m, key(tea.KeyEnter))

	assert.Equal(t, focusMap, m.focus)
	src, ok := m.canvas.GetSource("source-grid")
	require.True(t, ok)
	require.Len(t, src.Data.Features, 1)
	pt := src.Data.Features[0].Geometry.Bound().Min
	assert.Equal(t, 20.0, pt[0])
	assert.Equal(t, 10.0, pt[1])
}

func TestColumnDialogCancel(t *testing.T) {
	m := newModel(t, t.TempDir())
	m = step(t, m, loadedMsg{m.ctl.LoadFile("grid.csv", []byte("a,b\n1,2\n"))})
	require.Equal(t, focusColumns, m.focus)

	m = step(t, m, key(tea.KeyEsc))
	assert.Equal(t, focusMap, m.focus)
	assert.Empty(t, m.canvas.Sources())
	assert.Zero(t, m.ctl.Registry().Len())
}

func TestURLDialogRejectsEmptyURL(t *testing.T) {
	m := newModel(t, t.TempDir())
	m = step(t, m, runes("u"))
	require.Equal(t, focusURL, m.focus)

	m = step(t, m, key(tea.KeyCtrlF))
	assert.Equal(t, "json", m.urlFormatTag())

	m = step(t, m, key(tea.KeyEnter))
	assert.Equal(t, focusURL, m.focus, "dialog stays open")
	msg, ok := m.toasts.Current()
	require.True(t, ok)
	assert.Equal(t, ingest.Error, msg.Severity)
	assert.Equal(t, "enter a valid URL", msg.Text)
}

func TestPastedLayersAreNumbered(t *testing.T) {
	m := newModel(t, t.TempDir())
	m = step(t, m, runes("p"))
	require.Equal(t, focusPaste, m.focus)
	m.ta.SetValue(`{"type":"Point","coordinates":[3,4]}`)

	next, cmd := m.Update(key(tea.KeyEnter))
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.Equal(t, focusMap, m.focus)
	assert.Equal(t, 1, m.pasted)

	l := m.ctl.Decode("Pasted 1", geom.GeoJSON, []byte(`{"type":"Point","coordinates":[3,4]}`))
	m = step(t, m, loadedMsg{l})
	_, ok := m.ctl.Registry().Get("layer-Pasted 1")
	assert.True(t, ok)
}

func TestAttributes(t *testing.T) {
	m := newModel(t, t.TempDir())
	m = step(t, m, loadedMsg{m.ctl.Decode("a", geom.GeoJSON, []byte(`{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"name":"x","pop":3},"geometry":{"type":"Point","coordinates":[0,0]}},
		{"type":"Feature","properties":{"kind":true},"geometry":{"type":"Point","coordinates":[1,1]}}]}`))})

	cols, rows := m.buildAttributes()
	assert.Equal(t, []string{"name", "pop", "kind"}, cols)
	assert.Equal(t, [][]string{{"x", "3", ""}, {"", "", "true"}}, rows)

	m = step(t, m, runes("a"))
	assert.True(t, m.showAttrs)
	assert.Len(t, m.tbl.Rows(), 2)
}
