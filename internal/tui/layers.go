package tui

import (
	"fmt"

	list "github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"

	"geolayers/internal/ingest"
	"geolayers/internal/layers"
)

type layerItem struct {
	rec layers.Record
}

func (l layerItem) Title() string {
	swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(l.rec.Color)).Render("■")
	return swatch + " " + l.rec.Name
}

func (l layerItem) Description() string {
	state := "visible"
	if !l.rec.Visible {
		state = "hidden"
	}
	return fmt.Sprintf("%s · %s", l.rec.Class, state)
}

func (l layerItem) FilterValue() string { return l.rec.Name }

// refreshLayers rebuilds the panel from the registry's top-level records.
func (m *Model) refreshLayers() {
	var items []list.Item
	for rec := range m.ctl.Registry().TopLevel() {
		items = append(items, layerItem{rec: rec})
	}
	idx := m.layerList.Index()
	m.layerList.SetItems(items)
	if idx >= len(items) {
		idx = len(items) - 1
	}
	if idx >= 0 {
		m.layerList.Select(idx)
	}
	if _, ok := m.ctl.Registry().Get(m.selected); !ok {
		m.selected = ""
		if n := len(items); n > 0 {
			m.selected = items[n-1].(layerItem).rec.LayerID
		}
	}
}

func (m *Model) selectedLayer() (layers.Record, bool) {
	it, ok := m.layerList.SelectedItem().(layerItem)
	return it.rec, ok
}

func (m *Model) toggleSelected() {
	rec, ok := m.selectedLayer()
	if !ok {
		return
	}
	m.ctl.SetLayerVisible(rec.LayerID, !rec.Visible)
}

func (m *Model) removeSelected() {
	if _, ok := m.selectedLayer(); !ok {
		return
	}
	m.ctl.RemoveLayer(m.layerList.Index())
	m.canvas.ClosePopup()
}

// afterCommit reacts to layer-set changes: it refreshes the panel, opens
// it after the first successful import and follows the newest layer.
func (m *Model) afterCommit() {
	if !m.toasts.takeChanged() {
		return
	}
	before := len(m.layerList.Items())
	m.refreshLayers()
	if n := len(m.layerList.Items()); n > before {
		m.layerList.Select(n - 1)
		m.selected = m.layerList.Items()[n-1].(layerItem).rec.LayerID
		if !m.layersSeen {
			m.layersSeen = true
			m.showLayers = true
			m.layout()
		}
	}
	if m.showAttrs {
		m.refreshAttrs()
	}
}

var _ ingest.Notifier = (*Toaster)(nil)
