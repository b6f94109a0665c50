package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"geolayers/internal/mapsurface"
)

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	_, _, mapWidth, mapHeight := m.mapRect()
	contentWidth := max(10, m.width)

	// Header
	header := titleStyle.Render(" geolayers ─ vector layers in the terminal ")
	header = lipgloss.NewStyle().Width(contentWidth).Render(header)

	var mapView string
	switch {
	case m.focus == focusURL:
		mapView = lipgloss.Place(mapWidth, mapHeight, lipgloss.Center, lipgloss.Center, m.urlDialog(mapWidth))
	case m.focus == focusColumns:
		box := boxStyle.Render(m.columns.View() + "\n" + dimStyle.Render("Enter choose · Esc cancel"))
		mapView = lipgloss.Place(mapWidth, mapHeight, lipgloss.Center, lipgloss.Center, box)
	case m.focus == focusPaste:
		mapView = lipgloss.NewStyle().Width(mapWidth).Height(mapHeight).Render(m.ta.View())
	case m.showAttrs:
		// infer a reasonable width from columns
		colW := 0
		for _, c := range m.tbl.Columns() {
			colW += c.Width + 3
		}
		maxW := min(mapWidth, max(32, colW))
		m.tbl.SetWidth(maxW - 4)
		m.tbl.SetHeight(min(mapHeight-2, 20))
		attrsBox := boxStyle.Width(maxW).Render(m.tbl.View())
		mapView = lipgloss.Place(mapWidth, mapHeight, lipgloss.Center, lipgloss.Center, attrsBox)
	default:
		mapView = lipgloss.NewStyle().Width(mapWidth).Height(mapHeight).Render(m.canvas.Render(mapWidth, mapHeight))
	}

	cols := []string{}
	if m.showSidebar {
		cols = append(cols, lipgloss.NewStyle().Width(sidebarWidth).Render(m.files.View()), " ")
	}
	cols = append(cols, mapView)
	if m.rightColumn() {
		cols = append(cols, " ", m.rightPanel(mapHeight))
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, cols...)

	ui := lipgloss.JoinVertical(lipgloss.Left, header, body, m.footer(contentWidth))
	return appStyle.Width(contentWidth).Height(m.height).Render(ui)
}

func (m Model) urlDialog(width int) string {
	w := min(width-4, 64)
	m.urlInput.Width = w - 8
	m.nameInput.Width = w - 8
	format := fmt.Sprintf("Format < %s >", m.urlFormatTag())
	body := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Load from URL"),
		m.urlInput.View(),
		m.nameInput.View(),
		format,
		dimStyle.Render("Tab field · Ctrl+F format · Enter load · Esc cancel"),
	)
	return boxStyle.Width(w).Render(body)
}

// rightPanel stacks the popup above the layer list.
func (m Model) rightPanel(height int) string {
	var parts []string
	if p, ok := m.canvas.Popup(); ok {
		parts = append(parts, popupBox(p, panelWidth))
	}
	if m.showLayers {
		style := lipgloss.NewStyle().Width(panelWidth)
		if m.focus != focusLayers {
			style = style.Foreground(baseDimFg)
		}
		parts = append(parts, style.Render(m.layerList.View()))
	}
	return lipgloss.NewStyle().Width(panelWidth).MaxHeight(height).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func popupBox(p mapsurface.Popup, width int) string {
	lines := []string{titleStyle.Render(p.Title)}
	for _, r := range p.Rows {
		lines = append(lines, dimStyle.Render(r[0]+": ")+r[1])
	}
	lines = append(lines, dimStyle.Render(fmt.Sprintf("lon=%.5f lat=%.5f", p.LngLat[0], p.LngLat[1])))
	return boxStyle.Width(width - 2).Render(strings.Join(lines, "\n"))
}

func (m Model) footer(width int) string {
	status := m.statusLine
	style := dimStyle
	if t, ok := m.toasts.Current(); ok {
		status = t.Text
		style = toastStyle(t.Severity)
	}
	left := lipgloss.JoinHorizontal(lipgloss.Bottom, style.Render(" "+status+" "), m.renderHelp())

	// mouse coords at bottom-right
	coords := ""
	if m.hoverHasGeo {
		marker := ""
		if m.canvas.Cursor() == "pointer" {
			marker = "◆ "
		}
		coords = dimStyle.Render(fmt.Sprintf("  %slon=%.5f lat=%.5f  ", marker, m.hoverLon, m.hoverLat))
	}
	spacerW := max(0, width-lipgloss.Width(left)-lipgloss.Width(coords))
	right := lipgloss.Place(spacerW+lipgloss.Width(coords), 1, lipgloss.Right, lipgloss.Center, coords)
	return lipgloss.NewStyle().Width(width).Render(lipgloss.JoinHorizontal(lipgloss.Bottom, left, right))
}

func (m Model) renderHelp() string {
	if !m.helpVisible {
		return ""
	}
	var keys []string
	switch m.focus {
	case focusFiles:
		keys = []string{"Enter import", "/ filter", "Tab close"}
	case focusLayers:
		keys = []string{"Space show/hide", "x remove", "Enter attrs", "l close"}
	case focusAttrs:
		keys = []string{"↑↓ scroll", "a close"}
	default:
		keys = []string{
			"↑↓←→ pan",
			"+/- zoom",
			"Tab files",
			"u url",
			"p paste",
			"l layers",
			"a attrs",
			"h help",
			"q quit",
		}
	}
	return dimStyle.Render("  " + strings.Join(keys, "  "))
}
