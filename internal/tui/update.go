package tui

import (
	list "github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
	case loadedMsg:
		m.commit(msg.Loaded)
	case toastExpiredMsg:
		m.toasts.expire(msg.seq)
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		var quit bool
		cmd, quit = m.handleKey(msg)
		if quit {
			return m, tea.Quit
		}
	case tea.MouseMsg:
		m.handleMouse(msg)
	default:
		// cursor blink and the like
		switch m.focus {
		case focusURL:
			if m.urlInput.Focused() {
				m.urlInput, cmd = m.urlInput.Update(msg)
			} else {
				m.nameInput, cmd = m.nameInput.Update(msg)
			}
		case focusPaste:
			m.ta, cmd = m.ta.Update(msg)
		case focusFiles:
			m.files, cmd = m.files.Update(msg)
		}
	}
	m.afterCommit()
	return m, tea.Batch(cmd, m.toasts.schedule())
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch m.focus {
	case focusURL:
		return m.updateURL(msg), false
	case focusColumns:
		return m.updateColumns(msg), false
	case focusPaste:
		return m.updatePaste(msg), false
	case focusFiles:
		// a filtering list gets every key
		if m.files.FilterState() == list.Filtering {
			var cmd tea.Cmd
			m.files, cmd = m.files.Update(msg)
			return cmd, false
		}
		switch msg.String() {
		case "enter":
			if it, ok := m.files.SelectedItem().(fileItem); ok {
				return readFile(m.ctl, it.path), false
			}
			return nil, false
		case "tab", "esc":
			m.showSidebar = false
			m.focus = focusMap
			m.layout()
			return nil, false
		case "up", "down", "k", "j", "/", "pgup", "pgdown":
			var cmd tea.Cmd
			m.files, cmd = m.files.Update(msg)
			return cmd, false
		}
	case focusLayers:
		switch msg.String() {
		case " ":
			m.toggleSelected()
			return nil, false
		case "x", "delete":
			m.removeSelected()
			return nil, false
		case "enter":
			if rec, ok := m.selectedLayer(); ok {
				m.selected = rec.LayerID
				m.showAttrs = true
				m.focus = focusAttrs
				m.refreshAttrs()
			}
			return nil, false
		case "l", "esc":
			m.showLayers = false
			m.focus = focusMap
			m.layout()
			return nil, false
		case "up", "down", "k", "j":
			var cmd tea.Cmd
			m.layerList, cmd = m.layerList.Update(msg)
			return cmd, false
		}
	case focusAttrs:
		switch msg.String() {
		case "a", "esc":
			m.showAttrs = false
			m.focus = focusMap
			return nil, false
		case "up", "down", "k", "j", "pgup", "pgdown":
			var cmd tea.Cmd
			m.tbl, cmd = m.tbl.Update(msg)
			return cmd, false
		}
	}
	return m.mapKey(msg)
}

// mapKey handles the keys shared by the map and the side panels.
func (m *Model) mapKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "q":
		return nil, true
	case "+", "=":
		m.canvas.Zoom(1.2)
	case "-", "_":
		m.canvas.Zoom(1 / 1.2)
	case "up":
		m.canvas.Pan(0, -1)
	case "down":
		m.canvas.Pan(0, 1)
	case "left":
		m.canvas.Pan(-2, 0)
	case "right":
		m.canvas.Pan(2, 0)
	case "tab":
		m.showSidebar = true
		m.focus = focusFiles
		m.refreshDir()
		m.layout()
	case "l":
		m.showLayers = true
		m.focus = focusLayers
		m.layout()
	case "u":
		return m.openURL(), false
	case "p":
		return m.openPaste(), false
	case "a":
		m.showAttrs = !m.showAttrs
		if m.showAttrs {
			m.focus = focusAttrs
			m.refreshAttrs()
		}
	case "h":
		m.helpVisible = !m.helpVisible
	case "esc":
		m.canvas.ClosePopup()
		m.focus = focusMap
		m.layout()
	}
	return nil, false
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	x0, y0, w, h := m.mapRect()
	cx, cy := msg.X-x0, msg.Y-y0
	if cx < 0 || cx >= w || cy < 0 || cy >= h || m.showAttrs {
		m.hoverHasGeo = false
		return
	}
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.canvas.Zoom(1.2)
	case msg.Button == tea.MouseButtonWheelDown:
		m.canvas.Zoom(1 / 1.2)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if !m.canvas.Click(cx, cy) {
			m.canvas.ClosePopup()
		}
		m.layout()
	case msg.Action == tea.MouseActionMotion:
		m.canvas.Hover(cx, cy)
	}
	ll := m.canvas.Unproject(float64(cx), float64(cy))
	m.hoverHasGeo = true
	m.hoverLon, m.hoverLat = ll[0], ll[1]
}

// mapRect returns the map area origin and size on screen.
func (m Model) mapRect() (x, y, w, h int) {
	h = max(4, m.height-headerHeight-footerHeight)
	w = max(10, m.width)
	if m.showSidebar {
		x = sidebarWidth + 1
		w -= sidebarWidth + 1
	}
	if m.rightColumn() {
		w -= panelWidth + 1
	}
	return x, headerHeight, max(10, w), h
}

// rightColumn reports whether the layer panel or the popup takes space.
func (m Model) rightColumn() bool {
	_, popup := m.canvas.Popup()
	return m.showLayers || popup
}

// layout sizes the panels and the canvas after a resize or a panel toggle.
func (m *Model) layout() {
	_, _, w, h := m.mapRect()
	m.canvas.SetSize(w, h)
	m.files.SetSize(sidebarWidth-2, h-2)
	m.layerList.SetSize(panelWidth-2, h-2)
	m.columns.SetSize(30, min(h-4, 12))
	m.ta.SetWidth(w)
	m.ta.SetHeight(min(h, 12))
}
