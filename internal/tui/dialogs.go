package tui

import (
	"errors"
	"fmt"
	"strings"

	list "github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"geolayers/internal/geom"
	"geolayers/internal/ingest"
)

// URL dialog

func (m *Model) openURL() tea.Cmd {
	m.focus = focusURL
	m.urlInput.SetValue("")
	m.nameInput.SetValue("")
	m.nameInput.Blur()
	return m.urlInput.Focus()
}

func (m *Model) urlFormatTag() string {
	fs := m.formats()
	if len(fs) == 0 {
		return ""
	}
	return string(fs[m.urlFormat%len(fs)])
}

func (m *Model) updateURL(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.focus = focusMap
		m.urlInput.Blur()
		m.nameInput.Blur()
		return nil
	case "tab", "shift+tab":
		if m.urlInput.Focused() {
			m.urlInput.Blur()
			return m.nameInput.Focus()
		}
		m.nameInput.Blur()
		return m.urlInput.Focus()
	case "ctrl+f":
		if n := len(m.formats()); n > 0 {
			m.urlFormat = (m.urlFormat + 1) % n
		}
		return nil
	case "enter":
		url := strings.TrimSpace(m.urlInput.Value())
		if url == "" {
			// reports the error itself
			_ = m.ctl.ImportFromURL(m.ctx, url, m.urlFormatTag(), "")
			return nil
		}
		m.focus = focusMap
		m.urlInput.Blur()
		m.nameInput.Blur()
		return m.fetch(url, m.urlFormatTag(), strings.TrimSpace(m.nameInput.Value()))
	}
	var cmd tea.Cmd
	if m.urlInput.Focused() {
		m.urlInput, cmd = m.urlInput.Update(msg)
	} else {
		m.nameInput, cmd = m.nameInput.Update(msg)
	}
	return cmd
}

// CSV column dialog

type columnItem string

func (c columnItem) Title() string       { return string(c) }
func (c columnItem) Description() string { return "" }
func (c columnItem) FilterValue() string { return string(c) }

func (m *Model) openColumns(choice *ingest.ColumnChoice) {
	m.pending = choice.Pending
	m.pickedLat = ""
	m.choosingLn = false
	items := make([]list.Item, 0, len(choice.Headers()))
	for _, h := range choice.Headers() {
		items = append(items, columnItem(h))
	}
	m.columns.SetItems(items)
	m.columns.Select(0)
	m.columns.Title = "Latitude column"
	m.focus = focusColumns
	m.status(choice.Error())
}

func (m *Model) updateColumns(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.pending = ingest.Loaded{}
		m.focus = focusMap
		m.status("CSV import cancelled")
		return nil
	case "enter":
		col, ok := m.columns.SelectedItem().(columnItem)
		if !ok {
			return nil
		}
		if !m.choosingLn {
			m.pickedLat = string(col)
			m.choosingLn = true
			m.columns.Title = "Longitude column"
			return nil
		}
		pending := m.pending
		m.pending = ingest.Loaded{}
		m.focus = focusMap
		m.status(fmt.Sprintf("%s: lat=%s lon=%s", pending.Name, m.pickedLat, col))
		// failures are reported as toasts
		_ = m.ctl.ResolveColumns(pending, m.pickedLat, string(col))
		return nil
	}
	var cmd tea.Cmd
	m.columns, cmd = m.columns.Update(msg)
	return cmd
}

// paste dialog

func (m *Model) openPaste() tea.Cmd {
	m.focus = focusPaste
	m.ta.SetValue("")
	m.status("paste mode")
	return m.ta.Focus()
}

func (m *Model) updatePaste(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.focus = focusMap
		m.ta.Blur()
		m.status("view mode")
		return nil
	case "enter":
		text := strings.TrimSpace(m.ta.Value())
		if text == "" {
			m.status("paste: empty")
			return nil
		}
		m.focus = focusMap
		m.ta.Blur()
		m.pasted++
		return decode(m.ctl, fmt.Sprintf("Pasted %d", m.pasted), geom.GeoJSON, []byte(text))
	}
	var cmd tea.Cmd
	m.ta, cmd = m.ta.Update(msg)
	return cmd
}

// commit finishes a decoded import on the UI loop.
func (m *Model) commit(l ingest.Loaded) {
	err := m.ctl.Commit(l)
	var choice *ingest.ColumnChoice
	if errors.As(err, &choice) {
		m.openColumns(choice)
	}
}
