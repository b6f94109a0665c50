package tui

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	list "github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"geolayers/internal/geom"
	"geolayers/internal/ingest"
)

type fileItem struct {
	title, desc string
	path        string
}

func (f fileItem) Title() string       { return f.title }
func (f fileItem) Description() string { return f.desc }
func (f fileItem) FilterValue() string { return f.title }

// refreshDir lists the files of cwd whose extension is an enabled format.
func (m *Model) refreshDir() {
	entries, err := os.ReadDir(m.cwd)
	if err != nil {
		log.Warn().Err(err).Str("dir", m.cwd).Msg("read dir")
		m.toasts.Notify(ingest.Message{Text: "read dir error: " + err.Error(), Severity: ingest.Error})
		return
	}
	var items []fileItem
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		f, err := geom.FormatForFile(strings.ToLower(e.Name()), m.ctl.Formats())
		if err != nil {
			continue
		}
		items = append(items, fileItem{title: e.Name(), desc: f.Label(), path: filepath.Join(m.cwd, e.Name())})
	}
	slices.SortFunc(items, func(a, b fileItem) int { return strings.Compare(a.title, b.title) })
	li := make([]list.Item, len(items))
	for i, it := range items {
		li[i] = it
	}
	m.files.SetItems(li)
}

// loadedMsg carries a decoded input back to the UI loop for committing.
type loadedMsg struct{ ingest.Loaded }

// readFile reads and decodes a file off the UI loop.
func readFile(ctl *ingest.Controller, path string) tea.Cmd {
	return func() tea.Msg { return loadedMsg{ctl.ReadFile(path)} }
}

// fetch shows the loading message and downloads url off the UI loop.
func (m *Model) fetch(url, format, name string) tea.Cmd {
	if format == "" && len(m.formats()) > 0 {
		format = string(m.formats()[0])
	}
	m.ctl.Begin("Loading " + url + "...")
	ctl, ctx := m.ctl, m.ctx
	return func() tea.Msg { return loadedMsg{ctl.Fetch(ctx, url, format, name)} }
}

// decode decodes pasted text off the UI loop.
func decode(ctl *ingest.Controller, name string, f geom.Format, data []byte) tea.Cmd {
	return func() tea.Msg { return loadedMsg{ctl.Decode(name, f, data)} }
}
