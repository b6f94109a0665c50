package tui

import (
	"context"
	"os"
	"time"

	list "github.com/charmbracelet/bubbles/list"
	table "github.com/charmbracelet/bubbles/table"
	textarea "github.com/charmbracelet/bubbles/textarea"
	textinput "github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"geolayers/internal/geom"
	"geolayers/internal/ingest"
	"geolayers/internal/mapsurface"
)

const (
	sidebarWidth = 28
	panelWidth   = 32
	headerHeight = 1
	footerHeight = 2
)

type focus int

const (
	focusMap focus = iota
	focusFiles
	focusLayers
	focusAttrs
	focusURL
	focusColumns
	focusPaste
)

// Options configures the UI.
type Options struct {
	StartDir      string
	ToastDuration time.Duration

	// imported at start-up
	Files     []string
	URL       string
	URLFormat string
	URLName   string
}

type Model struct {
	width  int
	height int

	ctx     context.Context
	ctl     *ingest.Controller
	canvas  *mapsurface.Canvas
	toasts  *Toaster
	startup []tea.Cmd

	focus       focus
	statusLine  string
	showSidebar bool
	showLayers  bool
	showAttrs   bool
	helpVisible bool
	layersSeen  bool // the panel opened itself once

	// File explorer
	cwd   string
	files list.Model

	// Layer panel
	layerList list.Model
	selected  string // layer id shown in the attribute table

	// URL dialog
	urlInput  textinput.Model
	nameInput textinput.Model
	urlFormat int

	// CSV column dialog
	columns    list.Model
	pending    ingest.Loaded
	pickedLat  string
	choosingLn bool

	// paste dialog
	ta     textarea.Model
	pasted int

	// attributes table
	tbl table.Model

	// hover state
	hoverHasGeo bool
	hoverLon    float64
	hoverLat    float64
}

// New builds the UI around a controller and the canvas it drives.
func New(ctl *ingest.Controller, canvas *mapsurface.Canvas, toasts *Toaster, opts Options) Model {
	m := Model{
		ctx:         context.Background(),
		ctl:         ctl,
		canvas:      canvas,
		toasts:      toasts,
		helpVisible: true,
		cwd:         opts.StartDir,
	}
	if m.cwd == "" {
		m.cwd, _ = os.Getwd()
	}
	m.toasts.ttl = opts.ToastDuration

	m.files = newList("Files", false)
	m.files.SetFilteringEnabled(true)
	m.layerList = newList("Layers", true)
	m.columns = newList("Latitude column", false)

	m.urlInput = textinput.New()
	m.urlInput.Placeholder = "https://example.com/data.geojson"
	m.urlInput.Prompt = "URL  "
	m.nameInput = textinput.New()
	m.nameInput.Placeholder = "optional"
	m.nameInput.Prompt = "Name "

	m.ta = textarea.New()
	m.ta.Placeholder = "Paste GeoJSON here. Press Enter to add it as a layer; Esc to cancel."
	m.ta.CharLimit = 0
	m.ta.SetWidth(50)
	m.ta.SetHeight(6)

	// columns are inferred per layer
	m.tbl = table.New(table.WithFocused(true))
	m.tbl.SetHeight(12)
	m.refreshDir()

	for _, p := range opts.Files {
		m.startup = append(m.startup, readFile(m.ctl, p))
	}
	if opts.URL != "" {
		m.startup = append(m.startup, m.fetch(opts.URL, opts.URLFormat, opts.URLName))
	}
	return m
}

func newList(title string, desc bool) list.Model {
	d := list.NewDefaultDelegate()
	d.ShowDescription = desc
	l := list.New(nil, d, 0, 0)
	l.Title = title
	l.SetShowTitle(title != "")
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	return l
}

func (m *Model) status(s string) { m.statusLine = s }

func (m Model) Init() tea.Cmd { return tea.Batch(m.startup...) }

// formats lists the enabled formats for the URL dialog.
func (m Model) formats() []geom.Format { return m.ctl.Formats() }
