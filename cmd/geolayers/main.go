package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"

	"geolayers/internal/config"
	"geolayers/internal/ingest"
	"geolayers/internal/layers"
	"geolayers/internal/logger"
	"geolayers/internal/mapsurface"
	"geolayers/internal/tui"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string `short:"c" long:"config" env:"GEOLAYERS_CONFIG" description:"Path to configuration file" default:"geolayers.yaml"`
	URL        string `short:"u" long:"url"    description:"URL to import at start-up"`
	Format     string `short:"f" long:"format" description:"Format of the URL payload" default:"geojson"`
	Name       string `short:"n" long:"name"   description:"Layer name for the URL import"`

	Args struct {
		Files []string `positional-arg-name:"FILE" description:"Files to import at start-up"`
	} `positional-args:"yes"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	// Setup Logging
	opts.Logger.Setup()

	// Load Config
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	formats, err := cfg.EnabledFormats()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid formats")
	}

	canvas := mapsurface.NewCanvas()
	toasts := tui.NewToaster()
	ctl := ingest.New(canvas, layers.NewRegistry(canvas), toasts, ingest.Options{
		Formats:     formats,
		FitPadding:  cfg.FitPadding,
		MaxZoom:     cfg.MaxZoom,
		HTTPTimeout: cfg.HTTPTimeout,
	})

	m := tui.New(ctl, canvas, toasts, tui.Options{
		StartDir:      cfg.StartDir,
		ToastDuration: cfg.ToastDuration,
		Files:         opts.Args.Files,
		URL:           opts.URL,
		URLFormat:     opts.Format,
		URLName:       opts.Name,
	})

	log.Info().
		Int("formats", len(formats)).
		Int("files", len(opts.Args.Files)).
		Str("config", opts.ConfigFile).
		Msg("geolayers started")

	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion()).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		log.Fatal().Err(err).Msg("UI failed")
	}
}
