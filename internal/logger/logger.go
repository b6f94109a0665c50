// Package logger configures the global zerolog logger from command-line
// options.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger holds the logging options. The terminal belongs to the UI, so
// output goes to a file.
type Logger struct {
	Level  string `long:"log-level"  env:"LOG_LEVEL"  description:"Log level" choice:"trace" choice:"debug" choice:"info" choice:"warn" choice:"error" choice:"disabled" default:"info"`
	File   string `long:"log-file"   env:"LOG_FILE"   description:"Log file path" default:"geolayers.log"`
	Format string `long:"log-format" env:"LOG_FORMAT" description:"Log format" choice:"json" choice:"console" default:"console"`
}

// Setup points the global logger at the configured file. When the file
// cannot be opened logging is disabled rather than written over the UI.
func (l *Logger) Setup() {
	level, err := zerolog.ParseLevel(l.Level)
	if err != nil || l.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	out := io.Discard
	if l.File != "" {
		f, err := os.OpenFile(l.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			out = f
		}
	}
	log.Logger = zerolog.New(l.writer(out)).With().Timestamp().Logger()
}

func (l *Logger) writer(out io.Writer) io.Writer {
	if l.Format == "json" {
		return out
	}
	return zerolog.ConsoleWriter{Out: out, NoColor: true, TimeFormat: time.DateTime}
}
