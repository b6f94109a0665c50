// Package config handles loading the viewer configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"geolayers/internal/geom"
)

// Config represents the configuration file.
type Config struct {
	Formats       []string      `yaml:"formats,omitempty"`
	ToastDuration time.Duration `yaml:"toast_duration,omitempty"`
	FitPadding    int           `yaml:"fit_padding,omitempty"`
	MaxZoom       float64       `yaml:"max_zoom,omitempty"`
	HTTPTimeout   time.Duration `yaml:"http_timeout,omitempty"`
	StartDir      string        `yaml:"start_dir,omitempty"` // file sidebar start directory
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.fill()
	return cfg
}

func (c *Config) fill() {
	if len(c.Formats) == 0 {
		for _, f := range geom.Formats() {
			c.Formats = append(c.Formats, string(f))
		}
	}
	if c.ToastDuration <= 0 {
		c.ToastDuration = 3 * time.Second
	}
	if c.FitPadding <= 0 {
		c.FitPadding = 2
	}
	if c.MaxZoom <= 0 {
		c.MaxZoom = 64
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = 30 * time.Second
	}
}

// Load reads the YAML configuration at path. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.fill()
	if _, err := cfg.EnabledFormats(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// EnabledFormats resolves the configured format tags.
func (c *Config) EnabledFormats() ([]geom.Format, error) {
	out := make([]geom.Format, 0, len(c.Formats))
	for _, tag := range c.Formats {
		f, err := geom.ParseFormat(tag, nil)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}
