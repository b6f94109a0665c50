package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geolayers/internal/geom"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 3*time.Second, cfg.ToastDuration)
	assert.Equal(t, 2, cfg.FitPadding)
	assert.Equal(t, 64.0, cfg.MaxZoom)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)

	formats, err := cfg.EnabledFormats()
	require.NoError(t, err)
	assert.Equal(t, geom.Formats(), formats)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "geolayers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
formats: [GeoJSON, csv]
toast_duration: 5s
http_timeout: 1m
start_dir: /data
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.ToastDuration)
	assert.Equal(t, time.Minute, cfg.HTTPTimeout)
	assert.Equal(t, "/data", cfg.StartDir)
	assert.Equal(t, 2, cfg.FitPadding, "unset keys keep defaults")

	formats, err := cfg.EnabledFormats()
	require.NoError(t, err)
	assert.Equal(t, []geom.Format{geom.GeoJSON, geom.CSV}, formats)
}

func TestLoadRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("formats: [\n"), 0o600))
	_, err := Load(bad)
	assert.Error(t, err)

	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("formats: [topojson]\n"), 0o600))
	_, err = Load(unknown)
	var unsupported *geom.UnsupportedFormatError
	assert.ErrorAs(t, err, &unsupported)
}
