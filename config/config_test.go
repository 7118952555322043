package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-pianoroll/transform"
)

func TestLoadMissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.View.Zoom = 250
	cfg.Transform.Key = "Eb"
	cfg.Autosave = 500 * time.Millisecond
	require.NoError(t, cfg.SaveTo(path))

	got, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("view:\n  zoom: 50\nautosave: 5s\n"), 0644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, 50.0, cfg.View.Zoom)
	assert.Equal(t, 100.0, cfg.View.PixelsPerSecond)
	assert.Equal(t, 5*time.Second, cfg.Autosave)
	assert.Equal(t, "major", cfg.Transform.ScaleType)
}

func TestBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("view: [unclosed"), 0644))
	_, err := LoadFrom(path)
	assert.Error(t, err)
}

func TestFlagsOverrideOnlyWhenSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	file := DefaultConfig()
	file.View.Zoom = 300
	file.Transform.Grid = 0.5
	require.NoError(t, file.SaveTo(path))

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags := BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"--config", path, "--key", "g", "--semitones=-3", "--debug"}))

	cfg, err := flags.Load()
	require.NoError(t, err)
	assert.Equal(t, 300.0, cfg.View.Zoom)
	assert.Equal(t, 0.5, cfg.Transform.Grid)
	assert.Equal(t, "g", cfg.Transform.Key)
	assert.Equal(t, -3, cfg.Transform.Semitones)
	assert.True(t, cfg.Debug)

	p := cfg.TransformParams()
	assert.Equal(t, 7, p.Root)
	assert.Equal(t, -3, p.Semitones)
	assert.Equal(t, 0.5, p.Grid)
}

func TestViewForClampsZoom(t *testing.T) {
	cfg := DefaultConfig()
	cfg.View.Zoom = 5000
	v := cfg.ViewFor(800, 400)
	assert.Equal(t, 500.0, v.Zoom)
	assert.Equal(t, 800.0, v.Width)
}

func TestRhythmFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rhythm:\n  note: 72\n  interval: 0\n"), 0644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	p := cfg.RhythmParams()
	assert.Equal(t, 72, p.Pitch)
	assert.Equal(t, 0.0, p.Interval)
	assert.Equal(t, transform.DefaultRhythm.NoteDuration, p.NoteDuration)
	assert.Equal(t, transform.DefaultRhythm.Total, p.Total)
}
