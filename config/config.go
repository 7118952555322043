package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"go-pianoroll/geometry"
	"go-pianoroll/transform"
)

// ViewConfig is the starting view of every editor
type ViewConfig struct {
	PixelsPerSecond float64 `yaml:"pixelsPerSecond"`
	Zoom            float64 `yaml:"zoom"`
	Padding         float64 `yaml:"padding"`
}

// TransformConfig holds the defaults the transform keys use
type TransformConfig struct {
	Grid      float64 `yaml:"grid"`
	Factor    float64 `yaml:"factor"`
	Shift     float64 `yaml:"shift"`
	Semitones int     `yaml:"semitones"`
	Duration  float64 `yaml:"duration"`
	Key       string  `yaml:"key"`
	ScaleType string  `yaml:"scaleType"`
}

// RhythmConfig is the simple rhythm gesture. Interval is the rest after each
// note in percent of its duration.
type RhythmConfig struct {
	Note         int     `yaml:"note"`
	NoteDuration float64 `yaml:"noteDuration"`
	Interval     float64 `yaml:"interval"`
	Duration     float64 `yaml:"duration"`
}

// BackendConfig locates the generation service, and configures it when served
type BackendConfig struct {
	URL     string   `yaml:"url"`
	Listen  string   `yaml:"listen"`
	Origins []string `yaml:"origins,omitempty"`
}

// InputConfig picks the MIDI port used for recording
type InputConfig struct {
	Port string `yaml:"port,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	View      ViewConfig      `yaml:"view"`
	Transform TransformConfig `yaml:"transform"`
	Rhythm    RhythmConfig    `yaml:"rhythm"`
	Backend   BackendConfig   `yaml:"backend"`
	Input     InputConfig     `yaml:"input,omitempty"`
	Autosave  time.Duration   `yaml:"autosave"`
	Debug     bool            `yaml:"debug,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	p := transform.DefaultParams()
	r := transform.DefaultRhythm
	return &Config{
		View: ViewConfig{
			PixelsPerSecond: 100,
			Zoom:            100,
			Padding:         20,
		},
		Transform: TransformConfig{
			Grid:      p.Grid,
			Factor:    p.Factor,
			Shift:     p.Shift,
			Semitones: p.Semitones,
			Duration:  p.Duration,
			Key:       "C",
			ScaleType: p.ScaleType,
		},
		Rhythm: RhythmConfig{
			Note:         r.Pitch,
			NoteDuration: r.NoteDuration,
			Interval:     r.Interval,
			Duration:     r.Total,
		},
		Backend: BackendConfig{
			URL:     "http://localhost:8000",
			Listen:  ":8000",
			Origins: []string{"http://localhost:3000"},
		},
		Autosave: 2 * time.Second,
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-pianoroll"), nil
}

// ConfigPath returns the full path to config.yaml
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path. Fields missing from the file keep their
// defaults.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating its directory
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ViewFor returns the geometry view for a canvas of the given size
func (c *Config) ViewFor(width, height float64) geometry.View {
	return geometry.View{
		PixelsPerSecond: c.View.PixelsPerSecond,
		Zoom:            geometry.ClampZoom(c.View.Zoom),
		Width:           width,
		Height:          height,
		Padding:         c.View.Padding,
	}
}

// TransformParams returns the transform parameters. An unknown key falls
// back to C.
func (c *Config) TransformParams() transform.Params {
	p := transform.DefaultParams()
	p.Grid = c.Transform.Grid
	p.Factor = c.Transform.Factor
	p.Shift = c.Transform.Shift
	p.Semitones = c.Transform.Semitones
	p.Duration = c.Transform.Duration
	p.ScaleType = c.Transform.ScaleType
	if root, err := transform.KeyRoot(c.Transform.Key); err == nil {
		p.Root = root
	}
	return p
}

// RhythmParams returns the rhythm gesture parameters
func (c *Config) RhythmParams() transform.RhythmParams {
	return transform.RhythmParams{
		Pitch:        c.Rhythm.Note,
		NoteDuration: c.Rhythm.NoteDuration,
		Interval:     c.Rhythm.Interval,
		Total:        c.Rhythm.Duration,
	}
}

// DelegateParams returns the musical context sent to the backend
func (c *Config) DelegateParams() transform.DelegateParams {
	return transform.DelegateParams{Key: c.Transform.Key, ScaleType: c.Transform.ScaleType}
}

// Flags holds command-line overrides. Only flags the user actually set are
// applied, so the file keeps precedence over flag defaults.
type Flags struct {
	fs     *pflag.FlagSet
	values Config
	config string
}

// BindFlags registers the override flags on fs
func BindFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{fs: fs, values: *DefaultConfig()}
	v := &f.values
	fs.StringVar(&f.config, "config", "", "config file (default ~/.config/go-pianoroll/config.yaml)")
	fs.Float64Var(&v.View.Zoom, "zoom", v.View.Zoom, "initial zoom percent")
	fs.Float64Var(&v.View.PixelsPerSecond, "pps", v.View.PixelsPerSecond, "horizontal scale at 100% zoom")
	fs.Float64Var(&v.Transform.Grid, "grid", v.Transform.Grid, "quantize grid in seconds")
	fs.IntVar(&v.Transform.Semitones, "semitones", v.Transform.Semitones, "transpose amount")
	fs.StringVar(&v.Transform.Key, "key", v.Transform.Key, "key root for scale transforms")
	fs.StringVar(&v.Transform.ScaleType, "scale", v.Transform.ScaleType, "scale for scale transforms")
	fs.StringVar(&v.Backend.URL, "backend", v.Backend.URL, "generation backend URL")
	fs.StringVar(&v.Backend.Listen, "listen", v.Backend.Listen, "address the backend listens on")
	fs.StringSliceVar(&v.Backend.Origins, "origins", v.Backend.Origins, "CORS origins the backend allows")
	fs.StringVar(&v.Input.Port, "input", v.Input.Port, "MIDI input port to record from")
	fs.DurationVar(&v.Autosave, "autosave", v.Autosave, "delay before saving edits, 0 disables")
	fs.BoolVar(&v.Debug, "debug", v.Debug, "write a debug log")
	return f
}

// Load reads the config file named by --config, or the default one, and
// applies the flags that were set on top
func (f *Flags) Load() (*Config, error) {
	var cfg *Config
	var err error
	if f.config != "" {
		cfg, err = LoadFrom(f.config)
	} else {
		cfg, err = Load()
	}
	if err != nil {
		return nil, err
	}
	f.Apply(cfg)
	return cfg, nil
}

// Apply copies every flag that was set onto c. Changed is checked per flag
// since cobra parses persistent flags through a merged set.
func (f *Flags) Apply(c *Config) {
	v := &f.values
	f.fs.VisitAll(func(fl *pflag.Flag) {
		if !fl.Changed {
			return
		}
		switch fl.Name {
		case "zoom":
			c.View.Zoom = v.View.Zoom
		case "pps":
			c.View.PixelsPerSecond = v.View.PixelsPerSecond
		case "grid":
			c.Transform.Grid = v.Transform.Grid
		case "semitones":
			c.Transform.Semitones = v.Transform.Semitones
		case "key":
			c.Transform.Key = v.Transform.Key
		case "scale":
			c.Transform.ScaleType = v.Transform.ScaleType
		case "backend":
			c.Backend.URL = v.Backend.URL
		case "listen":
			c.Backend.Listen = v.Backend.Listen
		case "origins":
			c.Backend.Origins = v.Backend.Origins
		case "input":
			c.Input.Port = v.Input.Port
		case "autosave":
			c.Autosave = v.Autosave
		case "debug":
			c.Debug = v.Debug
		}
	})
}
