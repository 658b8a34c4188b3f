package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/extrudo/engine/core"
)

type LogConfig struct {
	Level string `toml:"level"`
	// File enables a size-rotated log file when set.
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

type StorageConfig struct {
	// Dir selects a file-backed store; empty keeps state in memory only.
	Dir string `toml:"dir"`
	Key string `toml:"key"`
}

type ViewportConfig struct {
	Width       float64 `toml:"width"`
	Height      float64 `toml:"height"`
	FitFraction float64 `toml:"fit_fraction"`
}

type InteractionConfig struct {
	RotateSensitivity float64 `toml:"rotate_sensitivity"`
}

type ZoomConfig struct {
	// Duration of an animated zoom, in seconds.
	Duration float64 `toml:"duration"`
	// Step is the factor applied by one zoom-in; zoom-out uses 1/Step.
	Step float64 `toml:"step"`
}

type AssetsConfig struct {
	Outline string `toml:"outline"`
	Watch   bool   `toml:"watch"`
	Workers int    `toml:"workers"`
}

// Config holds everything the engine reads at construction time.
type Config struct {
	Name        string            `toml:"name"`
	Log         LogConfig         `toml:"log"`
	Storage     StorageConfig     `toml:"storage"`
	Viewport    ViewportConfig    `toml:"viewport"`
	Interaction InteractionConfig `toml:"interaction"`
	Zoom        ZoomConfig        `toml:"zoom"`
	Assets      AssetsConfig      `toml:"assets"`
}

func Default() *Config {
	return &Config{
		Name: "Extrudo",
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Storage: StorageConfig{
			Key: "viewState",
		},
		Viewport: ViewportConfig{
			Width:       1280,
			Height:      720,
			FitFraction: 0.8,
		},
		Interaction: InteractionConfig{
			RotateSensitivity: 0.3,
		},
		Zoom: ZoomConfig{
			Duration: 0.25,
			Step:     1.1,
		},
		Assets: AssetsConfig{
			Workers: 2,
		},
	}
}

// Load reads a TOML file on top of Default. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		errs = append(errs, fmt.Errorf("viewport must be positive, got %vx%v", c.Viewport.Width, c.Viewport.Height))
	}
	if c.Viewport.FitFraction <= 0 || c.Viewport.FitFraction > 1 {
		errs = append(errs, fmt.Errorf("viewport.fit_fraction must be in (0, 1], got %v", c.Viewport.FitFraction))
	}
	if c.Interaction.RotateSensitivity <= 0 {
		errs = append(errs, fmt.Errorf("interaction.rotate_sensitivity must be positive, got %v", c.Interaction.RotateSensitivity))
	}
	if c.Zoom.Duration < 0 {
		errs = append(errs, fmt.Errorf("zoom.duration must not be negative, got %v", c.Zoom.Duration))
	}
	if c.Zoom.Step <= 1 {
		errs = append(errs, fmt.Errorf("zoom.step must be greater than 1, got %v", c.Zoom.Step))
	}
	if c.Assets.Workers < 1 {
		errs = append(errs, fmt.Errorf("assets.workers must be at least 1, got %d", c.Assets.Workers))
	}
	return errors.Join(errs...)
}

// SetupLogging applies the [log] section. The returned closer releases the
// log file and is a no-op without one.
func (c *Config) SetupLogging() (io.Closer, error) {
	if err := core.SetLogLevel(c.Log.Level); err != nil {
		return nil, fmt.Errorf("log.level %q: %w", c.Log.Level, err)
	}
	if c.Log.File == "" {
		return nopCloser{}, nil
	}
	return core.SetLogFile(core.LogFileOptions{
		Filename:   c.Log.File,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
		Tee:        true,
	}), nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
