// Package config loads the bloom command's settings from a JSON file and
// command-line overrides.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/gogpu/bloom"
)

// Config holds the effect parameters and run settings of the bloom command.
// Pointer fields distinguish "absent" from an explicit zero in the file.
type Config struct {
	// Effect parameters
	Strength    *float32 `json:"strength,omitempty"`
	Threshold   *float32 `json:"threshold,omitempty"`
	SmoothWidth *float32 `json:"smooth_width,omitempty"`
	Disk        *float32 `json:"disk,omitempty"`
	Samples     *int     `json:"samples,omitempty"`
	Lods        *int     `json:"lods,omitempty"`
	LodSteps    *float32 `json:"lod_steps,omitempty"`
	Compression *float32 `json:"compression,omitempty"`
	Saturation  *float32 `json:"saturation,omitempty"`
	Blend       string   `json:"blend,omitempty"`

	// Run settings
	Input     string  `json:"input"`
	Output    string  `json:"output"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	PixelSize int     `json:"pixel_size"`
	Frames    int     `json:"frames"`
	FPS       float64 `json:"fps"`
	Workers   int     `json:"workers"`
	Backend   string  `json:"backend"`
	HUD       bool    `json:"hud"`
	Linear    bool    `json:"linear"`
}

// Backend names accepted by Config.Backend.
const (
	BackendAuto = "auto"
	BackendCPU  = "cpu"
	BackendGPU  = "gpu"
)

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
// nil pointers and empty strings leave the file value in place.
type Flags struct {
	Input     string
	Output    string
	Width     int
	Height    int
	PixelSize int
	Frames    int
	FPS       float64
	Workers   int
	Backend   string
	HUD       *bool
	Linear    *bool

	Strength    *float32
	Threshold   *float32
	SmoothWidth *float32
	Disk        *float32
	Samples     *int
	Lods        *int
	LodSteps    *float32
	Compression *float32
	Saturation  *float32
	Blend       string
}

// Resolve applies flags over the file values and fills in defaults.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.Input != "" {
		c.Input = flags.Input
	}
	if flags.Output != "" {
		c.Output = flags.Output
	}
	if flags.Width > 0 {
		c.Width = flags.Width
	}
	if flags.Height > 0 {
		c.Height = flags.Height
	}
	if flags.PixelSize > 0 {
		c.PixelSize = flags.PixelSize
	}
	if flags.Frames > 0 {
		c.Frames = flags.Frames
	}
	if flags.FPS > 0 {
		c.FPS = flags.FPS
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Backend != "" {
		c.Backend = flags.Backend
	}
	if flags.HUD != nil {
		c.HUD = *flags.HUD
	}
	if flags.Linear != nil {
		c.Linear = *flags.Linear
	}
	if flags.Blend != "" {
		c.Blend = flags.Blend
	}
	override(&c.Strength, flags.Strength)
	override(&c.Threshold, flags.Threshold)
	override(&c.SmoothWidth, flags.SmoothWidth)
	override(&c.Disk, flags.Disk)
	override(&c.Samples, flags.Samples)
	override(&c.Lods, flags.Lods)
	override(&c.LodSteps, flags.LodSteps)
	override(&c.Compression, flags.Compression)
	override(&c.Saturation, flags.Saturation)

	// Derive the output path from the input if still empty
	if c.Output == "" && c.Input != "" {
		ext := filepath.Ext(c.Input)
		c.Output = strings.TrimSuffix(c.Input, ext) + "-bloom" + ext
	}

	// Defaults for run settings
	if c.PixelSize <= 0 {
		c.PixelSize = 1
	}
	if c.Frames <= 0 {
		c.Frames = 1
	}
	if c.FPS <= 0 {
		c.FPS = 60
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Backend == "" {
		c.Backend = BackendAuto
	}
}

func override[T any](dst **T, src *T) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

// Params returns the effect parameters: bloom defaults overlaid with every
// field present in the config. The result is validated.
func (c *Config) Params() (bloom.Params, error) {
	p := bloom.DefaultParams()
	apply(&p.Strength, c.Strength)
	apply(&p.Threshold, c.Threshold)
	apply(&p.SmoothWidth, c.SmoothWidth)
	apply(&p.Disk, c.Disk)
	apply(&p.Samples, c.Samples)
	apply(&p.Lods, c.Lods)
	apply(&p.LodSteps, c.LodSteps)
	apply(&p.Compression, c.Compression)
	apply(&p.Saturation, c.Saturation)

	if c.Blend != "" {
		m, err := bloom.ParseBlendMode(c.Blend)
		if err != nil {
			return bloom.Params{}, fmt.Errorf("config: %w", err)
		}
		p.Blend = m
	}
	if err := p.Validate(); err != nil {
		return bloom.Params{}, fmt.Errorf("config: %w", err)
	}
	return p, nil
}

func apply[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// Validate checks the run settings that Resolve cannot default.
func (c *Config) Validate() error {
	if c.Input == "" {
		return fmt.Errorf("config: no input image")
	}
	if c.Width < 0 || c.Height < 0 {
		return fmt.Errorf("config: negative output size %dx%d", c.Width, c.Height)
	}
	switch c.Backend {
	case BackendAuto, BackendCPU, BackendGPU:
	default:
		return fmt.Errorf("config: unknown backend %q (want auto, cpu or gpu)", c.Backend)
	}
	return nil
}
