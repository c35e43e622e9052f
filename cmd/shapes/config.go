package main

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"strings"

	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"
)

// Config holds the sample settings. Zero fields take their defaults.
type Config struct {
	Backend    string `yaml:"backend"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Samples    int    `yaml:"samples"`
	Frames     int    `yaml:"frames"`
	ClearColor string `yaml:"clear_color"`
	Verbose    bool   `yaml:"verbose"`
}

// DefaultConfig returns the settings used when no config file is given. An
// empty Backend selects the best registered backend.
func DefaultConfig() Config {
	return Config{
		Width:      600,
		Height:     400,
		Samples:    4,
		Frames:     300,
		ClearColor: "darkslategray",
	}
}

// maxConfigSize bounds the config file read.
const maxConfigSize = 64 * 1024

// LoadConfig reads a YAML config from path on top of the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	info, err := os.Stat(path)
	if err != nil {
		return cfg, err
	}
	if info.Size() > maxConfigSize {
		return cfg, fmt.Errorf("config %s: %d bytes exceeds %d", path, info.Size(), maxConfigSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("invalid size %dx%d", c.Width, c.Height)
	case c.Samples != 1 && c.Samples != 4:
		return fmt.Errorf("invalid sample count %d, want 1 or 4", c.Samples)
	case c.Frames < 0:
		return errors.New("negative frame count")
	}
	if _, err := c.Clear(); err != nil {
		return err
	}
	return nil
}

// Clear resolves ClearColor as an SVG color name.
func (c Config) Clear() (color.Color, error) {
	if c.ClearColor == "" {
		return colornames.Black, nil
	}
	col, ok := colornames.Map[strings.ToLower(c.ClearColor)]
	if !ok {
		return nil, fmt.Errorf("unknown clear color %q", c.ClearColor)
	}
	return col, nil
}
