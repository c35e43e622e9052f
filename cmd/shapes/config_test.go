package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/image/colornames"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shapes.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
	if cfg.Width != 600 || cfg.Height != 400 || cfg.Samples != 4 {
		t.Errorf("defaults = %dx%d@%d, want 600x400@4", cfg.Width, cfg.Height, cfg.Samples)
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
backend: vulkan
width: 1280
height: 720
samples: 1
frames: 10
clear_color: CornflowerBlue
verbose: true
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	want := Config{
		Backend:    "vulkan",
		Width:      1280,
		Height:     720,
		Samples:    1,
		Frames:     10,
		ClearColor: "CornflowerBlue",
		Verbose:    true,
	}
	if cfg != want {
		t.Errorf("LoadConfig() = %+v, want %+v", cfg, want)
	}
	c, err := cfg.Clear()
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if c != colornames.Cornflowerblue {
		t.Errorf("Clear() = %v, want cornflowerblue", c)
	}
}

func TestLoadConfigKeepsDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "frames: 5\n"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	def := DefaultConfig()
	def.Frames = 5
	if cfg != def {
		t.Errorf("LoadConfig() = %+v, want %+v", cfg, def)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad yaml", "width: [1, 2\n", "config"},
		{"bad size", "width: -1\n", "invalid size"},
		{"bad samples", "samples: 3\n", "invalid sample count"},
		{"bad frames", "frames: -2\n", "negative frame count"},
		{"bad color", "clear_color: notacolor\n", "unknown clear color"},
		{"too large", strings.Repeat("#", maxConfigSize+1), "exceeds"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("LoadConfig() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestLoadConfigMissing(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); !os.IsNotExist(err) {
		t.Errorf("LoadConfig() error = %v, want not-exist", err)
	}
}
