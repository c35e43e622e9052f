// Command shapes renders five rotating generated shapes (box, sphere,
// cylinder, torus and plane) through the gfx resource layer.
//
// Settings come from an optional YAML file and are overridden by flags:
//
//	shapes -config shapes.yaml -backend vulkan -frames 0
//
// A frame count of 0 renders until a quit is requested.
package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	_ "github.com/gogpu/wgpu/hal/allbackends"

	"github.com/gogpu/gfx"
	"github.com/gogpu/gfx/backend"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML config file")
		backendArg = flag.String("backend", "", "backend name (default: best available)")
		frames     = flag.Int("frames", 0, "frames to render, 0 until quit")
		width      = flag.Int("width", 0, "framebuffer width")
		height     = flag.Int("height", 0, "framebuffer height")
		samples    = flag.Int("samples", 0, "MSAA sample count, 1 or 4")
		verbose    = flag.Bool("v", false, "verbose logging")
		list       = flag.Bool("list", false, "list registered backends and exit")
	)
	flag.Parse()

	if *list {
		for _, name := range backend.Available() {
			log.Println(name)
		}
		return
	}

	cfg := DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = LoadConfig(*configPath); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "backend":
			cfg.Backend = *backendArg
		case "frames":
			cfg.Frames = *frames
		case "width":
			cfg.Width = *width
		case "height":
			cfg.Height = *height
		case "samples":
			cfg.Samples = *samples
		case "v":
			cfg.Verbose = *verbose
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid settings: %v", err)
	}

	if cfg.Verbose {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		slog.SetDefault(logger)
		gfx.SetLogger(logger)
	}

	if err := run(cfg); err != nil {
		log.Fatalf("shapes: %v", err)
	}
}

func run(cfg Config) error {
	g, err := gfx.Setup(
		gfx.WithBackend(cfg.Backend),
		gfx.WithSize(cfg.Width, cfg.Height),
		gfx.WithSampleCount(cfg.Samples),
	)
	if err != nil {
		return err
	}
	defer g.Discard()

	bg, err := cfg.Clear()
	if err != nil {
		return err
	}
	s, err := newScene(g, shaderDesc(), bg)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.release(); err != nil {
			slog.Warn("shapes: release failed", "error", err)
		}
	}()

	return loop(g, s, cfg.Frames)
}

// loop renders until frames are done or a quit is requested.
func loop(g *gfx.Gfx, s *scene, frames int) error {
	n := 0
	for !g.QuitRequested() && (frames == 0 || n < frames) {
		if err := g.ProcessSystemEvents(); err != nil {
			return err
		}
		if err := s.frame(); err != nil {
			return err
		}
		n++
	}
	slog.Info("shapes: done", "frames", n)
	return nil
}
