// Package main provides canopy-preview, a headless renderer for YAML
// scene files. It mounts the scene through the runtime, renders one
// frame with the raster backend, and writes a PNG. With --inspect it
// keeps running and serves the inspection endpoints instead of exiting.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/canopy-ui/canopy/cmd/canopy-preview/internal/config"
	"github.com/canopy-ui/canopy/cmd/canopy-preview/internal/scene"
	"github.com/canopy-ui/canopy/pkg/backend/raster"
	"github.com/canopy-ui/canopy/pkg/core"
	"github.com/canopy-ui/canopy/pkg/inspect"
)

// Version information set at build time.
var (
	Version   = "v0.1.0"
	BuildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "canopy-preview: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		scenePath   = flag.String("scene", "", "path to the YAML scene file (required)")
		outPath     = flag.String("out", "", "output PNG path (default from canopy.yaml, else preview.png)")
		width       = flag.Int("width", 0, "surface width in px (default from canopy.yaml, else 800)")
		height      = flag.Int("height", 0, "surface height in px (default from canopy.yaml, else 600)")
		inspectPort = flag.Int("inspect", -1, "serve inspection endpoints on this port and keep running (0 picks one)")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("canopy-preview %s (built %s)\n", Version, BuildTime)
		return nil
	}
	if *scenePath == "" {
		flag.Usage()
		return fmt.Errorf("--scene is required")
	}

	root, err := config.FindProjectRoot()
	if err != nil {
		// Scenes render fine outside a module; config just stays default.
		root = "."
	}
	cfg, err := resolveConfig(root)
	if err != nil {
		return err
	}
	if err := cfg.CheckRuntimeVersion(Version); err != nil {
		return err
	}

	if *width <= 0 {
		*width = cfg.Width
	}
	if *height <= 0 {
		*height = cfg.Height
	}
	if *outPath == "" {
		*outPath = cfg.Output
	}

	el, err := scene.Load(*scenePath)
	if err != nil {
		return err
	}

	backend, err := raster.New()
	if err != nil {
		return err
	}
	rt, err := core.Mount(el, backend.Container(), backend, float64(*width), float64(*height))
	if err != nil {
		return fmt.Errorf("mount scene: %w", err)
	}
	defer rt.Unmount()

	out, err := os.Create(*outPath)
	if err != nil {
		return err
	}
	if err := backend.EncodePNG(out, *width, *height); err != nil {
		out.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	stats := rt.StatsSnapshot()
	fmt.Printf("rendered %s (%dx%d): %d creates, %d appends, %d patches\n",
		*outPath, *width, *height, stats.Creates, stats.Appends, stats.Patches)

	if *inspectPort < 0 {
		return nil
	}

	srv := inspect.NewServer(rt)
	port, err := srv.Start(*inspectPort)
	if err != nil {
		return err
	}
	defer srv.Stop()
	fmt.Printf("inspect server listening on http://localhost:%d (tree, stats, stats/live)\n", port)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	<-sigs
	return nil
}

// resolveConfig loads canopy.yaml when a module root exists, and falls
// back to pure defaults otherwise.
func resolveConfig(root string) (*config.Resolved, error) {
	cfg, err := config.Resolve(root)
	if err == nil {
		return cfg, nil
	}
	if _, statErr := os.Stat(root + "/go.mod"); os.IsNotExist(statErr) {
		return &config.Resolved{Width: 800, Height: 600, Output: "preview.png"}, nil
	}
	return nil, err
}
