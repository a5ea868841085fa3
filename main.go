package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/df07/go-tile-raytracer/pkg/config"
	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/display"
	"github.com/df07/go-tile-raytracer/pkg/export"
	"github.com/df07/go-tile-raytracer/pkg/integrator"
	"github.com/df07/go-tile-raytracer/pkg/renderer"
	"github.com/df07/go-tile-raytracer/pkg/scene"
)

// options holds everything parsed from the command line
type options struct {
	scene   string
	envFile string
	mesh    string
	help    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newFlagSet declares every command line flag. Render flags share the
// defaults of config.Default but only override when set explicitly.
func newFlagSet(out io.Writer) (*flag.FlagSet, *options) {
	opts := &options{}
	defaults := config.Default()

	fs := flag.NewFlagSet("raytracer", flag.ContinueOnError)
	fs.SetOutput(out)

	fs.StringVar(&opts.scene, "scene", "cornell", "Scene name: "+strings.Join(scene.Names(), ", "))
	fs.StringVar(&opts.envFile, "env", ".env", "Optional .env file with RT_* settings")
	fs.StringVar(&opts.mesh, "mesh", "", "OBJ file to load in the mesh scene")
	fs.BoolVar(&opts.help, "help", false, "Show help information")

	fs.Int("width", defaults.Width, "Image width in pixels")
	fs.Int("height", defaults.Height, "Image height in pixels")
	fs.Int("passes", defaults.MaxSamples, "Number of progressive passes")
	fs.Int("aa", defaults.AASamples, "Anti-aliasing samples per pixel per pass")
	fs.Int("tile", defaults.TileSize, "Tile size in pixels")
	fs.Int("workers", defaults.Workers, "Worker goroutines (0 = number of CPUs)")
	fs.Int64("seed", defaults.Seed, "Base random seed")
	fs.Int("export-every", defaults.ExportEvery, "Export every N passes (0 = final only)")
	fs.Bool("soft-shadows", defaults.SoftShadows, "Enable soft shadows")
	fs.Bool("gi", defaults.UseGI, "Enable global illumination")
	fs.Bool("ao", defaults.UseAO, "Enable ambient occlusion")
	fs.Bool("label", defaults.DebugLabel, "Draw the parameter label on exported images")
	fs.String("output", defaults.OutputDir, "Output directory")

	return fs, opts
}

// applyFlags copies explicitly set render flags over cfg
func applyFlags(cfg config.Render, fs *flag.FlagSet) config.Render {
	fs.Visit(func(f *flag.Flag) {
		getter, ok := f.Value.(flag.Getter)
		if !ok {
			return
		}
		switch v := getter.Get().(type) {
		case int:
			switch f.Name {
			case "width":
				cfg.Width = v
			case "height":
				cfg.Height = v
			case "passes":
				cfg.MaxSamples = v
			case "aa":
				cfg.AASamples = v
			case "tile":
				cfg.TileSize = v
			case "workers":
				cfg.Workers = v
			case "export-every":
				cfg.ExportEvery = v
			}
		case int64:
			if f.Name == "seed" {
				cfg.Seed = v
			}
		case bool:
			switch f.Name {
			case "soft-shadows":
				cfg.SoftShadows = v
			case "gi":
				cfg.UseGI = v
			case "ao":
				cfg.UseAO = v
			case "label":
				cfg.DebugLabel = v
			}
		case string:
			if f.Name == "output" {
				cfg.OutputDir = v
			}
		}
	})
	return cfg
}

// resolveConfig layers defaults, scene recommendations, environment and flags
func resolveConfig(def scene.Definition, fs *flag.FlagSet) (config.Render, error) {
	cfg := def.Recommended(config.Default())

	cfg, err := config.FromEnv(cfg)
	if err != nil {
		return config.Render{}, err
	}

	cfg = applyFlags(cfg, fs)
	if err := cfg.Validate(); err != nil {
		return config.Render{}, err
	}
	return cfg, nil
}

// createScene builds the named scene for cfg
func createScene(def scene.Definition, cfg config.Render, meshPath string) (*scene.Scene, error) {
	if meshPath != "" {
		if def.Info.ID != "mesh" {
			return nil, fmt.Errorf("-mesh is only supported by the mesh scene, not %q", def.Info.ID)
		}
		return scene.NewMeshScene(cfg, meshPath)
	}
	return def.Build(cfg)
}

// newExporters returns the file exporter plus S3 when a bucket is configured
func newExporters(cfg config.Render, sceneName string, logger core.Logger) ([]export.Exporter, error) {
	exporters := []export.Exporter{
		export.NewFileExporter(filepath.Join(cfg.OutputDir, sceneName)),
	}
	if cfg.S3Bucket != "" {
		s3Exporter, err := export.NewS3Exporter(cfg, logger)
		if err != nil {
			return nil, err
		}
		exporters = append(exporters, s3Exporter)
	}
	return exporters, nil
}

func printHelp(out io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(out, "Tile Raytracer")
	fmt.Fprintln(out, "Usage: raytracer [options]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Options:")
	fs.PrintDefaults()
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Available scenes:")
	for _, group := range scene.ListScenes().Groups {
		for _, info := range group.Scenes {
			fmt.Fprintf(out, "  %-8s - %s\n", info.ID, info.Description)
		}
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Settings are read from RT_* environment variables (and the -env file) before flags.")
	fmt.Fprintln(out, "Output will be saved to <output>/<scene>/render.png")
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs, opts := newFlagSet(out)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if opts.help {
		printHelp(out, fs)
		return nil
	}

	if err := config.LoadDotEnv(opts.envFile); err != nil {
		return err
	}

	def, err := scene.Lookup(opts.scene)
	if err != nil {
		return err
	}

	cfg, err := resolveConfig(def, fs)
	if err != nil {
		return err
	}

	s, err := createScene(def, cfg, opts.mesh)
	if err != nil {
		return err
	}

	logger := core.Logger(&writerLogger{out: out})
	fmt.Fprintf(out, "Rendering %s scene (%dx%d, %d passes, %d primitives, %d lights)...\n",
		def.Info.ID, cfg.Width, cfg.Height, cfg.MaxSamples, s.PrimitiveCount(), len(s.Lights))

	integ := integrator.NewRayTracingIntegrator(integrator.ConfigFrom(cfg))
	raytracer, err := renderer.NewProgressiveRaytracer(s, cfg.Width, cfg.Height, renderer.ProgressiveConfigFrom(cfg), integ, logger)
	if err != nil {
		return err
	}

	exporters, err := newExporters(cfg, def.Info.ID, logger)
	if err != nil {
		return err
	}
	// Exports outlive an interrupt so the pass that was in flight still lands
	saveCtx := context.WithoutCancel(ctx)
	periodic := export.NewPeriodicExporter(saveCtx, cfg.ExportEvery, "render", exporters...)
	raytracer.SetDisplay(display.Multi{
		display.NewLogDisplay(logger),
		periodic,
	})

	outputPath := filepath.Join(cfg.OutputDir, def.Info.ID, "render.png")
	startTime := time.Now()
	img, err := raytracer.Render(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) || img == nil {
			return fmt.Errorf("render failed: %w", err)
		}
		if saveErr := periodic.SaveFinal(saveCtx, img); saveErr != nil {
			return fmt.Errorf("render interrupted, saving last pass failed: %w", errors.Join(err, saveErr))
		}
		fmt.Fprintf(out, "Render interrupted after %v; last completed pass saved as %s\n", time.Since(startTime), outputPath)
		return fmt.Errorf("render interrupted: %w", err)
	}

	fmt.Fprintf(out, "Render completed in %v\n", time.Since(startTime))
	fmt.Fprintf(out, "Render saved as %s\n", outputPath)
	return nil
}

// writerLogger implements core.Logger on an io.Writer
type writerLogger struct {
	out io.Writer
}

func (l *writerLogger) Printf(format string, args ...interface{}) {
	fmt.Fprintf(l.out, format, args...)
}
