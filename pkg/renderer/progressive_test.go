package renderer

import (
	"errors"
	"image"
	"testing"

	"github.com/df07/go-tile-raytracer/pkg/config"
	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/integrator"
	"github.com/df07/go-tile-raytracer/pkg/scene"
)

func TestProgressiveConfigFrom(t *testing.T) {
	cfg := config.Default()
	cfg.TileSize = 16
	cfg.MaxSamples = 9
	cfg.AASamples = 3
	cfg.AAFilterWidth = 0.8
	cfg.Workers = 2
	cfg.Seed = 7
	cfg.DebugLabel = true

	got := ProgressiveConfigFrom(cfg)
	want := ProgressiveConfig{
		TileSize:      16,
		MaxPasses:     9,
		AASamples:     3,
		AAFilterWidth: 0.8,
		NumWorkers:    2,
		Seed:          7,
		DebugLabel:    true,
	}
	if got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}

	if DefaultProgressiveConfig().TileSize != 32 {
		t.Errorf("Expected default tile size 32, got %d", DefaultProgressiveConfig().TileSize)
	}
}

func TestNewTileGrid(t *testing.T) {
	tests := []struct {
		name                    string
		width, height, tileSize int
		expectedTiles           int
	}{
		{"uneven edges", 400, 225, 32, 13 * 8},
		{"exact fit", 64, 64, 32, 4},
		{"tile larger than image", 10, 5, 32, 1},
		{"single pixel tiles", 3, 2, 1, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tiles := NewTileGrid(tt.width, tt.height, tt.tileSize, 42)
			if len(tiles) != tt.expectedTiles {
				t.Fatalf("Expected %d tiles, got %d", tt.expectedTiles, len(tiles))
			}

			// Every pixel covered exactly once
			covered := make([][]int, tt.height)
			for y := range covered {
				covered[y] = make([]int, tt.width)
			}
			for i, tile := range tiles {
				if tile.ID != i {
					t.Errorf("Tile %d has ID %d", i, tile.ID)
				}
				for y := tile.Bounds.Min.Y; y < tile.Bounds.Max.Y; y++ {
					for x := tile.Bounds.Min.X; x < tile.Bounds.Max.X; x++ {
						if x >= tt.width || y >= tt.height {
							t.Fatalf("Tile %d extends beyond image bounds at (%d,%d)", tile.ID, x, y)
						}
						covered[y][x]++
					}
				}
			}
			for y := 0; y < tt.height; y++ {
				for x := 0; x < tt.width; x++ {
					if covered[y][x] != 1 {
						t.Fatalf("Pixel (%d,%d) covered %d times", x, y, covered[y][x])
					}
				}
			}
		})
	}
}

func TestTileDeterministicSampler(t *testing.T) {
	bounds := image.Rect(0, 0, 32, 32)
	tile1 := NewTile(5, bounds, 42)
	tile2 := NewTile(5, bounds, 42)

	for i := 0; i < 10; i++ {
		if a, b := tile1.Sampler.Get1D(), tile2.Sampler.Get1D(); a != b {
			t.Fatalf("Tiles with same ID and seed diverged at draw %d: %f != %f", i, a, b)
		}
	}

	// Seed+ID is the stream identity
	shifted := NewTile(4, bounds, 43)
	same := NewTile(5, bounds, 42)
	if shifted.Sampler.Get1D() != same.Sampler.Get1D() {
		t.Error("Tile 4 with seed 43 should share tile 5 seed 42's stream")
	}

	other := NewTile(6, bounds, 42)
	if NewTile(5, bounds, 42).Sampler.Get1D() == other.Sampler.Get1D() {
		t.Error("Tiles with different IDs should produce different random values")
	}
}

func TestNewProgressiveRaytracer_Errors(t *testing.T) {
	integ := integrator.NewRayTracingIntegrator(integrator.Config{})

	s, err := scene.NewSphereScene(config.Default())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := NewProgressiveRaytracer(s, 0, 10, DefaultProgressiveConfig(), integ, nil); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("Expected ErrInvalidSize, got %v", err)
	}

	empty := scene.New()
	if _, err := NewProgressiveRaytracer(empty, 10, 10, DefaultProgressiveConfig(), integ, nil); !errors.Is(err, scene.ErrNoCamera) {
		t.Errorf("Expected ErrNoCamera, got %v", err)
	}
}

func TestNewProgressiveRaytracer_SealsScene(t *testing.T) {
	s, err := scene.NewSphereScene(config.Default())
	if err != nil {
		t.Fatal(err)
	}

	cfg := DefaultProgressiveConfig()
	cfg.Serial = true
	pr, err := NewProgressiveRaytracer(s, 8, 8, cfg, integrator.NewRayTracingIntegrator(integrator.Config{}), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer pr.Close()

	if !s.Sealed() {
		t.Error("Expected scene to be sealed")
	}
	if err := s.AddLight(nil); !errors.Is(err, scene.ErrSealed) {
		t.Errorf("Expected ErrSealed after construction, got %v", err)
	}
	if _, _, err := pr.RenderPass(0, nil); err == nil {
		t.Error("Expected error for pass 0")
	}
}

// constantIntegrator returns the same color for every ray
type constantIntegrator struct {
	color core.Vec3
}

func (c constantIntegrator) RayColor(core.Ray, *scene.Scene, core.Sampler) core.Vec3 {
	return c.color
}

// panickingIntegrator fails on every ray
type panickingIntegrator struct{}

func (panickingIntegrator) RayColor(core.Ray, *scene.Scene, core.Sampler) core.Vec3 {
	panic("integrator exploded")
}
