package renderer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/df07/go-tile-raytracer/pkg/config"
	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/display"
	"github.com/df07/go-tile-raytracer/pkg/integrator"
	"github.com/df07/go-tile-raytracer/pkg/scene"
)

// ErrInvalidSize is returned for a non-positive image size
var ErrInvalidSize = errors.New("invalid image size")

// DefaultLogger implements core.Logger by writing to stdout
type DefaultLogger struct{}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// NewDefaultLogger creates a new default logger
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{}
}

// ProgressiveConfig contains configuration for progressive rendering
type ProgressiveConfig struct {
	TileSize      int     // Edge length of each square tile in pixels
	MaxPasses     int     // Passes to render; each pass adds one estimate per pixel
	AASamples     int     // Camera rays averaged per pixel per pass
	AAFilterWidth float64 // Jitter width in pixels around the pixel center
	NumWorkers    int     // Number of parallel workers (0 = use CPU count)
	Seed          int64   // Base seed; tile i samples from Seed+i
	DebugLabel    bool    // Draw the parameter label over published frames
	Serial        bool    // Render tiles on the calling goroutine
}

// DefaultProgressiveConfig returns sensible default values
func DefaultProgressiveConfig() ProgressiveConfig {
	return ProgressiveConfigFrom(config.Default())
}

// ProgressiveConfigFrom extracts the renderer settings from a render configuration
func ProgressiveConfigFrom(cfg config.Render) ProgressiveConfig {
	return ProgressiveConfig{
		TileSize:      cfg.TileSize,
		MaxPasses:     cfg.MaxSamples,
		AASamples:     cfg.AASamples,
		AAFilterWidth: cfg.AAFilterWidth,
		NumWorkers:    cfg.Workers,
		Seed:          cfg.Seed,
		DebugLabel:    cfg.DebugLabel,
	}
}

// ProgressiveRaytracer manages progressive rendering with multiple passes
type ProgressiveRaytracer struct {
	scene         *scene.Scene
	width, height int
	config        ProgressiveConfig
	tiles         []*Tile             // Tile management
	buffer        *AccumulationBuffer // Running per-pixel estimate
	committed     []core.Vec3         // Buffer contents after the last completed pass
	tileRenderer  *TileRenderer       // Renders a tile into the buffer
	executor      TileExecutor        // Runs tile tasks
	display       display.Display     // Receives each completed pass
	logger        core.Logger         // Logger for rendering output
	started       bool
	startTime     time.Time
}

// NewProgressiveRaytracer creates a new progressive raytracer. The scene is
// validated and sealed; it must not change while rendering.
func NewProgressiveRaytracer(s *scene.Scene, width, height int, cfg ProgressiveConfig, integ integrator.Integrator, logger core.Logger) (*ProgressiveRaytracer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = core.NopLogger{}
	}
	if cfg.TileSize <= 0 {
		cfg.TileSize = config.Default().TileSize
	}
	cfg.MaxPasses = max(1, cfg.MaxPasses)
	cfg.AASamples = max(1, cfg.AASamples)

	s.Seal()

	tiles := NewTileGrid(width, height, cfg.TileSize, cfg.Seed)
	buffer := NewAccumulationBuffer(width, height)
	tileRenderer := NewTileRenderer(s, integ, buffer, cfg.AASamples, cfg.AAFilterWidth)

	var executor TileExecutor
	if cfg.Serial {
		executor = NewSerialExecutor(tileRenderer)
	} else {
		executor = NewWorkerPool(tileRenderer, cfg.NumWorkers, len(tiles))
	}

	return &ProgressiveRaytracer{
		scene:        s,
		width:        width,
		height:       height,
		config:       cfg,
		tiles:        tiles,
		buffer:       buffer,
		tileRenderer: tileRenderer,
		executor:     executor,
		logger:       logger,
	}, nil
}

// SetDisplay sets where completed passes are published
func (pr *ProgressiveRaytracer) SetDisplay(d display.Display) {
	pr.display = d
}

// Buffer exposes the HDR accumulation buffer. After a failed pass it holds
// the estimate of the last completed pass.
func (pr *ProgressiveRaytracer) Buffer() *AccumulationBuffer {
	return pr.buffer
}

// Tiles returns the tile grid
func (pr *ProgressiveRaytracer) Tiles() []*Tile {
	return pr.tiles
}

// Config returns the effective configuration
func (pr *ProgressiveRaytracer) Config() ProgressiveConfig {
	return pr.config
}

// Close stops the tile executor. Safe to call more than once.
func (pr *ProgressiveRaytracer) Close() {
	pr.executor.Stop()
}

// RenderPass renders a single progressive pass using parallel processing.
// It returns only after every tile has reported back; the tone-mapped frame
// is then published to the display exactly once.
func (pr *ProgressiveRaytracer) RenderPass(passNumber int, tileCallback func(TileCompletionResult)) (*image.RGBA, RenderStats, error) {
	if passNumber < 1 {
		return nil, RenderStats{}, fmt.Errorf("invalid pass number %d", passNumber)
	}

	if !pr.started {
		pr.started = true
		pr.startTime = time.Now()
		pr.executor.Start()
	}

	passStart := time.Now()
	pr.logger.Printf("Pass %d/%d: %d tiles, %d AA samples (using %d workers)...\n",
		passNumber, pr.config.MaxPasses, len(pr.tiles), pr.config.AASamples, pr.executor.GetNumWorkers())

	pr.committed = pr.buffer.snapshot(pr.committed)

	for i, tile := range pr.tiles {
		pr.executor.SubmitTask(TileTask{
			Tile:       tile,
			PassNumber: passNumber,
			TaskID:     i,
		})
	}

	// Barrier: collect every result, even after a failure, so no tile of
	// this pass is still writing when we return.
	stats := RenderStats{Pass: passNumber}
	var firstErr error
	completed := make([]*Tile, 0, len(pr.tiles))
	for i := 0; i < len(pr.tiles); i++ {
		result, ok := pr.executor.GetResult()
		if !ok {
			return nil, RenderStats{}, fmt.Errorf("worker pool closed unexpectedly")
		}
		if result.Error != nil {
			if firstErr == nil {
				firstErr = result.Error
			}
			continue
		}
		stats.add(result.Stats)

		tile := pr.tiles[result.TaskID]
		completed = append(completed, tile)

		// Tile callbacks are dispatched from this goroutine only
		if tileCallback != nil {
			tileCallback(TileCompletionResult{
				TileX:       tile.Bounds.Min.X / pr.config.TileSize,
				TileY:       tile.Bounds.Min.Y / pr.config.TileSize,
				TileImage:   ToneMapRegion(pr.buffer, tile.Bounds),
				PassNumber:  passNumber,
				TileNumber:  i + 1,
				TotalTiles:  len(pr.tiles),
				TotalPasses: pr.config.MaxPasses,
			})
		}
	}
	if firstErr != nil {
		// Sibling tiles already blended this pass; roll them back
		pr.buffer.restore(pr.committed)
		return nil, RenderStats{}, firstErr
	}
	for _, tile := range completed {
		tile.PassesCompleted++
	}

	stats.SamplesPerPixel = passNumber * pr.config.AASamples
	stats.Duration = time.Since(passStart)

	img := pr.release(passNumber)
	return img, stats, nil
}

// release tone maps the buffer and publishes the frame. Runs once per pass
// after the barrier.
func (pr *ProgressiveRaytracer) release(passNumber int) *image.RGBA {
	img := ToneMapImage(pr.buffer)
	frame := display.Frame{
		Image:     img,
		Pass:      passNumber,
		MaxPasses: pr.config.MaxPasses,
		Elapsed:   time.Since(pr.startTime),
		AASamples: pr.config.AASamples,
	}

	if pr.config.DebugLabel {
		display.Overlay(img, display.FormatLabel(frame))
	}

	if pr.display != nil {
		if err := pr.display.Present(frame); err != nil {
			pr.logger.Printf("Pass %d: display failed: %v\n", passNumber, err)
		}
	}
	return img
}

// PassResult contains the result of a single pass
type PassResult struct {
	PassNumber int
	Image      *image.RGBA
	Stats      RenderStats
	IsLast     bool
}

// TileCompletionResult contains information about a completed tile for callbacks
type TileCompletionResult struct {
	TileX      int // Tile coordinates (not pixel coordinates)
	TileY      int
	TileImage  *image.RGBA // Image data for just this tile
	PassNumber int         // Which pass this tile was rendered in

	// Progress information
	TileNumber  int // Current tile number in this pass (1-based)
	TotalTiles  int // Total number of tiles in the image
	TotalPasses int // Total number of passes planned
}

// RenderOptions configures progressive rendering behavior
type RenderOptions struct {
	TileUpdates bool // Whether to generate tile completion events
}

// RenderProgressive renders every pass on a background goroutine and reports
// through channels. Cancellation is checked between passes; a pass that has
// started always completes. If options.TileUpdates is false, the tile channel
// is closed immediately.
func (pr *ProgressiveRaytracer) RenderProgressive(ctx context.Context, options RenderOptions) (<-chan PassResult, <-chan TileCompletionResult, <-chan error) {
	passChan := make(chan PassResult, 1)
	tileChan := make(chan TileCompletionResult, 100)
	errChan := make(chan error, 1)

	if !options.TileUpdates {
		close(tileChan)
	}

	go func() {
		defer close(passChan)
		if options.TileUpdates {
			defer close(tileChan)
		}
		defer close(errChan)
		defer pr.Close()

		pr.logger.Printf("Starting progressive rendering with %d passes (%dx%d, %d tiles)...\n",
			pr.config.MaxPasses, pr.width, pr.height, len(pr.tiles))

		for pass := 1; pass <= pr.config.MaxPasses; pass++ {
			select {
			case <-ctx.Done():
				pr.logger.Printf("Rendering cancelled before pass %d\n", pass)
				errChan <- ctx.Err()
				return
			default:
			}

			var tileCallback func(TileCompletionResult)
			if options.TileUpdates {
				tileCallback = func(result TileCompletionResult) {
					select {
					case tileChan <- result:
					case <-ctx.Done():
					default:
						// Slow consumer; drop the update
					}
				}
			}

			img, stats, err := pr.RenderPass(pass, tileCallback)
			if err != nil {
				errChan <- err
				return
			}

			pr.logger.Printf("Pass %d completed in %v (%d samples/pixel)\n",
				pass, stats.Duration, stats.SamplesPerPixel)

			result := PassResult{
				PassNumber: pass,
				Image:      img,
				Stats:      stats,
				IsLast:     pass == pr.config.MaxPasses,
			}

			// A finished pass is delivered even when cancellation raced it
			select {
			case passChan <- result:
				continue
			default:
			}
			select {
			case passChan <- result:
			case <-ctx.Done():
				errChan <- ctx.Err()
				return
			}
		}
	}()

	return passChan, tileChan, errChan
}

// Render runs every pass synchronously and returns the final image
func (pr *ProgressiveRaytracer) Render(ctx context.Context) (*image.RGBA, error) {
	passes, _, errs := pr.RenderProgressive(ctx, RenderOptions{})

	var last *image.RGBA
	for result := range passes {
		last = result.Image
	}
	if err := <-errs; err != nil {
		return last, err
	}
	return last, nil
}

// Tile represents a rectangular region of the image to be rendered
type Tile struct {
	ID              int             // Unique tile identifier
	Bounds          image.Rectangle // Pixel bounds (x0,y0,x1,y1)
	PassesCompleted int             // Number of passes completed for this tile
	Sampler         core.Sampler    // Tile-owned random stream
}

// NewTile creates a new tile whose sampler is seeded with seed+id
func NewTile(id int, bounds image.Rectangle, seed int64) *Tile {
	return &Tile{
		ID:      id,
		Bounds:  bounds,
		Sampler: core.NewSeededSampler(seed + int64(id)),
	}
}

// NewTileGrid creates a grid of tiles covering the entire image, row-major
// from the top left. Edge tiles are clipped to the image.
func NewTileGrid(width, height, tileSize int, seed int64) []*Tile {
	var tiles []*Tile
	tileID := 0

	tilesX := (width + tileSize - 1) / tileSize
	tilesY := (height + tileSize - 1) / tileSize

	for tileY := 0; tileY < tilesY; tileY++ {
		for tileX := 0; tileX < tilesX; tileX++ {
			x0 := tileX * tileSize
			y0 := tileY * tileSize
			x1 := min(x0+tileSize, width)
			y1 := min(y0+tileSize, height)

			tiles = append(tiles, NewTile(tileID, image.Rect(x0, y0, x1, y1), seed))
			tileID++
		}
	}

	return tiles
}
