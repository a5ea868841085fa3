package renderer

import (
	"time"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/geometry"
	"github.com/df07/go-tile-raytracer/pkg/integrator"
	"github.com/df07/go-tile-raytracer/pkg/scene"
)

// TileRenderer renders one pass of a tile into the shared accumulation buffer
type TileRenderer struct {
	scene       *scene.Scene
	camera      geometry.Camera
	integrator  integrator.Integrator
	buffer      *AccumulationBuffer
	aaSamples   int
	filterWidth float64
}

// NewTileRenderer creates a tile renderer. aaSamples below 1 is treated as 1
// and a single AA sample always goes through the pixel center.
func NewTileRenderer(s *scene.Scene, integ integrator.Integrator, buffer *AccumulationBuffer, aaSamples int, filterWidth float64) *TileRenderer {
	aaSamples = max(1, aaSamples)
	if aaSamples == 1 {
		filterWidth = 0
	}
	return &TileRenderer{
		scene:       s,
		camera:      s.Camera(),
		integrator:  integ,
		buffer:      buffer,
		aaSamples:   aaSamples,
		filterWidth: filterWidth,
	}
}

// Buffer returns the accumulation buffer this renderer writes to
func (tr *TileRenderer) Buffer() *AccumulationBuffer {
	return tr.buffer
}

// RenderTile traces one pass over the tile's pixels and blends the result as
// the pass-th estimate. Only the tile's own sampler is used, so tiles can run
// on any goroutine in any order with identical results.
func (tr *TileRenderer) RenderTile(tile *Tile, pass int) RenderStats {
	start := time.Now()
	bounds := tile.Bounds

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			tr.buffer.Blend(x, y, tr.samplePixel(x, y, tile.Sampler), pass)
		}
	}

	pixels := bounds.Dx() * bounds.Dy()
	return RenderStats{
		Pass:        pass,
		TotalPixels: pixels,
		CameraRays:  pixels * tr.aaSamples,
		Duration:    time.Since(start),
	}
}

// samplePixel averages aaSamples jittered camera rays through pixel (x, y)
func (tr *TileRenderer) samplePixel(x, y int, sampler core.Sampler) core.Vec3 {
	width := float64(tr.buffer.Width())
	height := float64(tr.buffer.Height())

	var color core.Vec3
	for i := 0; i < tr.aaSamples; i++ {
		jx, jy := 0.0, 0.0
		if tr.filterWidth > 0 {
			r := sampler.Get2D()
			jx = (r.X - 0.5) * tr.filterWidth
			jy = (r.Y - 0.5) * tr.filterWidth
		}

		u := (float64(x) + 0.5 + jx) / width
		v := 1 - (float64(y)+0.5+jy)/height
		ray := tr.camera.GetRay(u, v)
		color = color.Add(tr.integrator.RayColor(ray, tr.scene, sampler))
	}

	return color.Multiply(1.0 / float64(tr.aaSamples))
}

