package renderer

import (
	"time"

	"github.com/df07/go-tile-raytracer/pkg/core"
)

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	Pass            int           // Pass these stats describe (0 for a single tile)
	TotalPixels     int           // Pixels rendered
	CameraRays      int           // Primary rays traced
	SamplesPerPixel int           // Camera rays accumulated into every pixel so far
	Duration        time.Duration // Wall time of the pass or tile
}

// add merges per-tile stats into a pass total
func (rs *RenderStats) add(other RenderStats) {
	rs.TotalPixels += other.TotalPixels
	rs.CameraRays += other.CameraRays
}

// AccumulationBuffer holds the running HDR estimate of every pixel.
// Tiles write disjoint pixel ranges, so concurrent Blend calls on
// different tiles need no locking.
type AccumulationBuffer struct {
	width, height int
	pixels        []core.Vec3
}

// NewAccumulationBuffer creates a zeroed buffer
func NewAccumulationBuffer(width, height int) *AccumulationBuffer {
	return &AccumulationBuffer{
		width:  width,
		height: height,
		pixels: make([]core.Vec3, width*height),
	}
}

// Width returns the buffer width in pixels
func (b *AccumulationBuffer) Width() int { return b.width }

// Height returns the buffer height in pixels
func (b *AccumulationBuffer) Height() int { return b.height }

// At returns the current estimate for pixel (x, y)
func (b *AccumulationBuffer) At(x, y int) core.Vec3 {
	return b.pixels[y*b.width+x]
}

// Blend folds sample into pixel (x, y) as the n-th estimate (n is 1-based):
// accum + (sample - accum) / n. The first pass stores the sample exactly and
// a constant sample stream leaves the pixel unchanged.
func (b *AccumulationBuffer) Blend(x, y int, sample core.Vec3, n int) {
	i := y*b.width + x
	if n <= 1 {
		b.pixels[i] = sample
		return
	}
	accum := b.pixels[i]
	b.pixels[i] = accum.Add(sample.Subtract(accum).Multiply(1.0 / float64(n)))
}

// snapshot copies the current estimates into dst, reusing its storage
func (b *AccumulationBuffer) snapshot(dst []core.Vec3) []core.Vec3 {
	return append(dst[:0], b.pixels...)
}

// restore overwrites the estimates with a previous snapshot
func (b *AccumulationBuffer) restore(src []core.Vec3) {
	copy(b.pixels, src)
}

// Reset zeroes every pixel
func (b *AccumulationBuffer) Reset() {
	for i := range b.pixels {
		b.pixels[i] = core.Vec3{}
	}
}
