package renderer

import (
	"image"
	"image/color"
	"math"

	"github.com/df07/go-tile-raytracer/pkg/core"
)

// Tonemap applies the ACES filmic curve (Narkowicz fit) and clamps to [0, 1]
func Tonemap(x float64) float64 {
	if x <= 0 || math.IsNaN(x) {
		return 0
	}
	const (
		a = 2.51
		b = 0.03
		c = 2.43
		d = 0.59
		e = 0.14
	)
	v := (x * (a*x + b)) / (x*(c*x+d) + e)
	return math.Max(0, math.Min(1, v))
}

// TonemapColor maps an HDR color to an 8-bit RGBA pixel
func TonemapColor(c core.Vec3) color.RGBA {
	return color.RGBA{
		R: toByte(Tonemap(c.X)),
		G: toByte(Tonemap(c.Y)),
		B: toByte(Tonemap(c.Z)),
		A: 255,
	}
}

func toByte(v float64) uint8 {
	return uint8(math.Round(255 * v))
}

// ToneMapImage converts the whole buffer to a displayable image
func ToneMapImage(buf *AccumulationBuffer) *image.RGBA {
	return ToneMapRegion(buf, image.Rect(0, 0, buf.Width(), buf.Height()))
}

// ToneMapRegion converts a sub-rectangle of the buffer. The returned image
// is anchored at (0, 0).
func ToneMapRegion(buf *AccumulationBuffer, bounds image.Rectangle) *image.RGBA {
	bounds = bounds.Intersect(image.Rect(0, 0, buf.Width(), buf.Height()))
	img := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			img.SetRGBA(x-bounds.Min.X, y-bounds.Min.Y, TonemapColor(buf.At(x, y)))
		}
	}
	return img
}
