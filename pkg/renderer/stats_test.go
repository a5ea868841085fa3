package renderer

import (
	"image"
	"math"
	"testing"

	"github.com/df07/go-tile-raytracer/pkg/core"
)

func TestAccumulationBuffer_Blend(t *testing.T) {
	tests := []struct {
		name     string
		samples  []core.Vec3
		expected core.Vec3
		exact    bool
	}{
		{
			name:     "first pass stores the sample",
			samples:  []core.Vec3{core.NewVec3(0.3, 1.7, 42)},
			expected: core.NewVec3(0.3, 1.7, 42),
			exact:    true,
		},
		{
			name:     "constant stream is a fixed point",
			samples:  []core.Vec3{core.NewVec3(0.1, 0.2, 0.3), core.NewVec3(0.1, 0.2, 0.3), core.NewVec3(0.1, 0.2, 0.3), core.NewVec3(0.1, 0.2, 0.3)},
			expected: core.NewVec3(0.1, 0.2, 0.3),
			exact:    true,
		},
		{
			name:     "running mean",
			samples:  []core.Vec3{core.NewVec3(1, 0, 4), core.NewVec3(2, 0, 0), core.NewVec3(3, 0, 0), core.NewVec3(4, 0, 0)},
			expected: core.NewVec3(2.5, 0, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := NewAccumulationBuffer(3, 2)
			for i, s := range tt.samples {
				buf.Blend(2, 1, s, i+1)
			}

			got := buf.At(2, 1)
			if tt.exact && got != tt.expected {
				t.Errorf("Expected exactly %v, got %v", tt.expected, got)
			}
			if !got.Equals(tt.expected, 1e-12) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}

			// Neighbours untouched
			if !buf.At(1, 1).IsZero() || !buf.At(2, 0).IsZero() {
				t.Error("Blend wrote outside its pixel")
			}
		})
	}
}

func TestAccumulationBuffer_OrderIndependent(t *testing.T) {
	samples := []core.Vec3{
		core.NewVec3(0.9, 0.1, 3),
		core.NewVec3(0.2, 0.4, 0),
		core.NewVec3(1.5, 0.05, 0.7),
		core.NewVec3(0.01, 2, 0.3),
		core.NewVec3(0.6, 0.6, 0.6),
	}

	forward := NewAccumulationBuffer(1, 1)
	backward := NewAccumulationBuffer(1, 1)
	for i := range samples {
		forward.Blend(0, 0, samples[i], i+1)
		backward.Blend(0, 0, samples[len(samples)-1-i], i+1)
	}

	if !forward.At(0, 0).Equals(backward.At(0, 0), 1e-12) {
		t.Errorf("Accumulation depends on order: %v vs %v", forward.At(0, 0), backward.At(0, 0))
	}
}

func TestAccumulationBuffer_Reset(t *testing.T) {
	buf := NewAccumulationBuffer(2, 2)
	buf.Blend(0, 0, core.NewVec3(1, 1, 1), 1)
	buf.Reset()
	if !buf.At(0, 0).IsZero() {
		t.Errorf("Expected zero after reset, got %v", buf.At(0, 0))
	}
	if buf.Width() != 2 || buf.Height() != 2 {
		t.Errorf("Unexpected size %dx%d", buf.Width(), buf.Height())
	}
}

func TestTonemap(t *testing.T) {
	if Tonemap(0) != 0 {
		t.Errorf("Tonemap(0) = %f, want 0", Tonemap(0))
	}
	if Tonemap(-3) != 0 || Tonemap(math.NaN()) != 0 {
		t.Error("Negative and NaN input should map to 0")
	}
	if Tonemap(1e6) != 1 {
		t.Errorf("Tonemap(1e6) = %f, want 1", Tonemap(1e6))
	}

	prev := 0.0
	for x := 0.001; x < 20; x *= 1.1 {
		v := Tonemap(x)
		if v < prev {
			t.Fatalf("Tonemap not monotonic at %f: %f < %f", x, v, prev)
		}
		if v < 0 || v > 1 {
			t.Fatalf("Tonemap(%f) = %f outside [0,1]", x, v)
		}
		prev = v
	}

	// Reference value of the curve at 1
	expected := (2.51 + 0.03) / (2.43 + 0.59 + 0.14)
	if math.Abs(Tonemap(1)-expected) > 1e-12 {
		t.Errorf("Tonemap(1) = %f, want %f", Tonemap(1), expected)
	}
}

func TestTonemapColor(t *testing.T) {
	black := TonemapColor(core.Vec3{})
	if black.R != 0 || black.G != 0 || black.B != 0 || black.A != 255 {
		t.Errorf("Expected opaque black, got %v", black)
	}

	bright := TonemapColor(core.NewVec3(100, 100, 100))
	if bright.R != 255 || bright.G != 255 || bright.B != 255 {
		t.Errorf("Expected white, got %v", bright)
	}

	c := TonemapColor(core.NewVec3(0.1, 0.5, 2))
	if !(c.R < c.G && c.G < c.B) {
		t.Errorf("Expected channel order preserved, got %v", c)
	}
}

func TestToneMapRegion(t *testing.T) {
	buf := NewAccumulationBuffer(4, 4)
	buf.Blend(2, 3, core.NewVec3(100, 0, 0), 1)

	img := ToneMapRegion(buf, image.Rect(2, 2, 6, 6))
	if img.Bounds().Dx() != 2 || img.Bounds().Dy() != 2 {
		t.Fatalf("Expected region clipped to 2x2, got %v", img.Bounds())
	}
	if img.RGBAAt(0, 1).R != 255 {
		t.Errorf("Expected red pixel at region (0,1), got %v", img.RGBAAt(0, 1))
	}
}
