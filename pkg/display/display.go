package display

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/fogleman/gg"

	"github.com/df07/go-tile-raytracer/pkg/core"
)

// Frame is one published pass of a progressive render
type Frame struct {
	Image     *image.RGBA
	Pass      int           // 1-based pass number
	MaxPasses int           // Total passes planned
	Elapsed   time.Duration // Time since rendering started
	AASamples int           // Camera rays per pixel per pass
}

// IsFinal reports whether this is the last pass of the render
func (f Frame) IsFinal() bool {
	return f.Pass >= f.MaxPasses
}

// Display receives each completed pass. Present is called once per pass
// from the goroutine driving the render, never concurrently.
type Display interface {
	Present(frame Frame) error
}

// DisplayFunc adapts a plain function to the Display interface
type DisplayFunc func(frame Frame) error

// Present calls f(frame)
func (f DisplayFunc) Present(frame Frame) error {
	return f(frame)
}

// Multi fans a frame out to several displays. Every display is called even
// when an earlier one fails.
type Multi []Display

// Present forwards the frame to each display in order
func (m Multi) Present(frame Frame) error {
	var errs []error
	for _, d := range m {
		if d == nil {
			continue
		}
		if err := d.Present(frame); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// FormatLabel builds the parameter label drawn over debug renders
func FormatLabel(frame Frame) string {
	return fmt.Sprintf("Elapsed rendering time: %.2f sec, Max Number of Samples: %d, AA: x%d",
		frame.Elapsed.Seconds(), frame.Pass, frame.AASamples)
}

// Overlay draws text in the bottom left corner of img, in place
func Overlay(img *image.RGBA, text string) *image.RGBA {
	if img == nil || text == "" {
		return img
	}

	dc := gg.NewContextForRGBA(img)
	height := float64(img.Bounds().Dy())

	// Dark outline keeps the label readable on bright backgrounds
	dc.SetRGB(0, 0, 0)
	for _, offset := range [][2]float64{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		dc.DrawString(text, 10+offset[0], height-10+offset[1])
	}
	dc.SetRGB(1, 1, 1)
	dc.DrawString(text, 10, height-10)
	return img
}

// LogDisplay reports each frame through a logger
type LogDisplay struct {
	Logger core.Logger
}

// NewLogDisplay creates a display that only logs
func NewLogDisplay(logger core.Logger) *LogDisplay {
	if logger == nil {
		logger = core.NopLogger{}
	}
	return &LogDisplay{Logger: logger}
}

// Present logs the pass number, image size and average luminance
func (d *LogDisplay) Present(frame Frame) error {
	if frame.Image == nil {
		return fmt.Errorf("pass %d: no image", frame.Pass)
	}
	bounds := frame.Image.Bounds()
	d.Logger.Printf("Pass %d/%d ready (%dx%d, %d spp, luminance %.4f, %v)\n",
		frame.Pass, frame.MaxPasses, bounds.Dx(), bounds.Dy(),
		frame.Pass*frame.AASamples, AverageLuminance(frame.Image), frame.Elapsed.Round(time.Millisecond))
	return nil
}

// AverageLuminance returns the mean Rec. 709 luminance of the image in [0, 1]
func AverageLuminance(img image.Image) float64 {
	bounds := img.Bounds()
	if bounds.Empty() {
		return 0
	}

	total := 0.0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
			total += 0.2126*float64(c.R)/255 + 0.7152*float64(c.G)/255 + 0.0722*float64(c.B)/255
		}
	}
	return total / float64(bounds.Dx()*bounds.Dy())
}
