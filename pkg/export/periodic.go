package export

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/df07/go-tile-raytracer/pkg/display"
)

// PeriodicExporter is a display that exports every Every-th pass and always
// the final one. Every <= 0 exports only the final pass.
type PeriodicExporter struct {
	ctx       context.Context
	exporters []Exporter
	every     int
	name      string
}

// NewPeriodicExporter creates a periodic exporter. name is the base file
// name without extension; the final pass is written as name.png and
// intermediate passes as name_passNNNN.png. Exports run under ctx, so it
// should not be a context that is cancelled to stop rendering.
func NewPeriodicExporter(ctx context.Context, every int, name string, exporters ...Exporter) *PeriodicExporter {
	if name == "" {
		name = "raytracing"
	}
	return &PeriodicExporter{ctx: ctx, exporters: exporters, every: every, name: name}
}

// ShouldExport reports whether the given frame is written
func (pe *PeriodicExporter) ShouldExport(frame display.Frame) bool {
	if frame.IsFinal() {
		return true
	}
	return pe.every > 0 && frame.Pass%pe.every == 0
}

// FileName returns the name a frame is exported under
func (pe *PeriodicExporter) FileName(frame display.Frame) string {
	if frame.IsFinal() {
		return pe.name + ".png"
	}
	return fmt.Sprintf("%s_pass%04d.png", pe.name, frame.Pass)
}

// Present exports the frame to every exporter when due
func (pe *PeriodicExporter) Present(frame display.Frame) error {
	if !pe.ShouldExport(frame) {
		return nil
	}

	return pe.export(pe.ctx, frame.Image, pe.FileName(frame))
}

// SaveFinal writes img under the final file name, for renders that stopped
// before their last pass
func (pe *PeriodicExporter) SaveFinal(ctx context.Context, img image.Image) error {
	return pe.export(ctx, img, pe.name+".png")
}

func (pe *PeriodicExporter) export(ctx context.Context, img image.Image, name string) error {
	var errs []error
	for _, e := range pe.exporters {
		if err := e.Export(ctx, img, name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
