package scene

import (
	"github.com/df07/go-tile-raytracer/pkg/config"
	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/geometry"
	"github.com/df07/go-tile-raytracer/pkg/lights"
	"github.com/df07/go-tile-raytracer/pkg/material"
)

func configureDefault(cfg *config.Render) {
	cfg.Width = 480
	cfg.Height = 270
	cfg.MaxSamples = 64
	cfg.SoftShadows = true
	cfg.LightSamples = 8
	cfg.UseGI = true
	cfg.GIDepth = 3
	cfg.UseAO = true
	cfg.AOSamples = 4
	cfg.AODistance = 0.5
	cfg.Background = core.NewVec3(0.6, 0.7, 0.9)
}

// NewDefaultScene creates spheres of every material kind, a box and a triangle
// on a ground plane, lit by a rectangular area light and a fill point light
func NewDefaultScene(cfg config.Render) (*Scene, error) {
	s := New()
	aspect := float64(cfg.Width) / float64(cfg.Height)

	camera := geometry.NewPerspectiveCamera(
		core.NewVec3(0, 1.25, 4.5), // Slightly above the spheres
		core.NewVec3(0, 0.4, -1),
		core.NewVec3(0, 1, 0),
		aspect,
		40,
	)

	// Create materials
	ground := material.NewLambert(core.NewVec3(0.48, 0.48, 0.0))
	blue := material.NewLambert(core.NewVec3(0.1, 0.2, 0.5))
	gold := material.NewMetallic(core.NewVec3(0.8, 0.6, 0.2), core.NewVec3(1, 1, 1), 64, 0.3)
	plastic := material.NewReflective(core.NewVec3(0.65, 0.25, 0.2), core.NewVec3(1, 1, 1), cfg.AmbientLight, 32, 0.6)
	glass := material.NewRefractive(1.5)
	mirror := material.NewMirror(core.NewVec3(0.9, 0.9, 0.9))

	shapes := []geometry.Shape{
		geometry.NewPlaneAt(core.NewVec3(0, 0, -1), core.NewVec3(0, 1, 0), core.NewVec2(20, 20), ground),
		geometry.NewSphere(core.NewVec3(0, 0.5, -1), 0.5, plastic),
		geometry.NewSphere(core.NewVec3(-1.1, 0.5, -1), 0.5, mirror),
		geometry.NewSphere(core.NewVec3(1.1, 0.5, -1), 0.5, gold),
		geometry.NewSphere(core.NewVec3(0.5, 0.25, 0), 0.25, glass),
		geometry.NewCenteredBox(core.NewVec3(-0.6, 0.2, 0.1), core.NewVec3(0.2, 0.2, 0.2), blue),
		geometry.NewTriangle(
			core.NewVec3(-2.5, 0, -2.5),
			core.NewVec3(-1.5, 0, -2.5),
			core.NewVec3(-2, 1.2, -2.5),
			blue,
		),
	}

	keyLight := lights.NewRectLight(
		core.NewVec3(0, 4, 0),
		core.NewVec3(1, 0.95, 0.9),
		25,
		core.NewVec2(2, 2),
		core.NewVec3(0, -1, 0),
	)
	fillLight := lights.NewPointLight(core.NewVec3(-4, 3, 4), core.NewVec3(0.6, 0.7, 1), 10, 0.3)

	if err := s.AddCamera(camera); err != nil {
		return nil, err
	}
	for _, light := range []*lights.Light{keyLight, fillLight} {
		if err := s.AddLight(light); err != nil {
			return nil, err
		}
	}
	for _, shape := range shapes {
		if err := s.AddObject(shape); err != nil {
			return nil, err
		}
	}
	return s, nil
}
