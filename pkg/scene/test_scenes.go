package scene

import (
	"github.com/df07/go-tile-raytracer/pkg/config"
	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/geometry"
	"github.com/df07/go-tile-raytracer/pkg/lights"
	"github.com/df07/go-tile-raytracer/pkg/material"
)

// MirrorFloorColor is the flat color of the floor under the mirror sphere
var MirrorFloorColor = core.NewVec3(0.2, 0.7, 0.3)

// configureDeterministic turns off every stochastic path
func configureDeterministic(cfg *config.Render) {
	cfg.Width = 64
	cfg.Height = 64
	cfg.MaxSamples = 4
	cfg.AASamples = 1
	cfg.SoftShadows = false
	cfg.LightSamples = 1
	cfg.UseGI = false
	cfg.UseAO = false
	cfg.AmbientLight = core.Vec3{}
	cfg.Background = core.NewVec3(0.5, 0.5, 0.5)
}

// NewSphereScene creates a white Lambert sphere at the origin lit from straight above
func NewSphereScene(cfg config.Render) (*Scene, error) {
	s := New()
	aspect := float64(cfg.Width) / float64(cfg.Height)

	camera := geometry.NewPerspectiveCamera(
		core.NewVec3(0, 0, 5),
		core.NewVec3(0, 0, 0),
		core.NewVec3(0, 1, 0),
		aspect,
		40,
	)

	if err := s.AddCamera(camera); err != nil {
		return nil, err
	}
	if err := s.AddLight(lights.NewPointLight(core.NewVec3(0, 5, 0), core.NewVec3(1, 1, 1), 16, 0)); err != nil {
		return nil, err
	}
	if err := s.AddObject(geometry.NewSphere(core.Vec3{}, 1, material.NewLambert(core.NewVec3(1, 1, 1)))); err != nil {
		return nil, err
	}
	return s, nil
}

func configureMirror(cfg *config.Render) {
	configureDeterministic(cfg)
	cfg.UseGI = true
	cfg.GIDepth = 2
}

// NewMirrorScene creates a perfect mirror sphere resting above a flat-colored floor
func NewMirrorScene(cfg config.Render) (*Scene, error) {
	s := New()
	aspect := float64(cfg.Width) / float64(cfg.Height)

	camera := geometry.NewPerspectiveCamera(
		core.NewVec3(0, 0, 5),
		core.NewVec3(0, 0, 0),
		core.NewVec3(0, 1, 0),
		aspect,
		40,
	)

	floor := geometry.NewPlaneAt(
		core.NewVec3(0, -1.5, 0),
		core.NewVec3(0, 1, 0),
		core.NewVec2(50, 50),
		material.NewUnlit(MirrorFloorColor),
	)

	if err := s.AddCamera(camera); err != nil {
		return nil, err
	}
	if err := s.AddObject(geometry.NewSphere(core.Vec3{}, 1, material.NewMirror(core.NewVec3(1, 1, 1)))); err != nil {
		return nil, err
	}
	if err := s.AddObject(floor); err != nil {
		return nil, err
	}
	return s, nil
}
