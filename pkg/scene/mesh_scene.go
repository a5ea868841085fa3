package scene

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/df07/go-tile-raytracer/pkg/config"
	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/geometry"
	"github.com/df07/go-tile-raytracer/pkg/lights"
	"github.com/df07/go-tile-raytracer/pkg/loaders"
	"github.com/df07/go-tile-raytracer/pkg/material"
)

//go:embed assets/octahedron.obj
var octahedronOBJ string

func configureMesh(cfg *config.Render) {
	cfg.Width = 320
	cfg.Height = 320
	cfg.MaxSamples = 32
	cfg.UseGI = true
	cfg.GIDepth = 2
	cfg.Background = core.NewVec3(0.1, 0.1, 0.15)
}

// NewMeshScene creates an imported metallic octahedron over a floor, viewed
// through an orthographic camera. meshPath replaces the built-in model when set.
func NewMeshScene(cfg config.Render, meshPath string) (*Scene, error) {
	s := New()
	aspect := float64(cfg.Width) / float64(cfg.Height)

	camera := geometry.NewOrthographicCamera(
		core.NewVec3(3, 2.5, 5),
		core.NewVec3(0, -0.5, 0),
		core.NewVec3(0, 1, 0),
		aspect,
		2.2,
	)

	metallic := material.NewMetallic(core.NewVec3(1, 0, 1), core.NewVec3(1, 1, 1), 64, 0.1)
	placement := core.NewTransform(core.NewVec3(0, -0.5, 0), core.NewVec3(0, 30, 0), core.NewVec3(1, 1.4, 1))

	var mesh *geometry.Mesh
	if meshPath != "" {
		var err error
		if mesh, err = loaders.LoadOBJFile(meshPath, placement, metallic); err != nil {
			return nil, err
		}
	} else {
		triangles, err := loaders.LoadOBJ(strings.NewReader(octahedronOBJ), placement, metallic)
		if err != nil {
			return nil, fmt.Errorf("built-in mesh: %w", err)
		}
		mesh = geometry.NewMesh(triangles)
	}

	floor := geometry.NewPlaneAt(
		core.NewVec3(0, -2, 0),
		core.NewVec3(0, 1, 0),
		core.NewVec2(6, 6),
		material.NewLambert(core.NewVec3(0.7, 0.7, 0.7)),
	)

	if err := s.AddCamera(camera); err != nil {
		return nil, err
	}
	if err := s.AddLight(lights.NewPointLight(core.NewVec3(2, 4, 3), core.NewVec3(1, 1, 1), 20, 0.5)); err != nil {
		return nil, err
	}
	for _, shape := range []geometry.Shape{mesh, floor} {
		if err := s.AddObject(shape); err != nil {
			return nil, err
		}
	}
	return s, nil
}
