package scene

import (
	"github.com/df07/go-tile-raytracer/pkg/config"
	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/geometry"
	"github.com/df07/go-tile-raytracer/pkg/lights"
	"github.com/df07/go-tile-raytracer/pkg/material"
)

// Cornell box layout: walls are 4 units wide, centered on the origin
const (
	boxHalfSize   = 2.0
	lightPanelY   = 1.99
	lightHalfSize = 0.62
)

var (
	white   = core.NewVec3(1, 1, 1)
	yellow  = core.NewVec3(1, 1, 0)
	red     = core.NewVec3(1, 0, 0)
	magenta = core.NewVec3(1, 0, 1)
)

// configureCornell sets the render options the Cornell box was tuned with
func configureCornell(cfg *config.Render) {
	cfg.Width = 400
	cfg.Height = 400
	cfg.MaxSamples = 128
	cfg.AASamples = 2
	cfg.AAFilterWidth = 1.2
	cfg.UseGI = true
	cfg.GIDepth = 5
	cfg.GISamples = 1
	cfg.UseAO = false
	cfg.SoftShadows = false
	cfg.LightSamples = 1
	cfg.Background = core.NewVec3(0.5, 0.5, 0.5)
	cfg.AmbientLight = core.NewVec3(0.01, 0.01, 0.01)
}

// NewCornellScene creates a Cornell box with a metallic sphere, a glass sphere
// and a rotated ellipsoid, lit by a point light under an unlit ceiling panel
func NewCornellScene(cfg config.Render) (*Scene, error) {
	s := New()
	aspect := float64(cfg.Width) / float64(cfg.Height)

	camera := geometry.NewPerspectiveCamera(
		core.NewVec3(0, 0, 7.6243), // Far enough back to frame the whole box
		core.NewVec3(0, 0, 0),
		core.NewVec3(0, 1, 0),
		aspect,
		39.5978,
	)

	// Light sits just under the panel so the panel never shadows it
	light := lights.NewPointLight(core.NewVec3(0, lightPanelY-0.05, 0), white, 0.9, 1)
	panel := geometry.NewPlaneAt(
		core.NewVec3(0, lightPanelY, 0),
		core.NewVec3(0, -1, 0),
		core.NewVec2(lightHalfSize, lightHalfSize),
		material.NewUnlit(white),
	)

	ambient := cfg.AmbientLight
	whiteWall := material.NewReflective(white, white, ambient, 32, 1)
	yellowWall := material.NewReflective(yellow, white, ambient, 32, 1)
	redWall := material.NewReflective(red, white, ambient, 32, 1)

	wallScale := core.NewVec2(boxHalfSize, boxHalfSize)
	walls := []*geometry.Plane{
		geometry.NewPlaneAt(core.NewVec3(0, -boxHalfSize, 0), core.NewVec3(0, 1, 0), wallScale, whiteWall),  // Floor
		geometry.NewPlaneAt(core.NewVec3(0, boxHalfSize, 0), core.NewVec3(0, -1, 0), wallScale, whiteWall),  // Ceiling
		geometry.NewPlaneAt(core.NewVec3(-boxHalfSize, 0, 0), core.NewVec3(1, 0, 0), wallScale, yellowWall), // Left
		geometry.NewPlaneAt(core.NewVec3(boxHalfSize, 0, 0), core.NewVec3(-1, 0, 0), wallScale, redWall),    // Right
		geometry.NewPlaneAt(core.NewVec3(0, 0, -boxHalfSize), core.NewVec3(0, 0, 1), wallScale, whiteWall),  // Back
	}

	metallic := material.NewMetallic(magenta, white, 64, 0.1)
	glass := material.NewRefractive(1.45)

	ellipsoid := geometry.NewTransformedSphere(
		core.NewTransform(core.NewVec3(-0.75, 0, -0.5), core.NewVec3(45, 0, 45), core.NewVec3(1, 1, 2)),
		0.5,
		whiteWall,
	)

	shapes := []geometry.Shape{panel}
	for _, wall := range walls {
		shapes = append(shapes, wall)
	}
	shapes = append(shapes,
		geometry.NewSphere(core.NewVec3(-0.869228, -1.50883, -0.088344), 0.5, metallic),
		geometry.NewSphere(core.NewVec3(0.271078, -1.50987, 1.13429), 0.5, glass),
		ellipsoid,
	)

	if err := s.AddCamera(camera); err != nil {
		return nil, err
	}
	if err := s.AddLight(light); err != nil {
		return nil, err
	}
	for _, shape := range shapes {
		if err := s.AddObject(shape); err != nil {
			return nil, err
		}
	}
	return s, nil
}
