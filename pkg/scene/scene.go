package scene

import (
	"errors"
	"math"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/geometry"
	"github.com/df07/go-tile-raytracer/pkg/lights"
)

var (
	// ErrSealed is returned when the scene is modified after rendering started
	ErrSealed = errors.New("scene is sealed for rendering")
	// ErrNoCamera is returned by Validate when no camera was added
	ErrNoCamera = errors.New("scene has no camera")
)

// Scene contains all the elements needed for rendering. It is filled during setup
// and read-only once sealed; workers traverse it without locking.
type Scene struct {
	Cameras []geometry.Camera
	Objects []geometry.Shape // Objects in insertion order
	Lights  []*lights.Light

	sealed bool
}

// New creates an empty scene
func New() *Scene {
	return &Scene{}
}

// AddCamera appends a camera. The first camera is the active one.
func (s *Scene) AddCamera(camera geometry.Camera) error {
	if s.sealed {
		return ErrSealed
	}
	s.Cameras = append(s.Cameras, camera)
	return nil
}

// AddObject appends a shape
func (s *Scene) AddObject(shape geometry.Shape) error {
	if s.sealed {
		return ErrSealed
	}
	s.Objects = append(s.Objects, shape)
	return nil
}

// AddLight appends a light
func (s *Scene) AddLight(light *lights.Light) error {
	if s.sealed {
		return ErrSealed
	}
	s.Lights = append(s.Lights, light)
	return nil
}

// Seal marks the start of rendering; later Add* calls fail with ErrSealed
func (s *Scene) Seal() {
	s.sealed = true
}

// Sealed reports whether rendering has started
func (s *Scene) Sealed() bool {
	return s.sealed
}

// Camera returns the active camera, or nil if none was added
func (s *Scene) Camera() geometry.Camera {
	if len(s.Cameras) == 0 {
		return nil
	}
	return s.Cameras[0]
}

// Validate checks the scene can be rendered. An empty light list is allowed.
func (s *Scene) Validate() error {
	if len(s.Cameras) == 0 {
		return ErrNoCamera
	}
	return nil
}

// ClosestHit scans every object and returns the nearest intersection
func (s *Scene) ClosestHit(ray core.Ray) (geometry.Intersection, bool) {
	closest := geometry.Intersection{Distance: math.Inf(1)}
	found := false

	for _, object := range s.Objects {
		if hit, ok := object.Hit(ray); ok && hit.Distance < closest.Distance {
			closest = hit
			found = true
		}
	}
	return closest, found
}

// PrimitiveCount returns the number of primitives, counting each mesh triangle
func (s *Scene) PrimitiveCount() int {
	count := 0
	for _, object := range s.Objects {
		switch obj := object.(type) {
		case *geometry.Mesh:
			count += len(obj.Triangles)
		default:
			count++
		}
	}
	return count
}
