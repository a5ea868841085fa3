package geometry

import (
	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/material"
)

// Intersection contains information about a ray-object intersection.
// It is produced fresh for every query.
type Intersection struct {
	Distance float64            // Distance along the ray, always > core.RayEpsilon
	Point    core.Vec3          // World-space hit point
	Normal   core.Vec3          // World-space outward unit normal
	Material *material.Material // Material of the hit object
}

// Shape is the closed set of primitives the renderer understands:
// *Sphere, *Plane, *Box, *Triangle and *Mesh.
type Shape interface {
	// Hit returns the nearest intersection in front of the ray origin
	Hit(ray core.Ray) (Intersection, bool)
	// BoundingBox returns a world-space bound of the shape
	BoundingBox() core.AABB

	isShape()
}

func (*Sphere) isShape()   {}
func (*Plane) isShape()    {}
func (*Box) isShape()      {}
func (*Triangle) isShape() {}
func (*Mesh) isShape()     {}

// Kind returns a short name for a shape
func Kind(s Shape) string {
	switch s.(type) {
	case *Sphere:
		return "sphere"
	case *Plane:
		return "plane"
	case *Box:
		return "box"
	case *Triangle:
		return "triangle"
	case *Mesh:
		return "mesh"
	default:
		return "unknown"
	}
}
