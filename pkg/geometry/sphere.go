package geometry

import (
	"math"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/material"
)

// Sphere represents a sphere of the given radius centered at the origin of its object space.
// The transform places (and may rotate or stretch) it in the world.
type Sphere struct {
	Transform core.Transform
	Radius    float64
	Material  *material.Material
}

// NewSphere creates a sphere at center
func NewSphere(center core.Vec3, radius float64, material *material.Material) *Sphere {
	return NewTransformedSphere(core.NewTranslation(center), radius, material)
}

// NewTransformedSphere creates a sphere placed by an arbitrary transform
func NewTransformedSphere(transform core.Transform, radius float64, material *material.Material) *Sphere {
	return &Sphere{
		Transform: transform,
		Radius:    radius,
		Material:  material,
	}
}

// Center returns the world-space center of the sphere
func (s *Sphere) Center() core.Vec3 {
	return s.Transform.ApplyPoint(core.Vec3{})
}

// Hit tests if a ray intersects with the sphere.
// The ray is solved in object space; its direction is not renormalized there,
// so the root is directly the world-space distance.
func (s *Sphere) Hit(ray core.Ray) (Intersection, bool) {
	if !s.Transform.Invertible() {
		return Intersection{}, false
	}

	local := s.Transform.InverseRay(ray)

	// Quadratic equation coefficients: at² + bt + c = 0
	a := local.Direction.Dot(local.Direction)
	b := 2 * local.Origin.Dot(local.Direction)
	c := local.Origin.Dot(local.Origin) - s.Radius*s.Radius
	if a == 0 {
		return Intersection{}, false
	}

	discriminant := b*b - 4*a*c
	if discriminant < 0 && math.Abs(discriminant) >= core.RayEpsilon {
		return Intersection{}, false
	}

	var root float64
	if math.Abs(discriminant) < core.RayEpsilon {
		// Tangent ray: entry and exit coincide
		root = -b / (2 * a)
		if root <= core.RayEpsilon {
			return Intersection{}, false
		}
	} else {
		sqrtD := math.Sqrt(discriminant)
		root = (-b - sqrtD) / (2 * a)
		if root <= core.RayEpsilon {
			root = (-b + sqrtD) / (2 * a)
			if root <= core.RayEpsilon {
				return Intersection{}, false
			}
		}
	}

	if math.IsInf(root, 0) || math.IsNaN(root) {
		return Intersection{}, false
	}

	localPoint := local.At(root)
	return Intersection{
		Distance: root,
		Point:    ray.At(root),
		Normal:   s.Transform.ApplyNormal(localPoint),
		Material: s.Material,
	}, true
}

// BoundingBox returns the axis-aligned bounding box for this sphere
func (s *Sphere) BoundingBox() core.AABB {
	r := s.Radius
	var corners []core.Vec3
	for _, x := range []float64{-r, r} {
		for _, y := range []float64{-r, r} {
			for _, z := range []float64{-r, r} {
				corners = append(corners, s.Transform.ApplyPoint(core.NewVec3(x, y, z)))
			}
		}
	}
	return core.NewAABBFromPoints(corners...)
}
