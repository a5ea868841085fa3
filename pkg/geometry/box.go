package geometry

import (
	"math"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/material"
)

// Box represents an axis-aligned box
type Box struct {
	Min, Max core.Vec3
	Material *material.Material
}

// NewBox creates a box from two opposite corners in any order
func NewBox(a, b core.Vec3, material *material.Material) *Box {
	bounds := core.NewAABBFromPoints(a, b)
	return &Box{Min: bounds.Min, Max: bounds.Max, Material: material}
}

// NewCenteredBox creates a box from its center and half extents
func NewCenteredBox(center, halfSize core.Vec3, material *material.Material) *Box {
	return NewBox(center.Subtract(halfSize), center.Add(halfSize), material)
}

// Hit intersects the ray with the box using the slab method.
// Rays starting inside the box hit the exit face.
func (b *Box) Hit(ray core.Ray) (Intersection, bool) {
	tNear, tFar, ok := b.BoundingBox().Slab(ray)
	if !ok {
		return Intersection{}, false
	}

	t := tNear
	if t <= core.RayEpsilon {
		t = tFar
	}
	if t <= core.RayEpsilon || math.IsInf(t, 0) {
		return Intersection{}, false
	}

	point := ray.At(t)
	return Intersection{
		Distance: t,
		Point:    point,
		Normal:   b.faceNormal(point),
		Material: b.Material,
	}, true
}

// faceNormal picks the bounding plane closest to the point
func (b *Box) faceNormal(p core.Vec3) core.Vec3 {
	faces := []struct {
		distance float64
		normal   core.Vec3
	}{
		{math.Abs(p.X - b.Min.X), core.NewVec3(-1, 0, 0)},
		{math.Abs(p.X - b.Max.X), core.NewVec3(1, 0, 0)},
		{math.Abs(p.Y - b.Min.Y), core.NewVec3(0, -1, 0)},
		{math.Abs(p.Y - b.Max.Y), core.NewVec3(0, 1, 0)},
		{math.Abs(p.Z - b.Min.Z), core.NewVec3(0, 0, -1)},
		{math.Abs(p.Z - b.Max.Z), core.NewVec3(0, 0, 1)},
	}

	best := faces[0]
	for _, face := range faces[1:] {
		if face.distance < best.distance {
			best = face
		}
	}
	return best.normal
}

// BoundingBox returns the box itself
func (b *Box) BoundingBox() core.AABB {
	return core.NewAABB(b.Min, b.Max)
}
