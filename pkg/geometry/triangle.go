package geometry

import (
	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/material"
)

// parallelEpsilon bounds the Möller–Trumbore determinant below which the ray is treated as parallel
const parallelEpsilon = 1e-9

// maxDistance is the far limit used for bounding-box early outs
const maxDistance = 1e12

// Triangle represents a single triangle with per-vertex normals
type Triangle struct {
	V0, V1, V2 core.Vec3 // The three vertices
	N0, N1, N2 core.Vec3 // Vertex normals, interpolated across the face
	Material   *material.Material

	normal core.Vec3 // Cached face normal
	bbox   core.AABB // Cached bounding box
}

// NewTriangle creates a flat-shaded triangle; all vertex normals equal the face normal
func NewTriangle(v0, v1, v2 core.Vec3, material *material.Material) *Triangle {
	n := v1.Subtract(v0).Cross(v2.Subtract(v0)).Normalize()
	return NewTriangleWithNormals(v0, v1, v2, n, n, n, material)
}

// NewTriangleWithNormals creates a smooth-shaded triangle
func NewTriangleWithNormals(v0, v1, v2, n0, n1, n2 core.Vec3, material *material.Material) *Triangle {
	return &Triangle{
		V0:       v0,
		V1:       v1,
		V2:       v2,
		N0:       n0.Normalize(),
		N1:       n1.Normalize(),
		N2:       n2.Normalize(),
		Material: material,
		normal:   v1.Subtract(v0).Cross(v2.Subtract(v0)).Normalize(),
		bbox:     core.NewAABBFromPoints(v0, v1, v2),
	}
}

// Hit tests if a ray intersects with the triangle using the Möller-Trumbore algorithm
func (t *Triangle) Hit(ray core.Ray) (Intersection, bool) {
	edge1 := t.V1.Subtract(t.V0)
	edge2 := t.V2.Subtract(t.V0)

	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)

	// Ray lies in (or parallel to) the plane of the triangle
	if a > -parallelEpsilon && a < parallelEpsilon {
		return Intersection{}, false
	}

	f := 1.0 / a
	s := ray.Origin.Subtract(t.V0)
	u := f * s.Dot(h)
	if u < 0.0 || u > 1.0 {
		return Intersection{}, false
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)
	if v < 0.0 || u+v > 1.0 {
		return Intersection{}, false
	}

	distance := f * edge2.Dot(q)
	if distance <= core.RayEpsilon {
		return Intersection{}, false
	}

	normal := t.N0.Multiply(1 - u - v).Add(t.N1.Multiply(u)).Add(t.N2.Multiply(v)).Normalize()
	if normal.IsZero() {
		normal = t.normal
	}

	return Intersection{
		Distance: distance,
		Point:    ray.At(distance),
		Normal:   normal,
		Material: t.Material,
	}, true
}

// BoundingBox returns the axis-aligned bounding box for this triangle
func (t *Triangle) BoundingBox() core.AABB {
	return t.bbox
}
