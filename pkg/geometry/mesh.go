package geometry

import (
	"github.com/df07/go-tile-raytracer/pkg/core"
)

// Mesh groups triangles, typically produced by mesh import, behind a cached bound
type Mesh struct {
	Triangles []*Triangle
	bbox      core.AABB
}

// NewMesh creates a mesh from triangles already placed in world space
func NewMesh(triangles []*Triangle) *Mesh {
	m := &Mesh{Triangles: triangles}
	for i, tri := range triangles {
		if i == 0 {
			m.bbox = tri.BoundingBox()
			continue
		}
		m.bbox = m.bbox.Union(tri.BoundingBox())
	}
	return m
}

// Hit returns the closest triangle hit. The bounding box rejects rays that cannot reach any triangle.
func (m *Mesh) Hit(ray core.Ray) (Intersection, bool) {
	if len(m.Triangles) == 0 || !m.bbox.Hit(ray, core.RayEpsilon, maxDistance) {
		return Intersection{}, false
	}

	var closest Intersection
	found := false
	for _, tri := range m.Triangles {
		if hit, ok := tri.Hit(ray); ok && (!found || hit.Distance < closest.Distance) {
			closest = hit
			found = true
		}
	}
	return closest, found
}

// BoundingBox returns the bound of every triangle
func (m *Mesh) BoundingBox() core.AABB {
	return m.bbox
}
