package geometry

import (
	"math"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/material"
)

// Plane represents a bounded rectangle through the origin of its object space.
// Scale holds the half extents along the two tangents derived from the normal.
type Plane struct {
	Transform core.Transform
	Normal    core.Vec3 // Object-space normal
	Scale     core.Vec2 // Half extents along the tangent basis
	Material  *material.Material

	tangent     core.Vec3
	bitangent   core.Vec3
	worldNormal core.Vec3
}

// NewPlane creates a bounded plane
func NewPlane(transform core.Transform, normal core.Vec3, scale core.Vec2, material *material.Material) *Plane {
	normal = normal.Normalize()
	tangent, bitangent := core.TangentBasis(normal)
	return &Plane{
		Transform:   transform,
		Normal:      normal,
		Scale:       scale,
		Material:    material,
		tangent:     tangent,
		bitangent:   bitangent,
		worldNormal: transform.ApplyNormal(normal),
	}
}

// NewPlaneAt creates an untransformed-orientation plane centered at point
func NewPlaneAt(point, normal core.Vec3, scale core.Vec2, material *material.Material) *Plane {
	return NewPlane(core.NewTranslation(point), normal, scale, material)
}

// Hit tests if a ray intersects with the plane inside its rectangular extent
func (p *Plane) Hit(ray core.Ray) (Intersection, bool) {
	if !p.Transform.Invertible() {
		return Intersection{}, false
	}

	local := p.Transform.InverseRay(ray)

	// Ray parallel to the plane
	denominator := local.Direction.Dot(p.Normal)
	if math.Abs(denominator) <= core.RayEpsilon {
		return Intersection{}, false
	}

	t := -local.Origin.Dot(p.Normal) / denominator
	if t < 0 || t <= core.RayEpsilon || math.IsInf(t, 0) {
		return Intersection{}, false
	}

	localPoint := local.At(t)
	if math.Abs(localPoint.Dot(p.tangent)) > p.Scale.X || math.Abs(localPoint.Dot(p.bitangent)) > p.Scale.Y {
		return Intersection{}, false
	}

	return Intersection{
		Distance: t,
		Point:    ray.At(t),
		Normal:   p.worldNormal,
		Material: p.Material,
	}, true
}

// BoundingBox returns the bound of the four transformed corners
func (p *Plane) BoundingBox() core.AABB {
	u := p.tangent.Multiply(p.Scale.X)
	v := p.bitangent.Multiply(p.Scale.Y)
	return core.NewAABBFromPoints(
		p.Transform.ApplyPoint(u.Add(v)),
		p.Transform.ApplyPoint(u.Subtract(v)),
		p.Transform.ApplyPoint(u.Negate().Add(v)),
		p.Transform.ApplyPoint(u.Negate().Subtract(v)),
	)
}
