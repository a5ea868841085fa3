package material

import (
	"github.com/df07/go-tile-raytracer/pkg/core"
)

// NewEmissive creates a self-lit material. Its secondary ray leaves from
// behind the surface so it does not re-hit the emitter from inside.
func NewEmissive(emission core.Vec3) *Material {
	return &Material{Kind: KindEmissive, Albedo: emission, Transparency: 1}
}

// NewUnlit creates a flat-colored material that terminates every path
func NewUnlit(color core.Vec3) *Material {
	return &Material{Kind: KindUnlit, Albedo: color, Transparency: 1}
}

func (m *Material) emissiveScatter(point, normal core.Vec3, sampler core.Sampler) core.Ray {
	direction := core.SampleCosineHemisphere(normal, sampler.Get2D())
	return offsetRay(point, normal.Negate(), direction)
}
