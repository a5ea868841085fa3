package material

import (
	"math"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/lights"
)

// NewLambert creates a diffuse material
func NewLambert(albedo core.Vec3) *Material {
	return &Material{Kind: KindLambert, Albedo: albedo, Transparency: 1}
}

// lambertDirect sums max(0, N·L) · power / d² · albedo over every light
func (m *Material) lambertDirect(point, normal core.Vec3, lightList []*lights.Light) core.Vec3 {
	var color core.Vec3
	for _, light := range lightList {
		inc := light.Incident(point)
		if inc.Distance == 0 {
			continue
		}
		cosTheta := math.Max(0, normal.Dot(inc.Direction))
		falloff := 1.0 / (inc.Distance * inc.Distance)
		color = color.Add(m.Albedo.MultiplyVec(inc.Power).Multiply(cosTheta * falloff))
	}
	return color
}

// lambertScatter picks a cosine-weighted direction above the surface
func (m *Material) lambertScatter(point, normal core.Vec3, sampler core.Sampler) core.Ray {
	direction := core.SampleCosineHemisphere(normal, sampler.Get2D())
	return offsetRay(point, normal, direction)
}
