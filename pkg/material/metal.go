package material

import (
	"math"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/lights"
)

// NewReflective creates a Phong material whose secondary ray blends a mirror
// reflection with a random hemisphere direction by roughness
func NewReflective(diffuse, specular, ambient core.Vec3, shininess, roughness float64) *Material {
	return &Material{
		Kind:         KindReflective,
		Albedo:       diffuse,
		Specular:     specular,
		Ambient:      ambient,
		Shininess:    shininess,
		Roughness:    clamp01(roughness),
		Transparency: 1,
	}
}

// NewMetallic creates a reflective material with no diffuse or ambient response
func NewMetallic(color, specular core.Vec3, shininess, roughness float64) *Material {
	m := NewReflective(color, specular, core.Vec3{}, shininess, roughness)
	m.Metallic = true
	return m
}

// NewMirror creates a perfect metallic mirror
func NewMirror(color core.Vec3) *Material {
	return NewMetallic(color, core.Vec3{}, 1, 0)
}

// phongDirect evaluates ambient · diffuse + Σ (diffuse · N·L + specular · (R·V)^n) · power / d.
// Lights below the surface contribute nothing.
func (m *Material) phongDirect(point, normal, viewDir core.Vec3, lightList []*lights.Light) core.Vec3 {
	var color core.Vec3
	if !m.Metallic {
		color = m.Ambient.MultiplyVec(m.Albedo)
	}

	for _, light := range lightList {
		inc := light.Incident(point)
		if inc.Distance == 0 {
			continue
		}

		nDotL := normal.Dot(inc.Direction)
		if nDotL < 0 {
			continue
		}

		var diffuse core.Vec3
		if !m.Metallic {
			diffuse = m.Albedo.Multiply(nDotL)
		}

		reflected := core.Reflect(inc.Direction, normal)
		kS := math.Pow(math.Max(0, reflected.Dot(viewDir)), m.Shininess)
		specular := m.Specular.Multiply(kS)

		color = color.Add(diffuse.Add(specular).MultiplyVec(inc.Power).Multiply(1.0 / inc.Distance))
	}

	return color
}

// phongScatter blends the mirror direction with a random hemisphere direction
func (m *Material) phongScatter(point, normal, viewDir core.Vec3, sampler core.Sampler) core.Ray {
	reflected := core.Reflect(viewDir, normal)

	direction := reflected
	if m.Roughness > 0 {
		random := core.SampleUniformHemisphere(normal, sampler.Get2D())
		direction = reflected.Multiply(1 - m.Roughness).Add(random.Multiply(m.Roughness))
	}
	if direction.LengthSquared() < 1e-24 {
		direction = normal
	}

	return offsetRay(point, normal, direction)
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
