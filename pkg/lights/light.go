package lights

import (
	"math"

	"github.com/df07/go-tile-raytracer/pkg/core"
)

// LightType distinguishes the supported light shapes
type LightType string

const (
	LightTypePoint LightType = "point"
	LightTypeArea  LightType = "area"
)

// Light is a point or rectangular area light. Lights are built once during
// scene setup and shared read-only by every worker.
type Light struct {
	Type      LightType
	Position  core.Vec3 // Center of the light
	Color     core.Vec3
	Intensity float64
	Radius    float64   // Jitter radius used by soft shadows (point lights)
	Size      core.Vec2 // Full width and height (area lights)
	Direction core.Vec3 // Emission direction (area lights)

	tangent   core.Vec3
	bitangent core.Vec3
}

// Incidence describes how a light reaches a shading point
type Incidence struct {
	Direction core.Vec3 // Unit vector from the shading point toward the light
	Distance  float64
	Power     core.Vec3 // Color · Intensity, before any distance falloff
}

// NewPointLight creates a point light with a soft-shadow jitter radius
func NewPointLight(position, color core.Vec3, intensity, radius float64) *Light {
	return &Light{
		Type:      LightTypePoint,
		Position:  position,
		Color:     color,
		Intensity: intensity,
		Radius:    radius,
	}
}

// NewRectLight creates a rectangular area light centered at position and facing direction
func NewRectLight(position, color core.Vec3, intensity float64, size core.Vec2, direction core.Vec3) *Light {
	direction = direction.Normalize()
	tangent, bitangent := core.TangentBasis(direction)
	return &Light{
		Type:      LightTypeArea,
		Position:  position,
		Color:     color,
		Intensity: intensity,
		Radius:    1,
		Size:      size,
		Direction: direction,
		tangent:   tangent,
		bitangent: bitangent,
	}
}

// Incident returns the direction, distance and unattenuated power of the light as seen from point.
// Area lights only emit into the hemisphere they face.
func (l *Light) Incident(point core.Vec3) Incidence {
	toLight := l.Position.Subtract(point)
	distance := toLight.Length()
	if distance == 0 {
		return Incidence{}
	}
	direction := toLight.Multiply(1.0 / distance)

	power := l.Color.Multiply(l.Intensity)
	if l.Type == LightTypeArea {
		power = power.Multiply(math.Max(0, -l.Direction.Dot(direction)))
	}

	return Incidence{Direction: direction, Distance: distance, Power: power}
}

// Jitter returns a randomly perturbed light position for soft shadow sampling.
// Point lights are offset independently per axis by up to Radius; area lights
// return a uniform point on their rectangle.
func (l *Light) Jitter(sampler core.Sampler) core.Vec3 {
	switch l.Type {
	case LightTypeArea:
		s := sampler.Get2D()
		return l.Position.
			Add(l.tangent.Multiply((s.X - 0.5) * l.Size.X)).
			Add(l.bitangent.Multiply((s.Y - 0.5) * l.Size.Y))
	default:
		r := sampler.Get3D()
		return l.Position.Add(core.NewVec3(
			(2*r.X-1)*l.Radius,
			(2*r.Y-1)*l.Radius,
			(2*r.Z-1)*l.Radius,
		))
	}
}
