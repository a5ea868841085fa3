package material

import (
	"math"

	"github.com/df07/go-tile-raytracer/pkg/core"
)

// NewRefractive creates a clear dielectric with the given index of refraction
func NewRefractive(ior float64) *Material {
	return &Material{Kind: KindRefractive, IOR: ior, Transparency: 1}
}

// dielectricRefract applies Snell's law at the boundary between air and the material.
// normal is the outward surface normal; the side is chosen from the sign of N·I.
func (m *Material) dielectricRefract(point, normal, incoming core.Vec3) core.Ray {
	i := incoming.Normalize()
	n := normal.Normalize()

	etaI, etaT := 1.0, m.IOR
	cosI := n.Dot(i)
	if cosI > 0 {
		// Exiting the medium
		n = n.Negate()
		etaI, etaT = etaT, etaI
	} else {
		cosI = -cosI
	}

	eta := etaI / etaT
	k := 1 - eta*eta*(1-cosI*cosI)
	if k < 0 {
		return offsetRay(point, n, core.Reflect(i, n))
	}

	transmitted := i.Multiply(eta).Add(n.Multiply(eta*cosI - math.Sqrt(k)))
	return offsetRay(point, n.Negate(), transmitted)
}
