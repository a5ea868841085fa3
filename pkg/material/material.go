package material

import (
	"fmt"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/lights"
)

// Kind identifies the shading model of a material
type Kind int

const (
	KindEmissive Kind = iota
	KindLambert
	KindReflective
	KindRefractive
	KindUnlit
)

// String returns the lowercase name of the kind
func (k Kind) String() string {
	switch k {
	case KindEmissive:
		return "emissive"
	case KindLambert:
		return "lambert"
	case KindReflective:
		return "reflective"
	case KindRefractive:
		return "refractive"
	case KindUnlit:
		return "unlit"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Material is a closed set of shading models selected by Kind. Only the fields
// relevant to the kind are read. Materials are shared by pointer between
// primitives and must not be modified once rendering starts.
type Material struct {
	Kind Kind

	Albedo    core.Vec3 // Diffuse or flat color
	Specular  core.Vec3 // Phong specular color (reflective)
	Ambient   core.Vec3 // Phong ambient color (reflective)
	Shininess float64   // Phong exponent (reflective)
	Roughness float64   // 0 = perfect mirror, 1 = fully diffuse (reflective)
	Metallic  bool      // Drops ambient and diffuse terms (reflective)

	IOR          float64 // Index of refraction (refractive)
	Transparency float64 // Energy weight applied to secondary rays
}

// DirectLighting returns the radiance the material sends back along viewDir.
// viewDir is the direction of the incoming ray, pointing toward the surface.
func (m *Material) DirectLighting(point, normal, viewDir core.Vec3, lightList []*lights.Light) core.Vec3 {
	switch m.Kind {
	case KindEmissive, KindUnlit:
		return m.Albedo
	case KindLambert:
		return m.lambertDirect(point, normal, lightList)
	case KindReflective:
		return m.phongDirect(point, normal, viewDir, lightList)
	case KindRefractive:
		return core.Vec3{}
	default:
		return core.Vec3{}
	}
}

// Scatter returns the reflected or diffusely scattered secondary ray, if the material produces one
func (m *Material) Scatter(point, normal, viewDir core.Vec3, sampler core.Sampler) (core.Ray, bool) {
	switch m.Kind {
	case KindEmissive:
		return m.emissiveScatter(point, normal, sampler), true
	case KindLambert:
		return m.lambertScatter(point, normal, sampler), true
	case KindReflective:
		return m.phongScatter(point, normal, viewDir, sampler), true
	case KindRefractive, KindUnlit:
		return core.Ray{}, false
	default:
		return core.Ray{}, false
	}
}

// Refract returns the transmitted ray for refractive materials. Under total
// internal reflection the mirror ray is returned instead.
func (m *Material) Refract(point, normal, incoming core.Vec3) (core.Ray, bool) {
	switch m.Kind {
	case KindRefractive:
		return m.dielectricRefract(point, normal, incoming), true
	default:
		return core.Ray{}, false
	}
}

// Weight returns the energy weight applied to radiance gathered along secondary rays
func (m *Material) Weight() float64 {
	return m.Transparency
}

// offsetRay builds a ray whose origin is pushed off the surface along dir to avoid self-intersection
func offsetRay(point, offsetDir, direction core.Vec3) core.Ray {
	return core.NewRay(point.Add(offsetDir.Multiply(core.RayEpsilon)), direction)
}
