package integrator

import (
	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/lights"
	"github.com/df07/go-tile-raytracer/pkg/scene"
)

// InShadow reports whether any light is blocked from the shading point.
// Hard shadows test the light center once. Soft shadows test LightSamples
// jittered positions and count the light as blocked when more than half are
// occluded. The first blocked light decides.
func (rt *RayTracingIntegrator) InShadow(s *scene.Scene, point, normal core.Vec3, sampler core.Sampler) bool {
	origin := point.Add(normal.Multiply(core.ShadowEpsilon))

	for _, light := range s.Lights {
		if rt.lightBlocked(s, light, point, origin, sampler) {
			return true
		}
	}
	return false
}

func (rt *RayTracingIntegrator) lightBlocked(s *scene.Scene, light *lights.Light, point, origin core.Vec3, sampler core.Sampler) bool {
	if !rt.config.SoftShadows {
		return Occluded(s, point, origin, light.Position)
	}

	samples := rt.config.LightSamples
	hits := 0
	for i := 0; i < samples; i++ {
		if Occluded(s, point, origin, light.Jitter(sampler)) {
			hits++
		}
	}
	return hits > samples/2
}

// Occluded casts a shadow ray from origin toward target. The ray is blocked when
// the nearest hit is closer than the point-to-target distance minus ShadowEpsilon.
func Occluded(s *scene.Scene, point, origin, target core.Vec3) bool {
	toLight := target.Subtract(point)
	distance := toLight.Length()
	if distance == 0 {
		return false
	}

	hit, ok := s.ClosestHit(core.NewRay(origin, toLight))
	return ok && hit.Distance < distance-core.ShadowEpsilon
}
