package integrator

import (
	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/material"
	"github.com/df07/go-tile-raytracer/pkg/scene"
)

// directLighting evaluates the material against the scene lights, dropping the
// whole contribution when the point is shadowed. The result is darkened by
// ambient occlusion.
func (rt *RayTracingIntegrator) directLighting(ray core.Ray, point, normal core.Vec3, mat *material.Material, s *scene.Scene, sampler core.Sampler) core.Vec3 {
	var color core.Vec3
	if !rt.InShadow(s, point, normal, sampler) {
		color = mat.DirectLighting(point, normal, ray.Direction, s.Lights)
	}

	if rt.config.UseAO {
		color = color.Multiply(rt.AmbientOcclusion(s, point, normal, sampler))
	}
	return color
}

// AmbientOcclusion casts AOSamples random hemisphere rays and returns
// 1 - occluded/AOSamples, where a ray is occluded when it hits something
// closer than AODistance
func (rt *RayTracingIntegrator) AmbientOcclusion(s *scene.Scene, point, normal core.Vec3, sampler core.Sampler) float64 {
	origin := point.Add(normal.Multiply(core.RayEpsilon))

	occluded := 0
	for i := 0; i < rt.config.AOSamples; i++ {
		direction := core.SampleUniformHemisphere(normal, sampler.Get2D())
		if hit, ok := s.ClosestHit(core.NewRay(origin, direction)); ok && hit.Distance < rt.config.AODistance {
			occluded++
		}
	}

	return 1 - float64(occluded)/float64(rt.config.AOSamples)
}
