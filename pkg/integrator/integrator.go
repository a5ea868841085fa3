package integrator

import (
	"github.com/df07/go-tile-raytracer/pkg/config"
	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/scene"
)

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// RayColor computes the radiance arriving along a camera ray
	RayColor(ray core.Ray, scene *scene.Scene, sampler core.Sampler) core.Vec3
}

// Config contains the options of the ray tracing integrator
type Config struct {
	Background core.Vec3 // Returned for camera rays that miss everything

	SoftShadows  bool
	LightSamples int // Shadow rays per light when SoftShadows is set

	UseGI     bool
	GIDepth   int // Maximum bounce depth
	GISamples int // Secondary ray requests per bounce

	UseAO      bool
	AOSamples  int
	AODistance float64
}

// ConfigFrom extracts the integrator options from a render configuration
func ConfigFrom(cfg config.Render) Config {
	return Config{
		Background:   cfg.Background,
		SoftShadows:  cfg.SoftShadows,
		LightSamples: cfg.LightSamples,
		UseGI:        cfg.UseGI,
		GIDepth:      cfg.GIDepth,
		GISamples:    cfg.GISamples,
		UseAO:        cfg.UseAO,
		AOSamples:    cfg.AOSamples,
		AODistance:   cfg.AODistance,
	}
}

// Deterministic reports whether the configuration never draws random numbers:
// no GI, no AO and hard shadows
func (c Config) Deterministic() bool {
	return !c.UseGI && !c.UseAO && !c.SoftShadows
}

// RayTracingIntegrator combines shadowed direct lighting, ambient occlusion and
// recursive secondary rays into one radiance estimate per camera ray
type RayTracingIntegrator struct {
	config Config
}

// NewRayTracingIntegrator creates an integrator. Sample counts below one are raised to one.
func NewRayTracingIntegrator(cfg Config) *RayTracingIntegrator {
	if cfg.LightSamples < 1 {
		cfg.LightSamples = 1
	}
	if cfg.GISamples < 1 {
		cfg.GISamples = 1
	}
	if cfg.AOSamples < 1 {
		cfg.AOSamples = 1
	}
	return &RayTracingIntegrator{config: cfg}
}

// Config returns the effective configuration
func (rt *RayTracingIntegrator) Config() Config {
	return rt.config
}

// RayColor computes the color for a camera ray
func (rt *RayTracingIntegrator) RayColor(ray core.Ray, s *scene.Scene, sampler core.Sampler) core.Vec3 {
	return rt.trace(ray, s, sampler, 0)
}

func (rt *RayTracingIntegrator) trace(ray core.Ray, s *scene.Scene, sampler core.Sampler, depth int) core.Vec3 {
	hit, isHit := s.ClosestHit(ray)
	if !isHit {
		// Only camera rays see the background; lost secondary rays carry nothing
		if depth == 0 {
			return rt.config.Background
		}
		return core.Vec3{}
	}
	if hit.Material == nil {
		return core.Vec3{}
	}

	color := rt.directLighting(ray, hit.Point, hit.Normal, hit.Material, s, sampler)

	if !rt.config.UseGI || depth >= rt.config.GIDepth {
		return color
	}

	mat := hit.Material
	var gi core.Vec3
	for i := 0; i < rt.config.GISamples; i++ {
		if refracted, ok := mat.Refract(hit.Point, hit.Normal, ray.Direction); ok {
			gi = gi.Add(rt.trace(refracted, s, sampler, depth+1).Multiply(mat.Weight()))
		}
		if scattered, ok := mat.Scatter(hit.Point, hit.Normal, ray.Direction, sampler); ok {
			gi = gi.Add(rt.trace(scattered, s, sampler, depth+1).Multiply(mat.Weight()))
		}
	}

	return color.Add(gi.Multiply(1.0 / float64(rt.config.GISamples)))
}
