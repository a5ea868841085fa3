package integrator

import (
	"math"
	"testing"

	"github.com/df07/go-tile-raytracer/pkg/config"
	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/geometry"
	"github.com/df07/go-tile-raytracer/pkg/lights"
	"github.com/df07/go-tile-raytracer/pkg/material"
	"github.com/df07/go-tile-raytracer/pkg/scene"
)

func newTestScene(t *testing.T, shapes []geometry.Shape, lightList ...*lights.Light) *scene.Scene {
	t.Helper()
	s := scene.New()
	camera := geometry.NewPerspectiveCamera(core.NewVec3(0, 0, 5), core.Vec3{}, core.NewVec3(0, 1, 0), 1, 40)
	if err := s.AddCamera(camera); err != nil {
		t.Fatal(err)
	}
	for _, shape := range shapes {
		if err := s.AddObject(shape); err != nil {
			t.Fatal(err)
		}
	}
	for _, light := range lightList {
		if err := s.AddLight(light); err != nil {
			t.Fatal(err)
		}
	}
	s.Seal()
	return s
}

func deterministicConfig() Config {
	return Config{
		Background:   core.NewVec3(0.25, 0.5, 0.75),
		LightSamples: 1,
		GIDepth:      3,
		GISamples:    1,
		AOSamples:    1,
		AODistance:   1,
	}
}

func TestRayColor_Miss(t *testing.T) {
	cfg := deterministicConfig()
	cfg.UseGI = true
	rt := NewRayTracingIntegrator(cfg)

	mirror := material.NewMirror(core.NewVec3(1, 1, 1))
	s := newTestScene(t, []geometry.Shape{geometry.NewSphere(core.Vec3{}, 1, mirror)})
	sampler := core.NewSeededSampler(42)

	// Camera ray misses everything
	got := rt.RayColor(core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 1, 0)), s, sampler)
	if got != cfg.Background {
		t.Errorf("Expected background %v exactly, got %v", cfg.Background, got)
	}

	// Reflection off the mirror escapes: secondary misses are black
	got = rt.RayColor(core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1)), s, sampler)
	if !got.IsZero() {
		t.Errorf("Expected black for escaped reflection, got %v", got)
	}
}

func TestRayColor_LambertDirectAndShadow(t *testing.T) {
	rt := NewRayTracingIntegrator(deterministicConfig())
	white := material.NewLambert(core.NewVec3(1, 1, 1))
	floor := geometry.NewPlaneAt(core.Vec3{}, core.NewVec3(0, 1, 0), core.NewVec2(10, 10), white)
	light := lights.NewPointLight(core.NewVec3(0, 4, 0), core.NewVec3(1, 1, 1), 16, 0)

	lit := newTestScene(t, []geometry.Shape{floor}, light)
	blocker := geometry.NewCenteredBox(core.NewVec3(0, 2, 0), core.NewVec3(0.5, 0.1, 0.5), white)
	shadowed := newTestScene(t, []geometry.Shape{floor, blocker}, light)

	ray := core.NewRay(core.NewVec3(0, 1, 1), core.NewVec3(0, -1, -1))
	sampler := core.NewSeededSampler(1)

	// N·L = 1, d = 4: 16 / 16
	got := rt.RayColor(ray, lit, sampler)
	if !got.Equals(core.NewVec3(1, 1, 1), 1e-9) {
		t.Errorf("Expected (1,1,1), got %v", got)
	}

	got = rt.RayColor(ray, shadowed, sampler)
	if !got.IsZero() {
		t.Errorf("Expected black in shadow, got %v", got)
	}
}

func TestRayColor_AmbientComesOnlyFromPhong(t *testing.T) {
	renderCfg := config.Default()
	renderCfg.AmbientLight = core.NewVec3(0.1, 0.1, 0.1)
	renderCfg.SoftShadows = false
	renderCfg.UseGI = false
	renderCfg.UseAO = false
	rt := NewRayTracingIntegrator(ConfigFrom(renderCfg))

	albedo := core.NewVec3(0.5, 1, 0.25)
	phong := material.NewReflective(albedo, core.NewVec3(1, 1, 1), renderCfg.AmbientLight, 32, 1)
	lambert := material.NewLambert(albedo)
	light := lights.NewPointLight(core.NewVec3(0, 4, 0), core.NewVec3(1, 1, 1), 16, 0)
	blocker := geometry.NewCenteredBox(core.NewVec3(0, 2, 0), core.NewVec3(0.5, 0.1, 0.5), lambert)
	floorOf := func(m *material.Material) geometry.Shape {
		return geometry.NewPlaneAt(core.Vec3{}, core.NewVec3(0, 1, 0), core.NewVec2(10, 10), m)
	}

	tests := []struct {
		name     string
		s        *scene.Scene
		expected core.Vec3
	}{
		{"phong without lights counts ambient once", newTestScene(t, []geometry.Shape{floorOf(phong)}), renderCfg.AmbientLight.MultiplyVec(albedo)},
		{"lambert without lights is black", newTestScene(t, []geometry.Shape{floorOf(lambert)}), core.Vec3{}},
		{"shadowed lambert is black", newTestScene(t, []geometry.Shape{floorOf(lambert), blocker}, light), core.Vec3{}},
		{"shadowed phong is black", newTestScene(t, []geometry.Shape{floorOf(phong), blocker}, light), core.Vec3{}},
	}

	ray := core.NewRay(core.NewVec3(0, 1, 1), core.NewVec3(0, -1, -1))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rt.RayColor(ray, tt.s, core.NewSeededSampler(1))
			if got != tt.expected {
				t.Errorf("Expected exactly %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestRayColor_RefractionDepth(t *testing.T) {
	wallColor := core.NewVec3(0.2, 0.4, 0.6)
	wall := geometry.NewPlaneAt(core.NewVec3(0, 0, -5), core.NewVec3(0, 0, 1), core.NewVec2(10, 10), material.NewUnlit(wallColor))
	glass := geometry.NewSphere(core.Vec3{}, 1, material.NewRefractive(1.5))

	tests := []struct {
		name     string
		depth    int
		expected core.Vec3
	}{
		{"through both surfaces", 3, wallColor},
		{"stops inside the sphere", 1, core.Vec3{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := deterministicConfig()
			cfg.UseGI = true
			cfg.GIDepth = tt.depth
			rt := NewRayTracingIntegrator(cfg)

			s := newTestScene(t, []geometry.Shape{wall, glass})
			got := rt.RayColor(core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1)), s, core.NewSeededSampler(3))
			if !got.Equals(tt.expected, 1e-9) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestRayColor_GISamplesAverage(t *testing.T) {
	floorColor := core.NewVec3(0.3, 0.6, 0.9)
	floor := geometry.NewPlaneAt(core.NewVec3(0, -2, 0), core.NewVec3(0, 1, 0), core.NewVec2(20, 20), material.NewUnlit(floorColor))
	mirror := geometry.NewSphere(core.Vec3{}, 1, material.NewMirror(core.NewVec3(1, 1, 1)))
	s := newTestScene(t, []geometry.Shape{floor, mirror})

	// Hits the sphere at 45° below its equator, reflecting straight down
	target := core.NewVec3(0, -math.Sqrt2/2, math.Sqrt2/2)
	origin := target.Add(core.NewVec3(0, 0, 4))
	ray := core.NewRay(origin, target.Subtract(origin))

	for _, samples := range []int{1, 4} {
		cfg := deterministicConfig()
		cfg.UseGI = true
		cfg.GISamples = samples
		rt := NewRayTracingIntegrator(cfg)

		got := rt.RayColor(ray, s, core.NewSeededSampler(5))
		if !got.Equals(floorColor, 1e-9) {
			t.Errorf("GISamples=%d: expected floor color %v, got %v", samples, floorColor, got)
		}
	}
}

func TestAmbientOcclusion(t *testing.T) {
	cfg := deterministicConfig()
	cfg.UseAO = true
	cfg.AOSamples = 16
	cfg.AODistance = 1
	rt := NewRayTracingIntegrator(cfg)

	floorMat := material.NewLambert(core.NewVec3(1, 1, 1))
	ceiling := geometry.NewPlaneAt(core.NewVec3(0, 0.5, 0), core.NewVec3(0, -1, 0), core.NewVec2(100, 100), floorMat)
	farCeiling := geometry.NewPlaneAt(core.NewVec3(0, 5, 0), core.NewVec3(0, -1, 0), core.NewVec2(100, 100), floorMat)

	tests := []struct {
		name     string
		shapes   []geometry.Shape
		expected float64
	}{
		{"open sky", nil, 1},
		{"occluder beyond AO distance", []geometry.Shape{farCeiling}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestScene(t, tt.shapes)
			got := rt.AmbientOcclusion(s, core.Vec3{}, core.NewVec3(0, 1, 0), core.NewSeededSampler(9))
			if got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}

	// A close, wide ceiling within reach blocks all but the most grazing rays
	cfg.AODistance = 100
	rt = NewRayTracingIntegrator(cfg)
	s := newTestScene(t, []geometry.Shape{ceiling})
	got := rt.AmbientOcclusion(s, core.Vec3{}, core.NewVec3(0, 1, 0), core.NewSeededSampler(9))
	if got > 0.25 {
		t.Errorf("Expected heavy occlusion under a low ceiling, got %v", got)
	}
}

func TestConfig_Deterministic(t *testing.T) {
	tests := []struct {
		name     string
		modify   func(*Config)
		expected bool
	}{
		{"all off", func(c *Config) {}, true},
		{"gi", func(c *Config) { c.UseGI = true }, false},
		{"ao", func(c *Config) { c.UseAO = true }, false},
		{"soft shadows", func(c *Config) { c.SoftShadows = true }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := deterministicConfig()
			tt.modify(&cfg)
			if got := cfg.Deterministic(); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestConfigFrom(t *testing.T) {
	render := config.Default()
	render.UseAO = true
	render.AOSamples = 7

	cfg := ConfigFrom(render)
	if !cfg.UseAO || cfg.AOSamples != 7 || cfg.GIDepth != render.GIDepth || cfg.Background != render.Background {
		t.Errorf("Options not carried over: %+v", cfg)
	}
}

func TestNewRayTracingIntegrator_ClampsSampleCounts(t *testing.T) {
	rt := NewRayTracingIntegrator(Config{})
	cfg := rt.Config()
	if cfg.LightSamples != 1 || cfg.GISamples != 1 || cfg.AOSamples != 1 {
		t.Errorf("Expected sample counts raised to 1, got %+v", cfg)
	}
}
