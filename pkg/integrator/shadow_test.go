package integrator

import (
	"testing"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/geometry"
	"github.com/df07/go-tile-raytracer/pkg/lights"
	"github.com/df07/go-tile-raytracer/pkg/material"
)

// scriptedSampler replays fixed values so jitter positions are known
type scriptedSampler struct {
	values []core.Vec3
	next   int
}

func (s *scriptedSampler) Get3D() core.Vec3 {
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}

func (s *scriptedSampler) Get2D() core.Vec2 {
	v := s.Get3D()
	return core.NewVec2(v.X, v.Y)
}

func (s *scriptedSampler) Get1D() float64 {
	return s.Get3D().X
}

func TestInShadow_HardMatchesSingleSoftSampleAtZeroRadius(t *testing.T) {
	mat := material.NewLambert(core.NewVec3(1, 1, 1))
	shapes := []geometry.Shape{
		geometry.NewSphere(core.NewVec3(0.5, 1.5, 0), 0.4, mat),
		geometry.NewCenteredBox(core.NewVec3(-1, 2, 0.5), core.NewVec3(0.3, 0.1, 0.3), mat),
		geometry.NewTriangle(core.NewVec3(1, 3, -1), core.NewVec3(2, 3, 1), core.NewVec3(0, 3, 1), mat),
	}
	s := newTestScene(t, shapes, lights.NewPointLight(core.NewVec3(0, 5, 0), core.NewVec3(1, 1, 1), 10, 0))

	hardCfg := deterministicConfig()
	softCfg := deterministicConfig()
	softCfg.SoftShadows = true
	softCfg.LightSamples = 1
	hard := NewRayTracingIntegrator(hardCfg)
	soft := NewRayTracingIntegrator(softCfg)

	points := core.NewSeededSampler(11)
	normal := core.NewVec3(0, 1, 0)
	shadowedCount := 0
	for i := 0; i < 400; i++ {
		p := core.NewVec3(points.Get1D()*6-3, 0, points.Get1D()*6-3)

		h := hard.InShadow(s, p, normal, core.NewSeededSampler(int64(i)))
		sf := soft.InShadow(s, p, normal, core.NewSeededSampler(int64(i)))
		if h != sf {
			t.Fatalf("Point %v: hard=%v soft=%v", p, h, sf)
		}
		if h {
			shadowedCount++
		}
	}

	if shadowedCount == 0 || shadowedCount == 400 {
		t.Errorf("Expected a mix of lit and shadowed points, got %d shadowed", shadowedCount)
	}
}

func TestInShadow_SoftMajorityVote(t *testing.T) {
	// Box over the -X half blocks light samples jittered toward -X
	blocker := geometry.NewBox(core.NewVec3(-5, 2, -5), core.NewVec3(-0.1, 3, 5), material.NewLambert(core.NewVec3(1, 1, 1)))
	s := newTestScene(t, []geometry.Shape{blocker}, lights.NewPointLight(core.NewVec3(0, 5, 0), core.NewVec3(1, 1, 1), 10, 1))

	blocked := core.NewVec3(0, 0.5, 0.5) // jitter x = -1
	free := core.NewVec3(1, 0.5, 0.5)    // jitter x = +1

	tests := []struct {
		name     string
		samples  int
		script   []core.Vec3
		expected bool
	}{
		{"two of three blocked", 3, []core.Vec3{blocked, blocked, free}, true},
		{"one of three blocked", 3, []core.Vec3{blocked, free, free}, false},
		{"exactly half blocked", 4, []core.Vec3{blocked, free, blocked, free}, false},
		{"three of four blocked", 4, []core.Vec3{blocked, blocked, free, blocked}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := deterministicConfig()
			cfg.SoftShadows = true
			cfg.LightSamples = tt.samples
			rt := NewRayTracingIntegrator(cfg)

			got := rt.InShadow(s, core.Vec3{}, core.NewVec3(0, 1, 0), &scriptedSampler{values: tt.script})
			if got != tt.expected {
				t.Errorf("Expected shadow=%v, got %v", tt.expected, got)
			}
		})
	}
}

func TestOccluded(t *testing.T) {
	mat := material.NewLambert(core.NewVec3(1, 1, 1))
	s := newTestScene(t, []geometry.Shape{geometry.NewSphere(core.NewVec3(0, 3, 0), 0.5, mat)})
	origin := core.NewVec3(0, core.ShadowEpsilon, 0)

	tests := []struct {
		name     string
		target   core.Vec3
		expected bool
	}{
		{"blocker before target", core.NewVec3(0, 5, 0), true},
		{"target before blocker", core.NewVec3(0, 2, 0), false},
		{"target just short of blocker", core.NewVec3(0, 2.45, 0), false},
		{"clear direction", core.NewVec3(5, 5, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Occluded(s, core.Vec3{}, origin, tt.target); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}
