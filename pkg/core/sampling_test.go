package core

import (
	"math"
	"math/rand"
	"testing"
)

func TestSeededSampler_Deterministic(t *testing.T) {
	s1 := NewSeededSampler(7)
	s2 := NewSeededSampler(7)

	for i := 0; i < 10; i++ {
		a, b := s1.Get3D(), s2.Get3D()
		if a != b {
			t.Fatalf("Sample %d differs: %v != %v", i, a, b)
		}
	}
}

func TestHemisphereSampling(t *testing.T) {
	normals := []Vec3{
		NewVec3(0, 1, 0),
		NewVec3(1, 0, 0),
		NewVec3(0, 0, -1),
		NewVec3(1, 1, 1).Normalize(),
	}

	samplers := []struct {
		name   string
		sample func(Vec3, Vec2) Vec3
	}{
		{"cosine", SampleCosineHemisphere},
		{"uniform", SampleUniformHemisphere},
	}

	sampler := NewRandomSampler(rand.New(rand.NewSource(42)))

	for _, s := range samplers {
		t.Run(s.name, func(t *testing.T) {
			for _, normal := range normals {
				for i := 0; i < 200; i++ {
					dir := s.sample(normal, sampler.Get2D())
					if math.Abs(dir.Length()-1) > 1e-9 {
						t.Fatalf("Direction %v is not unit length", dir)
					}
					if dir.Dot(normal) < -1e-9 {
						t.Fatalf("Direction %v lies below normal %v", dir, normal)
					}
				}
			}
		})
	}
}

func TestSampleOnUnitSphere(t *testing.T) {
	sampler := NewSeededSampler(3)
	for i := 0; i < 100; i++ {
		dir := SampleOnUnitSphere(sampler.Get2D())
		if math.Abs(dir.Length()-1) > 1e-9 {
			t.Fatalf("Direction %v is not unit length", dir)
		}
	}
}
