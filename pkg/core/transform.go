package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// singularDeterminant is the determinant magnitude below which a transform is treated as non-invertible
const singularDeterminant = 1e-12

// Transform is an affine object-to-world matrix composed as T · Rz · Ry · Rx · S.
// The inverse and the inverse-transpose are computed once at construction.
type Transform struct {
	Translation Vec3 // World-space translation
	Rotation    Vec3 // Euler angles in degrees, applied X then Y then Z
	Scale       Vec3 // Non-uniform scale

	matrix     mgl64.Mat4
	inverse    mgl64.Mat4
	normal     mgl64.Mat4 // inverse-transpose, for normals
	invertible bool
}

// NewTransform composes a transform from translation, rotation in degrees and scale
func NewTransform(translation, rotation, scale Vec3) Transform {
	matrix := mgl64.Translate3D(translation.X, translation.Y, translation.Z).
		Mul4(mgl64.HomogRotate3DZ(mgl64.DegToRad(rotation.Z))).
		Mul4(mgl64.HomogRotate3DY(mgl64.DegToRad(rotation.Y))).
		Mul4(mgl64.HomogRotate3DX(mgl64.DegToRad(rotation.X))).
		Mul4(mgl64.Scale3D(scale.X, scale.Y, scale.Z))

	t := Transform{
		Translation: translation,
		Rotation:    rotation,
		Scale:       scale,
		matrix:      matrix,
	}

	if math.Abs(matrix.Det()) < singularDeterminant {
		return t
	}

	t.inverse = matrix.Inv()
	t.normal = t.inverse.Transpose()
	t.invertible = true
	return t
}

// NewTranslation creates a pure translation
func NewTranslation(translation Vec3) Transform {
	return NewTransform(translation, Vec3{}, NewVec3(1, 1, 1))
}

// IdentityTransform returns the identity transform
func IdentityTransform() Transform {
	return NewTranslation(Vec3{})
}

// Invertible reports whether the matrix has a usable inverse.
// Primitives owning a singular transform never report hits.
func (t Transform) Invertible() bool {
	return t.invertible
}

// ApplyPoint maps an object-space point to world space
func (t Transform) ApplyPoint(p Vec3) Vec3 {
	return fromVec4(t.matrix.Mul4x1(mgl64.Vec4{p.X, p.Y, p.Z, 1}))
}

// ApplyVector maps an object-space direction to world space (ignores translation)
func (t Transform) ApplyVector(v Vec3) Vec3 {
	return fromVec4(t.matrix.Mul4x1(mgl64.Vec4{v.X, v.Y, v.Z, 0}))
}

// ApplyNormal maps an object-space normal to world space with the inverse-transpose and renormalizes it
func (t Transform) ApplyNormal(n Vec3) Vec3 {
	return fromVec4(t.normal.Mul4x1(mgl64.Vec4{n.X, n.Y, n.Z, 0})).Normalize()
}

// InversePoint maps a world-space point to object space
func (t Transform) InversePoint(p Vec3) Vec3 {
	return fromVec4(t.inverse.Mul4x1(mgl64.Vec4{p.X, p.Y, p.Z, 1}))
}

// InverseVector maps a world-space direction to object space without renormalizing,
// so ray parameters stay comparable across spaces
func (t Transform) InverseVector(v Vec3) Vec3 {
	return fromVec4(t.inverse.Mul4x1(mgl64.Vec4{v.X, v.Y, v.Z, 0}))
}

// InverseRay maps a world-space ray to object space. The direction is not renormalized.
func (t Transform) InverseRay(r Ray) Ray {
	return Ray{Origin: t.InversePoint(r.Origin), Direction: t.InverseVector(r.Direction)}
}

func fromVec4(v mgl64.Vec4) Vec3 {
	return Vec3{X: v[0], Y: v[1], Z: v[2]}
}
