package geometry

import (
	"math"

	"github.com/df07/go-tile-raytracer/pkg/core"
)

// Camera generates primary rays for normalized image coordinates.
// u runs left to right and v bottom to top, both in [0, 1].
type Camera interface {
	GetRay(u, v float64) core.Ray
	Origin() core.Vec3

	isCamera()
}

// viewBasis builds the camera frame. w points from lookAt back to the origin.
func viewBasis(origin, lookAt, up core.Vec3) (right, upVec, w core.Vec3) {
	w = origin.Subtract(lookAt).Normalize()
	right = up.Cross(w).Normalize()
	upVec = w.Cross(right).Normalize()
	return right, upVec, w
}

// PerspectiveCamera is a pinhole camera with a vertical field of view
type PerspectiveCamera struct {
	origin          core.Vec3
	lowerLeftCorner core.Vec3
	horizontal      core.Vec3
	vertical        core.Vec3
}

// NewPerspectiveCamera creates a pinhole camera looking from origin toward lookAt.
// fovDegrees is the vertical field of view and aspect is width / height.
func NewPerspectiveCamera(origin, lookAt, up core.Vec3, aspect, fovDegrees float64) *PerspectiveCamera {
	theta := fovDegrees * math.Pi / 180
	halfHeight := math.Tan(theta / 2)
	halfWidth := aspect * halfHeight

	right, upVec, w := viewBasis(origin, lookAt, up)

	return &PerspectiveCamera{
		origin: origin,
		lowerLeftCorner: origin.
			Subtract(right.Multiply(halfWidth)).
			Subtract(upVec.Multiply(halfHeight)).
			Subtract(w),
		horizontal: right.Multiply(2 * halfWidth),
		vertical:   upVec.Multiply(2 * halfHeight),
	}
}

// GetRay generates a ray through the image plane point (u, v)
func (c *PerspectiveCamera) GetRay(u, v float64) core.Ray {
	direction := c.lowerLeftCorner.
		Add(c.horizontal.Multiply(u)).
		Add(c.vertical.Multiply(v)).
		Subtract(c.origin)

	return core.NewRay(c.origin, direction)
}

// Origin returns the eye position
func (c *PerspectiveCamera) Origin() core.Vec3 {
	return c.origin
}

// OrthographicCamera casts parallel rays from a rectangle around the origin.
// scale is the half height of the view rectangle in world units.
type OrthographicCamera struct {
	origin     core.Vec3
	lowerLeft  core.Vec3
	horizontal core.Vec3
	vertical   core.Vec3
	direction  core.Vec3
}

// NewOrthographicCamera creates a parallel-projection camera
func NewOrthographicCamera(origin, lookAt, up core.Vec3, aspect, scale float64) *OrthographicCamera {
	right, upVec, w := viewBasis(origin, lookAt, up)
	halfWidth := aspect * scale

	return &OrthographicCamera{
		origin: origin,
		lowerLeft: origin.
			Subtract(right.Multiply(halfWidth)).
			Subtract(upVec.Multiply(scale)),
		horizontal: right.Multiply(2 * halfWidth),
		vertical:   upVec.Multiply(2 * scale),
		direction:  w.Negate(),
	}
}

// GetRay generates a ray starting at the view rectangle point (u, v)
func (c *OrthographicCamera) GetRay(u, v float64) core.Ray {
	origin := c.lowerLeft.
		Add(c.horizontal.Multiply(u)).
		Add(c.vertical.Multiply(v))
	return core.NewRay(origin, c.direction)
}

// Origin returns the center of the view rectangle
func (c *OrthographicCamera) Origin() core.Vec3 {
	return c.origin
}

func (*PerspectiveCamera) isCamera()  {}
func (*OrthographicCamera) isCamera() {}
