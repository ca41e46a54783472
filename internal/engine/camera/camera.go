// Package camera provides the perspective camera and orbit controls.
package camera

import (
	gomath "math"

	"github.com/Faultbox/earthglow/pkg/math"
)

// Perspective is a pinhole camera looking at Target.
type Perspective struct {
	FovY   float32 // vertical field of view, degrees
	Aspect float32
	Near   float32
	Far    float32

	Position math.Vec3
	Target   math.Vec3
	Up       math.Vec3
}

// NewPerspective creates a camera at position looking at target.
func NewPerspective(fovY, aspect, near, far float32, position, target math.Vec3) *Perspective {
	return &Perspective{
		FovY:     fovY,
		Aspect:   aspect,
		Near:     near,
		Far:      far,
		Position: position,
		Target:   target,
		Up:       math.V3(0, 1, 0),
	}
}

// SetAspect updates the aspect ratio from a viewport size. Degenerate sizes
// are ignored.
func (c *Perspective) SetAspect(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.Aspect = float32(width) / float32(height)
}

// ViewMatrix returns the view matrix for this camera.
func (c *Perspective) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position, c.Target, c.Up)
}

// ProjectionMatrix returns the perspective projection.
func (c *Perspective) ProjectionMatrix() math.Mat4 {
	return math.Perspective(c.FovY*gomath.Pi/180, c.Aspect, c.Near, c.Far)
}

// ViewProjection returns Projection * View.
func (c *Perspective) ViewProjection() math.Mat4 {
	return c.ProjectionMatrix().Mul(c.ViewMatrix())
}
