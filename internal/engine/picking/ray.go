// Package picking provides ray casting against scene bodies.
package picking

import (
	gomath "math"

	"github.com/Faultbox/earthglow/pkg/math"
)

// Ray is a half-line with a normalized direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// ScreenToRay converts window pixel coordinates (origin top-left) to a
// world-space ray. invViewProj is the inverse of projection*view.
func ScreenToRay(screenX, screenY, viewportW, viewportH float32, invViewProj math.Mat4) Ray {
	ndcX := 2*screenX/viewportW - 1
	ndcY := 1 - 2*screenY/viewportH

	near := invViewProj.TransformVec3(math.V3(ndcX, ndcY, -1))
	far := invViewProj.TransformVec3(math.V3(ndcX, ndcY, 1))

	return Ray{Origin: near, Direction: far.Sub(near).Normalize()}
}

// IntersectSphere returns the nearest non-negative distance at which the ray
// enters the sphere. A ray starting inside the sphere hits at its exit point.
func (r Ray) IntersectSphere(center math.Vec3, radius float32) (float32, bool) {
	oc := r.Origin.Sub(center)
	b := float64(oc.Dot(r.Direction))
	c := float64(oc.Dot(oc)) - float64(radius)*float64(radius)
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := gomath.Sqrt(disc)
	t := -b - sq
	if t < 0 {
		t = -b + sq
	}
	if t < 0 {
		return 0, false
	}
	return float32(t), true
}
