package camera

import (
	gomath "math"

	"github.com/Faultbox/earthglow/pkg/math"
)

// OrbitControls orbits a Perspective camera around its target.
type OrbitControls struct {
	camera *Perspective

	// Spherical coordinates of the camera relative to the target
	Distance float32
	Polar    float32 // angle from +Y, radians
	Azimuth  float32 // angle around Y from +Z, radians

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPolar    float32
	MaxPolar    float32

	// Sensitivity
	RotateSensitivity float32
	ZoomSensitivity   float32
	PanSensitivity    float32
}

// NewOrbitControls derives orbit state from the camera's current position.
func NewOrbitControls(cam *Perspective) *OrbitControls {
	o := &OrbitControls{
		camera:            cam,
		MinDistance:       1,
		MaxDistance:       500,
		MinPolar:          0.01,
		MaxPolar:          gomath.Pi - 0.01,
		RotateSensitivity: 0.005,
		ZoomSensitivity:   0.1,
		PanSensitivity:    0.002,
	}
	o.Sync()
	return o
}

// Camera returns the controlled camera.
func (o *OrbitControls) Camera() *Perspective {
	return o.camera
}

// Sync recomputes the spherical state from the camera position and target.
func (o *OrbitControls) Sync() {
	offset := o.camera.Position.Sub(o.camera.Target)
	o.Distance = offset.Length()
	if o.Distance == 0 {
		o.Polar = gomath.Pi / 2
		o.Azimuth = 0
		return
	}
	o.Polar = float32(gomath.Acos(clamp64(float64(offset.Y/o.Distance), -1, 1)))
	o.Azimuth = float32(gomath.Atan2(float64(offset.X), float64(offset.Z)))
}

// Update writes the spherical state back into the camera position.
func (o *OrbitControls) Update() {
	o.Distance = clamp(o.Distance, o.MinDistance, o.MaxDistance)
	o.Polar = clamp(o.Polar, o.MinPolar, o.MaxPolar)

	sinP := float32(gomath.Sin(float64(o.Polar)))
	offset := math.Vec3{
		X: o.Distance * sinP * float32(gomath.Sin(float64(o.Azimuth))),
		Y: o.Distance * float32(gomath.Cos(float64(o.Polar))),
		Z: o.Distance * sinP * float32(gomath.Cos(float64(o.Azimuth))),
	}
	o.camera.Position = o.camera.Target.Add(offset)
}

// Rotate orbits by a mouse drag delta in pixels.
func (o *OrbitControls) Rotate(deltaX, deltaY float32) {
	o.Azimuth -= deltaX * o.RotateSensitivity
	o.Polar -= deltaY * o.RotateSensitivity
	o.Update()
}

// Zoom moves towards (positive delta) or away from the target.
func (o *OrbitControls) Zoom(delta float32) {
	o.Distance -= delta * o.Distance * o.ZoomSensitivity
	o.Update()
}

// Pan moves the target and camera in the view plane.
func (o *OrbitControls) Pan(deltaX, deltaY float32) {
	forward := o.camera.Target.Sub(o.camera.Position).Normalize()
	right := forward.Cross(o.camera.Up).Normalize()
	up := right.Cross(forward)

	// Speed scales with distance for consistent feel
	speed := o.Distance * o.PanSensitivity
	move := right.Scale(-deltaX * speed).Add(up.Scale(deltaY * speed))

	o.camera.Target = o.camera.Target.Add(move)
	o.Update()
}

// SetTarget changes the orbit centre, keeping distance and angles.
func (o *OrbitControls) SetTarget(target math.Vec3) {
	o.camera.Target = target
	o.Update()
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp64(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
