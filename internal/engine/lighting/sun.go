// Package lighting provides the light sources of the scene.
package lighting

import (
	"math"

	gm "github.com/Faultbox/earthglow/pkg/math"
)

// Ambient is a uniform light applied to every lit surface.
type Ambient struct {
	Color     gm.Vec3
	Intensity float32
}

// Radiance returns Color scaled by Intensity.
func (a Ambient) Radiance() gm.Vec3 {
	return a.Color.Scale(a.Intensity)
}

// Sun is a directional light. Direction points towards the light.
type Sun struct {
	Direction gm.Vec3
	Color     gm.Vec3
	Intensity float32
}

// Enabled reports whether the sun contributes any light.
func (s Sun) Enabled() bool {
	return s.Intensity > 0
}

// Radiance returns Color scaled by Intensity.
func (s Sun) Radiance() gm.Vec3 {
	return s.Color.Scale(s.Intensity)
}

// NewSun builds a sun from longitude/latitude in degrees.
func NewSun(longitude, latitude float64, color gm.Vec3, intensity float32) Sun {
	return Sun{
		Direction: SunDirection(longitude, latitude),
		Color:     color,
		Intensity: intensity,
	}
}

// SunDirection converts longitude/latitude angles (degrees) to a unit vector.
// Longitude is rotation around the Y axis, latitude is elevation from the
// XZ plane.
func SunDirection(longitude, latitude float64) gm.Vec3 {
	lonRad := longitude * math.Pi / 180.0
	latRad := latitude * math.Pi / 180.0

	return gm.Vec3{
		X: float32(math.Cos(latRad) * math.Sin(lonRad)),
		Y: float32(math.Sin(latRad)),
		Z: float32(math.Cos(latRad) * math.Cos(lonRad)),
	}
}
