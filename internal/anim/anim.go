// Package anim holds the per-frame stepping rules of the Earth/Moon scene.
//
// Self-rotation is accumulated once per frame, so the observed angular
// velocity follows the display refresh rate. The Moon's orbital position is a
// pure function of wall-clock time and never accumulates.
package anim

import (
	"math"
	"time"

	gm "github.com/Faultbox/earthglow/pkg/math"
)

// Reference rates.
const (
	DefaultEarthRotationSpeed = 0.001  // radians per frame
	DefaultMoonRotationSpeed  = -0.004 // radians per frame
	DefaultOrbitRadius        = 38.4
	DefaultOrbitAngularSpeed  = 0.001 // radians per millisecond
)

// Orbit is a circular orbit in the XZ plane.
type Orbit struct {
	Radius       float64
	AngularSpeed float64 // radians per millisecond of wall-clock time
}

// Offset returns the orbital offset at nowMillis.
func (o Orbit) Offset(nowMillis float64) (x, z float64) {
	a := o.AngularSpeed * nowMillis
	return o.Radius * math.Cos(a), o.Radius * math.Sin(a)
}

// Config holds the stepping rates.
type Config struct {
	EarthRotationSpeed float64
	MoonRotationSpeed  float64
	Orbit              Orbit
}

// DefaultConfig returns the reference rates.
func DefaultConfig() Config {
	return Config{
		EarthRotationSpeed: DefaultEarthRotationSpeed,
		MoonRotationSpeed:  DefaultMoonRotationSpeed,
		Orbit: Orbit{
			Radius:       DefaultOrbitRadius,
			AngularSpeed: DefaultOrbitAngularSpeed,
		},
	}
}

// State is the animated part of the scene.
type State struct {
	EarthRotation float64 // rotation.y of the Earth group
	MoonRotation  float64 // rotation.y of the Moon group
	EarthPosition gm.Vec3
	MoonPosition  gm.Vec3
	Frames        uint64
}

// Stepper advances State once per display frame.
type Stepper struct {
	cfg Config
}

// NewStepper creates a stepper with the given rates.
func NewStepper(cfg Config) *Stepper {
	return &Stepper{cfg: cfg}
}

// Step returns the state after one frame at nowMillis.
func (s *Stepper) Step(nowMillis float64, st State) State {
	st.EarthRotation += s.cfg.EarthRotationSpeed
	st.MoonRotation += s.cfg.MoonRotationSpeed

	x, z := s.cfg.Orbit.Offset(nowMillis)
	st.MoonPosition = gm.Vec3{
		X: st.EarthPosition.X + float32(x),
		Y: 0,
		Z: st.EarthPosition.Z + float32(z),
	}
	// The Moon also turns by the orbit rate every frame, on top of its own spin.
	st.MoonRotation += s.cfg.Orbit.AngularSpeed

	st.Frames++
	return st
}

// Millis converts a wall-clock instant to Unix milliseconds.
func Millis(t time.Time) float64 {
	return float64(t.UnixMilli())
}
