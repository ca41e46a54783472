package view

import (
	"github.com/Faultbox/earthglow/internal/anim"
	"github.com/Faultbox/earthglow/internal/config"
	"github.com/Faultbox/earthglow/internal/engine/lighting"
	gm "github.com/Faultbox/earthglow/pkg/math"
)

// ConfigFromSettings maps loaded settings onto a view configuration.
// Recorder is left unset.
func ConfigFromSettings(s *config.Config) Config {
	cfg := DefaultConfig()

	cfg.Stars = s.Scene.Stars
	cfg.Seed = s.Scene.Seed
	cfg.Starfield.MinRadius = s.Scene.StarMinRadius
	cfg.Starfield.RadiusSpan = s.Scene.StarRadiusSpan
	cfg.Starfield.PointSize = s.Scene.StarSize

	cfg.Scene.Detail = s.Scene.Detail
	cfg.Scene.Ambient = lighting.Ambient{Color: gm.Splat(1), Intensity: s.Lighting.Ambient}
	cfg.Scene.Sun = lighting.NewSun(s.Lighting.SunLongitude, s.Lighting.SunLatitude, gm.Splat(1), s.Lighting.Sun)

	cfg.Anim = anim.Config{
		EarthRotationSpeed: s.Scene.EarthRotation,
		MoonRotationSpeed:  s.Scene.MoonRotation,
		Orbit: anim.Orbit{
			Radius:       s.Scene.MoonOrbitRadius,
			AngularSpeed: s.Scene.MoonOrbitSpeed,
		},
	}

	cfg.Camera = CameraConfig{
		FovY:     s.Camera.FOV,
		Near:     s.Camera.Near,
		Far:      s.Camera.Far,
		Position: gm.V3(s.Camera.Position[0], s.Camera.Position[1], s.Camera.Position[2]),
		Target:   gm.V3(s.Camera.Target[0], s.Camera.Target[1], s.Camera.Target[2]),
	}
	cfg.Inset = Inset{
		Width:  s.Scene.InsetWidth,
		Height: s.Scene.InsetHeight,
		Margin: DefaultInsetMargin,
	}

	return cfg
}
