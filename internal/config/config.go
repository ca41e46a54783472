// Package config handles configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

// Config holds all settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Scene    SceneConfig    `yaml:"scene"`
	Camera   CameraConfig   `yaml:"camera"`
	Lighting LightingConfig `yaml:"lighting"`
	Assets   AssetsConfig   `yaml:"assets"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Debug    DebugConfig    `yaml:"debug"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	FPSLimit   int  `yaml:"fps_limit"` // 0 = unlimited
	SRGB       bool `yaml:"srgb"`
	MSAA       int  `yaml:"msaa"` // samples, 0 = off
}

// SceneConfig holds the starfield, bodies and animation rates.
type SceneConfig struct {
	Stars           int     `yaml:"stars"`
	Seed            uint64  `yaml:"seed"` // 0 = seed from clock
	StarMinRadius   float64 `yaml:"star_min_radius"`
	StarRadiusSpan  float64 `yaml:"star_radius_span"`
	StarSize        float32 `yaml:"star_size"`
	Detail          int     `yaml:"detail"`
	EarthRotation   float64 `yaml:"earth_rotation"` // radians per frame
	MoonRotation    float64 `yaml:"moon_rotation"`  // radians per frame
	MoonOrbitRadius float64 `yaml:"moon_orbit_radius"`
	MoonOrbitSpeed  float64 `yaml:"moon_orbit_speed"` // radians per millisecond
	InsetWidth      int     `yaml:"inset_width"`
	InsetHeight     int     `yaml:"inset_height"`
}

// CameraConfig holds the initial camera placement.
type CameraConfig struct {
	FOV      float32    `yaml:"fov"`
	Near     float32    `yaml:"near"`
	Far      float32    `yaml:"far"`
	Position [3]float32 `yaml:"position,flow"`
	Target   [3]float32 `yaml:"target,flow"`
}

// LightingConfig holds light intensities. The sun is off by default.
type LightingConfig struct {
	Ambient      float32 `yaml:"ambient"`
	Sun          float32 `yaml:"sun"`
	SunLongitude float64 `yaml:"sun_longitude"`
	SunLatitude  float64 `yaml:"sun_latitude"`
}

// AssetsConfig holds texture locations.
type AssetsConfig struct {
	Dir            string `yaml:"dir"`
	Workers        int    `yaml:"workers"`
	MaxTextureSize int    `yaml:"max_texture_size"`
}

// MetricsConfig holds the optional Prometheus listener.
type MetricsConfig struct {
	Listen string `yaml:"listen"` // empty = disabled
}

// DebugConfig holds developer settings.
type DebugConfig struct {
	ShowFPS       bool   `yaml:"show_fps"`
	ScreenshotDir string `yaml:"screenshot_dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:    1280,
			Height:   720,
			VSync:    true,
			FPSLimit: 0,
			SRGB:     true,
			MSAA:     4,
		},
		Scene: SceneConfig{
			Stars:           2000,
			StarMinRadius:   25,
			StarRadiusSpan:  25,
			StarSize:        0.2,
			Detail:          12,
			EarthRotation:   0.001,
			MoonRotation:    -0.004,
			MoonOrbitRadius: 38.4,
			MoonOrbitSpeed:  0.001,
		},
		Camera: CameraConfig{
			FOV:      75,
			Near:     0.1,
			Far:      1000,
			Position: [3]float32{9, 7, 15},
			Target:   [3]float32{0, 0.5, 0},
		},
		Lighting: LightingConfig{
			Ambient:      1,
			Sun:          0,
			SunLongitude: 45,
			SunLatitude:  20,
		},
		Assets: AssetsConfig{
			Dir:            "textures",
			Workers:        4,
			MaxTextureSize: 8192,
		},
		Debug: DebugConfig{
			ScreenshotDir: "screenshots",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports settings that cannot produce a working view.
func (c *Config) Validate() error {
	var errs []error
	if c.Graphics.Width <= 0 || c.Graphics.Height <= 0 {
		errs = append(errs, fmt.Errorf("graphics: invalid size %dx%d", c.Graphics.Width, c.Graphics.Height))
	}
	if c.Graphics.FPSLimit < 0 {
		errs = append(errs, fmt.Errorf("graphics: negative fps_limit %d", c.Graphics.FPSLimit))
	}
	if c.Scene.Detail < 0 {
		errs = append(errs, fmt.Errorf("scene: negative detail %d", c.Scene.Detail))
	}
	if c.Scene.StarMinRadius < 0 || c.Scene.StarRadiusSpan < 0 {
		errs = append(errs, errors.New("scene: star radii must be non-negative"))
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		errs = append(errs, fmt.Errorf("camera: fov %v out of range", c.Camera.FOV))
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		errs = append(errs, fmt.Errorf("camera: invalid clip planes near=%v far=%v", c.Camera.Near, c.Camera.Far))
	}
	return multierr.Combine(errs...)
}
