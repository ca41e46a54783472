// Package view mounts the Earth/Moon scene on a drawing surface and drives
// it frame by frame.
package view

import (
	"errors"
	"fmt"
	gomath "math"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/earthglow/internal/anim"
	"github.com/Faultbox/earthglow/internal/engine/camera"
	"github.com/Faultbox/earthglow/internal/engine/picking"
	"github.com/Faultbox/earthglow/internal/scene"
	"github.com/Faultbox/earthglow/internal/starfield"
	gm "github.com/Faultbox/earthglow/pkg/math"
)

// Surface is the drawable the view renders into. Sizes are in pixels with the
// origin at the bottom-left corner.
type Surface interface {
	Size() (width, height int)
	SetSize(width, height int)
	SetViewport(x, y, width, height int)
	SetScissor(x, y, width, height int)
	SetScissorTest(enabled bool)
	Render(s *scene.Scene, cam *camera.Perspective)
	ClearDepth()
	// Release frees whatever the surface allocated for s.
	Release(s *scene.Scene)
}

// ResizeSource delivers drawable size changes.
type ResizeSource interface {
	OnResize(fn func(width, height int)) (cancel func())
}

// Recorder receives per-frame measurements. *metrics.Collector implements it.
type Recorder interface {
	FrameRendered(d time.Duration)
	Resized(width, height int)
	SetStars(n int)
}

// CameraConfig places the perspective camera.
type CameraConfig struct {
	FovY     float32 // degrees
	Near     float32
	Far      float32
	Position gm.Vec3
	Target   gm.Vec3
}

// DefaultCameraConfig returns the reference camera.
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		FovY:     75,
		Near:     0.1,
		Far:      1000,
		Position: gm.V3(9, 7, 15),
		Target:   gm.V3(0, 0.5, 0),
	}
}

// Config holds everything Mount needs to build the view.
type Config struct {
	Stars     int
	Seed      uint64 // 0 seeds from the clock
	Starfield starfield.Options
	Scene     scene.Config
	Anim      anim.Config
	Camera    CameraConfig
	Inset     Inset
	Recorder  Recorder
}

// DefaultConfig returns the reference view: 2000 stars and no inset.
func DefaultConfig() Config {
	return Config{
		Stars:     2000,
		Starfield: starfield.DefaultOptions(),
		Scene:     scene.DefaultConfig(),
		Anim:      anim.DefaultConfig(),
		Camera:    DefaultCameraConfig(),
		Inset:     Inset{Margin: DefaultInsetMargin},
	}
}

// View owns the scene, camera and animation state of a mounted surface.
type View struct {
	surface  Surface
	log      *zap.Logger
	recorder Recorder

	scene    *scene.Scene
	camera   *camera.Perspective
	controls *camera.OrbitControls
	stepper  *anim.Stepper
	state    anim.State
	inset    Inset
	focus    *scene.Body

	cancelResize func()
	closed       bool
}

// Mount builds the scene on surface, subscribes to resize notifications and
// sizes everything to the current surface. The returned func tears the view
// down; it is safe to call more than once.
func Mount(surface Surface, events ResizeSource, cfg Config, log *zap.Logger) (*View, func(), error) {
	if surface == nil {
		return nil, nil, errors.New("mount: nil surface")
	}
	if events == nil {
		return nil, nil, errors.New("mount: nil resize source")
	}
	if err := cfg.Camera.validate(); err != nil {
		return nil, nil, fmt.Errorf("mount: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}

	rng := starfield.NewRand(cfg.Seed)
	stars := starfield.Generate(cfg.Stars, rng, cfg.Starfield)

	cam := camera.NewPerspective(cfg.Camera.FovY, 1, cfg.Camera.Near, cfg.Camera.Far,
		cfg.Camera.Position, cfg.Camera.Target)

	v := &View{
		surface:  surface,
		log:      log,
		recorder: cfg.Recorder,
		scene:    scene.New(cfg.Scene, stars),
		camera:   cam,
		controls: camera.NewOrbitControls(cam),
		stepper:  anim.NewStepper(cfg.Anim),
		inset:    cfg.Inset,
	}
	v.state.EarthPosition = v.scene.Earth.Group.Position

	if v.recorder != nil {
		v.recorder.SetStars(stars.Len())
	}

	v.cancelResize = events.OnResize(v.Resize)
	v.Resize(surface.Size())

	log.Info("view mounted",
		zap.Int("stars", stars.Len()),
		zap.Uint64("seed", cfg.Seed),
		zap.Int("detail", cfg.Scene.Detail),
		zap.Int("vertices", v.scene.Earth.Geometry.VertexCount()),
	)

	return v, v.teardown, nil
}

func (c CameraConfig) validate() error {
	switch {
	case c.FovY <= 0 || c.FovY >= 180:
		return fmt.Errorf("camera fov %v out of range (0, 180)", c.FovY)
	case c.Near <= 0 || c.Far <= c.Near:
		return fmt.Errorf("camera clip planes near=%v far=%v", c.Near, c.Far)
	}
	return nil
}

// Resize updates the camera aspect and the surface size. A zero height
// leaves the aspect unchanged. No-op after teardown.
func (v *View) Resize(width, height int) {
	if v.closed {
		return
	}
	v.camera.SetAspect(width, height)
	v.surface.SetSize(width, height)
	if v.recorder != nil {
		v.recorder.Resized(width, height)
	}
	v.log.Debug("view resized", zap.Int("width", width), zap.Int("height", height))
}

// Frame advances the animation to now and renders one frame. No-op after
// teardown.
func (v *View) Frame(now time.Time) {
	if v.closed {
		return
	}
	start := time.Now()

	v.state = v.stepper.Step(anim.Millis(now), v.state)
	v.apply()
	if v.focus != nil {
		v.controls.SetTarget(v.focus.Group.Position)
	}
	v.render()

	if v.recorder != nil {
		v.recorder.FrameRendered(time.Since(start))
	}
}

// apply copies the animation state onto the scene graph.
func (v *View) apply() {
	earth := v.scene.Earth.Group
	earth.Rotation.Y = wrapAngle(v.state.EarthRotation)
	earth.Position = v.state.EarthPosition

	moon := v.scene.Moon.Group
	moon.Rotation.Y = wrapAngle(v.state.MoonRotation)
	moon.Position = v.state.MoonPosition
}

// wrapAngle reduces an accumulated angle to (-π, π] before narrowing it to
// float32, which cannot resolve a per-frame step at large magnitudes.
func wrapAngle(a float64) float32 {
	return float32(gomath.Remainder(a, 2*gomath.Pi))
}

func (v *View) render() {
	w, h := v.surface.Size()

	v.surface.SetViewport(0, 0, w, h)
	v.surface.Render(v.scene, v.camera)
	v.surface.ClearDepth()

	rect, ok := v.inset.Rect(w, h)
	if !ok {
		return
	}
	v.surface.SetScissorTest(true)
	v.surface.SetScissor(rect.X, rect.Y, rect.Width, rect.Height)
	v.surface.SetViewport(rect.X, rect.Y, rect.Width, rect.Height)
	v.surface.Render(v.scene, v.camera)
	v.surface.SetScissorTest(false)
	v.surface.SetViewport(0, 0, w, h)
}

func (v *View) teardown() {
	if v.closed {
		return
	}
	v.closed = true
	if v.cancelResize != nil {
		v.cancelResize()
		v.cancelResize = nil
	}
	v.surface.Release(v.scene)
	v.log.Info("view unmounted", zap.Uint64("frames", v.state.Frames))
}

// Controls returns the orbit controls for host input handling.
func (v *View) Controls() *camera.OrbitControls {
	return v.controls
}

// Camera returns the view camera.
func (v *View) Camera() *camera.Perspective {
	return v.camera
}

// Scene returns the mounted scene graph.
func (v *View) Scene() *scene.Scene {
	return v.scene
}

// State returns the current animation state.
func (v *View) State() anim.State {
	return v.state
}

// Focus keeps the orbit target on b as it moves. A nil body releases the
// target where it is.
func (v *View) Focus(b *scene.Body) {
	v.focus = b
	if b != nil {
		v.controls.SetTarget(b.Group.Position)
	}
}

// Focused returns the body the orbit follows, or nil.
func (v *View) Focused() *scene.Body {
	return v.focus
}

// Inset returns the current inset rectangle settings.
func (v *View) Inset() Inset {
	return v.inset
}

// SetInset changes the inset rectangle size. Zero hides it.
func (v *View) SetInset(width, height int) {
	v.inset.Width = width
	v.inset.Height = height
}

// Closed reports whether the view has been torn down.
func (v *View) Closed() bool {
	return v.closed
}

// Pick returns the body under the point (x, y), measured from the top-left
// of a width×height area, or nil when the ray hits nothing.
func (v *View) Pick(x, y, width, height int) *scene.Body {
	if width <= 0 || height <= 0 {
		return nil
	}
	inv := v.camera.ViewProjection().Inverse()
	ray := picking.ScreenToRay(float32(x), float32(y), float32(width), float32(height), inv)

	var hit *scene.Body
	best := float32(gomath.MaxFloat32)
	for _, b := range []*scene.Body{v.scene.Earth, v.scene.Moon} {
		if t, ok := ray.IntersectSphere(b.Group.Position, b.Radius); ok && t < best {
			hit, best = b, t
		}
	}
	return hit
}
