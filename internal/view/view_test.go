package view

import (
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/Faultbox/earthglow/internal/engine/camera"
	"github.com/Faultbox/earthglow/internal/scene"
	gm "github.com/Faultbox/earthglow/pkg/math"
)

type fakeSurface struct {
	width, height int
	calls         []string
	renders       int
	released      []*scene.Scene
}

func (f *fakeSurface) Size() (int, int) { return f.width, f.height }

func (f *fakeSurface) SetSize(w, h int) {
	f.width, f.height = w, h
	f.calls = append(f.calls, fmt.Sprintf("size %dx%d", w, h))
}

func (f *fakeSurface) SetViewport(x, y, w, h int) {
	f.calls = append(f.calls, fmt.Sprintf("viewport %d,%d %dx%d", x, y, w, h))
}

func (f *fakeSurface) SetScissor(x, y, w, h int) {
	f.calls = append(f.calls, fmt.Sprintf("scissor %d,%d %dx%d", x, y, w, h))
}

func (f *fakeSurface) SetScissorTest(on bool) {
	f.calls = append(f.calls, fmt.Sprintf("scissor-test %v", on))
}

func (f *fakeSurface) Render(s *scene.Scene, cam *camera.Perspective) {
	f.renders++
	f.calls = append(f.calls, "render")
}

func (f *fakeSurface) ClearDepth() {
	f.calls = append(f.calls, "clear-depth")
}

func (f *fakeSurface) Release(s *scene.Scene) {
	f.released = append(f.released, s)
	f.calls = append(f.calls, "release")
}

func (f *fakeSurface) reset() { f.calls, f.renders = nil, 0 }

type fakeEvents struct {
	listeners map[int]func(int, int)
	next      int
	cancels   int
}

func newFakeEvents() *fakeEvents {
	return &fakeEvents{listeners: make(map[int]func(int, int))}
}

func (e *fakeEvents) OnResize(fn func(int, int)) func() {
	id := e.next
	e.next++
	e.listeners[id] = fn
	return func() {
		e.cancels++
		delete(e.listeners, id)
	}
}

func (e *fakeEvents) fire(w, h int) {
	for _, fn := range e.listeners {
		fn(w, h)
	}
}

type fakeRecorder struct {
	frames  int
	resizes int
	stars   int
}

func (r *fakeRecorder) FrameRendered(time.Duration) { r.frames++ }
func (r *fakeRecorder) Resized(int, int)            { r.resizes++ }
func (r *fakeRecorder) SetStars(n int)              { r.stars = n }

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Stars = 100
	cfg.Seed = 7
	cfg.Scene.Detail = 1
	return cfg
}

func mount(t *testing.T, cfg Config) (*View, func(), *fakeSurface, *fakeEvents) {
	t.Helper()
	surface := &fakeSurface{width: 800, height: 600}
	events := newFakeEvents()
	v, teardown, err := Mount(surface, events, cfg, nil)
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	return v, teardown, surface, events
}

func TestMountSizesToSurface(t *testing.T) {
	v, _, surface, events := mount(t, testConfig())

	if len(events.listeners) != 1 {
		t.Fatalf("listeners = %d, want 1", len(events.listeners))
	}
	if len(surface.calls) != 1 || surface.calls[0] != "size 800x600" {
		t.Errorf("mount calls = %v, want [size 800x600]", surface.calls)
	}
	if got, want := v.Camera().Aspect, float32(800)/600; got != want {
		t.Errorf("aspect = %v, want %v", got, want)
	}
	if n := v.Scene().Stars.Drawable.(*scene.Points).Cloud.Len(); n != 100 {
		t.Errorf("stars = %d, want 100", n)
	}
}

func TestMountCamera(t *testing.T) {
	v, _, _, _ := mount(t, testConfig())
	cam := v.Camera()
	if cam.FovY != 75 || cam.Near != 0.1 || cam.Far != 1000 {
		t.Errorf("camera = fov %v near %v far %v", cam.FovY, cam.Near, cam.Far)
	}
	if !cam.Position.ApproxEqual(DefaultCameraConfig().Position, 1e-4) {
		t.Errorf("position = %v", cam.Position)
	}
	if !cam.Target.ApproxEqual(DefaultCameraConfig().Target, 1e-6) {
		t.Errorf("target = %v", cam.Target)
	}
	if v.Controls().Camera() != cam {
		t.Error("controls do not drive the view camera")
	}
}

func TestMountErrors(t *testing.T) {
	badFov := testConfig()
	badFov.Camera.FovY = 0
	badClip := testConfig()
	badClip.Camera.Far = badClip.Camera.Near

	tests := []struct {
		name    string
		surface Surface
		events  ResizeSource
		cfg     Config
		want    string
	}{
		{"nil surface", nil, newFakeEvents(), testConfig(), "nil surface"},
		{"nil events", &fakeSurface{}, nil, testConfig(), "nil resize source"},
		{"fov", &fakeSurface{}, newFakeEvents(), badFov, "fov"},
		{"clip", &fakeSurface{}, newFakeEvents(), badClip, "clip planes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Mount(tt.surface, tt.events, tt.cfg, nil)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestResize(t *testing.T) {
	v, _, surface, events := mount(t, testConfig())
	surface.reset()

	events.fire(1920, 1080)
	if got, want := v.Camera().Aspect, float32(1920)/1080; got != want {
		t.Errorf("aspect = %v, want %v", got, want)
	}
	if w, h := surface.Size(); w != 1920 || h != 1080 {
		t.Errorf("surface size = %dx%d", w, h)
	}

	aspect := v.Camera().Aspect
	v.Resize(640, 0)
	if v.Camera().Aspect != aspect {
		t.Errorf("aspect changed on zero height: %v", v.Camera().Aspect)
	}
	if w, h := surface.Size(); w != 640 || h != 0 {
		t.Errorf("surface size = %dx%d, want 640x0", w, h)
	}
}

func TestFrameRenderSequence(t *testing.T) {
	v, _, surface, _ := mount(t, testConfig())
	surface.reset()

	v.Frame(time.UnixMilli(0))

	want := []string{"viewport 0,0 800x600", "render", "clear-depth"}
	if strings.Join(surface.calls, "|") != strings.Join(want, "|") {
		t.Errorf("calls = %v, want %v", surface.calls, want)
	}
}

func TestFrameRendersInset(t *testing.T) {
	cfg := testConfig()
	cfg.Inset = Inset{Width: 200, Height: 100, Margin: DefaultInsetMargin}
	v, _, surface, _ := mount(t, cfg)
	surface.reset()

	v.Frame(time.UnixMilli(0))

	want := []string{
		"viewport 0,0 800x600",
		"render",
		"clear-depth",
		"scissor-test true",
		"scissor 584,484 200x100",
		"viewport 584,484 200x100",
		"render",
		"scissor-test false",
		"viewport 0,0 800x600",
	}
	if strings.Join(surface.calls, "|") != strings.Join(want, "|") {
		t.Errorf("calls =\n%v\nwant\n%v", surface.calls, want)
	}
}

func TestFrameAppliesState(t *testing.T) {
	v, _, _, _ := mount(t, testConfig())

	now := time.UnixMilli(1000)
	for i := 0; i < 10; i++ {
		v.Frame(now)
	}

	st := v.State()
	if st.Frames != 10 {
		t.Errorf("frames = %d, want 10", st.Frames)
	}
	earth := v.Scene().Earth.Group
	if math.Abs(float64(earth.Rotation.Y)-0.01) > 1e-6 {
		t.Errorf("earth rotation = %v, want 0.01", earth.Rotation.Y)
	}
	moon := v.Scene().Moon.Group
	wantMoonRot := 10 * (-0.004 + 0.001)
	if math.Abs(float64(moon.Rotation.Y)-wantMoonRot) > 1e-6 {
		t.Errorf("moon rotation = %v, want %v", moon.Rotation.Y, wantMoonRot)
	}
	wantX := 38.4 * math.Cos(1)
	wantZ := 38.4 * math.Sin(1)
	if math.Abs(float64(moon.Position.X)-wantX) > 1e-4 || math.Abs(float64(moon.Position.Z)-wantZ) > 1e-4 || moon.Position.Y != 0 {
		t.Errorf("moon position = %v, want (%v, 0, %v)", moon.Position, wantX, wantZ)
	}
	for _, layer := range v.Scene().Earth.Layers() {
		if layer.Rotation.Y != 0 {
			t.Errorf("layer %s rotated directly", layer.Name)
		}
	}
}

func TestTeardown(t *testing.T) {
	rec := &fakeRecorder{}
	cfg := testConfig()
	cfg.Recorder = rec
	v, teardown, surface, events := mount(t, cfg)
	v.Frame(time.UnixMilli(0))

	teardown()
	if !v.Closed() {
		t.Fatal("view not closed")
	}
	if len(events.listeners) != 0 {
		t.Errorf("listener still registered")
	}
	if len(surface.released) != 1 || surface.released[0] != v.Scene() {
		t.Errorf("released = %v", surface.released)
	}

	surface.reset()
	events.fire(100, 100)
	v.Resize(300, 200)
	v.Frame(time.UnixMilli(5))
	if len(surface.calls) != 0 {
		t.Errorf("surface touched after teardown: %v", surface.calls)
	}

	teardown()
	if events.cancels != 1 || len(surface.released) != 1 {
		t.Errorf("second teardown repeated work: cancels=%d released=%d", events.cancels, len(surface.released))
	}
	if v.State().Frames != 1 {
		t.Errorf("frames after teardown = %d, want 1", v.State().Frames)
	}
	if rec.frames != 1 || rec.resizes != 1 || rec.stars != 100 {
		t.Errorf("recorder = %+v", rec)
	}
}

func TestMountDeterministicStars(t *testing.T) {
	a, _, _, _ := mount(t, testConfig())
	b, _, _, _ := mount(t, testConfig())
	ca := a.Scene().Stars.Drawable.(*scene.Points).Cloud
	cb := b.Scene().Stars.Drawable.(*scene.Points).Cloud
	for i := range ca.Positions {
		if ca.Positions[i] != cb.Positions[i] {
			t.Fatalf("position %d differs", i)
		}
	}
}

func TestInsetRect(t *testing.T) {
	tests := []struct {
		inset  Inset
		w, h   int
		want   Rect
		wantOK bool
	}{
		{Inset{Margin: 16}, 800, 600, Rect{784, 584, 0, 0}, false},
		{Inset{Width: 100, Height: 50, Margin: 16}, 800, 600, Rect{684, 534, 100, 50}, true},
		{Inset{Width: 100, Margin: 16}, 800, 600, Rect{684, 584, 100, 0}, false},
	}
	for _, tt := range tests {
		got, ok := tt.inset.Rect(tt.w, tt.h)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("%+v.Rect(%d, %d) = %+v %v, want %+v %v", tt.inset, tt.w, tt.h, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestPick(t *testing.T) {
	v, _, _, _ := mount(t, testConfig())
	cam := v.Camera()
	cam.Position = gm.V3(0, 0, 30)
	cam.Target = gm.Vec3{}
	cam.SetAspect(800, 800)

	v.Scene().Moon.Group.Position = gm.V3(100, 0, 0)

	if got := v.Pick(400, 400, 800, 800); got != v.Scene().Earth {
		t.Errorf("centre pick = %v, want earth", got)
	}
	if got := v.Pick(5, 5, 800, 800); got != nil {
		t.Errorf("corner pick = %v, want nil", got.Name)
	}
	if got := v.Pick(1, 1, 0, 0); got != nil {
		t.Error("pick on empty area should miss")
	}
}

func TestFrameRotationStepAtLargeAngles(t *testing.T) {
	v, _, _, _ := mount(t, testConfig())
	v.state.EarthRotation = 20000
	v.state.MoonRotation = -60000

	now := time.UnixMilli(0)
	v.Frame(now)
	earth, moon := v.Scene().Earth.Group, v.Scene().Moon.Group
	prevEarth, prevMoon := float64(earth.Rotation.Y), float64(moon.Rotation.Y)

	for i := 0; i < 6; i++ {
		v.Frame(now)
		e, m := float64(earth.Rotation.Y), float64(moon.Rotation.Y)
		if d := math.Remainder(e-prevEarth, 2*math.Pi); math.Abs(d-0.001) > 1e-5 {
			t.Errorf("frame %d: earth step = %v, want 0.001", i, d)
		}
		if d := math.Remainder(m-prevMoon, 2*math.Pi); math.Abs(d+0.003) > 1e-5 {
			t.Errorf("frame %d: moon step = %v, want -0.003", i, d)
		}
		if math.Abs(e) > math.Pi+1e-6 || math.Abs(m) > math.Pi+1e-6 {
			t.Errorf("frame %d: rotations %v / %v not wrapped", i, e, m)
		}
		prevEarth, prevMoon = e, m
	}
}

func TestFocusFollowsBody(t *testing.T) {
	v, _, _, _ := mount(t, testConfig())
	moon := v.Scene().Moon
	cam := v.Camera()
	dist := v.Controls().Distance

	v.Focus(moon)
	if v.Focused() != moon {
		t.Fatal("Focused() did not return the moon")
	}
	for _, ms := range []int64{1000, 2500, 4000} {
		v.Frame(time.UnixMilli(ms))
		if !cam.Target.ApproxEqual(moon.Group.Position, 1e-4) {
			t.Errorf("t=%d: target = %v, want moon at %v", ms, cam.Target, moon.Group.Position)
		}
		if d := cam.Position.Distance(cam.Target); math.Abs(float64(d-dist)) > 1e-3 {
			t.Errorf("t=%d: orbit distance = %v, want %v", ms, d, dist)
		}
	}

	v.Focus(nil)
	held := cam.Target
	v.Frame(time.UnixMilli(6000))
	if cam.Target != held {
		t.Errorf("target moved to %v after release, want %v", cam.Target, held)
	}
	if v.Focused() != nil {
		t.Error("focus not released")
	}
}

func TestSetInsetTogglesInsetRender(t *testing.T) {
	v, _, surface, _ := mount(t, testConfig())

	v.SetInset(200, 100)
	if in := v.Inset(); in.Width != 200 || in.Height != 100 || in.Margin != DefaultInsetMargin {
		t.Errorf("inset = %+v", in)
	}
	surface.reset()
	v.Frame(time.UnixMilli(0))
	if surface.renders != 2 {
		t.Errorf("renders with inset = %d, want 2", surface.renders)
	}

	v.SetInset(0, 0)
	surface.reset()
	v.Frame(time.UnixMilli(0))
	if surface.renders != 1 {
		t.Errorf("renders without inset = %d, want 1", surface.renders)
	}
}
