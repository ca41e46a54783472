// Package app wires the window, renderer, input and view together and owns
// the main loop.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Faultbox/earthglow/internal/config"
	"github.com/Faultbox/earthglow/internal/engine/debug"
	"github.com/Faultbox/earthglow/internal/engine/input"
	"github.com/Faultbox/earthglow/internal/engine/renderer"
	"github.com/Faultbox/earthglow/internal/engine/texture"
	"github.com/Faultbox/earthglow/internal/engine/window"
	"github.com/Faultbox/earthglow/internal/logger"
	"github.com/Faultbox/earthglow/internal/metrics"
	"github.com/Faultbox/earthglow/internal/view"
	gm "github.com/Faultbox/earthglow/pkg/math"
)

// Title is the window title.
const Title = "earthglow"

// Inset size used by the I key when none is configured.
const (
	defaultInsetWidth  = 320
	defaultInsetHeight = 180
)

// App is the running application.
type App struct {
	cfg *config.Config
	log *zap.Logger

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	metrics  *metrics.Collector

	view     *view.View
	teardown func()

	limiter     *rate.Limiter
	screenshots *debug.ScreenshotCapture
}

// New creates the window, renderer and view.
func New(cfg *config.Config) (*App, error) {
	log := logger.Named("app")
	log.Info("initializing",
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
		zap.Bool("fullscreen", cfg.Graphics.Fullscreen),
	)

	a := &App{
		cfg:         cfg,
		log:         log,
		screenshots: debug.NewScreenshotCapture(cfg.Debug.ScreenshotDir, Title),
	}
	if cfg.Graphics.FPSLimit > 0 {
		a.limiter = rate.NewLimiter(rate.Limit(cfg.Graphics.FPSLimit), 1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	var err error
	a.metrics, err = metrics.NewCollector(reg)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	// Create window (this also creates the OpenGL context)
	a.window, err = window.New(window.Config{
		Title:      Title,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
		SRGB:       cfg.Graphics.SRGB,
		MSAA:       cfg.Graphics.MSAA,
	}, logger.Named("window"))
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	loader := texture.NewLoader(os.DirFS(cfg.Assets.Dir), texture.LoaderConfig{
		Workers: cfg.Assets.Workers,
		MaxSize: cfg.Assets.MaxTextureSize,
	}, logger.Named("texture"))
	loader.SetObserver(a.metrics.TextureLoaded)

	// Create renderer (AFTER window, since the OpenGL context must exist)
	w, h := a.window.DrawableSize()
	a.renderer, err = renderer.New(renderer.Config{
		Width:  w,
		Height: h,
		SRGB:   cfg.Graphics.SRGB,
	}, loader, logger.Named("renderer"))
	if err != nil {
		_ = loader.Close()
		_ = a.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	a.input = input.New(a.window)

	viewCfg := view.ConfigFromSettings(cfg)
	viewCfg.Recorder = a.metrics
	a.view, a.teardown, err = view.Mount(a.renderer, a.input, viewCfg, logger.Named("view"))
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to mount view: %w", err)
	}
	a.renderer.Preload(a.view.Scene())

	log.Info("initialized successfully")
	return a, nil
}

// Run drives the main loop until the window closes, Esc is pressed or ctx
// is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a.cfg.Metrics.Listen != "" {
		go func() {
			if err := a.metrics.Serve(ctx, a.cfg.Metrics.Listen, logger.Named("metrics")); err != nil {
				a.log.Error("metrics listener failed", zap.Error(err))
			}
		}()
	}

	frameCount := 0
	fpsTimer := time.Now()

	a.log.Info("starting main loop")

	for {
		if ctx.Err() != nil {
			a.log.Info("shutdown requested")
			return nil
		}

		// 1. Process input
		if a.input.Update() {
			return nil
		}
		if a.handleEvents() {
			return nil
		}

		// 2. Step and render
		a.view.Frame(time.Now())

		// 3. Present (swap buffers)
		a.window.SwapBuffers()

		if a.limiter != nil {
			if err := a.limiter.Wait(ctx); err != nil {
				if errors.Is(err, context.Canceled) || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("frame limiter: %w", err)
			}
		}

		// FPS counter
		frameCount++
		if elapsed := time.Since(fpsTimer); elapsed >= time.Second {
			fps := float64(frameCount) / elapsed.Seconds()
			a.log.Debug("fps", zap.Float64("fps", fps), zap.Uint64("frames", a.view.State().Frames))
			if a.cfg.Debug.ShowFPS {
				a.window.SetTitle(fmt.Sprintf("%s - %.0f fps", Title, fps))
			}
			frameCount = 0
			fpsTimer = time.Now()
		}
	}
}

// handleEvents applies this frame's input. It returns true to quit.
func (a *App) handleEvents() bool {
	if a.input.IsKeyPressed(sdl.SCANCODE_ESCAPE) {
		return true
	}
	if a.input.IsKeyPressed(sdl.SCANCODE_F12) {
		a.screenshot()
	}
	if a.input.IsKeyPressed(sdl.SCANCODE_I) {
		a.toggleInset()
	}

	controls := a.view.Controls()
	for _, ev := range a.input.Events() {
		switch ev.Type {
		case input.EventMouseMove:
			switch {
			case a.input.IsButtonHeld(input.ButtonLeft):
				controls.Rotate(float32(ev.DeltaX), float32(ev.DeltaY))
			case a.input.IsButtonHeld(input.ButtonRight):
				a.view.Focus(nil)
				controls.Pan(float32(ev.DeltaX), float32(ev.DeltaY))
			}
		case input.EventMouseDown:
			if ev.Button == input.ButtonLeft && ev.Clicks == 2 {
				a.focus(ev.MouseX, ev.MouseY)
			}
		case input.EventMouseWheel:
			controls.Zoom(ev.Wheel)
		}
	}
	return false
}

// focus makes the orbit follow the body under the cursor, or returns it to
// the configured target when the click misses.
func (a *App) focus(x, y int) {
	w, h := a.window.GetSize()
	if body := a.view.Pick(x, y, w, h); body != nil {
		a.view.Focus(body)
		a.log.Debug("orbit focused", zap.String("body", body.Name))
		return
	}
	a.view.Focus(nil)
	target := a.cfg.Camera.Target
	a.view.Controls().SetTarget(gm.V3(target[0], target[1], target[2]))
}

// toggleInset shows or hides the corner inset.
func (a *App) toggleInset() {
	if in := a.view.Inset(); in.Width > 0 && in.Height > 0 {
		a.view.SetInset(0, 0)
		return
	}
	w, h := a.cfg.Scene.InsetWidth, a.cfg.Scene.InsetHeight
	if w <= 0 || h <= 0 {
		w, h = defaultInsetWidth, defaultInsetHeight
	}
	a.view.SetInset(w, h)
	a.log.Debug("inset shown", zap.Int("width", w), zap.Int("height", h))
}

func (a *App) screenshot() {
	pixels, w, h, err := a.renderer.Capture(a.view.Scene(), a.view.Camera())
	if err != nil {
		a.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	path, err := a.screenshots.CaptureFromPixels(pixels, w, h)
	if err != nil {
		a.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	a.log.Info("screenshot saved", zap.String("path", path))
}

// Close tears down the view, renderer and window.
func (a *App) Close() error {
	a.log.Info("closing")

	if a.teardown != nil {
		a.teardown()
	}
	var err error
	if a.renderer != nil {
		err = multierr.Append(err, a.renderer.Close())
		a.renderer = nil
	}
	if a.window != nil {
		err = multierr.Append(err, a.window.Close())
		a.window = nil
	}
	return err
}
