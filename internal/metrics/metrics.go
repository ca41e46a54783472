// Package metrics exposes Prometheus metrics for the running view.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Collector bundles the view's Prometheus metrics. A nil *Collector is valid
// and records nothing.
type Collector struct {
	gatherer prometheus.Gatherer

	Frames         prometheus.Counter
	FrameDuration  prometheus.Histogram
	Resizes        prometheus.Counter
	Stars          prometheus.Gauge
	ViewportWidth  prometheus.Gauge
	ViewportHeight prometheus.Gauge
	TextureLoads   *prometheus.CounterVec
}

// NewCollector registers the metrics against reg, defaulting to the global
// Prometheus registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &Collector{gatherer: gatherer}
	var err error

	if c.Frames, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "earthglow_frames_total",
		Help: "Frames rendered since mount.",
	}), "earthglow_frames_total"); err != nil {
		return nil, err
	}
	if c.FrameDuration, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "earthglow_frame_duration_seconds",
		Help:    "Time spent stepping and rendering one frame.",
		Buckets: []float64{0.001, 0.002, 0.004, 0.008, 0.016, 0.033, 0.066, 0.1, 0.25},
	}), "earthglow_frame_duration_seconds"); err != nil {
		return nil, err
	}
	if c.Resizes, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "earthglow_resizes_total",
		Help: "Resize notifications applied to the view.",
	}), "earthglow_resizes_total"); err != nil {
		return nil, err
	}
	if c.Stars, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "earthglow_stars",
		Help: "Number of stars in the generated starfield.",
	}), "earthglow_stars"); err != nil {
		return nil, err
	}
	if c.ViewportWidth, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "earthglow_viewport_width_pixels",
		Help: "Current drawable width.",
	}), "earthglow_viewport_width_pixels"); err != nil {
		return nil, err
	}
	if c.ViewportHeight, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "earthglow_viewport_height_pixels",
		Help: "Current drawable height.",
	}), "earthglow_viewport_height_pixels"); err != nil {
		return nil, err
	}
	if c.TextureLoads, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "earthglow_texture_loads_total",
		Help: "Finished texture decodes, labeled by result.",
	}, []string{"result"}), "earthglow_texture_loads_total"); err != nil {
		return nil, err
	}

	return c, nil
}

// FrameRendered records one frame and how long it took.
func (c *Collector) FrameRendered(d time.Duration) {
	if c == nil {
		return
	}
	c.Frames.Inc()
	c.FrameDuration.Observe(d.Seconds())
}

// Resized records a drawable size change.
func (c *Collector) Resized(width, height int) {
	if c == nil {
		return
	}
	c.Resizes.Inc()
	c.ViewportWidth.Set(float64(width))
	c.ViewportHeight.Set(float64(height))
}

// SetStars records the starfield size.
func (c *Collector) SetStars(n int) {
	if c == nil {
		return
	}
	c.Stars.Set(float64(n))
}

// TextureLoaded records a finished texture decode. It matches
// texture.Observer.
func (c *Collector) TextureLoaded(path string, err error) {
	if c == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.TextureLoads.WithLabelValues(result).Inc()
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Serve runs a /metrics listener on addr until ctx is cancelled.
func (c *Collector) Serve(ctx context.Context, addr string, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("metrics listener started", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics listener: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("metrics shutdown: %w", err)
		}
		log.Info("metrics listener stopped")
		return nil
	}
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C, name string) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
			var zero C
			return zero, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		var zero C
		return zero, err
	}
	return c, nil
}
