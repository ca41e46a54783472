// Package starfield generates the static point cloud drawn behind the scene.
//
// Stars are sampled uniformly over the surface of concentric spheres using the
// inverse-CDF method, so they do not cluster at the poles.
package starfield

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	gm "github.com/Faultbox/earthglow/pkg/math"
)

// Reference values of the generator.
const (
	DefaultHue        = 0.6
	DefaultSaturation = 0.2
	DefaultMinRadius  = 25.0
	DefaultRadiusSpan = 25.0
	DefaultPointSize  = 0.2
	DefaultSprite     = "stars/circle.png"
)

// SpherePoint is a single star.
type SpherePoint struct {
	Position gm.Vec3
	// Hue is the same for every star. It is kept so per-star hue can be
	// introduced without changing the data layout.
	Hue float64
	// MinDist is the radius of the sphere Position lies on.
	MinDist float64
}

// Options tunes the shell and appearance of the cloud.
type Options struct {
	MinRadius  float64
	RadiusSpan float64
	Hue        float64
	Saturation float64
	PointSize  float32
	Sprite     string
}

// DefaultOptions returns the reference generator settings.
func DefaultOptions() Options {
	return Options{
		MinRadius:  DefaultMinRadius,
		RadiusSpan: DefaultRadiusSpan,
		Hue:        DefaultHue,
		Saturation: DefaultSaturation,
		PointSize:  DefaultPointSize,
		Sprite:     DefaultSprite,
	}
}

// Cloud is the generated point cloud. Positions and Colors are flattened,
// three floats per star, ready for upload as vertex attributes.
type Cloud struct {
	Points    []SpherePoint
	Positions []float32
	Colors    []float32
	Lightness []float64

	Size   float32
	Sprite string
}

// Len returns the number of stars.
func (c *Cloud) Len() int {
	return len(c.Points)
}

// New generates numStars stars with the default options. A zero seed seeds
// the source from the clock.
func New(numStars int, seed uint64) *Cloud {
	return Generate(numStars, NewRand(seed), DefaultOptions())
}

// NewRand returns a PCG source for seed, or a clock-seeded one when seed is 0.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		now := uint64(time.Now().UnixNano())
		return rand.New(rand.NewPCG(now, now>>1|1))
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Generate builds a cloud of numStars stars drawing from rng.
// A negative count is treated as zero.
func Generate(numStars int, rng *rand.Rand, opts Options) *Cloud {
	if numStars < 0 {
		numStars = 0
	}
	c := &Cloud{
		Points:    make([]SpherePoint, 0, numStars),
		Positions: make([]float32, 0, numStars*3),
		Colors:    make([]float32, 0, numStars*3),
		Lightness: make([]float64, 0, numStars),
		Size:      opts.PointSize,
		Sprite:    opts.Sprite,
	}

	for i := 0; i < numStars; i++ {
		p := randomSpherePoint(rng, opts)
		l := rng.Float64()
		col := StarColor(p.Hue, opts.Saturation, l)

		c.Points = append(c.Points, p)
		c.Lightness = append(c.Lightness, l)
		c.Positions = append(c.Positions, p.Position.X, p.Position.Y, p.Position.Z)
		c.Colors = append(c.Colors, float32(col.R), float32(col.G), float32(col.B))
	}
	return c
}

func randomSpherePoint(rng *rand.Rand, opts Options) SpherePoint {
	radius := rng.Float64()*opts.RadiusSpan + opts.MinRadius
	u := rng.Float64()
	v := rng.Float64()
	theta := 2 * math.Pi * u
	phi := math.Acos(2*v - 1)

	return SpherePoint{
		Position: gm.Vec3{
			X: float32(radius * math.Sin(phi) * math.Cos(theta)),
			Y: float32(radius * math.Sin(phi) * math.Sin(theta)),
			Z: float32(radius * math.Cos(phi)),
		},
		Hue:     opts.Hue,
		MinDist: radius,
	}
}

// RGB is a linear-space colour.
type RGB struct {
	R, G, B float64
}

// StarColor converts an HSL triple (all in [0,1]) to linear RGB.
func StarColor(hue, saturation, lightness float64) RGB {
	r, g, b := colorful.Hsl(hue*360, saturation, lightness).Clamped().LinearRgb()
	return RGB{R: r, G: g, B: b}
}
