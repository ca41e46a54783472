package scene

import (
	"github.com/Faultbox/earthglow/internal/engine/geometry"
	gm "github.com/Faultbox/earthglow/pkg/math"
)

// Layer scales of the Earth shells relative to the surface.
const (
	CloudScale = 1.006
	GlowScale  = 1.008
)

// Node names used inside a body group.
const (
	EarthName   = "earth"
	SurfaceName = "earth.surface"
	CloudsName  = "earth.clouds"
	GlowName    = "earth.glow"
	MoonName    = "moon"
	StarsName   = "stars"
)

// Body is a celestial body: a group that the animation rotates and moves,
// and the layers parented to it.
type Body struct {
	Name     string
	Radius   float32
	Group    *Node
	Geometry *geometry.Geometry
}

// Layers returns the drawable children of the body group.
func (b *Body) Layers() []*Node {
	var out []*Node
	for _, c := range b.Group.Children {
		if c.Drawable != nil {
			out = append(out, c)
		}
	}
	return out
}

// EarthAssets are the texture paths of the Earth layers.
type EarthAssets struct {
	Map     string
	BumpMap string
	Clouds  string
}

// MoonAssets are the texture paths of the Moon.
type MoonAssets struct {
	Map     string
	BumpMap string
}

// NewEarth builds the Earth group: a lit surface, an additive cloud shell and
// a fresnel glow shell. All three share one geometry and differ only in
// material and scale.
func NewEarth(diameter float32, detail int, assets EarthAssets) *Body {
	geo := geometry.Icosphere(diameter/2, detail)
	group := NewGroup(EarthName)

	surface := NewNode(SurfaceName, &Mesh{
		Geometry: geo,
		Material: NewPhong(assets.Map, assets.BumpMap, 0.04),
	})

	cloudsMat := NewBasic(assets.Clouds)
	cloudsMat.Transparent = true
	cloudsMat.Opacity = 0.8
	cloudsMat.Blending = AdditiveBlending
	clouds := NewNode(CloudsName, &Mesh{Geometry: geo, Material: cloudsMat})
	clouds.Scale = gm.Splat(CloudScale)

	glow := NewNode(GlowName, &Mesh{Geometry: geo, Material: NewFresnel(DefaultFresnel())})
	glow.Scale = gm.Splat(GlowScale)

	group.Add(surface, clouds, glow)

	return &Body{
		Name:     EarthName,
		Radius:   diameter / 2,
		Group:    group,
		Geometry: geo,
	}
}

// NewMoon builds the Moon group with a single lit, bump-mapped surface.
func NewMoon(diameter float32, detail int, assets MoonAssets) *Body {
	geo := geometry.Icosphere(diameter/2, detail)
	group := NewGroup(MoonName)
	group.Add(NewNode(MoonName+".surface", &Mesh{
		Geometry: geo,
		Material: NewPhong(assets.Map, assets.BumpMap, 0.002),
	}))

	return &Body{
		Name:     MoonName,
		Radius:   diameter / 2,
		Group:    group,
		Geometry: geo,
	}
}
