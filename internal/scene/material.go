package scene

import gm "github.com/Faultbox/earthglow/pkg/math"

// MaterialKind selects the shading model.
type MaterialKind int

const (
	// Phong is a lit surface with optional colour and bump maps.
	Phong MaterialKind = iota
	// Basic is an unlit textured surface.
	Basic
	// Fresnel is the view-angle dependent rim glow.
	Fresnel
	// PointSprite draws per-vertex coloured point sprites.
	PointSprite
)

func (k MaterialKind) String() string {
	switch k {
	case Phong:
		return "phong"
	case Basic:
		return "basic"
	case Fresnel:
		return "fresnel"
	case PointSprite:
		return "points"
	default:
		return "unknown"
	}
}

// Blending selects the framebuffer blend equation.
type Blending int

const (
	NormalBlending Blending = iota
	AdditiveBlending
)

// FresnelParams controls the rim glow.
type FresnelParams struct {
	RimColor    gm.Vec3
	FacingColor gm.Vec3
	Bias        float32
	Scale       float32
	Power       float32
}

// DefaultFresnel returns a blue atmospheric rim.
func DefaultFresnel() FresnelParams {
	return FresnelParams{
		RimColor:    HexColor(0x0088ff),
		FacingColor: HexColor(0x000000),
		Bias:        0.1,
		Scale:       1.0,
		Power:       4.0,
	}
}

// Material describes how a drawable is shaded. Texture fields are
// asset-relative paths; an empty path means no texture.
type Material struct {
	Kind  MaterialKind
	Color gm.Vec3

	Map       string
	BumpMap   string
	BumpScale float32

	Transparent bool
	Opacity     float32
	Blending    Blending
	DepthWrite  bool

	VertexColors bool
	Size         float32

	Fresnel FresnelParams
}

// NewPhong returns a lit material.
func NewPhong(colorMap, bumpMap string, bumpScale float32) Material {
	return Material{
		Kind:       Phong,
		Color:      gm.Splat(1),
		Map:        colorMap,
		BumpMap:    bumpMap,
		BumpScale:  bumpScale,
		Opacity:    1,
		DepthWrite: true,
	}
}

// NewBasic returns an unlit textured material.
func NewBasic(colorMap string) Material {
	return Material{
		Kind:       Basic,
		Color:      gm.Splat(1),
		Map:        colorMap,
		Opacity:    1,
		DepthWrite: true,
	}
}

// NewFresnel returns the additive rim glow material.
func NewFresnel(p FresnelParams) Material {
	return Material{
		Kind:        Fresnel,
		Color:       gm.Splat(1),
		Transparent: true,
		Opacity:     1,
		Blending:    AdditiveBlending,
		DepthWrite:  true,
		Fresnel:     p,
	}
}

// NewPointSprite returns a material for a star cloud.
func NewPointSprite(sprite string, size float32) Material {
	return Material{
		Kind:         PointSprite,
		Color:        gm.Splat(1),
		Map:          sprite,
		Opacity:      1,
		VertexColors: true,
		Size:         size,
		DepthWrite:   true,
	}
}

// Textures lists the texture paths referenced by the material.
func (m Material) Textures() []string {
	var out []string
	if m.Map != "" {
		out = append(out, m.Map)
	}
	if m.BumpMap != "" {
		out = append(out, m.BumpMap)
	}
	return out
}

// HexColor converts 0xRRGGBB to an sRGB colour in [0,1].
func HexColor(hex uint32) gm.Vec3 {
	return gm.Vec3{
		X: float32(hex>>16&0xff) / 255,
		Y: float32(hex>>8&0xff) / 255,
		Z: float32(hex&0xff) / 255,
	}
}
