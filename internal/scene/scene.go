package scene

import (
	"github.com/Faultbox/earthglow/internal/engine/lighting"
	"github.com/Faultbox/earthglow/internal/starfield"
	gm "github.com/Faultbox/earthglow/pkg/math"
)

// Reference sizes, in thousands of kilometres.
const (
	EarthDiameter = 12.742
	MoonDiameter  = 3.474
	DefaultDetail = 12
)

// Config describes the bodies and lights of the scene.
type Config struct {
	EarthDiameter float32
	MoonDiameter  float32
	Detail        int

	Earth EarthAssets
	Moon  MoonAssets

	Background gm.Vec3
	Ambient    lighting.Ambient
	Sun        lighting.Sun
}

// DefaultConfig returns the reference scene: an ambient-lit Earth and Moon
// on a black background.
func DefaultConfig() Config {
	return Config{
		EarthDiameter: EarthDiameter,
		MoonDiameter:  MoonDiameter,
		Detail:        DefaultDetail,
		Earth: EarthAssets{
			Map:     "earth/earth_10k.jpg",
			BumpMap: "earth/earth_topo_10k.jpg",
			Clouds:  "earth/earth_clouds_active2.png",
		},
		Moon: MoonAssets{
			Map:     "earth/moon/moon_4k.jpg",
			BumpMap: "earth/moon/moon_topo_4k.jpg",
		},
		Background: gm.Vec3{},
		Ambient:    lighting.Ambient{Color: gm.Splat(1), Intensity: 1},
	}
}

// Scene is the complete graph plus global lighting.
type Scene struct {
	Root       *Node
	Background gm.Vec3
	Ambient    lighting.Ambient
	Sun        lighting.Sun

	Earth *Body
	Moon  *Body
	Stars *Node
}

// New builds the scene. stars may be nil, in which case no point cloud is
// added.
func New(cfg Config, stars *starfield.Cloud) *Scene {
	s := &Scene{
		Root:       NewGroup("root"),
		Background: cfg.Background,
		Ambient:    cfg.Ambient,
		Sun:        cfg.Sun,
	}

	if stars != nil {
		s.Stars = NewNode(StarsName, &Points{
			Cloud:    stars,
			Material: NewPointSprite(stars.Sprite, stars.Size),
		})
		s.Root.Add(s.Stars)
	}

	s.Earth = NewEarth(cfg.EarthDiameter, cfg.Detail, cfg.Earth)
	s.Root.Add(s.Earth.Group)

	s.Moon = NewMoon(cfg.MoonDiameter, cfg.Detail, cfg.Moon)
	s.Root.Add(s.Moon.Group)

	return s
}

// Textures returns every texture path referenced by the scene, once each.
func (s *Scene) Textures() []string {
	seen := make(map[string]bool)
	var out []string
	s.Root.Walk(func(n *Node, _ gm.Mat4) {
		var m Material
		switch d := n.Drawable.(type) {
		case *Mesh:
			m = d.Material
		case *Points:
			m = d.Material
		default:
			return
		}
		for _, p := range m.Textures() {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	})
	return out
}
