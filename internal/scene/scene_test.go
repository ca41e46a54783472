package scene

import (
	"math"
	"testing"

	"github.com/Faultbox/earthglow/internal/starfield"
	gm "github.com/Faultbox/earthglow/pkg/math"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Detail = 2
	return cfg
}

func TestEarthLayersShareGeometry(t *testing.T) {
	s := New(testConfig(), nil)
	layers := s.Earth.Layers()
	if len(layers) != 3 {
		t.Fatalf("earth has %d layers, want 3", len(layers))
	}

	wantScale := map[string]float32{SurfaceName: 1, CloudsName: CloudScale, GlowName: GlowScale}
	for _, l := range layers {
		mesh, ok := l.Drawable.(*Mesh)
		if !ok {
			t.Fatalf("layer %s is not a mesh", l.Name)
		}
		if mesh.Geometry != s.Earth.Geometry {
			t.Errorf("layer %s does not share the earth geometry", l.Name)
		}
		if l.Parent() != s.Earth.Group {
			t.Errorf("layer %s is not parented to the earth group", l.Name)
		}
		if l.Scale != gm.Splat(wantScale[l.Name]) {
			t.Errorf("layer %s scale = %v, want %v", l.Name, l.Scale, wantScale[l.Name])
		}
	}
}

func TestEarthLayerMaterials(t *testing.T) {
	s := New(testConfig(), nil)

	clouds := s.Root.Find(CloudsName).Drawable.(*Mesh).Material
	if !clouds.Transparent || clouds.Opacity != 0.8 || clouds.Blending != AdditiveBlending {
		t.Errorf("clouds material = %+v", clouds)
	}

	glow := s.Root.Find(GlowName).Drawable.(*Mesh).Material
	if glow.Kind != Fresnel || glow.Blending != AdditiveBlending {
		t.Errorf("glow material = %+v", glow)
	}
	if glow.Fresnel.RimColor != HexColor(0x0088ff) {
		t.Errorf("rim colour = %v", glow.Fresnel.RimColor)
	}

	surface := s.Root.Find(SurfaceName).Drawable.(*Mesh).Material
	if surface.Kind != Phong || surface.BumpScale != 0.04 {
		t.Errorf("surface material = %+v", surface)
	}
}

func TestLayersFollowGroupRotation(t *testing.T) {
	s := New(testConfig(), nil)
	s.Earth.Group.Rotation.Y = 1.3

	probe := gm.V3(1, 0, 0)
	want := gm.RotateY(1.3).TransformVec3(probe)

	for _, l := range s.Earth.Layers() {
		got := l.WorldMatrix().TransformDirection(probe).Scale(1 / l.Scale.X)
		if !got.ApproxEqual(want, 1e-5) {
			t.Errorf("layer %s direction = %v, want %v", l.Name, got, want)
		}
	}
}

func TestWorldMatrixIncludesParent(t *testing.T) {
	g := NewGroup("g")
	g.Position = gm.V3(10, 0, 0)
	c := NewGroup("c")
	c.Position = gm.V3(0, 5, 0)
	g.Add(c)

	if got := c.WorldMatrix().Translation(); got != gm.V3(10, 5, 0) {
		t.Errorf("world translation = %v, want (10, 5, 0)", got)
	}
}

func TestAddReparents(t *testing.T) {
	a := NewGroup("a")
	b := NewGroup("b")
	c := NewGroup("c")
	a.Add(c)
	b.Add(c)

	if len(a.Children) != 0 {
		t.Errorf("a still has %d children", len(a.Children))
	}
	if c.Parent() != b {
		t.Error("c should be parented to b")
	}
	if !b.Remove(c) || c.Parent() != nil {
		t.Error("Remove did not detach c")
	}
	if b.Remove(c) {
		t.Error("second Remove should report false")
	}
}

func TestWalkSkipsInvisible(t *testing.T) {
	root := NewGroup("root")
	hidden := NewGroup("hidden")
	hidden.Visible = false
	hidden.Add(NewGroup("under-hidden"))
	root.Add(hidden, NewGroup("shown"))

	var names []string
	root.Walk(func(n *Node, _ gm.Mat4) {
		names = append(names, n.Name)
	})
	if len(names) != 2 || names[0] != "root" || names[1] != "shown" {
		t.Errorf("walked %v, want [root shown]", names)
	}
}

func TestSceneWithStars(t *testing.T) {
	stars := starfield.New(100, 3)
	s := New(testConfig(), stars)

	if s.Stars == nil {
		t.Fatal("stars node missing")
	}
	pts := s.Stars.Drawable.(*Points)
	if pts.Cloud != stars || pts.Material.Size != starfield.DefaultPointSize || !pts.Material.VertexColors {
		t.Errorf("unexpected points drawable %+v", pts.Material)
	}

	tex := s.Textures()
	if len(tex) != 6 {
		t.Errorf("Textures() = %v, want 6 entries", tex)
	}
}

func TestSceneWithoutStars(t *testing.T) {
	s := New(testConfig(), nil)
	if s.Stars != nil {
		t.Error("expected no stars node")
	}
	if len(s.Textures()) != 5 {
		t.Errorf("Textures() = %v, want 5 entries", s.Textures())
	}
}

func TestBodySizes(t *testing.T) {
	s := New(testConfig(), nil)
	if math.Abs(float64(s.Earth.Radius)-6.371) > 1e-4 {
		t.Errorf("earth radius = %v", s.Earth.Radius)
	}
	if math.Abs(float64(s.Moon.Radius)-1.737) > 1e-4 {
		t.Errorf("moon radius = %v", s.Moon.Radius)
	}
}

func TestHexColor(t *testing.T) {
	if got := HexColor(0xff0000); got != gm.V3(1, 0, 0) {
		t.Errorf("HexColor(0xff0000) = %v", got)
	}
}
