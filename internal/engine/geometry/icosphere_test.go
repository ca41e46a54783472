package geometry

import (
	"math"
	"testing"
)

func TestIcosphereVertexCount(t *testing.T) {
	tests := []struct {
		detail int
		want   int
	}{
		{0, 60},
		{1, 20 * 4 * 3},
		{12, 20 * 169 * 3},
	}

	for _, tt := range tests {
		g := Icosphere(1, tt.detail)
		if got := g.VertexCount(); got != tt.want {
			t.Errorf("detail %d: %d vertices, want %d", tt.detail, got, tt.want)
		}
		if len(g.Normals) != len(g.Positions) {
			t.Errorf("detail %d: normals/positions mismatch", tt.detail)
		}
		if len(g.UVs) != g.VertexCount()*2 {
			t.Errorf("detail %d: %d uv floats, want %d", tt.detail, len(g.UVs), g.VertexCount()*2)
		}
	}
}

func TestIcosphereOnSphere(t *testing.T) {
	const radius = 12.742 / 2
	g := Icosphere(radius, 4)

	for i := 0; i < g.VertexCount(); i++ {
		x, y, z := g.Positions[i*3], g.Positions[i*3+1], g.Positions[i*3+2]
		r := math.Sqrt(float64(x*x + y*y + z*z))
		if math.Abs(r-radius) > 1e-4 {
			t.Fatalf("vertex %d at radius %v, want %v", i, r, radius)
		}

		nx, ny, nz := g.Normals[i*3], g.Normals[i*3+1], g.Normals[i*3+2]
		nl := math.Sqrt(float64(nx*nx + ny*ny + nz*nz))
		if math.Abs(nl-1) > 1e-5 {
			t.Fatalf("normal %d has length %v", i, nl)
		}
	}
}

func TestIcosphereUVRange(t *testing.T) {
	g := Icosphere(1, 3)
	for i := 0; i < len(g.UVs); i += 2 {
		u, v := g.UVs[i], g.UVs[i+1]
		if u < 0 || u > 1.2 {
			t.Fatalf("u[%d] = %v out of range", i/2, u)
		}
		if v < 0 || v > 1 {
			t.Fatalf("v[%d] = %v out of range", i/2, v)
		}
	}
}

func TestIcosphereNorthPoleAtTop(t *testing.T) {
	g := Icosphere(1, 0)
	// Vertex 0 of the first face is the icosahedron's upper vertex (-1, t, 0).
	for i := 0; i < g.VertexCount(); i++ {
		if g.Normals[i*3+1] > 0.85 && g.UVs[i*2+1] < 0.5 {
			t.Fatalf("upper vertex %d has v = %v, want > 0.5", i, g.UVs[i*2+1])
		}
	}
}

func TestFixSeam(t *testing.T) {
	us := [3]float32{0.95, 0.02, 0.97}
	fixSeam(&us)
	if math.Abs(float64(us[1])-1.02) > 1e-6 {
		t.Errorf("seam vertex u = %v, want 1.02", us[1])
	}

	plain := [3]float32{0.4, 0.45, 0.5}
	fixSeam(&plain)
	if plain != [3]float32{0.4, 0.45, 0.5} {
		t.Errorf("non-seam triangle changed: %v", plain)
	}
}

func TestInterleaved(t *testing.T) {
	g := Icosphere(2, 0)
	data := g.Interleaved()
	if len(data) != g.VertexCount()*8 {
		t.Fatalf("interleaved length %d, want %d", len(data), g.VertexCount()*8)
	}
	if data[0] != g.Positions[0] || data[3] != g.Normals[0] || data[6] != g.UVs[0] {
		t.Error("interleaved layout mismatch for first vertex")
	}
}
