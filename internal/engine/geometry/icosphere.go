// Package geometry generates vertex data for the scene's bodies.
package geometry

import (
	"math"

	gm "github.com/Faultbox/earthglow/pkg/math"
)

// Geometry is non-indexed triangle data: three floats per position and
// normal, two per UV.
type Geometry struct {
	Positions []float32
	Normals   []float32
	UVs       []float32
	Radius    float32
}

// VertexCount returns the number of vertices.
func (g *Geometry) VertexCount() int {
	return len(g.Positions) / 3
}

// Interleaved returns position, normal and uv packed per vertex
// (8 floats, stride 32 bytes).
func (g *Geometry) Interleaved() []float32 {
	n := g.VertexCount()
	out := make([]float32, 0, n*8)
	for i := 0; i < n; i++ {
		out = append(out, g.Positions[i*3:i*3+3]...)
		out = append(out, g.Normals[i*3:i*3+3]...)
		out = append(out, g.UVs[i*2:i*2+2]...)
	}
	return out
}

var (
	icoT = float32((1 + math.Sqrt(5)) / 2)

	icoVertices = []gm.Vec3{
		{X: -1, Y: icoT}, {X: 1, Y: icoT}, {X: -1, Y: -icoT}, {X: 1, Y: -icoT},
		{Y: -1, Z: icoT}, {Y: 1, Z: icoT}, {Y: -1, Z: -icoT}, {Y: 1, Z: -icoT},
		{X: icoT, Z: -1}, {X: icoT, Z: 1}, {X: -icoT, Z: -1}, {X: -icoT, Z: 1},
	}

	icoFaces = [20][3]int{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}
)

// Icosphere builds a sphere by subdividing each icosahedron face into
// (detail+1)^2 triangles and projecting every vertex onto the sphere.
func Icosphere(radius float32, detail int) *Geometry {
	if detail < 0 {
		detail = 0
	}
	cols := detail + 1
	tris := 20 * cols * cols

	g := &Geometry{
		Positions: make([]float32, 0, tris*9),
		Normals:   make([]float32, 0, tris*9),
		UVs:       make([]float32, 0, tris*6),
		Radius:    radius,
	}

	for _, f := range icoFaces {
		subdivideFace(g, icoVertices[f[0]], icoVertices[f[1]], icoVertices[f[2]], cols, radius)
	}
	return g
}

func subdivideFace(g *Geometry, a, b, c gm.Vec3, cols int, radius float32) {
	v := make([][]gm.Vec3, cols+1)
	for i := 0; i <= cols; i++ {
		t := float32(i) / float32(cols)
		aj := a.Lerp(c, t)
		bj := b.Lerp(c, t)
		rows := cols - i

		v[i] = make([]gm.Vec3, rows+1)
		for j := 0; j <= rows; j++ {
			if j == 0 && i == cols {
				v[i][j] = aj
			} else {
				v[i][j] = aj.Lerp(bj, float32(j)/float32(rows))
			}
		}
	}

	for i := 0; i < cols; i++ {
		for j := 0; j < 2*(cols-i)-1; j++ {
			k := j / 2
			if j%2 == 0 {
				addTriangle(g, v[i][k+1], v[i+1][k], v[i][k], radius)
			} else {
				addTriangle(g, v[i][k+1], v[i+1][k+1], v[i+1][k], radius)
			}
		}
	}
}

func addTriangle(g *Geometry, a, b, c gm.Vec3, radius float32) {
	var us [3]float32
	verts := [3]gm.Vec3{a.Normalize(), b.Normalize(), c.Normalize()}
	for i, n := range verts {
		us[i] = azimuthU(n)
	}
	fixSeam(&us)

	for i, n := range verts {
		p := n.Scale(radius)
		g.Positions = append(g.Positions, p.X, p.Y, p.Z)
		g.Normals = append(g.Normals, n.X, n.Y, n.Z)
		g.UVs = append(g.UVs, us[i], 1-inclinationV(n))
	}
}

func azimuthU(n gm.Vec3) float32 {
	return float32(math.Atan2(float64(n.Z), float64(-n.X))/(2*math.Pi) + 0.5)
}

// inclinationV is 0 at the north pole; callers store 1-v so that v=1 is the
// top row of an equirectangular image.
func inclinationV(n gm.Vec3) float32 {
	xz := math.Sqrt(float64(n.X*n.X + n.Z*n.Z))
	return float32(math.Atan2(float64(-n.Y), xz)/math.Pi + 0.5)
}

// fixSeam shifts UVs of triangles straddling the u=0/1 seam so the texture
// does not wrap backwards across the triangle.
func fixSeam(us *[3]float32) {
	lo, hi := us[0], us[0]
	for _, u := range us[1:] {
		lo = min(lo, u)
		hi = max(hi, u)
	}
	if hi > 0.9 && lo < 0.1 {
		for i := range us {
			if us[i] < 0.2 {
				us[i]++
			}
		}
	}
}
