package picking

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/earthglow/pkg/math"
)

func TestIntersectSphere(t *testing.T) {
	tests := []struct {
		name   string
		ray    Ray
		center math.Vec3
		radius float32
		wantT  float32
		wantOK bool
	}{
		{"head on", Ray{math.V3(0, 0, 10), math.V3(0, 0, -1)}, math.Vec3{}, 2, 8, true},
		{"miss", Ray{math.V3(5, 0, 10), math.V3(0, 0, -1)}, math.Vec3{}, 2, 0, false},
		{"behind", Ray{math.V3(0, 0, 10), math.V3(0, 0, 1)}, math.Vec3{}, 2, 0, false},
		{"inside", Ray{math.Vec3{}, math.V3(1, 0, 0)}, math.Vec3{}, 3, 3, true},
		{"offset centre", Ray{math.V3(38.4, 0, 10), math.V3(0, 0, -1)}, math.V3(38.4, 0, 0), 1.737, 10 - 1.737, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.ray.IntersectSphere(tt.center, tt.radius)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && gomath.Abs(float64(got-tt.wantT)) > 1e-4 {
				t.Errorf("t = %v, want %v", got, tt.wantT)
			}
		})
	}
}

func TestScreenToRayCentre(t *testing.T) {
	eye := math.V3(0, 0, 20)
	view := math.LookAt(eye, math.Vec3{}, math.V3(0, 1, 0))
	proj := math.Perspective(float32(gomath.Pi/2), 1, 0.1, 1000)
	inv := proj.Mul(view).Inverse()

	ray := ScreenToRay(400, 400, 800, 800, inv)

	if !ray.Direction.ApproxEqual(math.V3(0, 0, -1), 1e-3) {
		t.Errorf("direction = %v, want (0,0,-1)", ray.Direction)
	}
	if d, ok := ray.IntersectSphere(math.Vec3{}, 6.371); !ok || gomath.Abs(float64(ray.At(d).Z-6.371)) > 1e-2 {
		t.Errorf("centre ray should hit the near side of the sphere, got %v %v", d, ok)
	}
}

func TestScreenToRayCorner(t *testing.T) {
	eye := math.V3(0, 0, 20)
	view := math.LookAt(eye, math.Vec3{}, math.V3(0, 1, 0))
	proj := math.Perspective(float32(gomath.Pi/2), 1, 0.1, 1000)
	inv := proj.Mul(view).Inverse()

	// Top-left pixel points up and to the left at 45 degrees each way.
	ray := ScreenToRay(0, 0, 800, 800, inv)
	if ray.Direction.X >= 0 || ray.Direction.Y <= 0 {
		t.Errorf("top-left direction = %v", ray.Direction)
	}
	if _, ok := ray.IntersectSphere(math.Vec3{}, 2); ok {
		t.Error("corner ray should miss a small sphere")
	}
}
