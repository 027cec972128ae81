package sdf

import (
	"math"
	"testing"

	"github.com/soypat/glgl/math/ms3"
)

func almostEqualVec(a, b ms3.Vec, tol float64) bool {
	return math.Abs(float64(a.X-b.X)) <= tol &&
		math.Abs(float64(a.Y-b.Y)) <= tol &&
		math.Abs(float64(a.Z-b.Z)) <= tol
}

func TestTransform_Identity(t *testing.T) {
	id := Identity()
	if !id.IsIdentity() {
		t.Error("Identity() must report IsIdentity")
	}
	p := ms3.Vec{X: 1, Y: -2, Z: 3}
	if got := id.ToLocal(p); got != p {
		t.Errorf("Identity ToLocal moved the point: %v", got)
	}
	if got := id.ScaleDistance(1.5); got != 1.5 {
		t.Errorf("Identity ScaleDistance changed the distance: %f", got)
	}
}

func TestTransform_TranslationOnly(t *testing.T) {
	tr := Translated(ms3.Vec{X: 1, Y: 2, Z: 3})
	if tr.IsIdentity() {
		t.Error("Translation must not report IsIdentity")
	}
	got := tr.ToLocal(ms3.Vec{X: 1, Y: 2, Z: 3})
	if got != (ms3.Vec{}) {
		t.Errorf("Expected origin in local space, got %v", got)
	}
}

func TestTransform_Rotation(t *testing.T) {
	// Quarter turn around Y. ToLocal applies the inverse, so a point
	// placed by the forward rotation maps back to its original spot.
	tr, err := NewTransform(ms3.Vec{}, float32(math.Pi/2), ms3.Vec{Y: 1}, 1)
	if err != nil {
		t.Fatalf("NewTransform failed: %v", err)
	}
	// Forward quarter turn around +Y sends +X to -Z.
	got := tr.ToLocal(ms3.Vec{Z: -1})
	if !almostEqualVec(got, ms3.Vec{X: 1}, 1e-5) {
		t.Errorf("Expected local point (1,0,0), got %v", got)
	}
}

func TestTransform_ScalePreservesDistanceBound(t *testing.T) {
	tr, err := NewTransform(ms3.Vec{}, 0, ms3.Vec{}, 2)
	if err != nil {
		t.Fatalf("NewTransform failed: %v", err)
	}
	sphere := Sphere(ms3.Vec{}, 1)
	// A unit sphere scaled by 2 has its surface at radius 2: a point at
	// x=5 is exactly 3 away in world units.
	d := tr.ScaleDistance(sphere.Distance(tr.ToLocal(ms3.Vec{X: 5})))
	if math.Abs(float64(d-3.0)) > 1e-5 {
		t.Errorf("Expected world distance 3.0, got %f", d)
	}
	if tr.Scale() != 2 {
		t.Errorf("Expected scale 2, got %f", tr.Scale())
	}
}

func TestTransform_ComposedRoundTrip(t *testing.T) {
	tr, err := NewTransform(ms3.Vec{X: 4}, float32(math.Pi), ms3.Vec{Z: 1}, 0.5)
	if err != nil {
		t.Fatalf("NewTransform failed: %v", err)
	}
	// World point at the transform's translation maps to the local origin
	// regardless of rotation and scale.
	got := tr.ToLocal(ms3.Vec{X: 4})
	if !almostEqualVec(got, ms3.Vec{}, 1e-5) {
		t.Errorf("Expected local origin, got %v", got)
	}
}

func TestNewTransform_Validation(t *testing.T) {
	if _, err := NewTransform(ms3.Vec{}, 0, ms3.Vec{}, 0); err == nil {
		t.Error("Expected error for zero scale")
	}
	if _, err := NewTransform(ms3.Vec{}, 0, ms3.Vec{}, -1); err == nil {
		t.Error("Expected error for negative scale")
	}
	if _, err := NewTransform(ms3.Vec{}, 1, ms3.Vec{}, 1); err == nil {
		t.Error("Expected error for null rotation axis")
	}
	if _, err := NewTransform(ms3.Vec{}, 0, ms3.Vec{}, 1); err != nil {
		t.Errorf("Zero rotation with null axis must be valid, got %v", err)
	}
}
