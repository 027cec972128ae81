package renderer

import (
	"math"
	"testing"

	"github.com/soypat/glgl/math/ms3"

	"github.com/reactor-gpu/reactor-go/pkg/core"
	"github.com/reactor-gpu/reactor-go/pkg/scene"
	"github.com/reactor-gpu/reactor-go/pkg/sdf"
)

func buildScene(t *testing.T, b *scene.Builder) *scene.Scene {
	t.Helper()
	s, err := b.Build()
	if err != nil {
		t.Fatalf("Failed to build scene: %v", err)
	}
	return s
}

func singleSphereScene(t *testing.T) *scene.Scene {
	// Unit sphere at z=-5, camera rays start at the origin.
	return buildScene(t, scene.NewBuilder().
		Add(sdf.Sphere(ms3.Vec{Z: -5}, 1)).Color(ms3.Vec{X: 1}))
}

func TestMarcher_SingleSphereHit(t *testing.T) {
	m := NewMarcher(singleSphereScene(t), core.DefaultMarchConfig())
	result := m.March(core.NewRay(ms3.Vec{}, ms3.Vec{Z: -1}))

	if result.Status != core.Hit {
		t.Fatalf("Expected hit, got %v after %d steps", result.Status, result.Steps)
	}
	// The sphere surface is 4 units down the ray.
	if math.Abs(float64(result.T-4.0)) > 0.01 {
		t.Errorf("Expected T near 4.0, got %f", result.T)
	}
	if result.Material != 0 {
		t.Errorf("Expected material 0, got %d", result.Material)
	}
	// Head-on hit: the normal points straight back at the camera.
	if math.Abs(float64(result.Normal.Z-1.0)) > 1e-3 {
		t.Errorf("Expected normal (0,0,1), got %v", result.Normal)
	}
}

func TestMarcher_MissLeavesScene(t *testing.T) {
	m := NewMarcher(singleSphereScene(t), core.DefaultMarchConfig())
	result := m.March(core.NewRay(ms3.Vec{}, ms3.Vec{Y: 1}))

	if result.Status != core.MissMaxDistance {
		t.Fatalf("Expected miss by distance, got %v", result.Status)
	}
	if result.Material != -1 {
		t.Errorf("Expected material -1 on miss, got %d", result.Material)
	}
}

func TestMarcher_EmptySceneMissesImmediately(t *testing.T) {
	m := NewMarcher(buildScene(t, scene.NewBuilder()), core.DefaultMarchConfig())
	result := m.March(core.NewRay(ms3.Vec{}, ms3.Vec{Z: -1}))

	if result.Status != core.MissMaxDistance {
		t.Fatalf("Expected miss by distance, got %v", result.Status)
	}
	if result.Steps != 1 {
		t.Errorf("Expected a single step, got %d", result.Steps)
	}
}

func TestMarcher_GrazingRayExhaustsSteps(t *testing.T) {
	// A ray running exactly tangent to the sphere keeps getting tiny
	// but positive distances and must be stopped by the step budget.
	s := buildScene(t, scene.NewBuilder().
		Add(sdf.Sphere(ms3.Vec{Z: -5, Y: -1}, 1)).Color(ms3.Vec{X: 1}))
	cfg := core.DefaultMarchConfig()
	cfg.Epsilon = 1e-7 // Force non-convergence at the tangent point
	m := NewMarcher(s, cfg)

	result := m.March(core.NewRay(ms3.Vec{}, ms3.Vec{Z: -1}))
	if result.Status == core.Hit {
		t.Fatalf("Tangent ray must not converge, got hit at T=%f", result.T)
	}
	if result.Steps > cfg.MaxSteps {
		t.Errorf("Step count %d exceeds budget %d", result.Steps, cfg.MaxSteps)
	}
}

func TestMarcher_EveryRayTerminates(t *testing.T) {
	s := buildScene(t, scene.NewBuilder().
		Add(sdf.Plane(ms3.Vec{Y: 1}, 1)).Color(ms3.Vec{X: 1}).
		Add(sdf.Sphere(ms3.Vec{Z: -3}, 1)).Color(ms3.Vec{Y: 1}))
	m := NewMarcher(s, core.PerformanceMarchConfig())

	dirs := []ms3.Vec{
		{Z: -1}, {Z: 1}, {Y: 1}, {Y: -1}, {X: 1},
		{X: 1, Y: 1, Z: -1}, {X: -0.3, Y: -0.1, Z: -1},
	}
	for _, dir := range dirs {
		result := m.March(core.NewRay(ms3.Vec{Y: 0.5}, dir))
		if result.Steps > m.Config().MaxSteps {
			t.Errorf("Ray %v took %d steps, budget is %d", dir, result.Steps, m.Config().MaxSteps)
		}
	}
}

func TestMarcher_NormalMatchesSphereGeometry(t *testing.T) {
	s := singleSphereScene(t)
	m := NewMarcher(s, core.DefaultMarchConfig())

	// Hit the sphere off-axis and compare the estimated normal with the
	// analytic normalize(hit - center).
	result := m.March(core.NewRay(ms3.Vec{}, ms3.Vec{X: 0.1, Y: 0.05, Z: -1}))
	if result.Status != core.Hit {
		t.Fatalf("Expected hit, got %v", result.Status)
	}
	analytic := normalize(ms3.Sub(result.Point, ms3.Vec{Z: -5}))
	diff := ms3.Norm(ms3.Sub(result.Normal, analytic))
	if diff > 1e-3 {
		t.Errorf("Normal %v deviates from analytic %v by %f", result.Normal, analytic, diff)
	}
}

func TestMarcher_WithMaxStepsDoesNotMutate(t *testing.T) {
	m := NewMarcher(singleSphereScene(t), core.DefaultMarchConfig())
	budgeted := m.WithMaxSteps(16)
	if m.Config().MaxSteps != 128 {
		t.Errorf("Original marcher budget changed to %d", m.Config().MaxSteps)
	}
	if budgeted.Config().MaxSteps != 16 {
		t.Errorf("Expected budget 16, got %d", budgeted.Config().MaxSteps)
	}
	if budgeted.Config().Epsilon != m.Config().Epsilon {
		t.Error("WithMaxSteps must keep the other thresholds")
	}
}

func TestMarcher_SoftShadowFullyLitAndOccluded(t *testing.T) {
	// A sphere floating above a ground plane, light straight down +Y.
	s := buildScene(t, scene.NewBuilder().
		Add(sdf.Plane(ms3.Vec{Y: 1}, 0)).Color(ms3.Vec{X: 1}).
		Add(sdf.Sphere(ms3.Vec{Y: 2}, 0.5)).Color(ms3.Vec{Y: 1}))
	m := NewMarcher(s, core.DefaultMarchConfig())
	up := ms3.Vec{Y: 1}

	// Directly under the sphere: fully occluded.
	shadow := m.SoftShadow(ms3.Vec{}, up, 16)
	if shadow > 0.05 {
		t.Errorf("Expected near-zero shadow factor under the sphere, got %f", shadow)
	}
	// Far to the side: fully lit.
	lit := m.SoftShadow(ms3.Vec{X: 10}, up, 16)
	if lit < 0.95 {
		t.Errorf("Expected near-full light away from the sphere, got %f", lit)
	}
	// Penumbra region is strictly between the two.
	penumbra := m.SoftShadow(ms3.Vec{X: 0.62}, up, 4)
	if penumbra <= shadow || penumbra >= lit {
		t.Errorf("Expected penumbra between %f and %f, got %f", shadow, lit, penumbra)
	}
}

func TestMarcher_AmbientOcclusionOpenVsCorner(t *testing.T) {
	// An open plane against the inside corner of a subtracted box.
	s := buildScene(t, scene.NewBuilder().
		Add(sdf.Plane(ms3.Vec{Y: 1}, 0)).Color(ms3.Vec{X: 1}).
		Add(sdf.Box(ms3.Vec{X: 0.6, Y: 0.6}, ms3.Vec{X: 0.5, Y: 0.5, Z: 4})).Color(ms3.Vec{Y: 1}))
	m := NewMarcher(s, core.DefaultMarchConfig())
	up := ms3.Vec{Y: 1}

	open := m.AmbientOcclusion(ms3.Vec{X: -5}, up, 5)
	corner := m.AmbientOcclusion(ms3.Vec{X: 0.05}, up, 5)
	if open < 0.95 {
		t.Errorf("Expected open ground nearly unoccluded, got %f", open)
	}
	if corner >= open {
		t.Errorf("Expected corner %f darker than open ground %f", corner, open)
	}
}
