package renderer

import (
	"image"
	"testing"

	"github.com/soypat/glgl/math/ms3"

	"github.com/reactor-gpu/reactor-go/pkg/core"
	"github.com/reactor-gpu/reactor-go/pkg/scene"
	"github.com/reactor-gpu/reactor-go/pkg/sdf"
)

func TestRenderer_SingleSphereImage(t *testing.T) {
	s := buildScene(t, scene.NewBuilder().
		Add(sdf.Sphere(ms3.Vec{Z: -5}, 1)).Color(ms3.Vec{X: 1}).
		Camera(core.CameraConfig{
			Position: ms3.Vec{},
			LookAt:   ms3.Vec{Z: -1},
			Up:       ms3.Vec{Y: 1},
			VFOV:     60,
		}))
	r := NewRenderer(s, 64, 64, core.DefaultMarchConfig())
	img, stats := r.RenderImage()

	if img.Bounds() != image.Rect(0, 0, 64, 64) {
		t.Fatalf("Unexpected image bounds %v", img.Bounds())
	}
	// The sphere fills the image center; corners see background.
	center := img.RGBAAt(32, 32)
	corner := img.RGBAAt(1, 1)
	if center.R <= center.B {
		t.Errorf("Expected a red sphere at the center, got %v", center)
	}
	if corner.B <= corner.R {
		t.Errorf("Expected blue-ish background in the corner, got %v", corner)
	}

	if stats.TotalPixels != 64*64 {
		t.Errorf("Expected %d pixels in stats, got %d", 64*64, stats.TotalPixels)
	}
	if stats.HitCount == 0 || stats.HitRate <= 0 || stats.HitRate >= 1 {
		t.Errorf("Expected partial hit rate, got %f (%d hits)", stats.HitRate, stats.HitCount)
	}
	if stats.MaxStepsUsed > core.DefaultMarchConfig().MaxSteps {
		t.Errorf("Stats report %d steps, over budget", stats.MaxStepsUsed)
	}
}

func TestRenderer_DeterministicOutput(t *testing.T) {
	s, err := scene.NewCSGDemoScene()
	if err != nil {
		t.Fatalf("Failed to build scene: %v", err)
	}
	r1 := NewRenderer(s, 32, 32, core.PerformanceMarchConfig())
	r2 := NewRenderer(s, 32, 32, core.PerformanceMarchConfig())
	img1, _ := r1.RenderImage()
	img2, _ := r2.RenderImage()

	for i := range img1.Pix {
		if img1.Pix[i] != img2.Pix[i] {
			t.Fatalf("Images differ at byte %d", i)
		}
	}
}

func TestRenderer_EmptySceneIsAllBackground(t *testing.T) {
	s := buildScene(t, scene.NewBuilder().
		Background(ms3.Vec{X: 1}, ms3.Vec{X: 1}))
	r := NewRenderer(s, 16, 16, core.DefaultMarchConfig())
	img, stats := r.RenderImage()

	if stats.HitCount != 0 {
		t.Errorf("Expected zero hits in empty scene, got %d", stats.HitCount)
	}
	if stats.MissedByDistance != 16*16 {
		t.Errorf("Expected all rays to miss by distance, got %d", stats.MissedByDistance)
	}
	px := img.RGBAAt(8, 8)
	if px.R == 0 || px.G != 0 {
		t.Errorf("Expected pure red background, got %v", px)
	}
}

func TestRenderer_SmoothUnionSoftensMidpoint(t *testing.T) {
	camera := core.CameraConfig{
		Position: ms3.Vec{},
		LookAt:   ms3.Vec{Z: -1},
		Up:       ms3.Vec{Y: 1},
		VFOV:     60,
	}
	hard := buildScene(t, scene.NewBuilder().
		Add(sdf.Sphere(ms3.Vec{X: -0.5, Z: -5}, 1)).Color(ms3.Vec{X: 1}).
		Add(sdf.Sphere(ms3.Vec{X: 0.5, Z: -5}, 1)).Color(ms3.Vec{X: 1}).
		Camera(camera))
	soft := buildScene(t, scene.NewBuilder().
		Add(sdf.Sphere(ms3.Vec{X: -0.5, Z: -5}, 1)).Color(ms3.Vec{X: 1}).
		SmoothAdd(sdf.Sphere(ms3.Vec{X: 0.5, Z: -5}, 1), 0.5).Color(ms3.Vec{X: 1}).
		Camera(camera))

	// Down the midline the blended field is closer to the camera than
	// the hard union, so the smooth surface hits at smaller T.
	ray := core.NewRay(ms3.Vec{}, ms3.Vec{Z: -1})
	hardHit := NewMarcher(hard, core.DefaultMarchConfig()).March(ray)
	softHit := NewMarcher(soft, core.DefaultMarchConfig()).March(ray)
	if hardHit.Status != core.Hit || softHit.Status != core.Hit {
		t.Fatalf("Both midline rays must hit, got %v and %v", hardHit.Status, softHit.Status)
	}
	if softHit.T >= hardHit.T {
		t.Errorf("Smooth union surface at T=%f must be in front of hard union at T=%f", softHit.T, hardHit.T)
	}
}

func TestRenderer_TwoSphereUnionScenario(t *testing.T) {
	s, err := scene.NewTwoSpheresScene()
	if err != nil {
		t.Fatalf("Failed to build scene: %v", err)
	}
	m := NewMarcher(s, core.DefaultMarchConfig())

	// A ray toward the left sphere hits material 0, toward the right
	// sphere material 1.
	left := m.March(core.NewRay(ms3.Vec{}, ms3.Vec{X: -0.5, Z: -5}))
	right := m.March(core.NewRay(ms3.Vec{}, ms3.Vec{X: 0.5, Z: -5}))
	if !left.DidHit() || !right.DidHit() {
		t.Fatalf("Both rays must hit, got %v and %v", left.Status, right.Status)
	}
	if left.Material != 0 || right.Material != 1 {
		t.Errorf("Expected materials 0 and 1, got %d and %d", left.Material, right.Material)
	}
}

func TestGridImage_ExtractsTileRegion(t *testing.T) {
	grid := NewPixelGrid(8, 8)
	grid.At(5, 6).Color = ms3.Vec{X: 1}
	grid.At(5, 6).Rendered = true

	img := gridImage(grid, image.Rect(4, 4, 8, 8))
	if img.Bounds() != image.Rect(0, 0, 4, 4) {
		t.Fatalf("Unexpected tile image bounds %v", img.Bounds())
	}
	if px := img.RGBAAt(1, 2); px.R != 255 {
		t.Errorf("Expected rendered pixel at relative (1,2), got %v", px)
	}
	if px := img.RGBAAt(0, 0); px.A != 0 {
		t.Errorf("Unrendered pixels must stay zero, got %v", px)
	}
}

func TestVec3ToColor_GammaAndClamp(t *testing.T) {
	tests := []struct {
		name  string
		in    ms3.Vec
		wantR uint8
	}{
		{"black", ms3.Vec{}, 0},
		{"white", ms3.Vec{X: 1, Y: 1, Z: 1}, 255},
		{"over range clamps", ms3.Vec{X: 3}, 255},
		{"negative clamps", ms3.Vec{X: -1}, 0},
		{"quarter gamma boosts to half", ms3.Vec{X: 0.25}, 127},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := vec3ToColor(tt.in)
			if got.R != tt.wantR {
				t.Errorf("Expected R=%d, got %d", tt.wantR, got.R)
			}
			if got.A != 255 {
				t.Errorf("Alpha must be opaque, got %d", got.A)
			}
		})
	}
}

func TestEdgeCoverage_InteriorAndSilhouette(t *testing.T) {
	const footprint = 0.01
	if c := EdgeCoverage(0, footprint); c != 1 {
		t.Errorf("Interior neighbor must give full coverage, got %f", c)
	}
	if c := EdgeCoverage(footprint*2, footprint); c != 0.5 {
		t.Errorf("Clear silhouette must give half coverage, got %f", c)
	}
	mid := EdgeCoverage(footprint/2, footprint)
	if mid <= 0.5 || mid >= 1 {
		t.Errorf("Partial silhouette coverage must be between 0.5 and 1, got %f", mid)
	}
	if c := EdgeCoverage(1, 0); c != 1 {
		t.Errorf("Zero footprint must disable coverage, got %f", c)
	}
}
