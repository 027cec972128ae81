// Package renderer turns a scene into images: a pinhole camera feeds
// primary rays into a sphere-tracing marcher, hits are Phong-shaded
// with soft shadows and ambient occlusion, and a worker pool renders
// tiles in parallel across progressive step-budget passes.
package renderer

import (
	"image"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"

	"github.com/reactor-gpu/reactor-go/pkg/core"
)

// Renderer renders a scene region by region into a shared pixel grid.
// The scene is read-only during rendering, so one renderer per worker
// needs no synchronization beyond disjoint tile bounds.
type Renderer struct {
	scene      core.Scene
	camera     *Camera
	marcher    *Marcher
	width      int
	height     int
	pixelScale float32 // World-space pixel footprint per unit of ray travel
}

// NewRenderer creates a renderer for the given output size and march
// configuration. The camera comes from the scene's camera config.
func NewRenderer(scene core.Scene, width, height int, config core.MarchConfig) *Renderer {
	camConfig := scene.CameraConfig()
	camera := NewCamera(camConfig, float32(width)/float32(height))
	return &Renderer{
		scene:      scene,
		camera:     camera,
		marcher:    NewMarcher(scene, config),
		width:      width,
		height:     height,
		pixelScale: 2 * math32.Tan(camConfig.Radians()/2) / float32(height),
	}
}

// Config returns the renderer's march configuration
func (r *Renderer) Config() core.MarchConfig {
	return r.marcher.Config()
}

// RenderBounds renders the pixels inside bounds into the shared grid
// and returns stats for the region. stepBudget caps the march
// iterations for this pass; zero means the configured maximum.
func (r *Renderer) RenderBounds(bounds image.Rectangle, grid *PixelGrid, stepBudget int) RenderStats {
	marcher := r.marcher
	if stepBudget > 0 && stepBudget < marcher.Config().MaxSteps {
		marcher = marcher.WithMaxSteps(stepBudget)
	}
	shader := NewShader(r.scene, marcher)

	var stats RenderStats
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		// Seed the edge-coverage finite difference with a ray one pixel
		// left of the row so the first column has a neighbor too.
		neighbor := marcher.March(r.pixelRay(bounds.Min.X-1, y))
		prevMinDist := neighbor.MinDist

		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			ray := r.pixelRay(x, y)
			result := marcher.March(ray)

			color := shader.Shade(ray, result)
			if result.DidHit() {
				coverage := EdgeCoverage(prevMinDist, result.T*r.pixelScale)
				if coverage < 1 {
					bg := shader.backgroundGradient(ray)
					color = ms3.Add(ms3.Scale(1-coverage, bg), ms3.Scale(coverage, color))
				}
			}

			px := grid.At(x, y)
			px.Color = color
			px.Status = result.Status
			px.Steps = result.Steps
			px.Rendered = true

			stats.record(result)
			prevMinDist = result.MinDist
		}
	}
	stats.finalize()
	return stats
}

// RenderImage renders the full frame single-threaded and returns it.
// The parallel path lives in ProgressiveRenderer; this is the simple
// entry point for tests and one-shot renders.
func (r *Renderer) RenderImage() (*image.RGBA, RenderStats) {
	grid := NewPixelGrid(r.width, r.height)
	stats := r.RenderBounds(image.Rect(0, 0, r.width, r.height), grid, 0)
	return gridImage(grid, grid.Bounds()), stats
}

// pixelRay builds the primary ray through the center of pixel (x, y).
// Image y grows downward while camera t grows upward, hence the flip.
func (r *Renderer) pixelRay(x, y int) core.Ray {
	s := (float32(x) + 0.5) / float32(r.width)
	t := (float32(r.height-1-y) + 0.5) / float32(r.height)
	return r.camera.GetRay(s, t)
}

// Bounds returns the full-image rectangle of the grid
func (g *PixelGrid) Bounds() image.Rectangle {
	return image.Rect(0, 0, g.Width, g.Height)
}

// gridImage copies a region of the grid into a standalone RGBA image
// with its origin at (0, 0).
func gridImage(grid *PixelGrid, bounds image.Rectangle) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			px := grid.At(x, y)
			if !px.Rendered {
				continue
			}
			img.SetRGBA(x-bounds.Min.X, y-bounds.Min.Y, vec3ToColor(px.Color))
		}
	}
	return img
}
