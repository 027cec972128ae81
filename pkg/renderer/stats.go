package renderer

import (
	"github.com/soypat/glgl/math/ms3"

	"github.com/reactor-gpu/reactor-go/pkg/core"
)

// RenderStats aggregates per-ray outcomes for a render region or pass
type RenderStats struct {
	TotalPixels      int     // Number of pixels rendered
	TotalSteps       int     // March iterations across all primary rays
	AverageSteps     float64 // Mean iterations per primary ray
	MaxStepsUsed     int     // Highest iteration count of any primary ray
	HitCount         int     // Primary rays that converged onto a surface
	HitRate          float64 // HitCount / TotalPixels
	MissedBySteps    int     // Rays that exhausted the step budget
	MissedByDistance int     // Rays that left the scene boundary
}

// Merge folds another stats block into the receiver
func (rs *RenderStats) Merge(other RenderStats) {
	rs.TotalPixels += other.TotalPixels
	rs.TotalSteps += other.TotalSteps
	rs.MaxStepsUsed = max(rs.MaxStepsUsed, other.MaxStepsUsed)
	rs.HitCount += other.HitCount
	rs.MissedBySteps += other.MissedBySteps
	rs.MissedByDistance += other.MissedByDistance
	rs.finalize()
}

// record accumulates a single primary-ray outcome
func (rs *RenderStats) record(result core.MarchResult) {
	rs.TotalPixels++
	rs.TotalSteps += result.Steps
	rs.MaxStepsUsed = max(rs.MaxStepsUsed, result.Steps)
	switch result.Status {
	case core.Hit:
		rs.HitCount++
	case core.MissMaxSteps:
		rs.MissedBySteps++
	case core.MissMaxDistance:
		rs.MissedByDistance++
	}
}

func (rs *RenderStats) finalize() {
	if rs.TotalPixels > 0 {
		rs.AverageSteps = float64(rs.TotalSteps) / float64(rs.TotalPixels)
		rs.HitRate = float64(rs.HitCount) / float64(rs.TotalPixels)
	}
}

// PixelValue is the shaded state of one pixel in the shared grid
type PixelValue struct {
	Color    ms3.Vec // Final linear color, coverage already applied
	Status   core.Status
	Steps    int
	Rendered bool // False until some pass has written this pixel
}

// PixelGrid is the shared render target. Tiles have non-overlapping
// bounds, so workers write to disjoint regions without locking.
type PixelGrid struct {
	Width, Height int
	Pixels        [][]PixelValue // [y][x], global image coordinates
}

// NewPixelGrid allocates a cleared grid
func NewPixelGrid(width, height int) *PixelGrid {
	pixels := make([][]PixelValue, height)
	for y := range pixels {
		pixels[y] = make([]PixelValue, width)
	}
	return &PixelGrid{Width: width, Height: height, Pixels: pixels}
}

// At returns a pointer to the pixel at (x, y)
func (g *PixelGrid) At(x, y int) *PixelValue {
	return &g.Pixels[y][x]
}
