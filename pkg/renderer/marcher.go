package renderer

import (
	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"

	"github.com/reactor-gpu/reactor-go/pkg/core"
)

// Marcher sphere-traces rays through a scene. Each step advances by
// the full scene distance, which is safe because every distance
// function is a lower bound on the true distance. The marcher is
// stateless apart from its configuration, so one instance is shared
// across a worker's rays.
type Marcher struct {
	scene  core.Scene
	config core.MarchConfig
}

// NewMarcher creates a marcher for the given scene and configuration
func NewMarcher(scene core.Scene, config core.MarchConfig) *Marcher {
	return &Marcher{scene: scene, config: config}
}

// Config returns the marcher's configuration
func (m *Marcher) Config() core.MarchConfig {
	return m.config
}

// WithMaxSteps returns a copy of the marcher with a different step
// budget. Progressive passes ramp the budget without touching the
// other thresholds.
func (m *Marcher) WithMaxSteps(steps int) *Marcher {
	cfg := m.config
	cfg.MaxSteps = steps
	return &Marcher{scene: m.scene, config: cfg}
}

// March traces a single ray to termination. Every ray terminates: the
// loop is bounded by MaxSteps and the travel distance by MaxDistance,
// and an empty scene returns +Inf which overshoots the far boundary on
// the first step.
func (m *Marcher) March(ray core.Ray) core.MarchResult {
	cfg := m.config
	t := float32(0)
	minDist := math32.Inf(1)
	for steps := 1; steps <= cfg.MaxSteps; steps++ {
		p := ray.At(t)
		d, mat := m.scene.Evaluate(p)
		if d < minDist {
			minDist = d
		}
		if d < cfg.Epsilon {
			return core.MarchResult{
				Status:   core.Hit,
				Point:    p,
				Normal:   m.Normal(p),
				T:        t,
				Dist:     d,
				MinDist:  minDist,
				Steps:    steps,
				Material: mat,
			}
		}
		t += d
		if t > cfg.MaxDistance {
			return core.MarchResult{
				Status:   core.MissMaxDistance,
				T:        t,
				Dist:     d,
				MinDist:  minDist,
				Steps:    steps,
				Material: -1,
			}
		}
	}
	d, _ := m.scene.Evaluate(ray.At(t))
	return core.MarchResult{
		Status:   core.MissMaxSteps,
		T:        t,
		Dist:     d,
		MinDist:  minDist,
		Steps:    cfg.MaxSteps,
		Material: -1,
	}
}

// Normal estimates the surface normal at p by central differences,
// two scene evaluations per axis. The step size comes from the march
// configuration; too small a step loses precision in float32, too
// large rounds off sharp edges.
func (m *Marcher) Normal(p ms3.Vec) ms3.Vec {
	h := m.config.NormalStep
	n := ms3.Vec{
		X: m.distanceAt(ms3.Add(p, ms3.Vec{X: h})) - m.distanceAt(ms3.Sub(p, ms3.Vec{X: h})),
		Y: m.distanceAt(ms3.Add(p, ms3.Vec{Y: h})) - m.distanceAt(ms3.Sub(p, ms3.Vec{Y: h})),
		Z: m.distanceAt(ms3.Add(p, ms3.Vec{Z: h})) - m.distanceAt(ms3.Sub(p, ms3.Vec{Z: h})),
	}
	if ms3.Norm(n) == 0 {
		return ms3.Vec{Y: 1}
	}
	return normalize(n)
}

// SoftShadow marches a secondary ray from p toward the light and
// returns a shadow factor in [0,1]: 0 fully occluded, 1 fully lit.
// The penumbra comes from the classic k*d/t accumulation, where a
// surface passed at distance d when t along the shadow ray darkens
// proportionally. The loop is bounded, never recursive.
func (m *Marcher) SoftShadow(p, lightDir ms3.Vec, hardness float32) float32 {
	const maxShadowSteps = 32
	res := float32(1)
	t := m.config.Epsilon * 20
	for i := 0; i < maxShadowSteps && t < m.config.MaxDistance; i++ {
		d := m.distanceAt(ms3.Add(p, ms3.Scale(t, lightDir)))
		if d < m.config.Epsilon {
			return 0
		}
		res = math32.Min(res, hardness*d/t)
		t += clamp32(d, 0.01, 0.5)
	}
	return clamp32(res, 0, 1)
}

// AmbientOcclusion samples the distance field at increasing heights
// along the normal. Nearby geometry keeps the sampled distances below
// the sample heights, and the shortfall accumulates into occlusion
// with a decaying weight per tap.
func (m *Marcher) AmbientOcclusion(p, normal ms3.Vec, steps int) float32 {
	if steps <= 0 {
		return 1
	}
	occ := float32(0)
	weight := float32(1)
	for i := 1; i <= steps; i++ {
		h := 0.01 + 0.12*float32(i)
		d := m.distanceAt(ms3.Add(p, ms3.Scale(h, normal)))
		occ += (h - d) * weight
		weight *= 0.7
	}
	return clamp32(1-1.5*occ, 0, 1)
}

func (m *Marcher) distanceAt(p ms3.Vec) float32 {
	d, _ := m.scene.Evaluate(p)
	return d
}

func clamp32(x, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, x))
}
