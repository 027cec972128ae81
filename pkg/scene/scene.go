// Package scene aggregates SDF primitives into a renderable scene.
// A scene is an ordered list of entries folded left to right with CSG
// operators; evaluation at a point yields the combined signed distance
// and the material id that owns the nearest surface. Scenes are built
// through the Builder, which validates shape parameters and capacity
// up front so the render loop never has to.
package scene

import (
	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"

	"github.com/reactor-gpu/reactor-go/pkg/core"
	"github.com/reactor-gpu/reactor-go/pkg/sdf"
)

// MaxEntries bounds the CPU-side entry list. The packed GPU layout has
// its own, tighter capacity (PackedCapacity).
const MaxEntries = 64

// Entry is one primitive plus everything that folds it into the scene:
// the combining operator, its blend radius, the world-space transform,
// optional domain modifiers, and the material that paints it.
type Entry struct {
	Shape     sdf.Primitive
	Op        sdf.Op
	Smoothing float32
	Material  int
	Transform sdf.Transform

	// RepeatPeriod tiles the primitive over the given period per axis.
	// Zero components leave that axis untouched.
	RepeatPeriod ms3.Vec
	// TwistAmount bends the primitive around Y, radians per unit height.
	TwistAmount float32
}

// Scene is an immutable composition of entries plus the environment
// the renderer needs: material palette, background gradient, lighting
// and camera configuration. It is safe for concurrent use.
type Scene struct {
	entries   []Entry
	palette   []ms3.Vec
	bgTop     ms3.Vec
	bgBottom  ms3.Vec
	lighting  core.LightConfig
	camera    core.CameraConfig
	animation func(time float32, entries []Entry)
	time      float32
}

// Evaluate folds all entries at point p and returns the combined
// signed distance along with the winning material id. An empty scene
// is infinitely far away everywhere and has no material (-1).
func (s *Scene) Evaluate(p ms3.Vec) (float32, int) {
	if len(s.entries) == 0 {
		return math32.Inf(1), -1
	}
	d := entryDistance(&s.entries[0], p)
	mat := s.entries[0].Material
	for i := 1; i < len(s.entries); i++ {
		e := &s.entries[i]
		di := entryDistance(e, p)
		if sdf.FirstWins(e.Op, di, d) {
			mat = e.Material
		}
		d = sdf.Combine(e.Op, di, d, e.Smoothing)
	}
	return d, mat
}

// Distance is Evaluate without the material bookkeeping. Secondary
// rays (shadows, ambient occlusion, normals) use this cheaper path.
func (s *Scene) Distance(p ms3.Vec) float32 {
	if len(s.entries) == 0 {
		return math32.Inf(1)
	}
	d := entryDistance(&s.entries[0], p)
	for i := 1; i < len(s.entries); i++ {
		e := &s.entries[i]
		d = sdf.Combine(e.Op, entryDistance(e, p), d, e.Smoothing)
	}
	return d
}

func entryDistance(e *Entry, p ms3.Vec) float32 {
	if !e.Transform.IsIdentity() {
		p = e.Transform.ToLocal(p)
	}
	if e.RepeatPeriod != (ms3.Vec{}) {
		p = sdf.Repeat(p, e.RepeatPeriod)
	}
	if e.TwistAmount != 0 {
		p = sdf.Twist(p, e.TwistAmount)
	}
	return e.Transform.ScaleDistance(e.Shape.Distance(p))
}

// MaterialColor returns the palette color for a material id. Ids
// outside the palette (including the empty-scene -1) fall back to a
// neutral gray so a bad id shows up visibly instead of crashing.
func (s *Scene) MaterialColor(id int) ms3.Vec {
	if id < 0 || id >= len(s.palette) {
		return ms3.Vec{X: 0.5, Y: 0.5, Z: 0.5}
	}
	return s.palette[id]
}

// BackgroundColors returns the vertical background gradient endpoints
func (s *Scene) BackgroundColors() (top, bottom ms3.Vec) {
	return s.bgTop, s.bgBottom
}

// Lighting returns the scene's lighting configuration
func (s *Scene) Lighting() core.LightConfig {
	return s.lighting
}

// CameraConfig returns the scene's camera configuration
func (s *Scene) CameraConfig() core.CameraConfig {
	return s.camera
}

// EntryCount returns the number of entries in the scene
func (s *Scene) EntryCount() int {
	return len(s.entries)
}

// Time returns the animation time the scene was built or advanced to
func (s *Scene) Time() float32 {
	return s.time
}

// Animated reports whether the scene has a per-frame update function
func (s *Scene) Animated() bool {
	return s.animation != nil
}

// Advance returns a copy of the scene with entries updated for the
// given animation time. Scenes without an animation function return
// themselves unchanged. The receiver is never mutated, so frames in
// flight keep rendering against a stable composition.
func (s *Scene) Advance(time float32) *Scene {
	if s.animation == nil {
		return s
	}
	next := *s
	next.entries = make([]Entry, len(s.entries))
	copy(next.entries, s.entries)
	next.animation(time, next.entries)
	next.time = time
	return &next
}
