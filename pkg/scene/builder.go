package scene

import (
	"fmt"

	"github.com/soypat/glgl/math/ms3"

	"github.com/reactor-gpu/reactor-go/pkg/core"
	"github.com/reactor-gpu/reactor-go/pkg/sdf"
)

// Builder accumulates entries and environment settings, then validates
// everything in Build. Modifier methods (Color, Transform, Repeat,
// Twist) apply to the most recently added entry, so compositions read
// top to bottom like the scene they describe.
type Builder struct {
	entries   []Entry
	palette   []ms3.Vec
	bgTop     ms3.Vec
	bgBottom  ms3.Vec
	lighting  core.LightConfig
	camera    core.CameraConfig
	animation func(time float32, entries []Entry)
	errs      []error
}

// NewBuilder returns a builder preloaded with the default environment:
// blue-to-white background, default lighting and camera.
func NewBuilder() *Builder {
	return &Builder{
		bgTop:    ms3.Vec{X: 0.5, Y: 0.7, Z: 1.0},
		bgBottom: ms3.Vec{X: 1.0, Y: 1.0, Z: 1.0},
		lighting: core.DefaultLightConfig(),
		camera:   core.DefaultCameraConfig(),
	}
}

// Add appends a primitive combined with a hard union
func (b *Builder) Add(p sdf.Primitive) *Builder {
	return b.add(p, sdf.Union, 0)
}

// Subtract appends a primitive carved out of the scene so far
func (b *Builder) Subtract(p sdf.Primitive) *Builder {
	return b.add(p, sdf.Subtract, 0)
}

// Intersect appends a primitive intersected with the scene so far
func (b *Builder) Intersect(p sdf.Primitive) *Builder {
	return b.add(p, sdf.Intersect, 0)
}

// SmoothAdd appends a primitive blended into the scene over radius k
func (b *Builder) SmoothAdd(p sdf.Primitive, k float32) *Builder {
	return b.add(p, sdf.SmoothUnion, k)
}

// SmoothSubtract appends a primitive carved out with a blended edge
func (b *Builder) SmoothSubtract(p sdf.Primitive, k float32) *Builder {
	return b.add(p, sdf.SmoothSubtract, k)
}

// SmoothIntersect appends a blended intersection
func (b *Builder) SmoothIntersect(p sdf.Primitive, k float32) *Builder {
	return b.add(p, sdf.SmoothIntersect, k)
}

func (b *Builder) add(p sdf.Primitive, op sdf.Op, k float32) *Builder {
	if len(b.entries) == 0 {
		// The fold seeds from the first entry, so its operator can only
		// ever be a union.
		op, k = sdf.Union, 0
	}
	b.entries = append(b.entries, Entry{
		Shape:     p,
		Op:        op,
		Smoothing: k,
		Material:  -1,
		Transform: sdf.Identity(),
	})
	return b
}

// Color assigns a palette color to the last added entry. Entries that
// reuse an exact color share a material id.
func (b *Builder) Color(c ms3.Vec) *Builder {
	e := b.last("Color")
	if e == nil {
		return b
	}
	for i, existing := range b.palette {
		if existing == c {
			e.Material = i
			return b
		}
	}
	b.palette = append(b.palette, c)
	e.Material = len(b.palette) - 1
	return b
}

// Transform places the last added entry with the given transform
func (b *Builder) Transform(t sdf.Transform) *Builder {
	if e := b.last("Transform"); e != nil {
		e.Transform = t
	}
	return b
}

// At translates the last added entry by the given offset
func (b *Builder) At(offset ms3.Vec) *Builder {
	if e := b.last("At"); e != nil {
		e.Transform = sdf.Translated(offset)
	}
	return b
}

// Repeat tiles the last added entry over the given period per axis
func (b *Builder) Repeat(period ms3.Vec) *Builder {
	if e := b.last("Repeat"); e != nil {
		e.RepeatPeriod = period
	}
	return b
}

// Twist bends the last added entry around Y, radians per unit height
func (b *Builder) Twist(amount float32) *Builder {
	if e := b.last("Twist"); e != nil {
		e.TwistAmount = amount
	}
	return b
}

func (b *Builder) last(method string) *Entry {
	if len(b.entries) == 0 {
		b.errs = append(b.errs, fmt.Errorf("%s called before any primitive was added", method))
		return nil
	}
	return &b.entries[len(b.entries)-1]
}

// Background sets the vertical gradient endpoints
func (b *Builder) Background(top, bottom ms3.Vec) *Builder {
	b.bgTop, b.bgBottom = top, bottom
	return b
}

// Lighting replaces the lighting configuration
func (b *Builder) Lighting(cfg core.LightConfig) *Builder {
	b.lighting = cfg
	return b
}

// Camera replaces the camera configuration
func (b *Builder) Camera(cfg core.CameraConfig) *Builder {
	b.camera = cfg
	return b
}

// Animate registers a per-frame update applied to a copy of the entry
// list on each Scene.Advance call.
func (b *Builder) Animate(fn func(time float32, entries []Entry)) *Builder {
	b.animation = fn
	return b
}

// Build validates the composition and returns the immutable scene.
// All accumulated problems are reported, not just the first.
func (b *Builder) Build() (*Scene, error) {
	errs := b.errs
	if len(b.entries) > MaxEntries {
		errs = append(errs, fmt.Errorf("scene has %d entries, capacity is %d", len(b.entries), MaxEntries))
	}
	for i := range b.entries {
		if err := validateEntry(&b.entries[i]); err != nil {
			errs = append(errs, fmt.Errorf("entry %d (%v): %w", i, b.entries[i].Shape.Kind, err))
		}
	}
	if len(errs) > 0 {
		return nil, joinErrors(errs)
	}
	entries := make([]Entry, len(b.entries))
	copy(entries, b.entries)
	palette := make([]ms3.Vec, len(b.palette))
	copy(palette, b.palette)
	return &Scene{
		entries:   entries,
		palette:   palette,
		bgTop:     b.bgTop,
		bgBottom:  b.bgBottom,
		lighting:  b.lighting,
		camera:    b.camera,
		animation: b.animation,
	}, nil
}

func validateEntry(e *Entry) error {
	if e.Op.Smooth() && e.Smoothing <= sdf.MinSmoothing {
		return fmt.Errorf("smooth operator %v needs blend radius > %g, got %g", e.Op, sdf.MinSmoothing, e.Smoothing)
	}
	s := e.Shape
	switch s.Kind {
	case sdf.KindSphere, sdf.KindCapsule:
		if s.R1 <= 0 {
			return fmt.Errorf("radius must be positive, got %g", s.R1)
		}
	case sdf.KindBox, sdf.KindRoundBox:
		if s.B.X <= 0 || s.B.Y <= 0 || s.B.Z <= 0 {
			return fmt.Errorf("half-extents must be positive, got %v", s.B)
		}
		if s.Kind == sdf.KindRoundBox && s.R1 < 0 {
			return fmt.Errorf("rounding radius must be non-negative, got %g", s.R1)
		}
	case sdf.KindTorus:
		if s.R1 <= 0 || s.R2 <= 0 {
			return fmt.Errorf("torus radii must be positive, got major %g minor %g", s.R1, s.R2)
		}
	case sdf.KindCylinder:
		if s.R1 <= 0 || s.R2 <= 0 {
			return fmt.Errorf("cylinder half-height and radius must be positive, got %g and %g", s.R1, s.R2)
		}
	case sdf.KindCone:
		if s.R1 <= 0 || s.R2 <= 0 {
			return fmt.Errorf("cone angle and height must be positive, got %g and %g", s.R1, s.R2)
		}
	case sdf.KindPlane:
		if s.A == (ms3.Vec{}) {
			return fmt.Errorf("plane normal is the null vector")
		}
	}
	return nil
}

func joinErrors(errs []error) error {
	if len(errs) == 1 {
		return errs[0]
	}
	msg := errs[0].Error()
	for _, err := range errs[1:] {
		msg += "; " + err.Error()
	}
	return fmt.Errorf("invalid scene: %s", msg)
}
