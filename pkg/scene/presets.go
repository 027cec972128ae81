package scene

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"

	"github.com/reactor-gpu/reactor-go/pkg/core"
	"github.com/reactor-gpu/reactor-go/pkg/sdf"
)

// NewScene builds a preset scene by name. Names are what the CLI and
// the web server expose.
func NewScene(name string) (*Scene, error) {
	switch name {
	case "default":
		return NewDefaultScene()
	case "csg":
		return NewCSGDemoScene()
	case "two-spheres":
		return NewTwoSpheresScene()
	case "animated":
		return NewAnimatedScene()
	default:
		return nil, fmt.Errorf("unknown scene %q (have: %v)", name, SceneNames())
	}
}

// SceneNames lists the available preset scene names
func SceneNames() []string {
	return []string{"default", "csg", "two-spheres", "animated"}
}

// NewDefaultScene creates the showcase scene: a ground plane with one
// of each primitive lined up in front of the camera.
func NewDefaultScene() (*Scene, error) {
	red := ms3.Vec{X: 0.9, Y: 0.25, Z: 0.2}
	blue := ms3.Vec{X: 0.2, Y: 0.4, Z: 0.85}
	gold := ms3.Vec{X: 0.85, Y: 0.65, Z: 0.2}
	green := ms3.Vec{X: 0.3, Y: 0.7, Z: 0.3}
	gray := ms3.Vec{X: 0.55, Y: 0.55, Z: 0.55}

	return NewBuilder().
		Add(sdf.Plane(ms3.Vec{Y: 1}, 0)).Color(gray).
		Add(sdf.Sphere(ms3.Vec{X: -2.2, Y: 0.6}, 0.6)).Color(red).
		Add(sdf.RoundBox(ms3.Vec{X: -0.8, Y: 0.5}, ms3.Vec{X: 0.45, Y: 0.45, Z: 0.45}, 0.08)).Color(blue).
		Add(sdf.Torus(ms3.Vec{X: 0.6, Y: 0.35}, 0.45, 0.15)).Color(gold).
		Add(sdf.Cylinder(ms3.Vec{X: 1.9, Y: 0.55}, 0.55, 0.35)).Color(green).
		Add(sdf.Capsule(ms3.Vec{X: 3.0, Y: 0.3}, ms3.Vec{X: 3.3, Y: 1.1}, 0.25)).Color(red).
		Camera(core.CameraConfig{
			Position: ms3.Vec{X: 0.3, Y: 1.6, Z: 4.5},
			LookAt:   ms3.Vec{X: 0.3, Y: 0.5},
			Up:       ms3.Vec{Y: 1},
			VFOV:     45,
		}).
		Build()
}

// NewCSGDemoScene creates the operator showcase: a box with a sphere
// smoothly blended in, a cylinder bored through it, and a carving
// sphere with a soft edge.
func NewCSGDemoScene() (*Scene, error) {
	ivory := ms3.Vec{X: 0.9, Y: 0.85, Z: 0.7}
	teal := ms3.Vec{X: 0.15, Y: 0.6, Z: 0.6}
	gray := ms3.Vec{X: 0.55, Y: 0.55, Z: 0.55}

	return NewBuilder().
		Add(sdf.Plane(ms3.Vec{Y: 1}, 0.7)).Color(gray).
		Add(sdf.Box(ms3.Vec{}, ms3.Vec{X: 0.7, Y: 0.7, Z: 0.7})).Color(ivory).
		SmoothAdd(sdf.Sphere(ms3.Vec{X: 0.7, Y: 0.7}, 0.5), 0.25).Color(teal).
		Subtract(sdf.Cylinder(ms3.Vec{}, 2, 0.3)).Color(teal).
		SmoothSubtract(sdf.Sphere(ms3.Vec{X: -0.7, Y: -0.7, Z: 0.7}, 0.55), 0.15).Color(ivory).
		Camera(core.CameraConfig{
			Position: ms3.Vec{X: 2.4, Y: 1.8, Z: 3.2},
			LookAt:   ms3.Vec{},
			Up:       ms3.Vec{Y: 1},
			VFOV:     40,
		}).
		Build()
}

// NewTwoSpheresScene creates two overlapping unit spheres centered at
// x = -0.5 and x = +0.5, five units in front of the camera. Useful as
// a minimal union scene for comparisons.
func NewTwoSpheresScene() (*Scene, error) {
	red := ms3.Vec{X: 0.9, Y: 0.25, Z: 0.2}
	blue := ms3.Vec{X: 0.2, Y: 0.4, Z: 0.85}

	return NewBuilder().
		Add(sdf.Sphere(ms3.Vec{X: -0.5, Z: -5}, 1)).Color(red).
		Add(sdf.Sphere(ms3.Vec{X: 0.5, Z: -5}, 1)).Color(blue).
		Camera(core.CameraConfig{
			Position: ms3.Vec{},
			LookAt:   ms3.Vec{Z: -1},
			Up:       ms3.Vec{Y: 1},
			VFOV:     60,
		}).
		Build()
}

// NewAnimatedScene creates a scene with a twisted column over a
// repeated sphere field. Advance(time) orbits a blended sphere around
// the column and breathes the twist amount.
func NewAnimatedScene() (*Scene, error) {
	purple := ms3.Vec{X: 0.6, Y: 0.3, Z: 0.8}
	orange := ms3.Vec{X: 0.95, Y: 0.55, Z: 0.15}
	gray := ms3.Vec{X: 0.55, Y: 0.55, Z: 0.55}

	return NewBuilder().
		Add(sdf.Plane(ms3.Vec{Y: 1}, 1)).Color(gray).
		Add(sdf.Sphere(ms3.Vec{Y: -0.85}, 0.18)).Color(gray).Repeat(ms3.Vec{X: 1.2, Z: 1.2}).
		Add(sdf.Box(ms3.Vec{}, ms3.Vec{X: 0.35, Y: 1, Z: 0.35})).Color(purple).Twist(1.2).
		SmoothAdd(sdf.Sphere(ms3.Vec{X: 1.1}, 0.35), 0.3).Color(orange).
		Animate(func(time float32, entries []Entry) {
			s, c := math32.Sincos(time)
			// Entry 3 is the orbiting sphere, entry 2 the twisted column.
			entries[3].Shape.A = ms3.Vec{X: 1.1 * c, Y: 0.4 * s, Z: 1.1 * s}
			entries[2].TwistAmount = 1.2 + 0.6*s
		}).
		Camera(core.CameraConfig{
			Position: ms3.Vec{X: 2.6, Y: 1.4, Z: 3.4},
			LookAt:   ms3.Vec{Y: 0.1},
			Up:       ms3.Vec{Y: 1},
			VFOV:     42,
		}).
		Build()
}
