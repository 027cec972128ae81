package core

import "github.com/soypat/glgl/math/ms3"

// Logger interface for renderer logging
type Logger interface {
	Printf(format string, args ...interface{})
}

// Scene is the read-only view the ray marcher needs. Implementations
// must be pure: the same point always yields the same distance, and no
// call mutates the scene. Mutation happens strictly between frames.
type Scene interface {
	// Evaluate returns the combined signed distance at a world point and
	// the material id of the primitive that determined it (-1 if empty).
	Evaluate(p ms3.Vec) (float32, int)

	// MaterialColor resolves a material id to its base color
	MaterialColor(id int) ms3.Vec

	// BackgroundColors returns the top and bottom of the sky gradient
	BackgroundColors() (top, bottom ms3.Vec)

	// Lighting returns the scene's shading configuration
	Lighting() LightConfig

	// CameraConfig returns the camera placement for this scene
	CameraConfig() CameraConfig
}

// Camera generates primary rays from normalized screen coordinates
type Camera interface {
	GetRay(s, t float32) Ray
}
