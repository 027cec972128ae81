package core

import (
	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
)

// Ray represents a ray with an origin and a unit-length direction
type Ray struct {
	Origin ms3.Vec
	Dir    ms3.Vec
}

// NewRay creates a new ray, normalizing the direction. A zero-length
// direction is replaced with -Z so a degenerate camera setup marches a
// valid (if useless) ray instead of producing NaNs per pixel.
func NewRay(origin, dir ms3.Vec) Ray {
	n := ms3.Norm(dir)
	if n == 0 {
		return Ray{Origin: origin, Dir: ms3.Vec{Z: -1}}
	}
	return Ray{Origin: origin, Dir: ms3.Scale(1/n, dir)}
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float32) ms3.Vec {
	return ms3.Add(r.Origin, ms3.Scale(t, r.Dir))
}

// Status is the terminal state of a ray march
type Status uint8

const (
	// Hit means the march converged onto a surface (distance < epsilon)
	Hit Status = iota
	// MissMaxSteps means the step budget ran out before convergence.
	// Not an error: shaded as background, same as a true miss.
	MissMaxSteps
	// MissMaxDistance means the ray left the scene's far boundary
	MissMaxDistance
)

// String returns a human-readable status name for logs and tests
func (s Status) String() string {
	switch s {
	case Hit:
		return "hit"
	case MissMaxSteps:
		return "miss-max-steps"
	case MissMaxDistance:
		return "miss-max-distance"
	default:
		return "unknown"
	}
}

// MarchResult is the outcome of marching a single ray through a scene
type MarchResult struct {
	Status   Status
	Point    ms3.Vec // Surface point, valid only when Status == Hit
	Normal   ms3.Vec // Unit surface normal, valid only when Status == Hit
	T        float32 // Travel distance at termination
	Dist     float32 // Scene distance at the terminal point
	MinDist  float32 // Closest approach to any surface along the ray (drives edge coverage)
	Steps    int     // Iterations consumed
	Material int     // Material id of the winning primitive, -1 on miss
}

// DidHit reports whether the march converged onto a surface
func (m MarchResult) DidHit() bool {
	return m.Status == Hit
}

// MarchConfig bounds the sphere-tracing loop
type MarchConfig struct {
	MaxSteps    int     // Iteration budget per ray
	MaxDistance float32 // Far boundary, rays past this are misses
	Epsilon     float32 // Surface convergence threshold
	NormalStep  float32 // Central-difference step for normal estimation
}

// DefaultMarchConfig returns sensible defaults for a unit-scale scene
func DefaultMarchConfig() MarchConfig {
	return MarchConfig{
		MaxSteps:    128,
		MaxDistance: 100.0,
		Epsilon:     1e-3,
		NormalStep:  1e-4,
	}
}

// PerformanceMarchConfig trades convergence accuracy for speed
func PerformanceMarchConfig() MarchConfig {
	return MarchConfig{
		MaxSteps:    64,
		MaxDistance: 50.0,
		Epsilon:     1e-2,
		NormalStep:  1e-3,
	}
}

// QualityMarchConfig tightens thresholds for final-frame renders
func QualityMarchConfig() MarchConfig {
	return MarchConfig{
		MaxSteps:    256,
		MaxDistance: 200.0,
		Epsilon:     1e-4,
		NormalStep:  1e-4,
	}
}

// LightConfig holds the Phong shading inputs. All weights are scene
// configuration, never hardcoded in the shading path.
type LightConfig struct {
	AmbientStrength  float32
	LightColor       ms3.Vec
	LightDirection   ms3.Vec // Direction the light travels, need not be unit length
	SpecularStrength float32
	Shininess        float32
	SoftShadows      bool
	ShadowHardness   float32
	AmbientOcclusion bool
	AOSteps          int
}

// DefaultLightConfig returns a single warm key light with soft shadows
func DefaultLightConfig() LightConfig {
	return LightConfig{
		AmbientStrength:  0.1,
		LightColor:       ms3.Vec{X: 1, Y: 1, Z: 1},
		LightDirection:   ms3.Vec{X: -0.5, Y: -1.0, Z: -0.3},
		SpecularStrength: 0.5,
		Shininess:        32,
		SoftShadows:      true,
		ShadowHardness:   16,
		AmbientOcclusion: true,
		AOSteps:          5,
	}
}

// CameraConfig positions the pinhole camera used to generate primary rays
type CameraConfig struct {
	Position ms3.Vec
	LookAt   ms3.Vec
	Up       ms3.Vec
	VFOV     float32 // Vertical field of view in degrees
}

// DefaultCameraConfig looks down -Z from a short distance
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		Position: ms3.Vec{Z: 5},
		LookAt:   ms3.Vec{},
		Up:       ms3.Vec{Y: 1},
		VFOV:     45,
	}
}

// Radians converts the configured field of view to radians
func (c CameraConfig) Radians() float32 {
	return c.VFOV * math32.Pi / 180
}
