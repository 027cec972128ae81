package sdf

import (
	"errors"

	"github.com/soypat/glgl/math/ms3"
)

// Transform places a primitive in the world: translation, rotation
// about an axis, and uniform scale. Evaluation maps the query point
// into the primitive's local space with the cached inverse rotation,
// then rescales the resulting distance so it stays a valid bound.
type Transform struct {
	translation ms3.Vec
	invRotation ms3.Mat4
	scale       float32
	rotated     bool
}

// Identity returns the do-nothing transform
func Identity() Transform {
	return Transform{scale: 1}
}

// NewTransform builds a transform from a translation, a rotation of
// radians around axis (zero axis means no rotation), and a uniform
// scale factor. Scale must be positive.
func NewTransform(translation ms3.Vec, radians float32, axis ms3.Vec, scale float32) (Transform, error) {
	if scale <= 0 {
		return Transform{}, errors.New("transform scale must be positive")
	}
	t := Transform{translation: translation, scale: scale}
	if radians != 0 {
		if axis == (ms3.Vec{}) {
			return Transform{}, errors.New("rotation axis is the null vector")
		}
		t.invRotation = ms3.RotatingMat4(radians, axis).Inverse()
		t.rotated = true
	}
	return t, nil
}

// Translated is shorthand for a translation-only transform
func Translated(offset ms3.Vec) Transform {
	return Transform{translation: offset, scale: 1}
}

// ToLocal maps a world-space query point into the primitive's local space
func (t Transform) ToLocal(p ms3.Vec) ms3.Vec {
	p = ms3.Sub(p, t.translation)
	if t.rotated {
		p = t.invRotation.MulPosition(p)
	}
	if t.scale != 1 {
		p = ms3.Scale(1/t.scale, p)
	}
	return p
}

// ScaleDistance maps a local-space distance back to world scale
func (t Transform) ScaleDistance(d float32) float32 {
	return d * t.scale
}

// Scale returns the uniform scale factor
func (t Transform) Scale() float32 {
	return t.scale
}

// IsIdentity reports whether the transform leaves points untouched.
// Used to skip the local-space round trip in the hot loop.
func (t Transform) IsIdentity() bool {
	return !t.rotated && t.scale == 1 && t.translation == (ms3.Vec{})
}
