// Package sdf implements signed distance functions for a small set of
// closed-form primitives plus the CSG operators that combine them.
// All distances follow the usual convention: negative inside, zero on
// the surface, positive outside. Each function is a tight lower bound
// on the true Euclidean distance (Lipschitz constant 1), which is what
// lets sphere tracing advance by the full distance each step. Shape
// parameters are not validated here: a negative radius yields a
// mathematically valid but semantically wrong field, never a crash.
// Validation belongs to the scene builder.
package sdf

import (
	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms2"
	"github.com/soypat/glgl/math/ms3"
)

// Kind tags a primitive variant. Values match the packed GPU layout's
// type tag, so they must stay stable.
type Kind uint8

const (
	KindSphere Kind = iota
	KindBox
	KindTorus
	KindCylinder
	KindCapsule
	KindCone
	KindPlane
	KindRoundBox
)

// String returns the primitive kind name
func (k Kind) String() string {
	switch k {
	case KindSphere:
		return "sphere"
	case KindBox:
		return "box"
	case KindTorus:
		return "torus"
	case KindCylinder:
		return "cylinder"
	case KindCapsule:
		return "capsule"
	case KindCone:
		return "cone"
	case KindPlane:
		return "plane"
	case KindRoundBox:
		return "roundbox"
	default:
		return "unknown"
	}
}

// Primitive is a closed tagged union over the supported shapes. The
// payload fields are interpreted per Kind; use the constructors rather
// than filling fields directly.
type Primitive struct {
	Kind Kind

	// A is the center for most shapes, point A for capsules and the
	// (unit) plane normal for planes.
	A ms3.Vec
	// B holds box half-extents, or capsule point B.
	B ms3.Vec
	// R1, R2 are per-kind scalars: radius, half-height, major/minor
	// radius, cone half-angle (radians) and height, or plane offset.
	R1, R2 float32
}

// Sphere returns a sphere primitive with the given center and radius
func Sphere(center ms3.Vec, radius float32) Primitive {
	return Primitive{Kind: KindSphere, A: center, R1: radius}
}

// Box returns an axis-aligned box with the given center and half-extents
func Box(center, halfExtents ms3.Vec) Primitive {
	return Primitive{Kind: KindBox, A: center, B: halfExtents}
}

// RoundBox returns a box with edges rounded by the given radius
func RoundBox(center, halfExtents ms3.Vec, round float32) Primitive {
	return Primitive{Kind: KindRoundBox, A: center, B: halfExtents, R1: round}
}

// Torus returns a ring in the XZ plane around center
func Torus(center ms3.Vec, major, minor float32) Primitive {
	return Primitive{Kind: KindTorus, A: center, R1: major, R2: minor}
}

// Cylinder returns a Y-axis capped cylinder around center
func Cylinder(center ms3.Vec, halfHeight, radius float32) Primitive {
	return Primitive{Kind: KindCylinder, A: center, R1: halfHeight, R2: radius}
}

// Capsule returns a line segment from a to b with the given radius
func Capsule(a, b ms3.Vec, radius float32) Primitive {
	return Primitive{Kind: KindCapsule, A: a, B: b, R1: radius}
}

// Cone returns a cone with its tip at center pointing +Y, opening by
// the given half-angle in radians down to a base at center.Y - height.
func Cone(center ms3.Vec, angle, height float32) Primitive {
	return Primitive{Kind: KindCone, A: center, R1: angle, R2: height}
}

// Plane returns the half-space below the plane dot(p, normal) + offset = 0.
// The normal is normalized at construction.
func Plane(normal ms3.Vec, offset float32) Primitive {
	n := ms3.Norm(normal)
	if n > 0 {
		normal = ms3.Scale(1/n, normal)
	}
	return Primitive{Kind: KindPlane, A: normal, R1: offset}
}

// Distance returns the signed distance from p to the primitive surface
func (pr Primitive) Distance(p ms3.Vec) float32 {
	switch pr.Kind {
	case KindSphere:
		return ms3.Norm(ms3.Sub(p, pr.A)) - pr.R1
	case KindBox:
		return boxDist(ms3.Sub(p, pr.A), pr.B, 0)
	case KindRoundBox:
		return boxDist(ms3.Sub(p, pr.A), pr.B, pr.R1)
	case KindTorus:
		l := ms3.Sub(p, pr.A)
		q := ms2.Vec{X: math32.Hypot(l.X, l.Z) - pr.R1, Y: l.Y}
		return ms2.Norm(q) - pr.R2
	case KindCylinder:
		l := ms3.Sub(p, pr.A)
		dx := math32.Hypot(l.X, l.Z) - pr.R2
		dy := math32.Abs(l.Y) - pr.R1
		return minf(maxf(dx, dy), 0) + math32.Hypot(maxf(dx, 0), maxf(dy, 0))
	case KindCapsule:
		pa := ms3.Sub(p, pr.A)
		ba := ms3.Sub(pr.B, pr.A)
		h := clampf(ms3.Dot(pa, ba)/ms3.Dot(ba, ba), 0, 1)
		return ms3.Norm(ms3.Sub(pa, ms3.Scale(h, ba))) - pr.R1
	case KindCone:
		return coneDist(ms3.Sub(p, pr.A), pr.R1, pr.R2)
	case KindPlane:
		return ms3.Dot(p, pr.A) + pr.R1
	default:
		// Unreachable for constructor-built primitives.
		return math32.Inf(1)
	}
}

// boxDist is the classic exact box distance: length of the positive
// component overshoot plus the (negative) interior max component.
func boxDist(l, half ms3.Vec, round float32) float32 {
	q := ms3.AddScalar(round, ms3.Sub(ms3.AbsElem(l), half))
	return ms3.Norm(ms3.MaxElem(q, ms3.Vec{})) + minf(maxf(q.X, maxf(q.Y, q.Z)), 0) - round
}

// coneDist evaluates an exact capped cone with tip at the origin
// opening downward by half-angle angle to a base at y = -height.
func coneDist(l ms3.Vec, angle, height float32) float32 {
	s, c := math32.Sincos(angle)
	q := ms2.Vec{X: height * (s / c), Y: -height}
	w := ms2.Vec{X: math32.Hypot(l.X, l.Z), Y: l.Y}
	a := ms2.Sub(w, ms2.Scale(clampf(ms2.Dot(w, q)/ms2.Dot(q, q), 0, 1), q))
	b := ms2.Sub(w, ms2.Vec{X: q.X * clampf(w.X/q.X, 0, 1), Y: q.Y})
	k := signf(q.Y)
	d := minf(ms2.Dot(a, a), ms2.Dot(b, b))
	t := maxf(k*(w.X*q.Y-w.Y*q.X), k*(w.Y-q.Y))
	return math32.Sqrt(d) * signf(t)
}

// Repeat maps p into an infinitely repeating domain with the given
// period per axis. A zero or negative period leaves that axis alone.
func Repeat(p ms3.Vec, period ms3.Vec) ms3.Vec {
	return ms3.Vec{
		X: repeatAxis(p.X, period.X),
		Y: repeatAxis(p.Y, period.Y),
		Z: repeatAxis(p.Z, period.Z),
	}
}

func repeatAxis(x, period float32) float32 {
	if period <= 0 {
		return x
	}
	return math32.Mod(x+period*0.5, period) - period*0.5
}

// Twist rotates p around the Y axis proportionally to its height,
// bending shapes evaluated in the twisted space. The result is only an
// approximate distance bound; callers should keep amounts small.
func Twist(p ms3.Vec, amount float32) ms3.Vec {
	s, c := math32.Sincos(amount * p.Y)
	return ms3.Vec{
		X: c*p.X - s*p.Z,
		Y: p.Y,
		Z: s*p.X + c*p.Z,
	}
}
