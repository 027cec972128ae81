package sdf

// Op selects how a primitive's distance folds into the running scene
// distance. The set is closed, so dispatch is a plain switch rather
// than an interface hierarchy.
type Op uint8

const (
	// Union keeps whichever operand is closer: min(d1, d2).
	Union Op = iota
	// Subtract carves operand 1 out of the accumulator: max(-d1, d2).
	Subtract
	// Intersect keeps only overlapping volume: max(d1, d2).
	Intersect
	// SmoothUnion blends the union seam over radius k.
	SmoothUnion
	// SmoothSubtract blends the carved edge over radius k.
	SmoothSubtract
	// SmoothIntersect blends the intersection seam over radius k.
	SmoothIntersect
)

// MinSmoothing is the floor for the blend radius k. Below this the
// smooth formulas divide by near-zero, so Combine falls back to the
// hard variant instead.
const MinSmoothing = 1e-4

// String returns the operator name
func (op Op) String() string {
	switch op {
	case Union:
		return "union"
	case Subtract:
		return "subtract"
	case Intersect:
		return "intersect"
	case SmoothUnion:
		return "smooth-union"
	case SmoothSubtract:
		return "smooth-subtract"
	case SmoothIntersect:
		return "smooth-intersect"
	default:
		return "unknown"
	}
}

// Smooth reports whether the operator uses the blend radius k
func (op Op) Smooth() bool {
	return op == SmoothUnion || op == SmoothSubtract || op == SmoothIntersect
}

// Hard returns the non-blending equivalent of the operator
func (op Op) Hard() Op {
	switch op {
	case SmoothUnion:
		return Union
	case SmoothSubtract:
		return Subtract
	case SmoothIntersect:
		return Intersect
	default:
		return op
	}
}

// Combine folds the distance d1 of a new primitive into the running
// accumulator distance d2. For Subtract the first operand is the shape
// being subtracted from the accumulator, so operand order matters.
// k is the blend radius for smooth variants; k <= MinSmoothing falls
// back to the hard operator.
func Combine(op Op, d1, d2, k float32) float32 {
	if op.Smooth() && k <= MinSmoothing {
		op = op.Hard()
	}
	switch op {
	case Union:
		return minf(d1, d2)
	case Subtract:
		return maxf(-d1, d2)
	case Intersect:
		return maxf(d1, d2)
	case SmoothUnion:
		h := clampf(0.5+0.5*(d2-d1)/k, 0, 1)
		return mixf(d2, d1, h) - k*h*(1-h)
	case SmoothSubtract:
		h := clampf(0.5-0.5*(d2+d1)/k, 0, 1)
		return mixf(d2, -d1, h) + k*h*(1-h)
	case SmoothIntersect:
		h := clampf(0.5-0.5*(d2-d1)/k, 0, 1)
		return mixf(d2, d1, h) + k*h*(1-h)
	default:
		return minf(d1, d2)
	}
}

// FirstWins reports whether operand 1 determined the combined result,
// which is what decides material propagation through the fold. Hard
// operators pick the operand that won the min/max; smooth operators
// pick the operand with the smaller absolute distance, since in the
// blend zone neither operand strictly "wins" and the nearer surface is
// the only defensible owner of the material.
func FirstWins(op Op, d1, d2 float32) bool {
	switch op.Hard() {
	case Union:
		if op.Smooth() {
			return absLess(d1, d2)
		}
		return d1 < d2
	case Subtract:
		if op.Smooth() {
			return absLess(-d1, d2)
		}
		return -d1 > d2
	case Intersect:
		if op.Smooth() {
			return absLess(d1, d2)
		}
		return d1 > d2
	default:
		return d1 < d2
	}
}

func absLess(a, b float32) bool {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	return a < b
}
