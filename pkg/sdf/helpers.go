package sdf

import "github.com/chewxy/math32"

func minf(a, b float32) float32 { return math32.Min(a, b) }

func maxf(a, b float32) float32 { return math32.Max(a, b) }

func clampf(x, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, x))
}

// mixf is GLSL mix: linear interpolation from a to b by h in [0,1].
func mixf(a, b, h float32) float32 {
	return a*(1-h) + b*h
}

func signf(x float32) float32 {
	if x < 0 {
		return -1
	} else if x > 0 {
		return 1
	}
	return 0
}

// Smoothstep is the GLSL cubic hermite step between edge0 and edge1.
// Exported because the renderer uses it for edge coverage.
func Smoothstep(edge0, edge1, x float32) float32 {
	t := clampf((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}
