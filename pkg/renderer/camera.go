package renderer

import (
	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"

	"github.com/reactor-gpu/reactor-go/pkg/core"
)

// Camera generates primary rays from a pinhole model built out of the
// scene's camera configuration.
type Camera struct {
	origin          ms3.Vec
	lowerLeftCorner ms3.Vec
	horizontal      ms3.Vec
	vertical        ms3.Vec
}

// NewCamera builds a pinhole camera from a camera config and the
// output aspect ratio (width / height). Degenerate configurations
// (position on the look-at point, up parallel to the view direction)
// are repaired with fallback axes so every pixel still gets a valid
// ray.
func NewCamera(cfg core.CameraConfig, aspectRatio float32) *Camera {
	theta := cfg.Radians()
	halfHeight := math32.Tan(theta / 2)
	viewportHeight := 2 * halfHeight
	viewportWidth := aspectRatio * viewportHeight

	w := ms3.Sub(cfg.Position, cfg.LookAt)
	if ms3.Norm(w) == 0 {
		w = ms3.Vec{Z: 1}
	}
	w = normalize(w)

	up := cfg.Up
	if ms3.Norm(cross(up, w)) == 0 {
		up = ms3.Vec{Y: 1}
		if ms3.Norm(cross(up, w)) == 0 {
			up = ms3.Vec{X: 1}
		}
	}
	u := normalize(cross(up, w))
	v := cross(w, u)

	horizontal := ms3.Scale(viewportWidth, u)
	vertical := ms3.Scale(viewportHeight, v)
	lowerLeft := ms3.Sub(cfg.Position, ms3.Scale(0.5, horizontal))
	lowerLeft = ms3.Sub(lowerLeft, ms3.Scale(0.5, vertical))
	lowerLeft = ms3.Sub(lowerLeft, w)

	return &Camera{
		origin:          cfg.Position,
		lowerLeftCorner: lowerLeft,
		horizontal:      horizontal,
		vertical:        vertical,
	}
}

// GetRay generates a ray for screen coordinates (s, t) where 0 <= s,t <= 1.
// t = 0 is the bottom of the image.
func (c *Camera) GetRay(s, t float32) core.Ray {
	dir := ms3.Add(c.lowerLeftCorner, ms3.Scale(s, c.horizontal))
	dir = ms3.Add(dir, ms3.Scale(t, c.vertical))
	dir = ms3.Sub(dir, c.origin)
	return core.NewRay(c.origin, dir)
}

func cross(a, b ms3.Vec) ms3.Vec {
	return ms3.Vec{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}

func normalize(v ms3.Vec) ms3.Vec {
	return ms3.Scale(1/ms3.Norm(v), v)
}
