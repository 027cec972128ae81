package renderer

import (
	"image/color"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"

	"github.com/reactor-gpu/reactor-go/pkg/core"
	"github.com/reactor-gpu/reactor-go/pkg/sdf"
)

// Shader turns march results into colors: Phong lighting for hits,
// a vertical gradient for misses. All lighting weights come from the
// scene's LightConfig.
type Shader struct {
	scene   core.Scene
	marcher *Marcher
}

// NewShader creates a shader bound to a scene and its marcher
func NewShader(scene core.Scene, marcher *Marcher) *Shader {
	return &Shader{scene: scene, marcher: marcher}
}

// Shade computes the color for a ray given its march result
func (sh *Shader) Shade(ray core.Ray, result core.MarchResult) ms3.Vec {
	if !result.DidHit() {
		return sh.backgroundGradient(ray)
	}

	cfg := sh.scene.Lighting()
	baseColor := sh.scene.MaterialColor(result.Material)
	normal := result.Normal

	// Direction from the surface toward the light.
	toLight := normalize(ms3.Scale(-1, cfg.LightDirection))

	ambient := cfg.AmbientStrength
	if cfg.AmbientOcclusion {
		ambient *= sh.marcher.AmbientOcclusion(result.Point, normal, cfg.AOSteps)
	}

	diffuse := math32.Max(ms3.Dot(normal, toLight), 0)

	specular := float32(0)
	if diffuse > 0 {
		reflected := reflect(ms3.Scale(-1, toLight), normal)
		alignment := math32.Max(ms3.Dot(reflected, ms3.Scale(-1, ray.Dir)), 0)
		specular = cfg.SpecularStrength * math32.Pow(alignment, cfg.Shininess)
	}

	shadow := float32(1)
	if cfg.SoftShadows && diffuse > 0 {
		shadow = sh.marcher.SoftShadow(result.Point, toLight, cfg.ShadowHardness)
	}

	lit := ambient + (diffuse+specular)*shadow
	return ms3.MulElem(ms3.Scale(lit, baseColor), cfg.LightColor)
}

// backgroundGradient maps the ray's vertical direction onto the
// scene's bottom-to-top gradient.
func (sh *Shader) backgroundGradient(ray core.Ray) ms3.Vec {
	top, bottom := sh.scene.BackgroundColors()
	t := 0.5 * (ray.Dir.Y + 1)
	return ms3.Add(ms3.Scale(1-t, bottom), ms3.Scale(t, top))
}

// EdgeCoverage estimates how much of a hit pixel the surface covers.
// The neighboring ray's closest approach to any surface is the
// screen-space silhouette signal: an interior neighbor grazes the
// surface (near zero), a miss neighbor clears it by at least the
// pixel footprint. The smoothstep ramps coverage from 1 in the
// interior down to 0.5 at a clean silhouette, where the true edge
// straddles the two pixel centers.
func EdgeCoverage(neighborMinDist, footprint float32) float32 {
	if footprint <= 0 {
		return 1
	}
	return 1 - 0.5*sdf.Smoothstep(0, footprint, neighborMinDist)
}

// vec3ToColor converts a linear color vector to 8-bit sRGB-ish output
// with gamma 2.0 and clamping.
func vec3ToColor(c ms3.Vec) color.RGBA {
	gamma := func(x float32) uint8 {
		x = clamp32(x, 0, 1)
		return uint8(255 * math32.Sqrt(x))
	}
	return color.RGBA{R: gamma(c.X), G: gamma(c.Y), B: gamma(c.Z), A: 255}
}

func reflect(v, n ms3.Vec) ms3.Vec {
	return ms3.Sub(v, ms3.Scale(2*ms3.Dot(v, n), n))
}
