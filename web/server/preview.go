package server

import (
	"image"

	"golang.org/x/image/draw"
)

// UpscalePreview scales an image up by an integer factor with
// nearest-neighbor sampling. Early progressive passes render small and
// cheap; the browser gets a chunky but full-size preview instead of a
// stamp. Factors below 2 return the input untouched.
func UpscalePreview(img *image.RGBA, factor int) *image.RGBA {
	if factor < 2 {
		return img
	}
	bounds := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx()*factor, bounds.Dy()*factor))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst
}
