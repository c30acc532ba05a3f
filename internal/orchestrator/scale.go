package orchestrator

import (
	"image"

	"golang.org/x/image/draw"
)

// ScaleFrame downsamples a frame before analysis to keep provider payloads
// small. A factor of 1 returns the frame untouched.
func ScaleFrame(src image.Image, factor float64) image.Image {
	if factor >= 1 {
		return src
	}
	bounds := src.Bounds()
	w := int(float64(bounds.Dx()) * factor)
	h := int(float64(bounds.Dy()) * factor)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)
	return dst
}
