package stdimg

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// HistogramMaxSide bounds the longer side of the image the histogram is
// sampled from.
const HistogramMaxSide = 800

// FitWithin returns the dimensions of a w x h image uniformly scaled so its
// longer side equals maxSide. Images already within bounds are returned
// unchanged. The shorter side is floored and never drops below 1.
func FitWithin(w, h, maxSide int) (int, int) {
	longest := w
	if h > longest {
		longest = h
	}
	if longest <= maxSide || maxSide <= 0 {
		return w, h
	}
	// integer arithmetic keeps the longer side exact and floors the other
	nw := w * maxSide / longest
	nh := h * maxSide / longest
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	return nw, nh
}

// Downscale returns img as NRGBA, resampled with a bilinear kernel when its
// longer side exceeds maxSide.
func Downscale(img image.Image, maxSide int) *image.NRGBA {
	if img == nil {
		return nil
	}
	b := img.Bounds()
	w, h := FitWithin(b.Dx(), b.Dy(), maxSide)
	if w == b.Dx() && h == b.Dy() {
		return ToNRGBA(img)
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}
