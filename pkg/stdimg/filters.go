package stdimg

import (
	"image"
)

// Component-transfer filters. Values are non-premultiplied sRGB in 0..1 and
// every result is clamped back into range. Alpha is left untouched.

// Brightness multiplies every color channel by factor (1 = unchanged).
func Brightness(src *image.NRGBA, factor float64) *image.NRGBA {
	return linearTransfer(src, factor, 0)
}

// Contrast scales every color channel around mid-grey by factor
// (1 = unchanged, 0 = flat grey).
func Contrast(src *image.NRGBA, factor float64) *image.NRGBA {
	return linearTransfer(src, factor, 0.5-0.5*factor)
}

// linearTransfer applies c' = slope*c + intercept per channel through a
// 256-entry lookup table.
func linearTransfer(src *image.NRGBA, slope, intercept float64) *image.NRGBA {
	if src == nil {
		return nil
	}
	var lut [256]uint8
	for i := range lut {
		lut[i] = unitToByte(clamp01(slope*float64(i)/255.0 + intercept))
	}
	b := src.Bounds()
	out := image.NewNRGBA(b)
	w := b.Dx()
	parallelRows(b.Dy(), func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			si := src.PixOffset(b.Min.X, b.Min.Y+y)
			di := out.PixOffset(b.Min.X, b.Min.Y+y)
			for x := 0; x < w; x++ {
				j, k := si+4*x, di+4*x
				out.Pix[k+0] = lut[src.Pix[j+0]]
				out.Pix[k+1] = lut[src.Pix[j+1]]
				out.Pix[k+2] = lut[src.Pix[j+2]]
				out.Pix[k+3] = src.Pix[j+3]
			}
		}
	})
	return out
}
