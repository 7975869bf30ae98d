package stdimg

import (
	"image"
	"math"
)

// gaussianKernel1D generates a normalized 1D Gaussian kernel with the given
// standard deviation. Returns kernel and half-width radius.
func gaussianKernel1D(sigma float64) ([]float64, int) {
	if sigma <= 0 {
		return []float64{1.0}, 0
	}
	// radius ~ ceil(3*sigma) covers >99% of the weight
	radius := int(math.Ceil(3 * sigma))
	kern := make([]float64, radius*2+1)
	sum := 0.0
	for i := -radius; i <= radius; i++ {
		v := math.Exp(-0.5 * (float64(i) * float64(i)) / (sigma * sigma))
		kern[i+radius] = v
		sum += v
	}
	for i := range kern {
		kern[i] /= sum
	}
	return kern, radius
}

// GaussianBlur blurs src with a separable gaussian whose standard deviation
// is radius pixels. Edges are clamped. A radius of 0 returns a copy.
// Colors are averaged premultiplied by alpha, so fully transparent pixels
// contribute no color to their neighbours.
func GaussianBlur(src *image.NRGBA, radius float64) *image.NRGBA {
	if src == nil {
		return nil
	}
	kern, r := gaussianKernel1D(radius)
	if r == 0 {
		return ToNRGBA(src)
	}
	in := ToNRGBA(src)
	w, h := in.Bounds().Dx(), in.Bounds().Dy()

	// premultiplied, unquantized planes: rgb scaled by alpha/255
	pre := make([]float32, w*h*4)
	for i := 0; i < len(pre); i += 4 {
		a := float32(in.Pix[i+3]) / 255
		pre[i+0] = float32(in.Pix[i+0]) * a
		pre[i+1] = float32(in.Pix[i+1]) * a
		pre[i+2] = float32(in.Pix[i+2]) * a
		pre[i+3] = float32(in.Pix[i+3])
	}
	tmp := make([]float32, w*h*4)
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))

	// horizontal pass
	parallelRows(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			row := y * w * 4
			for x := 0; x < w; x++ {
				var acc [4]float64
				for k := -r; k <= r; k++ {
					i := row + clampInt(x+k, 0, w-1)*4
					wgt := kern[k+r]
					acc[0] += float64(pre[i+0]) * wgt
					acc[1] += float64(pre[i+1]) * wgt
					acc[2] += float64(pre[i+2]) * wgt
					acc[3] += float64(pre[i+3]) * wgt
				}
				o := row + x*4
				tmp[o+0], tmp[o+1], tmp[o+2], tmp[o+3] = float32(acc[0]), float32(acc[1]), float32(acc[2]), float32(acc[3])
			}
		}
	})

	// vertical pass
	parallelRows(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				var acc [4]float64
				for k := -r; k <= r; k++ {
					i := (clampInt(y+k, 0, h-1)*w + x) * 4
					wgt := kern[k+r]
					acc[0] += float64(tmp[i+0]) * wgt
					acc[1] += float64(tmp[i+1]) * wgt
					acc[2] += float64(tmp[i+2]) * wgt
					acc[3] += float64(tmp[i+3]) * wgt
				}
				writeAcc(dst, x, y, acc)
			}
		}
	})
	return dst
}

// writeAcc stores a premultiplied accumulator as a non-premultiplied pixel.
func writeAcc(dst *image.NRGBA, x, y int, acc [4]float64) {
	i := dst.PixOffset(x, y)
	a := clampFloatToUint8(math.Round(acc[3]))
	if a == 0 {
		dst.Pix[i+0], dst.Pix[i+1], dst.Pix[i+2], dst.Pix[i+3] = 0, 0, 0, 0
		return
	}
	scale := 255 / acc[3]
	for c := 0; c < 3; c++ {
		dst.Pix[i+c] = uint8(clampFloatToUint8(math.Round(acc[c] * scale)))
	}
	dst.Pix[i+3] = uint8(a)
}
