package stdimg

import (
	"image"
	"math"
)

// colorMatrix is a 3x3 RGB transform applied to column vectors (r, g, b).
type colorMatrix [3][3]float64

// Rec. 709 luma weights used by the saturate and hue-rotate matrices.
const (
	lumR = 0.213
	lumG = 0.715
	lumB = 0.072
)

// saturateMatrix desaturates towards luma for s < 1 and oversaturates for s > 1.
func saturateMatrix(s float64) colorMatrix {
	return colorMatrix{
		{lumR + (1-lumR)*s, lumG - lumG*s, lumB - lumB*s},
		{lumR - lumR*s, lumG + (1-lumG)*s, lumB - lumB*s},
		{lumR - lumR*s, lumG - lumG*s, lumB + (1-lumB)*s},
	}
}

// hueRotateMatrix rotates hues by deg degrees while preserving luma.
func hueRotateMatrix(deg float64) colorMatrix {
	rad := deg * math.Pi / 180.0
	c := math.Cos(rad)
	s := math.Sin(rad)
	return colorMatrix{
		{lumR + c*(1-lumR) - s*lumR, lumG - c*lumG - s*lumG, lumB - c*lumB + s*(1-lumB)},
		{lumR - c*lumR + s*0.143, lumG + c*(1-lumG) + s*0.140, lumB - c*lumB - s*0.283},
		{lumR - c*lumR - s*(1-lumR), lumG - c*lumG + s*lumG, lumB + c*(1-lumB) + s*lumB},
	}
}

// Saturate scales saturation by factor: 0 is greyscale, 1 unchanged.
func Saturate(src *image.NRGBA, factor float64) *image.NRGBA {
	return applyColorMatrix(src, saturateMatrix(factor))
}

// HueRotate rotates the hue of every pixel by deg degrees.
func HueRotate(src *image.NRGBA, deg float64) *image.NRGBA {
	return applyColorMatrix(src, hueRotateMatrix(deg))
}

// applyColorMatrix transforms every pixel's color by m, clamping the result.
// Alpha is preserved.
func applyColorMatrix(src *image.NRGBA, m colorMatrix) *image.NRGBA {
	if src == nil {
		return nil
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
				r := float64(src.Pix[j+0]) / 255.0
				g := float64(src.Pix[j+1]) / 255.0
				b_ := float64(src.Pix[j+2]) / 255.0
				out.Pix[k+0] = unitToByte(clamp01(m[0][0]*r + m[0][1]*g + m[0][2]*b_))
				out.Pix[k+1] = unitToByte(clamp01(m[1][0]*r + m[1][1]*g + m[1][2]*b_))
				out.Pix[k+2] = unitToByte(clamp01(m[2][0]*r + m[2][1]*g + m[2][2]*b_))
				out.Pix[k+3] = src.Pix[j+3]
			}
		}
	})
	return out
}
