package stdimg

import (
	"image"
)

// sepiaMatrix blends between identity (amount 0) and the classic sepia
// matrix (amount 1).
func sepiaMatrix(amount float64) colorMatrix {
	k := 1 - clamp01(amount)
	return colorMatrix{
		{0.393 + 0.607*k, 0.769 - 0.769*k, 0.189 - 0.189*k},
		{0.349 - 0.349*k, 0.686 + 0.314*k, 0.168 - 0.168*k},
		{0.272 - 0.272*k, 0.534 - 0.534*k, 0.131 + 0.869*k},
	}
}

// SepiaTone applies a warm sepia tone. amount is in 0..1 where 0 returns an
// unchanged copy and 1 is full sepia.
func SepiaTone(src *image.NRGBA, amount float64) *image.NRGBA {
	return applyColorMatrix(src, sepiaMatrix(amount))
}
