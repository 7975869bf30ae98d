package stdimg

import (
	"image"
	"image/draw"
	"runtime"
	"sync"
)

// ToNRGBA converts any image.Image to a fresh *image.NRGBA (non-premultiplied
// RGBA) whose bounds start at (0,0). The source is never modified.
func ToNRGBA(src image.Image) *image.NRGBA {
	if src == nil {
		return nil
	}
	b := src.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	if n, ok := src.(*image.NRGBA); ok {
		// copy row by row; n may be a sub-image with a larger stride
		for y := 0; y < b.Dy(); y++ {
			si := n.PixOffset(b.Min.X, b.Min.Y+y)
			di := out.PixOffset(0, y)
			copy(out.Pix[di:di+4*b.Dx()], n.Pix[si:si+4*b.Dx()])
		}
		return out
	}
	// draw.Src into an NRGBA destination un-premultiplies the source colors
	draw.Draw(out, out.Bounds(), src, b.Min, draw.Src)
	return out
}

// CloneNRGBA returns a copy of the provided image.NRGBA
func CloneNRGBA(src *image.NRGBA) *image.NRGBA {
	if src == nil {
		return nil
	}
	out := image.NewNRGBA(src.Rect)
	copy(out.Pix, src.Pix)
	return out
}

// clampInt clamps v to [lo,hi]
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clamp01 clamps v to [0,1]
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// clampFloatToUint8 ensures v in [0,255]
func clampFloatToUint8(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

// unitToByte maps a 0..1 channel value back to 8 bits with rounding.
func unitToByte(v float64) uint8 {
	return uint8(clampFloatToUint8(v*255.0 + 0.5))
}

// parallelRows splits [0,h) into contiguous chunks, one per worker, and
// runs fn on each chunk. Small images run inline.
func parallelRows(h int, fn func(y0, y1 int)) {
	workers := runtime.GOMAXPROCS(0)
	if h < 64 || workers <= 1 {
		fn(0, h)
		return
	}
	chunk := (h + workers - 1) / workers
	var wg sync.WaitGroup
	for y0 := 0; y0 < h; y0 += chunk {
		y1 := y0 + chunk
		if y1 > h {
			y1 = h
		}
		wg.Add(1)
		go func(y0, y1 int) {
			defer wg.Done()
			fn(y0, y1)
		}(y0, y1)
	}
	wg.Wait()
}
