package stdimg

import (
	"image"
	"math"
)

// Bins is the number of intensity levels per channel.
const Bins = 256

// Histogram holds per-channel intensity counts of one sampled image.
// It is built once per image load and never updated in place.
type Histogram struct {
	Red      [Bins]int `json:"red"`
	Green    [Bins]int `json:"green"`
	Blue     [Bins]int `json:"blue"`
	MaxCount int       `json:"maxCount"`
	// Width and Height are the dimensions actually sampled, after any downscale.
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ComputeHistogram bins every pixel of src by its R, G and B value.
// Alpha is ignored. The counts do not depend on traversal order.
func ComputeHistogram(src *image.NRGBA) *Histogram {
	if src == nil {
		return nil
	}
	b := src.Bounds()
	h := &Histogram{Width: b.Dx(), Height: b.Dy()}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := src.PixOffset(b.Min.X, y)
		row := src.Pix[i : i+4*b.Dx()]
		for j := 0; j < len(row); j += 4 {
			h.Red[row[j+0]]++
			h.Green[row[j+1]]++
			h.Blue[row[j+2]]++
		}
	}
	for _, ch := range [...]*[Bins]int{&h.Red, &h.Green, &h.Blue} {
		for _, v := range ch {
			if v > h.MaxCount {
				h.MaxCount = v
			}
		}
	}
	return h
}

// SampleHistogram downscales img so its longer side is at most
// HistogramMaxSide and bins the result. It fails with *InvalidImageError
// when img is nil or has no pixels.
func SampleHistogram(img image.Image) (*Histogram, error) {
	if err := validateImage(img); err != nil {
		return nil, err
	}
	return ComputeHistogram(Downscale(img, HistogramMaxSide)), nil
}

// Total returns the number of pixels counted per channel.
func (h *Histogram) Total() int {
	return h.Width * h.Height
}

// Channel returns the bins for "r", "g" or "b".
func (h *Histogram) Channel(name string) *[Bins]int {
	switch name {
	case "r", "red":
		return &h.Red
	case "g", "green":
		return &h.Green
	case "b", "blue":
		return &h.Blue
	}
	return nil
}

// Mean returns the average intensity of a channel's bins.
func Mean(bins *[Bins]int) float64 {
	sum, n := 0, 0
	for v, c := range bins {
		sum += v * c
		n += c
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

// RenderHistogramImage renders the three channels overlaid on a dark
// background, additively, scaled to MaxCount.
func RenderHistogramImage(h *Histogram, width, height int) *image.NRGBA {
	if width <= 0 {
		width = 512
	}
	if height <= 0 {
		height = 128
	}
	out := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < len(out.Pix); i += 4 {
		out.Pix[i+0] = 12
		out.Pix[i+1] = 16
		out.Pix[i+2] = 28
		out.Pix[i+3] = 255
	}
	if h == nil || h.MaxCount == 0 {
		return out
	}
	maxv := float64(h.MaxCount)
	for x := 0; x < width; x++ {
		bin := clampInt(int(math.Floor(float64(x)*Bins/float64(width))), 0, Bins-1)
		heights := [3]int{
			int(math.Round(float64(h.Red[bin]) / maxv * float64(height-1))),
			int(math.Round(float64(h.Green[bin]) / maxv * float64(height-1))),
			int(math.Round(float64(h.Blue[bin]) / maxv * float64(height-1))),
		}
		for c, ch := range heights {
			// a non-empty bin always gets at least one pixel
			if ch == 0 && [3]int{h.Red[bin], h.Green[bin], h.Blue[bin]}[c] > 0 {
				ch = 1
			}
			for y := 0; y < ch; y++ {
				i := out.PixOffset(x, height-1-y)
				// screen blend each channel towards 60% intensity
				v := float64(out.Pix[i+c])
				out.Pix[i+c] = uint8(255 - (255-v)*(1-0.6))
			}
		}
	}
	return out
}
