package stdimg

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestComputeHistogramCounts(t *testing.T) {
	img := makeSolidNRGBA(10, 5, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	img.Pix[0], img.Pix[1], img.Pix[2] = 0, 0, 0 // one black pixel

	h := ComputeHistogram(img)
	if h.Red[10] != 49 || h.Green[20] != 49 || h.Blue[30] != 49 {
		t.Fatalf("unexpected counts: r=%d g=%d b=%d", h.Red[10], h.Green[20], h.Blue[30])
	}
	if h.Red[0] != 1 || h.Green[0] != 1 || h.Blue[0] != 1 {
		t.Fatalf("black pixel not counted")
	}
	if h.MaxCount != 49 {
		t.Fatalf("MaxCount = %d, want 49", h.MaxCount)
	}
	for _, ch := range [...]*[Bins]int{&h.Red, &h.Green, &h.Blue} {
		sum := 0
		for _, v := range ch {
			sum += v
		}
		if sum != 50 || sum != h.Total() {
			t.Fatalf("channel sum = %d, want 50", sum)
		}
	}
}

func TestComputeHistogramIgnoresAlpha(t *testing.T) {
	a := makeSolidNRGBA(4, 4, color.NRGBA{R: 7, G: 8, B: 9, A: 255})
	b := makeSolidNRGBA(4, 4, color.NRGBA{R: 7, G: 8, B: 9, A: 0})
	if *ComputeHistogram(a) != *ComputeHistogram(b) {
		t.Fatalf("alpha affected histogram")
	}
}

func TestComputeHistogramOrderIndependent(t *testing.T) {
	src := makeGradient(30, 20)
	// mirror horizontally; same multiset of pixels
	flipped := image.NewNRGBA(src.Bounds())
	for y := 0; y < 20; y++ {
		for x := 0; x < 30; x++ {
			flipped.SetNRGBA(29-x, y, src.NRGBAAt(x, y))
		}
	}
	if *ComputeHistogram(src) != *ComputeHistogram(flipped) {
		t.Fatalf("histogram depends on pixel order")
	}
}

func TestSampleHistogramDownscales(t *testing.T) {
	h, err := SampleHistogram(makeSolidNRGBA(1600, 1200, color.NRGBA{R: 200, G: 100, B: 50, A: 255}))
	if err != nil {
		t.Fatalf("sample failed: %v", err)
	}
	if h.Width != 800 || h.Height != 600 {
		t.Fatalf("sampled %dx%d, want 800x600", h.Width, h.Height)
	}
	sum := 0
	for _, v := range h.Red {
		sum += v
	}
	if sum != 800*600 || h.Total() != sum {
		t.Fatalf("red bins sum to %d, want %d", sum, 800*600)
	}
}

func TestSampleHistogramKeepsSmallImages(t *testing.T) {
	h, err := SampleHistogram(makeGradient(800, 600))
	if err != nil {
		t.Fatalf("sample failed: %v", err)
	}
	if h.Width != 800 || h.Height != 600 {
		t.Fatalf("sampled %dx%d, want 800x600", h.Width, h.Height)
	}
}

func TestSampleHistogramInvalid(t *testing.T) {
	for _, img := range []image.Image{nil, image.NewNRGBA(image.Rect(0, 0, 0, 10))} {
		_, err := SampleHistogram(img)
		var ie *InvalidImageError
		if !errors.As(err, &ie) {
			t.Fatalf("expected *InvalidImageError, got %v", err)
		}
	}
}

func TestFitWithin(t *testing.T) {
	cases := []struct {
		w, h, max, ww, wh int
	}{
		{1600, 1200, 800, 800, 600},
		{1200, 1600, 800, 600, 800},
		{800, 600, 800, 800, 600},
		{100, 50, 800, 100, 50},
		{1001, 333, 800, 800, 266},
		{5000, 2, 800, 800, 1},
	}
	for _, c := range cases {
		w, h := FitWithin(c.w, c.h, c.max)
		if w != c.ww || h != c.wh {
			t.Errorf("FitWithin(%d,%d,%d) = %d,%d want %d,%d", c.w, c.h, c.max, w, h, c.ww, c.wh)
		}
	}
}

func TestMeanAndChannel(t *testing.T) {
	h := ComputeHistogram(makeSolidNRGBA(2, 2, color.NRGBA{R: 40, G: 0, B: 255, A: 255}))
	if m := Mean(h.Channel("r")); m != 40 {
		t.Fatalf("mean red = %v", m)
	}
	if m := Mean(h.Channel("blue")); m != 255 {
		t.Fatalf("mean blue = %v", m)
	}
	if h.Channel("alpha") != nil {
		t.Fatalf("unexpected channel")
	}
}

func TestRenderHistogramImage(t *testing.T) {
	h := ComputeHistogram(makeGradient(64, 64))
	img := RenderHistogramImage(h, 256, 100)
	if img.Bounds().Dx() != 256 || img.Bounds().Dy() != 100 {
		t.Fatalf("unexpected size %v", img.Bounds())
	}
	empty := RenderHistogramImage(nil, 0, 0)
	if empty.Bounds().Dx() != 512 {
		t.Fatalf("default width not applied")
	}
}
