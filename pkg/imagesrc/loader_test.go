package imagesrc

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 200, 100, 50, 255
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestLoadDataURL(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	ref, err := EncodeDataURL(img, "png")
	if err != nil {
		t.Fatalf("encode data url: %v", err)
	}
	if !strings.HasPrefix(ref, "data:image/png;base64,") {
		t.Fatalf("unexpected prefix: %.30s", ref)
	}
	got, err := NewLoader(0, 0).Load(context.Background(), ref)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Bounds().Dx() != 3 || got.Bounds().Dy() != 2 {
		t.Fatalf("unexpected bounds %v", got.Bounds())
	}
	if r, _, _, _ := got.At(0, 0).RGBA(); r>>8 != 255 {
		t.Fatalf("pixel not preserved: %d", r>>8)
	}
}

func TestLoadJPEGDataURL(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	ref, err := EncodeDataURL(img, "jpeg")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.HasPrefix(ref, "data:image/jpeg;base64,") {
		t.Fatalf("unexpected prefix: %.30s", ref)
	}
	if _, err := NewLoader(0, 0).Load(context.Background(), ref); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := EncodeDataURL(img, "bmp"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestLoadHTTP(t *testing.T) {
	body := testPNG(t, 5, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(body)
	}))
	defer srv.Close()

	l := NewLoader(time.Second, 0).WithClient(srv.Client())
	img, err := l.Load(context.Background(), srv.URL+"/moon.png")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if img.Bounds().Dx() != 5 {
		t.Fatalf("unexpected width %d", img.Bounds().Dx())
	}

	_, err = l.Load(context.Background(), srv.URL+"/missing")
	var le *ImageLoadError
	if !errors.As(err, &le) {
		t.Fatalf("expected *ImageLoadError, got %v", err)
	}
}

func TestLoadHTTPCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewLoader(time.Second, 0).WithClient(srv.Client()).Load(ctx, srv.URL)
	var le *ImageLoadError
	if !errors.As(err, &le) {
		t.Fatalf("expected *ImageLoadError, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled in chain, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moon.png")
	if err := os.WriteFile(path, testPNG(t, 7, 3), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	img, err := NewLoader(0, 0).Load(context.Background(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if img.Bounds().Dy() != 3 {
		t.Fatalf("unexpected height %d", img.Bounds().Dy())
	}
}

func TestLoadFailures(t *testing.T) {
	l := NewLoader(0, 0)
	cases := map[string]string{
		"empty":       "",
		"missing":     filepath.Join(t.TempDir(), "nope.png"),
		"not an img":  "data:text/plain;base64,aGVsbG8=",
		"bad base64":  "data:image/png;base64,###",
		"no comma":    "data:image/png;base64",
		"unreachable": "http://127.0.0.1:1/moon.png",
	}
	for name, ref := range cases {
		_, err := l.Load(context.Background(), ref)
		var le *ImageLoadError
		if !errors.As(err, &le) {
			t.Errorf("%s: expected *ImageLoadError, got %v", name, err)
		}
	}
}

func TestLoadSizeLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.png")
	data := testPNG(t, 64, 64)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := NewLoader(0, int64(len(data)-1)).Load(context.Background(), path)
	if err == nil || !strings.Contains(err.Error(), "exceeds") {
		t.Fatalf("expected size error, got %v", err)
	}
}

func TestShortenHidesPayload(t *testing.T) {
	err := loadErr("data:image/png;base64,"+strings.Repeat("A", 500), errors.New("boom"))
	if len(err.Error()) > 120 {
		t.Fatalf("error message too long: %d", len(err.Error()))
	}
}

func TestStockPhotos(t *testing.T) {
	photos := StockPhotos()
	if len(photos) != 6 {
		t.Fatalf("expected 6 stock photos, got %d", len(photos))
	}
	if photos[0].Title != "Full Moon" || photos[5].Title != "Lunar Eclipse" {
		t.Fatalf("unexpected order: %v", photos)
	}
	photos[0].URL = "changed"
	if StockPhotos()[0].URL == "changed" {
		t.Fatalf("StockPhotos exposes internal state")
	}
	if !IsStockURL(StockPhotos()[2].URL) || IsStockURL("https://example.com") {
		t.Fatalf("IsStockURL mismatch")
	}
}

// hugePNG returns a valid 1x1 PNG whose header claims w x h pixels.
func hugePNG(t *testing.T, w, h uint32) []byte {
	t.Helper()
	data := testPNG(t, 1, 1)
	// signature(8) length(4) "IHDR"(4) width(4) height(4) ... crc after 13 data bytes
	binary.BigEndian.PutUint32(data[16:20], w)
	binary.BigEndian.PutUint32(data[20:24], h)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	return data
}

func TestDecodeRefusesHugeDimensions(t *testing.T) {
	data := hugePNG(t, 20000, 20000)
	if _, err := Decode(data); !errors.Is(err, ErrTooManyPixels) {
		t.Fatalf("expected ErrTooManyPixels, got %v", err)
	}

	path := filepath.Join(t.TempDir(), "bomb.png")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := NewLoader(0, 0).Load(context.Background(), path)
	var le *ImageLoadError
	if !errors.As(err, &le) || !errors.Is(err, ErrTooManyPixels) {
		t.Fatalf("expected *ImageLoadError wrapping ErrTooManyPixels, got %v", err)
	}
}

func TestLoaderPixelLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moon.png")
	if err := os.WriteFile(path, testPNG(t, 10, 10), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	l := NewLoader(0, 0)
	if _, err := l.WithMaxPixels(100).Load(context.Background(), path); err != nil {
		t.Fatalf("100 pixels should fit: %v", err)
	}
	if _, err := l.WithMaxPixels(99).Load(context.Background(), path); !errors.Is(err, ErrTooManyPixels) {
		t.Fatalf("expected ErrTooManyPixels, got %v", err)
	}
}
