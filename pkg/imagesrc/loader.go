// Package imagesrc turns an image reference (data URL, http(s) URL or local
// path) into decoded pixels, and encodes rendered images back out.
package imagesrc

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	_ "golang.org/x/image/webp"
)

const (
	// DefaultTimeout bounds a single remote fetch.
	DefaultTimeout = 15 * time.Second
	// DefaultMaxBytes bounds the encoded size of any image source.
	DefaultMaxBytes = 50 << 20
	// DefaultMaxPixels bounds the decoded size of any image.
	DefaultMaxPixels = 50_000_000
)

// ErrTooManyPixels is returned for images whose header declares more
// pixels than the loader accepts.
var ErrTooManyPixels = errors.New("image dimensions too large")

// Loader fetches and decodes images. The zero value is not usable; use
// NewLoader.
type Loader struct {
	client    *http.Client
	maxBytes  int64
	maxPixels int64
}

// NewLoader returns a loader whose remote fetches time out after timeout
// and whose sources may not exceed maxBytes. Non-positive values select
// the defaults. Decoded images are limited to DefaultMaxPixels.
func NewLoader(timeout time.Duration, maxBytes int64) *Loader {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Loader{client: &http.Client{Timeout: timeout}, maxBytes: maxBytes, maxPixels: DefaultMaxPixels}
}

// WithClient returns a copy of l that fetches through c.
func (l *Loader) WithClient(c *http.Client) *Loader {
	cp := *l
	cp.client = c
	return &cp
}

// WithMaxPixels returns a copy of l that refuses images larger than n
// pixels. A non-positive n selects DefaultMaxPixels.
func (l *Loader) WithMaxPixels(n int64) *Loader {
	if n <= 0 {
		n = DefaultMaxPixels
	}
	cp := *l
	cp.maxPixels = n
	return &cp
}

// PublicOnly returns a copy of l that refuses to connect to loopback,
// private and link-local addresses. The request timeout is kept.
func (l *Loader) PublicOnly() *Loader {
	cp := *l
	cp.client = publicOnlyClient(l.client.Timeout)
	return &cp
}

// Load resolves ref and decodes it. EXIF orientation is applied. Every
// failure is an *ImageLoadError.
func (l *Loader) Load(ctx context.Context, ref string) (image.Image, error) {
	data, err := l.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	img, err := DecodeLimit(data, l.maxPixels)
	if err != nil {
		return nil, loadErr(ref, err)
	}
	return img, nil
}

// Fetch returns the encoded bytes behind ref without decoding them.
func (l *Loader) Fetch(ctx context.Context, ref string) ([]byte, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, loadErr(ref, errors.New("empty image reference"))
	}
	var (
		data []byte
		err  error
	)
	switch {
	case strings.HasPrefix(ref, "data:"):
		data, err = decodeDataURL(ref)
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		data, err = l.fetchRemote(ctx, ref)
	default:
		data, err = l.readFile(ref)
	}
	if err != nil {
		return nil, loadErr(ref, err)
	}
	if int64(len(data)) > l.maxBytes {
		return nil, loadErr(ref, fmt.Errorf("image exceeds %d bytes", l.maxBytes))
	}
	return data, nil
}

// Decode decodes an encoded image of at most DefaultMaxPixels pixels,
// honouring EXIF orientation.
func Decode(data []byte) (image.Image, error) {
	return DecodeLimit(data, DefaultMaxPixels)
}

// DecodeLimit is Decode with an explicit pixel limit. The header is read
// first so oversized images are refused before any pixel buffer exists.
func DecodeLimit(data []byte, maxPixels int64) (image.Image, error) {
	if len(data) == 0 {
		return nil, errors.New("no image data")
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if px := int64(cfg.Width) * int64(cfg.Height); maxPixels > 0 && px > maxPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrTooManyPixels, cfg.Width, cfg.Height, maxPixels)
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return img, nil
}

// decodeDataURL accepts "data:[<mediatype>][;base64],<payload>".
func decodeDataURL(ref string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok {
		return nil, errors.New("malformed data URL")
	}
	if strings.HasSuffix(meta, ";base64") {
		b, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			// some encoders drop the padding
			if b, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "=")); err != nil {
				return nil, fmt.Errorf("data URL payload: %w", err)
			}
		}
		return b, nil
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("data URL payload: %w", err)
	}
	return []byte(s), nil
}

func (l *Loader) fetchRemote(ctx context.Context, ref string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "image/*")
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return readLimited(resp.Body, l.maxBytes)
}

func (l *Loader) readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readLimited(f, l.maxBytes)
}

// readLimited reads at most limit+1 bytes so oversize input is detectable.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, limit+1))
}
