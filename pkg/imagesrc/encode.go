package imagesrc

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/disintegration/imaging"
)

// EncodePNG writes img to w as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	return imaging.Encode(w, img, imaging.PNG)
}

// EncodeDataURL encodes img in the named format ("png" or "jpeg") and
// returns it as a base64 data URL.
func EncodeDataURL(img image.Image, format string) (string, error) {
	var (
		f    imaging.Format
		mime string
		opts []imaging.EncodeOption
	)
	switch strings.ToLower(format) {
	case "png", "":
		f, mime = imaging.PNG, "image/png"
	case "jpeg", "jpg":
		f, mime = imaging.JPEG, "image/jpeg"
		opts = append(opts, imaging.JPEGQuality(92))
	default:
		return "", fmt.Errorf("unsupported data URL format %q", format)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, f, opts...); err != nil {
		return "", fmt.Errorf("encode %s: %w", format, err)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
