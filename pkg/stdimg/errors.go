package stdimg

import (
	"fmt"
	"image"
)

// InvalidImageError reports a nil, zero-dimension or otherwise unusable
// decoded buffer. It is a caller contract violation: the operation fails but
// the caller may carry on with another image.
type InvalidImageError struct {
	Width  int
	Height int
	Reason string
}

func (e *InvalidImageError) Error() string {
	return fmt.Sprintf("invalid image (%dx%d): %s", e.Width, e.Height, e.Reason)
}

// validateImage rejects nil images and images without pixels.
func validateImage(img image.Image) error {
	if img == nil {
		return &InvalidImageError{Reason: "image is nil"}
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return &InvalidImageError{Width: b.Dx(), Height: b.Dy(), Reason: "image has no pixels"}
	}
	return nil
}
