package stdimg

import (
	"fmt"
	"image"

	"github.com/Fepozopo/lunaratelier/pkg/adjust"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// Render applies the export rendering of pl to img, one operation at a time
// in pipeline order, and returns a new image. img is not modified.
func Render(img image.Image, pl adjust.Pipeline) (*image.NRGBA, error) {
	if err := validateImage(img); err != nil {
		return nil, err
	}
	cur := ToNRGBA(img)
	for _, op := range pl.Operations() {
		next, err := ApplyOperation(cur, op)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

// ApplyOperation applies a single pipeline operation to src and returns a
// new image. Operations whose argument is the identity still return a copy.
func ApplyOperation(src *image.NRGBA, op adjust.Operation) (*image.NRGBA, error) {
	if src == nil {
		return nil, fmt.Errorf("source image is nil")
	}
	v := op.Factor()
	switch op.Kind {
	case adjust.KindBrightness:
		if v < 0 {
			return nil, fmt.Errorf("brightness must not be negative: %v", v)
		}
		return Brightness(src, v), nil

	case adjust.KindContrast:
		if v < 0 {
			return nil, fmt.Errorf("contrast must not be negative: %v", v)
		}
		return Contrast(src, v), nil

	case adjust.KindSaturate:
		if v < 0 {
			return nil, fmt.Errorf("saturate must not be negative: %v", v)
		}
		return Saturate(src, v), nil

	case adjust.KindBlur:
		if v < 0 {
			return nil, fmt.Errorf("blur radius must not be negative: %v", v)
		}
		return GaussianBlur(src, v), nil

	case adjust.KindHueRotate:
		return HueRotate(src, v), nil

	case adjust.KindSepia:
		return SepiaTone(src, v), nil

	default:
		return nil, fmt.Errorf("unsupported operation in stdlib engine: %s", op.Kind)
	}
}
