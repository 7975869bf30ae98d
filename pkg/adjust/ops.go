package adjust

import "fmt"

// Kind names an image-processing primitive in the filter grammar.
type Kind string

const (
	KindBrightness Kind = "brightness"
	KindContrast   Kind = "contrast"
	KindSaturate   Kind = "saturate"
	KindBlur       Kind = "blur"
	KindHueRotate  Kind = "hue-rotate"
	KindSepia      Kind = "sepia"
)

// Unit is the unit an operation argument is expressed in.
type Unit int

const (
	UnitNone Unit = iota
	UnitPercent
	UnitPixel
	UnitDegree
)

// Suffix returns the textual unit used in the filter grammar.
func (u Unit) Suffix() string {
	switch u {
	case UnitPercent:
		return "%"
	case UnitPixel:
		return "px"
	case UnitDegree:
		return "deg"
	default:
		return ""
	}
}

// MarshalText encodes the unit as its suffix.
func (u Unit) MarshalText() ([]byte, error) {
	return []byte(u.Suffix()), nil
}

// UnmarshalText decodes a suffix produced by MarshalText.
func (u *Unit) UnmarshalText(b []byte) error {
	switch string(b) {
	case "":
		*u = UnitNone
	case "%":
		*u = UnitPercent
	case "px":
		*u = UnitPixel
	case "deg":
		*u = UnitDegree
	default:
		return fmt.Errorf("unknown unit %q", string(b))
	}
	return nil
}

// StepSpec documents one step of the compiled pipeline.
type StepSpec struct {
	Step        int
	Kinds       []Kind
	Source      string // parameter the step is derived from
	Description string
}

// Steps lists the pipeline steps in the order Compile emits them.
var Steps = []StepSpec{
	{1, []Kind{KindBrightness}, "brightness", "multiplicative brightness, percent in preview, factor in export"},
	{2, []Kind{KindContrast}, "contrast", "multiplicative contrast around mid-grey"},
	{3, []Kind{KindSaturate}, "saturate", "saturation, 0 is greyscale"},
	{4, []Kind{KindBlur}, "blur", "gaussian blur, radius in pixels, 0 is a no-op"},
	{5, []Kind{KindHueRotate}, "hue", "hue rotation in degrees"},
	{6, []Kind{KindSepia, KindHueRotate}, "temperature", "warm: sepia(t/100) when t > 0; cool: hue-rotate(t*2 deg) otherwise"},
}
