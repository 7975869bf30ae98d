// Package adjust holds the six editor adjustment parameters, the preset
// table, and the compiler that turns parameters into an ordered filter
// pipeline with a preview and an export rendering.
package adjust

import (
	"math"

	"gopkg.in/yaml.v3"
)

// Range describes the accepted domain of a single adjustment parameter.
type Range struct {
	Min     float64
	Max     float64
	Neutral float64
}

// Clamp limits v to [Min, Max]. NaN maps to Neutral.
func (r Range) Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return r.Neutral
	}
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// Contains reports whether v lies inside the range.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

var (
	BrightnessRange  = Range{Min: 50, Max: 200, Neutral: 100}
	ContrastRange    = Range{Min: 50, Max: 200, Neutral: 100}
	SaturationRange  = Range{Min: 0, Max: 200, Neutral: 100}
	BlurRange        = Range{Min: 0, Max: 10, Neutral: 0}
	HueRange         = Range{Min: -180, Max: 180, Neutral: 0}
	TemperatureRange = Range{Min: -50, Max: 50, Neutral: 0}
)

// Parameters is one immutable set of editor adjustments.
// Brightness, Contrast and Saturation are percentages, BlurRadius is in
// pixels, HueRotation in degrees and Temperature is unitless.
//
// The field tags follow the persisted settings format (saturate, blur, hue).
type Parameters struct {
	Brightness  float64 `json:"brightness" yaml:"brightness"`
	Contrast    float64 `json:"contrast" yaml:"contrast"`
	Saturation  float64 `json:"saturate" yaml:"saturate"`
	BlurRadius  float64 `json:"blur" yaml:"blur"`
	HueRotation float64 `json:"hue" yaml:"hue"`
	Temperature float64 `json:"temperature" yaml:"temperature"`
}

// Neutral returns the parameters that leave an image visually unmodified.
func Neutral() Parameters {
	return Parameters{
		Brightness:  BrightnessRange.Neutral,
		Contrast:    ContrastRange.Neutral,
		Saturation:  SaturationRange.Neutral,
		BlurRadius:  BlurRange.Neutral,
		HueRotation: HueRange.Neutral,
		Temperature: TemperatureRange.Neutral,
	}
}

// UnmarshalYAML decodes a settings mapping. Keys that are left out keep
// their neutral value.
func (p *Parameters) UnmarshalYAML(n *yaml.Node) error {
	type plain Parameters
	v := plain(Neutral())
	if err := n.Decode(&v); err != nil {
		return err
	}
	*p = Parameters(v)
	return nil
}

// Clamp returns a copy of p with every field limited to its domain.
// Compile does not validate its input, so callers clamp first.
func (p Parameters) Clamp() Parameters {
	return Parameters{
		Brightness:  BrightnessRange.Clamp(p.Brightness),
		Contrast:    ContrastRange.Clamp(p.Contrast),
		Saturation:  SaturationRange.Clamp(p.Saturation),
		BlurRadius:  BlurRange.Clamp(p.BlurRadius),
		HueRotation: HueRange.Clamp(p.HueRotation),
		Temperature: TemperatureRange.Clamp(p.Temperature),
	}
}

// IsNeutral reports whether p equals Neutral().
func (p Parameters) IsNeutral() bool {
	return p == Neutral()
}
