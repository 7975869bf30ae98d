package adjust

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Operation is one step of a compiled pipeline. Value is kept in the
// operation's native unit (percent for the multiplicative steps).
type Operation struct {
	Kind  Kind    `json:"op"`
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// Factor returns the unit-normalized argument used by the export rendering:
// percentages divided by 100, everything else unchanged.
func (o Operation) Factor() float64 {
	if o.Unit == UnitPercent {
		return o.Value / 100
	}
	return o.Value
}

// Preview renders the operation for a live display surface, e.g. "brightness(150%)".
func (o Operation) Preview() string {
	return string(o.Kind) + "(" + formatNumber(o.Value) + o.Unit.Suffix() + ")"
}

// Export renders the operation for an offscreen raster surface, e.g. "brightness(1.5)".
func (o Operation) Export() string {
	if o.Unit == UnitPercent {
		return string(o.Kind) + "(" + formatNumber(o.Factor()) + ")"
	}
	return o.Preview()
}

// Pipeline is an ordered, immutable list of operations produced by Compile.
// Both renderings are serialized from the same operations, so they cannot
// drift apart.
type Pipeline struct {
	ops []Operation
}

// Compile maps p to the fixed six-step pipeline. It is pure: the same
// parameters always produce the same pipeline. p must already be within
// its domain (see Parameters.Clamp).
func Compile(p Parameters) Pipeline {
	ops := make([]Operation, 0, len(Steps))
	ops = append(ops,
		Operation{Kind: KindBrightness, Value: p.Brightness, Unit: UnitPercent},
		Operation{Kind: KindContrast, Value: p.Contrast, Unit: UnitPercent},
		Operation{Kind: KindSaturate, Value: p.Saturation, Unit: UnitPercent},
		Operation{Kind: KindBlur, Value: p.BlurRadius, Unit: UnitPixel},
		Operation{Kind: KindHueRotate, Value: p.HueRotation, Unit: UnitDegree},
		temperatureOperation(p.Temperature),
	)
	return Pipeline{ops: ops}
}

// temperatureOperation warms with a sepia overlay for positive values and
// cools with a hue shift otherwise. Zero yields hue-rotate(0deg).
func temperatureOperation(t float64) Operation {
	if t > 0 {
		return Operation{Kind: KindSepia, Value: t / 100, Unit: UnitNone}
	}
	return Operation{Kind: KindHueRotate, Value: t * 2, Unit: UnitDegree}
}

// Operations returns a copy of the pipeline steps.
func (pl Pipeline) Operations() []Operation {
	out := make([]Operation, len(pl.ops))
	copy(out, pl.ops)
	return out
}

// Len returns the number of operations.
func (pl Pipeline) Len() int { return len(pl.ops) }

// Preview serializes the pipeline in percentage units for on-screen display.
func (pl Pipeline) Preview() string {
	return pl.join(Operation.Preview)
}

// Export serializes the pipeline in unit-normalized form for raster export.
func (pl Pipeline) Export() string {
	return pl.join(Operation.Export)
}

// String returns the preview rendering.
func (pl Pipeline) String() string { return pl.Preview() }

func (pl Pipeline) join(render func(Operation) string) string {
	parts := make([]string, len(pl.ops))
	for i, op := range pl.ops {
		parts[i] = render(op)
	}
	return strings.Join(parts, " ")
}

type pipelineJSON struct {
	Preview    string      `json:"preview"`
	Export     string      `json:"export"`
	Operations []Operation `json:"operations"`
}

// MarshalJSON emits both renderings alongside the structured operations.
func (pl Pipeline) MarshalJSON() ([]byte, error) {
	return json.Marshal(pipelineJSON{
		Preview:    pl.Preview(),
		Export:     pl.Export(),
		Operations: pl.Operations(),
	})
}

// formatNumber prints the shortest decimal that round-trips, without a
// negative zero.
func formatNumber(v float64) string {
	if v == 0 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
