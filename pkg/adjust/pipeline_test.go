package adjust

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCompileNeutralIsIdentity(t *testing.T) {
	pl := Compile(Neutral())
	want := []Operation{
		{Kind: KindBrightness, Value: 100, Unit: UnitPercent},
		{Kind: KindContrast, Value: 100, Unit: UnitPercent},
		{Kind: KindSaturate, Value: 100, Unit: UnitPercent},
		{Kind: KindBlur, Value: 0, Unit: UnitPixel},
		{Kind: KindHueRotate, Value: 0, Unit: UnitDegree},
		{Kind: KindHueRotate, Value: 0, Unit: UnitDegree},
	}
	if diff := cmp.Diff(want, pl.Operations()); diff != "" {
		t.Fatalf("neutral pipeline mismatch (-want +got):\n%s", diff)
	}
	if got := pl.Export(); got != "brightness(1) contrast(1) saturate(1) blur(0px) hue-rotate(0deg) hue-rotate(0deg)" {
		t.Fatalf("unexpected export rendering: %s", got)
	}
	if got := pl.Preview(); got != "brightness(100%) contrast(100%) saturate(100%) blur(0px) hue-rotate(0deg) hue-rotate(0deg)" {
		t.Fatalf("unexpected preview rendering: %s", got)
	}
}

func TestCompileRenderings(t *testing.T) {
	p := Parameters{Brightness: 150, Contrast: 80, Saturation: 120, BlurRadius: 3, HueRotation: -45, Temperature: 0}
	pl := Compile(p)
	if got, want := pl.Preview(), "brightness(150%) contrast(80%) saturate(120%) blur(3px) hue-rotate(-45deg) hue-rotate(0deg)"; got != want {
		t.Fatalf("preview:\n got %s\nwant %s", got, want)
	}
	if got, want := pl.Export(), "brightness(1.5) contrast(0.8) saturate(1.2) blur(3px) hue-rotate(-45deg) hue-rotate(0deg)"; got != want {
		t.Fatalf("export:\n got %s\nwant %s", got, want)
	}
}

func TestCompileOrderIsFixed(t *testing.T) {
	pl := Compile(Parameters{Brightness: 60, Contrast: 190, Saturation: 10, BlurRadius: 9, HueRotation: 170, Temperature: 40})
	ops := pl.Operations()
	if len(ops) != len(Steps) {
		t.Fatalf("expected %d operations, got %d", len(Steps), len(ops))
	}
	for i, step := range Steps {
		found := false
		for _, k := range step.Kinds {
			if ops[i].Kind == k {
				found = true
			}
		}
		if !found {
			t.Fatalf("step %d: got %s, want one of %v", step.Step, ops[i].Kind, step.Kinds)
		}
	}
}

func TestCompileWarmTemperature(t *testing.T) {
	pl := Compile(Parameters{Brightness: 100, Contrast: 100, Saturation: 100, Temperature: 30})
	ops := pl.Operations()
	last := ops[len(ops)-1]
	if last.Kind != KindSepia || last.Factor() != 0.3 {
		t.Fatalf("expected sepia(0.3), got %+v", last)
	}
	if !strings.HasSuffix(pl.Export(), " sepia(0.3)") {
		t.Fatalf("export rendering missing warm term: %s", pl.Export())
	}
	// the only hue-rotate left is the neutral hue step
	if n := strings.Count(pl.Export(), "hue-rotate("); n != 1 {
		t.Fatalf("expected exactly one hue-rotate, got %d in %s", n, pl.Export())
	}
}

func TestCompileCoolTemperature(t *testing.T) {
	pl := Compile(Parameters{Brightness: 100, Contrast: 100, Saturation: 100, Temperature: -20})
	last := pl.Operations()[pl.Len()-1]
	if last.Kind != KindHueRotate || last.Value != -40 {
		t.Fatalf("expected hue-rotate(-40deg), got %+v", last)
	}
	if strings.Contains(pl.Export(), "sepia") || strings.Contains(pl.Preview(), "sepia") {
		t.Fatalf("cool temperature must not warm: %s", pl.Export())
	}
	if !strings.HasSuffix(pl.Preview(), "hue-rotate(-40deg)") {
		t.Fatalf("unexpected preview: %s", pl.Preview())
	}
}

func TestCompileTemperatureBranches(t *testing.T) {
	tests := []struct {
		temp  float64
		kind  Kind
		value float64
	}{
		{50, KindSepia, 0.5},
		{1, KindSepia, 0.01},
		{0, KindHueRotate, 0},
		{-1, KindHueRotate, -2},
		{-50, KindHueRotate, -100},
	}
	for _, tc := range tests {
		op := Compile(Parameters{Temperature: tc.temp}).Operations()[5]
		if op.Kind != tc.kind || op.Value != tc.value {
			t.Fatalf("temperature %v: got %+v, want %s %v", tc.temp, op, tc.kind, tc.value)
		}
	}
}

func TestCompileDeterministic(t *testing.T) {
	p := Parameters{Brightness: 133, Contrast: 77, Saturation: 0, BlurRadius: 2.5, HueRotation: 12, Temperature: 7}
	a, b := Compile(p), Compile(p)
	if diff := cmp.Diff(a.Operations(), b.Operations()); diff != "" {
		t.Fatalf("compile is not deterministic:\n%s", diff)
	}
	if a.Preview() != b.Preview() || a.Export() != b.Export() {
		t.Fatalf("renderings differ between compilations")
	}
}

func TestOperationsReturnsCopy(t *testing.T) {
	pl := Compile(Neutral())
	ops := pl.Operations()
	ops[0].Value = 999
	if pl.Operations()[0].Value != 100 {
		t.Fatalf("pipeline mutated through Operations()")
	}
}

func TestMonochromePresetCompilesToZeroSaturation(t *testing.T) {
	p, ok := LookupPreset("monochrome")
	if !ok {
		t.Fatal("monochrome preset missing")
	}
	pl := Compile(p)
	if !strings.Contains(pl.Export(), "saturate(0)") {
		t.Fatalf("export rendering: %s", pl.Export())
	}
	if !strings.Contains(pl.Preview(), "saturate(0%)") {
		t.Fatalf("preview rendering: %s", pl.Preview())
	}
}

func TestNegativeZeroIsNotPrinted(t *testing.T) {
	op := Operation{Kind: KindHueRotate, Value: math.Copysign(0, -1), Unit: UnitDegree}
	if got := op.Preview(); got != "hue-rotate(0deg)" {
		t.Fatalf("got %s", got)
	}
}

func TestPipelineJSON(t *testing.T) {
	b, err := json.Marshal(Compile(Parameters{Brightness: 150, Contrast: 100, Saturation: 100, Temperature: 30}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got struct {
		Preview    string      `json:"preview"`
		Export     string      `json:"export"`
		Operations []Operation `json:"operations"`
	}
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Export != "brightness(1.5) contrast(1) saturate(1) blur(0px) hue-rotate(0deg) sepia(0.3)" {
		t.Fatalf("unexpected export: %s", got.Export)
	}
	if len(got.Operations) != 6 || got.Operations[0].Unit != UnitPercent || got.Operations[3].Unit != UnitPixel {
		t.Fatalf("unexpected operations: %+v", got.Operations)
	}
}
