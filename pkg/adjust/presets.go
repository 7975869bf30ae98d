package adjust

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Preset is a named set of parameters substituted wholesale for the current
// ones. Label is the short name shown on the editor buttons.
type Preset struct {
	Name     string     `json:"name" yaml:"name"`
	Label    string     `json:"label" yaml:"label"`
	Settings Parameters `json:"settings" yaml:"settings"`
}

// UnmarshalYAML decodes a user preset. A preset without settings is
// neutral.
func (p *Preset) UnmarshalYAML(n *yaml.Node) error {
	type plain Preset
	v := plain{Settings: Neutral()}
	if err := n.Decode(&v); err != nil {
		return err
	}
	*p = Preset(v)
	return nil
}

var builtinPresets = [...]Preset{
	{Name: "lunar-surface", Label: "Surface", Settings: Parameters{Brightness: 120, Contrast: 140, Saturation: 80, BlurRadius: 0, HueRotation: 0, Temperature: 5}},
	{Name: "deep-crater", Label: "Crater", Settings: Parameters{Brightness: 110, Contrast: 160, Saturation: 90, BlurRadius: 0, HueRotation: -5, Temperature: -10}},
	{Name: "bright-moon", Label: "Bright", Settings: Parameters{Brightness: 140, Contrast: 110, Saturation: 100, BlurRadius: 0, HueRotation: 10, Temperature: 15}},
	{Name: "monochrome", Label: "B&W", Settings: Parameters{Brightness: 115, Contrast: 135, Saturation: 0, BlurRadius: 0, HueRotation: 0, Temperature: 0}},
}

// Presets returns the built-in preset table in display order.
func Presets() []Preset {
	out := make([]Preset, len(builtinPresets))
	copy(out, builtinPresets[:])
	return out
}

// LookupPreset finds a built-in preset by name.
func LookupPreset(name string) (Parameters, bool) {
	for _, p := range builtinPresets {
		if p.Name == name {
			return p.Settings, true
		}
	}
	return Parameters{}, false
}

// Catalog is the built-in presets followed by any user-defined ones.
type Catalog struct {
	order  []Preset
	byName map[string]int
}

// NewCatalog builds a catalog from the built-in table plus extra presets.
// Extra preset settings are clamped. Empty or duplicate names are rejected.
func NewCatalog(extra ...Preset) (*Catalog, error) {
	c := &Catalog{byName: make(map[string]int, len(builtinPresets)+len(extra))}
	for _, p := range builtinPresets {
		c.add(p)
	}
	for _, p := range extra {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return nil, fmt.Errorf("preset name is empty")
		}
		if _, dup := c.byName[name]; dup {
			return nil, fmt.Errorf("duplicate preset %q", name)
		}
		if p.Label == "" {
			p.Label = name
		}
		p.Name = name
		p.Settings = p.Settings.Clamp()
		c.add(p)
	}
	return c, nil
}

func (c *Catalog) add(p Preset) {
	c.byName[p.Name] = len(c.order)
	c.order = append(c.order, p)
}

// Lookup returns the preset with the given name.
func (c *Catalog) Lookup(name string) (Preset, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Preset{}, false
	}
	return c.order[i], true
}

// All returns every preset in catalog order.
func (c *Catalog) All() []Preset {
	out := make([]Preset, len(c.order))
	copy(out, c.order)
	return out
}
