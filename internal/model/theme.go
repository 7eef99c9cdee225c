package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Color is a straight-alpha sRGB color with components in [0, 1].
//
// It decodes from either the object form
//
//	{"red": 1.0, "green": 0.5, "blue": 0.0, "alpha": 1.0}
//
// or a hex string "#RRGGBB" / "#RRGGBBAA".
type Color struct {
	Red   float64 `json:"red" yaml:"red"`
	Green float64 `json:"green" yaml:"green"`
	Blue  float64 `json:"blue" yaml:"blue"`
	Alpha float64 `json:"alpha" yaml:"alpha"`
}

var (
	Black       = Color{Alpha: 1}
	Transparent = Color{}
)

// ParseHexColor parses "#RRGGBB" or "#RRGGBBAA" (the '#' is optional).
func ParseHexColor(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 && len(h) != 8 {
		return Color{}, fmt.Errorf("color %q: expected #RRGGBB or #RRGGBBAA", s)
	}
	if len(h) == 6 {
		h += "ff"
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("color %q: %w", s, err)
	}
	return Color{
		Red:   float64(v>>24&0xff) / 255,
		Green: float64(v>>16&0xff) / 255,
		Blue:  float64(v>>8&0xff) / 255,
		Alpha: float64(v&0xff) / 255,
	}, nil
}

// Hex formats c as "#rrggbbaa".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", channel(c.Red), channel(c.Green), channel(c.Blue), channel(c.Alpha))
}

// Fade returns c with its alpha multiplied by f.
func (c Color) Fade(f float64) Color {
	c.Alpha *= f
	return c
}

func channel(v float64) uint8 {
	v = math.Max(0, math.Min(1, v))
	return uint8(math.Round(v * 255))
}

// colorObject avoids recursion into Color's own unmarshalers.
type colorObject struct {
	Red   *float64 `json:"red" yaml:"red"`
	Green *float64 `json:"green" yaml:"green"`
	Blue  *float64 `json:"blue" yaml:"blue"`
	Alpha *float64 `json:"alpha" yaml:"alpha"`
}

func (o colorObject) color() (Color, error) {
	if o.Red == nil || o.Green == nil || o.Blue == nil {
		return Color{}, errors.New("color: red, green and blue are required")
	}
	c := Color{Red: *o.Red, Green: *o.Green, Blue: *o.Blue, Alpha: 1}
	if o.Alpha != nil {
		c.Alpha = *o.Alpha
	}
	for _, v := range []float64{c.Red, c.Green, c.Blue, c.Alpha} {
		if v < 0 || v > 1 {
			return Color{}, fmt.Errorf("color: component %v outside [0, 1]", v)
		}
	}
	return c, nil
}

func (c *Color) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		v, err := ParseHexColor(s)
		if err != nil {
			return err
		}
		*c = v
		return nil
	}
	var o colorObject
	if err := json.Unmarshal(b, &o); err != nil {
		return fmt.Errorf("color: %w", err)
	}
	v, err := o.color()
	if err != nil {
		return err
	}
	*c = v
	return nil
}

func (c *Color) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		v, err := ParseHexColor(n.Value)
		if err != nil {
			return err
		}
		*c = v
		return nil
	}
	var o colorObject
	if err := n.Decode(&o); err != nil {
		return fmt.Errorf("color: %w", err)
	}
	v, err := o.color()
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// CellColor is the pair of colors used to draw a subject's cell.
type CellColor struct {
	Background Color `json:"background" yaml:"background"`
	Foreground Color `json:"foreground" yaml:"foreground"`
}

// DefaultCellColor is used for subjects missing from the theme.
var DefaultCellColor = CellColor{Background: Transparent, Foreground: Black}

// Theme maps a subject name to its cell colors. Keys match lecture
// subjects by exact string equality.
type Theme map[string]CellColor

// Get returns the theme entry for subject, if any.
func (t Theme) Get(subject string) (CellColor, bool) {
	c, ok := t[subject]
	return c, ok
}

// Lookup returns the colors for subject, falling back to DefaultCellColor.
func (t Theme) Lookup(subject string) CellColor {
	if c, ok := t.Get(subject); ok {
		return c
	}
	return DefaultCellColor
}
