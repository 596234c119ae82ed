// Package tint picks the display tint for a surface.
package tint

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/hulkholden/snowglobe/common/vmath"
	"github.com/mroth/weightedrand/v2"
)

// Default is the tint used when none is configured.
var Default = vmath.NewV3(0, 1, 0)

// Named colors accepted by Parse.
var Named = map[string]vmath.V3{
	"green":   Default,
	"red":     vmath.NewV3(0.99, 0.01, 0.21),
	"blue":    vmath.NewV3(0.01, 0.37, 0.99),
	"orange":  vmath.NewV3(0.99, 0.53, 0.01),
	"purple":  vmath.NewV3(0.54, 0.11, 0.72),
	"white":   vmath.NewV3(1, 1, 1),
	"magenta": vmath.NewV3(1, 0, 1),
}

// Palette weights the named colors picked by Random.
var Palette = map[string]uint{
	"green":  50,
	"blue":   20,
	"orange": 15,
	"purple": 10,
	"red":    5,
}

// Parse accepts a named color, "random", or "r,g,b" with components in [0,1].
// An empty string yields Default.
func Parse(s string) (vmath.V3, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return Default, nil
	case "random":
		return Random()
	}
	if c, ok := Named[s]; ok {
		return c, nil
	}

	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return vmath.V3{}, fmt.Errorf("tint %q: want a color name or r,g,b", s)
	}
	var rgb [3]float32
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return vmath.V3{}, fmt.Errorf("tint %q: component %d: %v", s, i, err)
		}
		if v < 0 || v > 1 {
			return vmath.V3{}, fmt.Errorf("tint %q: component %d out of range [0,1]", s, i)
		}
		rgb[i] = float32(v)
	}
	return vmath.NewV3(rgb[0], rgb[1], rgb[2]), nil
}

// Random picks a color from Palette.
func Random() (vmath.V3, error) {
	names := make([]string, 0, len(Palette))
	for name := range Palette {
		names = append(names, name)
	}
	sort.Strings(names)

	choices := make([]weightedrand.Choice[vmath.V3, uint], 0, len(names))
	for _, name := range names {
		choices = append(choices, weightedrand.NewChoice(Named[name], Palette[name]))
	}
	chooser, err := weightedrand.NewChooser(choices...)
	if err != nil {
		return vmath.V3{}, fmt.Errorf("building tint palette: %v", err)
	}
	return chooser.Pick(), nil
}
