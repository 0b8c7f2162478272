package renderer

import (
	"fmt"
	"image/color"
	"strings"
)

// ColorTheme selects the palette boards are drawn with.
type ColorTheme int

const (
	ThemeClassic ColorTheme = iota
	ThemeKiCad2020
	ThemeNord
)

// ThemeNames maps theme enum to display name
var ThemeNames = map[ColorTheme]string{
	ThemeClassic:   "Classic",
	ThemeKiCad2020: "KiCad 2020",
	ThemeNord:      "Nord",
}

func (t ColorTheme) String() string {
	if name, ok := ThemeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ColorTheme(%d)", int(t))
}

// ParseTheme resolves a theme from its display name, ignoring case and
// spaces ("kicad2020" matches "KiCad 2020").
func ParseTheme(name string) (ColorTheme, error) {
	key := strings.ToLower(strings.ReplaceAll(name, " ", ""))
	for t, n := range ThemeNames {
		if strings.ToLower(strings.ReplaceAll(n, " ", "")) == key {
			return t, nil
		}
	}
	return ThemeClassic, fmt.Errorf("renderer: unknown theme %q", name)
}

// KiCad Classic theme colors
var classicColors = map[string]color.NRGBA{
	"F.Cu":      {R: 200, G: 52, B: 52, A: 255},   // Front copper (red)
	"B.Cu":      {R: 77, G: 127, B: 196, A: 255},  // Back copper (blue)
	"F.SilkS":   {R: 242, G: 237, B: 161, A: 255}, // Front silkscreen (yellow)
	"F.Mask":    {R: 216, G: 100, B: 255, A: 102}, // Front mask (purple, semi-transparent)
	"F.Paste":   {R: 180, G: 160, B: 154, A: 230},
	"F.Fab":     {R: 175, G: 175, B: 175, A: 255}, // Front fab (gray)
	"F.CrtYd":   {R: 255, G: 38, B: 226, A: 255},  // Front courtyard (magenta)
	"Edge.Cuts": {R: 208, G: 210, B: 205, A: 255},
}

// KiCad 2020 theme colors (modern, higher contrast)
var kicad2020Colors = map[string]color.NRGBA{
	"F.Cu":      {R: 179, G: 31, B: 31, A: 255},
	"B.Cu":      {R: 12, G: 98, B: 179, A: 255},
	"F.SilkS":   {R: 242, G: 237, B: 161, A: 255},
	"F.Mask":    {R: 132, G: 0, B: 132, A: 102},
	"F.Paste":   {R: 150, G: 150, B: 150, A: 230},
	"F.Fab":     {R: 128, G: 128, B: 128, A: 255},
	"F.CrtYd":   {R: 255, G: 0, B: 255, A: 255},
	"Edge.Cuts": {R: 255, G: 255, B: 0, A: 255},
}

// Nord theme (based on Nord color palette)
var nordColors = map[string]color.NRGBA{
	"F.Cu":      {R: 191, G: 97, B: 106, A: 255},  // Nord11
	"B.Cu":      {R: 129, G: 161, B: 193, A: 255}, // Nord9
	"F.SilkS":   {R: 236, G: 239, B: 244, A: 255}, // Nord6
	"F.Mask":    {R: 180, G: 142, B: 173, A: 102}, // Nord15
	"F.Paste":   {R: 216, G: 222, B: 233, A: 230}, // Nord4
	"F.Fab":     {R: 216, G: 222, B: 233, A: 255}, // Nord4
	"F.CrtYd":   {R: 180, G: 142, B: 173, A: 255}, // Nord15
	"Edge.Cuts": {R: 229, G: 233, B: 240, A: 255}, // Nord5
}

// Special colors
var (
	ColorPadSMD     = color.NRGBA{R: 227, G: 183, B: 46, A: 255} // SMD pad (gold)
	ColorHighlight  = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	ColorBackground = color.NRGBA{R: 0, G: 16, B: 35, A: 255} // Background (dark blue)
)

// SubstrateColor returns the board substrate color for the theme.
func (t ColorTheme) SubstrateColor() color.NRGBA {
	switch t {
	case ThemeKiCad2020:
		return color.NRGBA{R: 25, G: 95, B: 55, A: 255}
	case ThemeNord:
		return color.NRGBA{R: 46, G: 52, B: 64, A: 255} // Nord0
	default:
		return color.NRGBA{R: 20, G: 90, B: 50, A: 255} // Dark green
	}
}

// LayerColor returns the color for a layer name, gray for layers the
// theme does not define.
func (t ColorTheme) LayerColor(layer string) color.NRGBA {
	colors := classicColors
	switch t {
	case ThemeKiCad2020:
		colors = kicad2020Colors
	case ThemeNord:
		colors = nordColors
	}

	if c, ok := colors[layer]; ok {
		return c
	}
	return color.NRGBA{R: 128, G: 128, B: 128, A: 255}
}

// RatsnestColor returns a distinct color for the i-th net.
func RatsnestColor(i int) color.NRGBA {
	palette := []color.NRGBA{
		{R: 0, G: 200, B: 255, A: 255},
		{R: 255, G: 170, B: 0, A: 255},
		{R: 120, G: 255, B: 120, A: 255},
		{R: 255, G: 90, B: 160, A: 255},
		{R: 200, G: 160, B: 255, A: 255},
		{R: 255, G: 255, B: 120, A: 255},
	}
	return palette[i%len(palette)]
}
