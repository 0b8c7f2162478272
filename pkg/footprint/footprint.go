// Package footprint holds the fixed land patterns the generator can place.
//
// Only the 0805 two-terminal SMD package is supported for resistors and
// capacitors; geometry follows the KiCad standard library footprints
// Resistor_SMD:R_0805_2012Metric and Capacitor_SMD:C_0805_2012Metric.
package footprint

import (
	"errors"
	"fmt"

	"github.com/OpenTraceLab/pcbgen/pkg/kicad/sexp"
)

// DefaultPackage is used when a component does not name one.
const DefaultPackage = "0805"

// ErrUnknownPackage is returned by Lookup for unsupported class/package pairs.
var ErrUnknownPackage = errors.New("footprint: unknown package")

// Class identifies the part family a land pattern belongs to.
type Class string

const (
	Resistor  Class = "resistor"
	Capacitor Class = "capacitor"
)

// Pad is one copper pad in footprint-local coordinates.
type Pad struct {
	Number int
	Offset sexp.Position
	Size   sexp.Size
	// RoundRectRatio is the corner radius as a fraction of the shorter side.
	RoundRectRatio float64
}

// Footprint is a fixed land pattern.
type Footprint struct {
	Library string
	Name    string
	Pads    []Pad
	// Courtyard is the keep-out rectangle, centred on the origin.
	Courtyard sexp.BoundingBox
	// Body is the fabrication outline of the part body.
	Body sexp.BoundingBox
}

// ID returns the "Library:Name" form KiCad uses to reference the footprint.
func (f *Footprint) ID() string {
	return f.Library + ":" + f.Name
}

// PinCount returns the number of pads.
func (f *Footprint) PinCount() int {
	return len(f.Pads)
}

// Pad returns the pad with the given number.
func (f *Footprint) Pad(n int) (Pad, bool) {
	for _, p := range f.Pads {
		if p.Number == n {
			return p, true
		}
	}
	return Pad{}, false
}

// PadPosition returns the board position of pad n for a footprint placed
// at origin.
func (f *Footprint) PadPosition(origin sexp.PositionAngle, n int) (sexp.Position, bool) {
	p, ok := f.Pad(n)
	if !ok {
		return sexp.Position{}, false
	}
	return origin.Transform(p.Offset), true
}

// Bounds returns the courtyard of the footprint placed at origin in board
// coordinates.
func (f *Footprint) Bounds(origin sexp.PositionAngle) sexp.BoundingBox {
	bb := sexp.NewBoundingBox()
	corners := []sexp.Position{
		f.Courtyard.Min,
		{X: f.Courtyard.Max.X, Y: f.Courtyard.Min.Y},
		f.Courtyard.Max,
		{X: f.Courtyard.Min.X, Y: f.Courtyard.Max.Y},
	}
	for _, c := range corners {
		bb.Expand(origin.Transform(c))
	}
	return bb
}

func box(halfW, halfH float64) sexp.BoundingBox {
	return sexp.BoundingBox{
		Min: sexp.Position{X: -halfW, Y: -halfH},
		Max: sexp.Position{X: halfW, Y: halfH},
	}
}

var library = map[Class]map[string]Footprint{
	Resistor: {
		"0805": {
			Library: "Resistor_SMD",
			Name:    "R_0805_2012Metric",
			Pads: []Pad{
				{Number: 1, Offset: sexp.Position{X: -0.9125}, Size: sexp.Size{Width: 1.025, Height: 1.4}, RoundRectRatio: 0.243902},
				{Number: 2, Offset: sexp.Position{X: 0.9125}, Size: sexp.Size{Width: 1.025, Height: 1.4}, RoundRectRatio: 0.243902},
			},
			Courtyard: box(1.68, 0.95),
			Body:      box(1, 0.625),
		},
	},
	Capacitor: {
		"0805": {
			Library: "Capacitor_SMD",
			Name:    "C_0805_2012Metric",
			Pads: []Pad{
				{Number: 1, Offset: sexp.Position{X: -0.95}, Size: sexp.Size{Width: 1, Height: 1.45}, RoundRectRatio: 0.25},
				{Number: 2, Offset: sexp.Position{X: 0.95}, Size: sexp.Size{Width: 1, Height: 1.45}, RoundRectRatio: 0.25},
			},
			Courtyard: box(1.7, 0.98),
			Body:      box(1, 0.625),
		},
	},
}

// Lookup returns the land pattern for a part class in the named package.
// An empty package selects DefaultPackage. The returned value is a copy.
func Lookup(class Class, pkg string) (*Footprint, error) {
	if pkg == "" {
		pkg = DefaultPackage
	}
	byPkg, ok := library[class]
	if !ok {
		return nil, fmt.Errorf("%w: no %s footprints", ErrUnknownPackage, class)
	}
	fp, ok := byPkg[pkg]
	if !ok {
		return nil, fmt.Errorf("%w: %s %q", ErrUnknownPackage, class, pkg)
	}
	fp.Pads = append([]Pad(nil), fp.Pads...)
	return &fp, nil
}

// ValidRotation reports whether deg is one of the placement rotations the
// generator accepts: 0, 90, 180 or 270.
func ValidRotation(deg float64) bool {
	switch deg {
	case 0, 90, 180, 270:
		return true
	}
	return false
}
