package design

import (
	"fmt"
	"strings"

	"github.com/OpenTraceLab/pcbgen/pkg/footprint"
	"github.com/OpenTraceLab/pcbgen/pkg/kicad/sexp"
	"github.com/OpenTraceLab/pcbgen/pkg/units"
)

// Kind is the part family of a component.
type Kind string

const (
	Resistor  Kind = "resistor"
	Capacitor Kind = "capacitor"
)

// ParseKind maps a kind name ("resistor", "capacitor") to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case Resistor, Capacitor:
		return k, true
	}
	return "", false
}

// unit is the physical unit a component's value is expressed in.
func (k Kind) unit() units.Unit {
	switch k {
	case Resistor:
		return units.Ohm
	case Capacitor:
		return units.Farad
	}
	return units.None
}

// Placement is the board position of a component's origin in millimetres,
// with rotation in degrees.
type Placement struct {
	X        float64
	Y        float64
	Rotation float64
}

func (p Placement) origin() sexp.PositionAngle {
	return sexp.PositionAngle{
		Position: sexp.Position{X: p.X, Y: p.Y},
		Angle:    sexp.Angle(p.Rotation),
	}
}

// Options configures any component kind. Voltage is only meaningful for
// capacitors and is ignored for other kinds.
type Options struct {
	Value     string
	Voltage   string
	Reference string
	Package   string
	PCB       Placement
}

// ResistorOptions configures NewResistor.
type ResistorOptions struct {
	Value     string
	Reference string
	Package   string
	PCB       Placement
}

// CapacitorOptions configures NewCapacitor.
type CapacitorOptions struct {
	Value     string
	Voltage   string
	Reference string
	Package   string
	PCB       Placement
}

// Component is a placed part with a fixed, ordered pin table. It is
// immutable once constructed.
type Component struct {
	kind      Kind
	value     string
	quantity  units.Quantity
	voltage   string
	rating    units.Quantity
	reference string
	pkg       string
	placement Placement
	fp        *footprint.Footprint
}

// NewResistor constructs a two-pin resistor.
func NewResistor(opts ResistorOptions) (*Component, error) {
	return NewComponent(Resistor, Options{
		Value:     opts.Value,
		Reference: opts.Reference,
		Package:   opts.Package,
		PCB:       opts.PCB,
	})
}

// NewCapacitor constructs a two-pin capacitor.
func NewCapacitor(opts CapacitorOptions) (*Component, error) {
	return NewComponent(Capacitor, Options{
		Value:     opts.Value,
		Voltage:   opts.Voltage,
		Reference: opts.Reference,
		Package:   opts.Package,
		PCB:       opts.PCB,
	})
}

// NewComponent constructs a component of the given kind.
func NewComponent(kind Kind, opts Options) (*Component, error) {
	k, ok := ParseKind(string(kind))
	if !ok {
		return nil, fmt.Errorf("design: unknown component kind %q", kind)
	}
	kind = k

	ref := strings.TrimSpace(opts.Reference)
	if ref == "" {
		return nil, fmt.Errorf("%w: %s with value %q", ErrEmptyReference, kind, opts.Value)
	}

	q, err := units.ParseAs(opts.Value, kind.unit())
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s value %q: %w", ErrInvalidValue, kind, ref, opts.Value, err)
	}

	c := &Component{
		kind:      kind,
		value:     opts.Value,
		quantity:  q,
		reference: ref,
		placement: opts.PCB,
	}

	if kind == Capacitor && opts.Voltage != "" {
		v, err := units.ParseAs(opts.Voltage, units.Volt)
		if err != nil {
			return nil, fmt.Errorf("%w: %s voltage %q: %w", ErrInvalidValue, ref, opts.Voltage, err)
		}
		c.voltage = opts.Voltage
		c.rating = v
	}

	if !footprint.ValidRotation(opts.PCB.Rotation) {
		return nil, fmt.Errorf("%w: %s has %v", ErrInvalidRotation, ref, opts.PCB.Rotation)
	}

	c.pkg = opts.Package
	if c.pkg == "" {
		c.pkg = footprint.DefaultPackage
	}
	fp, err := footprint.Lookup(footprint.Class(kind), c.pkg)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnknownPackage, ref, err)
	}
	c.fp = fp

	return c, nil
}

// Kind returns the component's part family.
func (c *Component) Kind() Kind { return c.kind }

// Value returns the value as written, e.g. "10kohm".
func (c *Component) Value() string { return c.value }

// Quantity returns the parsed value in base units.
func (c *Component) Quantity() units.Quantity { return c.quantity }

// Voltage returns the voltage rating as written; empty when unset.
func (c *Component) Voltage() string { return c.voltage }

// Rating returns the parsed voltage rating.
func (c *Component) Rating() units.Quantity { return c.rating }

// Reference returns the reference designator, e.g. "R1".
func (c *Component) Reference() string { return c.reference }

// Package returns the package designation, e.g. "0805".
func (c *Component) Package() string { return c.pkg }

// Placement returns the component's board position.
func (c *Component) Placement() Placement { return c.placement }

// Footprint returns the land pattern used for the component.
func (c *Component) Footprint() *footprint.Footprint { return c.fp }

// PinCount returns the number of pins.
func (c *Component) PinCount() int { return c.fp.PinCount() }

// Pin returns a reference to pin n (1-based).
func (c *Component) Pin(n int) (PinRef, error) {
	if n < 1 || n > c.PinCount() {
		return PinRef{}, fmt.Errorf("%w: %s has pins 1..%d, got %d", ErrOutOfRangePin, c.reference, c.PinCount(), n)
	}
	return PinRef{component: c, number: n}, nil
}

// MustPin is like Pin but panics on an out-of-range pin number.
func (c *Component) MustPin(n int) PinRef {
	p, err := c.Pin(n)
	if err != nil {
		panic(err)
	}
	return p
}

// Pins returns references to every pin in pin order.
func (c *Component) Pins() []PinRef {
	pins := make([]PinRef, c.PinCount())
	for i := range pins {
		pins[i] = PinRef{component: c, number: i + 1}
	}
	return pins
}

// PadPosition returns the board position of pin n's pad.
func (c *Component) PadPosition(n int) (sexp.Position, bool) {
	return c.fp.PadPosition(c.placement.origin(), n)
}

// Bounds returns the component's courtyard in board coordinates.
func (c *Component) Bounds() sexp.BoundingBox {
	return c.fp.Bounds(c.placement.origin())
}

func (c *Component) String() string {
	return fmt.Sprintf("%s %s (%s)", c.kind, c.reference, c.value)
}

// PinRef identifies one pin of one component. Two PinRefs are equal when
// they name the same component instance and pin number. The zero value
// refers to no pin.
type PinRef struct {
	component *Component
	number    int
}

// Component returns the component the pin belongs to.
func (p PinRef) Component() *Component { return p.component }

// Number returns the 1-based pin number.
func (p PinRef) Number() int { return p.number }

// IsZero reports whether p is the zero PinRef.
func (p PinRef) IsZero() bool { return p.component == nil }

func (p PinRef) valid() bool {
	return p.component != nil && p.number >= 1 && p.number <= p.component.PinCount()
}

func (p PinRef) String() string {
	if p.component == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s.%d", p.component.reference, p.number)
}
