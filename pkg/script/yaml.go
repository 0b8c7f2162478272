package script

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"gopkg.in/yaml.v3"
)

// Definition is the YAML form of a board definition.
//
//	board: power-supply-test
//	components:
//	  - {kind: resistor, name: r1, value: 10kohm, pcb: {x: 100, y: 100}}
//	nets:
//	  - {name: vin, pins: [r1.1, c1.1]}
//	create: [r1, c1]
type Definition struct {
	Board      string         `yaml:"board"`
	Components []ComponentDef `yaml:"components"`
	Nets       []NetDef       `yaml:"nets"`
	Create     []string       `yaml:"create"`
}

// ComponentDef declares one component. Name is the variable pins refer to;
// Reference defaults to the upper-cased name.
type ComponentDef struct {
	Kind      string        `yaml:"kind"`
	Name      string        `yaml:"name"`
	Reference string        `yaml:"reference,omitempty"`
	Value     string        `yaml:"value"`
	Voltage   string        `yaml:"voltage,omitempty"`
	Package   string        `yaml:"package,omitempty"`
	PCB       *PlacementDef `yaml:"pcb,omitempty"`
}

// PlacementDef is a component position in millimetres and degrees.
type PlacementDef struct {
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	Rotation float64 `yaml:"rotation,omitempty"`
}

// NetDef joins "variable.pin" references to a named net.
type NetDef struct {
	Name string   `yaml:"name"`
	Pins []string `yaml:"pins"`
}

// ParseYAML decodes a YAML definition. Unknown keys are errors.
func ParseYAML(filename string, r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var def Definition
	if err := dec.Decode(&def); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("script: %s: empty definition", filename)
		}
		return nil, fmt.Errorf("script: %s: %w", filename, err)
	}

	return def.File(filename)
}

// File converts the definition to the same syntax tree the board
// language produces. Positions name the YAML entry, e.g. "nets[2]".
func (d *Definition) File(filename string) (*File, error) {
	at := func(format string, args ...any) lexer.Position {
		return lexer.Position{Filename: filename + " " + fmt.Sprintf(format, args...)}
	}

	f := &File{
		Pos:   lexer.Position{Filename: filename},
		Board: &BoardDecl{Pos: at("board"), Name: d.Board},
	}

	for i, c := range d.Components {
		decl := &ComponentDecl{Pos: at("components[%d]", i), Kind: c.Kind, Name: c.Name}
		if c.Value != "" {
			decl.Properties = append(decl.Properties, &Property{Pos: decl.Pos, Value: &c.Value})
		}
		if c.Voltage != "" {
			decl.Properties = append(decl.Properties, &Property{Pos: decl.Pos, Voltage: &c.Voltage})
		}
		if c.Reference != "" {
			decl.Properties = append(decl.Properties, &Property{Pos: decl.Pos, Reference: &c.Reference})
		}
		if c.Package != "" {
			decl.Properties = append(decl.Properties, &Property{Pos: decl.Pos, Package: &c.Package})
		}
		if c.PCB != nil {
			decl.Properties = append(decl.Properties, &Property{
				Pos: decl.Pos,
				At:  &Placement{X: c.PCB.X, Y: c.PCB.Y, Rotation: c.PCB.Rotation},
			})
		}
		f.Statements = append(f.Statements, &Statement{Pos: decl.Pos, Component: decl})
	}

	for i, n := range d.Nets {
		decl := &NetDecl{Pos: at("nets[%d]", i), Name: n.Name}
		for _, s := range n.Pins {
			pin, err := parsePinRef(s)
			if err != nil {
				return nil, fmt.Errorf("script: %s: %w", where(decl.Pos), err)
			}
			pin.Pos = decl.Pos
			decl.Pins = append(decl.Pins, pin)
		}
		f.Statements = append(f.Statements, &Statement{Pos: decl.Pos, Net: decl})
	}

	if len(d.Create) > 0 {
		pos := at("create")
		f.Statements = append(f.Statements, &Statement{Pos: pos, Create: &CreateStmt{Pos: pos, Components: d.Create}})
	}

	return f, nil
}

// parsePinRef splits "r1.2" into variable and pin number.
func parsePinRef(s string) (*PinRef, error) {
	i := strings.LastIndexByte(s, '.')
	if i <= 0 || i == len(s)-1 {
		return nil, fmt.Errorf("%w: %q", ErrBadPinRef, s)
	}
	n, err := strconv.Atoi(s[i+1:])
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrBadPinRef, s)
	}
	return &PinRef{Component: strings.TrimSpace(s[:i]), Pin: n}, nil
}
