package script

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// File is a parsed board definition.
//
//	board "power-supply-test"
//	resistor r1 value "10kohm" at (100, 100)
//	capacitor c1 value "100uF" voltage "25V" at (110, 105, 90)
//	net vin = r1.1, c1.1
//	create r1, c1
type File struct {
	Pos lexer.Position

	Board      *BoardDecl   `parser:"@@"`
	Statements []*Statement `parser:"@@*"`
}

// BoardDecl names the board.
type BoardDecl struct {
	Pos lexer.Position

	Name string `parser:"'board' @String"`
}

// Statement is one component declaration, net declaration or create.
type Statement struct {
	Pos lexer.Position

	Component *ComponentDecl `parser:"  @@"`
	Net       *NetDecl       `parser:"| @@"`
	Create    *CreateStmt    `parser:"| @@"`
}

// ComponentDecl declares a component bound to a script variable.
type ComponentDecl struct {
	Pos lexer.Position

	Kind       string      `parser:"@('resistor' | 'capacitor')"`
	Name       string      `parser:"@Ident"`
	Properties []*Property `parser:"@@*"`
}

// Property is one attribute of a component declaration.
type Property struct {
	Pos lexer.Position

	Value     *string    `parser:"  'value' @String"`
	Voltage   *string    `parser:"| 'voltage' @String"`
	Reference *string    `parser:"| 'ref' @String"`
	Package   *string    `parser:"| 'package' @String"`
	At        *Placement `parser:"| 'at' @@"`
}

// Placement is "(x, y)" or "(x, y, rotation)" in millimetres and degrees.
type Placement struct {
	X        float64 `parser:"'(' @Number"`
	Y        float64 `parser:"',' @Number"`
	Rotation float64 `parser:"( ',' @Number )? ')'"`
}

// NetDecl joins pins to a named net. The name is an identifier or a quoted
// string for names such as "+5V". A declaration without pins only names the net.
type NetDecl struct {
	Pos lexer.Position

	Name string    `parser:"'net' ( @Ident | @String )"`
	Pins []*PinRef `parser:"( '=' @@ ( ',' @@ )* )?"`
}

// PinRef is "variable.pin".
type PinRef struct {
	Pos lexer.Position

	Component string `parser:"@Ident"`
	Pin       int    `parser:"'.' @Number"`
}

// CreateStmt commits the board with the listed components.
type CreateStmt struct {
	Pos lexer.Position

	Components []string `parser:"'create' @Ident ( ',' @Ident )*"`
}
