package script

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/OpenTraceLab/pcbgen/pkg/design"
)

var (
	ErrRedeclared        = errors.New("script: variable already declared")
	ErrUndefined         = errors.New("script: undefined component")
	ErrMissingCreate     = errors.New("script: definition never creates the board")
	ErrBadPinRef         = errors.New("script: pin reference must be variable.pin")
	ErrDuplicateProperty = errors.New("script: property given twice")
)

// Result is an executed definition.
type Result struct {
	Source     string
	Board      *design.Board
	Components map[string]*design.Component // by script variable
}

// Exec runs the definition's statements in order against a new board.
// Errors from pkg/design are wrapped with the statement position and keep
// their sentinel, so errors.Is(err, design.ErrDanglingNetMember) works.
func (f *File) Exec() (*Result, error) {
	board, err := design.NewBoard(f.Board.Name)
	if err != nil {
		return nil, fmt.Errorf("script: %s: %w", where(f.Board.Pos), err)
	}

	res := &Result{
		Source:     f.Pos.Filename,
		Board:      board,
		Components: make(map[string]*design.Component),
	}

	created := false
	for _, st := range f.Statements {
		switch {
		case st.Component != nil:
			err = res.declare(st.Component)
		case st.Net != nil:
			err = res.connect(st.Net)
		case st.Create != nil:
			err = res.create(st.Create)
			created = err == nil
		}
		if err != nil {
			return nil, err
		}
	}

	if !created {
		return nil, fmt.Errorf("%w: %s", ErrMissingCreate, board.Name())
	}
	return res, nil
}

func (r *Result) declare(decl *ComponentDecl) error {
	if _, exists := r.Components[decl.Name]; exists {
		return fmt.Errorf("%s: %w: %s", where(decl.Pos), ErrRedeclared, decl.Name)
	}

	kind, ok := design.ParseKind(decl.Kind)
	if !ok {
		return fmt.Errorf("script: %s: unknown component kind %q", where(decl.Pos), decl.Kind)
	}

	opts := design.Options{Reference: strings.ToUpper(decl.Name)}
	seen := make(map[string]bool)
	for _, p := range decl.Properties {
		name := p.name()
		if seen[name] {
			return fmt.Errorf("%s: %w: %s", where(p.Pos), ErrDuplicateProperty, name)
		}
		seen[name] = true

		switch {
		case p.Value != nil:
			opts.Value = *p.Value
		case p.Voltage != nil:
			opts.Voltage = *p.Voltage
		case p.Reference != nil:
			opts.Reference = *p.Reference
		case p.Package != nil:
			opts.Package = *p.Package
		case p.At != nil:
			opts.PCB = design.Placement{X: p.At.X, Y: p.At.Y, Rotation: p.At.Rotation}
		}
	}

	c, err := design.NewComponent(kind, opts)
	if err != nil {
		return fmt.Errorf("script: %s: %w", where(decl.Pos), err)
	}
	r.Components[decl.Name] = c
	return nil
}

func (r *Result) connect(decl *NetDecl) error {
	pins := make([]design.PinRef, 0, len(decl.Pins))
	for _, ref := range decl.Pins {
		c, err := r.lookup(ref.Pos, ref.Component)
		if err != nil {
			return err
		}
		pin, err := c.Pin(ref.Pin)
		if err != nil {
			return fmt.Errorf("script: %s: %s.%d: %w", where(ref.Pos), ref.Component, ref.Pin, err)
		}
		pins = append(pins, pin)
	}

	if err := r.Board.Named(decl.Name).Net(pins...); err != nil {
		return fmt.Errorf("script: %s: net %s: %w", where(decl.Pos), decl.Name, err)
	}
	return nil
}

func (r *Result) create(stmt *CreateStmt) error {
	comps := make([]*design.Component, 0, len(stmt.Components))
	for _, name := range stmt.Components {
		c, err := r.lookup(stmt.Pos, name)
		if err != nil {
			return err
		}
		comps = append(comps, c)
	}

	if err := r.Board.Create(comps...); err != nil {
		return fmt.Errorf("script: %s: %w", where(stmt.Pos), err)
	}
	return nil
}

func (r *Result) lookup(pos lexer.Position, name string) (*design.Component, error) {
	c, ok := r.Components[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w: %s", where(pos), ErrUndefined, name)
	}
	return c, nil
}

func (p *Property) name() string {
	switch {
	case p.Value != nil:
		return "value"
	case p.Voltage != nil:
		return "voltage"
	case p.Reference != nil:
		return "ref"
	case p.Package != nil:
		return "package"
	default:
		return "at"
	}
}

// where formats a position. YAML positions carry only a filename and an
// entry path, so line and column are left out for them.
func where(pos lexer.Position) string {
	if pos.Line == 0 {
		return pos.Filename
	}
	return pos.String()
}
