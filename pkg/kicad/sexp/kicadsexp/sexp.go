// Package kicadsexp provides a lightweight streaming S-expression reader and
// writer for KiCad files (.kicad_pcb, .net).
package kicadsexp

import (
	"errors"
	"io"
	"math"
	"strconv"
	"strings"
)

// Sexp represents an S-expression node.
// It can be either a leaf (atom) or a list.
type Sexp interface {
	// IsLeaf returns true if this is an atom (not a list)
	IsLeaf() bool

	// LeafCount returns the number of elements in a list (1 for atoms)
	LeafCount() int

	// Head returns the first element of a list (the atom itself for atoms)
	Head() Sexp

	// Tail returns the rest of the list after the first element (nil for atoms)
	Tail() Sexp

	// String returns the string representation
	String() string
}

// Symbol is an unquoted atom: keywords, numbers and identifiers.
// The parser also folds quoted strings into Symbol with the quotes removed.
type Symbol string

func (s Symbol) IsLeaf() bool   { return true }
func (s Symbol) LeafCount() int { return 1 }
func (s Symbol) Head() Sexp     { return s }
func (s Symbol) Tail() Sexp     { return nil }
func (s Symbol) String() string { return string(s) }

// Quoted is an atom that the encoder always writes as a quoted string.
// Reading it back yields a Symbol holding the unquoted text.
type Quoted string

func (q Quoted) IsLeaf() bool   { return true }
func (q Quoted) LeafCount() int { return 1 }
func (q Quoted) Head() Sexp     { return q }
func (q Quoted) Tail() Sexp     { return nil }
func (q Quoted) String() string { return quote(string(q)) }

// List represents a list of S-expressions
type List struct {
	elements []Sexp
}

func (l *List) IsLeaf() bool { return false }

func (l *List) LeafCount() int {
	return len(l.elements)
}

func (l *List) Head() Sexp {
	if len(l.elements) == 0 {
		return nil
	}
	return l.elements[0]
}

func (l *List) Tail() Sexp {
	if len(l.elements) <= 1 {
		return nil
	}
	return &List{elements: l.elements[1:]}
}

func (l *List) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, elem := range l.elements {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(elem.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// Get returns the element at the given index
func (l *List) Get(index int) Sexp {
	if index < 0 || index >= len(l.elements) {
		return nil
	}
	return l.elements[index]
}

// Len returns the number of elements in the list
func (l *List) Len() int {
	return len(l.elements)
}

// Items returns the elements of the list. The slice is shared with the list.
func (l *List) Items() []Sexp {
	return l.elements
}

// Append adds elements to the end of the list and returns the list.
// Nil elements are skipped so optional nodes can be passed unconditionally.
func (l *List) Append(items ...Sexp) *List {
	for _, item := range items {
		if item == nil {
			continue
		}
		if lst, ok := item.(*List); ok && lst == nil {
			continue
		}
		l.elements = append(l.elements, item)
	}
	return l
}

// Node builds a list whose head is the keyword sym, e.g. Node("at", Num(1), Num(2)).
func Node(sym string, items ...Sexp) *List {
	l := &List{elements: make([]Sexp, 0, len(items)+1)}
	l.elements = append(l.elements, Symbol(sym))
	return l.Append(items...)
}

// L builds a list from arbitrary elements.
func L(items ...Sexp) *List {
	return (&List{}).Append(items...)
}

// Q returns a quoted string atom.
func Q(s string) Quoted {
	return Quoted(s)
}

// Num formats a float the way KiCad writes coordinates: shortest
// representation, at most six decimals, never "-0".
func Num(v float64) Symbol {
	v = math.Round(v*1e6) / 1e6
	if v == 0 {
		v = 0
	}
	return Symbol(strconv.FormatFloat(v, 'f', -1, 64))
}

// Int formats an integer atom.
func Int(v int) Symbol {
	return Symbol(strconv.Itoa(v))
}

// Parse reads every top-level S-expression from r.
func Parse(r io.Reader) ([]Sexp, error) {
	var exprs []Sexp
	dec := NewDecoder(r)
	for {
		expr, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			return exprs, nil
		}
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
	}
}

// ParseString parses S-expressions from a string (convenience function)
func ParseString(s string) ([]Sexp, error) {
	return Parse(strings.NewReader(s))
}

func quote(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
