package kicadsexp

import (
	"bufio"
	"bytes"
	"io"
	"strings"
)

// Encoder writes S-expressions in the layout KiCad itself produces: a list
// whose elements are all atoms stays on one line, while nested lists start
// on their own line, indented one tab per level, and the closing paren of
// such a list sits on its own line.
type Encoder struct {
	w   *bufio.Writer
	err error
}

// NewEncoder returns an encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: bufio.NewWriter(w)}
}

// Encode writes s followed by a newline and flushes the writer.
func (e *Encoder) Encode(s Sexp) error {
	e.encode(s, 0)
	e.writeString("\n")
	if e.err != nil {
		return e.err
	}
	return e.w.Flush()
}

func (e *Encoder) encode(s Sexp, depth int) {
	lst, ok := s.(*List)
	if !ok {
		e.writeString(s.String())
		return
	}

	e.writeString("(")
	nested := false
	for i, elem := range lst.elements {
		if _, isList := elem.(*List); isList || nested {
			// atoms after a nested list also start on their own line
			nested = true
			e.writeString("\n")
			e.writeString(strings.Repeat("\t", depth+1))
			e.encode(elem, depth+1)
			continue
		}
		if i > 0 {
			e.writeString(" ")
		}
		e.encode(elem, depth+1)
	}
	if nested {
		e.writeString("\n")
		e.writeString(strings.Repeat("\t", depth))
	}
	e.writeString(")")
}

func (e *Encoder) writeString(s string) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.WriteString(s)
}

// Marshal encodes s into a byte slice.
func Marshal(s Sexp) ([]byte, error) {
	var buf bytes.Buffer
	if err := NewEncoder(&buf).Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
