package kicadsexp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// A Decoder reads top-level S-expressions from a stream one at a time.
// Quoted strings decode to a Symbol holding the unquoted text. Lines
// starting with '#' outside a string are comments.
type Decoder struct {
	r    *bufio.Reader
	line int
}

// NewDecoder returns a decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r), line: 1}
}

// Line reports the current line, counting from 1.
func (d *Decoder) Line() int { return d.line }

// Decode returns the next top-level expression, or io.EOF once the input
// holds nothing but whitespace and comments.
func (d *Decoder) Decode() (Sexp, error) {
	// open lists, innermost last, with the line each was opened on
	var stack []*List
	var opened []int

	for {
		ch, err := d.skipSpace()
		if errors.Is(err, io.EOF) {
			if len(stack) > 0 {
				return nil, d.errorf(opened[len(opened)-1], "unexpected EOF in list opened here")
			}
			return nil, io.EOF
		}
		if err != nil {
			return nil, err
		}

		var atom Sexp
		switch ch {
		case '(':
			stack = append(stack, &List{})
			opened = append(opened, d.line)
			continue
		case ')':
			if len(stack) == 0 {
				return nil, d.errorf(d.line, "unexpected ')'")
			}
			atom = stack[len(stack)-1]
			stack, opened = stack[:len(stack)-1], opened[:len(opened)-1]
		case '"':
			s, err := d.readQuoted()
			if err != nil {
				return nil, err
			}
			atom = Symbol(s)
		default:
			if err := d.r.UnreadRune(); err != nil {
				return nil, err
			}
			s, err := d.readBare()
			if err != nil {
				return nil, err
			}
			atom = Symbol(s)
		}

		if len(stack) == 0 {
			return atom, nil
		}
		top := stack[len(stack)-1]
		top.elements = append(top.elements, atom)
	}
}

func (d *Decoder) errorf(line int, format string, args ...any) error {
	return fmt.Errorf("kicadsexp: line %d: %s", line, fmt.Sprintf(format, args...))
}

func (d *Decoder) next() (rune, error) {
	ch, _, err := d.r.ReadRune()
	if err != nil {
		return 0, err
	}
	if ch == '\n' {
		d.line++
	}
	return ch, nil
}

// skipSpace consumes whitespace and comments and returns the first rune
// after them.
func (d *Decoder) skipSpace() (rune, error) {
	for {
		ch, err := d.next()
		if err != nil {
			return 0, err
		}
		switch {
		case unicode.IsSpace(ch):
		case ch == '#':
			if _, err := d.r.ReadString('\n'); err != nil {
				return 0, err
			}
			d.line++
		default:
			return ch, nil
		}
	}
}

// readQuoted reads the rest of a string whose opening quote was consumed.
func (d *Decoder) readQuoted() (string, error) {
	start := d.line
	var sb strings.Builder
	for {
		ch, err := d.next()
		if errors.Is(err, io.EOF) {
			return "", d.errorf(start, "unexpected EOF in string")
		}
		if err != nil {
			return "", err
		}

		switch ch {
		case '"':
			return sb.String(), nil
		case '\\':
			esc, err := d.next()
			if err != nil {
				return "", d.errorf(d.line, "unexpected EOF after backslash")
			}
			switch esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			default:
				sb.WriteRune(esc)
			}
		default:
			sb.WriteRune(ch)
		}
	}
}

// readBare reads an unquoted atom: a keyword, number or identifier.
func (d *Decoder) readBare() (string, error) {
	var sb strings.Builder
	for {
		ch, _, err := d.r.ReadRune()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		if unicode.IsSpace(ch) || ch == '(' || ch == ')' || ch == '"' {
			if err := d.r.UnreadRune(); err != nil {
				return "", err
			}
			break
		}
		sb.WriteRune(ch)
	}
	return sb.String(), nil
}
