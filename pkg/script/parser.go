package script

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/participle/v2"
)

// Parser parses board definition files.
type Parser struct {
	parser *participle.Parser[File]
}

// NewParser creates a new board definition parser.
func NewParser() (*Parser, error) {
	parser, err := participle.Build[File](
		participle.Lexer(BoardLexer),
		participle.Elide("Comment", "Whitespace"),
		participle.Unquote("String"),
		participle.UseLookahead(2),
	)
	if err != nil {
		return nil, fmt.Errorf("script: failed to build parser: %w", err)
	}

	return &Parser{parser: parser}, nil
}

// Parse parses a definition from a reader. filename is used in positions.
func (p *Parser) Parse(filename string, r io.Reader) (*File, error) {
	f, err := p.parser.Parse(filename, r)
	if err != nil {
		return nil, fmt.Errorf("script: parse error: %w", err)
	}
	return f, nil
}

// ParseString parses a definition held in a string.
func (p *Parser) ParseString(filename, input string) (*File, error) {
	f, err := p.parser.ParseString(filename, input)
	if err != nil {
		return nil, fmt.Errorf("script: parse error: %w", err)
	}
	return f, nil
}

// ParseFile parses a definition file from disk.
func (p *Parser) ParseFile(filename string) (*File, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("script: failed to open file: %w", err)
	}
	defer file.Close()

	return p.Parse(filename, file)
}
