// Package script reads board definitions, written either in the board
// language (.board) or as YAML (.yaml, .yml), and executes them against
// pkg/design.
package script

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnknownFormat is returned for files whose extension is not a
// definition format.
var ErrUnknownFormat = errors.New("script: unknown definition format")

// Extensions lists the file extensions Load understands.
var Extensions = []string{".board", ".yaml", ".yml"}

var defaultParser *Parser

func init() {
	p, err := NewParser()
	if err != nil {
		panic(err)
	}
	defaultParser = p
}

// IsDefinition reports whether path has a definition extension.
func IsDefinition(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// ParseString parses board language source.
func ParseString(filename, src string) (*File, error) {
	return defaultParser.ParseString(filename, src)
}

// Load parses a definition file, picking the format by extension.
func Load(path string) (*File, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".board":
		return defaultParser.ParseFile(path)
	case ".yaml", ".yml":
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("script: failed to open file: %w", err)
		}
		defer file.Close()
		return ParseYAML(path, file)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, filepath.Base(path))
	}
}

// Run loads and executes a definition file.
func Run(path string) (*Result, error) {
	f, err := Load(path)
	if err != nil {
		return nil, err
	}
	return f.Exec()
}
