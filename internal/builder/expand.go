package builder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/OpenTraceLab/pcbgen/pkg/script"
)

var ErrNoMatch = errors.New("builder: no definition files match")

// Expand resolves command-line arguments to definition files. Arguments may
// be files, directories (searched recursively) or doublestar patterns such
// as "boards/**/*.board". Files are returned sorted and without duplicates.
func Expand(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		path = filepath.Clean(path)
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, arg := range args {
		pattern := arg
		if info, err := os.Stat(arg); err == nil {
			if !info.IsDir() {
				add(arg)
				continue
			}
			pattern = filepath.Join(arg, "**", "*")
		} else if !doublestar.ValidatePattern(filepath.ToSlash(arg)) {
			return nil, fmt.Errorf("builder: invalid pattern %q", arg)
		}

		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("builder: %s: %w", arg, err)
		}

		n := 0
		for _, m := range matches {
			if script.IsDefinition(m) {
				add(m)
				n++
			}
		}
		if n == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNoMatch, arg)
		}
	}

	sort.Strings(files)
	return files, nil
}
