// Package builder runs the definition pipeline: load and execute a board
// definition, write its artifacts, and record the build.
package builder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/OpenTraceLab/pcbgen/internal/shared"
	"github.com/OpenTraceLab/pcbgen/internal/store"
	"github.com/OpenTraceLab/pcbgen/pkg/design"
	"github.com/OpenTraceLab/pcbgen/pkg/kicad/pcb"
	"github.com/OpenTraceLab/pcbgen/pkg/netlist"
	"github.com/OpenTraceLab/pcbgen/pkg/plot"
	"github.com/OpenTraceLab/pcbgen/pkg/script"
)

// Format is an artifact kind, named by its file extension.
type Format string

const (
	FormatKiCadPCB Format = "kicad_pcb"
	FormatNet      Format = "net"
	FormatJSON     Format = "json"
	FormatPNG      Format = "png"
	FormatSVG      Format = "svg"
	FormatPDF      Format = "pdf"
)

// DefaultFormats are written when Options.Formats is empty.
var DefaultFormats = []Format{FormatKiCadPCB, FormatNet, FormatJSON}

var ErrUnknownFormat = errors.New("builder: unknown artifact format")

// ParseFormats validates format names, accepting a leading dot and
// comma-separated lists ("kicad_pcb,net").
func ParseFormats(names []string) ([]Format, error) {
	var formats []Format
	seen := make(map[Format]bool)
	for _, name := range names {
		for _, part := range strings.Split(name, ",") {
			f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(part)), "."))
			if f == "" {
				continue
			}
			switch f {
			case FormatKiCadPCB, FormatNet, FormatJSON, FormatPNG, FormatSVG, FormatPDF:
			default:
				return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, part)
			}
			if !seen[f] {
				seen[f] = true
				formats = append(formats, f)
			}
		}
	}
	return formats, nil
}

// Recorder stores finished builds. *store.BuildRepository implements it.
type Recorder interface {
	Create(ctx context.Context, b *store.Build) error
}

// Options configures a Builder. Zero values take defaults: the working
// directory, DefaultFormats, and no recording.
type Options struct {
	OutDir   string
	Formats  []Format
	PCB      pcb.WriteOptions
	Plot     plot.Options
	Recorder Recorder
	Logger   *log.Logger
}

// Builder turns definition files into artifacts.
type Builder struct {
	opts   Options
	logger *log.Logger
}

// New creates a builder.
func New(opts Options) *Builder {
	if len(opts.Formats) == 0 {
		opts.Formats = DefaultFormats
	}
	if opts.OutDir == "" {
		opts.OutDir = "."
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Builder{opts: opts, logger: logger}
}

// Artifact is one written file.
type Artifact struct {
	Format Format
	Path   string
}

// Result describes a finished build.
type Result struct {
	Source    string
	Board     *design.Board
	Artifacts []Artifact
	Duration  time.Duration
}

// Check loads and executes a definition without writing anything.
func Check(ctx context.Context, path string) (*script.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return script.Run(path)
}

// Build executes the definition at path and writes every configured format
// to the output directory as <board>.<format>.
func (b *Builder) Build(ctx context.Context, path string) (*Result, error) {
	start := time.Now()
	logger := shared.WithLogger(b.logger, "file", path)

	res, err := Check(ctx, path)
	if err != nil {
		return nil, err
	}
	board := res.Board
	logger = shared.WithLogger(logger, "board", board.Name())
	logger.Debug("definition executed", "components", len(board.Components()), "nets", len(board.Nets()))

	if err := os.MkdirAll(b.opts.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("builder: %w", err)
	}

	out := &Result{Source: path, Board: board}
	base := filepath.Join(b.opts.OutDir, FileName(board.Name()))
	for _, format := range b.opts.Formats {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		target := base + "." + string(format)
		if err := b.write(format, target, res); err != nil {
			return nil, fmt.Errorf("builder: %s: %w", filepath.Base(target), err)
		}
		logger.Debug("artifact written", "format", format, "path", target)
		out.Artifacts = append(out.Artifacts, Artifact{Format: format, Path: target})
	}
	out.Duration = time.Since(start)

	if b.opts.Recorder != nil {
		rec := &store.Build{
			Board:      board.Name(),
			Source:     path,
			Components: len(board.Components()),
			Nets:       len(board.Nets()),
			Duration:   out.Duration,
		}
		for _, a := range out.Artifacts {
			rec.Artifacts = append(rec.Artifacts, a.Path)
		}
		if err := b.opts.Recorder.Create(ctx, rec); err != nil {
			return nil, fmt.Errorf("builder: record build: %w", err)
		}
	}

	logger.Info("board built", "artifacts", len(out.Artifacts), "took", out.Duration.Round(time.Millisecond))
	return out, nil
}

// BuildAll builds every path, continuing past failures. The returned error
// joins all failures.
func (b *Builder) BuildAll(ctx context.Context, paths []string) ([]*Result, error) {
	var (
		results []*Result
		errs    []error
	)
	for _, path := range paths {
		res, err := b.Build(ctx, path)
		if err != nil {
			if ctx.Err() != nil {
				return results, ctx.Err()
			}
			b.logger.Error("build failed", "file", path, "err", err)
			errs = append(errs, err)
			continue
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}

func (b *Builder) write(format Format, path string, res *script.Result) error {
	switch format {
	case FormatKiCadPCB:
		return pcb.WriteFile(path, res.Board, b.opts.PCB)
	case FormatNet, FormatJSON:
		nl, err := netlist.FromBoard(res.Board)
		if err != nil {
			return err
		}
		nl.Source = res.Source
		export := nl.ExportKiCad
		if format == FormatJSON {
			export = nl.ExportJSON
		}
		data, err := export()
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0o644)
	case FormatPNG, FormatSVG, FormatPDF:
		return plot.Save(res.Board, path, b.opts.Plot)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// FileName turns a board name into a file name stem.
func FileName(board string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '-'
		}
		return r
	}, board)
}
