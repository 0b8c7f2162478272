// Package plot draws the placement of a committed board: courtyards, pad
// positions coloured by net and ratsnest lines between pads of each net.
package plot

import (
	"fmt"
	"image/color"
	"io"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/OpenTraceLab/pcbgen/pkg/design"
)

// Options controls the plot size. Zero fields take the defaults.
type Options struct {
	Width  vg.Length
	Height vg.Length
	Title  string
}

const (
	DefaultWidth  = 16 * vg.Centimeter
	DefaultHeight = 12 * vg.Centimeter
)

var unconnected = color.Gray{Y: 128}

// Formats lists the file extensions Save understands.
var Formats = []string{"png", "svg", "pdf"}

// New builds the placement plot of b.
func New(b *design.Board, opts Options) (*plot.Plot, error) {
	if !b.Created() {
		return nil, fmt.Errorf("plot: %w: %s", design.ErrNotCreated, b.Name())
	}

	p := plot.New()
	p.Title.Text = opts.Title
	if p.Title.Text == "" {
		p.Title.Text = b.Name()
	}
	p.X.Label.Text = "x (mm)"
	p.Y.Label.Text = "y (mm)"
	// board Y grows downwards
	p.Y.Scale = plot.InvertedScale{Normalizer: plot.LinearScale{}}
	p.Add(plotter.NewGrid())

	for _, c := range b.Components() {
		bb := c.Bounds()
		outline, err := plotter.NewPolygon(plotter.XYs{
			{X: bb.Min.X, Y: bb.Min.Y},
			{X: bb.Max.X, Y: bb.Min.Y},
			{X: bb.Max.X, Y: bb.Max.Y},
			{X: bb.Min.X, Y: bb.Max.Y},
		})
		if err != nil {
			return nil, fmt.Errorf("plot: %s outline: %w", c.Reference(), err)
		}
		outline.Color = nil
		outline.LineStyle.Width = vg.Points(0.5)
		outline.LineStyle.Color = color.Gray{Y: 96}
		p.Add(outline)

		labels, err := plotter.NewLabels(plotter.XYLabels{
			XYs:    plotter.XYs{{X: bb.Min.X, Y: bb.Min.Y}},
			Labels: []string{c.Reference()},
		})
		if err != nil {
			return nil, fmt.Errorf("plot: %s label: %w", c.Reference(), err)
		}
		p.Add(labels)
	}

	for i, n := range b.Nets() {
		pts := make(plotter.XYs, 0, n.Len())
		for _, m := range n.Members() {
			pos, ok := m.Component().PadPosition(m.Number())
			if !ok {
				continue
			}
			pts = append(pts, plotter.XY{X: pos.X, Y: pos.Y})
		}

		rats, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("plot: net %s: %w", n.Name(), err)
		}
		rats.LineStyle.Color = plotutil.Color(i)
		rats.LineStyle.Dashes = []vg.Length{vg.Points(3), vg.Points(2)}

		pads, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, fmt.Errorf("plot: net %s: %w", n.Name(), err)
		}
		pads.GlyphStyle.Color = plotutil.Color(i)
		pads.GlyphStyle.Shape = draw.CircleGlyph{}
		pads.GlyphStyle.Radius = vg.Points(3)

		p.Add(rats, pads)
		p.Legend.Add(n.Name(), pads)
	}

	if pts := unconnectedPads(b); len(pts) > 0 {
		free, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, fmt.Errorf("plot: unconnected pads: %w", err)
		}
		free.GlyphStyle.Color = unconnected
		free.GlyphStyle.Shape = draw.CrossGlyph{}
		p.Add(free)
		p.Legend.Add("unconnected", free)
	}

	p.Legend.Top = true
	return p, nil
}

func unconnectedPads(b *design.Board) plotter.XYs {
	var pts plotter.XYs
	for _, c := range b.Components() {
		for _, pin := range c.Pins() {
			if _, ok := b.NetOf(pin); ok {
				continue
			}
			if pos, ok := c.PadPosition(pin.Number()); ok {
				pts = append(pts, plotter.XY{X: pos.X, Y: pos.Y})
			}
		}
	}
	return pts
}

func (o Options) size() (vg.Length, vg.Length) {
	w, h := o.Width, o.Height
	if w == 0 {
		w = DefaultWidth
	}
	if h == 0 {
		h = DefaultHeight
	}
	return w, h
}

// Save writes the plot to path; the format follows the file extension.
func Save(b *design.Board, path string, opts Options) error {
	p, err := New(b, opts)
	if err != nil {
		return err
	}
	w, h := opts.size()
	if err := p.Save(w, h, path); err != nil {
		return fmt.Errorf("plot: save %s: %w", filepath.Base(path), err)
	}
	return nil
}

// WriteTo renders the plot in format ("png", "svg", "pdf") to out.
func WriteTo(out io.Writer, b *design.Board, format string, opts Options) error {
	p, err := New(b, opts)
	if err != nil {
		return err
	}
	w, h := opts.size()
	wt, err := p.WriterTo(w, h, strings.ToLower(format))
	if err != nil {
		return fmt.Errorf("plot: %w", err)
	}
	if _, err := wt.WriteTo(out); err != nil {
		return fmt.Errorf("plot: %w", err)
	}
	return nil
}
