package pcb

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/OpenTraceLab/pcbgen/pkg/design"
	"github.com/OpenTraceLab/pcbgen/pkg/footprint"
)

const (
	// DefaultVersion is the KiCad 8 board file format.
	DefaultVersion   = 20240108
	DefaultGenerator = "pcbgen"
	DefaultThickness = 1.6
	// DefaultMargin is the clearance between the courtyards and the
	// Edge.Cuts outline.
	DefaultMargin = 2.0
)

// WriteOptions controls board generation. Zero fields take the defaults.
type WriteOptions struct {
	Version          int
	Generator        string
	GeneratorVersion string
	Thickness        float64
	Margin           float64
	TitleBlock       TitleBlock
}

func (o WriteOptions) withDefaults() WriteOptions {
	if o.Version == 0 {
		o.Version = DefaultVersion
	}
	if o.Generator == "" {
		o.Generator = DefaultGenerator
	}
	if o.Thickness == 0 {
		o.Thickness = DefaultThickness
	}
	if o.Margin == 0 {
		o.Margin = DefaultMargin
	}
	return o
}

// namespace seeds the name-based UUIDs of generated objects so that
// regenerating an unchanged board yields an identical file.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/OpenTraceLab/pcbgen"))

func stableUUID(parts ...string) UUID {
	name := strings.Join(parts, "/")
	return UUID(uuid.NewSHA1(namespace, []byte(name)).String())
}

// FromDesign converts a committed design board into a KiCad board model.
// Nets are numbered from 1 in declaration order after the unconnected net 0;
// footprints follow Create order.
func FromDesign(b *design.Board, opts WriteOptions) (*Board, error) {
	if !b.Created() {
		return nil, fmt.Errorf("pcb: %w: %s", design.ErrNotCreated, b.Name())
	}
	opts = opts.withDefaults()

	board := &Board{
		Version:          opts.Version,
		Generator:        opts.Generator,
		GeneratorVersion: opts.GeneratorVersion,
		General:          General{Thickness: opts.Thickness},
		Paper:            "A4",
		TitleBlock:       opts.TitleBlock,
		Layers:           StandardLayers(),
	}
	if board.TitleBlock.Title == "" {
		board.TitleBlock.Title = b.Name()
	}

	board.Nets = append(board.Nets, Net{Number: 0, Name: ""})
	for i, n := range b.Nets() {
		board.Nets = append(board.Nets, Net{Number: i + 1, Name: n.Name()})
	}
	netMap := NewNetMap(board.Nets)

	outline := NewBoundingBox()
	for _, c := range b.Components() {
		fp := footprintFor(b, c, netMap)
		board.Footprints = append(board.Footprints, fp)
		outline.ExpandBox(c.Bounds())
	}

	if !outline.IsEmpty() {
		outline = outline.Inflate(opts.Margin)
		board.Graphics = append(board.Graphics, Graphic{
			Type:   "rect",
			Layer:  "Edge.Cuts",
			Start:  outline.Min,
			End:    outline.Max,
			Stroke: Stroke{Width: 0.05, Type: "default"},
			UUID:   stableUUID(b.Name(), "outline"),
		})
	}

	return board, nil
}

func footprintFor(b *design.Board, c *design.Component, nets *NetMap) Footprint {
	land := c.Footprint()
	place := c.Placement()
	ref := c.Reference()

	fp := Footprint{
		Library:   land.Library,
		Name:      land.Name,
		Layer:     "F.Cu",
		UUID:      stableUUID(b.Name(), ref),
		Position:  PositionAngle{Position: Position{X: place.X, Y: place.Y}, Angle: Angle(place.Rotation)},
		Reference: ref,
		Value:     c.Value(),
		Properties: map[string]string{
			"Reference": ref,
			"Value":     c.Value(),
			"Footprint": land.ID(),
		},
		Attr: "smd",
	}
	if c.Voltage() != "" {
		fp.Properties["Voltage"] = c.Voltage()
	}

	fp.Graphics = []Graphic{
		{
			Type:   "rect",
			Layer:  "F.CrtYd",
			Start:  land.Courtyard.Min,
			End:    land.Courtyard.Max,
			Stroke: Stroke{Width: 0.05, Type: "solid"},
			UUID:   stableUUID(b.Name(), ref, "courtyard"),
		},
		{
			Type:   "rect",
			Layer:  "F.Fab",
			Start:  land.Body.Min,
			End:    land.Body.Max,
			Stroke: Stroke{Width: 0.1, Type: "solid"},
			UUID:   stableUUID(b.Name(), ref, "body"),
		},
	}

	for _, p := range land.Pads {
		pad := padFor(p, place.Rotation)
		pad.UUID = stableUUID(b.Name(), ref, pad.Number)
		if n, ok := b.NetOf(c.MustPin(p.Number)); ok {
			pad.Net, _ = nets.GetByName(n.Name())
		}
		fp.Pads = append(fp.Pads, pad)
	}

	return fp
}

func padFor(p footprint.Pad, rotation float64) Pad {
	return Pad{
		Number:         fmt.Sprint(p.Number),
		Type:           "smd",
		Shape:          "roundrect",
		Position:       PositionAngle{Position: p.Offset, Angle: Angle(rotation)},
		Size:           p.Size,
		Layers:         LayerSet{"F.Cu", "F.Paste", "F.Mask"},
		RoundRectRatio: p.RoundRectRatio,
	}
}
