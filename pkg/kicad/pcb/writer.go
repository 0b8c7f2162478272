package pcb

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/OpenTraceLab/pcbgen/pkg/design"
	"github.com/OpenTraceLab/pcbgen/pkg/kicad/sexp"
	"github.com/OpenTraceLab/pcbgen/pkg/kicad/sexp/kicadsexp"
)

// property text placement relative to the footprint origin
var propertyLayout = map[string]struct {
	offset Position
	layer  string
	hidden bool
}{
	"Reference": {Position{Y: -1.65}, "F.SilkS", false},
	"Value":     {Position{Y: 1.65}, "F.Fab", false},
	"Footprint": {Position{}, "F.Fab", true},
	"Voltage":   {Position{}, "F.Fab", true},
}

// property order in the written file
var propertyOrder = []string{"Reference", "Value", "Footprint", "Voltage"}

// Encode renders the board as a (kicad_pcb ...) s-expression.
func Encode(b *Board) *kicadsexp.List {
	root := kicadsexp.Node("kicad_pcb",
		kicadsexp.Node("version", kicadsexp.Int(b.Version)),
		kicadsexp.Node("generator", kicadsexp.Q(b.Generator)),
	)
	if b.GeneratorVersion != "" {
		root.Append(kicadsexp.Node("generator_version", kicadsexp.Q(b.GeneratorVersion)))
	}

	root.Append(kicadsexp.Node("general",
		kicadsexp.Node("thickness", kicadsexp.Num(b.General.Thickness)),
		kicadsexp.Node("legacy_teardrops", kicadsexp.Symbol("no")),
	))
	if b.Paper != "" {
		root.Append(kicadsexp.Node("paper", kicadsexp.Q(b.Paper)))
	}
	root.Append(encodeTitleBlock(b.TitleBlock))

	layers := kicadsexp.Node("layers")
	for _, l := range b.Layers {
		layer := kicadsexp.L(kicadsexp.Int(l.Number), kicadsexp.Q(l.Name), kicadsexp.Symbol(l.Type))
		if l.UserName != "" {
			layer.Append(kicadsexp.Q(l.UserName))
		}
		layers.Append(layer)
	}
	root.Append(layers)

	root.Append(kicadsexp.Node("setup",
		kicadsexp.Node("pad_to_mask_clearance", kicadsexp.Int(0)),
		kicadsexp.Node("allow_soldermask_bridges_in_footprints", kicadsexp.Symbol("no")),
	))

	for _, n := range b.Nets {
		root.Append(kicadsexp.Node("net", kicadsexp.Int(n.Number), kicadsexp.Q(n.Name)))
	}

	for i := range b.Footprints {
		root.Append(encodeFootprint(&b.Footprints[i]))
	}

	for _, g := range b.Graphics {
		root.Append(encodeGraphic("gr_", g))
	}

	return root
}

func encodeTitleBlock(tb TitleBlock) *kicadsexp.List {
	node := kicadsexp.Node("title_block")
	for _, f := range []struct{ key, value string }{
		{"title", tb.Title},
		{"date", tb.Date},
		{"rev", tb.Revision},
		{"company", tb.Company},
	} {
		if f.value != "" {
			node.Append(kicadsexp.Node(f.key, kicadsexp.Q(f.value)))
		}
	}
	return node
}

func encodeFootprint(fp *Footprint) *kicadsexp.List {
	angle := float64(fp.Position.Angle)

	node := kicadsexp.Node("footprint", kicadsexp.Q(fp.ID()),
		kicadsexp.Node("layer", kicadsexp.Q(fp.Layer)),
		sexp.UUIDNode(fp.UUID),
		sexp.At(fp.Position.Position, angle),
	)

	for _, name := range sortedProperties(fp.Properties) {
		layout, known := propertyLayout[name]
		if !known {
			layout.layer, layout.hidden = "F.Fab", true
		}
		prop := kicadsexp.Node("property", kicadsexp.Q(name), kicadsexp.Q(fp.Properties[name]),
			sexp.At(layout.offset, angle),
			kicadsexp.Node("layer", kicadsexp.Q(layout.layer)),
		)
		if layout.hidden {
			prop.Append(kicadsexp.Node("hide", kicadsexp.Symbol("yes")))
		}
		prop.Append(
			sexp.UUIDNode(stableUUID(string(fp.UUID), name)),
			kicadsexp.Node("effects",
				kicadsexp.Node("font",
					kicadsexp.Node("size", kicadsexp.Num(1), kicadsexp.Num(1)),
					kicadsexp.Node("thickness", kicadsexp.Num(0.15)),
				),
			),
		)
		node.Append(prop)
	}

	if fp.Attr != "" {
		node.Append(kicadsexp.Node("attr", kicadsexp.Symbol(fp.Attr)))
	}

	for _, g := range fp.Graphics {
		node.Append(encodeGraphic("fp_", g))
	}

	for _, pad := range fp.Pads {
		node.Append(encodePad(pad))
	}

	return node
}

// sortedProperties returns the well-known properties first, in file order,
// then any others alphabetically.
func sortedProperties(props map[string]string) []string {
	var names []string
	for _, name := range propertyOrder {
		if _, ok := props[name]; ok {
			names = append(names, name)
		}
	}
	var extra []string
	for name := range props {
		if _, known := propertyLayout[name]; !known {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return append(names, extra...)
}

func encodePad(pad Pad) *kicadsexp.List {
	layers := kicadsexp.Node("layers")
	for _, l := range pad.Layers {
		layers.Append(kicadsexp.Q(l))
	}

	node := kicadsexp.Node("pad", kicadsexp.Q(pad.Number), kicadsexp.Symbol(pad.Type), kicadsexp.Symbol(pad.Shape),
		sexp.At(pad.Position.Position, float64(pad.Position.Angle)),
		kicadsexp.Node("size", kicadsexp.Num(pad.Size.Width), kicadsexp.Num(pad.Size.Height)),
		layers,
	)
	if pad.Shape == "roundrect" {
		node.Append(kicadsexp.Node("roundrect_rratio", kicadsexp.Num(pad.RoundRectRatio)))
	}
	if pad.Net != nil {
		node.Append(kicadsexp.Node("net", kicadsexp.Int(pad.Net.Number), kicadsexp.Q(pad.Net.Name)))
	}
	if pad.UUID != "" {
		node.Append(sexp.UUIDNode(pad.UUID))
	}
	return node
}

func encodeGraphic(prefix string, g Graphic) *kicadsexp.List {
	fill := "none"
	if g.Filled {
		fill = "solid"
	}
	node := kicadsexp.Node(prefix+g.Type,
		sexp.XY("start", g.Start),
		sexp.XY("end", g.End),
		sexp.StrokeNode(g.Stroke),
	)
	if g.Type == "rect" {
		node.Append(kicadsexp.Node("fill", kicadsexp.Symbol(fill)))
	}
	node.Append(kicadsexp.Node("layer", kicadsexp.Q(g.Layer)))
	if g.UUID != "" {
		node.Append(sexp.UUIDNode(g.UUID))
	}
	return node
}

// Write encodes the board to w in KiCad's file layout.
func Write(w io.Writer, b *Board) error {
	if err := kicadsexp.NewEncoder(w).Encode(Encode(b)); err != nil {
		return fmt.Errorf("pcb: write: %w", err)
	}
	return nil
}

// WriteFile converts a committed design board and writes it to path.
func WriteFile(path string, b *design.Board, opts WriteOptions) error {
	board, err := FromDesign(b, opts)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("pcb: %w", err)
	}
	if err := Write(f, board); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("pcb: %w", err)
	}
	return nil
}
