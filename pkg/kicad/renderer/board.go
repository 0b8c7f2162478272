// Package renderer draws KiCad boards with Gio: substrate, board outline,
// footprint fab and courtyard outlines, pads and ratsnest lines.
package renderer

import (
	"image"
	"image/color"
	"math"

	"gioui.org/f32"
	"gioui.org/font"
	"gioui.org/font/gofont"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget"

	"github.com/OpenTraceLab/pcbgen/pkg/kicad/pcb"
	"github.com/OpenTraceLab/pcbgen/pkg/kicad/sexp"
)

// Options controls what a Renderer draws.
type Options struct {
	Theme        ColorTheme
	Layers       *LayerConfig // nil shows every layer
	HighlightNet string       // pads and ratsnest of this net are drawn highlighted
	Ratsnest     bool
	Labels       bool // reference designators
}

// Renderer draws boards into Gio op lists. It caches the text shaper, so
// keep one per window rather than one per frame.
type Renderer struct {
	Options
	shaper *text.Shaper
}

// New creates a renderer.
func New(opts Options) *Renderer {
	return &Renderer{
		Options: opts,
		shaper:  text.NewShaper(text.WithCollection(gofont.Collection())),
	}
}

// RenderBoard draws board with ratsnest lines and labels in the classic theme.
func RenderBoard(gtx layout.Context, camera *Camera, board *pcb.Board) {
	New(Options{Ratsnest: true, Labels: true}).Render(gtx, camera, board)
}

// Render draws board in layer order, bottom to top.
func (r *Renderer) Render(gtx layout.Context, camera *Camera, board *pcb.Board) {
	paint.Fill(gtx.Ops, ColorBackground)

	r.renderSubstrate(gtx, camera, board)
	r.renderGraphics(gtx, camera, board)
	for _, layer := range []string{"F.Fab", "F.CrtYd"} {
		r.renderFootprintLayer(gtx, camera, board, layer)
	}
	r.renderPads(gtx, camera, board)
	if r.Ratsnest {
		r.renderRatsnest(gtx, camera, board)
	}
	if r.Labels && r.Layers.IsVisible("F.SilkS") {
		r.renderLabels(gtx, camera, board)
	}
}

// renderSubstrate fills the board outline, or the board bounding box when
// there is no Edge.Cuts rectangle.
func (r *Renderer) renderSubstrate(gtx layout.Context, camera *Camera, board *pcb.Board) {
	var corners []sexp.Position
	if outline, ok := board.Outline(); ok {
		corners = rectCorners(outline.Start, outline.End)
	} else {
		bbox := board.GetBoundingBox()
		if bbox.IsEmpty() {
			return
		}
		corners = rectCorners(bbox.Min, bbox.Max)
	}

	path := polygon(gtx, camera, corners)
	paint.FillShape(gtx.Ops, r.Theme.SubstrateColor(), clip.Outline{Path: path}.Op())
}

func (r *Renderer) renderGraphics(gtx layout.Context, camera *Camera, board *pcb.Board) {
	for _, g := range board.Graphics {
		if !r.Layers.IsVisible(g.Layer) {
			continue
		}
		r.renderGraphic(gtx, camera, g, func(p sexp.Position) sexp.Position { return p })
	}
}

func (r *Renderer) renderFootprintLayer(gtx layout.Context, camera *Camera, board *pcb.Board, layer string) {
	if !r.Layers.IsVisible(layer) {
		return
	}
	for i := range board.Footprints {
		fp := &board.Footprints[i]
		for _, g := range fp.Graphics {
			if g.Layer != layer {
				continue
			}
			r.renderGraphic(gtx, camera, g, fp.Position.Transform)
		}
	}
}

// renderGraphic strokes a line or rectangle; toBoard maps its points to
// board coordinates.
func (r *Renderer) renderGraphic(gtx layout.Context, camera *Camera, g pcb.Graphic, toBoard func(sexp.Position) sexp.Position) {
	width := math.Max(g.Stroke.Width*camera.Zoom, 1.0)
	c := r.Theme.LayerColor(g.Layer)

	switch g.Type {
	case "line":
		x1, y1 := camera.WorldToScreen(toBoard(g.Start))
		x2, y2 := camera.WorldToScreen(toBoard(g.End))
		renderLine(gtx, x1, y1, x2, y2, width, c)
	case "rect":
		corners := rectCorners(g.Start, g.End)
		for i := range corners {
			corners[i] = toBoard(corners[i])
		}
		if g.Filled {
			paint.FillShape(gtx.Ops, c, clip.Outline{Path: polygon(gtx, camera, corners)}.Op())
			return
		}
		paint.FillShape(gtx.Ops, c, clip.Stroke{Path: polygon(gtx, camera, corners), Width: float32(width)}.Op())
	}
}

func (r *Renderer) renderPads(gtx layout.Context, camera *Camera, board *pcb.Board) {
	for i := range board.Footprints {
		fp := &board.Footprints[i]
		for _, pad := range fp.Pads {
			if !r.padVisible(pad) {
				continue
			}
			x, y := camera.WorldToScreen(fp.PadPosition(pad))
			w := pad.Size.Width * camera.Zoom
			h := pad.Size.Height * camera.Zoom
			radius := 0.0
			if pad.Shape == "roundrect" {
				radius = pad.RoundRectRatio * math.Min(w, h)
			}
			renderRotatedRRect(gtx, x, y, w, h, camera.screenAngle(float64(pad.Position.Angle)), radius, r.padColor(pad))
		}
	}
}

func (r *Renderer) padVisible(pad pcb.Pad) bool {
	for _, layer := range pad.Layers {
		if (layer == "F.Cu" || layer == "B.Cu" || layer == "*.Cu") && r.Layers.IsVisible(layer) {
			return true
		}
	}
	return false
}

func (r *Renderer) padColor(pad pcb.Pad) color.NRGBA {
	if r.HighlightNet == "" {
		return ColorPadSMD
	}
	if pad.Net != nil && pad.Net.Name == r.HighlightNet {
		return ColorHighlight
	}
	dim := ColorPadSMD
	dim.A = 80
	return dim
}

func (r *Renderer) renderRatsnest(gtx layout.Context, camera *Camera, board *pcb.Board) {
	for i, name := range board.GetAllNetNames() {
		c := RatsnestColor(i)
		width := 1.0
		if r.HighlightNet != "" {
			if name != r.HighlightNet {
				continue
			}
			c, width = ColorHighlight, 2.0
		}
		for _, seg := range Ratsnest(board, name) {
			x1, y1 := camera.WorldToScreen(seg[0])
			x2, y2 := camera.WorldToScreen(seg[1])
			renderLine(gtx, x1, y1, x2, y2, width, c)
		}
	}
}

// Ratsnest returns the airwires of a net: each pad is linked to the
// nearest pad already reached, starting from the first pad of the net.
func Ratsnest(board *pcb.Board, netName string) [][2]sexp.Position {
	pads := board.GetNetPads(netName)
	if len(pads) < 2 {
		return nil
	}

	reached := []sexp.Position{pads[0].Position}
	var segments [][2]sexp.Position
	for _, p := range pads[1:] {
		nearest, best := reached[0], math.Inf(1)
		for _, q := range reached {
			if d := math.Hypot(p.Position.X-q.X, p.Position.Y-q.Y); d < best {
				nearest, best = q, d
			}
		}
		segments = append(segments, [2]sexp.Position{nearest, p.Position})
		reached = append(reached, p.Position)
	}
	return segments
}

func (r *Renderer) renderLabels(gtx layout.Context, camera *Camera, board *pcb.Board) {
	fontSize := 1.0 * camera.Zoom // 1mm text
	if fontSize < 8.0 {
		return
	}
	fontSize = math.Min(fontSize, 50.0)

	material := op.Record(gtx.Ops)
	paint.ColorOp{Color: r.Theme.LayerColor("F.SilkS")}.Add(gtx.Ops)
	textColor := material.Stop()

	lgtx := gtx
	lgtx.Constraints.Min = image.Point{}
	for i := range board.Footprints {
		fp := &board.Footprints[i]
		if fp.Reference == "" {
			continue
		}
		bbox := fp.GetBoundingBox()
		x, y := camera.WorldToScreen(sexp.Position{X: bbox.Min.X, Y: bbox.Min.Y})

		stack := op.Offset(image.Pt(int(x), int(y-fontSize*1.4))).Push(gtx.Ops)
		widget.Label{Alignment: text.Start, MaxLines: 1}.
			Layout(lgtx, r.shaper, font.Font{}, unit.Sp(fontSize), fp.Reference, textColor)
		stack.Pop()
	}
}

func rectCorners(a, b sexp.Position) []sexp.Position {
	return []sexp.Position{
		{X: a.X, Y: a.Y},
		{X: b.X, Y: a.Y},
		{X: b.X, Y: b.Y},
		{X: a.X, Y: b.Y},
	}
}

// polygon builds a closed screen-space path through world points.
func polygon(gtx layout.Context, camera *Camera, pts []sexp.Position) clip.PathSpec {
	var path clip.Path
	path.Begin(gtx.Ops)
	for i, p := range pts {
		x, y := camera.WorldToScreen(p)
		if i == 0 {
			path.MoveTo(f32.Pt(float32(x), float32(y)))
			continue
		}
		path.LineTo(f32.Pt(float32(x), float32(y)))
	}
	path.Close()
	return path.End()
}

func renderRotatedRRect(gtx layout.Context, x, y, width, height float64, radians float32, cornerRadius float64, fillColor color.NRGBA) {
	// rotate around the pad centre, then move it into place
	transform := f32.Affine2D{}.
		Rotate(f32.Pt(0, 0), radians).
		Offset(f32.Pt(float32(x), float32(y)))

	stack := op.Affine(transform).Push(gtx.Ops)
	defer stack.Pop()

	rrect := clip.UniformRRect(
		image.Rectangle{
			Min: image.Pt(int(math.Round(-width/2)), int(math.Round(-height/2))),
			Max: image.Pt(int(math.Round(width/2)), int(math.Round(height/2))),
		},
		int(cornerRadius),
	).Op(gtx.Ops)

	paint.FillShape(gtx.Ops, fillColor, rrect)
}

func renderLine(gtx layout.Context, x1, y1, x2, y2, width float64, lineColor color.NRGBA) {
	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(f32.Pt(float32(x1), float32(y1)))
	path.LineTo(f32.Pt(float32(x2), float32(y2)))

	stroke := clip.Stroke{
		Path:  path.End(),
		Width: float32(width),
	}.Op()

	paint.FillShape(gtx.Ops, lineColor, stroke)
}
