package pcb

import (
	"fmt"

	"github.com/OpenTraceLab/pcbgen/pkg/kicad/sexp"
	"github.com/OpenTraceLab/pcbgen/pkg/kicad/sexp/kicadsexp"
)

// parseShape extracts a line or rectangle
// Expected format: (gr_rect (start x y) (end x y) (stroke ...) (fill none) (layer "Edge.Cuts") (uuid "..."))
func parseShape(node kicadsexp.Sexp, kind string) (*Graphic, error) {
	g := &Graphic{Type: kind}

	startNode, found := sexp.FindNode(node, "start")
	if !found {
		return nil, fmt.Errorf("%s: missing 'start'", kind)
	}
	start, err := sexp.GetPositionXY(startNode)
	if err != nil {
		return nil, fmt.Errorf("%s start: %w", kind, err)
	}
	g.Start = start

	endNode, found := sexp.FindNode(node, "end")
	if !found {
		return nil, fmt.Errorf("%s: missing 'end'", kind)
	}
	end, err := sexp.GetPositionXY(endNode)
	if err != nil {
		return nil, fmt.Errorf("%s end: %w", kind, err)
	}
	g.End = end

	layerNode, found := sexp.FindNode(node, "layer")
	if !found {
		return nil, fmt.Errorf("%s: missing 'layer'", kind)
	}
	if g.Layer, err = sexp.GetString(layerNode, 1); err != nil {
		return nil, fmt.Errorf("%s layer: %w", kind, err)
	}

	if strokeNode, found := sexp.FindNode(node, "stroke"); found {
		g.Stroke, _ = sexp.GetStroke(strokeNode)
	} else if widthNode, found := sexp.FindNode(node, "width"); found {
		// KiCad 6 files store a bare (width w)
		w, _ := sexp.GetFloat(widthNode, 1)
		g.Stroke = Stroke{Width: w, Type: "solid"}
	}

	if fillNode, found := sexp.FindNode(node, "fill"); found {
		if fill, err := sexp.GetString(fillNode, 1); err == nil {
			g.Filled = fill == "solid" || fill == "yes"
		}
	}

	if uuidNode, found := sexp.FindNode(node, "uuid"); found {
		g.UUID, _ = sexp.GetUUID(uuidNode)
	}

	return g, nil
}

// parseGraphics extracts the lines and rectangles under node. prefix is
// "gr_" for board graphics and "fp_" for footprint graphics. Other shapes
// are skipped.
func parseGraphics(node kicadsexp.Sexp, prefix string) ([]Graphic, error) {
	var graphics []Graphic
	for _, item := range sexp.Items(node) {
		if item.IsLeaf() {
			continue
		}
		name, err := sexp.GetNodeName(item)
		if err != nil {
			continue
		}

		var kind string
		switch name {
		case prefix + "line":
			kind = "line"
		case prefix + "rect":
			kind = "rect"
		default:
			continue
		}

		g, err := parseShape(item, kind)
		if err != nil {
			return nil, err
		}
		graphics = append(graphics, *g)
	}
	return graphics, nil
}
