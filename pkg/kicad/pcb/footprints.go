package pcb

import (
	"fmt"
	"strings"

	"github.com/OpenTraceLab/pcbgen/pkg/kicad/sexp"
	"github.com/OpenTraceLab/pcbgen/pkg/kicad/sexp/kicadsexp"
)

// parsePad extracts a pad definition from a footprint
// Expected format: (pad "number" type shape (at x y [angle]) (size w h) (layers ...) (net n "name") ...)
func parsePad(node kicadsexp.Sexp, netMap *NetMap) (*Pad, error) {
	if node.IsLeaf() {
		return nil, fmt.Errorf("expected pad list, got leaf")
	}

	pad := &Pad{}

	number, err := sexp.GetString(node, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pad number: %w", err)
	}
	pad.Number = number

	// Pad type: thru_hole, smd, connect, np_thru_hole
	if pad.Type, err = sexp.GetString(node, 2); err != nil {
		return nil, fmt.Errorf("failed to parse pad type: %w", err)
	}

	// Pad shape: circle, rect, oval, roundrect, trapezoid, custom
	if pad.Shape, err = sexp.GetString(node, 3); err != nil {
		return nil, fmt.Errorf("failed to parse pad shape: %w", err)
	}

	atNode, found := sexp.FindNode(node, "at")
	if !found {
		return nil, fmt.Errorf("pad %s: missing required 'at' position", number)
	}
	if pad.Position, err = sexp.GetPositionAngle(atNode); err != nil {
		return nil, fmt.Errorf("pad %s: %w", number, err)
	}

	sizeNode, found := sexp.FindNode(node, "size")
	if !found {
		return nil, fmt.Errorf("pad %s: missing required 'size' field", number)
	}
	if pad.Size, err = sexp.GetSize(sizeNode); err != nil {
		return nil, fmt.Errorf("pad %s: %w", number, err)
	}

	layersNode, found := sexp.FindNode(node, "layers")
	if !found {
		return nil, fmt.Errorf("pad %s: missing required 'layers' field", number)
	}
	for _, item := range sexp.GetListItems(layersNode) {
		if item.IsLeaf() && item.String() != "" {
			pad.Layers = append(pad.Layers, item.String())
		}
	}

	if ratioNode, found := sexp.FindNode(node, "roundrect_rratio"); found {
		pad.RoundRectRatio, _ = sexp.GetFloat(ratioNode, 1)
	}

	// Net is optional; unconnected pads carry none
	if netNode, found := sexp.FindNode(node, "net"); found {
		netNum, err := sexp.GetInt(netNode, 1)
		if err == nil && netMap != nil {
			if net, ok := netMap.GetByNumber(netNum); ok {
				pad.Net = net
			}
		}
	}

	if uuidNode, found := sexp.FindNode(node, "uuid"); found {
		pad.UUID, _ = sexp.GetUUID(uuidNode)
	}

	return pad, nil
}

// parseFootprint extracts a footprint (component) definition
// Expected format: (footprint "library:name" (layer "layer") (at x y [angle]) ...)
func parseFootprint(node kicadsexp.Sexp, netMap *NetMap) (*Footprint, error) {
	if node.IsLeaf() {
		return nil, fmt.Errorf("expected footprint list, got leaf")
	}

	footprint := &Footprint{Properties: make(map[string]string)}

	// Library:name, e.g. "Resistor_SMD:R_0805_2012Metric"
	fpName, err := sexp.GetString(node, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to parse footprint name: %w", err)
	}
	if lib, name, ok := strings.Cut(fpName, ":"); ok && lib != "" {
		footprint.Library = lib
		footprint.Name = name
	} else {
		footprint.Name = fpName
	}

	layerNode, found := sexp.FindNode(node, "layer")
	if !found {
		return nil, fmt.Errorf("footprint %s: missing required 'layer' field", fpName)
	}
	if footprint.Layer, err = sexp.GetString(layerNode, 1); err != nil {
		return nil, fmt.Errorf("footprint %s: failed to parse layer: %w", fpName, err)
	}

	atNode, found := sexp.FindNode(node, "at")
	if !found {
		return nil, fmt.Errorf("footprint %s: missing required 'at' position", fpName)
	}
	if footprint.Position, err = sexp.GetPositionAngle(atNode); err != nil {
		return nil, fmt.Errorf("footprint %s: %w", fpName, err)
	}

	if uuidNode, found := sexp.FindNode(node, "uuid"); found {
		footprint.UUID, _ = sexp.GetUUID(uuidNode)
	}

	for _, propNode := range sexp.FindAllNodes(node, "property") {
		propName, err := sexp.GetString(propNode, 1)
		if err != nil {
			continue
		}
		propValue, err := sexp.GetString(propNode, 2)
		if err != nil {
			continue
		}
		footprint.Properties[propName] = propValue

		switch propName {
		case "Reference":
			footprint.Reference = propValue
		case "Value":
			footprint.Value = propValue
		}
	}

	if attrNode, found := sexp.FindNode(node, "attr"); found {
		footprint.Attr, _ = sexp.GetString(attrNode, 1)
	}

	for _, padNode := range sexp.FindAllNodes(node, "pad") {
		pad, err := parsePad(padNode, netMap)
		if err != nil {
			return nil, fmt.Errorf("footprint %s: %w", footprint.Reference, err)
		}
		footprint.Pads = append(footprint.Pads, *pad)
	}

	graphics, err := parseGraphics(node, "fp_")
	if err != nil {
		return nil, fmt.Errorf("footprint %s: %w", footprint.Reference, err)
	}
	footprint.Graphics = graphics

	return footprint, nil
}

// parseFootprints extracts all footprint definitions from the root node
func parseFootprints(root kicadsexp.Sexp, netMap *NetMap) ([]Footprint, error) {
	footprintNodes := sexp.FindAllNodes(root, "footprint")
	footprints := make([]Footprint, 0, len(footprintNodes))

	for _, fpNode := range footprintNodes {
		footprint, err := parseFootprint(fpNode, netMap)
		if err != nil {
			return nil, err
		}
		footprints = append(footprints, *footprint)
	}

	return footprints, nil
}
