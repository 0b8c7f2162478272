package pcb

import (
	"fmt"
	"io"
	"os"

	"github.com/OpenTraceLab/pcbgen/pkg/kicad/sexp"
	"github.com/OpenTraceLab/pcbgen/pkg/kicad/sexp/kicadsexp"
)

// Minimum supported KiCad version (6.0 = 20211014)
const MinSupportedVersion = 20211014

// ParseFile reads and parses a KiCad board file
func ParseFile(filename string) (*Board, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("pcb: failed to open file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads and parses a KiCad board from an io.Reader
func Parse(r io.Reader) (*Board, error) {
	sexps, err := kicadsexp.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("pcb: failed to parse s-expression: %w", err)
	}

	if len(sexps) == 0 {
		return nil, fmt.Errorf("pcb: empty file or no valid s-expressions found")
	}

	// The root should be a (kicad_pcb ...) expression
	root := sexps[0]

	rootName, err := sexp.GetNodeName(root)
	if err != nil {
		return nil, fmt.Errorf("pcb: failed to get root node name: %w", err)
	}
	if rootName != "kicad_pcb" {
		return nil, fmt.Errorf("pcb: not a KiCad PCB file: expected 'kicad_pcb', got '%s'", rootName)
	}

	board := &Board{}

	if err := parseHeader(root, board); err != nil {
		return nil, fmt.Errorf("pcb: failed to parse header: %w", err)
	}

	if generalNode, found := sexp.FindNode(root, "general"); found {
		if thicknessNode, found := sexp.FindNode(generalNode, "thickness"); found {
			if thickness, err := sexp.GetFloat(thicknessNode, 1); err == nil {
				board.General.Thickness = thickness
			}
		}
	}

	if paperNode, found := sexp.FindNode(root, "paper"); found {
		board.Paper, _ = sexp.GetString(paperNode, 1)
	}

	if tbNode, found := sexp.FindNode(root, "title_block"); found {
		board.TitleBlock = parseTitleBlock(tbNode)
	}

	if layersNode, found := sexp.FindNode(root, "layers"); found {
		layers, err := parseLayers(layersNode)
		if err != nil {
			return nil, fmt.Errorf("pcb: failed to parse layers section: %w", err)
		}
		board.Layers = layers
	}

	nets, err := parseNets(root)
	if err != nil {
		return nil, fmt.Errorf("pcb: failed to parse nets: %w", err)
	}
	board.Nets = nets

	// Create net map for lookups
	netMap := NewNetMap(board.Nets)

	footprints, err := parseFootprints(root, netMap)
	if err != nil {
		return nil, fmt.Errorf("pcb: failed to parse footprints: %w", err)
	}
	board.Footprints = footprints

	graphics, err := parseGraphics(root, "gr_")
	if err != nil {
		return nil, fmt.Errorf("pcb: failed to parse graphics: %w", err)
	}
	board.Graphics = graphics

	return board, nil
}

// parseHeader extracts version and generator information from the root node
// Expected format: (kicad_pcb (version 20240108) (generator "pcbnew") ...)
func parseHeader(root kicadsexp.Sexp, board *Board) error {
	versionNode, found := sexp.FindNode(root, "version")
	if !found {
		return fmt.Errorf("missing required 'version' field")
	}

	ver, err := sexp.GetInt(versionNode, 1)
	if err != nil {
		return fmt.Errorf("failed to parse version: %w", err)
	}

	// Validate version (must be KiCad 6.0 or later)
	if ver < MinSupportedVersion {
		return fmt.Errorf("unsupported KiCad version: %d (minimum required: %d / KiCad 6.0)", ver, MinSupportedVersion)
	}
	board.Version = ver

	board.Generator = "unknown"
	if hostNode, found := sexp.FindNode(root, "host"); found {
		// Older format: (host pcbnew "(6.0.0)")
		if name, err := sexp.GetString(hostNode, 1); err == nil {
			board.Generator = name
		}
	} else if genNode, found := sexp.FindNode(root, "generator"); found {
		if name, err := sexp.GetString(genNode, 1); err == nil {
			board.Generator = name
		}
	}

	if gvNode, found := sexp.FindNode(root, "generator_version"); found {
		board.GeneratorVersion, _ = sexp.GetString(gvNode, 1)
	}

	return nil
}

// parseTitleBlock extracts (title_block (title "...") (date "...") (rev "...") (company "..."))
func parseTitleBlock(node kicadsexp.Sexp) TitleBlock {
	var tb TitleBlock
	fields := map[string]*string{
		"title":   &tb.Title,
		"date":    &tb.Date,
		"rev":     &tb.Revision,
		"company": &tb.Company,
	}
	for key, dst := range fields {
		if n, found := sexp.FindNode(node, key); found {
			*dst, _ = sexp.GetString(n, 1)
		}
	}
	return tb
}

// parseLayers extracts layer definitions
// Expected format: (layers (0 "F.Cu" signal) (31 "B.Cu" signal) ...)
func parseLayers(node kicadsexp.Sexp) ([]Layer, error) {
	layerNodes := sexp.GetListItems(node)
	if len(layerNodes) == 0 {
		return nil, fmt.Errorf("no layers defined")
	}

	var layers []Layer
	for _, layerNode := range layerNodes {
		if layerNode.IsLeaf() {
			continue
		}

		number, err := sexp.GetInt(layerNode, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to parse layer number: %w", err)
		}

		name, err := sexp.GetString(layerNode, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to parse layer name: %w", err)
		}

		layerType, err := sexp.GetString(layerNode, 2)
		if err != nil {
			// Layer type is optional in some cases
			layerType = "user"
		}

		userName, _ := sexp.GetString(layerNode, 3)

		layers = append(layers, Layer{
			Number:   number,
			Name:     name,
			Type:     layerType,
			UserName: userName,
		})
	}

	return layers, nil
}

// parseNets extracts net definitions from the root node
// Expected format: (net 0 "") (net 1 "gnd") (net 2 "+5V") ...
func parseNets(root kicadsexp.Sexp) ([]Net, error) {
	netNodes := sexp.FindAllNodes(root, "net")
	nets := make([]Net, 0, len(netNodes))

	for _, netNode := range netNodes {
		number, err := sexp.GetInt(netNode, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to parse net number: %w", err)
		}

		// Name is optional (net 0 has an empty name)
		name, _ := sexp.GetString(netNode, 2)

		nets = append(nets, Net{Number: number, Name: name})
	}

	return nets, nil
}
