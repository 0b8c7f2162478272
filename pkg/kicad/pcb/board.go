package pcb

// Board represents a KiCad PCB as read from or written to a .kicad_pcb file.
type Board struct {
	Version          int         // File format version
	Generator        string      // Generator info (e.g., "pcbnew", "pcbgen")
	GeneratorVersion string      // Generator version, if recorded
	General          General     // General board properties
	Paper            string      // Paper size (e.g., "A4")
	TitleBlock       TitleBlock  // Title block contents
	Layers           []Layer     // Layer definitions
	Nets             []Net       // Electrical nets, net 0 first
	Footprints       []Footprint // Component footprints
	Graphics         []Graphic   // Board-level graphics (outline, drawings)
}

// General contains general board properties
type General struct {
	Thickness float64 // Board thickness in mm
}

// TitleBlock holds the (title_block ...) fields.
type TitleBlock struct {
	Title    string
	Date     string
	Revision string
	Company  string
}

// Footprint represents a placed component footprint
type Footprint struct {
	Library    string            // Library name
	Name       string            // Footprint name
	Layer      string            // Layer (F.Cu or B.Cu typically)
	UUID       UUID              // Footprint UUID
	Position   PositionAngle     // Position and rotation
	Reference  string            // Reference designator (e.g., "R1")
	Value      string            // Component value
	Properties map[string]string // All properties, including Reference and Value
	Attr       string            // Placement attribute (smd, through_hole)
	Pads       []Pad             // Pads
	Graphics   []Graphic         // Footprint-local graphics (courtyard, fab)
}

// ID returns "Library:Name", or just Name when no library is recorded.
func (fp *Footprint) ID() string {
	if fp.Library == "" {
		return fp.Name
	}
	return fp.Library + ":" + fp.Name
}

// Pad represents a footprint pad
type Pad struct {
	Number         string        // Pad number/name
	Type           string        // Pad type (smd, thru_hole, ...)
	Shape          string        // Pad shape (roundrect, rect, circle, ...)
	Position       PositionAngle // Footprint-local position; angle is absolute
	Size           Size          // Pad size
	Layers         LayerSet      // Layers the pad appears on
	RoundRectRatio float64       // Corner ratio for roundrect pads
	Net            *Net          // Connected net (if any)
	UUID           UUID
}

// Graphic represents a line or rectangle, either on the board or inside a
// footprint (footprint graphics use footprint-local coordinates).
type Graphic struct {
	Type   string // "line" or "rect"
	Layer  string // Layer name
	Start  Position
	End    Position
	Stroke Stroke
	Filled bool
	UUID   UUID
}

// NetPad is a pad together with the footprint it belongs to.
type NetPad struct {
	Reference string   // Reference of the owning footprint
	Pad       Pad      // The pad
	Position  Position // Absolute board position of the pad centre
}

// NetInfo contains information about a net and its connections
type NetInfo struct {
	Net  *Net
	Pads []NetPad
}

// GetNet returns a net by name, or nil if not found
func (b *Board) GetNet(name string) *Net {
	for i := range b.Nets {
		if b.Nets[i].Name == name {
			return &b.Nets[i]
		}
	}
	return nil
}

// GetNetPads returns all pads connected to a specific net
func (b *Board) GetNetPads(netName string) []NetPad {
	var pads []NetPad
	for i := range b.Footprints {
		fp := &b.Footprints[i]
		for _, pad := range fp.Pads {
			if pad.Net != nil && pad.Net.Name == netName {
				pads = append(pads, NetPad{
					Reference: fp.Reference,
					Pad:       pad,
					Position:  fp.PadPosition(pad),
				})
			}
		}
	}
	return pads
}

// GetNetInfo returns complete information about a net
func (b *Board) GetNetInfo(netName string) *NetInfo {
	net := b.GetNet(netName)
	if net == nil {
		return nil
	}
	return &NetInfo{
		Net:  net,
		Pads: b.GetNetPads(netName),
	}
}

// GetAllNetNames returns the names of all named nets, skipping net 0.
func (b *Board) GetAllNetNames() []string {
	names := make([]string, 0, len(b.Nets))
	for _, net := range b.Nets {
		if net.Number == 0 {
			continue
		}
		names = append(names, net.Name)
	}
	return names
}

// FindFootprint returns the footprint with the given reference.
func (b *Board) FindFootprint(ref string) *Footprint {
	for i := range b.Footprints {
		if b.Footprints[i].Reference == ref {
			return &b.Footprints[i]
		}
	}
	return nil
}

// Outline returns the first Edge.Cuts rectangle, if any.
func (b *Board) Outline() (Graphic, bool) {
	for _, g := range b.Graphics {
		if g.Layer == "Edge.Cuts" && g.Type == "rect" {
			return g, true
		}
	}
	return Graphic{}, false
}
