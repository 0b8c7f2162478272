package pcb

import (
	"github.com/OpenTraceLab/pcbgen/pkg/kicad/sexp"
)

// Shared geometry types (aliases to the sexp package)
type Position = sexp.Position
type Angle = sexp.Angle
type PositionAngle = sexp.PositionAngle
type Size = sexp.Size
type Stroke = sexp.Stroke
type BoundingBox = sexp.BoundingBox
type UUID = sexp.UUID

var NewBoundingBox = sexp.NewBoundingBox

// Layer represents a PCB layer
type Layer struct {
	Number   int    // Layer number (ordinal)
	Name     string // Canonical name (e.g., "F.Cu", "F.SilkS")
	Type     string // Layer type (signal, user)
	UserName string // Optional display name (e.g., "F.Silkscreen")
}

// Net represents an electrical net
type Net struct {
	Number int    // Net number (ordinal); 0 is the unconnected net
	Name   string // Net name
}

// LayerSet represents a set of layer names
type LayerSet []string

// Has reports whether the set contains the named layer.
func (ls LayerSet) Has(name string) bool {
	for _, l := range ls {
		if l == name {
			return true
		}
	}
	return false
}

// LayerMap provides efficient lookup of layers by number or name
type LayerMap struct {
	byNumber map[int]*Layer
	byName   map[string]*Layer
}

// NewLayerMap creates a LayerMap from a slice of layers
func NewLayerMap(layers []Layer) *LayerMap {
	lm := &LayerMap{
		byNumber: make(map[int]*Layer),
		byName:   make(map[string]*Layer),
	}
	for i := range layers {
		layer := &layers[i]
		lm.byNumber[layer.Number] = layer
		lm.byName[layer.Name] = layer
	}
	return lm
}

// GetByName retrieves a layer by its name (e.g., "F.Cu")
func (lm *LayerMap) GetByName(name string) (*Layer, bool) {
	layer, ok := lm.byName[name]
	return layer, ok
}

// GetByNumber retrieves a layer by its number
func (lm *LayerMap) GetByNumber(num int) (*Layer, bool) {
	layer, ok := lm.byNumber[num]
	return layer, ok
}

// IsCopperLayer checks if a layer is a copper layer
func (lm *LayerMap) IsCopperLayer(name string) bool {
	layer, ok := lm.byName[name]
	return ok && layer.Type == "signal"
}

// NetMap provides efficient lookup of nets by number or name
type NetMap struct {
	byNumber map[int]*Net
	byName   map[string]*Net
}

// NewNetMap creates a NetMap from a slice of nets
func NewNetMap(nets []Net) *NetMap {
	nm := &NetMap{
		byNumber: make(map[int]*Net),
		byName:   make(map[string]*Net),
	}
	for i := range nets {
		net := &nets[i]
		nm.byNumber[net.Number] = net
		// net 0 has an empty name and is not addressable by name
		if net.Name != "" {
			nm.byName[net.Name] = net
		}
	}
	return nm
}

// GetByName retrieves a net by its name (e.g., "gnd", "+5V")
func (nm *NetMap) GetByName(name string) (*Net, bool) {
	net, ok := nm.byName[name]
	return net, ok
}

// GetByNumber retrieves a net by its number
func (nm *NetMap) GetByNumber(num int) (*Net, bool) {
	net, ok := nm.byNumber[num]
	return net, ok
}

// standardLayers is the KiCad 8 two-layer stack written into new boards.
var standardLayers = []Layer{
	{Number: 0, Name: "F.Cu", Type: "signal"},
	{Number: 31, Name: "B.Cu", Type: "signal"},
	{Number: 32, Name: "B.Adhes", Type: "user", UserName: "B.Adhesive"},
	{Number: 33, Name: "F.Adhes", Type: "user", UserName: "F.Adhesive"},
	{Number: 34, Name: "B.Paste", Type: "user"},
	{Number: 35, Name: "F.Paste", Type: "user"},
	{Number: 36, Name: "B.SilkS", Type: "user", UserName: "B.Silkscreen"},
	{Number: 37, Name: "F.SilkS", Type: "user", UserName: "F.Silkscreen"},
	{Number: 38, Name: "B.Mask", Type: "user"},
	{Number: 39, Name: "F.Mask", Type: "user"},
	{Number: 40, Name: "Dwgs.User", Type: "user", UserName: "User.Drawings"},
	{Number: 41, Name: "Cmts.User", Type: "user", UserName: "User.Comments"},
	{Number: 42, Name: "Eco1.User", Type: "user", UserName: "User.Eco1"},
	{Number: 43, Name: "Eco2.User", Type: "user", UserName: "User.Eco2"},
	{Number: 44, Name: "Edge.Cuts", Type: "user"},
	{Number: 45, Name: "Margin", Type: "user"},
	{Number: 46, Name: "B.CrtYd", Type: "user", UserName: "B.Courtyard"},
	{Number: 47, Name: "F.CrtYd", Type: "user", UserName: "F.Courtyard"},
	{Number: 48, Name: "B.Fab", Type: "user"},
	{Number: 49, Name: "F.Fab", Type: "user"},
}

// StandardLayers returns a copy of the layer stack used for generated boards.
func StandardLayers() []Layer {
	return append([]Layer(nil), standardLayers...)
}
