// Package netlist exports the connectivity of a board as a KiCad netlist
// (.net, export version "E") or as JSON.
package netlist

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/OpenTraceLab/pcbgen/pkg/design"
	"github.com/OpenTraceLab/pcbgen/pkg/kicad/pcb"
	"github.com/OpenTraceLab/pcbgen/pkg/kicad/sexp/kicadsexp"
)

// Node is one pin attached to a net.
type Node struct {
	Ref string `json:"ref"`
	Pin string `json:"pin"`
}

// Net is a numbered, named set of nodes.
type Net struct {
	Code  int    `json:"code"`
	Name  string `json:"name"`
	Nodes []Node `json:"nodes"`
}

// Component is one part in the netlist.
type Component struct {
	Ref       string `json:"ref"`
	Kind      string `json:"kind,omitempty"`
	Value     string `json:"value"`
	Voltage   string `json:"voltage,omitempty"`
	Footprint string `json:"footprint"`
}

// Netlist is the exportable connectivity of one board.
type Netlist struct {
	Design     string
	Source     string // Definition file the board came from, if any
	Date       string // Written verbatim; left empty for reproducible output
	Components []Component
	Nets       []*Net
}

// FromBoard builds a netlist from a committed design board. Components keep
// Create order, nets keep declaration order and are numbered from 1.
func FromBoard(b *design.Board) (*Netlist, error) {
	if !b.Created() {
		return nil, fmt.Errorf("netlist: %w: %s", design.ErrNotCreated, b.Name())
	}

	nl := &Netlist{Design: b.Name()}
	for _, c := range b.Components() {
		nl.Components = append(nl.Components, Component{
			Ref:       c.Reference(),
			Kind:      string(c.Kind()),
			Value:     c.Value(),
			Voltage:   c.Voltage(),
			Footprint: c.Footprint().ID(),
		})
	}

	for i, n := range b.Nets() {
		net := &Net{Code: i + 1, Name: n.Name()}
		for _, m := range n.Members() {
			net.Nodes = append(net.Nodes, Node{
				Ref: m.Component().Reference(),
				Pin: strconv.Itoa(m.Number()),
			})
		}
		nl.Nets = append(nl.Nets, net)
	}

	return nl, nil
}

// FromPCB builds a netlist from a parsed KiCad board. Net 0 and nets
// without pads are skipped.
func FromPCB(b *pcb.Board) *Netlist {
	nl := &Netlist{Design: b.TitleBlock.Title}
	for _, fp := range b.Footprints {
		nl.Components = append(nl.Components, Component{
			Ref:       fp.Reference,
			Value:     fp.Value,
			Voltage:   fp.Properties["Voltage"],
			Footprint: fp.ID(),
		})
	}

	for _, n := range b.Nets {
		if n.Number == 0 {
			continue
		}
		pads := b.GetNetPads(n.Name)
		if len(pads) == 0 {
			continue
		}
		net := &Net{Code: n.Number, Name: n.Name}
		for _, p := range pads {
			net.Nodes = append(net.Nodes, Node{Ref: p.Reference, Pin: p.Pad.Number})
		}
		nl.Nets = append(nl.Nets, net)
	}

	return nl
}

// NetCount returns the number of nets.
func (nl *Netlist) NetCount() int {
	return len(nl.Nets)
}

// NodeCount returns the number of pin connections across all nets.
func (nl *Netlist) NodeCount() int {
	count := 0
	for _, n := range nl.Nets {
		count += len(n.Nodes)
	}
	return count
}

// ExportJSON exports the netlist as indented JSON.
func (nl *Netlist) ExportJSON() ([]byte, error) {
	output := struct {
		Version     string      `json:"version"`
		Design      string      `json:"design"`
		Source      string      `json:"source,omitempty"`
		NetCount    int         `json:"net_count"`
		NodeCount   int         `json:"node_count"`
		Components  []Component `json:"components"`
		Nets        []*Net      `json:"nets"`
		GeneratedBy string      `json:"generated_by"`
	}{
		Version:     "1.0",
		Design:      nl.Design,
		Source:      nl.Source,
		NetCount:    nl.NetCount(),
		NodeCount:   nl.NodeCount(),
		Components:  nl.Components,
		Nets:        nl.Nets,
		GeneratedBy: "pcbgen",
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("netlist: %w", err)
	}
	return append(data, '\n'), nil
}

// ExportKiCad exports the netlist in KiCad's s-expression netlist format.
func (nl *Netlist) ExportKiCad() ([]byte, error) {
	header := kicadsexp.Node("design")
	if nl.Source != "" {
		header.Append(kicadsexp.Node("source", kicadsexp.Q(nl.Source)))
	}
	if nl.Date != "" {
		header.Append(kicadsexp.Node("date", kicadsexp.Q(nl.Date)))
	}
	header.Append(kicadsexp.Node("tool", kicadsexp.Q("pcbgen")))

	comps := kicadsexp.Node("components")
	for _, c := range nl.Components {
		comp := kicadsexp.Node("comp",
			kicadsexp.Node("ref", kicadsexp.Q(c.Ref)),
			kicadsexp.Node("value", kicadsexp.Q(c.Value)),
			kicadsexp.Node("footprint", kicadsexp.Q(c.Footprint)),
		)
		if part, desc := libPart(c.Kind); part != "" {
			comp.Append(kicadsexp.Node("libsource",
				kicadsexp.Node("lib", kicadsexp.Q("Device")),
				kicadsexp.Node("part", kicadsexp.Q(part)),
				kicadsexp.Node("description", kicadsexp.Q(desc)),
			))
		}
		if c.Voltage != "" {
			comp.Append(kicadsexp.Node("fields",
				kicadsexp.Node("field", kicadsexp.Node("name", kicadsexp.Q("Voltage")), kicadsexp.Q(c.Voltage)),
			))
		}
		comps.Append(comp)
	}

	nets := kicadsexp.Node("nets")
	for _, n := range nl.Nets {
		net := kicadsexp.Node("net",
			kicadsexp.Node("code", kicadsexp.Q(strconv.Itoa(n.Code))),
			kicadsexp.Node("name", kicadsexp.Q(n.Name)),
		)
		for _, node := range n.Nodes {
			net.Append(kicadsexp.Node("node",
				kicadsexp.Node("ref", kicadsexp.Q(node.Ref)),
				kicadsexp.Node("pin", kicadsexp.Q(node.Pin)),
			))
		}
		nets.Append(net)
	}

	root := kicadsexp.Node("export",
		kicadsexp.Node("version", kicadsexp.Q("E")),
		header,
		comps,
		nets,
	)

	data, err := kicadsexp.Marshal(root)
	if err != nil {
		return nil, fmt.Errorf("netlist: %w", err)
	}
	return data, nil
}

func libPart(kind string) (part, description string) {
	switch design.Kind(kind) {
	case design.Resistor:
		return "R", "Resistor"
	case design.Capacitor:
		return "C", "Unpolarized capacitor"
	}
	return "", ""
}
