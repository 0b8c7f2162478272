// Package design is the board definition model: a Board, its placed
// components, and the named nets that connect component pins.
//
// A definition is built linearly and committed once:
//
//	board, _ := design.NewBoard("power-supply-test")
//	r1, _ := design.NewResistor(design.ResistorOptions{Value: "10kohm", Reference: "R1"})
//	r2, _ := design.NewResistor(design.ResistorOptions{Value: "10kohm", Reference: "R2",
//		PCB: design.Placement{X: 100, Y: 110}})
//	_ = board.Named("vout").Net(r1.MustPin(2), r2.MustPin(1))
//	err := board.Create(r1, r2)
//
// Create is the only step that checks cross-object rules (unique references,
// nets referring only to committed components); exporters in pkg/kicad and
// pkg/netlist accept committed boards only.
package design
