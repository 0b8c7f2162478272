package netlist

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/OpenTraceLab/pcbgen/pkg/design"
	"github.com/OpenTraceLab/pcbgen/pkg/kicad/pcb"
	"github.com/OpenTraceLab/pcbgen/pkg/kicad/sexp"
	"github.com/OpenTraceLab/pcbgen/pkg/kicad/sexp/kicadsexp"
)

func createdBoard(t *testing.T) *design.Board {
	t.Helper()

	board, _ := design.NewBoard("power-supply-test")
	r1, _ := design.NewResistor(design.ResistorOptions{Value: "10kohm", Reference: "R1", PCB: design.Placement{X: 100, Y: 100}})
	r2, _ := design.NewResistor(design.ResistorOptions{Value: "10kohm", Reference: "R2", PCB: design.Placement{X: 100, Y: 110}})
	c1, _ := design.NewCapacitor(design.CapacitorOptions{Value: "100uF", Voltage: "25V", Reference: "C1", PCB: design.Placement{X: 110, Y: 105, Rotation: 90}})

	_ = board.Named("vin").Net(r1.MustPin(1), c1.MustPin(1))
	_ = board.Named("vout").Net(r1.MustPin(2), r2.MustPin(1))
	_ = board.Named("gnd").Net(r2.MustPin(2), c1.MustPin(2))

	if err := board.Create(r1, r2, c1); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return board
}

func TestFromBoard(t *testing.T) {
	nl, err := FromBoard(createdBoard(t))
	if err != nil {
		t.Fatalf("FromBoard failed: %v", err)
	}

	if nl.NetCount() != 3 {
		t.Errorf("expected 3 nets, got %d", nl.NetCount())
	}
	if nl.NodeCount() != 6 {
		t.Errorf("expected 6 nodes, got %d", nl.NodeCount())
	}
	if len(nl.Components) != 3 {
		t.Errorf("expected 3 components, got %d", len(nl.Components))
	}
	if nl.Nets[2].Name != "gnd" || nl.Nets[2].Code != 3 {
		t.Errorf("third net = %+v", nl.Nets[2])
	}
	if nl.Nets[0].Nodes[1] != (Node{Ref: "C1", Pin: "1"}) {
		t.Errorf("vin second node = %+v", nl.Nets[0].Nodes[1])
	}
}

func TestFromBoardRequiresCreate(t *testing.T) {
	board, _ := design.NewBoard("draft")
	if _, err := FromBoard(board); !errors.Is(err, design.ErrNotCreated) {
		t.Errorf("expected ErrNotCreated, got %v", err)
	}
}

func TestExportKiCad(t *testing.T) {
	nl, err := FromBoard(createdBoard(t))
	if err != nil {
		t.Fatal(err)
	}
	nl.Source = "power-supply-test.board"

	data, err := nl.ExportKiCad()
	if err != nil {
		t.Fatalf("ExportKiCad failed: %v", err)
	}

	sexps, err := kicadsexp.ParseString(string(data))
	if err != nil {
		t.Fatalf("exported netlist does not parse: %v\n%s", err, data)
	}
	root := sexps[0]

	version, ok := sexp.FindNode(root, "version")
	if !ok {
		t.Fatal("missing version")
	}
	if v, _ := sexp.GetString(version, 1); v != "E" {
		t.Errorf("version = %q", v)
	}

	comps, _ := sexp.FindNode(root, "components")
	if got := len(sexp.FindAllNodes(comps, "comp")); got != 3 {
		t.Errorf("expected 3 comp nodes, got %d", got)
	}

	nets, _ := sexp.FindNode(root, "nets")
	netNodes := sexp.FindAllNodes(nets, "net")
	if len(netNodes) != 3 {
		t.Fatalf("expected 3 net nodes, got %d", len(netNodes))
	}
	nameNode, _ := sexp.FindNode(netNodes[1], "name")
	if name, _ := sexp.GetString(nameNode, 1); name != "vout" {
		t.Errorf("second net name = %q", name)
	}
	if got := len(sexp.FindAllNodes(netNodes[1], "node")); got != 2 {
		t.Errorf("vout has %d nodes", got)
	}

	if !strings.Contains(string(data), `(part "C")`) {
		t.Errorf("missing capacitor libsource:\n%s", data)
	}
}

func TestExportJSON(t *testing.T) {
	nl, err := FromBoard(createdBoard(t))
	if err != nil {
		t.Fatal(err)
	}

	data, err := nl.ExportJSON()
	if err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}

	var decoded struct {
		Design     string      `json:"design"`
		NetCount   int         `json:"net_count"`
		NodeCount  int         `json:"node_count"`
		Components []Component `json:"components"`
		Nets       []Net       `json:"nets"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if decoded.Design != "power-supply-test" || decoded.NetCount != 3 || decoded.NodeCount != 6 {
		t.Errorf("summary = %+v", decoded)
	}
	if decoded.Components[2].Voltage != "25V" {
		t.Errorf("C1 voltage = %q", decoded.Components[2].Voltage)
	}
}

func TestFromPCB(t *testing.T) {
	board, err := pcb.FromDesign(createdBoard(t), pcb.WriteOptions{})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := pcb.Write(&buf, board); err != nil {
		t.Fatal(err)
	}
	parsed, err := pcb.Parse(&buf)
	if err != nil {
		t.Fatal(err)
	}

	nl := FromPCB(parsed)
	if nl.Design != "power-supply-test" {
		t.Errorf("Design = %q", nl.Design)
	}
	if nl.NetCount() != 3 || nl.NodeCount() != 6 {
		t.Errorf("nets=%d nodes=%d", nl.NetCount(), nl.NodeCount())
	}

	fromDesign, _ := FromBoard(createdBoard(t))
	for i := range fromDesign.Nets {
		want, got := fromDesign.Nets[i], nl.Nets[i]
		if want.Name != got.Name || len(want.Nodes) != len(got.Nodes) {
			t.Errorf("net %d: design %+v, pcb %+v", i, want, got)
		}
	}
}
