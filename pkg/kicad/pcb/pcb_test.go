package pcb

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/OpenTraceLab/pcbgen/pkg/design"
)

func powerSupplyBoard(t *testing.T) *design.Board {
	t.Helper()

	board, err := design.NewBoard("power-supply-test")
	if err != nil {
		t.Fatal(err)
	}
	r1, err := design.NewResistor(design.ResistorOptions{Value: "10kohm", Reference: "R1", PCB: design.Placement{X: 100, Y: 100}})
	if err != nil {
		t.Fatal(err)
	}
	r2, err := design.NewResistor(design.ResistorOptions{Value: "10kohm", Reference: "R2", PCB: design.Placement{X: 100, Y: 110}})
	if err != nil {
		t.Fatal(err)
	}
	c1, err := design.NewCapacitor(design.CapacitorOptions{Value: "100uF", Voltage: "25V", Reference: "C1", PCB: design.Placement{X: 110, Y: 105, Rotation: 90}})
	if err != nil {
		t.Fatal(err)
	}

	for _, step := range []struct {
		net  string
		pins []design.PinRef
	}{
		{"vin", []design.PinRef{r1.MustPin(1), c1.MustPin(1)}},
		{"vout", []design.PinRef{r1.MustPin(2), r2.MustPin(1)}},
		{"gnd", []design.PinRef{r2.MustPin(2), c1.MustPin(2)}},
	} {
		if err := board.Named(step.net).Net(step.pins...); err != nil {
			t.Fatal(err)
		}
	}

	if err := board.Create(r1, r2, c1); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return board
}

func TestFromDesignRequiresCreate(t *testing.T) {
	board, _ := design.NewBoard("draft")
	if _, err := FromDesign(board, WriteOptions{}); !errors.Is(err, design.ErrNotCreated) {
		t.Fatalf("expected ErrNotCreated, got %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	board, err := FromDesign(powerSupplyBoard(t), WriteOptions{})
	if err != nil {
		t.Fatalf("FromDesign failed: %v", err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, board); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	parsed, err := Parse(&buf)
	if err != nil {
		t.Fatalf("Parse of written board failed: %v", err)
	}

	if parsed.Version != DefaultVersion {
		t.Errorf("Version = %d, want %d", parsed.Version, DefaultVersion)
	}
	if parsed.Generator != "pcbgen" {
		t.Errorf("Generator = %q", parsed.Generator)
	}
	if parsed.General.Thickness != 1.6 {
		t.Errorf("Thickness = %v", parsed.General.Thickness)
	}
	if parsed.TitleBlock.Title != "power-supply-test" {
		t.Errorf("Title = %q", parsed.TitleBlock.Title)
	}
	if len(parsed.Layers) != len(standardLayers) {
		t.Errorf("expected %d layers, got %d", len(standardLayers), len(parsed.Layers))
	}

	wantNets := []string{"", "vin", "vout", "gnd"}
	if len(parsed.Nets) != len(wantNets) {
		t.Fatalf("expected %d nets, got %d", len(wantNets), len(parsed.Nets))
	}
	for i, want := range wantNets {
		if parsed.Nets[i].Number != i || parsed.Nets[i].Name != want {
			t.Errorf("net %d = %+v, want %q", i, parsed.Nets[i], want)
		}
	}

	if len(parsed.Footprints) != 3 {
		t.Fatalf("expected 3 footprints, got %d", len(parsed.Footprints))
	}

	wantPads := map[string][]string{
		"vin":  {"R1.1", "C1.1"},
		"vout": {"R1.2", "R2.1"},
		"gnd":  {"R2.2", "C1.2"},
	}
	for net, want := range wantPads {
		pads := parsed.GetNetPads(net)
		var got []string
		for _, p := range pads {
			got = append(got, p.Reference+"."+p.Pad.Number)
		}
		if strings.Join(got, ",") != strings.Join(want, ",") {
			t.Errorf("net %s pads = %v, want %v", net, got, want)
		}
	}

	c1 := parsed.FindFootprint("C1")
	if c1 == nil {
		t.Fatal("C1 missing")
	}
	if c1.ID() != "Capacitor_SMD:C_0805_2012Metric" {
		t.Errorf("C1 footprint = %q", c1.ID())
	}
	if c1.Position.Angle != 90 || c1.Value != "100uF" || c1.Properties["Voltage"] != "25V" {
		t.Errorf("C1 = %+v", c1)
	}
	if c1.Attr != "smd" {
		t.Errorf("C1 attr = %q", c1.Attr)
	}
	if got := c1.PadPosition(c1.Pads[0]); got != (Position{X: 110, Y: 105.95}) {
		t.Errorf("C1 pad 1 at %+v", got)
	}
	if len(c1.Graphics) != 2 {
		t.Errorf("C1 graphics = %d, want courtyard and fab outline", len(c1.Graphics))
	}

	outline, ok := parsed.Outline()
	if !ok {
		t.Fatal("board outline missing")
	}
	bb := parsed.GetBoundingBox()
	if bb.Min != outline.Start || bb.Max != outline.End {
		t.Errorf("bounding box %+v does not match outline %+v", bb, outline)
	}
	for _, fp := range parsed.Footprints {
		for _, pad := range fp.Pads {
			if p := fp.PadPosition(pad); p.X <= outline.Start.X || p.X >= outline.End.X {
				t.Errorf("%s pad %s at %+v outside outline", fp.Reference, pad.Number, p)
			}
		}
	}
}

func TestWriteIsDeterministic(t *testing.T) {
	render := func() string {
		board, err := FromDesign(powerSupplyBoard(t), WriteOptions{})
		if err != nil {
			t.Fatal(err)
		}
		var buf bytes.Buffer
		if err := Write(&buf, board); err != nil {
			t.Fatal(err)
		}
		return buf.String()
	}

	first, second := render(), render()
	if first != second {
		t.Error("two renders of the same board differ")
	}
	if !strings.Contains(first, `(pad "1" smd roundrect`) {
		t.Errorf("output missing pad definition:\n%s", first)
	}
	if !strings.Contains(first, `(net 1 "vin")`) {
		t.Errorf("output missing vin net:\n%s", first)
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.kicad_pcb")
	opts := WriteOptions{Version: 20221018, Generator: "custom", TitleBlock: TitleBlock{Title: "Divider", Revision: "B"}}

	if err := WriteFile(path, powerSupplyBoard(t), opts); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	parsed, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	if parsed.Version != 20221018 || parsed.Generator != "custom" {
		t.Errorf("header = %d %q", parsed.Version, parsed.Generator)
	}
	if parsed.TitleBlock.Title != "Divider" || parsed.TitleBlock.Revision != "B" {
		t.Errorf("title block = %+v", parsed.TitleBlock)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatal(err)
	}
}

func TestParseKiCad6Board(t *testing.T) {
	input := `(kicad_pcb (version 20211014) (host pcbnew "(6.0.0)")
  (general (thickness 1.6))
  (layers (0 "F.Cu" signal) (31 "B.Cu" signal) (44 "Edge.Cuts" user))
  (net 0 "")
  (net 1 "GND")
  (footprint "R_0603" (layer "F.Cu") (at 10 20)
    (property "Reference" "R7")
    (fp_line (start -1 0) (end 1 0) (layer "F.SilkS") (width 0.12))
    (pad "1" smd rect (at -0.8 0) (size 0.8 0.9) (layers "F.Cu" "F.Mask") (net 1 "GND"))
    (pad "2" smd rect (at 0.8 0) (size 0.8 0.9) (layers "F.Cu" "F.Mask")))
  (gr_line (start 0 0) (end 50 0) (layer "Edge.Cuts") (width 0.1)))`

	board, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if board.Generator != "pcbnew" {
		t.Errorf("Generator = %q", board.Generator)
	}
	lm := NewLayerMap(board.Layers)
	if !lm.IsCopperLayer("B.Cu") || lm.IsCopperLayer("Edge.Cuts") {
		t.Error("layer types not parsed")
	}

	fp := board.FindFootprint("R7")
	if fp == nil {
		t.Fatal("R7 missing")
	}
	if fp.Library != "" || fp.Name != "R_0603" {
		t.Errorf("footprint id = %q:%q", fp.Library, fp.Name)
	}
	if len(fp.Pads) != 2 || fp.Pads[0].Net == nil || fp.Pads[0].Net.Name != "GND" || fp.Pads[1].Net != nil {
		t.Errorf("pads = %+v", fp.Pads)
	}
	if !fp.Pads[0].Layers.Has("F.Mask") {
		t.Errorf("pad layers = %v", fp.Pads[0].Layers)
	}
	if len(fp.Graphics) != 1 || fp.Graphics[0].Stroke.Width != 0.12 {
		t.Errorf("footprint graphics = %+v", fp.Graphics)
	}
	if len(board.Graphics) != 1 || board.Graphics[0].Type != "line" {
		t.Errorf("board graphics = %+v", board.Graphics)
	}
	if names := board.GetAllNetNames(); len(names) != 1 || names[0] != "GND" {
		t.Errorf("net names = %v", names)
	}
	if info := board.GetNetInfo("GND"); info == nil || len(info.Pads) != 1 {
		t.Errorf("GND info = %+v", info)
	}
	if board.GetNetInfo("VCC") != nil {
		t.Error("unexpected VCC info")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"not a board", "(kicad_sch (version 20231120))"},
		{"missing version", "(kicad_pcb (generator pcbnew))"},
		{"too old", "(kicad_pcb (version 20171130))"},
		{"broken pad", `(kicad_pcb (version 20240108) (footprint "X" (layer "F.Cu") (at 0 0) (pad "1" smd rect (at 0 0))))`},
		{"unbalanced", "(kicad_pcb (version 20240108)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(tt.input)); err == nil {
				t.Errorf("expected error for %q", tt.input)
			}
		})
	}
}
