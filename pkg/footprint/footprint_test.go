package footprint

import (
	"errors"
	"testing"

	"github.com/OpenTraceLab/pcbgen/pkg/kicad/sexp"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		class  Class
		pkg    string
		wantID string
	}{
		{Resistor, "", "Resistor_SMD:R_0805_2012Metric"},
		{Resistor, "0805", "Resistor_SMD:R_0805_2012Metric"},
		{Capacitor, "0805", "Capacitor_SMD:C_0805_2012Metric"},
	}

	for _, tt := range tests {
		t.Run(string(tt.class)+"/"+tt.pkg, func(t *testing.T) {
			fp, err := Lookup(tt.class, tt.pkg)
			if err != nil {
				t.Fatalf("Lookup failed: %v", err)
			}
			if fp.ID() != tt.wantID {
				t.Errorf("ID = %q, want %q", fp.ID(), tt.wantID)
			}
			if fp.PinCount() != 2 {
				t.Errorf("PinCount = %d, want 2", fp.PinCount())
			}
		})
	}
}

func TestLookupUnknown(t *testing.T) {
	if _, err := Lookup(Resistor, "0603"); !errors.Is(err, ErrUnknownPackage) {
		t.Errorf("expected ErrUnknownPackage, got %v", err)
	}
	if _, err := Lookup(Class("inductor"), "0805"); !errors.Is(err, ErrUnknownPackage) {
		t.Errorf("expected ErrUnknownPackage, got %v", err)
	}
}

func TestLookupReturnsCopy(t *testing.T) {
	a, _ := Lookup(Resistor, "0805")
	a.Pads[0].Offset.X = 42

	b, _ := Lookup(Resistor, "0805")
	if b.Pads[0].Offset.X == 42 {
		t.Error("mutating a looked-up footprint changed the library")
	}
}

func TestPadPosition(t *testing.T) {
	fp, _ := Lookup(Capacitor, "0805")
	origin := sexp.PositionAngle{Position: sexp.Position{X: 110, Y: 105}, Angle: 90}

	p1, ok := fp.PadPosition(origin, 1)
	if !ok {
		t.Fatal("pad 1 missing")
	}
	if p1 != (sexp.Position{X: 110, Y: 105.95}) {
		t.Errorf("pad 1 at %+v", p1)
	}

	if _, ok := fp.PadPosition(origin, 3); ok {
		t.Error("pad 3 should not exist")
	}
}

func TestBoundsRotated(t *testing.T) {
	fp, _ := Lookup(Resistor, "0805")
	bb := fp.Bounds(sexp.PositionAngle{Position: sexp.Position{X: 100, Y: 100}, Angle: 90})

	if bb.Width() < 1.89 || bb.Width() > 1.91 {
		t.Errorf("rotated width = %v, want 1.9", bb.Width())
	}
	if bb.Height() < 3.35 || bb.Height() > 3.37 {
		t.Errorf("rotated height = %v, want 3.36", bb.Height())
	}
}

func TestValidRotation(t *testing.T) {
	for _, deg := range []float64{0, 90, 180, 270} {
		if !ValidRotation(deg) {
			t.Errorf("ValidRotation(%v) = false", deg)
		}
	}
	for _, deg := range []float64{45, -90, 360, 89.9} {
		if ValidRotation(deg) {
			t.Errorf("ValidRotation(%v) = true", deg)
		}
	}
}
