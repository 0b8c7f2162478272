package units

import (
	"errors"
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b) <= 1e-9*math.Max(math.Abs(a), math.Abs(b))
}

func TestParse(t *testing.T) {
	tests := []struct {
		in       string
		want     float64
		wantUnit Unit
	}{
		{"10kohm", 10000, Ohm},
		{"10k", 10000, None},
		{"4k7", 4700, None},
		{"4k7ohm", 4700, Ohm},
		{"2R2", 2.2, Ohm},
		{"470R", 470, Ohm},
		{"1M", 1e6, None},
		{"100uF", 1e-4, Farad},
		{"100nF", 1e-7, Farad},
		{"4.7µF", 4.7e-6, Farad},
		{"22pF", 22e-12, Farad},
		{"25V", 25, Volt},
		{"6.3V", 6.3, Volt},
		{"3.3 V", 3.3, Volt},
		{"0ohm", 0, Ohm},
		{"1.5mA", 1.5e-3, Ampere},
		{"100", 100, None},
		{"10kOhm", 10000, Ohm},
		{"10Ohm", 10, Ohm},
		{"10 OHMS", 10, Ohm},
		{"1MOhm", 1e6, Ohm},
		{"1mOhm", 1e-3, Ohm},
		{"100UF", 1e-4, Farad},
		{"100nf", 1e-7, Farad},
		{"25v", 25, Volt},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			q, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.in, err)
			}
			if !almostEqual(q.Value, tt.want) {
				t.Errorf("Parse(%q) value = %g, want %g", tt.in, q.Value, tt.want)
			}
			if q.Unit != tt.wantUnit {
				t.Errorf("Parse(%q) unit = %v, want %v", tt.in, q.Unit, tt.wantUnit)
			}
		})
	}
}

func TestParseInvalid(t *testing.T) {
	for _, in := range []string{"", "ohm", "10x", "1.5k7", "10kohmz", "2R2V", "abc"} {
		t.Run(in, func(t *testing.T) {
			if _, err := Parse(in); !errors.Is(err, ErrSyntax) {
				t.Errorf("Parse(%q) error = %v, want ErrSyntax", in, err)
			}
		})
	}
}

func TestParseAs(t *testing.T) {
	q, err := ParseAs("10k", Ohm)
	if err != nil {
		t.Fatalf("ParseAs failed: %v", err)
	}
	if q.Unit != Ohm || q.Value != 10000 {
		t.Errorf("ParseAs(10k, Ohm) = %+v", q)
	}

	for _, in := range []string{"10kOhm", "10Ohm"} {
		if q, err := ParseAs(in, Ohm); err != nil || q.Unit != Ohm {
			t.Errorf("ParseAs(%q, Ohm) = %+v, %v", in, q, err)
		}
	}
	if q, err := ParseAs("100UF", Farad); err != nil || !almostEqual(q.Value, 1e-4) {
		t.Errorf("ParseAs(100UF, Farad) = %+v, %v", q, err)
	}

	if _, err := ParseAs("100uF", Ohm); !errors.Is(err, ErrUnitMismatch) {
		t.Errorf("expected ErrUnitMismatch, got %v", err)
	}
	if _, err := ParseAs("-5V", Volt); !errors.Is(err, ErrSyntax) {
		t.Errorf("expected ErrSyntax for negative value, got %v", err)
	}
}

func TestQuantityString(t *testing.T) {
	tests := []struct {
		q    Quantity
		want string
	}{
		{Quantity{10000, Ohm}, "10kΩ"},
		{Quantity{4700, Ohm}, "4.7kΩ"},
		{Quantity{1e-4, Farad}, "100µF"},
		{Quantity{100e-9, Farad}, "100nF"},
		{Quantity{25, Volt}, "25V"},
		{Quantity{0, Ohm}, "0Ω"},
	}
	for _, tt := range tests {
		if got := tt.q.String(); got != tt.want {
			t.Errorf("%#v.String() = %q, want %q", tt.q, got, tt.want)
		}
	}
}
