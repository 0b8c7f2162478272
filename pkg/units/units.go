// Package units parses the unit-suffixed component values used in board
// definitions ("10kohm", "4k7", "100uF", "25V") into SI quantities.
package units

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Unit is the physical unit of a Quantity.
type Unit int

const (
	None Unit = iota
	Ohm
	Farad
	Volt
	Henry
	Ampere
)

func (u Unit) String() string {
	switch u {
	case Ohm:
		return "Ω"
	case Farad:
		return "F"
	case Volt:
		return "V"
	case Henry:
		return "H"
	case Ampere:
		return "A"
	}
	return ""
}

// ErrSyntax is returned when a value cannot be parsed at all.
var ErrSyntax = errors.New("units: invalid value")

// ErrUnitMismatch is returned by ParseAs when the value names a different unit.
var ErrUnitMismatch = errors.New("units: unit mismatch")

// Quantity is a parsed value in base SI units.
type Quantity struct {
	Value float64
	Unit  Unit
}

// unit spellings, matched case-insensitively and longest first so "ohms"
// wins over "ohm"
var unitNames = []struct {
	name string
	unit Unit
}{
	{"ohms", Ohm},
	{"ohm", Ohm},
	{"\u03a9", Ohm},
	{"\u2126", Ohm},
	{"f", Farad},
	{"v", Volt},
	{"h", Henry},
	{"a", Ampere},
}

var prefixes = map[rune]float64{
	'p': 1e-12,
	'P': 1e-12,
	'n': 1e-9,
	'N': 1e-9,
	'u': 1e-6,
	'U': 1e-6,
	'\u00b5': 1e-6,
	'\u03bc': 1e-6,
	'm': 1e-3,
	'k': 1e3,
	'K': 1e3,
	'M': 1e6,
	'G': 1e9,
}

// Parse parses a value such as "10kohm", "4k7", "2R2", "100uF" or "25V".
//
// RKM notation is accepted: a prefix letter (or R for ohms) may stand in for
// the decimal point, so "4k7" is 4700 and "2R2" is 2.2 Ω.
func Parse(s string) (Quantity, error) {
	in := strings.TrimSpace(s)
	if in == "" {
		return Quantity{}, fmt.Errorf("%w: empty", ErrSyntax)
	}

	mantissa, rest := splitNumber(in)
	rest = strings.TrimSpace(rest)
	if mantissa == "" {
		return Quantity{}, fmt.Errorf("%w: %q has no number", ErrSyntax, s)
	}

	value, err := strconv.ParseFloat(mantissa, 64)
	if err != nil {
		return Quantity{}, fmt.Errorf("%w: %q: %v", ErrSyntax, s, err)
	}

	q := Quantity{Value: value}

	// unit spelled out immediately, e.g. "25V" or "10ohm"
	if u, tail, ok := cutUnit(rest); ok && tail == "" {
		q.Unit = u
		return q, nil
	}

	r, size := firstRune(rest)
	switch {
	case r == 'R' || r == 'r':
		// RKM ohms: "2R2"
		q.Unit = Ohm
		rest = rest[size:]
		frac, tail := splitDigits(rest)
		if frac != "" {
			if strings.Contains(mantissa, ".") {
				return Quantity{}, fmt.Errorf("%w: %q mixes decimal point and RKM marker", ErrSyntax, s)
			}
			q.Value, _ = strconv.ParseFloat(mantissa+"."+frac, 64)
		}
		if tail != "" {
			return Quantity{}, fmt.Errorf("%w: %q has trailing %q", ErrSyntax, s, tail)
		}
		return q, nil
	case prefixes[r] != 0:
		mult := prefixes[r]
		rest = rest[size:]
		frac, tail := splitDigits(rest)
		if frac != "" {
			if strings.Contains(mantissa, ".") {
				return Quantity{}, fmt.Errorf("%w: %q mixes decimal point and RKM marker", ErrSyntax, s)
			}
			value, _ = strconv.ParseFloat(mantissa+"."+frac, 64)
		}
		q.Value = value * mult
		if tail == "" {
			return q, nil
		}
		u, tail, ok := cutUnit(tail)
		if !ok || tail != "" {
			return Quantity{}, fmt.Errorf("%w: %q has unknown unit", ErrSyntax, s)
		}
		q.Unit = u
		return q, nil
	case rest == "":
		return q, nil
	}

	return Quantity{}, fmt.Errorf("%w: %q has unknown unit", ErrSyntax, s)
}

// ParseAs parses s and requires it to be in unit want. A value without an
// explicit unit ("10k") is accepted and takes want.
func ParseAs(s string, want Unit) (Quantity, error) {
	q, err := Parse(s)
	if err != nil {
		return Quantity{}, err
	}
	if q.Unit == None {
		q.Unit = want
	}
	if q.Unit != want {
		return Quantity{}, fmt.Errorf("%w: %q is in %s, want %s", ErrUnitMismatch, s, q.Unit, want)
	}
	if q.Value < 0 || math.IsInf(q.Value, 0) || math.IsNaN(q.Value) {
		return Quantity{}, fmt.Errorf("%w: %q is not a usable magnitude", ErrSyntax, s)
	}
	return q, nil
}

// String formats the quantity with an engineering prefix, e.g. "10kΩ".
func (q Quantity) String() string {
	v := q.Value
	prefix := ""
	abs := math.Abs(v)
	switch {
	case abs == 0:
	case abs >= 1e9:
		v, prefix = v/1e9, "G"
	case abs >= 1e6:
		v, prefix = v/1e6, "M"
	case abs >= 1e3:
		v, prefix = v/1e3, "k"
	case abs >= 1:
	case abs >= 1e-3:
		v, prefix = v*1e3, "m"
	case abs >= 1e-6:
		v, prefix = v*1e6, "µ"
	case abs >= 1e-9:
		v, prefix = v*1e9, "n"
	default:
		v, prefix = v*1e12, "p"
	}
	v = math.Round(v*1e6) / 1e6
	return strconv.FormatFloat(v, 'f', -1, 64) + prefix + q.Unit.String()
}

func splitNumber(s string) (number, rest string) {
	end := 0
	for i, r := range s {
		if unicode.IsDigit(r) || r == '.' || ((r == '-' || r == '+') && i == 0) {
			end = i + 1
			continue
		}
		break
	}
	return s[:end], s[end:]
}

func splitDigits(s string) (digits, rest string) {
	end := 0
	for i, r := range s {
		if !unicode.IsDigit(r) {
			break
		}
		end = i + 1
	}
	return s[:end], s[end:]
}

func firstRune(s string) (rune, int) {
	for i, r := range s {
		if i == 0 {
			return r, len(string(r))
		}
	}
	return 0, 0
}

func cutUnit(s string) (Unit, string, bool) {
	for _, n := range unitNames {
		if len(s) >= len(n.name) && strings.EqualFold(s[:len(n.name)], n.name) {
			return n.unit, s[len(n.name):], true
		}
	}
	return None, s, false
}
