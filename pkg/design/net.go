package design

import "fmt"

// Net is a named electrical connection between pins. Members keep their
// first-insertion order and never repeat.
type Net struct {
	board   *Board
	name    string
	members []PinRef
	index   map[PinRef]struct{}
}

func newNet(b *Board, name string) *Net {
	return &Net{
		board: b,
		name:  name,
		index: make(map[PinRef]struct{}),
	}
}

// Name returns the net name.
func (n *Net) Name() string { return n.name }

// Net adds pins to the net. Pins already present are skipped, so repeated
// or overlapping calls are harmless. All pins are checked before any is
// added: a zero or out-of-range PinRef fails with ErrOutOfRangePin and
// leaves the net unchanged.
func (n *Net) Net(pins ...PinRef) error {
	if n.board.created {
		return fmt.Errorf("%w: cannot add members to net %q", ErrAlreadyCreated, n.name)
	}
	if n.name == "" {
		return ErrEmptyNetName
	}
	for _, p := range pins {
		if !p.valid() {
			return fmt.Errorf("%w: net %q given %s", ErrOutOfRangePin, n.name, p)
		}
	}
	for _, p := range pins {
		if _, ok := n.index[p]; ok {
			continue
		}
		n.index[p] = struct{}{}
		n.members = append(n.members, p)
	}
	return nil
}

// Members returns the pins in insertion order.
func (n *Net) Members() []PinRef {
	return append([]PinRef(nil), n.members...)
}

// Len returns the number of distinct members.
func (n *Net) Len() int { return len(n.members) }

// Contains reports whether p is a member.
func (n *Net) Contains(p PinRef) bool {
	_, ok := n.index[p]
	return ok
}

func (n *Net) String() string {
	return fmt.Sprintf("%s%v", n.name, n.members)
}
