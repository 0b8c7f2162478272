package design

import (
	"fmt"
	"strings"
)

// Board is a named PCB project. It owns its nets and, once Create has
// succeeded, the committed component list. A Board is not safe for
// concurrent use.
type Board struct {
	name       string
	nets       map[string]*Net
	order      []*Net
	components []*Component
	byRef      map[string]*Component
	created    bool
}

// NewBoard returns an empty board with the given project name.
func NewBoard(name string) (*Board, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyBoardName
	}
	return &Board{
		name: name,
		nets: make(map[string]*Net),
	}, nil
}

// Name returns the project name.
func (b *Board) Name() string { return b.name }

// Created reports whether Create has succeeded.
func (b *Board) Created() bool { return b.created }

// Named returns the net with the given name, creating it on first use.
// Repeated calls with the same name return the same *Net.
//
// After Create, existing nets are still returned; a handle for a new name
// is detached from the board and rejects members with ErrAlreadyCreated.
func (b *Board) Named(name string) *Net {
	if n, ok := b.nets[name]; ok {
		return n
	}
	n := newNet(b, name)
	if !b.created {
		b.nets[name] = n
		b.order = append(b.order, n)
	}
	return n
}

// Declare creates a new net and fails with ErrDuplicateNetName if the name
// is already in use. It is the strict counterpart of Named.
func (b *Board) Declare(name string) (*Net, error) {
	if b.created {
		return nil, fmt.Errorf("%w: cannot declare net %q", ErrAlreadyCreated, name)
	}
	if name == "" {
		return nil, ErrEmptyNetName
	}
	if _, ok := b.nets[name]; ok {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateNetName, name)
	}
	return b.Named(name), nil
}

// Lookup returns an existing net without creating it.
func (b *Board) Lookup(name string) (*Net, bool) {
	n, ok := b.nets[name]
	return n, ok
}

// Nets returns the board's nets in first-declaration order. After Create
// only the committed nets (those with members) remain.
func (b *Board) Nets() []*Net {
	return append([]*Net(nil), b.order...)
}

// Components returns the committed components in Create order; nil before
// Create.
func (b *Board) Components() []*Component {
	return append([]*Component(nil), b.components...)
}

// Component returns the committed component with the given reference.
func (b *Board) Component(ref string) (*Component, bool) {
	c, ok := b.byRef[ref]
	return c, ok
}

// NetOf returns the net a pin belongs to.
func (b *Board) NetOf(pin PinRef) (*Net, bool) {
	for _, n := range b.order {
		if n.Contains(pin) {
			return n, true
		}
	}
	return nil, false
}

// Create commits the board with the given components. It validates, in
// order, that:
//
//   - no reference designator is used twice,
//   - every net member belongs to one of the passed components,
//   - no pin is a member of two nets,
//   - no net has exactly one member.
//
// The first failure is returned and the board stays uncommitted. Nets that
// never received members are dropped. Calling Create on a committed board
// fails with ErrAlreadyCreated.
func (b *Board) Create(components ...*Component) error {
	if b.created {
		return fmt.Errorf("%w: %s", ErrAlreadyCreated, b.name)
	}

	byRef := make(map[string]*Component, len(components))
	passed := make(map[*Component]bool, len(components))
	for i, c := range components {
		if c == nil {
			return fmt.Errorf("design: create %s: component %d is nil", b.name, i+1)
		}
		if _, dup := byRef[c.reference]; dup {
			return fmt.Errorf("%w: %s on board %s", ErrDuplicateReference, c.reference, b.name)
		}
		byRef[c.reference] = c
		passed[c] = true
	}

	for _, n := range b.order {
		for _, m := range n.members {
			if !passed[m.component] {
				return fmt.Errorf("%w: net %q member %s", ErrDanglingNetMember, n.name, m)
			}
		}
	}

	owner := make(map[PinRef]*Net)
	for _, n := range b.order {
		for _, m := range n.members {
			if prev, ok := owner[m]; ok {
				return fmt.Errorf("%w: %s is in %q and %q", ErrPinConflict, m, prev.name, n.name)
			}
			owner[m] = n
		}
	}

	for _, n := range b.order {
		if len(n.members) == 1 {
			return fmt.Errorf("%w: %q has only %s", ErrSingleMemberNet, n.name, n.members[0])
		}
	}

	committed := make([]*Net, 0, len(b.order))
	for _, n := range b.order {
		if len(n.members) == 0 {
			delete(b.nets, n.name)
			continue
		}
		committed = append(committed, n)
	}

	b.order = committed
	b.components = append([]*Component(nil), components...)
	b.byRef = byRef
	b.created = true
	return nil
}
