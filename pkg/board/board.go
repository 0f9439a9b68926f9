package board

import (
	"context"
	"errors"
	"fmt"
)

// RegisterAccessor reads and writes board registers.
// *comm.Client implements it.
type RegisterAccessor interface {
	ReadRegister(ctx context.Context, address uint16) (uint32, error)
	WriteRegister(ctx context.Context, address uint16, value uint32) error
	WriteVerify(ctx context.Context, address uint16, value uint32) error
}

// ErrReadOnly is returned when setting a read-only parameter.
var ErrReadOnly = errors.New("parameter is read-only")

// Board accesses effect parameters by name.
type Board struct {
	Map  *Map
	Regs RegisterAccessor
	// Verify reads back every written value.
	Verify bool
}

// New creates a Board.
func New(m *Map, regs RegisterAccessor) *Board {
	return &Board{Map: m, Regs: regs}
}

// Get reads a parameter.
func (b *Board) Get(ctx context.Context, name string) (uint32, error) {
	p, err := b.Map.Lookup(name)
	if err != nil {
		return 0, err
	}
	val, err := b.Regs.ReadRegister(ctx, p.Address)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", name, err)
	}
	return val, nil
}

// Set validates and writes a parameter.
func (b *Board) Set(ctx context.Context, name string, value uint32) error {
	p, err := b.Map.Lookup(name)
	if err != nil {
		return err
	}
	if p.ReadOnly {
		return fmt.Errorf("%s: %w", name, ErrReadOnly)
	}
	if err := p.Check(value); err != nil {
		return err
	}
	if b.Verify {
		err = b.Regs.WriteVerify(ctx, p.Address, value)
	} else {
		err = b.Regs.WriteRegister(ctx, p.Address, value)
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// Snapshot reads all parameters. It stops at the first failure.
func (b *Board) Snapshot(ctx context.Context) (map[string]uint32, error) {
	vals := make(map[string]uint32)
	for _, p := range b.Map.params {
		val, err := b.Regs.ReadRegister(ctx, p.Address)
		if err != nil {
			return vals, fmt.Errorf("read %s: %w", p.Name, err)
		}
		vals[p.Name] = val
	}
	return vals, nil
}
