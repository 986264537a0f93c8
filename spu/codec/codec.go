// Package codec encodes structure operations into device commands and decodes
// register read-back into results.
//
// Encoding resolves every structure identifier a layout carries to its device
// slot before anything touches the bus; a failed resolution surfaces as
// types.ErrUnresolvable wrapping the registry's NotFound.
package codec

import (
	"github.com/joshuapare/spukit/internal/format"
	"github.com/joshuapare/spukit/pkg/types"
	"github.com/joshuapare/spukit/spu/registry"
)

// Resolver maps identifiers to device slots. *registry.Registry satisfies it.
type Resolver interface {
	Resolve(id types.GSID) (registry.Slot, error)
}

// Payload is the caller-supplied operand set. Fields a layout does not carry
// are ignored.
type Payload struct {
	ID     types.GSID // structure A
	Other  types.GSID // structure B (LayoutIDPair)
	Target types.GSID // result structure R (LayoutIDPair); zero means ID
	Key    types.Key
	Value  types.Value
}

// Slots are resolved device slot indices; zero means unused.
type Slots struct {
	A, B, R uint8
}

// Command is a fully resolved, encodable device command.
type Command struct {
	Op      types.Op
	Flags   types.Flags
	Layout  Layout
	Result  ResultLayout
	Payload Payload
	Slots   Slots
}

// Word returns the value written to CMD.
func (c Command) Word() uint32 {
	return format.CommandWord(uint8(c.Op)|uint8(c.Flags&types.FlagsMask), c.Slots.A, c.Slots.B, c.Slots.R)
}

// PowerTarget returns the structure whose power the result reports. For set
// operations that is the result structure.
func (c Command) PowerTarget() types.GSID {
	if c.Layout == LayoutIDPair {
		return c.Payload.Target
	}
	return c.Payload.ID
}

// Encode builds the command for op. Flags outside types.FlagsMask are dropped.
func Encode(r Resolver, op types.Op, flags types.Flags, p Payload) (Command, error) {
	layout, result, err := LayoutOf(op)
	if err != nil {
		return Command{}, err
	}
	c := Command{Op: op, Flags: flags & types.FlagsMask, Layout: layout, Result: result}

	switch layout {
	case LayoutNone:
		return c, nil
	case LayoutID, LayoutIDOnly:
		c.Payload.ID = p.ID
	case LayoutIDKey:
		c.Payload.ID, c.Payload.Key = p.ID, p.Key
	case LayoutIDKeyValue:
		c.Payload.ID, c.Payload.Key, c.Payload.Value = p.ID, p.Key, p.Value
	case LayoutIDPair:
		c.Payload.ID, c.Payload.Other, c.Payload.Target = p.ID, p.Other, p.Target
		if c.Payload.Target.IsZero() {
			c.Payload.Target = p.ID
		}
	}

	if c.Slots.A, err = resolve(r, op, c.Payload.ID); err != nil {
		return Command{}, err
	}
	if layout == LayoutIDPair {
		if c.Slots.B, err = resolve(r, op, c.Payload.Other); err != nil {
			return Command{}, err
		}
		if c.Slots.R, err = resolve(r, op, c.Payload.Target); err != nil {
			return Command{}, err
		}
	}
	return c, nil
}

func resolve(r Resolver, op types.Op, id types.GSID) (uint8, error) {
	s, err := r.Resolve(id)
	if err != nil {
		return 0, types.NewError(types.ErrKindUnresolvable, err, "codec: %s: %s", op, id)
	}
	return s.Index, nil
}
