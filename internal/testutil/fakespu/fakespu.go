// Package fakespu models an SPU at register level for tests. It implements
// bus.Bus: KEY/VAL writes land in registers, a CMD write executes the command
// against per-slot ordered maps, and STATE reports READY (and ERR on a miss)
// once the configured latency has elapsed.
package fakespu

import (
	"sync"

	"github.com/joshuapare/spukit/internal/format"
	"github.com/joshuapare/spukit/internal/ordered"
	"github.com/joshuapare/spukit/pkg/types"
	"github.com/joshuapare/spukit/spu/bus"
)

// Device is an in-memory SPU. Safe for concurrent use, although the burst
// engine never drives it concurrently.
type Device struct {
	mu     sync.Mutex
	regs   [format.WindowWords]uint32
	tables map[uint8]*ordered.Map

	latency int    // STATE polls before READY after a command
	pending int    // polls remaining for the current command
	final   uint32 // STATE value once pending reaches zero
	stuck   bool

	writeErr error
	readErr  error
	stateErr error
	failOn   func(op types.Op, k types.Key) bool

	bursts   [][]bus.Write
	commands []uint32
	polls    int
}

var _ bus.Bus = (*Device)(nil)

// New returns an idle device with every slot empty.
func New() *Device {
	return &Device{tables: make(map[uint8]*ordered.Map)}
}

// SetLatency makes STATE report busy for n polls after every command.
func (d *Device) SetLatency(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.latency = n
}

// SetStuck makes the device never raise READY.
func (d *Device) SetStuck(stuck bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stuck = stuck
}

// FailWrites makes every Write return err. Nil clears the fault.
func (d *Device) FailWrites(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.writeErr = err
}

// FailReads makes every Read return err. Nil clears the fault.
func (d *Device) FailReads(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.readErr = err
}

// FailState makes every State return err. Nil clears the fault.
func (d *Device) FailState(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stateErr = err
}

// FailOn makes commands for which fn returns true complete with ERR and no
// side effect.
func (d *Device) FailOn(fn func(op types.Op, k types.Key) bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failOn = fn
}

// Bursts returns every write burst received, in order.
func (d *Device) Bursts() [][]bus.Write {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([][]bus.Write, len(d.bursts))
	copy(out, d.bursts)
	return out
}

// Commands returns every command word executed, in order.
func (d *Device) Commands() []uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]uint32(nil), d.commands...)
}

// Polls returns the number of STATE reads so far.
func (d *Device) Polls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.polls
}

// Len returns the element count held in slot.
func (d *Device) Len(slot uint8) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.tables[slot]; ok {
		return t.Len()
	}
	return 0
}

// Write implements bus.Bus.
func (d *Device) Write(ws []bus.Write) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.writeErr != nil {
		return d.writeErr
	}
	d.bursts = append(d.bursts, append([]bus.Write(nil), ws...))
	for _, w := range ws {
		if w.Addr >= format.WindowWords {
			return format.ErrBadAddress
		}
		d.regs[w.Addr] = w.Data
		if w.Addr == format.CmdReg {
			d.execute(w.Data)
		}
	}
	return nil
}

// Read implements bus.Bus.
func (d *Device) Read(addrs []uint32, dst []uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.readErr != nil {
		return d.readErr
	}
	if len(dst) < len(addrs) {
		return bus.ErrShortRead
	}
	for i, a := range addrs {
		if a >= format.WindowWords {
			return format.ErrBadAddress
		}
		dst[i] = d.regs[a]
	}
	return nil
}

// State implements bus.Bus.
func (d *Device) State() (uint32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.polls++
	if d.stateErr != nil {
		return 0, d.stateErr
	}
	if d.stuck {
		return 0, nil
	}
	if d.pending > 0 {
		d.pending--
		if d.pending > 0 {
			return 0, nil
		}
		d.regs[format.StateReg] = d.final
	}
	return d.regs[format.StateReg], nil
}

func (d *Device) table(slot uint8) *ordered.Map {
	t, ok := d.tables[slot]
	if !ok {
		t = ordered.New()
		d.tables[slot] = t
	}
	return t
}

func (d *Device) execute(word uint32) {
	d.commands = append(d.commands, word)
	op, _, a, b, r := format.SplitCommandWord(word)

	var k types.Key
	var v types.Value
	copy(k[:], d.regs[format.KeyReg:format.KeyReg+types.Weight])
	copy(v[:], d.regs[format.ValReg:format.ValReg+types.Weight])

	var out ordered.Item
	var power uint32
	ok := false
	if d.failOn == nil || !d.failOn(types.Op(op), k) {
		out, power, ok = d.apply(types.Op(op), a, b, r, k, v)
	} else if t, exists := d.tables[a]; exists {
		power = uint32(t.Len())
	}

	state := uint32(format.ReadyMask)
	if !ok {
		state |= format.ErrMask
		out = ordered.Item{}
	}
	copy(d.regs[format.KeyReg:], out.Key[:])
	copy(d.regs[format.ValReg:], out.Value[:])
	d.regs[format.PowerReg] = power

	if d.latency > 0 {
		d.regs[format.StateReg] = 0
		d.pending = d.latency + 1
		d.final = state
		return
	}
	d.regs[format.StateReg] = state
}

// apply runs one command and returns the element to expose in KEY/VAL and
// the power to expose in POWER.
func (d *Device) apply(op types.Op, a, b, r uint8, k types.Key, v types.Value) (ordered.Item, uint32, bool) {
	var it ordered.Item
	ok := true
	switch op {
	case types.OpDestroy:
		power := uint32(d.table(a).Len())
		delete(d.tables, a)
		return it, power, true
	case types.OpInsert:
		d.table(a).Put(k, v)
	case types.OpDelete:
		ok = d.table(a).Delete(k)
	case types.OpSearch:
		it, ok = d.table(a).Get(k)
	case types.OpMin:
		it, ok = d.table(a).Min()
	case types.OpMax:
		it, ok = d.table(a).Max()
	case types.OpNext:
		it, ok = d.table(a).Next(k)
	case types.OpPrev:
		it, ok = d.table(a).Prev(k)
	case types.OpNSM:
		it, ok = d.table(a).Smaller(k)
	case types.OpNGR:
		it, ok = d.table(a).Greater(k)
	case types.OpAnd:
		d.tables[r] = ordered.Intersect(d.table(a), d.table(b))
		return it, uint32(d.tables[r].Len()), true
	case types.OpOr:
		d.tables[r] = ordered.Union(d.table(a), d.table(b))
		return it, uint32(d.tables[r].Len()), true
	case types.OpNot:
		d.tables[r] = ordered.Difference(d.table(a), d.table(b))
		return it, uint32(d.tables[r].Len()), true
	default:
		ok = false
	}
	return it, uint32(d.table(a).Len()), ok
}
