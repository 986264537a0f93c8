// Package bus defines the register-level capability the burst engine drives,
// plus two implementations: MMIO over a mapped register window and a tracing
// wrapper that logs every transaction.
//
// Addresses are word addresses in the register map of internal/format.
// A Bus is not safe for concurrent use; callers serialize whole command
// sequences (write burst, poll, read burst) themselves.
package bus

import "errors"

// Write is one addressed register store.
type Write struct {
	Addr uint32
	Data uint32
}

// Bus issues register bursts to a device.
type Bus interface {
	// Write stores every word in order. The last write starts execution when
	// it targets CMD.
	Write(ws []Write) error
	// Read loads addrs into dst. len(dst) must be at least len(addrs).
	Read(addrs []uint32, dst []uint32) error
	// State returns the current STATE register.
	State() (uint32, error)
}

var (
	// ErrShortRead indicates dst cannot hold every requested address.
	ErrShortRead = errors.New("bus: destination shorter than address list")
	// ErrClosed indicates use of a closed bus.
	ErrClosed = errors.New("bus: closed")
)
