package bus

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"github.com/joshuapare/spukit/internal/buf"
	"github.com/joshuapare/spukit/internal/format"
	"github.com/joshuapare/spukit/internal/mmfile"
)

// MMIO drives a device through a memory-mapped register window. Every access
// is a single aligned 32-bit atomic load or store, so the compiler never
// splits, merges or elides a register access.
type MMIO struct {
	window  []byte
	cleanup func() error
}

// NewMMIO wraps an already mapped window. The window must cover
// format.WindowBytes and be 4-byte aligned.
func NewMMIO(window []byte) (*MMIO, error) {
	if len(window) < format.WindowBytes {
		return nil, fmt.Errorf("%w: %d < %d bytes", format.ErrWindowTooSmall, len(window), format.WindowBytes)
	}
	if uintptr(unsafe.Pointer(&window[0]))%format.WordSize != 0 {
		return nil, fmt.Errorf("bus: register window is not word aligned")
	}
	return &MMIO{window: window}, nil
}

// Open maps the register window of the device file at path (a PCI resource,
// a UIO map, or a regular file standing in for one) starting at offset.
func Open(path string, offset int64) (*MMIO, error) {
	data, cleanup, err := mmfile.Map(path, offset, format.WindowBytes)
	if err != nil {
		return nil, err
	}
	m, err := NewMMIO(data)
	if err != nil {
		_ = cleanup()
		return nil, err
	}
	m.cleanup = cleanup
	return m, nil
}

func (m *MMIO) reg(addr uint32) (*uint32, error) {
	if m.window == nil {
		return nil, ErrClosed
	}
	off := format.Offset(addr)
	if _, err := buf.CheckWords(len(m.window), off, 1, format.WordSize); err != nil {
		return nil, fmt.Errorf("%w: 0x%02x: %v", format.ErrBadAddress, addr, err)
	}
	return (*uint32)(unsafe.Pointer(&m.window[off])), nil
}

// Write implements Bus.
func (m *MMIO) Write(ws []Write) error {
	for _, w := range ws {
		p, err := m.reg(w.Addr)
		if err != nil {
			return err
		}
		atomic.StoreUint32(p, w.Data)
	}
	return nil
}

// Read implements Bus.
func (m *MMIO) Read(addrs []uint32, dst []uint32) error {
	if len(dst) < len(addrs) {
		return ErrShortRead
	}
	for i, a := range addrs {
		p, err := m.reg(a)
		if err != nil {
			return err
		}
		dst[i] = atomic.LoadUint32(p)
	}
	return nil
}

// State implements Bus.
func (m *MMIO) State() (uint32, error) {
	p, err := m.reg(format.StateReg)
	if err != nil {
		return 0, err
	}
	return atomic.LoadUint32(p), nil
}

// Sync flushes a file-backed window. Device windows ignore it.
func (m *MMIO) Sync() error {
	if m.window == nil {
		return ErrClosed
	}
	return mmfile.Sync(m.window)
}

// Close unmaps a window obtained from Open. Wrapped windows are only detached.
func (m *MMIO) Close() error {
	m.window = nil
	if m.cleanup == nil {
		return nil
	}
	err := m.cleanup()
	m.cleanup = nil
	return err
}
