package format

import "github.com/joshuapare/spukit/internal/buf"

// Register windows are little-endian, one 32-bit word per address. These
// helpers convert word addresses to byte offsets inside a mapped window or a
// register dump.

// Offset returns the byte offset of register addr.
func Offset(addr uint32) int {
	return int(addr) * WordSize
}

// PutWord writes v to register addr of a byte window.
func PutWord(b []byte, addr uint32, v uint32) {
	off := Offset(addr)
	buf.PutU32LE(b[off:off+WordSize], v)
}

// ReadWord reads register addr of a byte window.
func ReadWord(b []byte, addr uint32) uint32 {
	off := Offset(addr)
	return buf.U32LE(b[off : off+WordSize])
}
