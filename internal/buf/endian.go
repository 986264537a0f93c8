// Package buf contains bounds and little-endian word helpers for register
// windows and register dumps.
package buf

import "encoding/binary"

// U32LE reads a little-endian uint32 from b. Returns 0 when b is too short.
func U32LE(b []byte) uint32 {
	if len(b) < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// PutU32LE writes v little-endian into b. It is a no-op when b is too short.
func PutU32LE(b []byte, v uint32) {
	if len(b) < 4 {
		return
	}
	binary.LittleEndian.PutUint32(b, v)
}

// U64LE reads a little-endian uint64 from b. Returns 0 when b is too short.
func U64LE(b []byte) uint64 {
	if len(b) < 8 {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// Words decodes consecutive little-endian words from b into dst and returns
// the number of words decoded.
func Words(dst []uint32, b []byte) int {
	n := 0
	for n < len(dst) && len(b) >= 4 {
		dst[n] = binary.LittleEndian.Uint32(b)
		b = b[4:]
		n++
	}
	return n
}
