package buf

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEndianHelpers(t *testing.T) {
	data := []byte{0x01, 0x23, 0x45, 0x67, 0x89, 0xab, 0xcd, 0xef}

	require.Equal(t, uint32(0x67452301), U32LE(data))
	require.Equal(t, uint64(0xefcdab8967452301), U64LE(data))

	short := []byte{0xAA}
	require.Zero(t, U32LE(short))
	require.Zero(t, U64LE(short))
}

func TestPutU32LE(t *testing.T) {
	b := make([]byte, 4)
	PutU32LE(b, 0xdeadbeef)
	require.Equal(t, []byte{0xef, 0xbe, 0xad, 0xde}, b)

	short := []byte{0xAA}
	PutU32LE(short, 1)
	require.Equal(t, []byte{0xAA}, short)
}

func TestWords(t *testing.T) {
	b := []byte{1, 0, 0, 0, 2, 0, 0, 0, 3, 0}
	dst := make([]uint32, 4)
	require.Equal(t, 2, Words(dst, b))
	require.Equal(t, []uint32{1, 2, 0, 0}, dst)
}
