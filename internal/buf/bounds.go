package buf

import (
	"fmt"
	"math"
)

// AddOverflowSafe adds a and b, returning ok = false when the result would overflow int.
func AddOverflowSafe(a, b int) (int, bool) {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return 0, false
	case b < 0 && a < math.MinInt-b:
		return 0, false
	default:
		return a + b, true
	}
}

// MulOverflowSafe multiplies two non-negative ints, returning ok = false on overflow
// or when either operand is negative. Used for count * wordSize calculations.
func MulOverflowSafe(a, b int) (int, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > math.MaxInt/b {
		return 0, false
	}
	return a * b, true
}

// CheckWords validates that count words of wordSize bytes fit in a window of
// windowLen bytes starting at byte offset off. Returns the end offset.
//
//	end, err := buf.CheckWords(len(window), off, n, 4)
//	if err != nil {
//	    return fmt.Errorf("mmio: %w", err)
//	}
func CheckWords(windowLen, off, count, wordSize int) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("negative offset: %d", off)
	}
	if count < 0 {
		return 0, fmt.Errorf("negative count: %d", count)
	}
	size, ok := MulOverflowSafe(count, wordSize)
	if !ok {
		return 0, fmt.Errorf("overflow: count=%d * wordSize=%d", count, wordSize)
	}
	end, ok := AddOverflowSafe(off, size)
	if !ok {
		return 0, fmt.Errorf("overflow: offset=%d + size=%d", off, size)
	}
	if end > windowLen {
		return 0, fmt.Errorf("bounds: end=%d > len=%d", end, windowLen)
	}
	return end, nil
}

// Slice returns the sub-slice [off:off+n] if it fits within len(b).
func Slice(b []byte, off, n int) ([]byte, bool) {
	if off < 0 || n < 0 || off > len(b) {
		return nil, false
	}
	end, ok := AddOverflowSafe(off, n)
	if !ok || end > len(b) {
		return nil, false
	}
	return b[off:end], true
}

// Has reports whether b[off:off+n] is within bounds.
func Has(b []byte, off, n int) bool {
	_, ok := Slice(b, off, n)
	return ok
}
