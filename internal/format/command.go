package format

// CommandWord packs the command byte (opcode | flags) and up to three slot
// references into the value written to CMD. Unused slots are zero.
func CommandWord(cmd uint8, a, b, r uint8) uint32 {
	return uint32(cmd)&CmdMask |
		uint32(a)<<SlotAShift |
		uint32(b)<<SlotBShift |
		uint32(r)<<SlotRShift
}

// SplitCommandWord is the inverse of CommandWord.
func SplitCommandWord(w uint32) (op, flags, a, b, r uint8) {
	op = uint8(w & OpMask)
	flags = uint8(w & FlagsMask)
	a = uint8(w >> SlotAShift & SlotMask)
	b = uint8(w >> SlotBShift & SlotMask)
	r = uint8(w >> SlotRShift & SlotMask)
	return op, flags, a, b, r
}

// Ready reports whether a STATE word has the READY bit set.
func Ready(state uint32) bool { return state&ReadyMask != 0 }

// Failed reports whether a STATE word has the ERR bit set.
func Failed(state uint32) bool { return state&ErrMask != 0 }
