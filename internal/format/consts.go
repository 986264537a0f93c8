// Package format houses the register map and command-word layout of the SPU
// bus interface. The goal is to keep every bit position in one place so the
// codec, the engine, the MMIO bus and the test device agree on the wire.
package format

const (
	// WordSize is the size of one bus register in bytes.
	WordSize = 4

	// Register word addresses. KEY and VAL are banks of Weight consecutive
	// registers; every other register is a single word.
	//
	// Layout (word address):
	//   0x00  STATE   read: READY/ERR bits
	//   0x01  CMD     write: command word, starts execution
	//   0x02  POWER   read: element count of the addressed structure
	//   0x10  KEY[0..Weight)
	//   0x20  VAL[0..Weight)
	StateReg = 0x00
	CmdReg   = 0x01
	PowerReg = 0x02
	KeyReg   = 0x10
	ValReg   = 0x20

	// BankSize is the address span reserved for each of KEY and VAL.
	BankSize = 0x10

	// WindowWords is the number of registers the device decodes.
	WindowWords = ValReg + BankSize

	// WindowBytes is the size of the register window in bytes.
	WindowBytes = WindowWords * WordSize
)

const (
	// ReadyBit is set in STATE once the last command completed.
	ReadyBit = 0
	// ErrBit is set in STATE when the last command completed without a result
	// (miss, empty structure, no neighbor).
	ErrBit = 1

	// ReadyMask and ErrMask are the STATE bits as masks.
	ReadyMask = 1 << ReadyBit
	ErrMask   = 1 << ErrBit
)

// Command word sub-fields.
//
//	bits  0..4   opcode
//	bits  5..7   modifier flags (P, Q, R)
//	bits  8..15  slot A
//	bits 16..23  slot B
//	bits 24..31  slot R
const (
	OpBits    = 5
	OpMask    = 1<<OpBits - 1
	FlagsMask = 0xe0
	CmdMask   = OpMask | FlagsMask

	SlotBits = 8
	SlotMask = 1<<SlotBits - 1

	SlotAShift = 8
	SlotBShift = 16
	SlotRShift = 24
)
