package types

// ============================================================================
// SPU Geometry
// ============================================================================
// These constants describe the accelerator the driver talks to. Weight is
// fixed at synthesis time, so it is a compile-time constant here too.

const (
	// WordBits is the width of one bus word and one key word.
	WordBits = 32

	// Weight is the number of words used to represent one key (and one value).
	Weight = 2

	// KeyBits is the total number of key bits the device compares.
	KeyBits = Weight * WordBits

	// MaxSlots is the number of structures the device can hold at once.
	// Slot 0 is reserved and never issued.
	MaxSlots = 255
)
