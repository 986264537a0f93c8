package spu

import (
	"log/slog"

	"github.com/joshuapare/spukit/pkg/types"
	"github.com/joshuapare/spukit/spu/burst"
	"github.com/joshuapare/spukit/spu/registry"
	"github.com/joshuapare/spukit/spu/sim"
)

// Mode selects the backend a Client drives.
type Mode int

const (
	// ModeAuto uses the device when DevicePath is set and the simulation otherwise.
	ModeAuto Mode = iota
	// ModeHardware drives the device at DevicePath.
	ModeHardware
	// ModeSim keeps every structure in memory.
	ModeSim
	// ModeHybrid keeps data in memory and sends neighbor queries to the device.
	ModeHybrid
)

func (m Mode) String() string {
	switch m {
	case ModeAuto:
		return "auto"
	case ModeHardware:
		return "hardware"
	case ModeSim:
		return "sim"
	case ModeHybrid:
		return "hybrid"
	default:
		return "unknown"
	}
}

// Options configures Open.
type Options struct {
	// Mode selects the backend. Default: ModeAuto.
	Mode Mode

	// DevicePath is the register window to map (a PCI resource file, a UIO
	// device or a regular file standing in for one).
	DevicePath string

	// DeviceOffset is the page-aligned offset of the window inside DevicePath.
	DeviceOffset int64

	// Trace logs every register access at Debug level.
	Trace bool

	// Registry configures identifier issue and slot limits.
	Registry registry.Options

	// Engine configures polling bounds for device commands.
	Engine burst.Options

	// Sim configures the simulation backend. Fallback is set by Open in
	// ModeHybrid.
	Sim sim.Options

	// Logger is passed to every component. Nil uses the package logger.
	Logger *slog.Logger
}

// DefaultOptions returns options for an in-memory client that answers
// neighbor queries.
func DefaultOptions() Options {
	return Options{
		Mode:     ModeAuto,
		Registry: registry.DefaultOptions(),
		Engine:   burst.DefaultOptions(),
		Sim:      sim.Options{Neighbors: true},
	}
}

// Re-exported data model for callers that only import this package.
type (
	GSID   = types.GSID
	Key    = types.Key
	Value  = types.Value
	Pair   = types.Pair
	Entry  = types.Entry
	Flags  = types.Flags
	Op     = types.Op
	Status = types.Status
)

// Flag, status and set-operation constants (re-exported for convenience).
const (
	NoFlags            = types.NoFlags
	PFlag              = types.PFlag
	QFlag              = types.QFlag
	RFlag              = types.RFlag
	DefaultInsertFlags = types.DefaultInsertFlags
	DefaultQueryFlags  = types.DefaultQueryFlags
	StatusOK           = types.StatusOK
	StatusError        = types.StatusError
	OpAnd              = types.OpAnd
	OpOr               = types.OpOr
	OpNot              = types.OpNot
)

// KeyOf and ValueOf build keys and values from scalars.
var (
	KeyOf   = types.KeyOf
	ValueOf = types.ValueOf
)
