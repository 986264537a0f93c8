package types

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// Typed Errors (stable categories for programmatic handling)
// -----------------------------------------------------------------------------

// ErrKind classifies errors so callers can branch on intent rather than text.
type ErrKind int

const (
	ErrKindResourceExhausted ErrKind = iota // registry cannot issue another structure
	ErrKindNotFound                         // unknown or destroyed GSID
	ErrKindUnresolvable                     // command carries an identifier that does not resolve
	ErrKindBusFailure                       // register read/write primitive failed
	ErrKindTimeout                          // device never raised READY within the poll bound
	ErrKindUnsupported                      // operation not available on this backend
	ErrKindState                            // invalid operation for current state (e.g. closed)
	ErrKindFormat                           // malformed command, layout or input text
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindResourceExhausted:
		return "resource exhausted"
	case ErrKindNotFound:
		return "not found"
	case ErrKindUnresolvable:
		return "unresolvable"
	case ErrKindBusFailure:
		return "bus failure"
	case ErrKindTimeout:
		return "timeout"
	case ErrKindUnsupported:
		return "unsupported"
	case ErrKindState:
		return "invalid state"
	case ErrKindFormat:
		return "format"
	default:
		return fmt.Sprintf("ErrKind(%d)", int(k))
	}
}

// Error is a typed error with an optional underlying cause.
type Error struct {
	Kind ErrKind
	Msg  string
	Err  error // optional underlying cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound)
// holds for every NotFound regardless of message or cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return t.Kind == e.Kind
}

// NewError builds a typed error of kind with a formatted message and cause.
func NewError(kind ErrKind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: cause}
}

// IsKind reports whether err (or anything it wraps) is an *Error of kind.
func IsKind(err error, kind ErrKind) bool {
	var te *Error
	if !errors.As(err, &te) {
		return false
	}
	return te.Kind == kind
}

// Sentinels commonly returned by implementations.
var (
	// ErrResourceExhausted indicates every device slot is already bound.
	ErrResourceExhausted = &Error{Kind: ErrKindResourceExhausted, Msg: "no free structure slot"}
	// ErrNotFound indicates the GSID is unknown or already destroyed.
	ErrNotFound = &Error{Kind: ErrKindNotFound, Msg: "structure not found"}
	// ErrUnresolvable indicates a command could not be encoded because an identifier did not resolve.
	ErrUnresolvable = &Error{Kind: ErrKindUnresolvable, Msg: "identifier could not be resolved"}
	// ErrBusFailure indicates the transport reported an error.
	ErrBusFailure = &Error{Kind: ErrKindBusFailure, Msg: "bus transaction failed"}
	// ErrTimeout indicates the device did not complete a command within the poll bound.
	ErrTimeout = &Error{Kind: ErrKindTimeout, Msg: "device did not become ready"}
	// ErrUnsupported indicates the backend cannot answer this operation.
	ErrUnsupported = &Error{Kind: ErrKindUnsupported, Msg: "operation not supported by backend"}
	// ErrClosed indicates an operation on a destroyed structure or closed registry.
	ErrClosed = &Error{Kind: ErrKindState, Msg: "structure is closed"}
)

// -----------------------------------------------------------------------------
// Core Identifiers
// -----------------------------------------------------------------------------

// GSID is a global structure identifier. Seq is issued monotonically by one
// registry; Domain names that registry so identifiers from different
// registries never compare equal. The zero GSID is never issued.
type GSID struct {
	Domain uuid.UUID
	Seq    uint64
}

// IsZero reports whether id is the unissued zero identifier.
func (id GSID) IsZero() bool { return id.Seq == 0 && id.Domain == uuid.Nil }

func (id GSID) String() string {
	return fmt.Sprintf("%s/%d", id.Domain, id.Seq)
}

// -----------------------------------------------------------------------------
// Keys, values and results
// -----------------------------------------------------------------------------

// Key is a packed key, word 0 holding the least significant bits.
type Key [Weight]uint32

// Value is the payload stored under a key. It has the same shape as Key.
type Value [Weight]uint32

// KeyOf builds a key from a scalar, spilling into word 1 when Weight allows.
func KeyOf(v uint64) Key {
	var k Key
	k[0] = uint32(v)
	if Weight > 1 {
		k[1] = uint32(v >> WordBits)
	}
	return k
}

// ValueOf builds a value from a scalar the same way KeyOf does.
func ValueOf(v uint64) Value { return Value(KeyOf(v)) }

// Uint64 returns the low 64 bits of the key.
func (k Key) Uint64() uint64 {
	v := uint64(k[0])
	if Weight > 1 {
		v |= uint64(k[1]) << WordBits
	}
	return v
}

// Uint64 returns the low 64 bits of the value.
func (v Value) Uint64() uint64 { return Key(v).Uint64() }

// Compare orders keys as unsigned integers, highest word first.
func (k Key) Compare(o Key) int {
	for i := Weight - 1; i >= 0; i-- {
		switch {
		case k[i] < o[i]:
			return -1
		case k[i] > o[i]:
			return 1
		}
	}
	return 0
}

func (k Key) String() string {
	s := "0x"
	for i := Weight - 1; i >= 0; i-- {
		s += fmt.Sprintf("%08x", k[i])
	}
	return s
}

func (v Value) String() string { return Key(v).String() }

// Status is the outcome of a device operation.
type Status uint8

const (
	StatusOK Status = iota
	StatusError
)

func (s Status) String() string {
	if s == StatusOK {
		return "OK"
	}
	return "ERR"
}

// Pair is the result of every key-oriented query. When Status is StatusError
// Key and Value hold the zero sentinel and must not be interpreted.
type Pair struct {
	Key    Key
	Value  Value
	Status Status
}

// MissPair is the sentinel pair returned when a query has no answer.
var MissPair = Pair{Status: StatusError}

// OK reports whether the pair carries a real key/value.
func (p Pair) OK() bool { return p.Status == StatusOK }

// Entry is one element of a batched insert.
type Entry struct {
	Key   Key
	Value Value
}

// -----------------------------------------------------------------------------
// Operations and flags
// -----------------------------------------------------------------------------

// Op is a device opcode. The numeric values are the wire encoding.
type Op uint8

const (
	OpCreate  Op = 0x01 // ADDS
	OpDestroy Op = 0x02 // DELS
	OpInsert  Op = 0x03
	OpDelete  Op = 0x04
	OpSearch  Op = 0x05
	OpMin     Op = 0x06
	OpMax     Op = 0x07
	OpNext    Op = 0x08
	OpPrev    Op = 0x09
	OpNSM     Op = 0x0a // next smaller
	OpNGR     Op = 0x0b // next greater
	OpAnd     Op = 0x0c // R = A ∩ B
	OpOr      Op = 0x0d // R = A ∪ B
	OpNot     Op = 0x0e // R = A \ B
)

var opNames = map[Op]string{
	OpCreate:  "ADDS",
	OpDestroy: "DELS",
	OpInsert:  "INS",
	OpDelete:  "DEL",
	OpSearch:  "SRCH",
	OpMin:     "MIN",
	OpMax:     "MAX",
	OpNext:    "NEXT",
	OpPrev:    "PREV",
	OpNSM:     "NSM",
	OpNGR:     "NGR",
	OpAnd:     "AND",
	OpOr:      "OR",
	OpNot:     "NOT",
}

func (o Op) String() string {
	if n, ok := opNames[o]; ok {
		return n
	}
	return fmt.Sprintf("Op(0x%02x)", uint8(o))
}

// Valid reports whether o is a known opcode.
func (o Op) Valid() bool {
	_, ok := opNames[o]
	return ok
}

// Flags are modifier bits ORed into the command byte above the opcode.
type Flags uint8

const (
	NoFlags Flags = 0
	PFlag   Flags = 1 << 5 // primary addressing
	QFlag   Flags = 1 << 6 // alternate (queue) addressing
	RFlag   Flags = 1 << 7 // reverse/result variant

	// FlagsMask covers every modifier bit.
	FlagsMask = PFlag | QFlag | RFlag

	// DefaultInsertFlags is used by mutating calls when the caller has no preference.
	DefaultInsertFlags = NoFlags
	// DefaultQueryFlags is used by queries when the caller has no preference.
	DefaultQueryFlags = PFlag
)

func (f Flags) String() string {
	s := ""
	if f&PFlag != 0 {
		s += "P"
	}
	if f&QFlag != 0 {
		s += "Q"
	}
	if f&RFlag != 0 {
		s += "R"
	}
	if s == "" {
		return "-"
	}
	return s
}
