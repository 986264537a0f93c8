package codec

import (
	"fmt"

	"github.com/joshuapare/spukit/pkg/types"
)

// Layout is the command payload shape an operation carries.
type Layout uint8

const (
	LayoutNone        Layout = iota // op + flags only (Create)
	LayoutID                        // structure (Destroy)
	LayoutIDKeyValue                // structure + key + value (Insert)
	LayoutIDKey                     // structure + key (Delete, Search, Next, Prev, NSM, NGR)
	LayoutIDOnly                    // structure, key-returning (Min, Max)
	LayoutIDPair                    // two structures + optional result target (And, Or, Not)
)

func (l Layout) String() string {
	switch l {
	case LayoutNone:
		return "none"
	case LayoutID:
		return "id"
	case LayoutIDKeyValue:
		return "id+key+value"
	case LayoutIDKey:
		return "id+key"
	case LayoutIDOnly:
		return "id-only"
	case LayoutIDPair:
		return "id-pair"
	default:
		return fmt.Sprintf("Layout(%d)", uint8(l))
	}
}

// KeyWords is the number of KEY registers the layout writes.
func (l Layout) KeyWords() int {
	if l == LayoutIDKeyValue || l == LayoutIDKey {
		return types.Weight
	}
	return 0
}

// ValueWords is the number of VAL registers the layout writes.
func (l Layout) ValueWords() int {
	if l == LayoutIDKeyValue {
		return types.Weight
	}
	return 0
}

// WriteWords is the size of the write burst: key words, value words and the
// command word. Create issues no burst at all.
func (l Layout) WriteWords() int {
	if l == LayoutNone {
		return 0
	}
	return l.KeyWords() + l.ValueWords() + 1
}

// ResultLayout is the shape of the answer to a command.
type ResultLayout uint8

const (
	ResultGSID  ResultLayout = iota // status + identifier (Create)
	ResultPower                     // status + power
	ResultPair                      // status + key + value + power
)

func (r ResultLayout) String() string {
	switch r {
	case ResultGSID:
		return "gsid"
	case ResultPower:
		return "power"
	case ResultPair:
		return "pair"
	default:
		return fmt.Sprintf("ResultLayout(%d)", uint8(r))
	}
}

// ReadWords is the size of the read burst: key and value words for pair
// results, then the power word. Identifier results are never read from the bus.
func (r ResultLayout) ReadWords() int {
	switch r {
	case ResultPower:
		return 1
	case ResultPair:
		return 2*types.Weight + 1
	default:
		return 0
	}
}

type opShape struct {
	layout Layout
	result ResultLayout
}

var shapes = map[types.Op]opShape{
	types.OpCreate:  {LayoutNone, ResultGSID},
	types.OpDestroy: {LayoutID, ResultPower},
	types.OpInsert:  {LayoutIDKeyValue, ResultPower},
	types.OpDelete:  {LayoutIDKey, ResultPower},
	types.OpSearch:  {LayoutIDKey, ResultPair},
	types.OpMin:     {LayoutIDOnly, ResultPair},
	types.OpMax:     {LayoutIDOnly, ResultPair},
	types.OpNext:    {LayoutIDKey, ResultPair},
	types.OpPrev:    {LayoutIDKey, ResultPair},
	types.OpNSM:     {LayoutIDKey, ResultPair},
	types.OpNGR:     {LayoutIDKey, ResultPair},
	types.OpAnd:     {LayoutIDPair, ResultPower},
	types.OpOr:      {LayoutIDPair, ResultPower},
	types.OpNot:     {LayoutIDPair, ResultPower},
}

// LayoutOf returns the command and result layouts of op.
func LayoutOf(op types.Op) (Layout, ResultLayout, error) {
	s, ok := shapes[op]
	if !ok {
		return 0, 0, types.NewError(types.ErrKindFormat, nil, "codec: unknown opcode %s", op)
	}
	return s.layout, s.result, nil
}
