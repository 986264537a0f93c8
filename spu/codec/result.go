package codec

import (
	"github.com/joshuapare/spukit/internal/format"
	"github.com/joshuapare/spukit/pkg/types"
)

// Result is a decoded device answer. Key and Value are meaningful only for
// ResultPair with Status OK; ID only for ResultGSID.
type Result struct {
	Layout ResultLayout
	Status types.Status
	ID     types.GSID
	Key    types.Key
	Value  types.Value
	Power  uint32
}

// Pair returns the key/value view of the result, or types.MissPair with the
// zero sentinel when Status is not OK.
func (r Result) Pair() types.Pair {
	if r.Status != types.StatusOK {
		return types.MissPair
	}
	return types.Pair{Key: r.Key, Value: r.Value, Status: types.StatusOK}
}

// Created builds the result of a Create, which never touches the bus.
func Created(id types.GSID) Result {
	return Result{Layout: ResultGSID, Status: types.StatusOK, ID: id}
}

// Decode interprets a read burst. words must hold exactly rl.ReadWords()
// values in read order: key words, value words, power. The ERR bit of state
// yields StatusError with the key and value left at the zero sentinel; power
// is still reported.
func Decode(rl ResultLayout, state uint32, words []uint32) (Result, error) {
	want := rl.ReadWords()
	if want == 0 {
		return Result{}, types.NewError(types.ErrKindFormat, nil, "codec: %s results are not read from the bus", rl)
	}
	if len(words) != want {
		return Result{}, types.NewError(types.ErrKindFormat, nil,
			"codec: %s result needs %d words, got %d", rl, want, len(words))
	}

	res := Result{Layout: rl, Status: types.StatusOK, Power: words[want-1]}
	if format.Failed(state) {
		res.Status = types.StatusError
		return res, nil
	}
	if rl == ResultPair {
		copy(res.Key[:], words[:types.Weight])
		copy(res.Value[:], words[types.Weight:2*types.Weight])
	}
	return res, nil
}
