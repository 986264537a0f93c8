package codec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/spukit/internal/format"
	"github.com/joshuapare/spukit/pkg/types"
	"github.com/joshuapare/spukit/spu/registry"
)

func newRegistry(t *testing.T, n int) (*registry.Registry, []types.GSID) {
	t.Helper()
	r := registry.New(registry.DefaultOptions())
	ids := make([]types.GSID, n)
	for i := range ids {
		var err error
		ids[i], err = r.Create()
		require.NoError(t, err)
	}
	return r, ids
}

func TestLayoutOf(t *testing.T) {
	tests := []struct {
		op     types.Op
		layout Layout
		result ResultLayout
		writes int
		reads  int
	}{
		{types.OpCreate, LayoutNone, ResultGSID, 0, 0},
		{types.OpDestroy, LayoutID, ResultPower, 1, 1},
		{types.OpInsert, LayoutIDKeyValue, ResultPower, 2*types.Weight + 1, 1},
		{types.OpDelete, LayoutIDKey, ResultPower, types.Weight + 1, 1},
		{types.OpSearch, LayoutIDKey, ResultPair, types.Weight + 1, 2*types.Weight + 1},
		{types.OpMin, LayoutIDOnly, ResultPair, 1, 2*types.Weight + 1},
		{types.OpMax, LayoutIDOnly, ResultPair, 1, 2*types.Weight + 1},
		{types.OpNext, LayoutIDKey, ResultPair, types.Weight + 1, 2*types.Weight + 1},
		{types.OpPrev, LayoutIDKey, ResultPair, types.Weight + 1, 2*types.Weight + 1},
		{types.OpNSM, LayoutIDKey, ResultPair, types.Weight + 1, 2*types.Weight + 1},
		{types.OpNGR, LayoutIDKey, ResultPair, types.Weight + 1, 2*types.Weight + 1},
		{types.OpAnd, LayoutIDPair, ResultPower, 1, 1},
		{types.OpOr, LayoutIDPair, ResultPower, 1, 1},
		{types.OpNot, LayoutIDPair, ResultPower, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			l, r, err := LayoutOf(tt.op)
			require.NoError(t, err)
			require.Equal(t, tt.layout, l)
			require.Equal(t, tt.result, r)
			require.Equal(t, tt.writes, l.WriteWords())
			require.Equal(t, tt.reads, r.ReadWords())
		})
	}

	_, _, err := LayoutOf(types.Op(0x1f))
	require.True(t, types.IsKind(err, types.ErrKindFormat))
}

func TestEncode_ResolvesSlotsAndPacksWord(t *testing.T) {
	r, ids := newRegistry(t, 2)
	key := types.KeyOf(0x1234)
	val := types.ValueOf(0x5678)

	c, err := Encode(r, types.OpInsert, types.PFlag|types.RFlag, Payload{ID: ids[1], Key: key, Value: val})
	require.NoError(t, err)
	require.Equal(t, LayoutIDKeyValue, c.Layout)
	require.Equal(t, Slots{A: 2}, c.Slots)
	require.Equal(t, key, c.Payload.Key)
	require.Equal(t, val, c.Payload.Value)

	op, flags, a, b, rr := format.SplitCommandWord(c.Word())
	require.Equal(t, uint8(types.OpInsert), op)
	require.Equal(t, uint8(types.PFlag|types.RFlag), flags)
	require.Equal(t, uint8(2), a)
	require.Zero(t, b)
	require.Zero(t, rr)
}

func TestEncode_DropsFieldsOutsideLayout(t *testing.T) {
	r, ids := newRegistry(t, 1)
	c, err := Encode(r, types.OpMin, types.DefaultQueryFlags, Payload{ID: ids[0], Key: types.KeyOf(9)})
	require.NoError(t, err)
	require.Equal(t, types.Key{}, c.Payload.Key)
	require.Equal(t, ids[0], c.PowerTarget())
}

func TestEncode_SetOperationTargetDefaultsToA(t *testing.T) {
	r, ids := newRegistry(t, 3)

	c, err := Encode(r, types.OpAnd, types.NoFlags, Payload{ID: ids[0], Other: ids[1]})
	require.NoError(t, err)
	require.Equal(t, Slots{A: 1, B: 2, R: 1}, c.Slots)
	require.Equal(t, ids[0], c.PowerTarget())

	c, err = Encode(r, types.OpNot, types.NoFlags, Payload{ID: ids[0], Other: ids[1], Target: ids[2]})
	require.NoError(t, err)
	require.Equal(t, Slots{A: 1, B: 2, R: 3}, c.Slots)
	require.Equal(t, ids[2], c.PowerTarget())
}

func TestEncode_Unresolvable(t *testing.T) {
	r, ids := newRegistry(t, 2)
	_, err := r.Destroy(ids[1])
	require.NoError(t, err)

	for _, op := range []types.Op{types.OpDestroy, types.OpInsert, types.OpSearch, types.OpMax} {
		_, err := Encode(r, op, types.NoFlags, Payload{ID: ids[1]})
		require.ErrorIs(t, err, types.ErrUnresolvable, op.String())
		require.ErrorIs(t, err, types.ErrNotFound, op.String())
	}

	// Any identifier of a set operation must resolve.
	_, err = Encode(r, types.OpOr, types.NoFlags, Payload{ID: ids[0], Other: ids[1]})
	require.True(t, types.IsKind(err, types.ErrKindUnresolvable))

	// Create carries no identifier.
	c, err := Encode(r, types.OpCreate, types.NoFlags, Payload{ID: ids[1]})
	require.NoError(t, err)
	require.Equal(t, LayoutNone, c.Layout)
}

func TestDecode_Pair(t *testing.T) {
	words := []uint32{1, 2, 3, 4, 9}
	res, err := Decode(ResultPair, format.ReadyMask, words)
	require.NoError(t, err)
	require.Equal(t, types.StatusOK, res.Status)
	require.Equal(t, types.Key{1, 2}, res.Key)
	require.Equal(t, types.Value{3, 4}, res.Value)
	require.Equal(t, uint32(9), res.Power)
	require.True(t, res.Pair().OK())
}

func TestDecode_ErrorLeavesSentinel(t *testing.T) {
	res, err := Decode(ResultPair, format.ReadyMask|format.ErrMask, []uint32{1, 2, 3, 4, 9})
	require.NoError(t, err)
	require.Equal(t, types.StatusError, res.Status)
	require.Equal(t, types.Key{}, res.Key)
	require.Equal(t, types.Value{}, res.Value)
	require.Equal(t, uint32(9), res.Power)
	require.Equal(t, types.MissPair, res.Pair())
}

func TestDecode_Power(t *testing.T) {
	res, err := Decode(ResultPower, format.ReadyMask, []uint32{42})
	require.NoError(t, err)
	require.Equal(t, uint32(42), res.Power)
}

func TestDecode_WrongShape(t *testing.T) {
	_, err := Decode(ResultPair, format.ReadyMask, []uint32{1})
	require.True(t, types.IsKind(err, types.ErrKindFormat))

	_, err = Decode(ResultGSID, format.ReadyMask, nil)
	require.True(t, types.IsKind(err, types.ErrKindFormat))
	require.False(t, errors.Is(err, types.ErrNotFound))
}

func TestCreated(t *testing.T) {
	_, ids := newRegistry(t, 1)
	res := Created(ids[0])
	require.Equal(t, ResultGSID, res.Layout)
	require.Equal(t, ids[0], res.ID)
	require.Equal(t, types.StatusOK, res.Status)
}
