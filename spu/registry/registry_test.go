package registry

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/spukit/pkg/types"
)

func TestCreate_StartsAtZeroPower(t *testing.T) {
	r := New(DefaultOptions())
	id, err := r.Create()
	require.NoError(t, err)
	require.False(t, id.IsZero())
	require.Equal(t, r.Domain(), id.Domain)

	s, err := r.Resolve(id)
	require.NoError(t, err)
	require.Equal(t, uint32(0), s.Power)
	require.Equal(t, uint8(1), s.Index)
}

func TestCreate_MonotonicIDs(t *testing.T) {
	r := New(DefaultOptions())
	var prev uint64
	for i := 0; i < 10; i++ {
		id, err := r.Create()
		require.NoError(t, err)
		require.Greater(t, id.Seq, prev)
		prev = id.Seq
	}
}

func TestResolve_DestroyedIsNotFound(t *testing.T) {
	r := New(DefaultOptions())
	a, err := r.Create()
	require.NoError(t, err)
	require.NoError(t, r.SetPower(a, 5))

	power, err := r.Destroy(a)
	require.NoError(t, err)
	require.Equal(t, uint32(5), power)

	// A new structure reuses the slot but never the identifier.
	b, err := r.Create()
	require.NoError(t, err)
	require.NotEqual(t, a, b)

	sb, err := r.Resolve(b)
	require.NoError(t, err)
	require.Equal(t, uint8(1), sb.Index)

	_, err = r.Resolve(a)
	require.Error(t, err)
	require.True(t, errors.Is(err, types.ErrNotFound))
	require.True(t, types.IsKind(err, types.ErrKindNotFound))

	_, err = r.Destroy(a)
	require.ErrorIs(t, err, types.ErrNotFound)
	require.ErrorIs(t, r.SetPower(a, 1), types.ErrNotFound)
}

func TestCreate_ResourceExhausted(t *testing.T) {
	r := New(Options{MaxSlots: 2})
	a, err := r.Create()
	require.NoError(t, err)
	_, err = r.Create()
	require.NoError(t, err)

	_, err = r.Create()
	require.ErrorIs(t, err, types.ErrResourceExhausted)

	_, err = r.Destroy(a)
	require.NoError(t, err)
	_, err = r.Create()
	require.NoError(t, err)
}

func TestSlots_LowestFreeFirst(t *testing.T) {
	r := New(Options{MaxSlots: 4})
	ids := make([]types.GSID, 4)
	for i := range ids {
		var err error
		ids[i], err = r.Create()
		require.NoError(t, err)
	}
	_, err := r.Destroy(ids[2])
	require.NoError(t, err)
	_, err = r.Destroy(ids[0])
	require.NoError(t, err)

	c, err := r.Create()
	require.NoError(t, err)
	s, err := r.Resolve(c)
	require.NoError(t, err)
	require.Equal(t, uint8(1), s.Index)

	slots := r.Slots()
	require.Len(t, slots, 3)
	require.Equal(t, uint8(1), slots[0].Index)
	require.Equal(t, uint8(2), slots[1].Index)
	require.Equal(t, uint8(4), slots[2].Index)
}

func TestDomains_DoNotAlias(t *testing.T) {
	r1 := New(DefaultOptions())
	r2 := New(DefaultOptions())
	a, err := r1.Create()
	require.NoError(t, err)
	b, err := r2.Create()
	require.NoError(t, err)

	require.Equal(t, a.Seq, b.Seq)
	require.NotEqual(t, a, b)
	_, err = r2.Resolve(a)
	require.ErrorIs(t, err, types.ErrNotFound)
}

func TestFixedDomain(t *testing.T) {
	d := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	r := New(Options{Domain: d})
	id, err := r.Create()
	require.NoError(t, err)
	require.Equal(t, d, id.Domain)
	require.Equal(t, "6ba7b810-9dad-11d1-80b4-00c04fd430c8/1", id.String())
}

func TestClose(t *testing.T) {
	r := New(DefaultOptions())
	id, err := r.Create()
	require.NoError(t, err)
	require.Equal(t, 1, r.Len())

	require.NoError(t, r.Close())
	require.Equal(t, 0, r.Len())

	_, err = r.Resolve(id)
	require.ErrorIs(t, err, types.ErrNotFound)
	_, err = r.Create()
	require.ErrorIs(t, err, types.ErrClosed)
}
