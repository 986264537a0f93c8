package sim

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/spukit/pkg/types"
	"github.com/joshuapare/spukit/spu/codec"
	"github.com/joshuapare/spukit/spu/registry"
	"github.com/joshuapare/spukit/spu/structure"
)

func k(v uint64) types.Key   { return types.KeyOf(v) }
func v(x uint64) types.Value { return types.ValueOf(x) }

func newStructure(t *testing.T, b structure.Backend) *structure.Structure {
	t.Helper()
	s, err := structure.New(context.Background(), b, structure.Options{})
	require.NoError(t, err)
	return s
}

func TestBasicOperations(t *testing.T) {
	ctx := context.Background()
	b := New(NewTables(nil), DefaultOptions())
	s := newStructure(t, b)

	p, err := s.Power()
	require.NoError(t, err)
	require.Zero(t, p)

	for i, key := range []uint64{3, 1, 4, 1, 5, 9} {
		st, err := s.Insert(ctx, k(key), v(uint64(i)), types.DefaultInsertFlags)
		require.NoError(t, err)
		require.Equal(t, types.StatusOK, st)
	}
	p, err = s.Power()
	require.NoError(t, err)
	require.Equal(t, uint32(5), p)

	lo, err := s.Min(ctx, types.DefaultQueryFlags)
	require.NoError(t, err)
	require.Equal(t, types.Pair{Key: k(1), Value: v(3)}, lo)

	hi, err := s.Max(ctx, types.DefaultQueryFlags)
	require.NoError(t, err)
	require.Equal(t, types.Pair{Key: k(9), Value: v(5)}, hi)

	st, err := s.Delete(ctx, k(4), types.DefaultInsertFlags)
	require.NoError(t, err)
	require.Equal(t, types.StatusOK, st)
	miss, err := s.Search(ctx, k(4), types.DefaultQueryFlags)
	require.NoError(t, err)
	require.Equal(t, types.MissPair, miss)

	st, err = s.Delete(ctx, k(4), types.DefaultInsertFlags)
	require.NoError(t, err)
	require.Equal(t, types.StatusError, st)
}

func TestNeighbors_UnsupportedByDefault(t *testing.T) {
	ctx := context.Background()
	s := newStructure(t, New(NewTables(nil), DefaultOptions()))
	_, err := s.Insert(ctx, k(1), v(1), types.NoFlags)
	require.NoError(t, err)

	for name, q := range map[string]func(context.Context, types.Key, types.Flags) (types.Pair, error){
		"next": s.Next, "prev": s.Prev, "nsm": s.NSM, "ngr": s.NGR,
	} {
		p, err := q(ctx, k(1), types.DefaultQueryFlags)
		require.ErrorIs(t, err, types.ErrUnsupported, name)
		require.Equal(t, types.MissPair, p, name)
	}
}

func TestNeighbors_UnsupportedReportsPower(t *testing.T) {
	ctx := context.Background()
	b := New(NewTables(nil), DefaultOptions())
	s := newStructure(t, b)
	for _, key := range []uint64{1, 2} {
		_, err := s.Insert(ctx, k(key), v(key), types.NoFlags)
		require.NoError(t, err)
	}

	res, err := b.Execute(ctx, types.OpNGR, types.DefaultQueryFlags, codec.Payload{ID: s.ID(), Key: k(1)})
	require.ErrorIs(t, err, types.ErrUnsupported)
	require.Equal(t, types.StatusError, res.Status)
	require.Equal(t, uint32(2), res.Power)
}

func TestNeighbors_FromOrderedMap(t *testing.T) {
	ctx := context.Background()
	s := newStructure(t, New(NewTables(nil), Options{Neighbors: true}))
	for _, key := range []uint64{10, 20, 30} {
		_, err := s.Insert(ctx, k(key), v(key), types.NoFlags)
		require.NoError(t, err)
	}

	p, err := s.Next(ctx, k(20), types.DefaultQueryFlags)
	require.NoError(t, err)
	require.Equal(t, k(30), p.Key)

	p, err = s.Prev(ctx, k(20), types.DefaultQueryFlags)
	require.NoError(t, err)
	require.Equal(t, k(10), p.Key)

	p, err = s.NSM(ctx, k(25), types.DefaultQueryFlags)
	require.NoError(t, err)
	require.Equal(t, k(20), p.Key)

	p, err = s.NGR(ctx, k(30), types.DefaultQueryFlags)
	require.NoError(t, err)
	require.False(t, p.OK())
}

type recordingBackend struct {
	structure.Backend
	ops []types.Op
}

func (r *recordingBackend) Execute(ctx context.Context, op types.Op, f types.Flags, p codec.Payload) (codec.Result, error) {
	r.ops = append(r.ops, op)
	return codec.Result{Layout: codec.ResultPair, Status: types.StatusOK, Key: p.Key, Value: types.ValueOf(77)}, nil
}

func TestNeighbors_HybridFallback(t *testing.T) {
	ctx := context.Background()
	fb := &recordingBackend{}
	s := newStructure(t, New(NewTables(nil), Options{Fallback: fb}))

	p, err := s.NGR(ctx, k(5), types.DefaultQueryFlags)
	require.NoError(t, err)
	require.Equal(t, types.ValueOf(77), p.Value)

	_, err = s.Min(ctx, types.DefaultQueryFlags)
	require.NoError(t, err)
	require.Equal(t, []types.Op{types.OpNGR}, fb.ops)
}

func TestReattach_SharedTables(t *testing.T) {
	ctx := context.Background()
	tables := NewTables(nil)
	a := New(tables, DefaultOptions())
	b := New(tables, DefaultOptions())

	s := newStructure(t, a)
	_, err := s.Insert(ctx, k(1), v(100), types.NoFlags)
	require.NoError(t, err)

	res, err := b.Execute(ctx, types.OpSearch, types.DefaultQueryFlags, codec.Payload{ID: s.ID(), Key: k(1)})
	require.NoError(t, err)
	require.Equal(t, v(100), res.Value)

	power, err := b.Power(s.ID())
	require.NoError(t, err)
	require.Equal(t, uint32(1), power)
}

func TestDestroy(t *testing.T) {
	ctx := context.Background()
	tables := NewTables(nil)
	b := New(tables, DefaultOptions())
	s := newStructure(t, b)
	_, err := s.Insert(ctx, k(1), v(1), types.NoFlags)
	require.NoError(t, err)

	power, err := s.Destroy(ctx)
	require.NoError(t, err)
	require.Equal(t, uint32(1), power)
	require.Zero(t, tables.Len())

	_, err = b.Power(s.ID())
	require.ErrorIs(t, err, types.ErrNotFound)
	_, err = b.Execute(ctx, types.OpMin, types.NoFlags, codec.Payload{ID: s.ID()})
	require.ErrorIs(t, err, types.ErrUnresolvable)
}

func TestCreate_ResourceExhausted(t *testing.T) {
	b := New(NewTables(registry.New(registry.Options{MaxSlots: 1})), DefaultOptions())
	_, err := b.Create(context.Background())
	require.NoError(t, err)
	_, err = b.Create(context.Background())
	require.ErrorIs(t, err, types.ErrResourceExhausted)
}

func TestSetOperations(t *testing.T) {
	ctx := context.Background()
	b := New(NewTables(nil), DefaultOptions())
	x, y := newStructure(t, b), newStructure(t, b)
	for _, key := range []uint64{1, 2, 3} {
		_, err := x.Insert(ctx, k(key), v(key), types.NoFlags)
		require.NoError(t, err)
	}
	for _, key := range []uint64{3, 4} {
		_, err := y.Insert(ctx, k(key), v(key*10), types.NoFlags)
		require.NoError(t, err)
	}

	power, err := x.Or(ctx, y, types.NoFlags)
	require.NoError(t, err)
	require.Equal(t, uint32(4), power)
	p, err := x.Search(ctx, k(3), types.DefaultQueryFlags)
	require.NoError(t, err)
	require.Equal(t, v(3), p.Value)

	power, err = x.Not(ctx, y, types.NoFlags)
	require.NoError(t, err)
	require.Equal(t, uint32(2), power)

	power, err = x.And(ctx, y, types.NoFlags)
	require.NoError(t, err)
	require.Zero(t, power)
	cached, err := x.Power()
	require.NoError(t, err)
	require.Zero(t, cached)
}

func TestSnapshot_RoundTrip(t *testing.T) {
	ctx := context.Background()
	src := NewTables(nil)
	b := New(src, DefaultOptions())
	s1, s2 := newStructure(t, b), newStructure(t, b)
	for _, key := range []uint64{5, 1, 3} {
		_, err := s1.Insert(ctx, k(key), v(key*2), types.NoFlags)
		require.NoError(t, err)
	}
	_, err := s2.Insert(ctx, types.Key{0, 1}, v(9), types.NoFlags)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, src.Save(&buf))

	dst := NewTables(nil)
	ids, err := dst.Load(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, ids, 2)

	want, err := src.Items(s1.ID())
	require.NoError(t, err)
	got, err := dst.Items(ids[s1.ID()])
	require.NoError(t, err)
	require.Equal(t, want, got)

	power, err := New(dst, DefaultOptions()).Power(ids[s2.ID()])
	require.NoError(t, err)
	require.Equal(t, uint32(1), power)
	slot, err := dst.Registry().Resolve(ids[s1.ID()])
	require.NoError(t, err)
	require.Equal(t, uint32(3), slot.Power)
}

func TestSnapshot_FailedLoadReleasesTables(t *testing.T) {
	ctx := context.Background()
	src := NewTables(nil)
	b := New(src, DefaultOptions())
	for i := 0; i < 3; i++ {
		s := newStructure(t, b)
		_, err := s.Insert(ctx, k(uint64(i)), v(1), types.NoFlags)
		require.NoError(t, err)
	}
	var buf bytes.Buffer
	require.NoError(t, src.Save(&buf))

	// Room for two of the three tables
	dst := NewTables(registry.New(registry.Options{MaxSlots: 2}))
	ids, err := dst.Load(bytes.NewReader(buf.Bytes()))
	require.ErrorIs(t, err, types.ErrResourceExhausted)
	require.Nil(t, ids)
	require.Zero(t, dst.Len())
	require.Zero(t, dst.Registry().Len())

	// The slots are free again
	_, err = New(dst, DefaultOptions()).Create(ctx)
	require.NoError(t, err)
}

func TestSnapshot_RejectsGarbage(t *testing.T) {
	_, err := NewTables(nil).Load(bytes.NewReader([]byte{0xff, 0x00}))
	require.True(t, types.IsKind(err, types.ErrKindFormat))
}

func TestClose(t *testing.T) {
	tables := NewTables(nil)
	b := New(tables, DefaultOptions())
	_ = newStructure(t, b)
	require.NoError(t, tables.Close())
	require.Zero(t, tables.Len())
	_, err := b.Create(context.Background())
	require.ErrorIs(t, err, types.ErrClosed)
}
