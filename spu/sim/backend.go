package sim

import (
	"context"
	"log/slog"

	"github.com/joshuapare/spukit/internal/logger"
	"github.com/joshuapare/spukit/internal/ordered"
	"github.com/joshuapare/spukit/pkg/types"
	"github.com/joshuapare/spukit/spu/codec"
	"github.com/joshuapare/spukit/spu/structure"
)

// Options configures a Backend.
type Options struct {
	// Neighbors answers Next, Prev, NSM and NGR from the ordered map.
	// When false those queries go to Fallback, or fail with ErrUnsupported.
	Neighbors bool

	// Fallback receives neighbor queries when Neighbors is false (hybrid
	// mode). It must resolve the same identifiers, i.e. share the Tables'
	// registry.
	Fallback structure.Backend

	// Logger receives Debug records per operation. Nil uses logger.L.
	Logger *slog.Logger
}

// DefaultOptions returns options that keep neighbor queries unanswered.
func DefaultOptions() Options {
	return Options{}
}

// Backend is the in-memory implementation of structure.Backend.
type Backend struct {
	t    *Tables
	opts Options
	log  *slog.Logger
}

var _ structure.Backend = (*Backend)(nil)

// New returns a backend over t.
func New(t *Tables, opts Options) *Backend {
	return &Backend{t: t, opts: opts, log: logger.Or(opts.Logger).With("component", "sim")}
}

// Create implements structure.Backend.
func (b *Backend) Create(_ context.Context) (types.GSID, error) {
	id, err := b.t.create()
	if err != nil {
		return types.GSID{}, err
	}
	b.log.Debug("command", "op", types.OpCreate, "gsid", id.String())
	return id, nil
}

// Power implements structure.Backend.
func (b *Backend) Power(id types.GSID) (uint32, error) {
	if _, err := b.t.reg.Resolve(id); err != nil {
		return 0, err
	}
	return b.t.size(id), nil
}

func isNeighbor(op types.Op) bool {
	switch op {
	case types.OpNext, types.OpPrev, types.OpNSM, types.OpNGR:
		return true
	}
	return false
}

// Execute implements structure.Backend. Identifiers are resolved exactly as
// the hardware path does, so an unknown identifier is Unresolvable here too.
func (b *Backend) Execute(ctx context.Context, op types.Op, flags types.Flags, p codec.Payload) (codec.Result, error) {
	c, err := codec.Encode(b.t.reg, op, flags, p)
	if err != nil {
		return codec.Result{}, err
	}
	if c.Op == types.OpCreate {
		id, err := b.Create(ctx)
		if err != nil {
			return codec.Result{}, err
		}
		return codec.Created(id), nil
	}
	if isNeighbor(op) && !b.opts.Neighbors {
		if b.opts.Fallback != nil {
			return b.opts.Fallback.Execute(ctx, op, flags, p)
		}
		return codec.Result{Layout: c.Result, Status: types.StatusError, Power: b.t.size(c.Payload.ID)},
			types.NewError(types.ErrKindUnsupported, nil, "sim: %s needs Options.Neighbors or a fallback backend", op)
	}

	res := b.apply(c)
	b.log.Debug("command",
		"op", c.Op,
		"flags", c.Flags,
		"gsid", c.Payload.ID.String(),
		"status", res.Status,
		"power", res.Power)

	if c.Op == types.OpDestroy {
		if _, err := b.t.reg.Destroy(c.Payload.ID); err != nil {
			return codec.Result{}, err
		}
		return res, nil
	}
	if err := b.t.reg.SetPower(c.PowerTarget(), res.Power); err != nil {
		return codec.Result{}, err
	}
	return res, nil
}

func (b *Backend) apply(c codec.Command) codec.Result {
	b.t.mu.Lock()
	defer b.t.mu.Unlock()

	m := b.t.lookup(c.Payload.ID)
	res := codec.Result{Layout: c.Result, Status: types.StatusOK}
	var it ordered.Item
	ok := true

	switch c.Op {
	case types.OpDestroy:
		res.Power = uint32(m.Len())
		delete(b.t.tables, c.Payload.ID)
		return res
	case types.OpInsert:
		m.Put(c.Payload.Key, c.Payload.Value)
	case types.OpDelete:
		ok = m.Delete(c.Payload.Key)
	case types.OpSearch:
		it, ok = m.Get(c.Payload.Key)
	case types.OpMin:
		it, ok = m.Min()
	case types.OpMax:
		it, ok = m.Max()
	case types.OpNext:
		it, ok = m.Next(c.Payload.Key)
	case types.OpPrev:
		it, ok = m.Prev(c.Payload.Key)
	case types.OpNSM:
		it, ok = m.Smaller(c.Payload.Key)
	case types.OpNGR:
		it, ok = m.Greater(c.Payload.Key)
	case types.OpAnd, types.OpOr, types.OpNot:
		other := b.t.lookup(c.Payload.Other)
		var out *ordered.Map
		switch c.Op {
		case types.OpAnd:
			out = ordered.Intersect(m, other)
		case types.OpOr:
			out = ordered.Union(m, other)
		default:
			out = ordered.Difference(m, other)
		}
		b.t.tables[c.Payload.Target] = out
		res.Power = uint32(out.Len())
		return res
	}

	res.Power = uint32(m.Len())
	if !ok {
		res.Status = types.StatusError
		return res
	}
	res.Key, res.Value = it.Key, it.Value
	return res
}
