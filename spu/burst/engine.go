// Package burst executes encoded commands against a bus as one transaction:
// write burst, poll STATE until READY, read burst, decode.
//
// An Engine assumes exclusive use of its bus for the duration of Execute.
// It does not lock; callers sharing a bus serialize Execute themselves
// (structure.Hardware holds a mutex for this).
package burst

import (
	"context"
	"log/slog"
	"time"

	"github.com/joshuapare/spukit/internal/format"
	"github.com/joshuapare/spukit/internal/logger"
	"github.com/joshuapare/spukit/pkg/types"
	"github.com/joshuapare/spukit/spu/arena"
	"github.com/joshuapare/spukit/spu/bus"
	"github.com/joshuapare/spukit/spu/codec"
	"github.com/joshuapare/spukit/spu/registry"
)

// Options configures an Engine.
type Options struct {
	// PollLimit bounds the number of STATE reads per command. Zero polls
	// until READY, the context is done, or PollTimeout elapses.
	PollLimit int

	// PollTimeout bounds the wall-clock time spent polling. Zero disables it.
	PollTimeout time.Duration

	// Pool supplies transaction buffers. Nil allocates a private pool.
	Pool *arena.Pool

	// Logger receives one Debug record per command. Nil uses logger.L.
	Logger *slog.Logger
}

// DefaultOptions returns a hardened configuration: polling gives up after
// one second.
func DefaultOptions() Options {
	return Options{PollTimeout: time.Second}
}

// Engine runs commands on one bus.
type Engine struct {
	bus  bus.Bus
	reg  *registry.Registry
	pool *arena.Pool
	opts Options
	log  *slog.Logger
}

// New returns an engine driving b and keeping reg's power cache current.
func New(b bus.Bus, reg *registry.Registry, opts Options) *Engine {
	if opts.Pool == nil {
		opts.Pool = arena.NewPool()
	}
	return &Engine{
		bus:  b,
		reg:  reg,
		pool: opts.Pool,
		opts: opts,
		log:  logger.Or(opts.Logger).With("component", "burst"),
	}
}

// Registry returns the registry the engine resolves against.
func (e *Engine) Registry() *registry.Registry { return e.reg }

// Pool returns the engine's buffer pool.
func (e *Engine) Pool() *arena.Pool { return e.pool }

// Execute runs c. Create only issues an identifier; every other command is a
// full bus transaction. On success the registry's power cache is updated from
// the result, and a Destroy removes the identifier.
func (e *Engine) Execute(ctx context.Context, c codec.Command) (codec.Result, error) {
	if c.Op == types.OpCreate {
		id, err := e.reg.Create()
		if err != nil {
			return codec.Result{}, err
		}
		e.log.Debug("command", "op", c.Op, "gsid", id.String())
		return codec.Created(id), nil
	}
	if c.Layout.WriteWords() == 0 {
		return codec.Result{}, types.NewError(types.ErrKindFormat, nil, "burst: %s has no write burst", c.Op)
	}

	b := e.pool.Acquire(c.Layout.WriteWords(), c.Result.ReadWords())
	defer e.pool.Release(b)

	buildWrites(b.Writes, c)
	buildReads(b.Addrs, c.Result)

	if err := e.bus.Write(b.Writes); err != nil {
		return codec.Result{}, types.NewError(types.ErrKindBusFailure, err, "burst: %s: write", c.Op)
	}
	state, err := e.poll(ctx, c.Op)
	if err != nil {
		return codec.Result{}, err
	}
	if err := e.bus.Read(b.Addrs, b.Words); err != nil {
		return codec.Result{}, types.NewError(types.ErrKindBusFailure, err, "burst: %s: read", c.Op)
	}
	res, err := codec.Decode(c.Result, state, b.Words)
	if err != nil {
		return codec.Result{}, err
	}

	e.log.Debug("command",
		"op", c.Op,
		"flags", c.Flags,
		"gsid", c.Payload.ID.String(),
		"slot", c.Slots.A,
		"status", res.Status,
		"power", res.Power)

	if err := e.record(c, res); err != nil {
		return res, err
	}
	return res, nil
}

// record updates the registry after a completed transaction.
func (e *Engine) record(c codec.Command, res codec.Result) error {
	if c.Op == types.OpDestroy {
		if res.Status != types.StatusOK {
			return nil
		}
		_, err := e.reg.Destroy(c.Payload.ID)
		return err
	}
	return e.reg.SetPower(c.PowerTarget(), res.Power)
}

// poll reads STATE until READY. It gives up on PollLimit, PollTimeout or
// context cancellation with a Timeout error.
func (e *Engine) poll(ctx context.Context, op types.Op) (uint32, error) {
	var deadline time.Time
	if e.opts.PollTimeout > 0 {
		deadline = time.Now().Add(e.opts.PollTimeout)
	}
	for n := 1; ; n++ {
		state, err := e.bus.State()
		if err != nil {
			return 0, types.NewError(types.ErrKindBusFailure, err, "burst: %s: poll", op)
		}
		if format.Ready(state) {
			return state, nil
		}
		if e.opts.PollLimit > 0 && n >= e.opts.PollLimit {
			return 0, types.NewError(types.ErrKindTimeout, nil, "burst: %s: not ready after %d polls", op, n)
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			return 0, types.NewError(types.ErrKindTimeout, nil, "burst: %s: not ready after %s", op, e.opts.PollTimeout)
		}
		if err := ctx.Err(); err != nil {
			return 0, types.NewError(types.ErrKindTimeout, err, "burst: %s: polling abandoned", op)
		}
	}
}

// buildWrites fills dst with key words, value words and the command word last.
func buildWrites(dst []bus.Write, c codec.Command) {
	i := 0
	for w := 0; w < c.Layout.KeyWords(); w++ {
		dst[i] = bus.Write{Addr: format.KeyReg + uint32(w), Data: c.Payload.Key[w]}
		i++
	}
	for w := 0; w < c.Layout.ValueWords(); w++ {
		dst[i] = bus.Write{Addr: format.ValReg + uint32(w), Data: c.Payload.Value[w]}
		i++
	}
	dst[i] = bus.Write{Addr: format.CmdReg, Data: c.Word()}
}

// buildReads fills dst with the read-back addresses of rl: key words, value
// words, power last.
func buildReads(dst []uint32, rl codec.ResultLayout) {
	i := 0
	if rl == codec.ResultPair {
		for w := 0; w < types.Weight; w++ {
			dst[i] = format.KeyReg + uint32(w)
			i++
		}
		for w := 0; w < types.Weight; w++ {
			dst[i] = format.ValReg + uint32(w)
			i++
		}
	}
	dst[i] = format.PowerReg
}
