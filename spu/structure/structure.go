// Package structure is the client-facing handle to one ordered key-value
// structure. A Structure is backend-agnostic: the same calls run against the
// device (Hardware) or the in-memory simulation (spu/sim).
//
// Queries report a miss as a types.Pair with StatusError, not as an error.
// Errors are reserved for faults: unknown identifiers, bus failures and
// timeouts.
package structure

import (
	"context"
	"log/slog"
	"sync"

	"github.com/joshuapare/spukit/internal/logger"
	"github.com/joshuapare/spukit/pkg/types"
	"github.com/joshuapare/spukit/spu/codec"
)

// Options configures a Structure.
type Options struct {
	// Logger receives leak reports from Close. Nil uses logger.L.
	Logger *slog.Logger
}

// Structure is a handle to one live structure.
type Structure struct {
	b   Backend
	log *slog.Logger

	mu     sync.Mutex
	id     types.GSID
	closed bool
}

// New creates a fresh structure on b.
func New(ctx context.Context, b Backend, opts Options) (*Structure, error) {
	id, err := b.Create(ctx)
	if err != nil {
		return nil, err
	}
	return &Structure{b: b, id: id, log: logger.Or(opts.Logger)}, nil
}

// Attach returns a handle to an existing structure on b. Handles attached to
// the same identifier observe the same data; destroying through one leaves
// the others unusable.
func Attach(b Backend, id types.GSID, opts Options) (*Structure, error) {
	if _, err := b.Power(id); err != nil {
		return nil, err
	}
	return &Structure{b: b, id: id, log: logger.Or(opts.Logger)}, nil
}

// ID returns the structure's identifier.
func (s *Structure) ID() types.GSID { return s.id }

func (s *Structure) live() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return types.ErrClosed
	}
	return nil
}

// Destroy releases the structure on the backend and returns its final power.
// A device that completes the command with an error status yields a State
// error. The handle is unusable afterwards even when Destroy fails.
func (s *Structure) Destroy(ctx context.Context) (uint32, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0, types.ErrClosed
	}
	s.closed = true
	s.mu.Unlock()

	res, err := s.b.Execute(ctx, types.OpDestroy, types.DefaultInsertFlags, codec.Payload{ID: s.id})
	if err != nil {
		return 0, err
	}
	if res.Status != types.StatusOK {
		// The device still holds the slot, so the identifier stays registered.
		return res.Power, types.NewError(types.ErrKindState, nil, "structure: device refused destroy of %s", s.id)
	}
	return res.Power, nil
}

// Close destroys the structure, logging rather than returning any failure;
// the structure is then reported as leaked. Close on a destroyed structure
// is a no-op.
func (s *Structure) Close() error {
	if err := s.live(); err != nil {
		return nil
	}
	if _, err := s.Destroy(context.Background()); err != nil {
		s.log.Warn("structure leaked", "gsid", s.id.String(), "error", err)
	}
	return nil
}

// Power returns the element count as of the last completed operation.
func (s *Structure) Power() (uint32, error) {
	if err := s.live(); err != nil {
		return 0, err
	}
	return s.b.Power(s.id)
}

func (s *Structure) exec(ctx context.Context, op types.Op, flags types.Flags, p codec.Payload) (codec.Result, error) {
	if err := s.live(); err != nil {
		return codec.Result{}, err
	}
	p.ID = s.id
	return s.b.Execute(ctx, op, flags, p)
}

func (s *Structure) status(ctx context.Context, op types.Op, flags types.Flags, p codec.Payload) (types.Status, error) {
	res, err := s.exec(ctx, op, flags, p)
	if err != nil {
		return types.StatusError, err
	}
	return res.Status, nil
}

func (s *Structure) query(ctx context.Context, op types.Op, flags types.Flags, k types.Key) (types.Pair, error) {
	res, err := s.exec(ctx, op, flags, codec.Payload{Key: k})
	if err != nil {
		return types.MissPair, err
	}
	return res.Pair(), nil
}

// Insert stores v under k, replacing any previous value.
func (s *Structure) Insert(ctx context.Context, k types.Key, v types.Value, flags types.Flags) (types.Status, error) {
	return s.status(ctx, types.OpInsert, flags, codec.Payload{Key: k, Value: v})
}

// InsertBatch inserts entries in order. It stops at the first entry that
// fails or completes with a non-OK status and returns that outcome; entries
// before it stay applied.
func (s *Structure) InsertBatch(ctx context.Context, entries []types.Entry, flags types.Flags) (types.Status, error) {
	for _, e := range entries {
		st, err := s.Insert(ctx, e.Key, e.Value, flags)
		if err != nil || st != types.StatusOK {
			return st, err
		}
	}
	return types.StatusOK, nil
}

// Delete removes k. A missing key yields StatusError.
func (s *Structure) Delete(ctx context.Context, k types.Key, flags types.Flags) (types.Status, error) {
	return s.status(ctx, types.OpDelete, flags, codec.Payload{Key: k})
}

// Search returns the pair stored under k.
func (s *Structure) Search(ctx context.Context, k types.Key, flags types.Flags) (types.Pair, error) {
	return s.query(ctx, types.OpSearch, flags, k)
}

// Min returns the pair with the smallest key.
func (s *Structure) Min(ctx context.Context, flags types.Flags) (types.Pair, error) {
	return s.query(ctx, types.OpMin, flags, types.Key{})
}

// Max returns the pair with the largest key.
func (s *Structure) Max(ctx context.Context, flags types.Flags) (types.Pair, error) {
	return s.query(ctx, types.OpMax, flags, types.Key{})
}

// Next returns the successor of k, which must be present.
func (s *Structure) Next(ctx context.Context, k types.Key, flags types.Flags) (types.Pair, error) {
	return s.query(ctx, types.OpNext, flags, k)
}

// Prev returns the predecessor of k, which must be present.
func (s *Structure) Prev(ctx context.Context, k types.Key, flags types.Flags) (types.Pair, error) {
	return s.query(ctx, types.OpPrev, flags, k)
}

// NSM returns the pair with the largest key strictly smaller than k.
func (s *Structure) NSM(ctx context.Context, k types.Key, flags types.Flags) (types.Pair, error) {
	return s.query(ctx, types.OpNSM, flags, k)
}

// NGR returns the pair with the smallest key strictly greater than k.
func (s *Structure) NGR(ctx context.Context, k types.Key, flags types.Flags) (types.Pair, error) {
	return s.query(ctx, types.OpNGR, flags, k)
}

// And replaces s with the elements whose keys are also in other.
// It returns the resulting power.
func (s *Structure) And(ctx context.Context, other *Structure, flags types.Flags) (uint32, error) {
	return s.SetOp(ctx, types.OpAnd, other, s, flags)
}

// Or merges other into s. Values already in s win on conflicting keys.
func (s *Structure) Or(ctx context.Context, other *Structure, flags types.Flags) (uint32, error) {
	return s.SetOp(ctx, types.OpOr, other, s, flags)
}

// Not removes from s every key present in other.
func (s *Structure) Not(ctx context.Context, other *Structure, flags types.Flags) (uint32, error) {
	return s.SetOp(ctx, types.OpNot, other, s, flags)
}

// SetOp computes s <op> other into target, which may be s itself. All three
// structures must live on the same backend.
func (s *Structure) SetOp(ctx context.Context, op types.Op, other, target *Structure, flags types.Flags) (uint32, error) {
	switch op {
	case types.OpAnd, types.OpOr, types.OpNot:
	default:
		return 0, types.NewError(types.ErrKindFormat, nil, "structure: %s is not a set operation", op)
	}
	for _, t := range []*Structure{other, target} {
		if err := t.live(); err != nil {
			return 0, err
		}
	}
	res, err := s.exec(ctx, op, flags, codec.Payload{Other: other.id, Target: target.id})
	if err != nil {
		return 0, err
	}
	return res.Power, nil
}
