// Package registry issues and resolves structure identifiers (GSIDs) and binds
// each live structure to a device slot.
//
// A Registry is process-scoped state: construct one per device (or per
// simulation table set), share it between backends, and Close it explicitly
// when the device goes away. GSIDs are monotonic and never reused; slots are
// recycled lowest-first once the structure holding them is destroyed.
package registry

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/joshuapare/spukit/internal/logger"
	"github.com/joshuapare/spukit/pkg/types"
)

// Slot is the registry's view of one live structure.
type Slot struct {
	ID    types.GSID
	Index uint8  // device slot, 1..MaxSlots
	Power uint32 // element count as of the last completed operation
}

// Options configures a Registry.
type Options struct {
	// MaxSlots bounds the number of concurrently live structures.
	// Zero means types.MaxSlots.
	MaxSlots int

	// Domain names this registry inside every GSID it issues.
	// uuid.Nil picks a random domain.
	Domain uuid.UUID

	// Logger receives lifecycle events. Nil uses logger.L.
	Logger *slog.Logger
}

// DefaultOptions returns options for a full-size device with a random domain.
func DefaultOptions() Options {
	return Options{MaxSlots: types.MaxSlots}
}

// Registry maps GSIDs to device slots and caches per-structure power.
// It is safe for concurrent use.
type Registry struct {
	mu     sync.Mutex
	domain uuid.UUID
	next   uint64 // last issued sequence number
	max    int
	byID   map[types.GSID]*Slot
	bySlot []*Slot // index 0 unused
	free   []uint8 // released slot indices, kept sorted ascending
	high   uint8   // highest slot index ever handed out
	closed bool
	log    *slog.Logger
}

// New creates an empty registry.
func New(opts Options) *Registry {
	if opts.MaxSlots <= 0 || opts.MaxSlots > types.MaxSlots {
		opts.MaxSlots = types.MaxSlots
	}
	if opts.Domain == uuid.Nil {
		opts.Domain = uuid.New()
	}
	if opts.Logger == nil {
		opts.Logger = logger.L
	}
	return &Registry{
		domain: opts.Domain,
		max:    opts.MaxSlots,
		byID:   make(map[types.GSID]*Slot),
		bySlot: make([]*Slot, opts.MaxSlots+1),
		log:    opts.Logger,
	}
}

// Domain returns the UUID stamped into every GSID this registry issues.
func (r *Registry) Domain() uuid.UUID { return r.domain }

// Create issues a fresh GSID bound to a free slot with power 0.
func (r *Registry) Create() (types.GSID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return types.GSID{}, types.ErrClosed
	}
	idx, ok := r.takeSlot()
	if !ok {
		return types.GSID{}, types.NewError(types.ErrKindResourceExhausted, nil,
			"registry: all %d slots in use", r.max)
	}

	r.next++
	id := types.GSID{Domain: r.domain, Seq: r.next}
	s := &Slot{ID: id, Index: idx}
	r.byID[id] = s
	r.bySlot[idx] = s

	r.log.Debug("structure created", "gsid", id.String(), "slot", idx)
	return id, nil
}

// Resolve returns a copy of the slot bound to id.
func (r *Registry) Resolve(id types.GSID) (Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byID[id]
	if !ok {
		return Slot{}, notFound(id)
	}
	return *s, nil
}

// SetPower records the power reported by the last operation on id.
func (r *Registry) SetPower(id types.GSID, power uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byID[id]
	if !ok {
		return notFound(id)
	}
	s.Power = power
	return nil
}

// Destroy unbinds id and returns its power at the time of destruction.
// The slot becomes available again; the GSID never resolves again.
func (r *Registry) Destroy(id types.GSID) (uint32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byID[id]
	if !ok {
		return 0, notFound(id)
	}
	delete(r.byID, id)
	r.bySlot[s.Index] = nil
	r.releaseSlot(s.Index)

	r.log.Debug("structure destroyed", "gsid", id.String(), "slot", s.Index, "power", s.Power)
	return s.Power, nil
}

// Len returns the number of live structures.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// Slots returns a snapshot of every live slot in slot order.
func (r *Registry) Slots() []Slot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Slot, 0, len(r.byID))
	for _, s := range r.bySlot {
		if s != nil {
			out = append(out, *s)
		}
	}
	return out
}

// Close drops every mapping. Later calls to Create fail with ErrClosed and
// every previously issued GSID stops resolving.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n := len(r.byID); n > 0 {
		r.log.Warn("registry closed with live structures", "count", n)
	}
	r.byID = make(map[types.GSID]*Slot)
	for i := range r.bySlot {
		r.bySlot[i] = nil
	}
	r.free = nil
	r.high = 0
	r.closed = true
	return nil
}

// takeSlot hands out the lowest free slot index.
func (r *Registry) takeSlot() (uint8, bool) {
	if len(r.free) > 0 {
		idx := r.free[0]
		r.free = r.free[1:]
		return idx, true
	}
	if int(r.high) >= r.max {
		return 0, false
	}
	r.high++
	return r.high, true
}

func (r *Registry) releaseSlot(idx uint8) {
	i := 0
	for i < len(r.free) && r.free[i] < idx {
		i++
	}
	r.free = append(r.free, 0)
	copy(r.free[i+1:], r.free[i:])
	r.free[i] = idx
}

func notFound(id types.GSID) error {
	return types.NewError(types.ErrKindNotFound, nil, "registry: gsid %s not found", id)
}
