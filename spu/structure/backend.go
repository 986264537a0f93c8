package structure

import (
	"context"
	"sync"

	"github.com/joshuapare/spukit/pkg/types"
	"github.com/joshuapare/spukit/spu/burst"
	"github.com/joshuapare/spukit/spu/codec"
)

// Backend executes structure operations. Implementations: Hardware (codec +
// burst engine over a bus) and sim.Backend (in-memory ordered maps).
type Backend interface {
	// Create issues a fresh, empty structure.
	Create(ctx context.Context) (types.GSID, error)
	// Execute runs one non-Create operation.
	Execute(ctx context.Context, op types.Op, flags types.Flags, p codec.Payload) (codec.Result, error)
	// Power returns the cached element count of id.
	Power(id types.GSID) (uint32, error)
}

// Hardware is the device backend. Execute calls are serialized so at most
// one transaction is in flight on the engine's bus.
type Hardware struct {
	mu  sync.Mutex
	eng *burst.Engine
}

var _ Backend = (*Hardware)(nil)

// NewHardware returns a backend driving eng.
func NewHardware(eng *burst.Engine) *Hardware {
	return &Hardware{eng: eng}
}

// Create implements Backend.
func (h *Hardware) Create(ctx context.Context) (types.GSID, error) {
	res, err := h.Execute(ctx, types.OpCreate, types.NoFlags, codec.Payload{})
	if err != nil {
		return types.GSID{}, err
	}
	return res.ID, nil
}

// Execute implements Backend. Encoding happens before the bus lock is taken;
// a command that does not resolve never reaches the bus.
func (h *Hardware) Execute(ctx context.Context, op types.Op, flags types.Flags, p codec.Payload) (codec.Result, error) {
	c, err := codec.Encode(h.eng.Registry(), op, flags, p)
	if err != nil {
		return codec.Result{}, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.eng.Execute(ctx, c)
}

// Power implements Backend.
func (h *Hardware) Power(id types.GSID) (uint32, error) {
	s, err := h.eng.Registry().Resolve(id)
	if err != nil {
		return 0, err
	}
	return s.Power, nil
}
