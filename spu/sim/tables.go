package sim

import (
	"sync"

	"github.com/joshuapare/spukit/internal/ordered"
	"github.com/joshuapare/spukit/pkg/types"
	"github.com/joshuapare/spukit/spu/registry"
)

// Tables is the process-scoped store behind every simulation backend: one
// ordered map per live identifier. Backends built on the same Tables observe
// the same data, which is how a second handle reattaches to a structure.
//
// Construct one per process (or per test) and Close it explicitly.
type Tables struct {
	reg *registry.Registry

	mu     sync.Mutex
	tables map[types.GSID]*ordered.Map
}

// NewTables returns an empty store issuing identifiers from reg. A nil reg
// gets a private registry with default options.
func NewTables(reg *registry.Registry) *Tables {
	if reg == nil {
		reg = registry.New(registry.DefaultOptions())
	}
	return &Tables{reg: reg, tables: make(map[types.GSID]*ordered.Map)}
}

// Registry returns the registry identifiers are issued from.
func (t *Tables) Registry() *registry.Registry { return t.reg }

func (t *Tables) create() (types.GSID, error) {
	id, err := t.reg.Create()
	if err != nil {
		return types.GSID{}, err
	}
	t.mu.Lock()
	t.tables[id] = ordered.New()
	t.mu.Unlock()
	return id, nil
}

// lookup returns the map of id, creating it for identifiers the registry
// issued to another backend (hybrid use).
func (t *Tables) lookup(id types.GSID) *ordered.Map {
	m, ok := t.tables[id]
	if !ok {
		m = ordered.New()
		t.tables[id] = m
	}
	return m
}

// size returns the element count of id.
func (t *Tables) size(id types.GSID) uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return uint32(t.lookup(id).Len())
}

// drop forgets id in both the tables and the registry.
func (t *Tables) drop(id types.GSID) {
	t.mu.Lock()
	delete(t.tables, id)
	t.mu.Unlock()
	_, _ = t.reg.Destroy(id)
}

// Len returns the number of live tables.
func (t *Tables) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.tables)
}

// Items returns the contents of id in key order.
func (t *Tables) Items(id types.GSID) ([]ordered.Item, error) {
	if _, err := t.reg.Resolve(id); err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lookup(id).Items(), nil
}

// Close drops every table and closes the registry.
func (t *Tables) Close() error {
	t.mu.Lock()
	t.tables = make(map[types.GSID]*ordered.Map)
	t.mu.Unlock()
	return t.reg.Close()
}
