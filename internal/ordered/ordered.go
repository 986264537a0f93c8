// Package ordered provides the sorted key/value map shared by the simulation
// backend and the register-level test device. Keys are ordered as unsigned
// multi-word integers (types.Key.Compare).
//
// NOT thread-safe. Callers serialize access.
package ordered

import (
	"github.com/google/btree"

	"github.com/joshuapare/spukit/pkg/types"
)

// degree is the B-tree fan-out; 32 keeps nodes around one cache page.
const degree = 32

// Item is one key/value element.
type Item struct {
	Key   types.Key
	Value types.Value
}

// Pair converts the item to an OK result pair.
func (it Item) Pair() types.Pair {
	return types.Pair{Key: it.Key, Value: it.Value, Status: types.StatusOK}
}

func less(a, b Item) bool { return a.Key.Compare(b.Key) < 0 }

// Map is a sorted map from key to value.
type Map struct {
	t *btree.BTreeG[Item]
}

// New returns an empty map.
func New() *Map {
	return &Map{t: btree.NewG(degree, less)}
}

// Put stores value under key, replacing any previous value. It reports
// whether a previous value was replaced.
func (m *Map) Put(k types.Key, v types.Value) bool {
	_, replaced := m.t.ReplaceOrInsert(Item{Key: k, Value: v})
	return replaced
}

// Delete removes key and reports whether it was present.
func (m *Map) Delete(k types.Key) bool {
	_, ok := m.t.Delete(Item{Key: k})
	return ok
}

// Get returns the item stored under key.
func (m *Map) Get(k types.Key) (Item, bool) {
	return m.t.Get(Item{Key: k})
}

// Len returns the number of elements.
func (m *Map) Len() int { return m.t.Len() }

// Min returns the smallest element.
func (m *Map) Min() (Item, bool) { return m.t.Min() }

// Max returns the largest element.
func (m *Map) Max() (Item, bool) { return m.t.Max() }

// Greater returns the smallest element with a key strictly greater than k.
// k need not be present.
func (m *Map) Greater(k types.Key) (Item, bool) {
	var out Item
	var found bool
	m.t.AscendGreaterOrEqual(Item{Key: k}, func(it Item) bool {
		if it.Key == k {
			return true
		}
		out, found = it, true
		return false
	})
	return out, found
}

// Smaller returns the largest element with a key strictly smaller than k.
// k need not be present.
func (m *Map) Smaller(k types.Key) (Item, bool) {
	var out Item
	var found bool
	m.t.DescendLessOrEqual(Item{Key: k}, func(it Item) bool {
		if it.Key == k {
			return true
		}
		out, found = it, true
		return false
	})
	return out, found
}

// Next returns the successor of a key that is present in the map.
func (m *Map) Next(k types.Key) (Item, bool) {
	if !m.t.Has(Item{Key: k}) {
		return Item{}, false
	}
	return m.Greater(k)
}

// Prev returns the predecessor of a key that is present in the map.
func (m *Map) Prev(k types.Key) (Item, bool) {
	if !m.t.Has(Item{Key: k}) {
		return Item{}, false
	}
	return m.Smaller(k)
}

// Ascend calls fn for every element in key order until fn returns false.
func (m *Map) Ascend(fn func(Item) bool) {
	m.t.Ascend(fn)
}

// Items returns every element in key order.
func (m *Map) Items() []Item {
	out := make([]Item, 0, m.t.Len())
	m.t.Ascend(func(it Item) bool {
		out = append(out, it)
		return true
	})
	return out
}

// Clone returns an independent copy. The copy is lazy (copy-on-write).
func (m *Map) Clone() *Map {
	return &Map{t: m.t.Clone()}
}

// Clear removes every element.
func (m *Map) Clear() {
	m.t.Clear(false)
}

// Intersect returns the elements of a whose keys are also in b. Values come from a.
func Intersect(a, b *Map) *Map {
	out := New()
	a.Ascend(func(it Item) bool {
		if _, ok := b.Get(it.Key); ok {
			out.t.ReplaceOrInsert(it)
		}
		return true
	})
	return out
}

// Union returns every element of a and b. On key conflicts the value from a wins.
func Union(a, b *Map) *Map {
	out := b.Clone()
	a.Ascend(func(it Item) bool {
		out.t.ReplaceOrInsert(it)
		return true
	})
	return out
}

// Difference returns the elements of a whose keys are not in b.
func Difference(a, b *Map) *Map {
	out := New()
	a.Ascend(func(it Item) bool {
		if _, ok := b.Get(it.Key); !ok {
			out.t.ReplaceOrInsert(it)
		}
		return true
	})
	return out
}
