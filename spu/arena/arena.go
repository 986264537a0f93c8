// Package arena provides the scoped buffers one burst transaction needs: the
// write burst, the read address list and the read-back words.
//
// Buffers come from a sync.Pool and are reset on acquisition, so a released
// buffer never leaks words from one command into the next.
package arena

import (
	"sync"
	"sync/atomic"

	"github.com/joshuapare/spukit/spu/bus"
)

// Buffer holds the words of one transaction.
type Buffer struct {
	Writes []bus.Write
	Addrs  []uint32
	Words  []uint32
}

// Reset sizes the buffer for writes write words and reads read words,
// reusing capacity where possible. All words are zeroed.
func (b *Buffer) Reset(writes, reads int) {
	b.Writes = grow(b.Writes, writes)
	b.Addrs = grow(b.Addrs, reads)
	b.Words = grow(b.Words, reads)
}

func grow[T any](s []T, n int) []T {
	if cap(s) < n {
		return make([]T, n)
	}
	s = s[:n]
	clear(s)
	return s
}

// Pool hands out transaction buffers and counts outstanding ones.
type Pool struct {
	pool        sync.Pool
	outstanding atomic.Int64
	acquired    atomic.Int64
}

// NewPool returns an empty pool.
func NewPool() *Pool {
	return &Pool{}
}

// Acquire returns a buffer sized for writes and reads words.
func (p *Pool) Acquire(writes, reads int) *Buffer {
	var b *Buffer
	if v := p.pool.Get(); v != nil {
		b = v.(*Buffer)
	} else {
		b = &Buffer{}
	}
	b.Reset(writes, reads)
	p.outstanding.Add(1)
	p.acquired.Add(1)
	return b
}

// Release returns b to the pool. Releasing nil is a no-op.
func (p *Pool) Release(b *Buffer) {
	if b == nil {
		return
	}
	p.outstanding.Add(-1)
	p.pool.Put(b)
}

// Outstanding returns the number of acquired buffers not yet released.
func (p *Pool) Outstanding() int64 { return p.outstanding.Load() }

// Acquired returns the total number of acquisitions.
func (p *Pool) Acquired() int64 { return p.acquired.Load() }
