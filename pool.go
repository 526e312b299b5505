package bytepipe

import (
	"runtime"

	"github.com/bytedance/gopkg/lang/mcache"
	"go.uber.org/atomic"
)

// poolIdleCap bounds the free list; blocks recycled beyond it hand their
// storage back to mcache.
const poolIdleCap = 64

// BlockPool rents and reclaims the fixed-capacity blocks a pipe chains
// together. A pool may be shared between pipes; rent and recycle are safe to
// call concurrently from the two endpoints of each. Running out of backing
// memory is fatal (mcache panics), the pool adds no backpressure of its own.
type BlockPool struct {
	locked atomic.Int32
	first  *block
	idle   int

	blockSize int

	rents  atomic.Int64
	reuses atomic.Int64
	news   atomic.Int64
	frees  atomic.Int64
}

// NewBlockPool creates a pool whose blocks all carry blockSize bytes of
// capacity.
func NewBlockPool(blockSize int) *BlockPool {
	if blockSize <= 0 {
		panic("bytepipe: block size must be positive")
	}
	return &BlockPool{blockSize: blockSize}
}

// BlockSize returns the capacity of every block the pool hands out.
func (p *BlockPool) BlockSize() int { return p.blockSize }

// rent pops the free list or allocates fresh storage. sizeHint is advisory;
// capacity is always BlockSize and callers check their requests against it.
func (p *BlockPool) rent(sizeHint int) *block {
	p.rents.Inc()
	p.lock()
	if b := p.first; b != nil {
		p.first = b.next
		p.idle--
		p.unlock()
		b.next = nil
		p.reuses.Inc()
		return b
	}
	p.unlock()
	p.news.Inc()
	return &block{buf: mcache.Malloc(p.blockSize)}
}

// recycle clears the block and makes it available to future rents. The
// generation bump invalidates every Position still referencing it.
func (p *BlockPool) recycle(b *block) {
	b.n = 0
	b.base = 0
	b.next = nil
	b.gen++
	p.lock()
	if p.idle >= poolIdleCap {
		p.unlock()
		mcache.Free(b.buf)
		b.buf = nil
		p.frees.Inc()
		return
	}
	b.next = p.first
	p.first = b
	p.idle++
	p.unlock()
}

func (p *BlockPool) lock() {
	for !p.locked.CAS(0, 1) {
		runtime.Gosched()
	}
}

func (p *BlockPool) unlock() {
	p.locked.Store(0)
}

// PoolStats is a snapshot of the pool's counters.
type PoolStats struct {
	Rents  int64 // total rent calls
	Reuses int64 // rents served from the free list
	News   int64 // rents that allocated fresh storage
	Frees  int64 // recycles that released storage past the idle cap
}

// Stats reads the counters without taking the free-list lock.
func (p *BlockPool) Stats() PoolStats {
	return PoolStats{
		Rents:  p.rents.Load(),
		Reuses: p.reuses.Load(),
		News:   p.news.Load(),
		Frees:  p.frees.Load(),
	}
}
