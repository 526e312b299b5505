package bytepipe

import (
	"sync"

	"github.com/zhihanii/zlog"
	"go.uber.org/atomic"
)

// Pipe is the shared state machine between one producer and one consumer.
// It owns the block chain, the write/commit/consume/examine positions, the
// flow-control watermarks and the single pending continuation of each side.
//
// All position mutations happen under mu; the byte copy into an allocated
// span happens outside it, since the writer has exclusive access to the
// uncommitted tail region until MallocAck. Suspension follows the trigger
// pattern: each side parks on a capacity-1 channel and the opposite side
// posts a token when the relevant condition changes, so a waiter re-checks
// its condition after every wake.
type Pipe struct {
	mu   sync.Mutex
	pool *BlockPool

	head *block
	tail *block

	// Absolute stream offsets, monotonically non-decreasing once published:
	// consumed <= examined <= committed <= write.
	write     int64
	committed int64
	consumed  int64
	examined  int64

	low  int64
	high int64

	// alloc is the length of the span handed out by the open Malloc
	// session, -1 when none is open.
	alloc int

	writerPaused bool

	writerDone bool
	readerDone bool
	writerErr  error
	readerErr  error

	readTrigger  chan struct{}
	writeTrigger chan struct{}

	readCancel  atomic.Bool
	flushCancel atomic.Bool

	locker

	r *pipeReader
	w *pipeWriter
}

// NewPipe creates a pipe. Without options it uses its own pool of pageSize
// blocks and the default watermarks. Watermarks violating high >= low > 0
// refuse construction.
func NewPipe(opts ...Option) *Pipe {
	o := &options{
		blockSize: pageSize,
		low:       defaultLowWatermark,
		high:      defaultHighWatermark,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.low <= 0 || o.high < o.low {
		panic("bytepipe: watermarks must satisfy high >= low > 0")
	}
	pool := o.pool
	if pool == nil {
		pool = NewBlockPool(o.blockSize)
	}
	p := &Pipe{
		pool:         pool,
		low:          int64(o.low),
		high:         int64(o.high),
		alloc:        -1,
		readTrigger:  make(chan struct{}, 1),
		writeTrigger: make(chan struct{}, 1),
	}
	p.r = &pipeReader{p: p}
	p.w = &pipeWriter{p: p}
	return p
}

// Reader returns the consumer handle. The same handle is returned on every
// call; the pipe supports exactly one consumer.
func (p *Pipe) Reader() Reader { return p.r }

// Writer returns the producer handle. The same handle is returned on every
// call; the pipe supports exactly one producer.
func (p *Pipe) Writer() Writer { return p.w }

// Reset prepares the pipe for reuse after both sides have completed,
// keeping the pool and watermarks. Resetting an incomplete pipe panics.
func (p *Pipe) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.writerDone || !p.readerDone {
		panic("bytepipe: Reset before both sides completed")
	}
	// The chain was recycled when the second side completed.
	p.write, p.committed, p.consumed, p.examined = 0, 0, 0, 0
	p.alloc = -1
	p.writerPaused = false
	p.writerDone, p.readerDone = false, false
	p.writerErr, p.readerErr = nil, nil
	p.readCancel.Store(false)
	p.flushCancel.Store(false)
	p.locker.reset()
	select {
	case <-p.readTrigger:
	default:
	}
	select {
	case <-p.writeTrigger:
	default:
	}
}

// ------------------------------------------ writer side ------------------------------------------

func (p *Pipe) malloc(min int) ([]byte, error) {
	if min <= 0 {
		panic("bytepipe: malloc size must be positive")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.writerDone {
		panic("bytepipe: Malloc after writer completed")
	}
	if p.readerDone {
		return nil, p.readerFailureLocked()
	}
	if min > p.pool.BlockSize() {
		return nil, ErrMallocTooLarge
	}
	if p.alloc >= 0 {
		panic("bytepipe: Malloc with an unacknowledged allocation")
	}
	b := p.tail
	if b == nil || b.free() < min {
		nb := p.pool.rent(min)
		nb.base = p.write
		if p.tail == nil {
			p.head = nb
		} else {
			p.tail.next = nb
		}
		p.tail = nb
		b = nb
	}
	span := b.buf[b.n:]
	p.alloc = len(span)
	return span, nil
}

func (p *Pipe) mallocAck(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.writerDone {
		panic("bytepipe: MallocAck after writer completed")
	}
	if p.alloc < 0 {
		panic("bytepipe: MallocAck without a preceding Malloc")
	}
	if n < 0 || n > p.alloc {
		panic("bytepipe: MallocAck size out of allocation range")
	}
	p.tail.n += n
	p.write += int64(n)
	p.alloc = -1
}

func (p *Pipe) mallocLen() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return int(p.write - p.committed)
}

func (p *Pipe) flush() (FlushResult, error) {
	if !p.lock(flushing) {
		panic("bytepipe: concurrent Flush")
	}
	defer p.unlock(flushing)

	p.mu.Lock()
	if p.writerDone {
		p.mu.Unlock()
		panic("bytepipe: Flush after writer completed")
	}
	if p.readerDone {
		err := p.readerFailureLocked()
		p.mu.Unlock()
		return FlushResult{IsCompleted: true}, err
	}
	if p.committed < p.write {
		wake := p.write > p.examined
		p.committed = p.write
		if wake {
			p.triggerRead()
		}
	}
	if p.flushCancel.CAS(true, false) {
		p.mu.Unlock()
		return FlushResult{IsCanceled: true}, nil
	}
	if p.committed-p.consumed > p.high {
		p.writerPaused = true
	}
	for p.writerPaused {
		p.mu.Unlock()
		<-p.writeTrigger
		p.mu.Lock()
		if p.readerDone {
			p.writerPaused = false
			err := p.readerFailureLocked()
			p.mu.Unlock()
			return FlushResult{IsCompleted: true}, err
		}
		if p.flushCancel.CAS(true, false) {
			p.writerPaused = false
			p.mu.Unlock()
			return FlushResult{IsCanceled: true}, nil
		}
	}
	p.mu.Unlock()
	return FlushResult{}, nil
}

func (p *Pipe) cancelPendingFlush() {
	p.flushCancel.Store(true)
	p.triggerWrite()
}

func (p *Pipe) completeWriter(err error) {
	p.mu.Lock()
	if p.writerDone {
		p.mu.Unlock()
		return
	}
	// Publish acknowledged bytes so the reader drains everything, and drop
	// any open allocation session.
	p.alloc = -1
	p.committed = p.write
	p.writerDone = true
	p.writerErr = err
	p.teardownLocked()
	p.mu.Unlock()
	p.triggerRead()
}

// ------------------------------------------ reader side ------------------------------------------

func (p *Pipe) read() (ReadResult, error) {
	if !p.lock(reading) {
		panic("bytepipe: concurrent Read")
	}
	defer p.unlock(reading)

	p.mu.Lock()
	for {
		if p.readerDone {
			p.mu.Unlock()
			panic("bytepipe: Read after reader completed")
		}
		res, ok, err := p.readableLocked()
		if ok || err != nil {
			p.mu.Unlock()
			return res, err
		}
		p.mu.Unlock()
		<-p.readTrigger
		p.mu.Lock()
	}
}

func (p *Pipe) tryRead() (ReadResult, bool) {
	if !p.lock(reading) {
		panic("bytepipe: concurrent Read")
	}
	defer p.unlock(reading)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.readerDone {
		panic("bytepipe: TryRead after reader completed")
	}
	res, ok, err := p.readableLocked()
	if err != nil {
		// The terminal error itself surfaces on Read.
		return ReadResult{View: p.viewLocked(), IsCompleted: true}, true
	}
	return res, ok
}

// readableLocked reports whether a read resolves now, and with what.
func (p *Pipe) readableLocked() (ReadResult, bool, error) {
	if p.writerDone && p.writerErr != nil {
		return ReadResult{}, false, p.writerErr
	}
	if p.readCancel.CAS(true, false) {
		return ReadResult{View: p.viewLocked(), IsCompleted: p.writerDone, IsCanceled: true}, true, nil
	}
	if p.writerDone {
		return ReadResult{View: p.viewLocked(), IsCompleted: true}, true, nil
	}
	if p.committed > p.examined {
		return ReadResult{View: p.viewLocked()}, true, nil
	}
	return ReadResult{}, false, nil
}

func (p *Pipe) advance(consumed, examined Position) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.readerDone {
		panic("bytepipe: AdvanceTo after reader completed")
	}
	ca := p.absLocked(consumed)
	ea := p.absLocked(examined)
	if ca > ea || ca < p.consumed || ea > p.committed {
		panic("bytepipe: advance position out of range")
	}
	p.consumed = ca
	if ea > p.examined {
		p.examined = ea
	}
	for b := p.head; b != nil && b != p.tail && p.consumed >= b.end(); b = p.head {
		p.head = b.next
		p.pool.recycle(b)
	}
	if p.writerPaused && p.committed-p.consumed <= p.low {
		p.writerPaused = false
		p.triggerWrite()
	}
}

func (p *Pipe) cancelPendingRead() {
	p.readCancel.Store(true)
	p.triggerRead()
}

func (p *Pipe) completeReader(err error) {
	p.mu.Lock()
	if p.readerDone {
		p.mu.Unlock()
		return
	}
	p.readerDone = true
	p.readerErr = err
	p.writerPaused = false
	p.teardownLocked()
	p.mu.Unlock()
	p.triggerWrite()
}

func (p *Pipe) readable() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return int(p.committed - p.consumed)
}

// ------------------------------------------ shared internals ------------------------------------------

func (p *Pipe) triggerRead() {
	select {
	case p.readTrigger <- struct{}{}:
	default:
	}
}

func (p *Pipe) triggerWrite() {
	select {
	case p.writeTrigger <- struct{}{}:
	default:
	}
}

func (p *Pipe) readerFailureLocked() error {
	if p.readerErr != nil {
		return p.readerErr
	}
	return ErrReaderCompleted
}

// teardownLocked returns the whole chain to the pool once both sides have
// completed.
func (p *Pipe) teardownLocked() {
	if !p.writerDone || !p.readerDone {
		return
	}
	for b := p.head; b != nil; {
		next := b.next
		p.pool.recycle(b)
		b = next
	}
	p.head, p.tail = nil, nil
}

// absLocked resolves a position to its absolute stream offset, validating
// that the referenced block is still alive. The zero Position resolves to
// the current consumed offset.
func (p *Pipe) absLocked(pos Position) int64 {
	if pos.b == nil {
		return p.consumed
	}
	if pos.gen != pos.b.gen {
		zlog.Errorf("bytepipe: position references a block already recycled to the pool; a view was retained past AdvanceTo")
		panic("bytepipe: stale position")
	}
	if pos.idx < 0 || pos.idx > pos.b.n {
		panic("bytepipe: position offset out of block range")
	}
	return pos.b.base + int64(pos.idx)
}

// viewLocked builds the [consumed, committed) window over the chain.
func (p *Pipe) viewLocked() BufferView {
	if p.head == nil {
		return BufferView{}
	}
	sb, si := p.seekLocked(p.consumed)
	if p.committed == p.consumed {
		return BufferView{sb: sb, si: si, eb: sb, ei: si}
	}
	eb := sb
	for p.committed > eb.end() {
		eb = eb.next
	}
	return BufferView{
		sb: sb,
		si: si,
		eb: eb,
		ei: int(p.committed - eb.base),
		n:  int(p.committed - p.consumed),
	}
}

func (p *Pipe) seekLocked(abs int64) (*block, int) {
	b := p.head
	for b.next != nil && abs >= b.end() {
		b = b.next
	}
	return b, int(abs - b.base)
}
