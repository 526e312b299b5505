package bytepipe

// block is a fixed-capacity node of the pipe's chain. A block is owned by
// exactly one party: the pipe while linked, the pool while free.
type block struct {
	buf  []byte // backing storage rented from mcache, fixed capacity
	n    int    // bytes written into buf
	base int64  // absolute stream offset of buf[0], assigned when linked
	gen  uint32 // bumped on every recycle; detects positions held too long
	next *block
}

func (b *block) free() int  { return len(b.buf) - b.n }
func (b *block) end() int64 { return b.base + int64(b.n) }
