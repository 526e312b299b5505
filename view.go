package bytepipe

// Position marks a point in the pipe's byte stream as a (block, offset)
// pair. It is a weak reference: once AdvanceTo recycles the referenced
// block, the position is dead and using it panics.
type Position struct {
	b   *block
	idx int
	gen uint32
}

// BufferView is a read-only logical window over a contiguous run of the
// block chain. Views cost nothing to create and copy; they never own the
// bytes they expose. A view must not be used after the AdvanceTo call that
// consumes or recycles its underlying blocks.
type BufferView struct {
	sb *block // first block
	si int    // start offset within sb
	eb *block // last block
	ei int    // end offset within eb, exclusive
	n  int    // total length
}

// Len returns the number of bytes in the view.
func (v BufferView) Len() int { return v.n }

func (v BufferView) IsEmpty() bool { return v.n == 0 }

// Start returns the position of the first byte.
func (v BufferView) Start() Position { return v.Position(0) }

// End returns the position just past the last byte.
func (v BufferView) End() Position { return v.Position(v.n) }

// Position converts an offset within the view into a pipe position, usable
// as an AdvanceTo target. off may equal Len.
func (v BufferView) Position(off int) Position {
	if off < 0 || off > v.n {
		panic("bytepipe: position offset out of view range")
	}
	if v.sb == nil {
		return Position{}
	}
	b, idx := v.locate(off)
	return Position{b: b, idx: idx, gen: b.gen}
}

// Slice returns the sub-view [off, off+length) without copying.
func (v BufferView) Slice(off, length int) BufferView {
	if off < 0 || length < 0 || off+length > v.n {
		panic("bytepipe: slice out of view range")
	}
	if v.sb == nil {
		return BufferView{}
	}
	sb, si := v.locate(off)
	eb, ei := v.locate(off + length)
	return BufferView{sb: sb, si: si, eb: eb, ei: ei, n: length}
}

// Bytes returns the view's contents. When the view lies within a single
// block the underlying storage is returned directly with no copy; spanning
// views are gathered into a fresh slice.
func (v BufferView) Bytes() []byte {
	if v.n == 0 {
		return nil
	}
	if v.sb == v.eb {
		return v.sb.buf[v.si:v.ei]
	}
	out := make([]byte, 0, v.n)
	it := v.Chunks()
	for {
		ch, ok := it.Next()
		if !ok {
			return out
		}
		out = append(out, ch...)
	}
}

// CopyTo copies the view into dst and returns the number of bytes copied.
func (v BufferView) CopyTo(dst []byte) int {
	total := 0
	it := v.Chunks()
	for total < len(dst) {
		ch, ok := it.Next()
		if !ok {
			break
		}
		total += copy(dst[total:], ch)
	}
	return total
}

// Chunks returns an iterator yielding one contiguous chunk per underlying
// block, in stream order.
func (v BufferView) Chunks() Chunks {
	return Chunks{b: v.sb, idx: v.si, eb: v.eb, ei: v.ei, done: v.n == 0}
}

// Chunks iterates the contiguous spans of a BufferView.
type Chunks struct {
	b    *block
	idx  int
	eb   *block
	ei   int
	done bool
}

// Next returns the next non-empty chunk, or false when the view is
// exhausted.
func (c *Chunks) Next() ([]byte, bool) {
	for !c.done {
		b := c.b
		end := b.n
		if b == c.eb {
			end = c.ei
			c.done = true
		} else {
			c.b = b.next
		}
		idx := c.idx
		c.idx = 0
		if end > idx {
			return b.buf[idx:end], true
		}
	}
	return nil, false
}

// locate walks the chain to the block holding the given view offset.
// Callers bounds-check off and guarantee sb != nil.
func (v BufferView) locate(off int) (*block, int) {
	b, idx := v.sb, v.si
	for {
		end := b.n
		if b == v.eb {
			end = v.ei
		}
		if off <= end-idx {
			return b, idx + off
		}
		off -= end - idx
		b = b.next
		idx = 0
	}
}
