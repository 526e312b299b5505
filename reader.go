package bytepipe

import "io"

var _ Reader = (*pipeReader)(nil)

// pipeReader is the consumer handle; it delegates to the pipe core.
type pipeReader struct {
	p *Pipe
}

// Read implements Reader.
func (r *pipeReader) Read() (ReadResult, error) {
	return r.p.read()
}

// TryRead implements Reader.
func (r *pipeReader) TryRead() (ReadResult, bool) {
	return r.p.tryRead()
}

// AdvanceTo implements Reader. Consumed and examined move together.
func (r *pipeReader) AdvanceTo(consumed Position) {
	r.p.advance(consumed, consumed)
}

// AdvanceToExamined implements Reader.
func (r *pipeReader) AdvanceToExamined(consumed, examined Position) {
	r.p.advance(consumed, examined)
}

// CancelPendingRead implements Reader.
func (r *pipeReader) CancelPendingRead() {
	r.p.cancelPendingRead()
}

// Complete implements Reader. It is idempotent; calls after the first are
// no-ops.
func (r *pipeReader) Complete(err error) {
	r.p.completeReader(err)
}

// Len implements Reader.
func (r *pipeReader) Len() int {
	return r.p.readable()
}

// ReadBytes blocks until n bytes were read, consuming them from the pipe.
// If the writer completes first, the partial data read so far is returned
// together with io.EOF.
func (r *pipeReader) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		panic("bytepipe: negative read size")
	}
	out := make([]byte, 0, n)
	for len(out) < n {
		res, err := r.p.read()
		if err != nil {
			return nil, err
		}
		if res.IsCanceled {
			return nil, ErrReadCanceled
		}
		v := res.View
		take := n - len(out)
		if take > v.Len() {
			take = v.Len()
		}
		it := v.Slice(0, take).Chunks()
		for {
			ch, ok := it.Next()
			if !ok {
				break
			}
			out = append(out, ch...)
		}
		r.AdvanceTo(v.Position(take))
		if res.IsCompleted && take == v.Len() && len(out) < n {
			return out, io.EOF
		}
	}
	return out, nil
}

// ReadByte implements Reader.
func (r *pipeReader) ReadByte() (byte, error) {
	b, err := r.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Skip consumes n bytes without copying them out, blocking like ReadBytes.
func (r *pipeReader) Skip(n int) error {
	if n < 0 {
		panic("bytepipe: negative skip size")
	}
	skipped := 0
	for skipped < n {
		res, err := r.p.read()
		if err != nil {
			return err
		}
		if res.IsCanceled {
			return ErrReadCanceled
		}
		v := res.View
		take := n - skipped
		if take > v.Len() {
			take = v.Len()
		}
		r.AdvanceTo(v.Position(take))
		skipped += take
		if res.IsCompleted && take == v.Len() && skipped < n {
			return io.EOF
		}
	}
	return nil
}
