package bytepipe

var _ Writer = (*pipeWriter)(nil)

// pipeWriter is the producer handle; it delegates to the pipe core.
type pipeWriter struct {
	p *Pipe
}

// Malloc implements Writer.
func (w *pipeWriter) Malloc(min int) ([]byte, error) {
	return w.p.malloc(min)
}

// MallocAck implements Writer.
func (w *pipeWriter) MallocAck(n int) {
	w.p.mallocAck(n)
}

// MallocLen implements Writer.
func (w *pipeWriter) MallocLen() int {
	return w.p.mallocLen()
}

// Flush implements Writer.
func (w *pipeWriter) Flush() (FlushResult, error) {
	return w.p.flush()
}

// CancelPendingFlush implements Writer.
func (w *pipeWriter) CancelPendingFlush() {
	w.p.cancelPendingFlush()
}

// Complete implements Writer. It is idempotent; calls after the first are
// no-ops.
func (w *pipeWriter) Complete(err error) {
	w.p.completeWriter(err)
}

// WriteBytes copies b into the pipe, chunking across blocks as needed. The
// bytes become visible to the reader on the next Flush.
func (w *pipeWriter) WriteBytes(b []byte) (n int, err error) {
	for len(b) > 0 {
		span, err := w.p.malloc(1)
		if err != nil {
			return n, err
		}
		c := copy(span, b)
		w.p.mallocAck(c)
		b = b[c:]
		n += c
	}
	return n, nil
}

// WriteString copies s into the pipe, chunking across blocks as needed.
func (w *pipeWriter) WriteString(s string) (n int, err error) {
	for len(s) > 0 {
		span, err := w.p.malloc(1)
		if err != nil {
			return n, err
		}
		c := copy(span, s)
		w.p.mallocAck(c)
		s = s[c:]
		n += c
	}
	return n, nil
}

// WriteByte implements Writer.
func (w *pipeWriter) WriteByte(b byte) error {
	span, err := w.p.malloc(1)
	if err != nil {
		return err
	}
	span[0] = b
	w.p.mallocAck(1)
	return nil
}
