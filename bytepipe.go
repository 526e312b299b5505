package bytepipe

import "errors"

const (
	block1k = 1 * 1024
	block2k = 2 * 1024
	block4k = 4 * 1024
	block8k = 8 * 1024

	pageSize = block8k
)

const (
	defaultLowWatermark  = 4 * pageSize
	defaultHighWatermark = 8 * pageSize
)

var (
	// ErrReaderCompleted is returned to the writer once the reader has
	// completed without supplying its own terminal error.
	ErrReaderCompleted = errors.New("bytepipe: reader side completed")

	// ErrMallocTooLarge is returned when a single allocation request exceeds
	// the pool's block capacity. Larger payloads must be chunked across
	// multiple Malloc calls (WriteBytes does this automatically).
	ErrMallocTooLarge = errors.New("bytepipe: malloc size exceeds block capacity")

	// ErrReadCanceled is returned by the blocking convenience helpers when
	// CancelPendingRead fires underneath them. The core Read reports
	// cancellation through ReadResult.IsCanceled instead.
	ErrReadCanceled = errors.New("bytepipe: read canceled")
)

// ReadResult is the outcome of Reader.Read. View spans every committed,
// not-yet-consumed byte. IsCompleted reports that the writer will produce no
// more data, so the view already reflects everything remaining.
type ReadResult struct {
	View        BufferView
	IsCompleted bool
	IsCanceled  bool
}

// FlushResult is the outcome of Writer.Flush. IsCompleted reports that the
// reader has completed, so further writes are useless.
type FlushResult struct {
	IsCompleted bool
	IsCanceled  bool
}

// Reader is the consumer side of a pipe. At most one Read may be in flight
// at a time, and every method must be called from the consumer only.
type Reader interface {
	// Read returns a view over the committed, unconsumed bytes. It blocks
	// until the writer flushes past the examined position, the writer
	// completes, or the read is canceled. A writer terminal error is
	// returned as the error.
	Read() (ReadResult, error)

	// TryRead is the non-blocking variant of Read. It reports false when
	// Read would have suspended.
	TryRead() (ReadResult, bool)

	// AdvanceTo consumes (and examines) everything up to the given position.
	// Fully consumed blocks behind it are recycled to the pool, so any view
	// or position reaching into them must not be used afterwards — a
	// position into a recycled block is dead even for a repeat of the same
	// advance. Repeating an advance is a no-op only while its position's
	// block stays linked (it always does for the current tail).
	AdvanceTo(consumed Position)

	// AdvanceToExamined consumes up to consumed and marks bytes up to
	// examined as seen. Leaving examined short of the committed position
	// keeps the next Read immediate; examining everything makes the next
	// Read wait for a flush.
	AdvanceToExamined(consumed, examined Position)

	// CancelPendingRead resolves an in-flight or future Read with
	// IsCanceled set, leaving positions and buffered data untouched.
	CancelPendingRead()

	// Complete marks the reader side finished. The writer's subsequent
	// calls fail fast with err (or ErrReaderCompleted when err is nil).
	Complete(err error)

	// Len returns the number of committed, unconsumed bytes.
	Len() int

	// ReadBytes blocks until n bytes were consumed and returns a copy of
	// them. A writer completion short of n yields io.EOF.
	ReadBytes(n int) ([]byte, error)
	ReadByte() (byte, error)
	Skip(n int) error
}

// Writer is the producer side of a pipe. At most one allocation session may
// be open at a time, and every method must be called from the producer only.
type Writer interface {
	// Malloc returns a writable span of at least min bytes, extending the
	// tail block or renting a fresh one. The span is exclusive to the
	// writer until MallocAck.
	Malloc(min int) ([]byte, error)

	// MallocAck records that the first n bytes of the span returned by the
	// preceding Malloc were written. The bytes stay invisible to the reader
	// until Flush.
	MallocAck(n int)

	// MallocLen returns the number of acknowledged, unflushed bytes.
	MallocLen() int

	// Flush publishes all acknowledged bytes to the reader. If the
	// committed-but-unconsumed count exceeds the high watermark, Flush
	// blocks until the reader drains it to the low watermark, the reader
	// completes, or the flush is canceled.
	Flush() (FlushResult, error)

	// CancelPendingFlush resolves an in-flight or next Flush with
	// IsCanceled set. Already committed bytes stay committed.
	CancelPendingFlush()

	// Complete publishes any acknowledged bytes and marks the writer side
	// finished; the reader observes end of data (or err) on its next Read.
	Complete(err error)

	WriteBytes(b []byte) (n int, err error)
	WriteString(s string) (n int, err error)
	WriteByte(b byte) error
}
