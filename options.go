package bytepipe

type options struct {
	pool      *BlockPool
	blockSize int
	low       int
	high      int
}

type Option func(o *options)

// WithPool shares a block pool between pipes. It takes precedence over
// WithBlockSize.
func WithPool(pool *BlockPool) Option {
	return func(o *options) {
		o.pool = pool
	}
}

// WithBlockSize sets the capacity of the pipe's own pool blocks. Ignored
// when WithPool is given.
func WithBlockSize(n int) Option {
	return func(o *options) {
		o.blockSize = n
	}
}

// WithWatermarks sets the flow-control thresholds, in committed-but-
// unconsumed bytes: Flush pauses above high and resumes at or below low.
func WithWatermarks(low, high int) Option {
	return func(o *options) {
		o.low = low
		o.high = high
	}
}
