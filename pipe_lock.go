package bytepipe

import "sync/atomic"

/* State keys
+-----------+         +------------+
|  reading  |         |  flushing  |
+-----------+         +------------+

- "reading" locks the consumer's await; one Read/TryRead in flight.
- "flushing" locks the producer's await; one Flush in flight.
*/

type key int32

const (
	reading key = iota
	flushing
	// total must be at the bottom.
	total
)

// locker refuses concurrent entry into a side's awaiting operation instead
// of queueing it; a second entry is a caller bug.
type locker struct {
	// 0 means unlock, 1 means locked.
	keychain [total]int32
}

func (l *locker) lock(k key) (success bool) {
	return atomic.CompareAndSwapInt32(&l.keychain[k], 0, 1)
}

func (l *locker) unlock(k key) {
	atomic.StoreInt32(&l.keychain[k], 0)
}

func (l *locker) reset() {
	for i := range l.keychain {
		atomic.StoreInt32(&l.keychain[i], 0)
	}
}
