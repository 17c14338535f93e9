package ticketrw

import (
	"math/bits"
	"unsafe"

	"github.com/llxisdsh/ticketrw/internal/opt"
)

// stripeHashC is the golden ratio hash constant (64-bit). Multiplying
// the key by it and keeping the top bits spreads consecutive keys
// across stripes.
const stripeHashC = 0x9e3779b97f4a7c15

// paddedRWLock keeps each stripe on its own cache line so contention
// on one stripe does not false-share into its neighbours.
type paddedRWLock struct {
	RWLock
	_ [(opt.CacheLineSize_ - unsafe.Sizeof(RWLock{})%opt.CacheLineSize_) % opt.CacheLineSize_]byte
}

// RWLockTable is a fixed, power-of-two array of RWLocks selected by
// hashing a caller-supplied key. It trades lock granularity for
// memory: instead of embedding a lock in each of a very large number
// of small objects, callers guard each object with the stripe its key
// hashes to. Distinct keys may share a stripe; that only serializes
// them, never breaks exclusion.
type RWLockTable struct {
	shift   uint
	stripes []paddedRWLock
}

// NewRWLockTable returns a table of at least the requested number of
// stripes, rounded up to a power of two. Options apply to every
// stripe. Panics if stripes is not positive.
func NewRWLockTable(stripes int, opts ...Option) *RWLockTable {
	if stripes <= 0 {
		panic("ticketrw: stripe count must be positive")
	}
	n := nextPowOf2(stripes)
	t := &RWLockTable{
		shift:   uint(64 - bits.TrailingZeros(uint(n))),
		stripes: make([]paddedRWLock, n),
	}
	for i := range t.stripes {
		for _, o := range opts {
			o(&t.stripes[i].RWLock)
		}
	}
	return t
}

// Of returns the stripe that guards key. The same key always routes to
// the same lock.
func (t *RWLockTable) Of(key uint64) *RWLock {
	return &t.stripes[(key*stripeHashC)>>t.shift].RWLock
}

// Len returns the stripe count.
func (t *RWLockTable) Len() int {
	return len(t.stripes)
}
