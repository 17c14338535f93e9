package ticketrw

import "time"

// Option configures an RWLock produced by [New]. Options must be
// applied before the lock is shared between goroutines.
type Option func(*RWLock)

// WithSpinLimit sets how many pause iterations a waiter spins before
// escalating to cooperative yields (and, for writers, timed sleeps).
// Values <= 0 keep the default.
func WithSpinLimit(limit int) Option {
	return func(rw *RWLock) {
		rw.spinLimit = limit
	}
}

// WithWriterSleep sets the timed sleep a long-blocked writer falls
// back to once yielding has gone on for a full spin limit. Values <= 0
// keep the default.
func WithWriterSleep(d time.Duration) Option {
	return func(rw *RWLock) {
		rw.writerSleep = d
	}
}

// WithStats attaches contention counters to the lock. The same Stats
// may be shared by several locks, in which case counts aggregate.
func WithStats(s *Stats) Option {
	return func(rw *RWLock) {
		rw.stats = s
	}
}
