package ticketrw

import (
	"unsafe"

	"go.uber.org/atomic"

	"github.com/llxisdsh/ticketrw/internal/opt"
)

// Stats counts lock traffic for the locks it is attached to (see
// [WithStats]). Calls count acquisition attempts: every RLock, Lock,
// TryRLock and TryLock call bumps the matching counter whether or not
// the lock is granted, so a spinning retry loop shows up with its real
// weight. Waits count blocking acquisitions that had to back off at
// least once before admission.
//
// The counters are advisory instrumentation; the locking algorithm
// never reads them. The zero value is ready for use, and one Stats may
// be shared across many locks to aggregate a subsystem.
//
// The read and write counter pairs sit on separate cache lines so that
// reader-heavy traffic does not slow writer bookkeeping and vice
// versa.
type Stats struct {
	readCalls atomic.Int64
	readWaits atomic.Int64
	_         [(opt.CacheLineSize_ - unsafe.Sizeof(struct {
		a, b atomic.Int64
	}{})%opt.CacheLineSize_) % opt.CacheLineSize_]byte
	writeCalls atomic.Int64
	writeWaits atomic.Int64
}

// The increment helpers tolerate a nil receiver so the lock paths can
// call them unconditionally; an unattached lock pays one predictable
// branch.

func (s *Stats) incReadCalls() {
	if s != nil {
		s.readCalls.Inc()
	}
}

func (s *Stats) incReadWaits() {
	if s != nil {
		s.readWaits.Inc()
	}
}

func (s *Stats) incWriteCalls() {
	if s != nil {
		s.writeCalls.Inc()
	}
}

func (s *Stats) incWriteWaits() {
	if s != nil {
		s.writeWaits.Inc()
	}
}

// StatsSnapshot is a point-in-time copy of the counters.
type StatsSnapshot struct {
	ReadCalls  int64 `json:"read_calls"`
	ReadWaits  int64 `json:"read_waits"`
	WriteCalls int64 `json:"write_calls"`
	WriteWaits int64 `json:"write_waits"`
}

// Snapshot copies the counters. The four loads are not one atomic
// unit, so a snapshot taken under traffic is approximate.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		ReadCalls:  s.readCalls.Load(),
		ReadWaits:  s.readWaits.Load(),
		WriteCalls: s.writeCalls.Load(),
		WriteWaits: s.writeWaits.Load(),
	}
}

// Reset zeroes all counters.
func (s *Stats) Reset() {
	s.readCalls.Store(0)
	s.readWaits.Store(0)
	s.writeCalls.Store(0)
	s.writeWaits.Store(0)
}
