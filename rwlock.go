package ticketrw

import (
	"runtime"
	"sync/atomic"
	"time"

	"github.com/llxisdsh/ticketrw/internal/opt"
)

// Field layout of the packed lock word. Each field is an independent
// 16-bit counter; all mutations are atomic operations on the whole
// word, so the four fields always change as one observable unit.
//
// next sits in the top lane so ticket issuance can be a single
// wait-free fetch-add: when next wraps mod 64K the carry falls off the
// top of the word instead of corrupting a neighbouring field. Every
// other field is updated through a CAS that re-packs the word with
// explicit 16-bit arithmetic, so no increment can carry across a lane
// boundary.
const (
	rwWritersShift = 0  // now serving, exclusive
	rwReadersShift = 16 // now serving, shared
	rwActiveShift  = 32 // writers queued or holding
	rwNextShift    = 48 // next ticket to issue
)

// lockWord is a point-in-time value of the packed four-counter state.
type lockWord uint64

func (w lockWord) writers() uint16       { return uint16(w >> rwWritersShift) }
func (w lockWord) readers() uint16       { return uint16(w >> rwReadersShift) }
func (w lockWord) writersActive() uint16 { return uint16(w >> rwActiveShift) }
func (w lockWord) next() uint16          { return uint16(w >> rwNextShift) }

func packLockWord(writers, readers, writersActive, next uint16) lockWord {
	return lockWord(writers)<<rwWritersShift |
		lockWord(readers)<<rwReadersShift |
		lockWord(writersActive)<<rwActiveShift |
		lockWord(next)<<rwNextShift
}

// RWLock is a ticket-ordered reader-writer spin lock.
//
// Acquisition works like a deli counter: every request takes the next
// ticket number, and two "now serving" counters decide admission.
// Readers enter when the shared counter reaches their ticket, writers
// when the exclusive one does. Tickets are served strictly in issue
// order, so neither side can starve the other: contiguous reader
// tickets are admitted one after another and hold the lock together,
// while a writer ticket waits until every earlier ticket has fully
// released.
//
// Properties:
//   - FIFO fairness across tickets; no starvation of either side.
//   - Readers overlap; writers are exclusive.
//   - Pure busy-wait with pause/yield/sleep backoff; never parks in
//     the scheduler. Intended for short critical sections.
//   - Not reentrant and no ownership tracking: a holder that
//     re-acquires deadlocks silently.
//
// The zero value is an unlocked lock ready for use; [New] attaches
// tuning options and contention counters.
//
// The counters are 16-bit, so ticket numbers alias after 64K
// issuances. A request that stays blocked while 65536 further tickets
// are issued on the same lock can be co-granted with the ticket that
// aliases its own. That bound is inherent to the packed word and is
// accepted rather than detected.
//
// Size: 32 bytes on 64-bit targets.
type RWLock struct {
	_     noCopy
	state atomic.Uint64

	// Configuration; must not change once the lock is shared.
	stats       *Stats
	writerSleep time.Duration
	spinLimit   int
}

// New returns an unlocked RWLock with the given options applied.
func New(opts ...Option) *RWLock {
	rw := &RWLock{}
	for _, o := range opts {
		o(rw)
	}
	return rw
}

func (rw *RWLock) limit() int {
	if rw.spinLimit > 0 {
		return rw.spinLimit
	}
	return defaultSpinLimit
}

func (rw *RWLock) sleep() time.Duration {
	if rw.writerSleep > 0 {
		return rw.writerSleep
	}
	return defaultWriterSleep
}

// Init resets the lock to its unlocked zero state. The zero value is
// already usable; Init exists for storage that hosted a previous lock.
// It must not be called while the lock is held or has waiters.
func (rw *RWLock) Init() {
	rw.state.Store(0)
}

// Destroy clears the lock. The caller must guarantee no holder or
// waiter remains; any concurrent use past this point is undefined.
func (rw *RWLock) Destroy() {
	rw.state.Store(0)
}

// TryRLock attempts to take a read lock without blocking.
//
// It succeeds only when the lock was last granted to a reader and
// nobody is queued, i.e. this caller's ticket would be served
// immediately. The whole admission is one CAS that claims the ticket
// and advances the shared serving counter together. On any race it
// reports false rather than retrying; the caller owns the retry
// policy.
func (rw *RWLock) TryRLock() bool {
	rw.stats.incReadCalls()

	old := lockWord(rw.state.Load())
	if old.readers() != old.next() {
		return false
	}
	t := old.next() + 1
	upd := packLockWord(old.writers(), t, old.writersActive(), t)
	return rw.state.CompareAndSwap(uint64(old), uint64(upd))
}

// RLock blocks until a read lock is granted.
//
// The releasing holder's CAS and the load that observes admission are
// both sequentially consistent, so everything written before the
// release is visible once RLock returns.
func (rw *RWLock) RLock() {
	rw.stats.incReadCalls()

	opt.YieldPoint()

	// Take a ticket. This may wrap next mod 64K; see the type comment
	// for the aliasing bound that implies.
	w := lockWord(rw.state.Add(1 << rwNextShift))
	t := w.next() - 1

	if w.readers() != t {
		rw.stats.incReadWaits()
		limit := rw.limit()
		for spins := 0; w.readers() != t; {
			readerDelay(&spins, limit, w.writersActive() > 0)
			w = lockWord(rw.state.Load())
		}
	}

	// Our ticket equals readers, and only the goroutine holding that
	// exact ticket may perform this advance. The CAS still re-packs
	// the whole word because the neighbouring fields move concurrently.
	old := w
	for {
		upd := packLockWord(old.writers(), t+1, old.writersActive(), old.next())
		if rw.state.CompareAndSwap(uint64(old), uint64(upd)) {
			return
		}
		old = lockWord(rw.state.Load())
	}
}

// RLockSpin takes a read lock by retrying the one-shot admission CAS
// instead of queuing a ticket. Readers arriving concurrently are then
// admitted by a single CAS each, without lining up one ticket at a
// time; for read-heavy workloads that makes a measurable difference.
// The moment a writer enqueues, the attempts start failing and this
// caller backs off (yielding while the writer is around, pausing
// otherwise), so writer fairness is unaffected.
func (rw *RWLock) RLockSpin() {
	for !rw.TryRLock() {
		if lockWord(rw.state.Load()).writersActive() > 0 {
			runtime.Gosched()
		} else {
			opt.Pause()
		}
	}
}

// RUnlock releases a read lock by advancing the exclusive serving
// counter: a queued writer's ticket becomes current only once every
// admitted reader has released. Concurrent releasing readers all
// contend on this same counter, so the advance must be one atomic
// update. Calling RUnlock without a matching RLock is undefined.
func (rw *RWLock) RUnlock() {
	for {
		old := lockWord(rw.state.Load())
		upd := packLockWord(old.writers()+1, old.readers(), old.writersActive(), old.next())
		if rw.state.CompareAndSwap(uint64(old), uint64(upd)) {
			return
		}
	}
}

// TryLock attempts to take the write lock without blocking.
//
// It succeeds only when every issued ticket has fully released, i.e.
// this caller's ticket would be served immediately. One CAS claims the
// ticket and marks the writer active; on any race it reports false
// without retrying.
func (rw *RWLock) TryLock() bool {
	rw.stats.incWriteCalls()

	old := lockWord(rw.state.Load())
	if old.writers() != old.next() {
		return false
	}
	upd := packLockWord(old.writers(), old.readers(), old.writersActive()+1, old.next()+1)
	return rw.state.CompareAndSwap(uint64(old), uint64(upd))
}

// Lock blocks until the write lock is granted. Admission implies every
// ticket issued before ours, reader or writer, has fully released.
func (rw *RWLock) Lock() {
	rw.stats.incWriteCalls()

	w := lockWord(rw.state.Add(1 << rwNextShift))
	t := w.next() - 1

	// Mark a writer queued. Advisory only: waiting readers use it to
	// yield instead of burning pause loops behind an exclusive section.
	for {
		old := lockWord(rw.state.Load())
		upd := packLockWord(old.writers(), old.readers(), old.writersActive()+1, old.next())
		if rw.state.CompareAndSwap(uint64(old), uint64(upd)) {
			w = upd
			break
		}
	}

	if w.writers() != t {
		rw.stats.incWriteWaits()
		limit := rw.limit()
		sleep := rw.sleep()
		for spins := 0; w.writers() != t; {
			writerDelay(&spins, limit, sleep)
			w = lockWord(rw.state.Load())
		}
	}
}

// Unlock releases the write lock: the writer mark is dropped and both
// serving counters advance together, making the next ticket eligible
// whether it belongs to a reader or a writer. Waiters decide admission
// from exactly these two values, so they must never be observed
// half-updated; the whole-word CAS guarantees that. The CAS is also
// the release boundary: every write made under the lock is visible to
// the next holder. Calling Unlock without a matching Lock is undefined.
func (rw *RWLock) Unlock() {
	for {
		old := lockWord(rw.state.Load())
		upd := packLockWord(old.writers()+1, old.readers()+1, old.writersActive()-1, old.next())
		if rw.state.CompareAndSwap(uint64(old), uint64(upd)) {
			break
		}
	}

	opt.YieldPoint()
}

// IsLocked reports whether any ticket is outstanding: granted and not
// yet released, or still queued. Diagnostic only; the answer can be
// stale by the time it returns, so use it in assertions rather than
// control flow.
func (rw *RWLock) IsLocked() bool {
	w := lockWord(rw.state.Load())
	return w.writers() != w.next() || w.readers() != w.next()
}

// lockSnapshot is a point-in-time copy of the four counters, consumed
// by diagnostics and tests.
type lockSnapshot struct {
	Writers       uint16 `json:"writers"`
	Readers       uint16 `json:"readers"`
	WritersActive uint16 `json:"writers_active"`
	Next          uint16 `json:"next"`
}

func (rw *RWLock) snapshot() lockSnapshot {
	w := lockWord(rw.state.Load())
	return lockSnapshot{
		Writers:       w.writers(),
		Readers:       w.readers(),
		WritersActive: w.writersActive(),
		Next:          w.next(),
	}
}
