package ticketrw

import (
	"fmt"
	"time"

	"github.com/emirpasic/gods/lists/singlylinkedlist"
	"github.com/sugawarayuuta/sonnet"
)

const (
	defaultWatchInterval = 100 * time.Millisecond
	defaultHoldSamples   = 5
)

// Watchdog is advisory hold-time monitoring for RWLocks. It samples
// registered locks on a fixed interval and reports, through a Logger,
// any lock observed locked for too many consecutive samples; a lock
// stuck that long usually means a leaked unlock or a critical section
// doing I/O it should not.
//
// The watchdog only ever observes lock state. It never acquires,
// delays, or otherwise participates in the locks it watches, and the
// locks carry no ownership tracking on its behalf.
type Watchdog struct {
	interval    time.Duration
	holdSamples int
	logger      Logger

	mu    RWLock
	locks *singlylinkedlist.List

	stop chan struct{}
	done chan struct{}
}

// watchEntry pairs a registered lock with its consecutive-locked
// sample count. held is touched only by the sampling goroutine.
type watchEntry struct {
	name string
	lock *RWLock
	held int
}

// WatchdogOption configures a Watchdog.
type WatchdogOption func(*Watchdog)

// WithInterval sets the sampling period. Values <= 0 keep the default.
func WithInterval(d time.Duration) WatchdogOption {
	return func(w *Watchdog) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithHoldSamples sets how many consecutive locked samples trigger a
// report. Values <= 0 keep the default.
func WithHoldSamples(n int) WatchdogOption {
	return func(w *Watchdog) {
		if n > 0 {
			w.holdSamples = n
		}
	}
}

// WithLogger replaces the default stdout logger. A nil logger keeps
// the default.
func WithLogger(l Logger) WatchdogOption {
	return func(w *Watchdog) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWatchdog returns a watchdog ready to Start.
func NewWatchdog(opts ...WatchdogOption) *Watchdog {
	w := &Watchdog{
		interval:    defaultWatchInterval,
		holdSamples: defaultHoldSamples,
		logger:      newLogger(),
		locks:       singlylinkedlist.New(),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Register adds lock under name. Safe to call while the watchdog is
// running; names are not required to be unique, but Unregister removes
// the first match.
func (w *Watchdog) Register(name string, lock *RWLock) {
	w.mu.Lock()
	w.locks.Add(&watchEntry{name: name, lock: lock})
	w.mu.Unlock()
}

// Unregister removes the first lock registered under name.
func (w *Watchdog) Unregister(name string) {
	w.mu.Lock()
	idx := -1
	w.locks.Each(func(i int, v interface{}) {
		if idx < 0 && v.(*watchEntry).name == name {
			idx = i
		}
	})
	if idx >= 0 {
		w.locks.Remove(idx)
	}
	w.mu.Unlock()
}

// Start launches the sampling loop. Call it once per watchdog.
func (w *Watchdog) Start() {
	go w.run()
}

// Stop halts sampling and waits for the loop to exit. Call it once,
// after Start.
func (w *Watchdog) Stop() {
	close(w.stop)
	<-w.done
}

func (w *Watchdog) run() {
	defer close(w.done)
	tick := time.NewTicker(w.interval)
	defer tick.Stop()
	for {
		select {
		case <-w.stop:
			return
		case <-tick.C:
			w.sample()
		}
	}
}

// sample observes every registered lock once. The registry lock guards
// membership only; hold counters belong to this goroutine alone, and
// reporting happens outside the lock.
func (w *Watchdog) sample() {
	w.mu.RLock()
	entries := w.locks.Values()
	w.mu.RUnlock()

	for _, v := range entries {
		e := v.(*watchEntry)
		if !e.lock.IsLocked() {
			e.held = 0
			continue
		}
		e.held++
		if e.held%w.holdSamples == 0 {
			w.report(e)
		}
	}
}

// holdReport is the diagnostic payload for a long-held lock.
type holdReport struct {
	Name    string       `json:"name"`
	HeldFor int64        `json:"held_ns"`
	Samples int          `json:"samples"`
	State   lockSnapshot `json:"state"`
}

func (w *Watchdog) report(e *watchEntry) {
	payload, err := sonnet.Marshal(holdReport{
		Name:    e.name,
		HeldFor: int64(time.Duration(e.held) * w.interval),
		Samples: e.held,
		State:   e.lock.snapshot(),
	})
	if err != nil {
		w.logger.Error(fmt.Errorf("ticketrw: watchdog report for %q: %w", e.name, err))
		return
	}
	w.logger.Info("ticketrw: lock held across samples: " + string(payload))
}
