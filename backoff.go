package ticketrw

import (
	"runtime"
	"time"

	"github.com/llxisdsh/ticketrw/internal/opt"
)

const (
	// defaultSpinLimit is how many CPU pause hints a waiter issues
	// before escalating to cooperative yields. Roughly the point where
	// there are more runnable goroutines than cores and tight spinning
	// just burns a core somebody else could use.
	defaultSpinLimit = 1000

	// defaultWriterSleep is the timed sleep a blocked writer falls back
	// to once yielding has not produced the lock either. Writer waits
	// are expected to be the long ones: a writer must outwait every
	// reader ticket issued before its own.
	defaultWriterSleep = 10 * time.Microsecond
)

// readerDelay backs off a reader waiting for its ticket to come up.
//
// A queued or active writer means this reader is behind at least one
// full exclusive section, so spinning is pointless and we yield
// immediately. Otherwise pause up to limit times, then yield on every
// further iteration.
func readerDelay(spins *int, limit int, writerQueued bool) {
	if writerQueued {
		runtime.Gosched()
		return
	}
	if *spins < limit {
		*spins++
		opt.Pause()
		return
	}
	runtime.Gosched()
}

// writerDelay backs off a writer waiting for its ticket: pause up to
// limit times, yield up to another limit times, then sleep between
// retries. The sleep tier keeps a long-blocked writer from consuming
// scheduler time while readers drain.
func writerDelay(spins *int, limit int, sleep time.Duration) {
	*spins++
	switch {
	case *spins < limit:
		opt.Pause()
	case *spins < 2*limit:
		runtime.Gosched()
	default:
		time.Sleep(sleep)
	}
}
