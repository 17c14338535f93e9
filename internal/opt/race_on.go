//go:build race

package opt

import (
	"runtime"
)

const Race_ = true

// YieldPoint forces a scheduling point so race-enabled runs see more
// interleavings around lock hand-off than a tight loop would produce.
func YieldPoint() {
	runtime.Gosched()
}
