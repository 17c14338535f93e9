//go:build !race

package opt

const Race_ = false

// YieldPoint is a forced scheduling point placed at lock transitions to
// widen race windows in diagnostic builds. In normal builds it compiles
// to nothing.
//
//go:nosplit
func YieldPoint() {}
