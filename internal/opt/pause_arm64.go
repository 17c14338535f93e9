//go:build arm64 && !noasm

package opt

// Pause executes the arm64 YIELD instruction, the spin-wait hint used
// by the runtime's own procyield. The implementation lives in
// pause_arm64.s.
//
//go:noescape
func Pause()
