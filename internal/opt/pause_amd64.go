//go:build amd64 && !noasm

package opt

// Pause executes the x86_64 PAUSE instruction: a spin-wait hint that
// keeps a busy loop polite to the sibling hyper-thread without leaving
// userspace. The implementation lives in pause_amd64.s.
//
//go:noescape
func Pause()
