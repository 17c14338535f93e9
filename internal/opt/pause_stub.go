//go:build (!amd64 && !arm64) || noasm

package opt

// Pause is a no-op on targets without a spin-wait hint. Declared so
// busy-wait loops compile unchanged on every architecture.
func Pause() {}
