//go:build arm64 && !cgo

package patchload

import "fmt"

// The patched instructions may still be stale in the instruction cache and
// the flush builtin is only reachable through cgo. Refuse to jump rather than
// run half-old code.
func cacheflush(buf []byte) error {
	return fmt.Errorf("%w: arm64 needs CGO_ENABLED=1 to flush the instruction cache", ErrUnsupportedArch)
}
