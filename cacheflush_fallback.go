//go:build !arm64

package patchload

// Stores are coherent with instruction fetch on x86, and the other
// architectures can't jump at all.
func cacheflush(buf []byte) error {
	return nil
}
