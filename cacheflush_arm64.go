//go:build arm64 && cgo

package patchload

import "unsafe"

/*
static void flush_icache(char *start, char *end) {
	__builtin___clear_cache(start, end);
}
*/
import "C"

// cacheflush makes freshly written instructions in buf visible to the
// instruction cache.
func cacheflush(buf []byte) error {
	start := unsafe.Pointer(unsafe.SliceData(buf))
	end := unsafe.Add(start, len(buf))
	C.flush_icache((*C.char)(start), (*C.char)(end))
	return nil
}
