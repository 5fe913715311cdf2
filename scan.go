package patchload

import (
	"bytes"
	"fmt"
)

// Placeholder marks the patch site in a payload.
const Placeholder = "XXX"

// Find returns the offset of the first occurrence of pattern in buf at or
// after from, or -1 if there isn't one.
func Find(buf, pattern []byte, from int) int {
	if len(pattern) == 0 || from < 0 || from > len(buf)-len(pattern) {
		return -1
	}

	i := bytes.Index(buf[from:], pattern)
	if i < 0 {
		return -1
	}
	return from + i
}

// patchAt overwrites buf at offset with repl.
func patchAt(buf []byte, offset int, repl []byte) error {
	if offset < 0 || offset > len(buf)-len(repl) {
		return fmt.Errorf("%w: %d bytes at offset %d of %d", ErrOutOfRange, len(repl), offset, len(buf))
	}
	copy(buf[offset:], repl)
	return nil
}
