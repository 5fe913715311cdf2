package patchload

import "errors"

var (
	// ErrShortRead is returned when the input ends before a full
	// replacement was read.
	ErrShortRead = errors.New("short read")

	// ErrOutOfRange is returned when a patch would fall outside the buffer.
	ErrOutOfRange = errors.New("patch out of range")

	ErrEmptyBuffer     = errors.New("empty buffer")
	ErrUnsupportedArch = errors.New("control transfer not supported on this architecture")

	// ErrPayloadReturned is returned by Transfer if the payload executes a
	// return instruction without disturbing the stack.
	ErrPayloadReturned = errors.New("payload returned to the loader")

	ErrInvalidConfig = errors.New("invalid configuration")
)
