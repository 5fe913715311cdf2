package patchload

import (
	"fmt"
	"strings"
)

// Policy decides when replacement bytes are read.
type Policy int

const (
	// Eager reads the replacement once, before scanning.
	Eager Policy = iota

	// Lazy reads a replacement when a placeholder is found.
	Lazy
)

func (p Policy) String() string {
	switch p {
	case Eager:
		return "eager"
	case Lazy:
		return "lazy"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// ParsePolicy converts "eager" or "lazy" to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "eager":
		return Eager, nil
	case "lazy":
		return Lazy, nil
	}
	return 0, fmt.Errorf("%w: unknown policy %q", ErrInvalidConfig, s)
}

// ShortRead decides what happens when the input ends before a full
// replacement arrives.
type ShortRead int

const (
	// ShortReadError fails with ErrShortRead.
	ShortReadError ShortRead = iota

	// ShortReadZero fills the missing bytes with zeros.
	ShortReadZero

	// ShortReadNop shifts the bytes that were read to the end of the
	// replacement and fills the start with x86 NOPs.
	ShortReadNop
)

func (m ShortRead) String() string {
	switch m {
	case ShortReadError:
		return "error"
	case ShortReadZero:
		return "zero"
	case ShortReadNop:
		return "nop"
	}
	return fmt.Sprintf("ShortRead(%d)", int(m))
}

// ParseShortRead converts "error", "zero" or "nop" to a ShortRead.
func ParseShortRead(s string) (ShortRead, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return ShortReadError, nil
	case "zero":
		return ShortReadZero, nil
	case "nop":
		return ShortReadNop, nil
	}
	return 0, fmt.Errorf("%w: unknown short read mode %q", ErrInvalidConfig, s)
}
