package patchload

import (
	"errors"
	"fmt"
	"io"
	"os"
	"unsafe"

	"k8s.io/klog/v2"
)

// Buffer is a fixed-capacity block of memory that is readable, writable and
// executable.
type Buffer struct {
	// Allocated from alloc. The slice length is the capacity and never
	// changes.
	code  []byte
	alloc *allocator

	// Number of payload bytes loaded.
	n int
}

// NewBuffer allocates a zeroed executable buffer of exactly capacity bytes.
func NewBuffer(capacity int) (*Buffer, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidConfig, capacity)
	}

	alloc, err := newAllocator(capacity)
	if err != nil {
		return nil, fmt.Errorf("unable to allocate executable memory: %w", err)
	}

	code, err := alloc.Allocate(capacity)
	if err != nil {
		return nil, fmt.Errorf("unable to allocate executable memory: %w", err)
	}
	code = code[:capacity:capacity]

	klog.V(2).Infof("Allocated %d byte executable buffer at 0x%x", capacity, uintptr(unsafe.Pointer(unsafe.SliceData(code))))

	return &Buffer{code: code, alloc: alloc}, nil
}

// Cap returns the fixed capacity of the buffer.
func (b *Buffer) Cap() int {
	return len(b.code)
}

// Len returns the number of payload bytes loaded by the last Load.
func (b *Buffer) Len() int {
	return b.n
}

// Bytes returns the whole buffer, including any space past the payload.
// Writes to the slice modify the code that will run.
func (b *Buffer) Bytes() []byte {
	return b.code
}

// Payload returns the loaded bytes.
func (b *Buffer) Payload() []byte {
	return b.code[:b.n]
}

// Entry returns the address execution starts at.
func (b *Buffer) Entry() uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(b.code)))
}

// Load copies up to Cap bytes from r to the start of the buffer and returns
// the number of bytes copied. A short source leaves the rest of the buffer
// untouched. A source larger than the buffer is truncated without an error.
func (b *Buffer) Load(r io.Reader) (int, error) {
	n, err := io.ReadFull(r, b.code)
	b.n = n
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return n, fmt.Errorf("error reading payload: %w", err)
	}

	return n, nil
}

// LoadFile loads the named file into the buffer.
func (b *Buffer) LoadFile(name string) (int, error) {
	f, err := os.Open(name)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n, err := b.Load(f)
	if err != nil {
		return n, fmt.Errorf("%s: %w", name, err)
	}

	klog.V(2).Infof("Loaded %d bytes from %s", n, name)

	return n, nil
}

// Seal removes write permission from the buffer. Further writes fault.
func (b *Buffer) Seal() error {
	if b.alloc == nil {
		return ErrEmptyBuffer
	}

	err := b.alloc.EndMutate()
	if err != nil {
		return fmt.Errorf("unable to seal buffer: %w", err)
	}
	return nil
}

// Free releases the buffer. The loader itself never does this since control
// doesn't come back, but embedders and tests do.
func (b *Buffer) Free() {
	if b == nil || b.code == nil {
		return
	}

	err := b.alloc.Free(b.code)
	if err != nil {
		klog.Warningf("Unable to free buffer at 0x%x: %v", b.Entry(), err)
	}
	b.code = nil
	b.alloc = nil
	b.n = 0
}
