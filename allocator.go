package patchload

import (
	"errors"
	"sync"

	"github.com/pboyd/malloc"
)

var errNoProtect = errors.New("arena backend can't change page protection")

// allocator hands out executable memory from its own mmap-backed arena.
// Protection changes apply to the whole arena, so every Buffer gets its own
// allocator and never shares a page with another one.
type allocator struct {
	*malloc.Arena
	protect func(int) error
	mu      sync.Mutex
	mutable bool
}

func newAllocator(startSize int) (*allocator, error) {
	// The backend always maps read/write, protExec adds execute.
	be := malloc.MmapBackend(malloc.MmapProt(protExec), malloc.MmapFlags(mmapFlags))

	a := &allocator{mutable: true}
	if protBE, ok := be.(malloc.ProtectedArenaBackend); ok {
		a.protect = protBE.Protect
	}

	a.Arena = malloc.NewArena(uint64(startSize), malloc.Backend(be))
	if a.Arena == nil {
		return nil, errors.New("unable to initialize arena")
	}
	return a, nil
}

func (a *allocator) Allocate(size int) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.mutable {
		return nil, errors.New("allocate called on a sealed arena")
	}

	buf, err := malloc.MallocSlice[byte](a.Arena, size)
	if err != nil {
		return nil, err
	}

	// Freed blocks are reused, so don't count on the backend zeroing them.
	clear(buf)

	return buf, nil
}

func (a *allocator) Free(buf []byte) error {
	err := a.BeginMutate()
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	malloc.FreeSlice(a.Arena, buf)
	return nil
}

// BeginMutate makes the arena writable again after EndMutate.
func (a *allocator) BeginMutate() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.mutable {
		return nil
	}
	if a.protect == nil {
		return errNoProtect
	}

	err := a.protect(protRWX)
	if err == nil {
		a.mutable = true
	}
	return err
}

// EndMutate drops write access to the arena, block headers included.
func (a *allocator) EndMutate() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.mutable {
		return nil
	}
	if a.protect == nil {
		return errNoProtect
	}

	err := a.protect(protRX)
	if err == nil {
		a.mutable = false
	}
	return err
}
