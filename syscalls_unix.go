//go:build unix

package patchload

import "golang.org/x/sys/unix"

const (
	// Added to the backend's read/write mapping.
	protExec = unix.PROT_EXEC

	protRX  = unix.PROT_READ | unix.PROT_EXEC
	protRWX = unix.PROT_READ | unix.PROT_WRITE | unix.PROT_EXEC

	// The backend already maps private anonymous memory.
	mmapFlags = 0
)
