//go:build windows

package patchload

import "golang.org/x/sys/windows"

const (
	// The backend turns this into PAGE_EXECUTE_READWRITE.
	protExec = windows.PAGE_EXECUTE

	protRX  = windows.PAGE_EXECUTE_READ
	protRWX = windows.PAGE_EXECUTE_READWRITE

	// VirtualAlloc takes no extra mapping flags.
	mmapFlags = 0
)
