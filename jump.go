//go:build amd64 || arm64

package patchload

const canJump = true

// jump branches to entry without pushing a return address. Implemented in
// assembly.
//
//go:noescape
func jump(entry uintptr)
