//go:build !amd64 && !arm64

package patchload

const canJump = false

func jump(entry uintptr) {
	panic("jump is not implemented on this architecture")
}
