package patchload

import (
	"fmt"
	"runtime"

	"k8s.io/klog/v2"
)

// Transfer continues execution at the first byte of b.
//
// This is the one place loaded bytes are executed and there is nothing safe
// about it. Whatever is in the buffer runs on the current goroutine's stack
// with the registers the assembly stub leaves behind. If it isn't valid code
// for this CPU the process dies, or worse.
//
// Transfer only returns if the jump couldn't be attempted or if the payload
// ran a bare return instruction, which lands back here.
func Transfer(b *Buffer) error {
	if b == nil || b.Cap() == 0 {
		return ErrEmptyBuffer
	}
	if !canJump {
		return fmt.Errorf("%w: %s", ErrUnsupportedArch, runtime.GOARCH)
	}

	err := cacheflush(b.code)
	if err != nil {
		return err
	}

	klog.V(2).Infof("Transferring control to 0x%x", b.Entry())
	klog.Flush()

	// The payload may assume the thread never changes under it.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	jump(b.Entry())

	return ErrPayloadReturned
}
