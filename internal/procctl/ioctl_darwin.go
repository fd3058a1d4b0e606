//go:build darwin

package procctl

import (
	"syscall"
	"unsafe"
)

const tiocgpgrp = 0x40047477
const tiocspgrp = 0x80047476

func tcsetpgrp(fd int, pgid int) error {
	p := int32(pgid)
	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, uintptr(fd), uintptr(tiocspgrp), uintptr(unsafe.Pointer(&p)))
	if errno != 0 {
		return errno
	}
	return nil
}

func tcgetpgrp(fd int) (int, error) {
	var p int32
	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, uintptr(fd), uintptr(tiocgpgrp), uintptr(unsafe.Pointer(&p)))
	if errno != 0 {
		return 0, errno
	}
	return int(p), nil
}
