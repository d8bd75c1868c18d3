package gpio

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

type sysKernel struct{}

var defaultKernel kernel = sysKernel{}

func (sysKernel) open(path string) (int, error) {
	return unix.Open(path, unix.O_RDWR|unix.O_NOCTTY|unix.O_CLOEXEC, 0)
}

func (sysKernel) ioctl(fd int, request uintptr, arg unsafe.Pointer) error {
	_, _, errNo := unix.Syscall(
		unix.SYS_IOCTL,
		uintptr(fd),
		request,
		uintptr(arg),
	)
	if errNo != 0 {
		return errNo
	}

	return nil
}

func (sysKernel) read(fd int, p []byte) (int, error) {
	return unix.Read(fd, p)
}

func (sysKernel) close(fd int) error {
	return unix.Close(fd)
}
