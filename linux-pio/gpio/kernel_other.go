//go:build !linux

package gpio

import "unsafe"

type sysKernel struct{}

var defaultKernel kernel = sysKernel{}

func (sysKernel) open(path string) (int, error) {
	return -1, ErrorUnsupported
}

func (sysKernel) ioctl(fd int, request uintptr, arg unsafe.Pointer) error {
	return ErrorUnsupported
}

func (sysKernel) read(fd int, p []byte) (int, error) {
	return 0, ErrorUnsupported
}

func (sysKernel) close(fd int) error {
	return ErrorUnsupported
}
