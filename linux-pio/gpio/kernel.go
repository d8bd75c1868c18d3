package gpio

import "unsafe"

// kernel is the set of system calls the handles are built on. Errors are returned
// as syscall.Errno where the kernel produced one.
type kernel interface {
	open(path string) (int, error)
	ioctl(fd int, request uintptr, arg unsafe.Pointer) error
	read(fd int, p []byte) (int, error)
	close(fd int) error
}
