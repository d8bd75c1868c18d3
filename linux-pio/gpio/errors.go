package gpio

import (
	"fmt"
	"syscall"
)

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrorClosed           = Error("Handle is closed")
	ErrorInvalidDirection = Error("Invalid line direction")
	ErrorTooManyLines     = Error("Too many lines requested")
	ErrorInvalidOffset    = Error("Line offset out of range")
	ErrorLineNotFound     = Error("Line name not found")
	ErrorShortRead        = Error("Short read of event data")
	ErrorInvalidFd        = Error("Invalid file descriptor returned")
	ErrorUnsupported      = Error("GPIO character devices are not supported on this platform")
)

// OpenError is returned when the chip device node cannot be opened
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("Failed to open GPIO chip %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// IoctlError carries the errno of a system call the kernel rejected
type IoctlError struct {
	Op    string
	Errno syscall.Errno
}

func (e *IoctlError) Error() string {
	return fmt.Sprintf("IOCTL %s failed: %s", e.Op, e.Errno.Error())
}

func (e *IoctlError) Unwrap() error { return e.Errno }

// LineCountMismatchError is returned when the number of values does not match
// the number of requested lines. Nothing is sent to the kernel in that case.
type LineCountMismatchError struct {
	Expected int
	Actual   int
}

func (e *LineCountMismatchError) Error() string {
	return fmt.Sprintf("Expected %d values, got %d", e.Expected, e.Actual)
}

func kernelError(op string, err error) error {
	if errno, ok := err.(syscall.Errno); ok {
		return &IoctlError{Op: op, Errno: errno}
	}
	return err
}
