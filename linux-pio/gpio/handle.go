package gpio

import (
	"runtime"
	"unsafe"

	"github.com/BertoldVdb/go-gpiocdev/closeflag"
)

// handle owns exactly one kernel file descriptor. Chip, LineRequestHandle and
// EventRequestHandle embed it.
//
// A handle must not be used from several goroutines at once. Closing it while
// another goroutine is blocked in a read on the same descriptor is not supported.
type handle struct {
	kernel kernel
	fd     int
	flag   closeflag.CloseFlag
}

// init prepares the handle. A negative fd means the handle owns no descriptor.
func (h *handle) init(k kernel, fd int) {
	h.kernel = k
	h.fd = fd

	if fd >= 0 {
		h.flag.CloseFunc = func() error {
			return kernelError("close", k.close(fd))
		}
	}
}

// Fd returns the descriptor owned by the handle, or -1 if there is none or the
// handle has been closed.
func (h *handle) Fd() int {
	if h.flag.IsClosed() {
		return -1
	}
	return h.fd
}

func (h *handle) guard() error {
	if h.flag.Guard() != nil {
		return ErrorClosed
	}
	return nil
}

func (h *handle) ioctl(op string, request uintptr, arg unsafe.Pointer) error {
	err := h.kernel.ioctl(h.fd, request, arg)
	runtime.KeepAlive(h)

	if err != nil {
		return kernelError(op, err)
	}
	return nil
}

func (h *handle) read(p []byte) (int, error) {
	n, err := h.kernel.read(h.fd, p)
	runtime.KeepAlive(h)

	if err != nil {
		return n, kernelError("read", err)
	}
	return n, nil
}

// close releases the descriptor once. Closing a closed handle is a no-op.
func (h *handle) close() error {
	err := h.flag.Close()
	if err == closeflag.ErrorClosed {
		return nil
	}
	return err
}
