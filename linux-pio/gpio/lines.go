package gpio

import (
	"runtime"
	"unsafe"
)

// LineRequestHandle gives value access to a fixed set of lines
type LineRequestHandle struct {
	handle

	offsets   []int
	direction Direction
}

func newLineRequestHandle(k kernel, fd int, offsets []int, direction Direction) *LineRequestHandle {
	l := &LineRequestHandle{
		offsets:   append([]int{}, offsets...),
		direction: direction,
	}
	l.init(k, fd)
	runtime.SetFinalizer(l, (*LineRequestHandle).finalize)

	return l
}

func (l *LineRequestHandle) finalize() {
	l.close()
}

// Close releases the line handle. Closing twice is harmless.
func (l *LineRequestHandle) Close() error {
	runtime.SetFinalizer(l, nil)
	return l.close()
}

// Offsets returns the requested line offsets in request order
func (l *LineRequestHandle) Offsets() []int {
	return append([]int{}, l.offsets...)
}

func (l *LineRequestHandle) Direction() Direction {
	return l.direction
}

func (l *LineRequestHandle) NumLines() int {
	return len(l.offsets)
}

// ReadValues returns one value per requested line, in request order
func (l *LineRequestHandle) ReadValues() ([]int, error) {
	if err := l.guard(); err != nil {
		return nil, err
	}

	if len(l.offsets) == 0 {
		return []int{}, nil
	}

	var hd handleDataRaw
	err := l.ioctl("get values", gpiohandleGetLineValuesIoctl, unsafe.Pointer(&hd))
	if err != nil {
		return nil, err
	}

	return decodeHandleData(&hd, len(l.offsets)), nil
}

// SetValues drives the lines. values must hold exactly one entry per line, otherwise
// nothing is written. Values are passed to the kernel as is.
func (l *LineRequestHandle) SetValues(values []int) error {
	if err := l.guard(); err != nil {
		return err
	}

	if len(values) != len(l.offsets) {
		return &LineCountMismatchError{Expected: len(l.offsets), Actual: len(values)}
	}

	if len(values) == 0 {
		return nil
	}

	hd := encodeHandleData(values)
	return l.ioctl("set values", gpiohandleSetLineValuesIoctl, unsafe.Pointer(&hd))
}

// ReadValue reads a handle holding a single line
func (l *LineRequestHandle) ReadValue() (int, error) {
	if err := l.guard(); err != nil {
		return 0, err
	}

	if len(l.offsets) != 1 {
		return 0, &LineCountMismatchError{Expected: len(l.offsets), Actual: 1}
	}

	values, err := l.ReadValues()
	if err != nil {
		return 0, err
	}

	return values[0], nil
}

// SetValue drives a handle holding a single line
func (l *LineRequestHandle) SetValue(value int) error {
	return l.SetValues([]int{value})
}
