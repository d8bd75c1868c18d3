// Package gpio talks to Linux GPIO character devices (/dev/gpiochipN) using the
// v1 ioctl interface.
//
// A Chip hands out LineRequestHandles for value I/O and EventRequestHandles for
// edge events. Every handle owns its own descriptor: closing the chip leaves the
// derived handles usable. Handles should be closed by their owner; a finalizer
// closes forgotten ones as a safety net.
package gpio

import (
	"fmt"
	"runtime"
	"unsafe"
)

type Chip struct {
	handle

	path    string
	info    ChipInfo
	hasInfo bool
}

// LineRequestConfig adjusts a line request. The zero value gives the behaviour of
// RequestLines.
type LineRequestConfig struct {
	// Consumer label applied to the lines, truncated to 31 bytes.
	// DefaultLineConsumer is used when empty.
	Consumer string
	// DefaultValues holds the initial output value per line. When set, it must
	// have one entry per offset. All lines start at 0 when nil.
	DefaultValues []int
	// ActiveLow inverts the logical value of all lines.
	ActiveLow bool
	// OpenDrain and OpenSource select the output drive mode. They are passed to
	// the kernel as is, which rejects them for inputs or when both are set.
	OpenDrain  bool
	OpenSource bool
}

// EventRequestConfig adjusts an event request
type EventRequestConfig struct {
	// Consumer label applied to the line, truncated to 31 bytes.
	// DefaultEventConsumer is used when empty.
	Consumer string
}

// Open opens the GPIO chip at path, for example /dev/gpiochip0
func Open(path string) (*Chip, error) {
	return openChip(defaultKernel, path)
}

// OpenChip opens /dev/gpiochipN
func OpenChip(chip int) (*Chip, error) {
	return Open(fmt.Sprintf("/dev/gpiochip%d", chip))
}

func openChip(k kernel, path string) (*Chip, error) {
	fd, err := k.open(path)
	if err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}

	c := &Chip{
		path: path,
	}
	c.init(k, fd)
	runtime.SetFinalizer(c, (*Chip).finalize)

	return c, nil
}

func (c *Chip) finalize() {
	c.close()
}

// Path returns the device path the chip was opened with
func (c *Chip) Path() string {
	return c.path
}

// Close releases the chip descriptor. Handles requested from the chip stay valid.
func (c *Chip) Close() error {
	runtime.SetFinalizer(c, nil)
	return c.close()
}

// GetInfo returns the chip name, label and number of lines. The kernel is only
// asked once; a failed query is retried on the next call.
func (c *Chip) GetInfo() (ChipInfo, error) {
	if err := c.guard(); err != nil {
		return ChipInfo{}, err
	}

	if c.hasInfo {
		return c.info, nil
	}

	var ci chipInfoRaw
	err := c.ioctl("chip info", gpioGetChipinfoIoctl, unsafe.Pointer(&ci))
	if err != nil {
		return ChipInfo{}, err
	}

	c.info = decodeChipInfo(&ci)
	c.hasInfo = true

	return c.info, nil
}

func (c *Chip) checkOffset(offset int) error {
	if offset < 0 {
		return ErrorInvalidOffset
	}

	/* Without cached info the kernel does the bounds check */
	if c.hasInfo && offset >= c.info.Lines {
		return ErrorInvalidOffset
	}

	return nil
}

// GetLineInfo queries the current state of one line
func (c *Chip) GetLineInfo(offset int) (LineInfo, error) {
	if err := c.guard(); err != nil {
		return LineInfo{}, err
	}

	if err := c.checkOffset(offset); err != nil {
		return LineInfo{}, err
	}

	li := encodeLineInfoQuery(offset)
	err := c.ioctl("line info", gpioGetLineinfoIoctl, unsafe.Pointer(&li))
	if err != nil {
		return LineInfo{}, err
	}

	return decodeLineInfo(&li), nil
}

// FindLine returns the offset of the first line called name
func (c *Chip) FindLine(name string) (int, error) {
	info, err := c.GetInfo()
	if err != nil {
		return 0, err
	}

	for i := 0; i < info.Lines; i++ {
		line, err := c.GetLineInfo(i)
		if err != nil {
			return 0, err
		}

		if line.Name == name {
			return i, nil
		}
	}

	return 0, ErrorLineNotFound
}

// RequestLines requests the lines at offsets with the given direction. All lines
// start at logical 0. An empty offsets slice yields a handle with zero lines that
// owns no descriptor.
func (c *Chip) RequestLines(offsets []int, direction Direction) (*LineRequestHandle, error) {
	return c.RequestLinesWithConfig(offsets, direction, LineRequestConfig{})
}

// RequestLinesWithConfig is RequestLines with a custom consumer label, per line
// defaults and polarity
func (c *Chip) RequestLinesWithConfig(offsets []int, direction Direction, config LineRequestConfig) (*LineRequestHandle, error) {
	if err := c.guard(); err != nil {
		return nil, err
	}

	if len(offsets) == 0 {
		return newLineRequestHandle(c.kernel, -1, nil, direction), nil
	}

	if len(offsets) >= HandlesMax {
		return nil, ErrorTooManyLines
	}

	flags, err := direction.requestFlag()
	if err != nil {
		return nil, err
	}
	if config.ActiveLow {
		flags |= RequestActiveLow
	}
	if config.OpenDrain {
		flags |= RequestOpenDrain
	}
	if config.OpenSource {
		flags |= RequestOpenSource
	}

	if config.DefaultValues != nil && len(config.DefaultValues) != len(offsets) {
		return nil, &LineCountMismatchError{Expected: len(offsets), Actual: len(config.DefaultValues)}
	}

	for _, off := range offsets {
		if err := c.checkOffset(off); err != nil {
			return nil, err
		}
	}

	consumer := config.Consumer
	if consumer == "" {
		consumer = DefaultLineConsumer
	}

	req := encodeHandleRequest(offsets, flags, config.DefaultValues, consumer)
	err = c.ioctl("line handle", gpioGetLinehandleIoctl, unsafe.Pointer(&req))
	if err != nil {
		return nil, err
	}

	if req.Fd < 0 {
		return nil, ErrorInvalidFd
	}

	return newLineRequestHandle(c.kernel, int(req.Fd), offsets, direction), nil
}

// RequestEvent requests the line at offset as an input reporting both edges
func (c *Chip) RequestEvent(offset int) (*EventRequestHandle, error) {
	return c.RequestEventWithConfig(offset, EventRequestConfig{})
}

// RequestEventWithConfig is RequestEvent with a custom consumer label
func (c *Chip) RequestEventWithConfig(offset int, config EventRequestConfig) (*EventRequestHandle, error) {
	if err := c.guard(); err != nil {
		return nil, err
	}

	if err := c.checkOffset(offset); err != nil {
		return nil, err
	}

	consumer := config.Consumer
	if consumer == "" {
		consumer = DefaultEventConsumer
	}

	req := encodeEventRequest(offset, consumer)
	err := c.ioctl("line event", gpioGetLineeventIoctl, unsafe.Pointer(&req))
	if err != nil {
		return nil, err
	}

	if req.Fd < 0 {
		return nil, ErrorInvalidFd
	}

	return newEventRequestHandle(c.kernel, int(req.Fd), offset), nil
}
