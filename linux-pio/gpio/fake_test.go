package gpio

import (
	"encoding/binary"
	"syscall"
	"unsafe"
)

type fakeLine struct {
	name      string
	consumer  string
	flags     LineFlag
	value     uint8
	requested bool
}

type fakeChip struct {
	name  string
	label string
	lines []fakeLine
}

type fakeFile struct {
	chip    *fakeChip
	offsets []int
	output  bool
	events  [][]byte
}

// fakeKernel emulates the GPIO v1 uAPI on top of the raw request structs
type fakeKernel struct {
	chips  map[string]*fakeChip
	files  map[int]*fakeFile
	nextFd int

	ioctls      []uintptr
	closed      []int
	handleFlags RequestFlag
	fail   map[uintptr]syscall.Errno
}

func newFakeKernel() *fakeKernel {
	return &fakeKernel{
		chips: map[string]*fakeChip{
			"/dev/gpiochip0": {
				name:  "gpiochip0",
				lines: make([]fakeLine, 54),
			},
		},
		files:  make(map[int]*fakeFile),
		nextFd: 3,
		fail:   make(map[uintptr]syscall.Errno),
	}
}

func (k *fakeKernel) newFd(f *fakeFile) int {
	fd := k.nextFd
	k.nextFd++
	k.files[fd] = f
	return fd
}

func (k *fakeKernel) open(path string) (int, error) {
	chip, ok := k.chips[path]
	if !ok {
		return -1, syscall.ENOENT
	}

	return k.newFd(&fakeFile{chip: chip}), nil
}

func (k *fakeKernel) ioctl(fd int, request uintptr, arg unsafe.Pointer) error {
	k.ioctls = append(k.ioctls, request)

	if errno, ok := k.fail[request]; ok {
		return errno
	}

	f, ok := k.files[fd]
	if !ok {
		return syscall.EBADF
	}
	chip := f.chip

	switch request {
	case gpioGetChipinfoIoctl:
		ci := (*chipInfoRaw)(arg)
		copy(ci.Name[:], chip.name)
		copy(ci.Label[:], chip.label)
		ci.Lines = uint32(len(chip.lines))

	case gpioGetLineinfoIoctl:
		li := (*lineInfoRaw)(arg)
		if int(li.LineOffset) >= len(chip.lines) {
			return syscall.EINVAL
		}
		line := &chip.lines[li.LineOffset]
		li.Flags = uint32(line.flags)
		copy(li.Name[:], line.name)
		copy(li.Consumer[:], line.consumer)

	case gpioGetLinehandleIoctl:
		req := (*handleRequestRaw)(arg)
		flags := RequestFlag(req.Flags)
		k.handleFlags = flags
		if req.Lines == 0 || req.Lines > HandlesMax {
			return syscall.EINVAL
		}
		drive := flags & (RequestOpenDrain | RequestOpenSource)
		if drive == RequestOpenDrain|RequestOpenSource || (drive != 0 && flags&RequestOutput == 0) {
			return syscall.EINVAL
		}
		offsets := make([]int, req.Lines)
		for i := range offsets {
			off := int(req.LineOffsets[i])
			if off >= len(chip.lines) {
				return syscall.EINVAL
			}
			if chip.lines[off].requested {
				return syscall.EBUSY
			}
			offsets[i] = off
		}
		output := flags&RequestOutput != 0
		for i, off := range offsets {
			line := &chip.lines[off]
			line.requested = true
			line.consumer = bytesToString(req.ConsumerLabel[:])
			line.flags = 0
			if output {
				line.flags |= LineIsOut
				line.value = req.DefaultValues[i]
			}
			if flags&RequestActiveLow != 0 {
				line.flags |= LineActiveLow
			}
			if flags&RequestOpenDrain != 0 {
				line.flags |= LineOpenDrain
			}
			if flags&RequestOpenSource != 0 {
				line.flags |= LineOpenSource
			}
		}
		req.Fd = int32(k.newFd(&fakeFile{chip: chip, offsets: offsets, output: output}))

	case gpioGetLineeventIoctl:
		req := (*eventRequestRaw)(arg)
		off := int(req.LineOffset)
		if off >= len(chip.lines) || RequestFlag(req.HandleFlags)&RequestOutput != 0 {
			return syscall.EINVAL
		}
		if chip.lines[off].requested {
			return syscall.EBUSY
		}
		chip.lines[off].requested = true
		chip.lines[off].consumer = bytesToString(req.ConsumerLabel[:])
		req.Fd = int32(k.newFd(&fakeFile{chip: chip, offsets: []int{off}}))

	case gpiohandleGetLineValuesIoctl:
		hd := (*handleDataRaw)(arg)
		for i, off := range f.offsets {
			hd.Values[i] = chip.lines[off].value
		}

	case gpiohandleSetLineValuesIoctl:
		if !f.output {
			return syscall.EPERM
		}
		hd := (*handleDataRaw)(arg)
		for i, off := range f.offsets {
			chip.lines[off].value = hd.Values[i]
		}

	default:
		return syscall.ENOTTY
	}

	return nil
}

func (k *fakeKernel) read(fd int, p []byte) (int, error) {
	f, ok := k.files[fd]
	if !ok {
		return 0, syscall.EBADF
	}
	if len(f.events) == 0 {
		return 0, syscall.EAGAIN
	}

	n := copy(p, f.events[0])
	f.events = f.events[1:]
	return n, nil
}

func (k *fakeKernel) close(fd int) error {
	f, ok := k.files[fd]
	if !ok {
		return syscall.EBADF
	}

	for _, off := range f.offsets {
		f.chip.lines[off].requested = false
	}

	delete(k.files, fd)
	k.closed = append(k.closed, fd)
	return nil
}

func (k *fakeKernel) injectEvent(fd int, timestamp uint64, edge Edge) {
	buf := make([]byte, eventDataSize)
	binary.NativeEndian.PutUint64(buf[0:], timestamp)
	binary.NativeEndian.PutUint32(buf[8:], uint32(edge))

	f := k.files[fd]
	f.events = append(f.events, buf)
}

func (k *fakeKernel) closeCount(fd int) int {
	count := 0
	for _, c := range k.closed {
		if c == fd {
			count++
		}
	}
	return count
}

// fakeNotifier records registrations like a one-shot host event loop
type fakeNotifier struct {
	registered   map[int]interface{}
	unregistered []int
	err          error
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{registered: make(map[int]interface{})}
}

func (n *fakeNotifier) Register(fd int, token interface{}) error {
	if n.err != nil {
		return n.err
	}
	n.registered[fd] = token
	return nil
}

func (n *fakeNotifier) Unregister(fd int) error {
	delete(n.registered, fd)
	n.unregistered = append(n.unregistered, fd)
	return nil
}

// fire delivers and consumes the registration for fd
func (n *fakeNotifier) fire(fd int) (interface{}, bool) {
	token, ok := n.registered[fd]
	delete(n.registered, fd)
	return token, ok
}
