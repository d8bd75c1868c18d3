package gpio

import (
	"bytes"
	"encoding/binary"
	"unsafe"
)

// Layouts below mirror struct gpiochip_info, gpioline_info, gpiohandle_request,
// gpiohandle_data and gpioevent_request from <linux/gpio.h>.

type chipInfoRaw struct {
	Name  [nameSize]byte
	Label [nameSize]byte
	Lines uint32
}

type lineInfoRaw struct {
	LineOffset uint32
	Flags      uint32
	Name       [nameSize]byte
	Consumer   [nameSize]byte
}

type handleRequestRaw struct {
	LineOffsets   [HandlesMax]uint32
	Flags         uint32
	DefaultValues [HandlesMax]uint8
	ConsumerLabel [nameSize]byte
	Lines         uint32
	Fd            int32
}

type handleDataRaw struct {
	Values [HandlesMax]uint8
}

type eventRequestRaw struct {
	LineOffset    uint32
	HandleFlags   uint32
	EventFlags    uint32
	ConsumerLabel [nameSize]byte
	Fd            int32
}

var eventDataSize = int(unsafe.Sizeof(eventDataRaw{}))

// ChipInfo is the cached description of a chip
type ChipInfo struct {
	Name  string
	Label string
	Lines int
}

// LineInfo is a snapshot of one line. It is queried from the kernel on every call
// since the consumer and direction can change at any time.
type LineInfo struct {
	Offset    int
	Flags     LineFlag
	Direction Direction
	ActiveLow bool
	Name      string
	Consumer  string
}

// EventRecord is a single edge reported by the kernel. The timestamp is in
// nanoseconds on the kernel's clock.
type EventRecord struct {
	Timestamp uint64
	Edge      Edge
}

func bytesToString(input []byte) string {
	if n := bytes.IndexByte(input, 0); n >= 0 {
		return string(input[:n])
	}
	return string(input)
}

// stringToBytes copies input into output and always null terminates it.
// Labels that do not fit are silently truncated.
func stringToBytes(input string, output []byte) {
	n := copy(output, input)

	if n >= len(output) {
		n = len(output) - 1
	}

	output[n] = 0
}

func decodeChipInfo(ci *chipInfoRaw) ChipInfo {
	info := ChipInfo{
		Name:  bytesToString(ci.Name[:]),
		Label: bytesToString(ci.Label[:]),
		Lines: int(ci.Lines),
	}

	if info.Label == "" {
		info.Label = "unknown"
	}

	return info
}

func encodeLineInfoQuery(offset int) lineInfoRaw {
	return lineInfoRaw{
		LineOffset: uint32(offset),
	}
}

func decodeLineInfo(li *lineInfoRaw) LineInfo {
	flags := LineFlag(li.Flags)

	info := LineInfo{
		Offset:    int(li.LineOffset),
		Flags:     flags,
		Direction: DirectionInput,
		ActiveLow: flags&LineActiveLow != 0,
		Name:      bytesToString(li.Name[:]),
		Consumer:  bytesToString(li.Consumer[:]),
	}

	if flags&LineIsOut != 0 {
		info.Direction = DirectionOutput
	}

	return info
}

// encodeHandleRequest expects offsets to hold at most HandlesMax entries and
// defaults to be nil or as long as offsets.
func encodeHandleRequest(offsets []int, flags RequestFlag, defaults []int, consumer string) handleRequestRaw {
	req := handleRequestRaw{
		Flags: uint32(flags),
		Lines: uint32(len(offsets)),
	}
	stringToBytes(consumer, req.ConsumerLabel[:])

	for i, off := range offsets {
		req.LineOffsets[i] = uint32(off)
	}

	for i, v := range defaults {
		req.DefaultValues[i] = uint8(v)
	}

	return req
}

func encodeHandleData(values []int) handleDataRaw {
	var hd handleDataRaw

	for i, v := range values {
		hd.Values[i] = uint8(v)
	}

	return hd
}

func decodeHandleData(hd *handleDataRaw, numLines int) []int {
	values := make([]int, numLines)

	for i := range values {
		values[i] = int(hd.Values[i])
	}

	return values
}

func encodeEventRequest(offset int, consumer string) eventRequestRaw {
	req := eventRequestRaw{
		LineOffset:  uint32(offset),
		HandleFlags: uint32(RequestInput),
		EventFlags:  uint32(EventBothEdges),
	}
	stringToBytes(consumer, req.ConsumerLabel[:])

	return req
}

func decodeEventData(buf []byte) (EventRecord, error) {
	if len(buf) < eventDataSize {
		return EventRecord{}, ErrorShortRead
	}

	return EventRecord{
		Timestamp: binary.NativeEndian.Uint64(buf[0:8]),
		Edge:      Edge(binary.NativeEndian.Uint32(buf[8:12])),
	}, nil
}
